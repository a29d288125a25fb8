package output

import (
	"fmt"

	"github.com/temirov/fuse/internal/utils"
)

// Summary describes the emitted document.
type Summary struct {
	Files   int
	Skipped int
	Bytes   int64
	Tokens  int
	Model   string
}

// FormatSummaryLine formats a Summary as a single human-readable line.
func FormatSummaryLine(summary Summary) string {
	label := "files"
	if summary.Files == 1 {
		label = "file"
	}
	line := fmt.Sprintf("Summary: %d %s, %s", summary.Files, label, utils.FormatFileSize(summary.Bytes))
	if summary.Skipped > 0 {
		line += fmt.Sprintf(", %d skipped", summary.Skipped)
	}
	if summary.Tokens > 0 {
		line += fmt.Sprintf(", %d tokens", summary.Tokens)
		if summary.Model != "" {
			line += fmt.Sprintf(" (model: %s)", summary.Model)
		}
	}
	return line
}
