package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/temirov/fuse/internal/types"
)

const warningPrefix = "Warning:"

// warningReporter collects warnings during a run and prints them after the
// document so they never interleave with it.
type warningReporter struct {
	writer   io.Writer
	prefix   *color.Color
	warnings []types.Warning
}

func newWarningReporter(writer io.Writer, colorEnabled bool) *warningReporter {
	prefix := color.New(color.FgYellow, color.Bold)
	if colorEnabled {
		prefix.EnableColor()
	} else {
		prefix.DisableColor()
	}
	return &warningReporter{writer: writer, prefix: prefix}
}

// Add records warning. It satisfies types.WarningFunc.
func (reporter *warningReporter) Add(warning types.Warning) {
	reporter.warnings = append(reporter.warnings, warning)
}

// Count returns the number of collected warnings.
func (reporter *warningReporter) Count() int {
	return len(reporter.warnings)
}

// Flush prints every collected warning, one per line, and forgets them.
func (reporter *warningReporter) Flush() error {
	for _, warning := range reporter.warnings {
		if _, err := fmt.Fprintf(reporter.writer, "%s %s\n", reporter.prefix.Sprint(warningPrefix), warning.Message); err != nil {
			return err
		}
	}
	reporter.warnings = nil
	return nil
}
