package commands

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/fuse/internal/output"
	"github.com/temirov/fuse/internal/types"
	"github.com/temirov/fuse/internal/utils"
)

// ContentOptions configures how selected files become formatter units.
type ContentOptions struct {
	LineNumbers   bool
	AbsolutePaths bool
	Warn          types.WarningFunc
	Logger        *zap.Logger
}

// ContentSummary counts what EmitContent produced.
type ContentSummary struct {
	Files   int
	Skipped int
	Bytes   int64
	// SkippedPaths lists the absolute paths of skipped files in order.
	SkippedPaths []string
}

// WithoutSkipped returns entries minus the files that were skipped, so a tree
// rendered from the result lists exactly the emitted files.
func (summary ContentSummary) WithoutSkipped(entries []types.SelectedEntry) []types.SelectedEntry {
	if len(summary.SkippedPaths) == 0 {
		return entries
	}
	skipped := make(map[string]struct{}, len(summary.SkippedPaths))
	for _, skippedPath := range summary.SkippedPaths {
		skipped[skippedPath] = struct{}{}
	}
	kept := make([]types.SelectedEntry, 0, len(entries))
	for _, entry := range entries {
		if _, isSkipped := skipped[entry.AbsolutePath]; isSkipped && !entry.IsDirectory() {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

func (summary *ContentSummary) skip(entry types.SelectedEntry) {
	summary.Skipped++
	summary.SkippedPaths = append(summary.SkippedPaths, entry.AbsolutePath)
}

// EmitContent reads every file entry in order and hands the decoded unit to
// emit. Binary or undecodable files and unreadable walked files are reported
// through Warn and skipped; an unreadable explicit file aborts.
func EmitContent(entries []types.SelectedEntry, options ContentOptions, emit func(output.FileUnit) error) (ContentSummary, error) {
	if options.Warn == nil {
		options.Warn = func(types.Warning) {}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	var summary ContentSummary
	for _, entry := range entries {
		if entry.IsDirectory() {
			continue
		}
		data, readError := os.ReadFile(entry.AbsolutePath)
		if readError != nil {
			if entry.Depth == 0 {
				return summary, fmt.Errorf("read '%s': %w: %v", entry.Path, ErrRootUnreadable, readError)
			}
			options.Warn(types.Warning{Path: entry.Path, Message: fmt.Sprintf("Skipping unreadable file %s: %v", entry.Path, readError)})
			summary.skip(entry)
			continue
		}
		if utils.IsBinary(data) {
			options.Logger.Debug("skipped binary file", zap.String("path", entry.Path), zap.String("mime", utils.DetectMimeType(data)))
			options.Warn(types.Warning{Path: entry.Path, Message: fmt.Sprintf("Skipping binary file %s", entry.Path)})
			summary.skip(entry)
			continue
		}

		content := string(data)
		if options.LineNumbers {
			content = utils.AddLineNumbers(content)
		}
		displayPath := entry.Path
		if options.AbsolutePaths {
			displayPath = entry.AbsolutePath
		}
		if emitError := emit(output.FileUnit{
			Path:      displayPath,
			Content:   content,
			Extension: utils.FileExtension(entry.Path),
		}); emitError != nil {
			return summary, emitError
		}
		summary.Files++
		summary.Bytes += int64(len(data))
	}
	return summary, nil
}
