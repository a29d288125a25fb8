// Package output renders selected files and the directory tree into the
// default, markdown and xml document formats.
package output

import (
	"fmt"
	"strings"

	"github.com/temirov/fuse/internal/types"
)

const unitSeparator = "\n"

// FileUnit is one file ready to be rendered.
type FileUnit struct {
	Path      string
	Content   string
	Extension string
}

// Formatter renders the units of a document. Implementations may keep
// per-document state, such as a running file index.
type Formatter interface {
	Start() string
	TableOfContents(tree string) string
	File(unit FileUnit) string
	End() string
}

// NewFormatter returns a fresh formatter for format.
func NewFormatter(format types.OutputFormat) (Formatter, error) {
	switch format {
	case types.FormatDefault, "":
		return defaultFormatter{}, nil
	case types.FormatMarkdown:
		return markdownFormatter{}, nil
	case types.FormatXML:
		return &xmlFormatter{}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

// Document accumulates rendered units in the order they are added.
type Document struct {
	formatter Formatter
	units     []string
	files     int
}

// NewDocument starts a document rendered with formatter.
func NewDocument(formatter Formatter) *Document {
	return &Document{formatter: formatter}
}

// AddTableOfContents appends the tree header followed by a blank line.
// An empty tree adds nothing.
func (document *Document) AddTableOfContents(tree string) {
	if tree == "" {
		return
	}
	document.units = append(document.units, document.formatter.TableOfContents(tree), "")
}

// AddFile appends one rendered file.
func (document *Document) AddFile(unit FileUnit) {
	document.units = append(document.units, document.formatter.File(unit))
	document.files++
}

// FileCount returns the number of files added.
func (document *Document) FileCount() int {
	return document.files
}

// String joins start, the added units and end with newlines, skipping empty
// start and end markers.
func (document *Document) String() string {
	parts := make([]string, 0, len(document.units)+2)
	if start := document.formatter.Start(); start != "" {
		parts = append(parts, start)
	}
	parts = append(parts, document.units...)
	if end := document.formatter.End(); end != "" {
		parts = append(parts, end)
	}
	return strings.Join(parts, unitSeparator)
}
