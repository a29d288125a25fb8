// Package types defines the values shared between the traversal engine,
// the renderers and the command line layer.
package types

import "fmt"

// EntryKind distinguishes files from directories in a traversal result.
type EntryKind int

const (
	// EntryKindFile marks a regular file.
	EntryKindFile EntryKind = iota
	// EntryKindDirectory marks a directory.
	EntryKindDirectory
)

// String returns the lower-case name of the kind.
func (kind EntryKind) String() string {
	if kind == EntryKindDirectory {
		return "directory"
	}
	return "file"
}

// OutputFormat selects the document layout.
type OutputFormat string

const (
	// FormatDefault renders plain separator blocks.
	FormatDefault OutputFormat = "default"
	// FormatMarkdown renders fenced code blocks.
	FormatMarkdown OutputFormat = "markdown"
	// FormatXML renders the document/source tag scheme.
	FormatXML OutputFormat = "xml"
)

// ParseOutputFormat resolves a user supplied format name.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(value) {
	case "", FormatDefault, "raw", "plain":
		return FormatDefault, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatXML, "cxml":
		return FormatXML, nil
	}
	return "", fmt.Errorf("unsupported output format %q", value)
}

// TocMode controls which entries appear in the rendered tree header.
type TocMode string

const (
	// TocModeNone disables the tree header.
	TocModeNone TocMode = ""
	// TocModeFull shows files and the directories that contain them.
	TocModeFull TocMode = "full"
	// TocModeDirsOnly shows only directories that contain selected files.
	TocModeDirsOnly TocMode = "dirs"
	// TocModeFilesAndDirs shows files and every visited directory, empty ones included.
	TocModeFilesAndDirs TocMode = "files"
)

// ParseTocMode resolves a configured tree mode.
func ParseTocMode(value string) (TocMode, error) {
	switch TocMode(value) {
	case TocModeNone, "none", "off":
		return TocModeNone, nil
	case TocModeFull:
		return TocModeFull, nil
	case TocModeDirsOnly, "dirs-only":
		return TocModeDirsOnly, nil
	case TocModeFilesAndDirs, "files-and-dirs":
		return TocModeFilesAndDirs, nil
	}
	return TocModeNone, fmt.Errorf("unsupported table of contents mode %q", value)
}

// InputSpec describes one run: the roots in user order and the selection options.
type InputSpec struct {
	Roots               []string
	Extensions          []string
	IgnorePatterns      []string
	IncludeHidden       bool
	IgnoreFilesOnly     bool
	IgnoreGitignore     bool
	IncludeGitDirectory bool
	FollowSymlinks      bool
}

// SelectedEntry is a file or directory that survived every active filter.
type SelectedEntry struct {
	// Path joins the root as given by the user with RelativePath.
	Path         string
	AbsolutePath string
	// RelativePath uses forward slashes and is "." for a root.
	RelativePath string
	Kind         EntryKind
	Depth        int
	RootIndex    int
}

// IsDirectory reports whether the entry is a directory.
func (entry SelectedEntry) IsDirectory() bool {
	return entry.Kind == EntryKindDirectory
}

// Warning is a recoverable problem noticed during a run.
type Warning struct {
	Path    string
	Message string
}

// String renders the warning as printed on standard error.
func (warning Warning) String() string {
	return "Warning: " + warning.Message
}

// WarningFunc receives recoverable problems as they happen.
type WarningFunc func(Warning)
