package output_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/temirov/fuse/internal/output"
	"github.com/temirov/fuse/internal/types"
)

func directoryEntry(path string, depth int) types.SelectedEntry {
	return types.SelectedEntry{Path: path, Kind: types.EntryKindDirectory, Depth: depth}
}

func fileEntry(path string, depth int) types.SelectedEntry {
	return types.SelectedEntry{Path: path, Kind: types.EntryKindFile, Depth: depth}
}

func sampleEntries() []types.SelectedEntry {
	return []types.SelectedEntry{
		fileEntry("main.go", 0),
		directoryEntry("proj", 0),
		fileEntry("proj/a.py", 1),
		directoryEntry("proj/empty", 1),
		directoryEntry("proj/sub", 1),
		directoryEntry("proj/sub/deeper", 2),
		fileEntry("proj/sub/deeper/c.txt", 3),
		fileEntry("proj/sub/b.go", 2),
	}
}

func TestRenderTreeModes(testingInstance *testing.T) {
	testCases := []struct {
		name     string
		mode     types.TocMode
		expected []string
	}{
		{
			name: "none",
			mode: types.TocModeNone,
		},
		{
			name: "full",
			mode: types.TocModeFull,
			expected: []string{
				"├── main.go",
				"└── proj/",
				"    ├── a.py",
				"    └── sub/",
				"        ├── deeper/",
				"        │   └── c.txt",
				"        └── b.go",
			},
		},
		{
			name: "dirs_only",
			mode: types.TocModeDirsOnly,
			expected: []string{
				"└── proj/",
				"    └── sub/",
				"        └── deeper/",
			},
		},
		{
			name: "files_and_dirs",
			mode: types.TocModeFilesAndDirs,
			expected: []string{
				"├── main.go",
				"└── proj/",
				"    ├── a.py",
				"    ├── empty/",
				"    └── sub/",
				"        ├── deeper/",
				"        │   └── c.txt",
				"        └── b.go",
			},
		},
	}

	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subtest *testing.T) {
			assert.Equal(subtest, strings.Join(testCase.expected, "\n"), output.RenderTree(sampleEntries(), testCase.mode))
		})
	}
}

func TestRenderTreeKeepsEmptyRootDirectory(testingInstance *testing.T) {
	entries := []types.SelectedEntry{directoryEntry("empty-root", 0)}
	assert.Equal(testingInstance, "└── empty-root/", output.RenderTree(entries, types.TocModeFull))
	assert.Equal(testingInstance, "└── empty-root/", output.RenderTree(entries, types.TocModeDirsOnly))
}

func TestRenderTreeRootWithTrailingSlash(testingInstance *testing.T) {
	entries := []types.SelectedEntry{
		directoryEntry("src/", 0),
		fileEntry("src/x.go", 1),
	}
	assert.Equal(testingInstance, "└── src/\n    └── x.go", output.RenderTree(entries, types.TocModeFull))
}

func TestRenderTreeNamesRootsByBaseName(testingInstance *testing.T) {
	projectDirectory := filepath.Join(string(filepath.Separator)+"home", "dev", "project")
	testCases := []struct {
		name     string
		entries  []types.SelectedEntry
		expected string
	}{
		{
			name:     "nested_directory",
			entries:  []types.SelectedEntry{directoryEntry(filepath.Join("..", "proj", "src"), 0), fileEntry(filepath.Join("..", "proj", "src", "x.go"), 1)},
			expected: "└── src/\n    └── x.go",
		},
		{
			name:     "explicit_file",
			entries:  []types.SelectedEntry{fileEntry(filepath.Join("cmd", "main.go"), 0)},
			expected: "└── main.go",
		},
		{
			name: "current_directory",
			entries: []types.SelectedEntry{
				{Path: ".", AbsolutePath: projectDirectory, Kind: types.EntryKindDirectory},
				fileEntry("a.go", 1),
			},
			expected: "└── project/\n    └── a.go",
		},
	}

	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subtest *testing.T) {
			assert.Equal(subtest, testCase.expected, output.RenderTree(testCase.entries, types.TocModeFull))
		})
	}
}
