package commands_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/fuse/internal/commands"
	"github.com/temirov/fuse/internal/output"
	"github.com/temirov/fuse/internal/types"
	"github.com/temirov/fuse/internal/utils"
)

// writeTree creates files below root. Keys use forward slashes.
func writeTree(testingHandle *testing.T, root string, files map[string]string) {
	testingHandle.Helper()
	for relativePath, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
		require.NoError(testingHandle, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(testingHandle, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

// traverse runs a traversal from inside base so display paths stay relative.
func traverse(testingHandle *testing.T, base string, spec types.InputSpec) ([]types.SelectedEntry, []types.Warning) {
	testingHandle.Helper()
	chdirForTest(testingHandle, base)
	var warnings []types.Warning
	entries, traverseError := commands.Traverse(commands.TraversalOptions{
		Spec: spec,
		Warn: func(warning types.Warning) { warnings = append(warnings, warning) },
	})
	require.NoError(testingHandle, traverseError)
	return entries, warnings
}

func filePaths(entries []types.SelectedEntry) []string {
	var paths []string
	for _, entry := range entries {
		if !entry.IsDirectory() {
			paths = append(paths, filepath.ToSlash(entry.Path))
		}
	}
	return paths
}

func allPaths(entries []types.SelectedEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.ToSlash(entry.Path))
	}
	return paths
}

func TestTraverseProjectScenario(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"proj/.gitignore":    "build/\n",
		"proj/src/a.py":      "print('a')\n",
		"proj/build/out.bin": "binary",
		"proj/.secret":       "token",
	})

	entries, warnings := traverse(testingHandle, base, types.InputSpec{Roots: []string{"proj"}})
	assert.Equal(testingHandle, []string{"proj/src/a.py"}, filePaths(entries))
	assert.Empty(testingHandle, warnings)

	entries, _ = traverse(testingHandle, base, types.InputSpec{Roots: []string{"proj"}, IncludeHidden: true})
	selected := filePaths(entries)
	assert.Contains(testingHandle, selected, "proj/.secret")
	assert.Contains(testingHandle, selected, "proj/src/a.py")
	assert.NotContains(testingHandle, selected, "proj/build/out.bin")
}

func TestTraverseOrderIsDepthFirstAndSorted(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"root/b.txt":     "b",
		"root/a/z.txt":   "z",
		"root/a/m/n.txt": "n",
		"root/c/d.txt":   "d",
		"root/A.txt":     "A",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"root"}})
	assert.Equal(testingHandle, []string{
		"root",
		"root/A.txt",
		"root/a",
		"root/a/m",
		"root/a/m/n.txt",
		"root/a/z.txt",
		"root/b.txt",
		"root/c",
		"root/c/d.txt",
	}, allPaths(entries))

	for _, entry := range entries {
		expectedDepth := strings.Count(filepath.ToSlash(entry.Path), "/")
		assert.Equal(testingHandle, expectedDepth, entry.Depth, entry.Path)
	}
}

func TestTraverseNegationLastMatchWins(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"logs/.gitignore": "*.log\n!keep.log\n",
		"logs/keep.log":   "keep",
		"logs/other.log":  "other",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"logs"}})
	assert.Equal(testingHandle, []string{"logs/keep.log"}, filePaths(entries))
}

func TestTraverseScopeLocality(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"root/dirA/.gitignore": "secret.txt\n",
		"root/dirA/secret.txt": "a",
		"root/dirA/public.txt": "a",
		"root/dirB/secret.txt": "b",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"root"}})
	assert.Equal(testingHandle, []string{"root/dirA/public.txt", "root/dirB/secret.txt"}, filePaths(entries))
}

func TestTraverseExplicitFileOverride(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"proj/.gitignore":      "secrets/\n",
		"proj/secrets/.token":  "t",
		"proj/secrets/key.txt": "k",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"proj/secrets/.token"}})
	require.Len(testingHandle, entries, 1)
	assert.Equal(testingHandle, "proj/secrets/.token", filepath.ToSlash(entries[0].Path))
	assert.Equal(testingHandle, 0, entries[0].Depth)

	entries, _ = traverse(testingHandle, base, types.InputSpec{Roots: []string{"proj/secrets/.token"}, Extensions: []string{"rs"}})
	assert.Empty(testingHandle, entries)
}

func TestTraverseExtensionFilterIndependence(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"mixed/.gitignore": "b.py\n",
		"mixed/a.rs":       "fn main() {}",
		"mixed/b.py":       "pass",
		"mixed/c.txt":      "text",
	})

	testCases := []struct {
		name string
		spec types.InputSpec
	}{
		{name: "gitignore", spec: types.InputSpec{}},
		{name: "gitignore_disabled", spec: types.InputSpec{IgnoreGitignore: true}},
		{name: "cli_patterns", spec: types.InputSpec{IgnorePatterns: []string{"*.txt"}}},
		{name: "cli_patterns_files_only", spec: types.InputSpec{IgnorePatterns: []string{"*.py"}, IgnoreFilesOnly: true}},
		{name: "hidden_included", spec: types.InputSpec{IncludeHidden: true}},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subtest *testing.T) {
			spec := testCase.spec
			spec.Roots = []string{"mixed"}
			spec.Extensions = []string{"rs"}
			entries, _ := traverse(subtest, base, spec)
			assert.Equal(subtest, []string{"mixed/a.rs"}, filePaths(entries))
		})
	}
}

func TestTraverseGlobalPatterns(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"repo/main.go":          "package main",
		"repo/vendor/lib.go":    "package lib",
		"repo/docs/guide.md":    "# guide",
		"repo/docs/api/spec.md": "# api",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"repo"}, IgnorePatterns: []string{"vendor", "*.md"}})
	assert.Equal(testingHandle, []string{"repo", "repo/docs", "repo/docs/api", "repo/main.go"}, allPaths(entries))

	entries, _ = traverse(testingHandle, base, types.InputSpec{Roots: []string{"repo"}, IgnorePatterns: []string{"docs"}, IgnoreFilesOnly: true})
	assert.Contains(testingHandle, allPaths(entries), "repo/docs")
	assert.Equal(testingHandle, []string{"repo/docs/api/spec.md", "repo/docs/guide.md", "repo/main.go", "repo/vendor/lib.go"}, filePaths(entries))
}

func TestTraverseFilesOnlyPatternsSkipDirectories(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"proj/main.py":         "main",
		"proj/tests/helper.py": "helper",
		"proj/tests/test_a.py": "test",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"proj"}, IgnorePatterns: []string{"test*"}})
	assert.Equal(testingHandle, []string{"proj/main.py"}, filePaths(entries))

	entries, _ = traverse(testingHandle, base, types.InputSpec{Roots: []string{"proj"}, IgnorePatterns: []string{"test*"}, IgnoreFilesOnly: true})
	assert.Equal(testingHandle, []string{"proj/main.py", "proj/tests/helper.py"}, filePaths(entries))
}

func TestTraverseHonoursParentIgnoreFiles(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		".gitignore":    "*.log\n",
		"src/a.go":      "package a",
		"src/debug.log": "noise",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"src"}})
	assert.Equal(testingHandle, []string{"src/a.go"}, filePaths(entries))

	entries, _ = traverse(testingHandle, base, types.InputSpec{Roots: []string{"src"}, IgnoreGitignore: true})
	assert.Equal(testingHandle, []string{"src/a.go", "src/debug.log"}, filePaths(entries))
}

func TestTraverseGitDirectoryPolicy(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"repo/.git/HEAD": "ref: refs/heads/main",
		"repo/main.go":   "package main",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"repo"}, IncludeHidden: true})
	assert.Equal(testingHandle, []string{"repo/main.go"}, filePaths(entries))

	entries, _ = traverse(testingHandle, base, types.InputSpec{Roots: []string{"repo"}, IncludeHidden: true, IncludeGitDirectory: true})
	assert.Equal(testingHandle, []string{"repo/.git/HEAD", "repo/main.go"}, filePaths(entries))
}

func TestTraverseMissingRootIsFatal(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{"present/a.txt": "a"})
	chdirForTest(testingHandle, base)

	emitted := 0
	walkError := commands.Walk(commands.TraversalOptions{
		Spec: types.InputSpec{Roots: []string{"present", "absent"}},
	}, func(types.SelectedEntry) error {
		emitted++
		return nil
	})
	require.Error(testingHandle, walkError)
	assert.True(testingHandle, errors.Is(walkError, commands.ErrRootNotFound))
	assert.Contains(testingHandle, walkError.Error(), "path 'absent' does not exist")
	assert.Zero(testingHandle, emitted)
}

func TestTraverseDuplicateRootsKeepFirst(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{"dir/a.txt": "a"})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"dir", "./dir", "dir/a.txt"}})
	assert.Equal(testingHandle, []string{"dir", "dir/a.txt", "dir/a.txt"}, allPaths(entries))
	assert.Equal(testingHandle, 0, entries[0].RootIndex)
	assert.Equal(testingHandle, 2, entries[2].RootIndex)
}

func TestTraversePermissionDeniedSubtreeWarns(testingHandle *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		testingHandle.Skip("directory permissions are not enforced for this user")
	}
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"root/locked/hidden.txt": "x",
		"root/open/visible.txt":  "y",
	})
	lockedDirectory := filepath.Join(base, "root", "locked")
	require.NoError(testingHandle, os.Chmod(lockedDirectory, 0o000))
	testingHandle.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	entries, warnings := traverse(testingHandle, base, types.InputSpec{Roots: []string{"root"}})
	assert.Equal(testingHandle, []string{"root/open/visible.txt"}, filePaths(entries))
	assert.NotContains(testingHandle, allPaths(entries), "root/locked")
	require.Len(testingHandle, warnings, 1)
	assert.Contains(testingHandle, warnings[0].Message, "Skipping subdirectory")
}

func TestTraverseSymlinks(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"root/real/a.txt": "a",
		"target.txt":      "t",
	})
	linkedDirectory := filepath.Join(base, "root", "linked")
	if symlinkError := os.Symlink(filepath.Join(base, "root", "real"), linkedDirectory); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}
	require.NoError(testingHandle, os.Symlink(filepath.Join(base, "target.txt"), filepath.Join(base, "root", "file-link.txt")))
	require.NoError(testingHandle, os.Symlink(filepath.Join(base, "root"), filepath.Join(base, "root", "real", "loop")))

	entries, warnings := traverse(testingHandle, base, types.InputSpec{Roots: []string{"root"}})
	assert.Equal(testingHandle, []string{"root/real/a.txt"}, filePaths(entries))
	require.Len(testingHandle, warnings, 3)
	for _, warning := range warnings {
		assert.Contains(testingHandle, warning.Message, "Skipping symlink")
	}

	entries, warnings = traverse(testingHandle, base, types.InputSpec{Roots: []string{"root"}, FollowSymlinks: true})
	assert.Equal(testingHandle, []string{
		"root/file-link.txt",
		"root/linked/a.txt",
		"root/real/a.txt",
	}, filePaths(entries))
	require.Len(testingHandle, warnings, 2)
	for _, warning := range warnings {
		assert.Contains(testingHandle, warning.Message, "Skipping symlink cycle")
	}
}

func TestTraverseExcludedPaths(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"out/prompt.txt": "previous run",
		"out/a.txt":      "a",
	})
	chdirForTest(testingHandle, base)

	entries, traverseError := commands.Traverse(commands.TraversalOptions{
		Spec:          types.InputSpec{Roots: []string{"out"}},
		ExcludedPaths: []string{filepath.Join("out", "prompt.txt")},
	})
	require.NoError(testingHandle, traverseError)
	assert.Equal(testingHandle, []string{"out/a.txt"}, filePaths(entries))
}

// renderRun renders the tree and content of an InputSpec the way the command does.
func renderRun(testingHandle *testing.T, spec types.InputSpec, mode types.TocMode) string {
	testingHandle.Helper()
	entries, traverseError := commands.Traverse(commands.TraversalOptions{Spec: spec})
	require.NoError(testingHandle, traverseError)
	formatter, formatterError := output.NewFormatter(types.FormatMarkdown)
	require.NoError(testingHandle, formatterError)
	var units []output.FileUnit
	summary, emitError := commands.EmitContent(entries, commands.ContentOptions{LineNumbers: true}, func(unit output.FileUnit) error {
		units = append(units, unit)
		return nil
	})
	require.NoError(testingHandle, emitError)
	document := output.NewDocument(formatter)
	document.AddTableOfContents(output.RenderTree(summary.WithoutSkipped(entries), mode))
	for _, unit := range units {
		document.AddFile(unit)
	}
	return document.String()
}

func assertIdentical(testingHandle *testing.T, first string, second string) {
	testingHandle.Helper()
	if first == second {
		return
	}
	matcher := diffmatchpatch.New()
	testingHandle.Fatalf("runs differ:\n%s", matcher.DiffPrettyText(matcher.DiffMain(first, second, false)))
}

func determinismFixture() map[string]string {
	return map[string]string{
		"site/.gitignore":         "*.tmp\n",
		"site/index.html":         "<html></html>",
		"site/js/app.js":          "console.log(1)",
		"site/js/vendor/lib.js":   "lib()",
		"site/js/scratch.tmp":     "tmp",
		"site/css/theme.css":      "body {}",
		"site/css/empty/.keep":    "",
		"site/README.md":          "# Site\n```\ncode\n```",
		"site/assets/logo.bin":    "\x00\x01",
		"site/assets/notes.txt":   "notes",
		"site/zeta/alpha/beta.go": "package beta",
	}
}

func TestRenderingIsDeterministic(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, determinismFixture())
	chdirForTest(testingHandle, base)

	spec := types.InputSpec{Roots: []string{"site"}}
	first := renderRun(testingHandle, spec, types.TocModeFull)
	second := renderRun(testingHandle, spec, types.TocModeFull)
	assertIdentical(testingHandle, first, second)
}

func TestDirsOnlyTreeIsIdempotent(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, determinismFixture())
	chdirForTest(testingHandle, base)

	spec := types.InputSpec{Roots: []string{"site"}}
	entries, traverseError := commands.Traverse(commands.TraversalOptions{Spec: spec})
	require.NoError(testingHandle, traverseError)
	first := output.RenderTree(entries, types.TocModeDirsOnly)

	entries, traverseError = commands.Traverse(commands.TraversalOptions{Spec: spec})
	require.NoError(testingHandle, traverseError)
	assertIdentical(testingHandle, first, output.RenderTree(entries, types.TocModeDirsOnly))
	assert.NotContains(testingHandle, first, "index.html")
}

func TestTreeMatchesContentOrder(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, determinismFixture())
	chdirForTest(testingHandle, base)

	entries, traverseError := commands.Traverse(commands.TraversalOptions{Spec: types.InputSpec{Roots: []string{"site"}}})
	require.NoError(testingHandle, traverseError)

	var contentFiles []string
	summary, emitError := commands.EmitContent(entries, commands.ContentOptions{}, func(unit output.FileUnit) error {
		contentFiles = append(contentFiles, filepath.Base(unit.Path))
		return nil
	})
	require.NoError(testingHandle, emitError)
	assert.Equal(testingHandle, 1, summary.Skipped)

	var treeFiles []string
	for _, line := range strings.Split(output.RenderTree(summary.WithoutSkipped(entries), types.TocModeFilesAndDirs), "\n") {
		name := strings.TrimLeft(line, "│├└─ ")
		if !strings.HasSuffix(name, "/") {
			treeFiles = append(treeFiles, name)
		}
	}
	assert.Equal(testingHandle, treeFiles, contentFiles)
	assert.NotContains(testingHandle, treeFiles, "logo.bin")
	assert.NotEmpty(testingHandle, contentFiles)
}

func TestTraverseHonoursIgnoreFiles(testingHandle *testing.T) {
	base := testingHandle.TempDir()
	writeTree(testingHandle, base, map[string]string{
		"pkg/" + utils.IgnoreFileName:    "*.gen.go\n",
		"pkg/" + utils.GitIgnoreFileName: "*.out\n",
		"pkg/model.gen.go":               "package pkg",
		"pkg/model.go":                   "package pkg",
		"pkg/run.out":                    "out",
	})

	entries, _ := traverse(testingHandle, base, types.InputSpec{Roots: []string{"pkg"}})
	assert.Equal(testingHandle, []string{"pkg/model.go"}, filePaths(entries))

	entries, _ = traverse(testingHandle, base, types.InputSpec{Roots: []string{"pkg"}, IgnoreGitignore: true})
	assert.Equal(testingHandle, []string{"pkg/model.gen.go", "pkg/model.go", "pkg/run.out"}, filePaths(entries))
}
