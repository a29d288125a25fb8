package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/fuse/internal/ignore"
	"github.com/temirov/fuse/internal/types"
	"github.com/temirov/fuse/internal/utils"
)

var (
	// ErrRootNotFound reports a root path that does not exist.
	ErrRootNotFound = errors.New("no such file or directory")
	// ErrRootUnreadable reports a root path that exists but cannot be read.
	ErrRootUnreadable = errors.New("path is not readable")
)

// TraversalOptions configures one traversal over InputSpec roots.
type TraversalOptions struct {
	Spec types.InputSpec
	// FoldCase compares ignore patterns case-insensitively; see ignore.HostFoldsCase.
	FoldCase bool
	Warn     types.WarningFunc
	Logger   *zap.Logger
	// Loader overrides how ignore files are read.
	Loader ignore.LineLoader
	// ExcludedPaths are absolute paths skipped silently, such as the output file.
	ExcludedPaths []string
}

// EntryHandler receives selected entries in traversal order.
type EntryHandler func(types.SelectedEntry) error

type validatedRoot struct {
	displayPath  string
	absolutePath string
	info         os.FileInfo
	index        int
}

type directoryFrame struct {
	displayPath  string
	absolutePath string
	relativePath string
	depth        int
	rootIndex    int
}

type walker struct {
	options    TraversalOptions
	extensions []string
	store      *ignore.RuleStore
	handler    EntryHandler
	excluded   map[string]struct{}
	// active holds the resolved paths of directories on the recursion chain.
	active map[string]struct{}
}

// Traverse collects the entries produced by Walk.
func Traverse(options TraversalOptions) ([]types.SelectedEntry, error) {
	var entries []types.SelectedEntry
	walkError := Walk(options, func(entry types.SelectedEntry) error {
		entries = append(entries, entry)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return entries, nil
}

// Walk visits every root in order, depth first with directory entries sorted
// by name, and hands each selected entry to handler. All roots are validated
// before anything is emitted; per-entry problems are reported through Warn and
// never stop the walk.
func Walk(options TraversalOptions, handler EntryHandler) error {
	if handler == nil {
		return errors.New("traversal handler is nil")
	}
	if options.Warn == nil {
		options.Warn = func(types.Warning) {}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	roots, validationError := validateRoots(options.Spec.Roots)
	if validationError != nil {
		return validationError
	}

	currentWalker := &walker{
		options:    options,
		extensions: utils.NormalizeExtensions(options.Spec.Extensions),
		handler:    handler,
		excluded:   make(map[string]struct{}, len(options.ExcludedPaths)),
		store: ignore.NewRuleStore(ignore.StoreOptions{
			UseIgnoreFiles:  !options.Spec.IgnoreGitignore,
			FoldCase:        options.FoldCase,
			GlobalPatterns:  options.Spec.IgnorePatterns,
			GlobalFilesOnly: options.Spec.IgnoreFilesOnly,
			Loader:          options.Loader,
			Warn:            options.Warn,
			Logger:          options.Logger,
		}),
	}

	for _, excludedPath := range options.ExcludedPaths {
		if absolutePath, absoluteError := filepath.Abs(excludedPath); absoluteError == nil {
			currentWalker.excluded[absolutePath] = struct{}{}
		}
	}

	for _, root := range roots {
		options.Logger.Debug("walking root", zap.String("path", root.displayPath))
		var rootError error
		if root.info.IsDir() {
			rootError = currentWalker.walkRoot(root)
		} else {
			rootError = currentWalker.emitRootFile(root)
		}
		if rootError != nil {
			return rootError
		}
	}
	return nil
}

// validateRoots resolves every root and drops repeated ones, keeping the first.
func validateRoots(rootPaths []string) ([]validatedRoot, error) {
	seen := make(map[string]struct{}, len(rootPaths))
	roots := make([]validatedRoot, 0, len(rootPaths))
	for rootIndex, rootPath := range rootPaths {
		info, statError := os.Stat(rootPath)
		if statError != nil {
			if errors.Is(statError, fs.ErrNotExist) {
				return nil, fmt.Errorf("path '%s' does not exist: %w", rootPath, ErrRootNotFound)
			}
			return nil, fmt.Errorf("path '%s': %w: %v", rootPath, ErrRootUnreadable, statError)
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil, fmt.Errorf("path '%s' is neither a regular file nor a directory: %w", rootPath, ErrRootUnreadable)
		}
		absolutePath, absoluteError := filepath.Abs(rootPath)
		if absoluteError != nil {
			return nil, fmt.Errorf("resolve path '%s': %w", rootPath, absoluteError)
		}
		if _, duplicate := seen[absolutePath]; duplicate {
			continue
		}
		seen[absolutePath] = struct{}{}
		roots = append(roots, validatedRoot{
			displayPath:  filepath.Clean(rootPath),
			absolutePath: absolutePath,
			info:         info,
			index:        rootIndex,
		})
	}
	return roots, nil
}

// emitRootFile emits an explicit file. Only the extension filter applies.
func (current *walker) emitRootFile(root validatedRoot) error {
	if !utils.HasAllowedExtension(root.info.Name(), current.extensions) {
		return nil
	}
	return current.handler(types.SelectedEntry{
		Path:         root.displayPath,
		AbsolutePath: root.absolutePath,
		RelativePath: filepath.Base(root.absolutePath),
		Kind:         types.EntryKindFile,
		Depth:        0,
		RootIndex:    root.index,
	})
}

func (current *walker) walkRoot(root validatedRoot) error {
	entries, readError := os.ReadDir(root.absolutePath)
	if readError != nil {
		return fmt.Errorf("path '%s': %w: %v", root.displayPath, ErrRootUnreadable, readError)
	}
	current.store.SetRoot(root.absolutePath)
	current.active = make(map[string]struct{})
	frame := directoryFrame{
		displayPath:  root.displayPath,
		absolutePath: root.absolutePath,
		relativePath: ".",
		depth:        0,
		rootIndex:    root.index,
	}
	if handlerError := current.handler(frame.entry()); handlerError != nil {
		return handlerError
	}
	return current.walkDirectory(frame, entries)
}

// walkDirectory processes the already listed entries of frame. The frame's
// scope is pushed before its children are evaluated and popped afterwards.
func (current *walker) walkDirectory(frame directoryFrame, entries []os.DirEntry) error {
	resolvedPath := current.resolve(frame.absolutePath)
	current.active[resolvedPath] = struct{}{}
	defer delete(current.active, resolvedPath)

	current.store.PushScope(frame.absolutePath)
	for _, entry := range entries {
		if entryError := current.visitEntry(frame, entry); entryError != nil {
			return entryError
		}
	}
	return current.store.PopScope(frame.absolutePath)
}

func (current *walker) visitEntry(parent directoryFrame, entry os.DirEntry) error {
	name := entry.Name()
	spec := current.options.Spec
	if !spec.IncludeHidden && utils.IsHiddenName(name) {
		return nil
	}

	childAbsolute := filepath.Join(parent.absolutePath, name)
	if _, excluded := current.excluded[childAbsolute]; excluded {
		return nil
	}
	childDisplay := filepath.Join(parent.displayPath, name)
	mode, usable := current.entryMode(entry, childAbsolute, childDisplay)
	if !usable {
		return nil
	}

	switch {
	case mode.IsDir():
		if name == utils.GitDirectoryName && !spec.IncludeGitDirectory {
			return nil
		}
		if current.store.IsIgnored(childAbsolute, types.EntryKindDirectory) {
			return nil
		}
		return current.descend(parent, name, childAbsolute, childDisplay)
	case mode.IsRegular():
		if current.store.IsIgnored(childAbsolute, types.EntryKindFile) {
			return nil
		}
		if !utils.HasAllowedExtension(name, current.extensions) {
			return nil
		}
		return current.handler(types.SelectedEntry{
			Path:         childDisplay,
			AbsolutePath: childAbsolute,
			RelativePath: joinRelative(parent.relativePath, name),
			Kind:         types.EntryKindFile,
			Depth:        parent.depth + 1,
			RootIndex:    parent.rootIndex,
		})
	}
	return nil
}

// entryMode resolves the type of an entry, reporting symlinks that are not
// followed and links whose target cannot be read.
func (current *walker) entryMode(entry os.DirEntry, absolutePath string, displayPath string) (fs.FileMode, bool) {
	mode := entry.Type()
	if mode&fs.ModeSymlink == 0 {
		return mode, true
	}
	if !current.options.Spec.FollowSymlinks {
		current.warn(displayPath, fmt.Sprintf("Skipping symlink %s", displayPath))
		return 0, false
	}
	targetInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		current.warn(displayPath, fmt.Sprintf("Skipping broken symlink %s: %v", displayPath, statError))
		return 0, false
	}
	return targetInfo.Mode(), true
}

func (current *walker) descend(parent directoryFrame, name string, absolutePath string, displayPath string) error {
	if _, onChain := current.active[current.resolve(absolutePath)]; onChain {
		current.warn(displayPath, fmt.Sprintf("Skipping symlink cycle at %s", displayPath))
		return nil
	}
	entries, readError := os.ReadDir(absolutePath)
	if readError != nil {
		current.warn(displayPath, fmt.Sprintf("Skipping subdirectory %s due to error: %v", displayPath, readError))
		return nil
	}
	frame := directoryFrame{
		displayPath:  displayPath,
		absolutePath: absolutePath,
		relativePath: joinRelative(parent.relativePath, name),
		depth:        parent.depth + 1,
		rootIndex:    parent.rootIndex,
	}
	if handlerError := current.handler(frame.entry()); handlerError != nil {
		return handlerError
	}
	return current.walkDirectory(frame, entries)
}

func (current *walker) resolve(absolutePath string) string {
	if !current.options.Spec.FollowSymlinks {
		return absolutePath
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return absolutePath
	}
	return resolvedPath
}

func (current *walker) warn(path string, message string) {
	current.options.Warn(types.Warning{Path: path, Message: message})
}

func (frame directoryFrame) entry() types.SelectedEntry {
	return types.SelectedEntry{
		Path:         frame.displayPath,
		AbsolutePath: frame.absolutePath,
		RelativePath: frame.relativePath,
		Kind:         types.EntryKindDirectory,
		Depth:        frame.depth,
		RootIndex:    frame.rootIndex,
	}
}

func joinRelative(parentRelative string, name string) string {
	if parentRelative == "." || parentRelative == "" {
		return name
	}
	return parentRelative + "/" + name
}
