package ignore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/fuse/internal/config"
	"github.com/temirov/fuse/internal/types"
	"github.com/temirov/fuse/internal/utils"
)

// GlobalScope names the origin of rules supplied on the command line.
const GlobalScope = "<global>"

// ErrScopeMismatch reports a pop that does not match the most recent push.
var ErrScopeMismatch = errors.New("ignore scope mismatch")

// LineLoader reads the raw lines of an ignore file. A missing file yields no
// lines and no error.
type LineLoader func(filePath string) ([]string, error)

// Rule is a pattern together with the scope that defined it.
type Rule struct {
	Pattern Pattern
	// Scope is the directory whose ignore file defined the rule, or GlobalScope.
	Scope string
	// Source is the file the rule was read from, empty for global rules.
	Source string
	Line   int
}

// StoreOptions configures a RuleStore.
type StoreOptions struct {
	// UseIgnoreFiles enables .gitignore, .ignore and .git/info/exclude
	// discovery in PushScope and for the ancestors of a root in SetRoot.
	UseIgnoreFiles bool
	// FoldCase compares case-insensitively; see HostFoldsCase.
	FoldCase bool
	// GlobalPatterns are evaluated relative to the root set with SetRoot.
	GlobalPatterns []string
	// GlobalFilesOnly exempts directories from GlobalPatterns.
	GlobalFilesOnly bool
	// Loader defaults to config.LoadIgnoreFileLines.
	Loader LineLoader
	Warn   types.WarningFunc
	Logger *zap.Logger
}

type scope struct {
	directory string
	rules     []Rule
}

// RuleStore answers ignore decisions for the directory currently being walked.
// Scopes are pushed when a directory is entered and popped when it is left, so
// only rules from ancestors of a path are ever active.
type RuleStore struct {
	options     StoreOptions
	root        string
	globalRules []Rule
	// parentScopes hold the ancestors of root, outermost first. They are
	// consulted before the pushed scopes and never popped.
	parentScopes []scope
	scopes       []scope
}

var (
	scopeFileNames  = []string{utils.GitIgnoreFileName, utils.IgnoreFileName}
	excludeFilePath = filepath.Join(utils.GitDirectoryName, "info", "exclude")
)

// NewRuleStore compiles the global patterns and returns an empty store.
// Invalid global patterns are reported through Warn and skipped.
func NewRuleStore(options StoreOptions) *RuleStore {
	if options.Loader == nil {
		options.Loader = config.LoadIgnoreFileLines
	}
	if options.Warn == nil {
		options.Warn = func(types.Warning) {}
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	store := &RuleStore{options: options}
	for patternIndex, rawPattern := range options.GlobalPatterns {
		pattern, ok, parseError := ParsePattern(rawPattern, ParseOptions{FoldCase: options.FoldCase})
		if parseError != nil {
			options.Warn(types.Warning{Message: fmt.Sprintf("Ignoring invalid pattern %v", parseError)})
			continue
		}
		if !ok {
			continue
		}
		store.globalRules = append(store.globalRules, Rule{Pattern: pattern, Scope: GlobalScope, Line: patternIndex + 1})
	}
	return store
}

// SetRoot starts a traversal root: global rules become relative to root and
// the scope stack is cleared. With ignore files enabled, the directories above
// root up to the enclosing repository contribute their rules as well. Without
// a repository every ancestor up to the filesystem root does.
func (store *RuleStore) SetRoot(root string) {
	store.root = filepath.Clean(root)
	store.scopes = store.scopes[:0]
	store.parentScopes = nil
	if store.options.UseIgnoreFiles {
		store.parentScopes = store.loadParentScopes(store.root)
	}
}

func (store *RuleStore) loadParentScopes(root string) []scope {
	if isRepositoryRoot(root) {
		return nil
	}
	var directories []string
	for current := root; ; {
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		directories = append(directories, parent)
		if isRepositoryRoot(parent) {
			break
		}
		current = parent
	}
	parents := make([]scope, 0, len(directories))
	for index := len(directories) - 1; index >= 0; index-- {
		parents = append(parents, store.loadScope(directories[index]))
	}
	return parents
}

// isRepositoryRoot reports whether directory holds a .git entry. Worktrees
// and submodules use a .git file, which also marks the boundary.
func isRepositoryRoot(directory string) bool {
	_, statError := os.Lstat(filepath.Join(directory, utils.GitDirectoryName))
	return statError == nil
}

// Depth returns the number of scopes currently pushed.
func (store *RuleStore) Depth() int {
	return len(store.scopes)
}

// PushScope activates the ignore files found directly in directory. Read or
// parse failures are reported as warnings and contribute no rules; the scope
// itself is always pushed.
func (store *RuleStore) PushScope(directory string) {
	current := scope{directory: filepath.Clean(directory)}
	if store.options.UseIgnoreFiles {
		current = store.loadScope(directory)
	}
	store.scopes = append(store.scopes, current)
}

// loadScope reads the ignore files of directory in increasing precedence:
// the repository exclude file, .gitignore, then .ignore.
func (store *RuleStore) loadScope(directory string) scope {
	directory = filepath.Clean(directory)
	current := scope{directory: directory}
	gitInfo, statError := os.Lstat(filepath.Join(directory, utils.GitDirectoryName))
	if statError == nil && gitInfo.IsDir() {
		current.rules = append(current.rules, store.loadScopeFile(directory, filepath.Join(directory, excludeFilePath))...)
	}
	for _, fileName := range scopeFileNames {
		current.rules = append(current.rules, store.loadScopeFile(directory, filepath.Join(directory, fileName))...)
	}
	if len(current.rules) > 0 {
		store.options.Logger.Debug("loaded ignore scope", zap.String("directory", directory), zap.Int("rules", len(current.rules)))
	}
	return current
}

// PopScope removes the scope pushed for directory.
func (store *RuleStore) PopScope(directory string) error {
	directory = filepath.Clean(directory)
	if len(store.scopes) == 0 {
		return fmt.Errorf("pop %s from empty stack: %w", directory, ErrScopeMismatch)
	}
	top := store.scopes[len(store.scopes)-1]
	if top.directory != directory {
		return fmt.Errorf("pop %s while %s is active: %w", directory, top.directory, ErrScopeMismatch)
	}
	store.scopes = store.scopes[:len(store.scopes)-1]
	return nil
}

// IsIgnored reports whether path is excluded. Ignore file rules are evaluated
// ancestor to descendant and in file order with the last match winning; the
// global rules form an independent decision and either one excludes.
func (store *RuleStore) IsIgnored(path string, kind types.EntryKind) bool {
	path = filepath.Clean(path)
	isDirectory := kind == types.EntryKindDirectory
	return store.ignoredByScopes(path, isDirectory) || store.ignoredGlobally(path, isDirectory)
}

func (store *RuleStore) ignoredByScopes(path string, isDirectory bool) bool {
	ignored := false
	for _, layer := range [][]scope{store.parentScopes, store.scopes} {
		for _, active := range layer {
			relativePath, inside := utils.RelativeSlashPath(active.directory, path)
			if !inside || relativePath == "." {
				continue
			}
			if decided, matched := lastMatch(active.rules, relativePath, isDirectory); matched {
				ignored = decided
			}
		}
	}
	return ignored
}

func (store *RuleStore) ignoredGlobally(path string, isDirectory bool) bool {
	if len(store.globalRules) == 0 || store.root == "" {
		return false
	}
	relativePath, inside := utils.RelativeSlashPath(store.root, path)
	if !inside || relativePath == "." {
		return false
	}
	if !store.options.GlobalFilesOnly {
		decided, _ := lastMatch(store.globalRules, relativePath, isDirectory)
		return decided
	}
	if isDirectory {
		return false
	}
	decided, _ := lastMatch(store.globalRules, relativePath, false)
	return decided
}

// lastMatch returns the decision of the last rule matching relativePath.
func lastMatch(rules []Rule, relativePath string, isDirectory bool) (bool, bool) {
	ignored := false
	matched := false
	for _, rule := range rules {
		if rule.Pattern.Match(relativePath, isDirectory) {
			ignored = !rule.Pattern.Negated()
			matched = true
		}
	}
	return ignored, matched
}

func (store *RuleStore) loadScopeFile(directory string, filePath string) []Rule {
	lines, loadError := store.options.Loader(filePath)
	if loadError != nil {
		store.options.Warn(types.Warning{
			Path:    filePath,
			Message: fmt.Sprintf("Unable to read %s: %v", filePath, loadError),
		})
		return nil
	}
	var rules []Rule
	for lineIndex, line := range lines {
		pattern, ok, parseError := ParsePattern(line, ParseOptions{FoldCase: store.options.FoldCase})
		if parseError != nil {
			store.options.Warn(types.Warning{
				Path:    filePath,
				Message: fmt.Sprintf("Ignoring line %d of %s: %v", lineIndex+1, filePath, parseError),
			})
			continue
		}
		if !ok {
			continue
		}
		rules = append(rules, Rule{Pattern: pattern, Scope: directory, Source: filePath, Line: lineIndex + 1})
	}
	return rules
}
