// Package ignore implements gitignore-style pattern matching and the scoped
// rule store consulted while walking a directory tree.
package ignore

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/gobwas/glob"
)

const (
	commentPrefix     = "#"
	negationPrefix    = "!"
	pathSeparator     = "/"
	doubleStarSegment = "**"
	globMetaCharacter = "*?[\\"
)

var (
	// ErrEmptyPattern reports a line that is empty once its markers are removed.
	ErrEmptyPattern = errors.New("pattern is empty after processing")
	// ErrTrailingBackslash reports a pattern ending in an unescaped backslash.
	ErrTrailingBackslash = errors.New("trailing backslash is invalid")
)

// ParseOptions tunes how patterns are compiled.
type ParseOptions struct {
	// FoldCase compares patterns and paths case-insensitively.
	FoldCase bool
}

// HostFoldsCase reports whether the default filesystems of the running
// platform are case-insensitive.
func HostFoldsCase() bool {
	return runtime.GOOS == "darwin" || runtime.GOOS == "windows"
}

// Pattern is one compiled gitignore line.
type Pattern struct {
	source        string
	negated       bool
	directoryOnly bool
	anchored      bool
	foldCase      bool
	segments      []segment
}

type segment struct {
	literal    string
	doubleStar bool
	matcher    glob.Glob
}

// ParsePattern compiles a single gitignore line. The boolean result is false
// for blank lines and comments, which carry no rule.
func ParsePattern(line string, options ParseOptions) (Pattern, bool, error) {
	line = trimTrailingWhitespace(strings.TrimSuffix(line, "\r"))
	if line == "" || strings.HasPrefix(line, commentPrefix) {
		return Pattern{}, false, nil
	}
	source := line

	negated := false
	switch {
	case strings.HasPrefix(line, `\`+negationPrefix):
		line = line[1:]
	case strings.HasPrefix(line, negationPrefix):
		negated = true
		line = line[1:]
	}
	if strings.HasPrefix(line, `\`+commentPrefix) {
		line = line[1:]
	}

	directoryOnly := false
	if strings.HasSuffix(line, pathSeparator) {
		directoryOnly = true
		line = strings.TrimRight(line, pathSeparator)
	}
	if line == "" {
		return Pattern{}, false, fmt.Errorf("%q: %w", source, ErrEmptyPattern)
	}
	if countTrailingBackslashes(line)%2 == 1 {
		return Pattern{}, false, fmt.Errorf("%q: %w", source, ErrTrailingBackslash)
	}

	anchored := false
	if strings.HasPrefix(line, pathSeparator) {
		anchored = true
		line = strings.TrimLeft(line, pathSeparator)
		if line == "" {
			return Pattern{}, false, fmt.Errorf("%q: %w", source, ErrEmptyPattern)
		}
	} else if strings.Contains(line, pathSeparator) && !strings.HasPrefix(line, doubleStarSegment+pathSeparator) {
		anchored = true
	}

	if options.FoldCase {
		line = strings.ToLower(line)
	}
	segments, compileError := compileSegments(line)
	if compileError != nil {
		return Pattern{}, false, fmt.Errorf("%q: %w", source, compileError)
	}

	return Pattern{
		source:        source,
		negated:       negated,
		directoryOnly: directoryOnly,
		anchored:      anchored,
		foldCase:      options.FoldCase,
		segments:      segments,
	}, true, nil
}

// MustParsePattern is ParsePattern for patterns known to be valid.
func MustParsePattern(line string) Pattern {
	pattern, ok, parseError := ParsePattern(line, ParseOptions{})
	if parseError != nil {
		panic(parseError)
	}
	if !ok {
		panic(fmt.Sprintf("ignore: %q is not a pattern", line))
	}
	return pattern
}

// String returns the pattern as written.
func (pattern Pattern) String() string {
	return pattern.source
}

// Negated reports whether a match re-includes the path.
func (pattern Pattern) Negated() bool {
	return pattern.negated
}

// DirectoryOnly reports whether the pattern only applies to directories.
func (pattern Pattern) DirectoryOnly() bool {
	return pattern.directoryOnly
}

// Match reports whether relativePath, given with forward slashes relative to
// the directory that defines the pattern, is matched.
func (pattern Pattern) Match(relativePath string, isDirectory bool) bool {
	if pattern.directoryOnly && !isDirectory {
		return false
	}
	if pattern.foldCase {
		relativePath = strings.ToLower(relativePath)
	}
	pathSegments := splitSegments(relativePath)
	if len(pathSegments) == 0 || len(pattern.segments) == 0 {
		return false
	}
	if !pattern.anchored && len(pattern.segments) == 1 {
		return pattern.segments[0].matches(pathSegments[len(pathSegments)-1])
	}
	return matchSegments(pattern.segments, pathSegments)
}

// matchSegments aligns pattern segments with path segments. A double star
// absorbs zero or more segments, or at least one when it ends the pattern.
func matchSegments(patternSegments []segment, pathSegments []string) bool {
	if len(patternSegments) == 0 {
		return len(pathSegments) == 0
	}
	head := patternSegments[0]
	if head.doubleStar {
		rest := patternSegments[1:]
		if len(rest) == 0 {
			return len(pathSegments) > 0
		}
		for skipped := 0; skipped <= len(pathSegments); skipped++ {
			if matchSegments(rest, pathSegments[skipped:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegments) == 0 || !head.matches(pathSegments[0]) {
		return false
	}
	return matchSegments(patternSegments[1:], pathSegments[1:])
}

func (current segment) matches(name string) bool {
	switch {
	case current.doubleStar:
		return true
	case current.matcher != nil:
		return current.matcher.Match(name)
	default:
		return current.literal == name
	}
}

func compileSegments(pattern string) ([]segment, error) {
	parts := strings.Split(pattern, pathSeparator)
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if part == doubleStarSegment {
			if len(segments) > 0 && segments[len(segments)-1].doubleStar {
				continue
			}
			segments = append(segments, segment{doubleStar: true})
			continue
		}
		if !strings.ContainsAny(part, globMetaCharacter) {
			segments = append(segments, segment{literal: part})
			continue
		}
		compiled, compileError := glob.Compile(translateSegment(part))
		if compileError != nil {
			return nil, fmt.Errorf("compile segment %q: %w", part, compileError)
		}
		segments = append(segments, segment{literal: part, matcher: compiled})
	}
	return segments, nil
}

// translateSegment rewrites gitignore glob syntax for gobwas/glob: braces and
// commas are literal in gitignore, "[^" is a synonym for "[!", and a "]"
// right after the opening bracket is escaped.
func translateSegment(part string) string {
	var builder strings.Builder
	escaped := false
	insideClass := false
	for index := 0; index < len(part); index++ {
		character := part[index]
		if escaped {
			builder.WriteByte(character)
			escaped = false
			continue
		}
		switch {
		case character == '\\':
			escaped = true
			builder.WriteByte(character)
		case character == '[' && !insideClass:
			insideClass = true
			builder.WriteByte(character)
			if index+1 < len(part) && (part[index+1] == '^' || part[index+1] == '!') {
				builder.WriteByte('!')
				index++
			}
			// A "]" opening the class is a member, not the end.
			if index+1 < len(part) && part[index+1] == ']' {
				builder.WriteString(`\]`)
				index++
			}
		case character == ']' && insideClass:
			insideClass = false
			builder.WriteByte(character)
		case (character == '{' || character == '}' || character == ',') && !insideClass:
			builder.WriteByte('\\')
			builder.WriteByte(character)
		default:
			builder.WriteByte(character)
		}
	}
	return builder.String()
}

func splitSegments(relativePath string) []string {
	parts := strings.Split(relativePath, pathSeparator)
	segments := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// trimTrailingWhitespace removes trailing spaces and tabs unless the last one
// is escaped with a backslash.
func trimTrailingWhitespace(line string) string {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\t') {
		if end >= 2 && line[end-2] == '\\' && countTrailingBackslashes(line[:end-1])%2 == 1 {
			break
		}
		end--
	}
	return line[:end]
}

func countTrailingBackslashes(value string) int {
	count := 0
	for index := len(value) - 1; index >= 0 && value[index] == '\\'; index-- {
		count++
	}
	return count
}
