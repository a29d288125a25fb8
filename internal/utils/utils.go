// Package utils contains general helper functions used across fuse.
package utils

import (
	"path/filepath"
	"strings"
)

// File and directory names with special meaning during traversal.
const (
	// IgnoreFileName is the name of the tool-agnostic ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".fuse.yaml"
	// GlobalConfigDirectoryName is the directory below the home directory holding global configuration.
	GlobalConfigDirectoryName = ".fuse"
	// GlobalConfigFileName is the name of the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
)

const (
	hiddenNamePrefix   = "."
	extensionSeparator = "."
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// IsHiddenName reports whether a base name denotes a dotfile or dot-directory.
// The special names "." and ".." are not hidden.
func IsHiddenName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, hiddenNamePrefix)
}

// NormalizeExtensions strips leading dots and blanks from an extension allow-list
// and removes duplicates.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		trimmed := strings.TrimLeft(strings.TrimSpace(extension), extensionSeparator)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return DeduplicatePatterns(normalized)
}

// FileExtension returns the extension of name without its leading dot.
func FileExtension(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), extensionSeparator)
}

// HasAllowedExtension reports whether name passes the allow-list.
// An empty allow-list accepts every name.
func HasAllowedExtension(name string, allowedExtensions []string) bool {
	if len(allowedExtensions) == 0 {
		return true
	}
	extension := FileExtension(name)
	if extension == "" {
		return false
	}
	for _, allowedExtension := range allowedExtensions {
		if extension == allowedExtension {
			return true
		}
	}
	return false
}

// RelativeSlashPath returns target relative to base with forward slashes.
// The second result is false when target is not base or a descendant of it.
func RelativeSlashPath(base string, target string) (string, bool) {
	relativePath, relativeError := filepath.Rel(base, target)
	if relativeError != nil {
		return "", false
	}
	if relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(relativePath), true
}
