package output

import "strings"

var languageByExtension = map[string]string{
	"py":   "python",
	"c":    "c",
	"h":    "c",
	"cpp":  "cpp",
	"hpp":  "cpp",
	"java": "java",
	"js":   "javascript",
	"ts":   "typescript",
	"html": "html",
	"css":  "css",
	"xml":  "xml",
	"json": "json",
	"yaml": "yaml",
	"yml":  "yaml",
	"sh":   "bash",
	"rb":   "ruby",
	"go":   "go",
	"rs":   "rust",
	"md":   "markdown",
	"toml": "toml",
	"sql":  "sql",
}

// LanguageForExtension returns the fenced code block tag for a file
// extension given without its dot, or "" when unknown.
func LanguageForExtension(extension string) string {
	return languageByExtension[strings.ToLower(extension)]
}
