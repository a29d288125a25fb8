package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// AddLineNumbers prefixes every line with its 1-based number right-aligned to
// the width of the line count, followed by two spaces.
func AddLineNumbers(content string) string {
	if content == "" {
		return content
	}
	lines := strings.Split(content, "\n")
	if strings.HasSuffix(content, "\n") {
		lines = lines[:len(lines)-1]
	}
	width := len(strconv.Itoa(len(lines)))
	numbered := make([]string, len(lines))
	for lineIndex, line := range lines {
		numbered[lineIndex] = fmt.Sprintf("%*d  %s", width, lineIndex+1, line)
	}
	return strings.Join(numbered, "\n")
}
