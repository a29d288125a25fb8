package output

import (
	"fmt"
	"strings"
)

const (
	minimumFence           = "```"
	fenceCharacter         = "`"
	tableOfContentsHeading = "# Table of Contents"
)

type markdownFormatter struct{}

func (markdownFormatter) Start() string { return "" }

func (markdownFormatter) End() string { return "" }

func (markdownFormatter) TableOfContents(tree string) string {
	fence := fenceFor(tree)
	return fmt.Sprintf("%s\n\n%s\n%s\n%s", tableOfContentsHeading, fence, tree, fence)
}

func (markdownFormatter) File(unit FileUnit) string {
	fence := fenceFor(unit.Content)
	return fmt.Sprintf("%s\n%s%s\n%s\n%s", unit.Path, fence, LanguageForExtension(unit.Extension), unit.Content, fence)
}

// fenceFor returns the shortest backtick fence, at least three long, that
// does not occur in content.
func fenceFor(content string) string {
	fence := minimumFence
	for strings.Contains(content, fence) {
		fence += fenceCharacter
	}
	return fence
}
