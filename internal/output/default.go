package output

import "fmt"

const defaultSeparatorLine = "---"

type defaultFormatter struct{}

func (defaultFormatter) Start() string { return "" }

func (defaultFormatter) End() string { return "" }

func (defaultFormatter) TableOfContents(tree string) string {
	return tree
}

func (defaultFormatter) File(unit FileUnit) string {
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", unit.Path, defaultSeparatorLine, unit.Content, defaultSeparatorLine)
}
