package output

import "fmt"

const (
	documentsOpenTag       = "<documents>"
	documentsCloseTag      = "</documents>"
	tableOfContentsOpenTag = "<table_of_contents>"
	tableOfContentsEndTag  = "</table_of_contents>"
	xmlDocumentFormat      = "<document index=\"%d\">\n<source>%s</source>\n<document_content>\n%s\n</document_content>\n</document>"
)

// xmlFormatter numbers documents from one in the order they are rendered.
// Content is embedded verbatim, matching the prompt convention it targets.
type xmlFormatter struct {
	index int
}

func (*xmlFormatter) Start() string { return documentsOpenTag }

func (*xmlFormatter) End() string { return documentsCloseTag }

func (*xmlFormatter) TableOfContents(tree string) string {
	return tableOfContentsOpenTag + "\n" + tree + "\n" + tableOfContentsEndTag
}

func (formatter *xmlFormatter) File(unit FileUnit) string {
	formatter.index++
	return fmt.Sprintf(xmlDocumentFormat, formatter.index, unit.Path, unit.Content)
}
