package gdocs

import (
	"strings"

	"google.golang.org/api/docs/v1"
)

// PlainText concatenates the text runs of every paragraph in the document
// body, in document order. Tables, images and other non-paragraph elements
// contribute nothing.
func PlainText(doc *docs.Document) string {
	if doc == nil || doc.Body == nil {
		return ""
	}
	var sb strings.Builder
	for _, el := range doc.Body.Content {
		if el == nil || el.Paragraph == nil {
			continue
		}
		for _, pe := range el.Paragraph.Elements {
			if pe != nil && pe.TextRun != nil {
				sb.WriteString(pe.TextRun.Content)
			}
		}
	}
	return sb.String()
}
