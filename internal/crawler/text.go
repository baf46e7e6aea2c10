package crawler

import "strings"

// ExtractText returns the visible paragraph text of an HTML page.
// The text of every <p> element is joined with a single space and all
// whitespace runs (spaces, tabs, newlines) are collapsed into one space.
// It never fails: empty input or a page without paragraphs yields "".
func ExtractText(body string) string {
	if body == "" {
		return ""
	}
	doc, err := ParseDocumentString(body)
	if err != nil {
		return ""
	}
	return TextFromDocument(doc)
}

// TextFromDocument is ExtractText for an already parsed document.
func TextFromDocument(doc *Document) string {
	return collapseWhitespace(strings.Join(doc.Paragraphs(), " "))
}

// collapseWhitespace replaces every whitespace run with a single space and
// trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
