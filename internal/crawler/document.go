package crawler

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
// It is the parse collaborator of the crawler: it exposes the href of every
// anchor and the text of every paragraph, and nothing else.
//
// Design decision: We parse once with golang.org/x/net/html and wrap the
// same tree with goquery because:
//  1. The tokenizer tolerates malformed markup common on the web
//  2. Anchors are cheapest to collect with a plain tree walk
//  3. goquery's Text() already concatenates nested text nodes the way
//     paragraph extraction needs
type Document struct {
	root *html.Node
	doc  *goquery.Document
}

// ParseDocument parses HTML from r.
// Malformed markup is repaired by the parser; an error is only returned
// when reading from r fails.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
	}, nil
}

// ParseDocumentString parses HTML held in a string.
func ParseDocumentString(body string) (*Document, error) {
	return ParseDocument(strings.NewReader(body))
}

// Hrefs returns the href attribute of every anchor element in document
// order. Anchors without an href attribute are skipped; empty values are
// returned as-is so callers can apply their own filtering.
func (d *Document) Hrefs() []string {
	hrefs := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := getAttr(n, "href"); ok {
				hrefs = append(hrefs, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)

	return hrefs
}

// Paragraphs returns the text content of every <p> element in document
// order, including text of nested inline elements.
func (d *Document) Paragraphs() []string {
	paragraphs := make([]string, 0)
	d.doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})
	return paragraphs
}

// getAttr retrieves an attribute value from an HTML node.
// The boolean reports whether the attribute is present at all.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
