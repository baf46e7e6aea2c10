package crawler

import (
	"net/url"
	"strings"
)

// ExtractLinks returns the same-domain, canonical, navigable links of an
// HTML page.
//
// Every anchor href is inspected. An href is discarded when it is empty,
// contains a fragment marker ('#'), or uses the mailto: or javascript:
// pseudo-scheme. The rest are resolved against baseURL (relative paths,
// protocol-relative and absolute hrefs are all supported), normalized, and
// kept only when scope contains them. The result holds each link once, in
// the order it first appears in the page.
func ExtractLinks(baseURL, body string, scope *Scope) []string {
	doc, err := ParseDocumentString(body)
	if err != nil {
		return []string{}
	}
	return LinksFromDocument(baseURL, doc, scope)
}

// LinksFromDocument is ExtractLinks for an already parsed document.
func LinksFromDocument(baseURL string, doc *Document, scope *Scope) []string {
	links := make([]string, 0)

	base, err := url.Parse(baseURL)
	if err != nil {
		return links
	}

	seen := make(map[string]struct{})
	for _, href := range doc.Hrefs() {
		link, ok := resolveLink(base, href)
		if !ok || !scope.Contains(link) {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	return links
}

// resolveLink turns one href into a canonical absolute URL.
// It returns false for hrefs that are not navigable page links.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.Contains(href, "#") {
		return "", false
	}

	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	canonical, err := Normalize(resolved.String())
	if err != nil {
		return "", false
	}
	return canonical, true
}
