package crawler

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PathFilter restricts which in-domain links are followed, by matching the
// URL path against glob patterns.
//
// Logic:
//  1. If the path matches any ignore pattern, skip it
//  2. If follow patterns are set and the path matches none, skip it
//  3. Otherwise, follow it
//
// The zero value follows everything.
type PathFilter struct {
	// Ignore lists patterns to skip ("/admin/*", "*.pdf").
	Ignore []string

	// Follow lists patterns to restrict the crawl to ("/docs/*").
	// Empty means all paths are allowed (subject to Ignore).
	Follow []string
}

// Allows reports whether the canonical URL should be crawled.
func (f PathFilter) Allows(u string) bool {
	if len(f.Ignore) == 0 && len(f.Follow) == 0 {
		return true
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range f.Ignore {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(f.Follow) == 0 {
		return true
	}
	for _, pattern := range f.Follow {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing "/*" to match everything below a prefix
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users/1"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	// Patterns without a slash are matched against the last path element.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
