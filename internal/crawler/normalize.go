package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Normalization errors.
var (
	// ErrEmptyURL is returned when the input is empty or only whitespace.
	ErrEmptyURL = errors.New("empty URL")

	// ErrNoHost is returned when the URL has no host after normalization.
	ErrNoHost = errors.New("URL has no host")
)

// defaultScheme is prepended to inputs that carry no scheme.
const defaultScheme = "https"

// wwwPrefix is the host label stripped during normalization.
const wwwPrefix = "www."

// schemePrefix matches an explicit scheme at the start of the input only,
// so "://" inside a query does not count as one.
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// defaultPorts maps schemes to the port that is dropped from the host.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize converts raw into its canonical form.
// The canonical form is the only key used for equality and deduplication
// during a crawl, so every URL entering the frontier must pass through here
// exactly once.
//
// Rules:
//   - surrounding whitespace is trimmed
//   - a missing scheme defaults to https ("example.com" -> "https://example.com")
//   - a protocol-relative input ("//example.com/x") also gets https
//   - scheme and host are lowercased
//   - every leading "www." label is removed from the host (never from path or query)
//   - the default port of the scheme (:80 for http, :443 for https) is dropped
//   - other ports, path and query are kept as-is; the fragment is dropped
//   - a trailing slash is never added or removed
//
// Normalize is idempotent: Normalize(Normalize(u)) == Normalize(u).
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}

	switch {
	case strings.HasPrefix(raw, "//"):
		raw = defaultScheme + ":" + raw
	case !schemePrefix.MatchString(raw):
		raw = defaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = stripWWW(strings.ToLower(u.Host))
	if port := u.Port(); port != "" && port == defaultPorts[u.Scheme] {
		u.Host = strings.TrimSuffix(u.Host, ":"+port)
	}
	u.Fragment = ""
	u.RawFragment = ""

	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q", ErrNoHost, raw)
	}

	return u.String(), nil
}

// stripWWW removes every leading "www." label from host.
// Stripping repeatedly keeps Normalize idempotent for hosts such as
// "www.www.example.com".
func stripWWW(host string) string {
	for strings.HasPrefix(host, wwwPrefix) {
		host = strings.TrimPrefix(host, wwwPrefix)
	}
	return host
}

// DomainOf returns the canonical "scheme://host" of a canonical URL.
// The result is normalized again so it can be compared with other
// canonical URLs without further processing.
func DomainOf(canonical string) (string, error) {
	u, err := url.Parse(canonical)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", canonical, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNoHost, canonical)
	}
	return Normalize(u.Scheme + "://" + u.Host)
}
