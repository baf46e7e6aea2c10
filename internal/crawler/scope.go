package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// MatchMode selects how a URL host is compared with the crawl domain.
type MatchMode int

const (
	// MatchSubdomain accepts the domain host itself and any of its
	// subdomains ("blog.example.com" is in "example.com", "badexample.com" is not).
	// This is the default.
	MatchSubdomain MatchMode = iota

	// MatchExact accepts only the domain host itself.
	MatchExact

	// MatchSubstring accepts any host that contains the domain host as a
	// substring. It reproduces the loose check of earlier scrapers and
	// has known false positives ("evilexample.com" contains "example.com").
	MatchSubstring
)

// ErrUnknownMatchMode is returned by ParseMatchMode for unrecognized names.
var ErrUnknownMatchMode = errors.New("unknown domain match mode")

// String returns the configuration name of the mode.
func (m MatchMode) String() string {
	switch m {
	case MatchSubdomain:
		return "subdomain"
	case MatchExact:
		return "exact"
	case MatchSubstring:
		return "substring"
	default:
		return "unknown"
	}
}

// ParseMatchMode converts a configuration name into a MatchMode.
// An empty name selects MatchSubdomain.
func ParseMatchMode(name string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "subdomain":
		return MatchSubdomain, nil
	case "exact":
		return MatchExact, nil
	case "substring":
		return MatchSubstring, nil
	default:
		return MatchSubdomain, fmt.Errorf("%w: %q", ErrUnknownMatchMode, name)
	}
}

// Scope decides whether canonical URLs belong to the crawl domain.
// The domain is parsed once when the Scope is built so that repeated
// checks never re-normalize anything.
type Scope struct {
	domain string
	host   string
	port   string
	mode   MatchMode
}

// NewScope builds a Scope for a canonical domain (see DomainOf).
func NewScope(domain string, mode MatchMode) (*Scope, error) {
	u, err := url.Parse(domain)
	if err != nil {
		return nil, fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoHost, domain)
	}
	return &Scope{
		domain: domain,
		host:   u.Hostname(),
		port:   u.Port(),
		mode:   mode,
	}, nil
}

// Domain returns the canonical domain the scope was built from.
func (s *Scope) Domain() string {
	return s.domain
}

// Mode returns the host comparison mode.
func (s *Scope) Mode() MatchMode {
	return s.mode
}

// Contains reports whether the canonical URL u is in scope.
// u must already be normalized; Contains does not normalize it.
func (s *Scope) Contains(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if s.port != "" && parsed.Port() != s.port {
		return false
	}
	return matchHost(parsed.Hostname(), s.host, s.mode)
}

// InDomain reports whether the canonical URL u belongs to the canonical
// domain under mode. Both arguments must already be normalized.
//
// With MatchSubstring the check is a plain substring test on the host,
// which deliberately admits subdomains and also unrelated hosts that happen
// to contain the domain name.
func InDomain(u, domain string, mode MatchMode) bool {
	scope, err := NewScope(domain, mode)
	if err != nil {
		return false
	}
	return scope.Contains(u)
}

// matchHost compares a URL host with the domain host.
func matchHost(host, domainHost string, mode MatchMode) bool {
	if host == "" {
		return false
	}
	switch mode {
	case MatchExact:
		return host == domainHost
	case MatchSubstring:
		return strings.Contains(host, domainHost)
	default:
		return host == domainHost || strings.HasSuffix(host, "."+domainHost)
	}
}
