package crawler

import (
	"errors"
	"net/url"
	"slices"
	"testing"
)

func TestInDomain(t *testing.T) {
	t.Parallel()

	const domain = "https://example.com"

	tests := []struct {
		name string
		url  string
		mode MatchMode
		want bool
	}{
		{name: "same host", url: "https://example.com/a", mode: MatchSubdomain, want: true},
		{name: "other scheme same host", url: "http://example.com/a", mode: MatchSubdomain, want: true},
		{name: "subdomain", url: "https://blog.example.com/", mode: MatchSubdomain, want: true},
		{name: "lookalike rejected", url: "https://badexample.com/", mode: MatchSubdomain, want: false},
		{name: "external", url: "https://external.com/", mode: MatchSubdomain, want: false},
		{name: "domain in path only", url: "https://evil.com/example.com", mode: MatchSubdomain, want: false},
		{name: "ftp rejected", url: "ftp://example.com/file", mode: MatchSubdomain, want: false},
		{name: "exact same host", url: "https://example.com/", mode: MatchExact, want: true},
		{name: "exact rejects subdomain", url: "https://blog.example.com/", mode: MatchExact, want: false},
		{name: "substring subdomain", url: "https://blog.example.com/", mode: MatchSubstring, want: true},
		{name: "substring lookalike", url: "https://badexample.com/", mode: MatchSubstring, want: true},
		{name: "substring still needs scheme", url: "mailto:x@example.com", mode: MatchSubstring, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InDomain(tt.url, domain, tt.mode); got != tt.want {
				t.Errorf("InDomain(%q, %q, %s) = %v, want %v", tt.url, domain, tt.mode, got, tt.want)
			}
		})
	}
}

func TestInDomainImpliesHTTPScheme(t *testing.T) {
	t.Parallel()

	candidates := []string{
		"https://example.com/a",
		"http://example.com/b",
		"ftp://example.com/c",
		"ws://example.com/d",
		"file://example.com/e",
		"mailto:someone@example.com",
		"javascript:alert(1)",
		"https://sub.example.com/f",
	}

	for _, mode := range []MatchMode{MatchSubdomain, MatchExact, MatchSubstring} {
		for _, c := range candidates {
			if !InDomain(c, "https://example.com", mode) {
				continue
			}
			u, err := url.Parse(c)
			if err != nil {
				t.Fatalf("in-domain URL %q does not parse: %v", c, err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				t.Errorf("mode %s: %q accepted with scheme %q", mode, c, u.Scheme)
			}
		}
	}
}

func TestScopePort(t *testing.T) {
	t.Parallel()

	scope, err := NewScope("http://127.0.0.1:8080", MatchSubdomain)
	if err != nil {
		t.Fatalf("NewScope failed: %v", err)
	}

	if !scope.Contains("http://127.0.0.1:8080/page") {
		t.Error("expected same port to be in scope")
	}
	if scope.Contains("http://127.0.0.1:9090/page") {
		t.Error("expected different port to be out of scope")
	}
	if scope.Domain() != "http://127.0.0.1:8080" {
		t.Errorf("unexpected domain: %s", scope.Domain())
	}
}

func TestScopeDefaultPortSeed(t *testing.T) {
	t.Parallel()

	seed, err := ValidateSeed("example.com:443")
	if err != nil {
		t.Fatalf("ValidateSeed failed: %v", err)
	}
	domain, err := DomainOf(seed)
	if err != nil {
		t.Fatalf("DomainOf failed: %v", err)
	}
	scope, err := NewScope(domain, MatchSubdomain)
	if err != nil {
		t.Fatalf("NewScope failed: %v", err)
	}

	body := `<a href="/about">About</a><a href="https://example.com/contact">Contact</a>`
	got := ExtractLinks(seed, body, scope)
	want := []string{"https://example.com/about", "https://example.com/contact"}
	if !slices.Equal(got, want) {
		t.Errorf("ExtractLinks() = %v, want %v", got, want)
	}
}

func TestParseMatchMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want MatchMode
	}{
		{name: "", want: MatchSubdomain},
		{name: "subdomain", want: MatchSubdomain},
		{name: "EXACT", want: MatchExact},
		{name: " substring ", want: MatchSubstring},
	}
	for _, tt := range tests {
		got, err := ParseMatchMode(tt.name)
		if err != nil {
			t.Fatalf("ParseMatchMode(%q) failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseMatchMode(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}

	if _, err := ParseMatchMode("fuzzy"); !errors.Is(err, ErrUnknownMatchMode) {
		t.Errorf("expected ErrUnknownMatchMode, got %v", err)
	}

	if MatchMode(42).String() != "unknown" {
		t.Errorf("expected unknown for out-of-range mode")
	}
}
