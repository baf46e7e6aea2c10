package main

import (
	"errors"
	"testing"

	"github.com/nao1215/sitescrape/internal/config"
)

func TestSiteHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seed string
		want string
	}{
		{"https://example.com", "example.com"},
		{"http://example.com:8080/a", "example.com"},
		{"https://blog.example.com/path?q=1", "blog.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.seed, func(t *testing.T) {
			t.Parallel()
			if got := siteHost(tt.seed); got != tt.want {
				t.Errorf("siteHost(%q) = %q, want %q", tt.seed, got, tt.want)
			}
		})
	}
}

func TestSpiderOptions(t *testing.T) {
	t.Parallel()

	t.Run("valid site", func(t *testing.T) {
		t.Parallel()

		opts, err := spiderOptions(config.SiteConfig{
			DomainMatch:    "exact",
			MaxPages:       5,
			IgnorePatterns: []string{"/admin/*"},
		}, quietLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// match mode, max pages, logger and path filter
		if len(opts) != 4 {
			t.Errorf("expected 4 options, got %d", len(opts))
		}
	})

	t.Run("unknown match mode", func(t *testing.T) {
		t.Parallel()

		_, err := spiderOptions(config.SiteConfig{DomainMatch: "fuzzy"}, quietLogger())
		if !errors.Is(err, config.ErrInvalidDomainMatch) {
			t.Errorf("expected ErrInvalidDomainMatch, got %v", err)
		}
	})
}
