package config

import (
	"maps"
	"strings"
)

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per site.
type SiteConfig struct {
	// Cookie is an HTTP cookie to use when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// DomainMatch overrides the domain match mode for this site.
	DomainMatch string `yaml:"domainMatch,omitempty"`

	// MaxPages overrides the page limit for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .sitescrape configuration file.
type File struct {
	// Sites maps hosts to their site-specific configurations.
	// Keys are host names without scheme; a leading "www." is ignored
	// (e.g., "example.com" also applies to "www.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	siteConfig, ok := cf.lookup(host)
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.DomainMatch != "" {
		result.DomainMatch = siteConfig.DomainMatch
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}

// lookup finds the site entry for host, ignoring case and "www." prefixes
// on both sides.
func (cf *File) lookup(host string) (SiteConfig, bool) {
	want := siteKey(host)
	for key, site := range cf.Sites {
		if siteKey(key) == want {
			return site, true
		}
	}
	return SiteConfig{}, false
}

// siteKey canonicalizes a host for site lookups.
func siteKey(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	for strings.HasPrefix(host, "www.") {
		host = strings.TrimPrefix(host, "www.")
	}
	return host
}
