// Package config provides configuration structures and utilities for sitescrape.
// It defines the crawl settings, per-site overrides loaded from the
// .sitescrape file, output preferences and the XDG directories used for
// the export archive.
package config
