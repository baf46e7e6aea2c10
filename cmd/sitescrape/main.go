// Package main provides the entry point for the sitescrape CLI.
//
// sitescrape crawls every reachable page of a single website and collects
// the paragraph text of each page into one plain text export.
//
// Usage:
//
//	sitescrape scrape <url>
//	sitescrape shell
//
// See --help for all available options.
package main

// main is the entry point for sitescrape.
func main() {
	Execute()
}
