// Package crawler provides the single-site crawling engine of sitescrape.
//
// # Architecture
//
// The package is built around the Spider type, which drives one crawl run
// from a seed URL to an export. It is composed of small, separately tested
// parts:
//
//   - Normalize: canonical URL form used as the only equality key
//   - Scope: decides whether a canonical URL belongs to the crawl domain
//   - Document: the HTML parse collaborator (anchors and paragraphs)
//   - ExtractLinks: same-domain, canonical, navigable links of a page
//   - ExtractText: whitespace-collapsed paragraph text of a page
//   - Frontier: set-backed queue that hands out each URL at most once
//   - Fetcher: the page fetch collaborator, with an HTTP implementation
//
// # Canonical URLs
//
// A canonical URL always has an http or https scheme (https when the input
// has none) and a lowercase host without a leading "www." label. Paths,
// queries and trailing slashes are kept exactly as given, so
// "https://example.com" and "https://example.com/" are different crawl
// targets.
//
// # Cancellation
//
// Run stops cooperatively: the context is checked once per frontier item
// and a fetch already in flight is allowed to complete.
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(http.DefaultClient)
//	spider := crawler.NewSpider(fetcher, crawler.WithMatchMode(crawler.MatchSubdomain))
//	export, err := spider.Run(ctx, "example.com")
package crawler
