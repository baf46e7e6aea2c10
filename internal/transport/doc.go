// Package transport builds the HTTP clients used for crawling.
//
// A client either connects directly or routes every connection through a
// SOCKS5 proxy (for example a local Tor daemon at 127.0.0.1:9050). All
// clients share the same redirect limit, cookie jar and connection pool
// settings, so a crawl behaves the same with and without a proxy.
//
// The package is designed to be used with dependency injection: build one
// client per command and pass it to every fetcher, so connection pooling
// is shared between the sites of a batch.
package transport
