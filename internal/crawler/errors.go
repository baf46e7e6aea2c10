package crawler

import (
	"errors"
	"fmt"
)

// Run errors.
// Only seed-level problems end a run with an error; failures of individual
// pages are recorded in the export and the crawl continues.
var (
	// ErrInvalidSeed is returned when the seed URL cannot be normalized.
	// No request is made in this case.
	ErrInvalidSeed = errors.New("invalid seed URL")

	// ErrUnsupportedScheme is returned when the seed uses a scheme other
	// than http or https.
	ErrUnsupportedScheme = errors.New("unsupported seed scheme: only http and https can be crawled")

	// ErrSeedUnreachable is returned when the seed page itself cannot be
	// fetched. Without the seed there is nothing to crawl.
	ErrSeedUnreachable = errors.New("seed page could not be fetched")
)

// FetchError describes a failed page fetch.
// StatusCode is zero when the request never got a response.
type FetchError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status of a non-2xx response.
	StatusCode int

	// Err is the underlying transport or read error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
