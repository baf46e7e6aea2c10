package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// Fetcher retrieves the raw body of a page.
// Implementations return a *FetchError for network failures and non-2xx
// responses; the crawler treats any error as a failure of that page only.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, pageURL string) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	return f(ctx, pageURL)
}

// Default fetcher settings.
const (
	// DefaultUserAgent mimics a desktop browser; some sites refuse the Go
	// default client string.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

// HTTPFetcher fetches pages over HTTP(S).
//
// Design decision: We require an external http.Client rather than
// creating one internally because:
//  1. Tests can point it at httptest servers
//  2. Connection pooling can be shared across runs in batch mode
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	timeout     time.Duration
	cookie      string
	headers     map[string]string
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.timeout = timeout
	}
}

// WithCookie sets a Cookie header sent with every request.
// Format: "name=value" or "name1=value1; name2=value2".
func WithCookie(cookie string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(headers map[string]string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client selects
// http.DefaultClient.
func NewHTTPFetcher(client *http.Client, opts ...HTTPFetcherOption) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &HTTPFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET request and returns the body decoded to UTF-8.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096) //nolint:errcheck // best effort
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	var body io.Reader = io.LimitReader(resp.Body, f.maxBodySize)
	if decoded, err := charset.NewReader(body, resp.Header.Get("Content-Type")); err == nil {
		body = decoded
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	return data, nil
}
