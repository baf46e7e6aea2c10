package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultMaxRedirects is the number of redirects followed per request.
const DefaultMaxRedirects = 10

// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
// Expected format is "host:port".
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

// clientConfig collects the options of NewClient.
type clientConfig struct {
	proxyAddress string
	maxRedirects int
}

// Option configures NewClient.
type Option func(*clientConfig)

// WithSOCKS5 routes all connections through the SOCKS5 proxy at address
// ("host:port"). An empty address connects directly.
func WithSOCKS5(address string) Option {
	return func(c *clientConfig) {
		c.proxyAddress = address
	}
}

// WithMaxRedirects sets how many redirects are followed per request.
func WithMaxRedirects(n int) Option {
	return func(c *clientConfig) {
		c.maxRedirects = n
	}
}

// NewClient creates an HTTP client for crawling.
//
// The client has no overall timeout; each fetch bounds its own request.
// This function validates the proxy address but does not connect to it.
//
// Design decisions:
//   - A cookie jar keeps session cookies set by the site during the crawl
//   - Redirects are limited to prevent redirect loops
//   - The idle pool is small because a crawl talks to one host at a time
func NewClient(opts ...Option) (*http.Client, error) {
	cfg := clientConfig{maxRedirects: DefaultMaxRedirects}
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if cfg.proxyAddress != "" {
		dial, err := socks5DialContext(cfg.proxyAddress)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dial
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	maxRedirects := cfg.maxRedirects
	return &http.Client{
		Transport: transport,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// socks5DialContext returns a context-aware dial function through the proxy.
func socks5DialContext(address string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	if !IsValidProxyAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, address)
	}

	// Local SOCKS ports (Tor included) normally require no authentication.
	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}, nil
}

// IsValidProxyAddress checks if the address is in valid "host:port" format
// with a port between 1 and 65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
