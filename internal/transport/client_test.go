package transport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:1080", true},
		{"[::1]:9050", true},
		{"127.0.0.1", false},
		{":9050", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:abc", false},
		{"socks5://127.0.0.1:9050", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if got := IsValidProxyAddress(tt.address); got != tt.want {
				t.Errorf("IsValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("direct client", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		client, err := NewClient()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Jar == nil {
			t.Error("expected a cookie jar")
		}

		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("invalid proxy", func(t *testing.T) {
		t.Parallel()

		_, err := NewClient(WithSOCKS5("not-an-address"))
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("valid proxy is not dialed", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(WithSOCKS5("127.0.0.1:9050"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tr, ok := client.Transport.(*http.Transport)
		if !ok || tr.DialContext == nil {
			t.Error("expected a SOCKS5 dial function")
		}
	})

	t.Run("redirect limit", func(t *testing.T) {
		t.Parallel()

		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, srv.URL+"/loop", http.StatusFound)
		}))
		t.Cleanup(srv.Close)

		client, err := NewClient(WithMaxRedirects(2))
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected the last redirect response, got %d", resp.StatusCode)
		}
	})
}
