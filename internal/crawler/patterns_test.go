package crawler

import "testing"

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{pattern: "/admin/*", path: "/admin/dashboard", want: true},
		{pattern: "/admin/*", path: "/admin/users/1", want: true},
		{pattern: "/admin/*", path: "/admin", want: true},
		{pattern: "/admin/*", path: "/administrator", want: false},
		{pattern: "*.pdf", path: "/docs/file.pdf", want: true},
		{pattern: "*.pdf", path: "/docs/file.html", want: false},
		{pattern: "/api/v?", path: "/api/v1", want: true},
		{pattern: "/api/v?", path: "/api/v10", want: false},
		{pattern: "/exact", path: "/exact", want: true},
		{pattern: "logout*", path: "/account/logout-now", want: true},
	}

	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestPathFilter(t *testing.T) {
	t.Parallel()

	t.Run("zero value allows everything", func(t *testing.T) {
		t.Parallel()

		var f PathFilter
		if !f.Allows("https://example.com/anything") {
			t.Error("expected zero filter to allow")
		}
	})

	t.Run("ignore wins over follow", func(t *testing.T) {
		t.Parallel()

		f := PathFilter{
			Ignore: []string{"/docs/private/*"},
			Follow: []string{"/docs/*"},
		}

		if !f.Allows("https://example.com/docs/intro") {
			t.Error("expected /docs/intro to be followed")
		}
		if f.Allows("https://example.com/docs/private/key") {
			t.Error("expected /docs/private/key to be ignored")
		}
		if f.Allows("https://example.com/blog/post") {
			t.Error("expected /blog/post to be outside follow patterns")
		}
	})

	t.Run("empty path is root", func(t *testing.T) {
		t.Parallel()

		f := PathFilter{Follow: []string{"/"}}
		if !f.Allows("https://example.com") {
			t.Error("expected bare domain to match /")
		}
	})
}
