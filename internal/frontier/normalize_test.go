package frontier

import "testing"

// TestNormalizeURL tests canonicalization rules.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"HTTP://Example.COM/Recipes/", "http://example.com/Recipes"},
		{"https://example.com", "https://example.com/"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/page#section", "https://example.com/page"},
		{"http://example.com:80/x", "http://example.com/x"},
		{"https://example.com:443/x", "https://example.com/x"},
		{"https://example.com:8443/x", "https://example.com:8443/x"},
		{"https://example.com/x?b=2&a=1", "https://example.com/x?a=1&b=2"},
		{" https://example.com/x ", "https://example.com/x"},
	}

	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		if err != nil {
			t.Errorf("NormalizeURL(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

// TestNormalizeURLEquivalence tests that URL spellings of the same page
// normalize identically.
func TestNormalizeURLEquivalence(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"https://example.com/r?a=1&b=2", "https://example.com/r?b=2&a=1"},
		{"https://EXAMPLE.com/r/", "https://example.com/r"},
		{"https://example.com/r#top", "https://example.com/r#bottom"},
	}

	for _, p := range pairs {
		a, err := NormalizeURL(p[0])
		if err != nil {
			t.Fatalf("NormalizeURL(%q) failed: %v", p[0], err)
		}
		b, err := NormalizeURL(p[1])
		if err != nil {
			t.Fatalf("NormalizeURL(%q) failed: %v", p[1], err)
		}
		if a != b {
			t.Errorf("expected %q and %q to normalize equally, got %q vs %q", p[0], p[1], a, b)
		}
	}
}

// TestNormalizeURLInvalid tests rejection of malformed or non-HTTP URLs.
func TestNormalizeURLInvalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"javascript:void(0)",
		"mailto:cook@example.com",
		"not a url at all ::",
		"/relative/only",
		"ftp://example.com/file",
	} {
		if _, err := NormalizeURL(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

// TestRegistrableDomain tests eTLD+1 extraction with fallbacks.
func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{"www.example.com", "example.com"},
		{"recipes.blog.example.co.uk", "example.co.uk"},
		{"Example.COM", "example.com"},
		{"127.0.0.1:8080", "127.0.0.1"},
		{"localhost", "localhost"},
	}

	for _, tt := range tests {
		if got := RegistrableDomain(tt.host); got != tt.want {
			t.Errorf("RegistrableDomain(%q): expected %q, got %q", tt.host, tt.want, got)
		}
	}
}
