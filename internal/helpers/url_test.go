package helpers

import "testing"

func TestCanonicalURL(t *testing.T) {
	cases := map[string]string{
		"HTTPS://www.Example.com:443/receitas/../tendencias/?utm_source=x&b=2&a=1#top": "https://example.com/tendencias?a=1&b=2",
		"example.com":                    "https://example.com/",
		"http://example.com:8080/a/":     "http://example.com:8080/a",
		"//cdn.example.com/x?fbclid=abc": "https://cdn.example.com/x",
	}
	for in, want := range cases {
		got, err := CanonicalURL(in)
		if err != nil {
			t.Fatalf("CanonicalURL(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("CanonicalURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalURLErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "https://"} {
		if _, err := CanonicalURL(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
