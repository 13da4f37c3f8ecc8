package helpers

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// StrictHTMLPolicy returns a shared policy that strips every element and attribute.
func StrictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// SanitizeSnippet turns a search-engine title or snippet into plain text.
// Search APIs return highlighted fragments (<b>, <strong>) and HTML entities;
// both are removed so the language model only sees prose.
func SanitizeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = StrictHTMLPolicy().Sanitize(s)
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// Truncate cuts s to at most limit runes, appending an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
