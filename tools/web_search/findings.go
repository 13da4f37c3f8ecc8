package web_search

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodinsight/huginn/internal/helpers"
	"github.com/foodinsight/huginn/tools/web_search/models"
)

const maxSnippet = 300

// Findings turns a WebSearcher into the free-text findings a language model
// reads: results are sanitised, de-duplicated by canonical URL and numbered.
type Findings struct {
	searcher WebSearcher
	results  int
}

func NewFindings(ws WebSearcher, results int) *Findings {
	if results <= 0 {
		results = 5
	}
	return &Findings{searcher: ws, results: results}
}

func (f *Findings) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("empty search query")
	}
	results, err := f.searcher.Discover(ctx, query, f.results)
	if err != nil {
		return "", err
	}
	return Format(query, results), nil
}

// Format renders results as a numbered list. An empty result set is not an
// error; the model is told nothing was found.
func Format(query string, results []models.Result) string {
	seen := make(map[string]struct{}, len(results))
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", query)
	n := 0
	for _, r := range results {
		key, err := helpers.CanonicalURL(r.URL)
		if err != nil {
			key = strings.TrimSpace(r.URL)
		}
		if _, dup := seen[key]; dup && key != "" {
			continue
		}
		seen[key] = struct{}{}

		title := helpers.SanitizeSnippet(r.Title)
		snippet := helpers.Truncate(helpers.SanitizeSnippet(r.Snippet), maxSnippet)
		if title == "" && snippet == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "\n[%d] %s\n", n, title)
		if r.URL != "" {
			fmt.Fprintf(&b, "    Link: %s\n", strings.TrimSpace(r.URL))
		}
		if d := strings.TrimSpace(r.Date); d != "" {
			fmt.Fprintf(&b, "    Date: %s\n", d)
		}
		if snippet != "" {
			fmt.Fprintf(&b, "    Snippet: %s\n", snippet)
		}
	}
	if n == 0 {
		return fmt.Sprintf("No results found for %q.", query)
	}
	return b.String()
}
