package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/foodinsight/huginn/tools/web_search/models"
)

const DefaultEndpoint = "https://google.serper.dev/search"

type Search struct {
	APIKey   string
	Endpoint string // defaults to DefaultEndpoint
	Client   *http.Client
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://serper.dev/ docs
	payload := map[string]any{"q": q, "num": k, "gl": "br", "hl": "pt-br"}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serper: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("serper: decode: %w", err)
	}
	var out []models.Result
	if items, ok := raw["organic"].([]any); ok {
		for _, it := range items {
			if len(out) >= k {
				break
			}
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, models.Result{
				Title:   models.Str(m["title"]),
				URL:     models.Str(m["link"]),
				Snippet: models.Str(m["snippet"]),
				Date:    models.Str(m["date"]),
			})
		}
	}
	return out, nil
}
