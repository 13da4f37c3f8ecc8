package web_search

import (
	"context"
	"errors"
	"net/http"

	"github.com/foodinsight/huginn/config"
	"github.com/foodinsight/huginn/tools/web_search/brave"
	"github.com/foodinsight/huginn/tools/web_search/models"
	"github.com/foodinsight/huginn/tools/web_search/serper"
)

type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported search provider")
	ErrMissingAPIKey       = errors.New("search api key is not set")
)

func NewWebSearcher(provider Provider, apiKey string, client *http.Client) (WebSearcher, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if client == nil {
		client = http.DefaultClient
	}
	switch provider {
	case SerperProvider:
		return serper.Search{APIKey: apiKey, Client: client}, nil
	case BraveProvider:
		return brave.Search{APIKey: apiKey, Client: client}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// FromConfig returns nil, nil when no search credential is configured.
func FromConfig(cfg config.SearchConfig) (*Findings, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	ws, err := NewWebSearcher(Provider(cfg.Provider), cfg.APIKey, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return NewFindings(ws, cfg.Results), nil
}
