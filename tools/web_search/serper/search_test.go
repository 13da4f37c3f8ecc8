package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDiscoverParsesOrganicResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-API-KEY"); got != "secret" {
			t.Errorf("expected api key header, got %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["q"] != "coxinha" {
			t.Errorf("unexpected query %v", body["q"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"A","link":"https://a.example","snippet":"sa","date":"2 days ago"},
			{"title":"B","link":"https://b.example","snippet":"sb"},
			{"title":"C","link":"https://c.example","snippet":"sc"}
		]}`))
	}))
	defer srv.Close()

	s := Search{APIKey: "secret", Endpoint: srv.URL, Client: srv.Client()}
	res, err := s.Discover(context.Background(), "coxinha", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}
	if res[0].URL != "https://a.example" || res[0].Date != "2 days ago" {
		t.Fatalf("unexpected first result %+v", res[0])
	}
}

func TestDiscoverReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := Search{APIKey: "bad", Endpoint: srv.URL, Client: srv.Client()}
	_, err := s.Discover(context.Background(), "x", 3)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
}
