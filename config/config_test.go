package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("SERPER_API_KEY", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "gsk-test" {
		t.Fatalf("expected llm api key from GROQ_API_KEY, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != DefaultLLMModel {
		t.Fatalf("expected default model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != DefaultTemperature {
		t.Fatalf("expected temperature %.2f, got %.2f", DefaultTemperature, cfg.LLM.Temperature)
	}
	if cfg.LLM.BaseURL != groqBaseURL {
		t.Fatalf("expected groq base url, got %q", cfg.LLM.BaseURL)
	}
	if cfg.Search.Enabled() {
		t.Fatalf("expected search disabled without a key")
	}
	if cfg.Output.Path != DefaultOutputPath {
		t.Fatalf("expected output path %q, got %q", DefaultOutputPath, cfg.Output.Path)
	}
	if diff := cmp.Diff(DefaultTopics, cfg.Pipeline.Topics); diff != "" {
		t.Fatalf("unexpected topics (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huginn.yaml")
	body := []byte(`
llm:
  provider: openai
  model: gpt-4o-mini
  temperature: 0.4
  timeout: 20s
search:
  results: 3
pipeline:
  topics: ["  pastel de feira ", "pastel de feira", "", "bolo de pote"]
  require_search: true
output:
  path: out/listing.md
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("HUGINN_LLM_API_KEY", "sk-env")
	t.Setenv("SERPER_API_KEY", "serper-key")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.BaseURL != openAIBaseURL {
		t.Fatalf("expected openai provider and base url, got %q %q", cfg.LLM.Provider, cfg.LLM.BaseURL)
	}
	if cfg.LLM.APIKey != "sk-env" {
		t.Fatalf("expected HUGINN_LLM_API_KEY to win, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Timeout != 20*time.Second {
		t.Fatalf("expected 20s timeout, got %v", cfg.LLM.Timeout)
	}
	if !cfg.Search.Enabled() || cfg.Search.Results != 3 {
		t.Fatalf("expected search enabled with 3 results, got %+v", cfg.Search)
	}
	if !cfg.Pipeline.RequireSearch {
		t.Fatalf("expected require_search from file")
	}
	if diff := cmp.Diff([]string{"pastel de feira", "bolo de pote"}, cfg.Pipeline.Topics); diff != "" {
		t.Fatalf("unexpected topics (-want +got):\n%s", diff)
	}
	if cfg.Output.Path != "out/listing.md" {
		t.Fatalf("unexpected output path %q", cfg.Output.Path)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLLMValidateTemperature(t *testing.T) {
	cfg := LLMConfig{Temperature: 1.2}.Normalize()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected temperature validation error")
	}
	cfg.Temperature = 0.85
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	cfg.Provider = "anthropic"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}

func TestS3Validate(t *testing.T) {
	if err := (S3Config{}).Validate(); err != nil {
		t.Fatalf("disabled mirror should validate, got %v", err)
	}
	if err := (S3Config{Endpoint: "localhost:9000"}).Validate(); err == nil {
		t.Fatalf("expected bucket error")
	}
	ok := S3Config{Endpoint: "localhost:9000", Bucket: "listings", AccessKeyID: "a", SecretAccessKey: "b"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTelemetryValidate(t *testing.T) {
	if err := (TelemetryConfig{Enabled: true}).Validate(); err == nil {
		t.Fatalf("expected error when telemetry has no sink")
	}
	if err := (TelemetryConfig{Enabled: true, MetricsFile: "huginn.prom"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HUGINN_LLM_API_KEY", "HUGINN_SEARCH_API_KEY",
		"GROQ_API_KEY", "OPENAI_API_KEY", "SERPER_API_KEY", "BRAVE_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigIgnoresOtherVendorCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai-secret")
	t.Setenv("BRAVE_API_KEY", "brave-secret")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != "groq" || cfg.LLM.APIKey != "" {
		t.Fatalf("groq must not receive the OpenAI key, got provider=%q key=%q", cfg.LLM.Provider, cfg.LLM.APIKey)
	}
	if cfg.Search.Provider != "serper" || cfg.Search.Enabled() {
		t.Fatalf("serper must not receive the Brave key, got provider=%q key=%q", cfg.Search.Provider, cfg.Search.APIKey)
	}
}

func TestLoadConfigUsesChosenProviderCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-groq")
	t.Setenv("SERPER_API_KEY", "serper-key")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("BRAVE_API_KEY", "brave-key")

	path := filepath.Join(t.TempDir(), "huginn.yaml")
	body := []byte("llm:\n  provider: openai\nsearch:\n  provider: brave\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "sk-openai" {
		t.Fatalf("expected OPENAI_API_KEY for openai, got %q", cfg.LLM.APIKey)
	}
	if cfg.Search.APIKey != "brave-key" {
		t.Fatalf("expected BRAVE_API_KEY for brave, got %q", cfg.Search.APIKey)
	}
}

func TestLoadConfigRejectsBlankCatalog(t *testing.T) {
	cases := map[string]string{
		"empty list":   "pipeline:\n  topics: []\n",
		"blank values": "pipeline:\n  topics: [\"  \", \"\"]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "huginn.yaml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, err := LoadConfig(path)
			if !errors.Is(err, ErrEmptyCatalog) {
				t.Fatalf("expected ErrEmptyCatalog, got %v", err)
			}
		})
	}
}

func TestPipelineNormalizeKeepsEmptyCatalog(t *testing.T) {
	cfg := PipelineConfig{Topics: []string{" ", ""}}.Normalize()
	if len(cfg.Topics) != 0 {
		t.Fatalf("expected no topics, got %v", cfg.Topics)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}
