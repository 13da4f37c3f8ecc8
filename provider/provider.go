package provider

import (
	"fmt"
	"log"

	"github.com/foodinsight/huginn/config"
	"github.com/foodinsight/huginn/internal/pipeline"
	openai_provider "github.com/foodinsight/huginn/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	Groq   Client = "groq"
	OpenAI Client = "openai"
)

// NewProvider builds the language model for every stage. A missing credential
// is a ConfigurationError so the run stops before any network call.
func NewProvider(cfg config.LLMConfig, debug bool, logger *log.Logger) (pipeline.LanguageModel, error) {
	client := Client(cfg.Provider)
	env, ok := config.LLMKeyEnv[string(client)]
	if !ok {
		return nil, pipeline.ConfigurationError{Reason: fmt.Sprintf("unsupported LLM provider %q", cfg.Provider)}
	}
	if cfg.APIKey == "" {
		return nil, pipeline.ConfigurationError{Reason: env + " (or HUGINN_LLM_API_KEY) is not set"}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL(cfg.Provider)
	}
	return openai_provider.NewClient(openai_provider.Options{
		APIKey:        cfg.APIKey,
		BaseURL:       baseURL,
		Model:         cfg.Model,
		Temperature:   cfg.Temperature,
		MaxTokens:     cfg.MaxTokens,
		Timeout:       cfg.Timeout,
		MaxToolRounds: cfg.MaxToolRounds,
		Debug:         debug,
		Logger:        logger,
	}), nil
}
