package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for a listing run
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Output    OutputConfig    `mapstructure:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug     bool   `mapstructure:"debug"` // log prompts and responses
	LogPrefix string `mapstructure:"log_prefix"`
}

// LLMConfig configures the language model used by every stage
type LLMConfig struct {
	Provider      string        `mapstructure:"provider"` // groq, openai
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	Temperature   float64       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxToolRounds int           `mapstructure:"max_tool_rounds"`
}

// Normalize fills unset LLM values with defaults.
func (c LLMConfig) Normalize() LLMConfig {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = DefaultLLMProvider
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = DefaultLLMModel
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultBaseURL(c.Provider)
	}
	if c.Timeout <= 0 {
		c.Timeout = 90 * time.Second
	}
	if c.MaxToolRounds <= 0 {
		c.MaxToolRounds = 3
	}
	return c
}

// Validate checks the LLM settings. The API key is not checked here; a
// missing key is reported when the provider is built.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case "groq", "openai":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.Provider)
	}
	if math.IsNaN(c.Temperature) || c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("llm.temperature must be within [0,1], got %v", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens cannot be negative")
	}
	return nil
}

// SearchConfig configures the web search collaborator
type SearchConfig struct {
	Provider string        `mapstructure:"provider"` // serper, brave
	APIKey   string        `mapstructure:"api_key"`
	Results  int           `mapstructure:"results"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a search credential is present.
func (c SearchConfig) Enabled() bool { return strings.TrimSpace(c.APIKey) != "" }

func (c SearchConfig) Normalize() SearchConfig {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = "serper"
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.Results <= 0 {
		c.Results = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

func (c SearchConfig) Validate() error {
	switch c.Provider {
	case "serper", "brave":
		return nil
	default:
		return fmt.Errorf("search.provider %q is not supported", c.Provider)
	}
}

// PipelineConfig controls topic selection and stage capabilities
type PipelineConfig struct {
	Topics        []string `mapstructure:"topics"`
	RequireSearch bool     `mapstructure:"require_search"`
	Seed          int64    `mapstructure:"seed"` // 0 seeds from the clock
}

// ErrEmptyCatalog is returned when a configured topic catalogue has no usable
// entries.
var ErrEmptyCatalog = errors.New("pipeline.topics has no usable entries")

// Normalize trims and de-duplicates the topic catalogue. An absent catalogue
// is filled from DefaultTopics by LoadConfig, not here.
func (c PipelineConfig) Normalize() PipelineConfig {
	seen := make(map[string]struct{}, len(c.Topics))
	var topics []string
	for _, t := range c.Topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		topics = append(topics, t)
	}
	c.Topics = topics
	return c
}

func (c PipelineConfig) Validate() error {
	if len(c.Topics) == 0 {
		return ErrEmptyCatalog
	}
	return nil
}

// OutputConfig controls where the terminal artifact goes
type OutputConfig struct {
	Path string   `mapstructure:"path"`
	S3   S3Config `mapstructure:"s3"`
}

// S3Config configures the optional object storage mirror.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
}

// Enabled reports whether the mirror is configured.
func (s S3Config) Enabled() bool { return strings.TrimSpace(s.Endpoint) != "" }

func (s S3Config) Validate() error {
	if !s.Enabled() {
		return nil
	}
	if strings.TrimSpace(s.Bucket) == "" {
		return fmt.Errorf("output.s3.bucket required when endpoint is provided")
	}
	if strings.TrimSpace(s.AccessKeyID) == "" || strings.TrimSpace(s.SecretAccessKey) == "" {
		return fmt.Errorf("output.s3 credentials required when endpoint is provided")
	}
	return nil
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MetricsFile  string `mapstructure:"metrics_file"` // Prometheus textfile collector output
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && strings.TrimSpace(t.MetricsFile) == "" && strings.TrimSpace(t.OTLPEndpoint) == "" {
		return fmt.Errorf("telemetry.metrics_file or telemetry.otlp_endpoint required when telemetry is enabled")
	}
	return nil
}

// LoadConfig loads configuration from an optional file and HUGINN_* environment
// variables. An empty credential is then taken from the variable belonging to
// the chosen provider (see LLMKeyEnv and SearchKeyEnv), never from another
// vendor's. A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (*Config, error) {
	LoadDotEnv()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config") // name of config file (without extension)
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("HUGINN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // read in environment variables that match (HUGINN_*)
	_ = v.BindEnv("llm.api_key", "HUGINN_LLM_API_KEY")
	_ = v.BindEnv("search.api_key", "HUGINN_SEARCH_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if !v.IsSet("pipeline.topics") {
		cfg.Pipeline.Topics = append([]string(nil), DefaultTopics...)
	}
	cfg = cfg.Normalize()
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = strings.TrimSpace(os.Getenv(LLMKeyEnv[cfg.LLM.Provider]))
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = strings.TrimSpace(os.Getenv(SearchKeyEnv[cfg.Search.Provider]))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_prefix", "[HUGINN] ")
	v.SetDefault("llm.provider", DefaultLLMProvider)
	v.SetDefault("llm.model", DefaultLLMModel)
	v.SetDefault("llm.temperature", DefaultTemperature)
	v.SetDefault("llm.timeout", "90s")
	v.SetDefault("llm.max_tool_rounds", 3)
	v.SetDefault("search.provider", "serper")
	v.SetDefault("search.results", 5)
	v.SetDefault("search.timeout", "15s")
	v.SetDefault("pipeline.require_search", false)
	v.SetDefault("output.path", DefaultOutputPath)
	v.SetDefault("output.s3.prefix", "listings")
	v.SetDefault("output.s3.region", "us-east-1")
	v.SetDefault("telemetry.service_name", "huginn")
}

// Normalize applies per-section defaults.
func (c Config) Normalize() Config {
	c.LLM = c.LLM.Normalize()
	c.Search = c.Search.Normalize()
	c.Pipeline = c.Pipeline.Normalize()
	c.Output.Path = strings.TrimSpace(c.Output.Path)
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		c.Telemetry.ServiceName = "huginn"
	}
	return c
}

// Validate runs every section validator.
func (c Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if err := c.Output.S3.Validate(); err != nil {
		return err
	}
	return c.Telemetry.Validate()
}
