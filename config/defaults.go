package config

const (
	DefaultLLMProvider = "groq"
	DefaultLLMModel    = "llama-3.3-70b-versatile"
	DefaultTemperature = 0.85
	DefaultOutputPath  = "insight_report.md"

	groqBaseURL   = "https://api.groq.com/openai/v1"
	openAIBaseURL = "https://api.openai.com/v1"
)

// DefaultTopics is the built-in catalogue of search angles. One is drawn per
// run so consecutive runs research different corners of the market.
var DefaultTopics = []string{
	"lanches salgados virais tiktok brasil 2025",
	"novos sabores de hamburguer artesanal tendencias",
	"comida de rua coreana popular no brasil",
	"sobremesas diferentes delivery 2025",
	"sanduiches gourmet tendencias instagram",
	"fusion food brasil tendencias rua",
}

// DefaultBaseURL returns the OpenAI-compatible endpoint for a provider.
func DefaultBaseURL(provider string) string {
	if provider == "openai" {
		return openAIBaseURL
	}
	return groqBaseURL
}

// LLMKeyEnv maps each language model provider to the well-known variable
// holding its credential. HUGINN_LLM_API_KEY takes precedence over these.
var LLMKeyEnv = map[string]string{
	"groq":   "GROQ_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// SearchKeyEnv maps each search provider to its credential variable.
// HUGINN_SEARCH_API_KEY takes precedence over these.
var SearchKeyEnv = map[string]string{
	"serper": "SERPER_API_KEY",
	"brave":  "BRAVE_API_KEY",
}
