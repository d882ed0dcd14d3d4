package provider

// ID identifies a transcription backend.
type ID string

// Provider identifiers accepted by the dispatcher and the config file
const (
	OpenAI         ID = "openai"
	Groq           ID = "groq"
	Deepgram       ID = "deepgram"
	FastWhisperAPI ID = "fastwhisperapi"
	Gemini         ID = "gemini"
	Local          ID = "local"
)

// Environment variable names for API keys and process-wide settings
const (
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvGroqKey     = "GROQ_API_KEY"
	EnvDeepgramKey = "DEEPGRAM_API_KEY"
	EnvGeminiKey   = "GEMINI_API_KEY"
	EnvGeminiModel = "GEMINI_MODEL"
)

func (id ID) String() string {
	return string(id)
}

// EnvVarForProvider returns the environment variable name for a provider's API key
func EnvVarForProvider(id ID) string {
	switch id {
	case OpenAI:
		return EnvOpenAIKey
	case Groq:
		return EnvGroqKey
	case Deepgram:
		return EnvDeepgramKey
	case Gemini:
		return EnvGeminiKey
	default:
		return ""
	}
}
