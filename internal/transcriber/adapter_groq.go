package transcriber

import (
	"net/http"

	"github.com/leonardotrapani/voicescribe/internal/provider"
)

// NewGroqAdapter creates an adapter for Groq's OpenAI-compatible Whisper API.
// Its default language is Tamil, inherited from the assistant this tool grew out of.
func NewGroqAdapter(endpoint *provider.EndpointConfig, client *http.Client) *WhisperAPIAdapter {
	return newWhisperAPIAdapter(provider.Groq, endpoint, client)
}
