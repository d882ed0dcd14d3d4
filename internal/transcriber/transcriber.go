// Package transcriber turns an audio file into text through one of several
// speech-to-text backends selected by provider.ID.
//
// Every backend is wrapped in an Adapter. The Dispatcher owns a registry of
// adapters, runs the readiness gate of backends that have one, and flattens
// failures into a single *FailedError that still carries a structured Kind.
package transcriber

import (
	"context"
	"net/http"
	"time"

	"github.com/leonardotrapani/voicescribe/internal/provider"
)

const (
	// EmptySentinel is what the multimodal backend is asked to reply when it hears no speech.
	EmptySentinel = "<empty>"

	// NoTextFallback is returned by the FastWhisperAPI adapter when the response has no text.
	NoTextFallback = "No text found in the response."

	// LocalModelText is the fixed reply of the local placeholder backend.
	LocalModelText = "Transcribed text from local model"

	defaultTimeout = 60 * time.Second
)

// Adapter interface for different transcription backends
type Adapter interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}

// Request is one transcription call. It is passed by value and never retained.
type Request struct {
	Provider       provider.ID
	Credential     string // API key, may be empty for local backends
	AudioPath      string
	Language       string // optional hint; overrides the backend's fixed language
	LocalModelPath string // only meaningful for provider.Local
}

// Config holds settings shared by the default set of adapters
type Config struct {
	Timeout           time.Duration
	BaseURLs          map[provider.ID]string // per-backend base URL overrides
	FastWhisperToken  string
	FastWhisperPrompt string
	GeminiModel       string // empty means read GEMINI_MODEL at call time
}

func DefaultConfig() Config {
	return Config{
		Timeout:          defaultTimeout,
		FastWhisperToken: "dummy_api_key",
	}
}

// IsEmptySentinel reports whether text is the multimodal backend's "no speech" reply.
func IsEmptySentinel(text string) bool {
	return text == EmptySentinel
}

func (c Config) httpClient() *http.Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// endpoint returns the registry endpoint for id with any configured base URL override applied
func (c Config) endpoint(id provider.ID) *provider.EndpointConfig {
	info, _ := provider.Get(id)
	if info.Endpoint == nil {
		return nil
	}
	ep := *info.Endpoint
	if base, ok := c.BaseURLs[id]; ok && base != "" {
		ep.BaseURL = base
	}
	return &ep
}

func pickLanguage(hint, fixed string) string {
	if hint != "" {
		return hint
	}
	return fixed
}
