package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// WhisperAPIAdapter implements Adapter for OpenAI-compatible
// /audio/transcriptions endpoints (OpenAI itself and Groq).
type WhisperAPIAdapter struct {
	id       provider.ID
	client   *http.Client
	endpoint *provider.EndpointConfig
	model    string
	language string
	log      zerolog.Logger
}

// NewOpenAIAdapter creates an adapter for OpenAI Whisper.
// The model and language are fixed; a request language hint overrides the language.
func NewOpenAIAdapter(endpoint *provider.EndpointConfig, client *http.Client) *WhisperAPIAdapter {
	return newWhisperAPIAdapter(provider.OpenAI, endpoint, client)
}

func newWhisperAPIAdapter(id provider.ID, endpoint *provider.EndpointConfig, client *http.Client) *WhisperAPIAdapter {
	info, _ := provider.Get(id)
	if endpoint == nil {
		endpoint = info.Endpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &WhisperAPIAdapter{
		id:       id,
		client:   client,
		endpoint: endpoint,
		model:    info.Model,
		language: info.Language,
		log:      logx.Component(string(id) + "-adapter"),
	}
}

func (a *WhisperAPIAdapter) Transcribe(ctx context.Context, req Request) (string, error) {
	f, err := openAudio(a.id, req.AudioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// the SDK client carries the credential, so it is built per call
	clientConfig := openai.DefaultConfig(req.Credential)
	clientConfig.BaseURL = a.endpoint.BaseURL
	clientConfig.HTTPClient = a.client
	client := openai.NewClientWithConfig(clientConfig)

	audioReq := openai.AudioRequest{
		Model:    a.model,
		Reader:   f,
		FilePath: filepath.Base(req.AudioPath),
		Language: pickLanguage(req.Language, a.language),
	}

	start := time.Now()
	resp, err := client.CreateTranscription(ctx, audioReq)
	duration := time.Since(start)

	if err != nil {
		a.log.Warn().Err(err).Dur("duration", duration).Msg("API call failed")
		return "", wrapError(a.id, fmt.Errorf("%s transcription: %w", a.id, err))
	}

	a.log.Debug().Dur("duration", duration).Str("text", resp.Text).Msg("transcribed")
	return resp.Text, nil
}
