package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// FastWhisperAdapter implements Adapter for a local FastWhisperAPI service.
// Readiness is not its concern: register it with a ServiceGate.
type FastWhisperAdapter struct {
	client        *http.Client
	endpoint      *provider.EndpointConfig
	token         string
	model         string
	language      string
	initialPrompt string
	vadFilter     bool
	log           zerolog.Logger
}

// NewFastWhisperAdapter creates an adapter posting to endpoint with a fixed bearer token
func NewFastWhisperAdapter(endpoint *provider.EndpointConfig, token string, client *http.Client) *FastWhisperAdapter {
	info, _ := provider.Get(provider.FastWhisperAPI)
	if endpoint == nil {
		endpoint = info.Endpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &FastWhisperAdapter{
		client:    client,
		endpoint:  endpoint,
		token:     token,
		model:     info.Model,
		language:  info.Language,
		vadFilter: true,
		log:       logx.Component("fastwhisper-adapter"),
	}
}

// WithInitialPrompt sets the decoder prompt sent with every request
func (a *FastWhisperAdapter) WithInitialPrompt(prompt string) *FastWhisperAdapter {
	a.initialPrompt = prompt
	return a
}

func (a *FastWhisperAdapter) Transcribe(ctx context.Context, req Request) (string, error) {
	body, contentType, err := a.buildForm(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint.URL(), body)
	if err != nil {
		return "", newError(KindBackend, provider.FastWhisperAPI, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+a.token)

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		a.log.Warn().Err(err).Dur("duration", duration).Msg("request failed")
		return "", wrapError(provider.FastWhisperAPI, fmt.Errorf("fastwhisper request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindBackendUnreachable, provider.FastWhisperAPI, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newError(kindForStatus(resp.StatusCode), provider.FastWhisperAPI,
			fmt.Errorf("fastwhisper status %d: %s", resp.StatusCode, string(respBody)))
	}

	if !gjson.ValidBytes(respBody) {
		return "", newError(KindMalformedResponse, provider.FastWhisperAPI, fmt.Errorf("response is not valid JSON"))
	}

	text := gjson.GetBytes(respBody, "text")
	if !text.Exists() || text.Type == gjson.Null {
		a.log.Debug().Dur("duration", duration).Msg("response has no text field")
		return NoTextFallback, nil
	}

	a.log.Debug().Dur("duration", duration).Str("text", text.String()).Msg("transcribed")
	return text.String(), nil
}

// buildForm writes the multipart body. The audio file is closed before returning.
func (a *FastWhisperAdapter) buildForm(req Request) (*bytes.Buffer, string, error) {
	f, err := openAudio(provider.FastWhisperAPI, req.AudioPath)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, "", newError(KindBackend, provider.FastWhisperAPI, fmt.Errorf("create form file: %w", err))
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", newError(KindInvalidAudio, provider.FastWhisperAPI, fmt.Errorf("copy audio data: %w", err))
	}

	fields := [][2]string{
		{"model", a.model},
		{"language", pickLanguage(req.Language, a.language)},
		{"vad_filter", fmt.Sprintf("%t", a.vadFilter)},
	}
	// an empty prompt is left out entirely, the service treats absence as "none"
	if a.initialPrompt != "" {
		fields = append(fields, [2]string{"initial_prompt", a.initialPrompt})
	}
	for _, kv := range fields {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", newError(KindBackend, provider.FastWhisperAPI, fmt.Errorf("write %s: %w", kv[0], err))
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", newError(KindBackend, provider.FastWhisperAPI, fmt.Errorf("close writer: %w", err))
	}
	return &body, writer.FormDataContentType(), nil
}
