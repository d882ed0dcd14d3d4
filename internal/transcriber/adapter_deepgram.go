package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const deepgramTranscriptPath = "results.channels.0.alternatives.0.transcript"

// DeepgramAdapter implements Adapter for Deepgram pre-recorded transcription
type DeepgramAdapter struct {
	client   *http.Client
	endpoint *provider.EndpointConfig
	model    string
	log      zerolog.Logger
}

// NewDeepgramAdapter creates a new batch adapter for Deepgram
func NewDeepgramAdapter(endpoint *provider.EndpointConfig, client *http.Client) *DeepgramAdapter {
	info, _ := provider.Get(provider.Deepgram)
	if endpoint == nil {
		endpoint = info.Endpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &DeepgramAdapter{
		client:   client,
		endpoint: endpoint,
		model:    info.Model,
		log:      logx.Component("deepgram-adapter"),
	}
}

// Transcribe uploads the whole file and returns the first alternative of the first channel.
// A response without that path is a malformed response, not an empty transcript.
func (a *DeepgramAdapter) Transcribe(ctx context.Context, req Request) (string, error) {
	text, err := a.transcribe(ctx, req)
	if err != nil {
		a.log.Error().Err(err).Str("audio", req.AudioPath).Msg("deepgram transcription error")
		return "", err
	}
	return text, nil
}

func (a *DeepgramAdapter) transcribe(ctx context.Context, req Request) (string, error) {
	audioData, err := readAudio(provider.Deepgram, req.AudioPath)
	if err != nil {
		return "", err
	}

	apiURL, err := a.buildURL(req.Language)
	if err != nil {
		return "", newError(KindMissingConfiguration, provider.Deepgram, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(audioData))
	if err != nil {
		return "", newError(KindBackend, provider.Deepgram, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Token "+req.Credential)
	httpReq.Header.Set("Content-Type", audioContentType(audioData))

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", wrapError(provider.Deepgram, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindBackendUnreachable, provider.Deepgram, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", newError(kindForStatus(resp.StatusCode), provider.Deepgram,
			fmt.Errorf("deepgram api error (status %d): %s", resp.StatusCode, string(body)))
	}

	if !gjson.ValidBytes(body) {
		return "", newError(KindMalformedResponse, provider.Deepgram, fmt.Errorf("response is not valid JSON"))
	}
	transcript := gjson.GetBytes(body, deepgramTranscriptPath)
	if !transcript.Exists() || transcript.Type != gjson.String {
		return "", newError(KindMalformedResponse, provider.Deepgram,
			fmt.Errorf("response has no results.channels[0].alternatives[0].transcript"))
	}

	a.log.Debug().Dur("duration", time.Since(start)).Int("bytes", len(audioData)).Msg("transcribed")
	return transcript.String(), nil
}

// buildURL constructs the API URL with query parameters
func (a *DeepgramAdapter) buildURL(language string) (string, error) {
	u, err := url.Parse(a.endpoint.URL())
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("model", a.model)
	q.Set("smart_format", "true")
	if language != "" {
		q.Set("language", language)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}
