package transcriber

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const geminiAudioMIME = "audio/mp3"

// GeminiAdapter uses a multimodal chat model as a transcriber by attaching the
// audio inline and asking for a verbatim transcript.
type GeminiAdapter struct {
	client    *http.Client
	endpoint  *provider.EndpointConfig
	model     string
	language  string
	lookupEnv func(string) (string, bool)
	log       zerolog.Logger
}

// NewGeminiAdapter creates the adapter. An empty model means GEMINI_MODEL is read on every call.
func NewGeminiAdapter(endpoint *provider.EndpointConfig, model string, client *http.Client) *GeminiAdapter {
	info, _ := provider.Get(provider.Gemini)
	if endpoint == nil {
		endpoint = info.Endpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &GeminiAdapter{
		client:    client,
		endpoint:  endpoint,
		model:     model,
		language:  info.Language,
		lookupEnv: os.LookupEnv,
		log:       logx.Component("gemini-adapter"),
	}
}

// Transcribe returns the model reply untouched, including EmptySentinel.
func (a *GeminiAdapter) Transcribe(ctx context.Context, req Request) (string, error) {
	model, err := a.resolveModel()
	if err != nil {
		return "", err
	}

	audioData, err := readAudio(provider.Gemini, req.AudioPath)
	if err != nil {
		return "", err
	}

	chatReq := buildGeminiRequest(model, pickLanguage(req.Language, a.language), audioData)

	clientConfig := openai.DefaultConfig(req.Credential)
	clientConfig.BaseURL = a.endpoint.BaseURL
	clientConfig.HTTPClient = a.client
	client := openai.NewClientWithConfig(clientConfig)

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(start)

	if err != nil {
		a.log.Warn().Err(err).Dur("duration", duration).Str("model", model).Msg("API call failed")
		return "", wrapError(provider.Gemini, fmt.Errorf("gemini chat completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", newError(KindMalformedResponse, provider.Gemini, fmt.Errorf("gemini chat completion: no response choices"))
	}

	result := resp.Choices[0].Message.Content
	a.log.Debug().Dur("duration", duration).Str("text", result).Msg("transcribed")
	return result, nil
}

func (a *GeminiAdapter) resolveModel() (string, error) {
	model := a.model
	if model == "" {
		model, _ = a.lookupEnv(provider.EnvGeminiModel)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return "", newError(KindMissingConfiguration, provider.Gemini,
			fmt.Errorf("%s is not set", provider.EnvGeminiModel))
	}
	// "gemini/<model>" is a routing prefix some tools use; the API wants the bare name
	return strings.TrimPrefix(model, "gemini/"), nil
}

func buildGeminiRequest(model, lang string, audioData []byte) openai.ChatCompletionRequest {
	encoded := base64.StdEncoding.EncodeToString(audioData)
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: geminiPrompt(lang)},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: "data:" + geminiAudioMIME + ";base64," + encoded},
					},
				},
			},
		},
	}
}

func geminiPrompt(lang string) string {
	return fmt.Sprintf("Just transcribe the %s audio. If no audio is detected, just say '%s'.", languageName(lang), EmptySentinel)
}

// languageName turns a code like "ta" into "Tamil"; unknown codes are used as given
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
