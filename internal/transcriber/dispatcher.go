package transcriber

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/rs/zerolog"
)

type registration struct {
	adapter Adapter
	gate    ReadinessGate
}

// Dispatcher routes a Request to the adapter registered for its provider.
// It is safe for concurrent use once registration is complete.
type Dispatcher struct {
	adapters        map[provider.ID]registration
	log             zerolog.Logger
	fastWhisperGate *ServiceGate
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger replaces the dispatcher's logger
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithServiceGate makes NewDefaultDispatcher guard FastWhisperAPI with g
// instead of a fresh gate, so a verified service stays verified across dispatchers.
func WithServiceGate(g *ServiceGate) Option {
	return func(d *Dispatcher) {
		d.fastWhisperGate = g
	}
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		adapters: make(map[provider.ID]registration),
		log:      logx.Component("dispatcher"),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// NewDefaultDispatcher registers every known backend using cfg.
// FastWhisperAPI is guarded by the gate given with WithServiceGate, or by a
// new one built from cfg.
func NewDefaultDispatcher(cfg Config, opts ...Option) *Dispatcher {
	client := cfg.httpClient()
	d := NewDispatcher(opts...)

	gate := d.fastWhisperGate
	if gate == nil {
		gate = NewFastWhisperGate(cfg)
	}

	d.Register(provider.OpenAI, NewOpenAIAdapter(cfg.endpoint(provider.OpenAI), client), nil)
	d.Register(provider.Groq, NewGroqAdapter(cfg.endpoint(provider.Groq), client), nil)
	d.Register(provider.Deepgram, NewDeepgramAdapter(cfg.endpoint(provider.Deepgram), client), nil)

	fw := cfg.endpoint(provider.FastWhisperAPI)
	d.Register(provider.FastWhisperAPI,
		NewFastWhisperAdapter(fw, cfg.FastWhisperToken, client).WithInitialPrompt(cfg.FastWhisperPrompt),
		gate)

	d.Register(provider.Gemini, NewGeminiAdapter(cfg.endpoint(provider.Gemini), cfg.GeminiModel, client), nil)
	d.Register(provider.Local, NewLocalModelAdapter(), nil)
	return d
}

// Register binds an adapter to a provider. gate may be nil.
// Registering the same provider twice replaces the earlier adapter.
func (d *Dispatcher) Register(id provider.ID, adapter Adapter, gate ReadinessGate) {
	d.adapters[id] = registration{adapter: adapter, gate: gate}
}

// Providers lists the registered providers in name order
func (d *Dispatcher) Providers() []provider.ID {
	ids := make([]provider.ID, 0, len(d.adapters))
	for id := range d.adapters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Transcribe performs exactly one backend call for req.
// On failure the returned error is a *FailedError matching ErrTranscriptionFailed;
// use KindOf or errors.As with *Error to inspect the cause.
func (d *Dispatcher) Transcribe(ctx context.Context, req Request) (string, error) {
	text, err := d.transcribe(ctx, req)
	if err != nil {
		return "", d.fail(req, err)
	}
	return text, nil
}

// TranscribeFile is the string-keyed entry point: the provider name is parsed first.
func (d *Dispatcher) TranscribeFile(ctx context.Context, providerName, credential, audioPath, localModelPath string) (string, error) {
	id, err := provider.Parse(providerName)
	if err != nil {
		req := Request{Provider: provider.ID(providerName), AudioPath: audioPath}
		return "", d.fail(req, newError(KindUnsupportedProvider, req.Provider, err))
	}
	return d.Transcribe(ctx, Request{
		Provider:       id,
		Credential:     credential,
		AudioPath:      audioPath,
		LocalModelPath: localModelPath,
	})
}

func (d *Dispatcher) transcribe(ctx context.Context, req Request) (string, error) {
	reg, ok := d.adapters[req.Provider]
	if !ok {
		return "", newError(KindUnsupportedProvider, req.Provider,
			fmt.Errorf("unsupported transcription provider: %q", req.Provider))
	}

	if reg.gate != nil {
		if err := reg.gate.EnsureReady(ctx); err != nil {
			return "", err
		}
	}

	return reg.adapter.Transcribe(ctx, req)
}

// fail logs the full cause once and hides it behind the uniform error
func (d *Dispatcher) fail(req Request, err error) error {
	var cause *Error
	if !errors.As(err, &cause) {
		cause = wrapError(req.Provider, err)
	}

	d.log.Error().
		Err(cause).
		Str("provider", string(req.Provider)).
		Str("kind", cause.Kind.String()).
		Bool("retryable", cause.Kind.Retryable()).
		Str("audio", req.AudioPath).
		Str("stack", string(cause.Stack())).
		Msg("failed to transcribe audio")

	return &FailedError{Cause: cause}
}
