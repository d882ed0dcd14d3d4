package transcriber

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/rs/zerolog"
)

// ReadinessGate is checked by the Dispatcher before an adapter that depends on it runs
type ReadinessGate interface {
	EnsureReady(ctx context.Context) error
}

// ServiceGate probes a local HTTP service once and remembers success for the
// rest of its lifetime. Failures are not cached: the next call probes again.
type ServiceGate struct {
	client  *http.Client
	baseURL string
	infoURL string
	log     zerolog.Logger

	mu    sync.Mutex // serializes probes
	ready atomic.Bool
}

// NewServiceGate creates a gate probing baseURL + "/info"
func NewServiceGate(baseURL string, client *http.Client) *ServiceGate {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	base := strings.TrimRight(baseURL, "/")
	return &ServiceGate{
		client:  client,
		baseURL: base,
		infoURL: base + "/info",
		log:     logx.Component("service-gate"),
	}
}

// NewFastWhisperGate creates the gate for the FastWhisperAPI endpoint in cfg
func NewFastWhisperGate(cfg Config) *ServiceGate {
	return NewServiceGate(cfg.endpoint(provider.FastWhisperAPI).BaseURL, cfg.httpClient())
}

// BaseURL is the service root the gate probes, without a trailing slash
func (g *ServiceGate) BaseURL() string {
	return g.baseURL
}

// Ready reports whether a probe has already succeeded
func (g *ServiceGate) Ready() bool {
	return g.ready.Load()
}

// EnsureReady returns nil once the service has answered 200 on its info endpoint.
func (g *ServiceGate) EnsureReady(ctx context.Context) error {
	if g.ready.Load() {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// another caller may have finished the probe while we waited
	if g.ready.Load() {
		return nil
	}

	if err := g.probe(ctx); err != nil {
		g.log.Warn().Err(err).Str("url", g.infoURL).Msg("FastWhisperAPI is not running")
		return newError(KindServiceNotRunning, provider.FastWhisperAPI, err)
	}

	g.ready.Store(true)
	g.log.Info().Str("url", g.infoURL).Msg("service verified")
	return nil
}

func (g *ServiceGate) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.infoURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", g.infoURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe %s: status %d", g.infoURL, resp.StatusCode)
	}
	return nil
}
