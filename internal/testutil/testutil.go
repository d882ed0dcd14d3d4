// Package testutil holds helpers shared by tests outside the transcriber package.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/voicescribe/internal/config"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/leonardotrapani/voicescribe/internal/transcriber"
)

// FakeWAV is a RIFF header followed by silence, enough for content sniffing
var FakeWAV = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 64)...)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Transcription.Provider = string(provider.OpenAI)
	cfg.Providers[string(provider.OpenAI)] = config.ProviderConfig{APIKey: "sk-test-api-key"}
	return cfg
}

// IsolateConfig points the user config directory at a temp dir and clears
// provider keys from the environment.
func IsolateConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, id := range provider.ListRequiringAPIKey() {
		t.Setenv(provider.EnvVarForProvider(id), "")
	}
	t.Setenv(provider.EnvGeminiModel, "")
	return dir
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// WriteAudio writes FakeWAV to dir/name and returns the path
func WriteAudio(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, FakeWAV, 0644); err != nil {
		t.Fatalf("Failed to write audio file: %v", err)
	}
	return path
}

// MockTranscriber records requests and answers with Text or Err
type MockTranscriber struct {
	Text string
	Err  error

	mu       sync.Mutex
	requests []transcriber.Request
}

func NewMockTranscriber(text string) *MockTranscriber {
	return &MockTranscriber{Text: text}
}

func (m *MockTranscriber) Transcribe(ctx context.Context, req transcriber.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// Requests returns a copy of every request seen so far
func (m *MockTranscriber) Requests() []transcriber.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transcriber.Request(nil), m.requests...)
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}
