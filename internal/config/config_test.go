package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/voicescribe/internal/provider"
)

// createTestConfig returns a valid configuration for testing
func createTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Transcription.Provider = "openai"
	cfg.Providers["openai"] = ProviderConfig{APIKey: "sk-test"}
	return cfg
}

// clearKeyEnv keeps the developer's real keys out of validation tests
func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		provider.EnvOpenAIKey, provider.EnvGroqKey, provider.EnvDeepgramKey,
		provider.EnvGeminiKey, provider.EnvGeminiModel,
	} {
		t.Setenv(name, "")
	}
}

func TestConfig_Validate(t *testing.T) {
	clearKeyEnv(t)

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "valid config", modify: func(c *Config) {}},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.General.LogLevel = "loud" },
			wantErr: "general.log_level",
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.General.Timeout = 0 },
			wantErr: "general.timeout",
		},
		{
			name:    "empty provider",
			modify:  func(c *Config) { c.Transcription.Provider = "" },
			wantErr: "transcription.provider: empty",
		},
		{
			name:    "unknown provider",
			modify:  func(c *Config) { c.Transcription.Provider = "azure" },
			wantErr: "invalid transcription.provider: azure",
		},
		{
			name:    "provider name is case sensitive",
			modify:  func(c *Config) { c.Transcription.Provider = "OpenAI" },
			wantErr: "invalid transcription.provider: OpenAI",
		},
		{
			name:    "bad language",
			modify:  func(c *Config) { c.Transcription.Language = "english" },
			wantErr: "transcription.language",
		},
		{
			name:   "tamil language",
			modify: func(c *Config) { c.Transcription.Language = "ta" },
		},
		{
			name: "missing key",
			modify: func(c *Config) {
				c.Transcription.Provider = "deepgram"
			},
			wantErr: "DEEPGRAM_API_KEY",
		},
		{
			name: "local needs no key",
			modify: func(c *Config) {
				c.Transcription.Provider = "local"
				c.Providers = nil
			},
		},
		{
			name:    "unknown providers entry",
			modify:  func(c *Config) { c.Providers["mistral"] = ProviderConfig{APIKey: "x"} },
			wantErr: "providers.mistral",
		},
		{
			name:    "bad notification type",
			modify:  func(c *Config) { c.Notifications.Type = "email" },
			wantErr: "notifications.type",
		},
		{
			name:   "log notifications",
			modify: func(c *Config) { c.Notifications.Type = "log" },
		},
		{
			name: "fastwhisper url without scheme",
			modify: func(c *Config) {
				c.Transcription.Provider = "fastwhisperapi"
				c.FastWhisper.URL = "localhost:8000"
			},
			wantErr: "fastwhisper.url",
		},
		{
			name: "fastwhisper default url",
			modify: func(c *Config) {
				c.Transcription.Provider = "fastwhisperapi"
			},
		},
		{
			name: "gemini without model",
			modify: func(c *Config) {
				c.Transcription.Provider = "gemini"
				c.Providers["gemini"] = ProviderConfig{APIKey: "gm"}
			},
			wantErr: "GEMINI_MODEL",
		},
		{
			name: "gemini with model",
			modify: func(c *Config) {
				c.Transcription.Provider = "gemini"
				c.Providers["gemini"] = ProviderConfig{APIKey: "gm"}
				c.Gemini.Model = "gemini/gemini-1.5-flash-002"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_KeyFromEnvironment(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(provider.EnvGroqKey, "gsk_env")
	t.Setenv(provider.EnvGeminiModel, "gemini-1.5-flash")

	cfg := createTestConfig()
	cfg.Transcription.Provider = "groq"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.Transcription.Provider = "gemini"
	t.Setenv(provider.EnvGeminiKey, "gm-env")
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_ResolveAPIKey(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(provider.EnvOpenAIKey, "sk-env")
	t.Setenv(provider.EnvDeepgramKey, "dg-env")

	cfg := createTestConfig()

	if got := cfg.ResolveAPIKey(provider.OpenAI); got != "sk-test" {
		t.Errorf("openai key = %q, want config value to win", got)
	}
	if got := cfg.ResolveAPIKey(provider.Deepgram); got != "dg-env" {
		t.Errorf("deepgram key = %q, want environment fallback", got)
	}
	if got := cfg.ResolveAPIKey(provider.Local); got != "" {
		t.Errorf("local key = %q, want empty", got)
	}

	cfg.SetAPIKey(provider.OpenAI, "")
	if got := cfg.ResolveAPIKey(provider.OpenAI); got != "sk-env" {
		t.Errorf("openai key after removal = %q, want sk-env", got)
	}
	cfg.SetAPIKey(provider.Groq, "gsk_new")
	if cfg.Providers["groq"].APIKey != "gsk_new" {
		t.Errorf("SetAPIKey did not store the key: %+v", cfg.Providers)
	}
}

func TestConfig_ToTranscriberConfig(t *testing.T) {
	cfg := createTestConfig()
	cfg.General.Timeout = 15 * time.Second
	cfg.FastWhisper.URL = "http://gpu-box:9000"
	cfg.FastWhisper.InitialPrompt = "kubectl, helm"
	cfg.Gemini.Model = "gemini-2.0-flash"

	tc := cfg.ToTranscriberConfig()
	if tc.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v", tc.Timeout)
	}
	if tc.BaseURLs[provider.FastWhisperAPI] != "http://gpu-box:9000" {
		t.Errorf("BaseURLs = %v", tc.BaseURLs)
	}
	if tc.FastWhisperToken != "dummy_api_key" {
		t.Errorf("FastWhisperToken = %q", tc.FastWhisperToken)
	}
	if tc.FastWhisperPrompt != "kubectl, helm" {
		t.Errorf("FastWhisperPrompt = %q", tc.FastWhisperPrompt)
	}
	if tc.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("GeminiModel = %q", tc.GeminiModel)
	}
}

func TestConfig_ToRequest(t *testing.T) {
	clearKeyEnv(t)
	cfg := createTestConfig()
	cfg.Transcription.Language = "it"

	req, err := cfg.ToRequest("/tmp/clip.wav")
	if err != nil {
		t.Fatalf("ToRequest() error = %v", err)
	}
	if req.Provider != provider.OpenAI || req.Credential != "sk-test" || req.AudioPath != "/tmp/clip.wav" || req.Language != "it" {
		t.Errorf("ToRequest() = %+v", req)
	}

	cfg.Transcription.Provider = "whisper-x"
	if _, err := cfg.ToRequest("/tmp/clip.wav"); err == nil {
		t.Error("ToRequest() with unknown provider should fail")
	}
}

func TestConfig_Load(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		_, err := Load()
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Load() error = %v, want ErrConfigNotFound", err)
		}

		cfg, err := LoadOrDefault()
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		if cfg.Transcription.Provider != "openai" {
			t.Errorf("LoadOrDefault() provider = %q", cfg.Transcription.Provider)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tempDir)

		configPath := filepath.Join(tempDir, "voicescribe", "config.toml")
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			t.Fatalf("Failed to create config directory: %v", err)
		}
		content := `[transcription]
provider = "deepgram"

[providers.deepgram]
api_key = "dg-key"

[general]
timeout = "30s"`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Transcription.Provider != "deepgram" {
			t.Errorf("provider = %q", cfg.Transcription.Provider)
		}
		if cfg.Providers["deepgram"].APIKey != "dg-key" {
			t.Errorf("providers = %+v", cfg.Providers)
		}
		if cfg.General.Timeout != 30*time.Second {
			t.Errorf("timeout = %v", cfg.General.Timeout)
		}
		if cfg.FastWhisper.URL != "http://localhost:8000" {
			t.Errorf("fastwhisper.url = %q, want default", cfg.FastWhisper.URL)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Loaded config is invalid: %v", err)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[transcription\nprovider = "), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		if _, err := LoadFile(configPath); err == nil {
			t.Error("LoadFile() should fail on invalid TOML")
		}
	})
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	cfg := createTestConfig()
	cfg.Transcription.Provider = "groq"
	cfg.Transcription.Language = "ta"
	cfg.SetAPIKey(provider.Groq, "gsk_saved")
	cfg.Gemini.Model = "gemini-1.5-flash"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if want := filepath.Join(tempDir, "voicescribe", "config.toml"); configPath != want {
		t.Errorf("GetConfigPath() = %q, want %q", configPath, want)
	}
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Transcription != cfg.Transcription {
		t.Errorf("transcription = %+v, want %+v", loaded.Transcription, cfg.Transcription)
	}
	if loaded.Providers["groq"].APIKey != "gsk_saved" || loaded.Providers["openai"].APIKey != "sk-test" {
		t.Errorf("providers = %+v", loaded.Providers)
	}
	if loaded.General != cfg.General {
		t.Errorf("general = %+v, want %+v", loaded.General, cfg.General)
	}
	if loaded.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("gemini.model = %q", loaded.Gemini.Model)
	}
}

func TestManager_Reload(t *testing.T) {
	clearKeyEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")

	cfg := createTestConfig()
	if err := SaveFile(configPath, cfg); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	m, err := NewManagerForFile(configPath)
	if err != nil {
		t.Fatalf("NewManagerForFile() error = %v", err)
	}

	reloaded := make(chan *Config, 4)
	m.OnReload(func(c *Config) { reloaded <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartWatching(ctx); err != nil {
		t.Fatalf("StartWatching() error = %v", err)
	}
	defer m.Stop()

	cfg.Transcription.Provider = "local"
	if err := SaveFile(configPath, cfg); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	select {
	case c := <-reloaded:
		if c.Transcription.Provider != "local" {
			t.Errorf("reloaded provider = %q, want local", c.Transcription.Provider)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	if got := m.GetConfig().Transcription.Provider; got != "local" {
		t.Errorf("GetConfig() provider = %q, want local", got)
	}
}

func TestManager_InvalidReloadKeepsPrevious(t *testing.T) {
	clearKeyEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveFile(configPath, createTestConfig()); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	m, err := NewManagerForFile(configPath)
	if err != nil {
		t.Fatalf("NewManagerForFile() error = %v", err)
	}

	if err := os.WriteFile(configPath, []byte("[transcription]\nprovider = \"azure\"\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	m.reloadConfig()

	if got := m.GetConfig().Transcription.Provider; got != "openai" {
		t.Errorf("provider after invalid reload = %q, want openai", got)
	}
}

func TestManager_GetConfigIsACopy(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveFile(configPath, createTestConfig()); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	m, err := NewManagerForFile(configPath)
	if err != nil {
		t.Fatalf("NewManagerForFile() error = %v", err)
	}

	c := m.GetConfig()
	c.Providers["openai"] = ProviderConfig{APIKey: "changed"}
	c.Transcription.Provider = "groq"

	again := m.GetConfig()
	if again.Providers["openai"].APIKey != "sk-test" || again.Transcription.Provider != "openai" {
		t.Errorf("manager state was modified through a copy: %+v", again)
	}
}
