package config

import "time"

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			Timeout:  60 * time.Second,
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
			Language: "",
		},
		Providers: make(map[string]ProviderConfig),
		FastWhisper: FastWhisperConfig{
			URL:   "http://localhost:8000",
			Token: "dummy_api_key",
		},
		Gemini: GeminiConfig{
			Model: "",
		},
		Notifications: NotificationsConfig{
			Type: "none",
		},
	}
}
