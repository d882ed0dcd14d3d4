package config

import "time"

type Config struct {
	General       GeneralConfig             `toml:"general"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	FastWhisper   FastWhisperConfig         `toml:"fastwhisper"`
	Gemini        GeminiConfig              `toml:"gemini"`
	Notifications NotificationsConfig       `toml:"notifications"`
}

// GeneralConfig holds global settings that apply across the application
type GeneralConfig struct {
	LogLevel string        `toml:"log_level"` // trace, debug, info, warn, error, none
	Timeout  time.Duration `toml:"timeout"`   // per backend call
}

type TranscriptionConfig struct {
	Provider string `toml:"provider"`
	Language string `toml:"language"` // empty keeps each backend's fixed language
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

// FastWhisperConfig points at the local FastWhisperAPI service
type FastWhisperConfig struct {
	URL           string `toml:"url"`
	Token         string `toml:"token"`
	InitialPrompt string `toml:"initial_prompt"`
}

// NotificationsConfig controls how watch mode reports finished files
type NotificationsConfig struct {
	Type string `toml:"type"` // "desktop", "log", "none"
}

type GeminiConfig struct {
	Model string `toml:"model"` // empty falls back to GEMINI_MODEL
}
