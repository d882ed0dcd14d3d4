package config

import (
	"os"

	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/leonardotrapani/voicescribe/internal/transcriber"
)

// ToTranscriberConfig builds the settings for transcriber.NewDefaultDispatcher
func (c *Config) ToTranscriberConfig() transcriber.Config {
	config := transcriber.DefaultConfig()
	if c.General.Timeout > 0 {
		config.Timeout = c.General.Timeout
	}
	if c.FastWhisper.URL != "" {
		config.BaseURLs = map[provider.ID]string{provider.FastWhisperAPI: c.FastWhisper.URL}
	}
	if c.FastWhisper.Token != "" {
		config.FastWhisperToken = c.FastWhisper.Token
	}
	config.FastWhisperPrompt = c.FastWhisper.InitialPrompt
	config.GeminiModel = c.Gemini.Model
	return config
}

// ToRequest fills a transcription request for audioPath using the configured
// provider, its resolved API key and the language override.
func (c *Config) ToRequest(audioPath string) (transcriber.Request, error) {
	id, err := provider.Parse(c.Transcription.Provider)
	if err != nil {
		return transcriber.Request{}, err
	}
	return transcriber.Request{
		Provider:   id,
		Credential: c.ResolveAPIKey(id),
		AudioPath:  audioPath,
		Language:   c.Transcription.Language,
	}, nil
}

// ResolveAPIKey returns the API key for a provider, config first, then environment
func (c *Config) ResolveAPIKey(id provider.ID) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[string(id)]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}

	if envVar := provider.EnvVarForProvider(id); envVar != "" {
		return os.Getenv(envVar)
	}

	return ""
}

// SetAPIKey stores key for id, removing the entry when key is empty
func (c *Config) SetAPIKey(id provider.ID, key string) {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	if key == "" {
		delete(c.Providers, string(id))
		return
	}
	c.Providers[string(id)] = ProviderConfig{APIKey: key}
}
