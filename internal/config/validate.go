package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/leonardotrapani/voicescribe/internal/provider"
	"golang.org/x/text/language"
)

var validLogLevels = map[string]bool{
	"": true, "all": true, "trace": true, "debug": true, "info": true,
	"warn": true, "warning": true, "error": true, "none": true, "off": true,
}

func (c *Config) Validate() error {
	if !validLogLevels[strings.ToLower(c.General.LogLevel)] {
		return fmt.Errorf("invalid general.log_level: %s (must be trace, debug, info, warn, error, or none)", c.General.LogLevel)
	}
	if c.General.Timeout <= 0 {
		return fmt.Errorf("invalid general.timeout: %v", c.General.Timeout)
	}

	if c.Transcription.Provider == "" {
		return fmt.Errorf("invalid transcription.provider: empty")
	}
	id, err := provider.Parse(c.Transcription.Provider)
	if err != nil {
		return fmt.Errorf("invalid transcription.provider: %s (must be one of %s)", c.Transcription.Provider, providerNames())
	}

	if c.Transcription.Language != "" && !IsValidLanguageCode(c.Transcription.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use empty string for the provider default or ISO-639-1 codes like 'en', 'ta', 'fr')", c.Transcription.Language)
	}

	info, _ := provider.Get(id)
	if info.RequiresAPIKey && c.ResolveAPIKey(id) == "" {
		return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment variable (%s)",
			info.DisplayName, id, provider.EnvVarForProvider(id))
	}

	for name := range c.Providers {
		if _, err := provider.Parse(name); err != nil {
			return fmt.Errorf("invalid providers.%s: unknown provider (must be one of %s)", name, providerNames())
		}
	}

	switch id {
	case provider.FastWhisperAPI:
		if err := validateServiceURL(c.FastWhisper.URL); err != nil {
			return fmt.Errorf("invalid fastwhisper.url: %w", err)
		}
	case provider.Gemini:
		if c.Gemini.Model == "" && os.Getenv(provider.EnvGeminiModel) == "" {
			return fmt.Errorf("gemini model required: not found in config (gemini.model) or environment variable (%s)", provider.EnvGeminiModel)
		}
	}

	validTypes := map[string]bool{"": true, "desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

func validateServiceURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s (scheme must be http or https)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s (missing host)", raw)
	}
	return nil
}

// IsValidLanguageCode accepts two-letter ISO 639-1 codes known to x/text
func IsValidLanguageCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return false
	}
	return base.String() == strings.ToLower(code)
}

func providerNames() string {
	ids := provider.List()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
