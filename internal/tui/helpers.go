package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/voicescribe/internal/config"
	"github.com/leonardotrapani/voicescribe/internal/provider"
)

// maskAPIKey returns a masked version of an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func displayName(id provider.ID) string {
	if info, ok := provider.Get(id); ok && info.DisplayName != "" {
		return info.DisplayName
	}
	return string(id)
}

// keyStatus describes where a provider's key would come from
func keyStatus(cfg *config.Config, id provider.ID) string {
	info, _ := provider.Get(id)
	if !info.RequiresAPIKey {
		return "no key needed"
	}
	if pc, ok := cfg.Providers[string(id)]; ok && pc.APIKey != "" {
		return "configured"
	}
	if cfg.ResolveAPIKey(id) != "" {
		return "key from " + provider.EnvVarForProvider(id)
	}
	return "not configured"
}

func providerOptions(cfg *config.Config) []huh.Option[provider.ID] {
	ids := provider.List()
	options := make([]huh.Option[provider.ID], 0, len(ids))
	for _, id := range ids {
		label := fmt.Sprintf("%s (%s)", displayName(id), keyStatus(cfg, id))
		options = append(options, huh.NewOption(label, id))
	}
	return options
}
