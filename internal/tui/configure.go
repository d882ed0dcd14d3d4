package tui

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/voicescribe/internal/config"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/muesli/termenv"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// answers collects the form values before they are applied to a config
type answers struct {
	Provider       provider.ID
	Language       string
	UpdateKey      bool
	APIKey         string
	GeminiModel    string
	FastWhisperURL string
}

// Run asks for the default provider and its settings. cfg is not modified;
// the result carries an updated copy.
func Run(cfg *config.Config) (*ConfigureResult, error) {
	clearScreen()
	fmt.Println(Logo())
	fmt.Println()

	a := answers{
		Language:       cfg.Transcription.Language,
		GeminiModel:    cfg.Gemini.Model,
		FastWhisperURL: cfg.FastWhisper.URL,
	}
	if id, err := provider.Parse(cfg.Transcription.Provider); err == nil {
		a.Provider = id
	}

	if err := runForm(selectProviderForm(cfg, &a)); err != nil {
		return cancelledOr(err)
	}
	if err := runForm(providerSettingsForm(cfg, &a)); err != nil {
		return cancelledOr(err)
	}

	return &ConfigureResult{Config: a.apply(cfg)}, nil
}

func runForm(form *huh.Form) error {
	if form == nil {
		return nil
	}
	return form.WithTheme(getTheme()).Run()
}

func cancelledOr(err error) (*ConfigureResult, error) {
	if errors.Is(err, huh.ErrUserAborted) {
		return &ConfigureResult{Cancelled: true}, nil
	}
	return nil, err
}

func selectProviderForm(cfg *config.Config, a *answers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[provider.ID]().
				Title("Default provider").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(providerOptions(cfg)...).
				Value(&a.Provider),
			huh.NewInput().
				Title("Language").
				Description("ISO-639-1 code; leave empty for each provider's default").
				Value(&a.Language).
				Validate(validateLanguage),
		),
	)
}

// providerSettingsForm returns nil when the chosen provider has nothing to ask
func providerSettingsForm(cfg *config.Config, a *answers) *huh.Form {
	var fields []huh.Field
	info, _ := provider.Get(a.Provider)
	name := displayName(a.Provider)

	if info.RequiresAPIKey {
		existing := cfg.Providers[string(a.Provider)].APIKey
		a.UpdateKey = existing == ""
		if existing != "" {
			fields = append(fields, huh.NewConfirm().
				Title(fmt.Sprintf("%s API Key", name)).
				Description(fmt.Sprintf("Current: %s", maskAPIKey(existing))).
				Affirmative("Update key").
				Negative("Keep current").
				Value(&a.UpdateKey))
		}
		fields = append(fields, huh.NewInput().
			Title(fmt.Sprintf("%s API Key", name)).
			Description(fmt.Sprintf("Leave empty to use %s", provider.EnvVarForProvider(a.Provider))).
			EchoMode(huh.EchoModePassword).
			Value(&a.APIKey).
			Validate(func(s string) error {
				if s != "" && !provider.ValidateAPIKey(a.Provider, s) {
					return fmt.Errorf("invalid API key format for %s", name)
				}
				return nil
			}))
	}

	switch a.Provider {
	case provider.Gemini:
		fields = append(fields, huh.NewInput().
			Title("Gemini model").
			Description(fmt.Sprintf("e.g. gemini-1.5-flash-002; leave empty to use %s", provider.EnvGeminiModel)).
			Value(&a.GeminiModel))
	case provider.FastWhisperAPI:
		fields = append(fields, huh.NewInput().
			Title("FastWhisperAPI URL").
			Value(&a.FastWhisperURL).
			Validate(validateURL))
	}

	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...))
}

// apply returns a copy of cfg with the answers written into it
func (a answers) apply(cfg *config.Config) *config.Config {
	out := *cfg
	out.Providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for k, v := range cfg.Providers {
		out.Providers[k] = v
	}

	out.Transcription.Provider = string(a.Provider)
	out.Transcription.Language = strings.ToLower(strings.TrimSpace(a.Language))
	if a.UpdateKey && a.APIKey != "" {
		out.SetAPIKey(a.Provider, strings.TrimSpace(a.APIKey))
	}
	out.Gemini.Model = strings.TrimSpace(a.GeminiModel)
	if u := strings.TrimSpace(a.FastWhisperURL); u != "" {
		out.FastWhisper.URL = u
	}
	return &out
}

func validateLanguage(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !config.IsValidLanguageCode(strings.ToLower(s)) {
		return fmt.Errorf("unknown language code %q", s)
	}
	return nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter a URL like http://localhost:8000")
	}
	return nil
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = StyleHighlight
	t.Focused.Description = StyleMuted
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = StyleSelected
	t.Focused.UnselectedOption = StyleLabel.UnsetBold()
	t.Focused.ErrorMessage = StyleError

	t.Blurred.Title = StyleMuted
	t.Blurred.Description = StyleSubtle

	return t
}
