package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/voicescribe/internal/config"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/leonardotrapani/voicescribe/internal/transcriber"
	"github.com/muesli/termenv"
)

// ConfigureOutput picks the color profile for w, honouring NO_COLOR and
// plain output when w is not a terminal.
func ConfigureOutput(w io.Writer) {
	out := termenv.NewOutput(w)
	lipgloss.SetColorProfile(out.EnvColorProfile())
	lipgloss.SetHasDarkBackground(out.HasDarkBackground())
}

// RenderProviders formats the provider registry as an aligned table
func RenderProviders(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render("Providers"))
	b.WriteString("\n")

	current, _ := provider.Parse(cfg.Transcription.Provider)
	for _, id := range provider.List() {
		info, _ := provider.Get(id)

		marker := "  "
		if id == current {
			marker = StyleSelected.Render("* ")
		}

		model := info.Model
		if id == provider.Gemini {
			model = cfg.Gemini.Model
			if model == "" {
				model = "$" + provider.EnvGeminiModel
			}
		}
		if model == "" {
			model = "-"
		}
		lang := info.Language
		if lang == "" {
			lang = "auto"
		}

		fmt.Fprintf(&b, "%s%s %s %s %s\n",
			marker,
			StyleLabel.Width(16).Render(string(id)),
			StyleMuted.Width(26).Render(model),
			StyleMuted.Width(6).Render(lang),
			statusStyle(cfg, id).Render(keyStatus(cfg, id)),
		)
	}
	return b.String()
}

func statusStyle(cfg *config.Config, id provider.ID) lipgloss.Style {
	switch keyStatus(cfg, id) {
	case "not configured":
		return StyleWarning
	case "no key needed":
		return StyleSubtle
	default:
		return StyleSuccess
	}
}

// RenderTranscript formats a transcript for the terminal. The empty sentinel
// is shown as a hint rather than as text.
func RenderTranscript(text string) string {
	if transcriber.IsEmptySentinel(text) || strings.TrimSpace(text) == "" {
		return StyleSubtle.Render("(no speech detected)")
	}
	return text
}

// RenderError formats a failure for the terminal, naming the cause kind when known
func RenderError(err error) string {
	msg := StyleError.Render("error: ") + err.Error()
	if kind := transcriber.KindOf(err); kind != transcriber.KindUnknown {
		hint := kind.String()
		if kind.Retryable() {
			hint += ", retry later"
		}
		msg += " " + StyleMuted.Render("("+hint+")")
	}
	return msg
}

// RenderSuccess formats a one-line confirmation
func RenderSuccess(msg string) string {
	return StyleSuccess.Render("✓ ") + msg
}
