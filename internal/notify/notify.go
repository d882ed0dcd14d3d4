// Package notify tells the user about finished transcriptions in watch mode.
package notify

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/leonardotrapani/voicescribe/internal/deps"
	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/rs/zerolog"
)

const (
	TypeDesktop = "desktop"
	TypeLog     = "log"
	TypeNone    = "none"

	appName    = "voicescribe"
	previewLen = 120
)

var log = logx.Component("notify")

type Notifier interface {
	TranscriptReady(audioPath, text string)
	Failed(audioPath string, err error)
}

// New returns the notifier for a notifications.type value. Desktop falls back
// to Log when notify-send is not installed.
func New(kind string) (Notifier, error) {
	switch kind {
	case TypeDesktop:
		if !deps.CheckNotifySend().Installed {
			log.Warn().Msg("notify-send not found, logging notifications instead")
			return NewLog(), nil
		}
		return Desktop{}, nil
	case TypeLog:
		return NewLog(), nil
	case TypeNone, "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown notification type %q (must be desktop, log, or none)", kind)
	}
}

// runCommand is replaced in tests
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

type Desktop struct{}

func (Desktop) TranscriptReady(audioPath, text string) {
	if err := runCommand(deps.NotifySend, "-a", appName,
		"Transcribed "+filepath.Base(audioPath), preview(text)); err != nil {
		log.Warn().Err(err).Msg("failed to send notification")
	}
}

func (Desktop) Failed(audioPath string, err error) {
	if runErr := runCommand(deps.NotifySend, "-a", appName, "-u", "critical",
		"Transcription failed: "+filepath.Base(audioPath), err.Error()); runErr != nil {
		log.Warn().Err(runErr).Msg("failed to send error notification")
	}
}

// Log writes notifications to the structured log
type Log struct {
	log zerolog.Logger
}

func NewLog() Log {
	return Log{log: logx.Component("notify")}
}

func (l Log) TranscriptReady(audioPath, text string) {
	l.log.Info().Str("file", audioPath).Str("text", preview(text)).Msg("transcript ready")
}

func (l Log) Failed(audioPath string, err error) {
	l.log.Error().Err(err).Str("file", audioPath).Msg("transcription failed")
}

// Nop is a Notifier that does absolutely nothing.
type Nop struct{}

func (Nop) TranscriptReady(audioPath, text string) {}
func (Nop) Failed(audioPath string, err error)     {}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLen {
		return text
	}
	return string(r[:previewLen]) + "…"
}
