// Package logx holds the zerolog logger shared by every voicescribe component.
package logx

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// output is shared by Log and every logger derived from it, so SetOutput
// also reaches component loggers created earlier.
var output = &switchWriter{w: zerolog.ConsoleWriter{Out: os.Stderr}}

// Log is the shared logger used throughout the project.
var Log = zerolog.New(output).With().Timestamp().Logger()

type switchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

func init() {
	Configure(os.Getenv("LOG_LEVEL"))
}

// Configure sets the global level from a name such as "debug" or "warning".
// "all" enables trace, "none" disables logging, and unknown names fall back to info.
func Configure(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "all", "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "none", "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// SetOutput redirects the shared logger and all component loggers, keeping the console format.
func SetOutput(w io.Writer) {
	output.set(zerolog.ConsoleWriter{Out: w, NoColor: true})
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Log.With().Str("component", name).Logger()
}
