package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/leonardotrapani/voicescribe/internal/config"
	"github.com/leonardotrapani/voicescribe/internal/inbox"
	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/leonardotrapani/voicescribe/internal/notify"
	"github.com/leonardotrapani/voicescribe/internal/provider"
	"github.com/leonardotrapani/voicescribe/internal/transcriber"
	"github.com/leonardotrapani/voicescribe/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, tui.RenderError(err))
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs after the root pre-run
type app struct {
	envFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "voicescribe",
		Short:         "Transcribe audio files with OpenAI, Groq, Deepgram, Gemini or a local FastWhisperAPI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with API keys (ignored when missing)")

	root.AddCommand(
		transcribeCmd(a),
		providersCmd(a),
		watchCmd(a),
		configureCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	if os.Getenv("LOG_LEVEL") == "" {
		logx.Configure(cfg.General.LogLevel)
	}
	tui.ConfigureOutput(cmd.OutOrStdout())
	return nil
}

func transcribeCmd(a *app) *cobra.Command {
	var (
		providerName string
		apiKey       string
		language     string
		localModel   string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe one audio file and print the text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if providerName != "" {
				cfg.Transcription.Provider = providerName
			}
			if language != "" {
				cfg.Transcription.Language = language
			}
			if timeout > 0 {
				cfg.General.Timeout = timeout
			}

			dispatcher := transcriber.NewDefaultDispatcher(cfg.ToTranscriberConfig())

			req, err := cfg.ToRequest(args[0])
			if err != nil {
				// the dispatcher logs and reports unknown providers uniformly
				_, err = dispatcher.TranscribeFile(cmd.Context(), cfg.Transcription.Provider, apiKey, args[0], localModel)
				return err
			}
			if apiKey != "" {
				req.Credential = apiKey
			}
			req.LocalModelPath = localModel

			text, err := dispatcher.Transcribe(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderTranscript(text))
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider id (default from config)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key, overrides config and environment")
	cmd.Flags().StringVarP(&language, "language", "l", "", "ISO-639-1 language hint")
	cmd.Flags().StringVar(&localModel, "local-model", "", "model path for the local provider")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per request timeout (default from config)")

	return cmd
}

func providersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List transcription providers and their key status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderProviders(a.cfg))
			return nil
		},
	}
}

func watchCmd(a *app) *cobra.Command {
	var existing bool

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Transcribe audio files as they appear in a directory",
		Long: `Watch a directory and transcribe every new audio file into <file>.txt
next to it, using the default provider from the config file.
Changes to the config file are applied to the next recording.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), a, args[0], existing)
		},
	}

	cmd.Flags().BoolVar(&existing, "existing", false, "also transcribe files already in the directory")

	return cmd
}

// liveSettings is swapped on config reload; readers always see a consistent set
type liveSettings struct {
	cfg        *config.Config
	dispatcher *transcriber.Dispatcher
	gate       *transcriber.ServiceGate
}

// newLiveSettings builds the dispatcher for cfg. The FastWhisperAPI gate of
// prev is kept while the service URL stays the same, so a verified service is
// not probed again after an unrelated config change.
func newLiveSettings(cfg *config.Config, prev *liveSettings) *liveSettings {
	tc := cfg.ToTranscriberConfig()
	gate := transcriber.NewFastWhisperGate(tc)
	if prev != nil && prev.gate != nil && prev.gate.BaseURL() == gate.BaseURL() {
		gate = prev.gate
	}
	return &liveSettings{
		cfg:        cfg,
		dispatcher: transcriber.NewDefaultDispatcher(tc, transcriber.WithServiceGate(gate)),
		gate:       gate,
	}
}

func runWatch(ctx context.Context, a *app, dir string, existing bool) error {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	var live atomic.Pointer[liveSettings]
	live.Store(newLiveSettings(a.cfg, nil))

	log := logx.Component("watch")
	manager, err := config.NewManager()
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		log.Info().Msg("no config file, using defaults without reload")
	case err != nil:
		return err
	default:
		manager.OnReload(func(cfg *config.Config) {
			live.Store(newLiveSettings(cfg, live.Load()))
			log.Info().Str("provider", cfg.Transcription.Provider).Msg("using reloaded configuration")
		})
		if err := manager.StartWatching(ctx); err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
		defer manager.Stop()
	}

	if err := live.Load().cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("configuration is incomplete, transcriptions may fail")
	}

	notifier, err := notify.New(live.Load().cfg.Notifications.Type)
	if err != nil {
		return err
	}

	transcribe := transcriberFunc(func(ctx context.Context, req transcriber.Request) (string, error) {
		return live.Load().dispatcher.Transcribe(ctx, req)
	})
	w := inbox.New(dir, transcribe, func(audioPath string) (transcriber.Request, error) {
		return live.Load().cfg.ToRequest(audioPath)
	}, inbox.WithNotifier(notifier))

	if existing {
		n, err := w.ScanExisting(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("files", n).Msg("transcribed existing recordings")
	}

	return w.Run(ctx)
}

type transcriberFunc func(ctx context.Context, req transcriber.Request) (string, error)

func (f transcriberFunc) Transcribe(ctx context.Context, req transcriber.Request) (string, error) {
	return f(ctx, req)
}

func configureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration for voicescribe.
Choose the default provider and language, and store the API key
or endpoint settings the provider needs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd, a.cfg)
		},
	}
}

func runConfigure(cmd *cobra.Command, cfg *config.Config) error {
	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}

	out := cmd.OutOrStdout()
	if result.Cancelled {
		fmt.Fprintln(out, "Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.RenderSuccess("Configuration saved to "+configPath))
	fmt.Fprintf(out, "Try it: voicescribe transcribe recording.wav --provider %s\n", result.Config.Transcription.Provider)
	if result.Config.Transcription.Provider == string(provider.FastWhisperAPI) {
		fmt.Fprintf(out, "Make sure FastWhisperAPI is running at %s\n", result.Config.FastWhisper.URL)
	}
	return nil
}
