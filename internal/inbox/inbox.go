// Package inbox transcribes audio files as they appear in a directory and
// writes each transcript next to its recording as "<name>.txt".
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leonardotrapani/voicescribe/internal/logx"
	"github.com/leonardotrapani/voicescribe/internal/notify"
	"github.com/leonardotrapani/voicescribe/internal/transcriber"
	"github.com/rs/zerolog"
)

const (
	TranscriptExt = ".txt"

	defaultSettle = 500 * time.Millisecond
	queueSize     = 64
)

var audioExts = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".ogg": true,
	".oga": true, ".flac": true, ".webm": true, ".mp4": true,
}

// Transcriber is satisfied by *transcriber.Dispatcher
type Transcriber interface {
	Transcribe(ctx context.Context, req transcriber.Request) (string, error)
}

// RequestFunc builds the request for one audio file. It is called per file so
// a config reload takes effect on the next recording.
type RequestFunc func(audioPath string) (transcriber.Request, error)

// IsAudioFile reports whether name has a recognised audio extension
func IsAudioFile(name string) bool {
	return audioExts[strings.ToLower(filepath.Ext(name))]
}

// TranscriptPath returns where the transcript for audioPath is written
func TranscriptPath(audioPath string) string {
	return audioPath + TranscriptExt
}

type Watcher struct {
	dir     string
	tr      Transcriber
	request RequestFunc
	settle  time.Duration
	notify  notify.Notifier
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	queue   chan string
}

type Option func(*Watcher)

// WithSettle sets how long a file must stay quiet before it is transcribed
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		w.settle = d
	}
}

// WithNotifier reports every finished or failed file to n
func WithNotifier(n notify.Notifier) Option {
	return func(w *Watcher) {
		w.notify = n
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

func New(dir string, tr Transcriber, request RequestFunc, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		tr:      tr,
		request: request,
		settle:  defaultSettle,
		notify:  notify.Nop{},
		log:     logx.Component("inbox"),
		pending: make(map[string]*time.Timer),
		queue:   make(chan string, queueSize),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run watches the directory until ctx is done. Files are transcribed one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("inbox directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("inbox directory: %s is not a directory", w.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info().Str("dir", w.dir).Msg("watching for new recordings")

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	defer func() {
		cancel()
		w.stopTimers()
		wg.Wait()
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsAudioFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.schedule(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

// ScanExisting transcribes audio files already in the directory that have no transcript yet.
// It returns the number of files processed successfully.
func (w *Watcher) ScanExisting(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	done := 0
	for _, e := range entries {
		if e.IsDir() || !IsAudioFile(e.Name()) {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if _, err := os.Stat(TranscriptPath(path)); err == nil {
			continue
		}
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if err := w.ProcessFile(ctx, path); err == nil {
			done++
		}
	}
	return done, nil
}

// ProcessFile transcribes one recording and writes its transcript.
// Failures are logged and returned; no transcript file is written for them.
func (w *Watcher) ProcessFile(ctx context.Context, audioPath string) error {
	req, err := w.request(audioPath)
	if err != nil {
		w.log.Error().Err(err).Str("file", audioPath).Msg("cannot build request")
		return err
	}

	start := time.Now()
	text, err := w.tr.Transcribe(ctx, req)
	if err != nil {
		w.log.Warn().
			Str("file", audioPath).
			Str("provider", string(req.Provider)).
			Str("kind", transcriber.KindOf(err).String()).
			Bool("retryable", transcriber.IsRetryable(err)).
			Msg("transcription failed")
		w.notify.Failed(audioPath, err)
		return err
	}

	if transcriber.IsEmptySentinel(text) {
		w.log.Info().Str("file", audioPath).Msg("no speech detected")
		text = ""
	}

	out := TranscriptPath(audioPath)
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		w.log.Error().Err(err).Str("file", out).Msg("failed to write transcript")
		err = fmt.Errorf("write transcript: %w", err)
		w.notify.Failed(audioPath, err)
		return err
	}

	w.log.Info().
		Str("file", audioPath).
		Dur("duration", time.Since(start)).
		Int("chars", len(text)).
		Msg("transcript written")
	w.notify.TranscriptReady(audioPath, text)
	return nil
}

// schedule (re)starts the settle timer for path; bursts of writes collapse into one job
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.queue <- path:
		default:
			w.log.Warn().Str("file", path).Msg("queue full, dropping file")
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case path := <-w.queue:
			_ = w.ProcessFile(ctx, path)
		case <-ctx.Done():
			return
		}
	}
}
