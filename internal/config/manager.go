package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the current configuration and reloads it when the file changes.
// A reload that fails to parse or validate keeps the previous configuration.
type Manager struct {
	path string

	mu       sync.RWMutex
	config   *Config
	onReload []func(*Config)

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewManager loads the config file at the default location
func NewManager() (*Manager, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerForFile(configPath)
}

func NewManagerForFile(configPath string) (*Manager, error) {
	log.Debug().Str("path", configPath).Msg("initializing configuration manager")

	config, err := LoadFile(configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load initial configuration")
		return nil, err
	}

	if err := config.Validate(); err != nil {
		log.Warn().Err(err).Msg("validation warning")
	}

	return &Manager{path: configPath, config: config}, nil
}

// GetConfig returns a copy of the current configuration
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	configCopy.Providers = make(map[string]ProviderConfig, len(m.config.Providers))
	for k, v := range m.config.Providers {
		configCopy.Providers[k] = v
	}
	return &configCopy
}

// OnReload registers fn to run with the new configuration after every successful reload
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// editors replace the file on save, so the directory is watched instead
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	log.Info().Str("path", m.path).Msg("watching configuration for changes")
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	configFileName := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != configFileName {
				continue
			}

			// Write and Create only; Chmod and Remove are ignored
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				log.Info().Str("file", event.Name).Msg("file change detected, reloading config")
				m.reloadConfig()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("config watcher error")

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reloadConfig() {
	newConfig, err := LoadFile(m.path)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload config")
		return
	}

	if err := newConfig.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid config after reload")
		return
	}

	m.mu.Lock()
	m.config = newConfig
	callbacks := append([]func(*Config){}, m.onReload...)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(m.GetConfig())
	}

	log.Info().Msg("configuration successfully reloaded")
}
