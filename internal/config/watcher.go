package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a configuration file whenever it changes on disk
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(cfg *Config)
	logger   zerolog.Logger
}

// NewWatcher creates a watcher for the configuration file at path. onChange
// receives every successfully reloaded configuration; invalid files are logged
// and skipped.
func NewWatcher(path string, logger zerolog.Logger, onChange func(cfg *Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	// Watch the directory so editors that replace the file by rename are seen
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(absPath), err)
	}

	return &Watcher{
		watcher:  watcher,
		path:     absPath,
		onChange: onChange,
		logger:   logger.With().Str("component", "config-watcher").Logger(),
	}, nil
}

// Start blocks, delivering reloads until the context is cancelled
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}

			if !w.shouldReload(event) {
				continue
			}

			cfg, err := LoadConfigFromPath(w.path)
			if err != nil {
				w.logger.Warn().Err(err).Str("path", w.path).Msg("ignoring invalid config change")
				continue
			}

			w.logger.Info().Str("path", w.path).Msg("config reloaded")
			w.onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			if err != nil {
				// Log error but continue watching
				w.logger.Error().Err(err).Msg("watcher error")
			}
		}
	}
}

// shouldReload reports whether the event touches the watched file's content
func (w *Watcher) shouldReload(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
