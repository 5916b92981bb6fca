package cliconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sonde-labs/sondebridge/internal/ports"
)

// debounceDelay coalesces the event bursts editors produce on save.
const debounceDelay = 100 * time.Millisecond

// Watcher monitors the config file via fsnotify and delivers a freshly
// loaded, validated Config to its callback on every change. The running
// bridge uses it to pick up new thresholds without a restart.
type Watcher struct {
	path     string
	logger   ports.Logger
	onChange func(Config)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a watcher for the given config file path.
func NewWatcher(path string, logger ports.Logger, onChange func(Config)) *Watcher {
	return &Watcher{path: path, logger: logger, onChange: onChange}
}

// Run watches the config file's directory until ctx is canceled. The
// directory is watched rather than the file itself so atomic-rename saves
// keep being observed.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) debounceReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, func() {
		w.reload(ctx)
	})
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload: read failed", ports.Err(err))
		return
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		w.logger.Warn("config reload: apply failed", ports.Err(err))
		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("config reload: rejected", ports.Err(err))
		return
	}

	w.logger.Info("configuration reloaded",
		ports.Int("count_threshold", cfg.CountThreshold),
		ports.Duration("time_threshold", cfg.TimeThreshold),
	)
	w.onChange(cfg)
}
