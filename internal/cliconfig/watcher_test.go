package cliconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	adapterlog "github.com/sonde-labs/sondebridge/internal/adapters/log"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("count_threshold = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan Config, 1)
	w := NewWatcher(path, adapterlog.NewNoopLogger(), func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := w.Run(ctx); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}()

	// Give the watcher time to register before touching the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("count_threshold = 25\ntime_threshold = \"30s\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.CountThreshold != 25 {
			t.Errorf("CountThreshold = %d, want 25", cfg.CountThreshold)
		}
		if cfg.TimeThreshold != 30*time.Second {
			t.Errorf("TimeThreshold = %v, want 30s", cfg.TimeThreshold)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("config change never delivered")
	}
}

func TestWatcher_InvalidConfigNotDelivered(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("count_threshold = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan Config, 1)
	w := NewWatcher(path, adapterlog.NewNoopLogger(), func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("time_threshold = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Errorf("invalid config was delivered: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("count_threshold = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan Config, 1)
	w := NewWatcher(path, adapterlog.NewNoopLogger(), func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("count_threshold = 99\n"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Errorf("sibling file change was delivered: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}
