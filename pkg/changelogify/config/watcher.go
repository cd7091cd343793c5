package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of writes (editors often write twice).
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a configuration file when it changes on disk and hands
// the new Config to a callback. Parse failures are logged and the callback
// is not invoked, so the previous configuration stays in effect.
type Watcher struct {
	path     string
	onChange func(Config)
	logger   *slog.Logger
	debounce time.Duration

	fsw  *fsnotify.Watcher
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the logger used for reload diagnostics.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// Watch starts watching path. The directory is watched rather than the
// file so atomic rename-on-save is picked up. Call Close to stop.
func Watch(ctx context.Context, path string, onChange func(Config), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	w.fsw = fsw

	ctx, w.stop = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)

	return w, nil
}

// Close stops the watcher and waits for the event loop to exit. A pending
// reload is dropped, and onChange is never called after Close returns.
func (w *Watcher) Close() error {
	w.stop()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	// Reloads run on this goroutine, so none can start after Close returns.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != filepath.Base(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("config watch error", slog.String("error", err.Error()))
			}
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	cfg, err := FromFile(w.path)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("config reload failed, keeping previous",
				slog.String("path", w.path),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	if w.logger != nil {
		w.logger.Info("config reloaded", slog.String("path", w.path))
	}
	w.onChange(cfg)
}
