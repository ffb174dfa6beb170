// Package reload watches the configuration file and applies template
// changes to the running sync service without a restart.
package reload

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ApplyFunc receives the path of the changed config file. It reloads,
// validates, and applies the new settings; a returned error keeps the
// previous configuration active.
type ApplyFunc func(path string) error

// Watch starts an fsnotify watcher on the config file's directory and
// calls apply after each write, debounced by 200ms so editors that
// write in several steps trigger a single reload. It blocks until ctx
// is cancelled.
//
// The parent directory is watched rather than the file itself because
// many editors replace the file on save, which would drop a direct
// file watch.
func Watch(ctx context.Context, configPath string, logger *slog.Logger, apply ApplyFunc) error {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("config watcher: started", slog.String("file", abs))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-debounceCh:
			if err := apply(abs); err != nil {
				logger.Warn("config reload rejected, keeping previous settings",
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("config reloaded", slog.String("file", abs))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			evAbs, err := filepath.Abs(ev.Name)
			if err != nil || evAbs != abs {
				continue
			}
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", slog.String("error", err.Error()))
		}
	}
}
