// Package watch re-runs a sync pass whenever the notes export changes.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes from the exporter.
const DefaultDebounce = 500 * time.Millisecond

// PassFunc runs one sync pass.
type PassFunc func(ctx context.Context) error

// Watch observes the directory containing file and calls pass after each
// settled change to file until ctx is cancelled. The parent directory is
// watched so that exports written by rename or delete-and-recreate are seen.
// Pass errors are logged and do not stop the watcher.
func Watch(ctx context.Context, file string, debounce time.Duration, logger *slog.Logger, pass PassFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("file", target))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			if err := pass(ctx); err != nil {
				logger.Error("watcher: sync failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			// Removal alone leaves nothing to read; the recreate event schedules the pass.
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			logger.Debug("watcher: change", slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
