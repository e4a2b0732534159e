package driverconf

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change before
// firing the callback.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches the driver configuration file for external changes.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(path string)
	watcher  *fsnotify.Watcher
	changes  atomic.Uint32
}

// NewWatcher creates a watcher for path. The parent directory is watched so
// that atomic replaces (rename over the file) are observed too.
func NewWatcher(path string, debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("driverconf: failed to create file watcher: %w", err)
	}

	path = filepath.Clean(path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("driverconf: failed to watch %s: %w", path, err)
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
	}, nil
}

// Run dispatches change notifications until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path || event.Op&relevant == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.fire)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			slog.Error("Driver configuration watcher error", "path", w.path, "error", err)
		}
	}
}

// ChangeCount returns the number of debounced change notifications delivered.
func (w *Watcher) ChangeCount() uint32 {
	return w.changes.Load()
}

func (w *Watcher) fire() {
	count := w.changes.Add(1)
	slog.Info("Driver configuration changed", "path", w.path, "count", count)
	w.onChange(w.path)
}
