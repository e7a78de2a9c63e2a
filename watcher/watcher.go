// Package watcher reports whether any of a set of ledger files or document
// directories changed since the last check.
package watcher

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Editors often write files in multiple steps.
const defaultDebounce = 100 * time.Millisecond

// Watcher watches files and directories with fsnotify. Changes are
// debounced and latched until the next Check.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	watched map[string]bool
	timer   *time.Timer

	changed atomic.Bool
	done    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for watch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// WithDebounce sets how long events must settle before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New starts a watcher with an empty watch list.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		logger:   slog.Default(),
		debounce: defaultDebounce,
		watched:  map[string]bool{},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w, nil
}

// Update replaces the watch list. Paths that cannot be watched are logged
// and skipped.
func (w *Watcher) Update(files, dirs []string) {
	next := map[string]bool{}
	for _, p := range append(append([]string{}, files...), dirs...) {
		next[p] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for p := range w.watched {
		if !next[p] {
			_ = w.fs.Remove(p)
		}
	}
	w.watched = next
	w.addAll()
}

// addAll (re-)adds every watched path. Callers hold mu.
func (w *Watcher) addAll() {
	for p := range w.watched {
		if err := w.fs.Add(p); err != nil {
			w.logger.Warn("failed to watch path", "path", p, "error", err)
		}
	}
}

// Check reports whether a change happened since the previous call.
func (w *Watcher) Check() bool {
	return w.changed.Swap(false)
}

// Close stops watching.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// Remove and rename are common in atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, w.settle)
			w.mu.Unlock()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// settle latches the change and re-adds watches lost to atomic saves.
func (w *Watcher) settle() {
	select {
	case <-w.done:
		return
	default:
	}
	w.changed.Store(true)
	w.mu.Lock()
	w.addAll()
	w.mu.Unlock()
}
