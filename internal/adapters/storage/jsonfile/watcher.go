package jsonfile

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor produces on save.
const DefaultDebounce = 300 * time.Millisecond

// Reloader is notified when the collection file changes on disk.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher reloads a store when another program edits the collection file.
// Events caused by the repository's own writes are ignored.
type Watcher struct {
	repo     *Repository
	target   Reloader
	logger   *slog.Logger
	debounce time.Duration

	fs *fsnotify.Watcher

	mu       sync.Mutex
	running  bool
	pending  bool
	lastSeen time.Time
	reloads  int

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher creates a watcher for repo's file. A zero debounce uses
// DefaultDebounce.
func NewWatcher(repo *Repository, target Reloader, logger *slog.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		repo:     repo,
		target:   target,
		logger:   logger.With(slog.String("component", "watcher")),
		debounce: debounce,
		fs:       fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. The directory is watched rather than the file
// because atomic writes replace the file.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.repo.Path())
	if err := w.fs.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()

		return err
	}

	w.logger.InfoContext(ctx, "watching collection", slog.String("path", w.repo.Path()))

	go w.run(ctx)

	return nil
}

// Stop ends watching and waits for the event loop to exit. It is safe to
// call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.fs.Close()

		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fs.Close(); err != nil {
		w.logger.Error("closing watcher", slog.Any("error", err))
	}
}

// Reloads returns how many reloads the watcher has triggered.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.reloads
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.repo.Path() {
		return
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	w.mu.Lock()
	w.pending = true
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	ready := w.pending && time.Since(w.lastSeen) >= w.debounce
	if ready {
		w.pending = false
	}
	w.mu.Unlock()

	if !ready {
		return
	}

	changed, err := w.repo.Changed()
	if err != nil {
		w.logger.WarnContext(ctx, "checking collection file", slog.Any("error", err))
		return
	}

	if !changed {
		return
	}

	if err := w.target.Reload(ctx); err != nil {
		w.logger.WarnContext(ctx, "reloading collection", slog.Any("error", err))
		return
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
}
