// Package watcher reports settled file changes in a directory tree. New
// caption exports are picked up here and handed to ingestion.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a directory tree and emits an Event once a written file
// stops changing for SettleDelay.
type Watcher struct {
	logger  *slog.Logger
	opts    Options
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingEvent
	known   map[string]struct{}

	events   chan Event
	errors   chan error
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// pendingEvent tracks a file that may still be changing.
type pendingEvent struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a watcher. Call Watch for each root, then Start.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		watcher: fw,
		pending: make(map[string]*pendingEvent),
		known:   make(map[string]struct{}),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds a directory, recursively. Files already present are remembered
// so later writes to them are reported as modifications.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return w.watcher.Add(filepath.Dir(path))
	}
	return w.watchDir(path)
}

func (w *Watcher) watchDir(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("failed to access path", "path", p, "error", err)
			return nil
		}
		if p != root && w.opts.shouldIgnore(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if w.opts.wants(p) {
				w.mu.Lock()
				w.known[p] = struct{}{}
				w.mu.Unlock()
			}
			return nil
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Error("failed to add watch", "path", p, "error", err)
			return nil
		}
		w.logger.Debug("added watch", "path", p)
		return nil
	})
}

// Start processes file system events until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("watcher error dropped", "error", err)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name
	if w.opts.shouldIgnore(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watchDir(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !w.opts.wants(path) {
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.cancelPending(path)
		w.mu.Lock()
		_, wasKnown := w.known[path]
		delete(w.known, path)
		w.mu.Unlock()
		if wasKnown {
			w.emit(Event{Type: EventRemoved, Path: path})
		}
		return
	}

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		w.startSettling(path)
	}
}

func (w *Watcher) startSettling(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.cancelPending(path)
		return
	}
	if info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}
	p := &pendingEvent{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
	w.pending[path] = p
}

// checkSettled emits the file once its size and mtime held still for a full
// settle delay, otherwise it re-arms the timer.
func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	typ := EventAdded
	if _, seen := w.known[path]; seen {
		typ = EventModified
	}
	w.known[path] = struct{}{}
	w.mu.Unlock()

	w.emit(Event{Type: typ, Path: path, Size: info.Size(), ModTime: info.ModTime()})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

// Events returns the channel of settled events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop releases the fsnotify watcher and cancels pending timers. The event
// channels are left open; consumers should select on their own context.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		for _, p := range w.pending {
			p.timer.Stop()
		}
		clear(w.pending)
		w.mu.Unlock()

		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
