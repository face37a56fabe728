package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long a file must stay quiet before a change fires.
const DefaultDelay = 250 * time.Millisecond

// ChangeFunc is called with the absolute path of a changed file.
type ChangeFunc func(path string)

// Watcher reports changes to a set of files. It watches their parent
// directories so files replaced by rename are still seen, and debounces
// bursts of events per file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	delay    time.Duration
	onChange ChangeFunc
	logger   *zap.Logger

	mu     sync.Mutex
	files  map[string]bool
	dirs   map[string]int
	timers map[string]*time.Timer
}

// New creates a watcher. delay <= 0 uses DefaultDelay.
func New(delay time.Duration, onChange ChangeFunc, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:  w,
		delay:    delay,
		onChange: onChange,
		logger:   logger,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Add starts watching path.
func (w *Watcher) Add(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[path] {
		return nil
	}
	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[path] = true
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) {
	path, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeLocked(path)
}

func (w *Watcher) removeLocked(path string) {
	if !w.files[path] {
		return
	}
	delete(w.files, path)
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

// Sync makes the watched set equal paths.
func (w *Watcher) Sync(paths []string) error {
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		want[abs] = true
	}

	w.mu.Lock()
	for p := range w.files {
		if !want[p] {
			w.removeLocked(p)
		}
	}
	w.mu.Unlock()

	var first error
	for p := range want {
		if err := w.Add(p); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Watched lists the watched files.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Run delivers changes until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.touch(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) touch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[path] {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		watched := w.files[path]
		w.mu.Unlock()
		if watched {
			w.logger.Debug("File changed", zap.String("path", path))
			w.onChange(path)
		}
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
	w.mu.Unlock()
	w.watcher.Close()
}
