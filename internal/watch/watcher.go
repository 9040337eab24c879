// Package watch selects the C++ files of a source tree and reports
// debounced batches of changes to them.
package watch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Batch is one debounced set of changes, as absolute paths. A path is
// Removed if it no longer exists when the window closes.
type Batch struct {
	Changed []string
	Removed []string
}

// Empty reports whether the batch carries no paths.
func (b Batch) Empty() bool {
	return len(b.Changed) == 0 && len(b.Removed) == 0
}

// Watcher watches a directory tree recursively.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	filter   *Filter
	debounce time.Duration
	onChange func(Batch)
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	started bool
	closed  bool

	callbackMu sync.Mutex
	done       chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a watcher for root. onChange is called once per debounce
// window, never concurrently with itself.
func New(root string, filter *Filter, debounce time.Duration, onChange func(Batch), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if filter == nil {
		filter = &Filter{}
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		root:     abs,
		filter:   filter,
		debounce: debounce,
		onChange: onChange,
		logger:   slog.Default(),
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Start registers the tree and begins delivering events.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		w.fs.Close()
		return err
	}
	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.run()
	w.logger.Info("watching", "root", w.root, "debounce", w.debounce)
	return nil
}

// Close stops the watcher. A pending batch is dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	started := w.started
	w.mu.Unlock()
	err := w.fs.Close()
	if started {
		<-w.done
	}
	return err
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) skipDir(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return true
	}
	return w.filter.Excluded(w.rel(path))
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return rel
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.skipDir(ev.Name) {
				if err := w.addRecursive(ev.Name); err != nil {
					w.logger.Warn("watch new directory", "path", ev.Name, "error", err)
				}
				w.enqueueTree(ev.Name)
			}
			return
		}
	}
	if !w.filter.Match(w.rel(ev.Name)) {
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.schedule(ev.Name)
	}
}

// enqueueTree reports files already present in a directory that appeared
// after its parent was registered; their create events may have been
// missed.
func (w *Watcher) enqueueTree(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && w.skipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.filter.Match(w.rel(path)) {
			w.schedule(path)
		}
		return nil
	})
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	pending := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	var b Batch
	for path := range pending {
		// The file system at flush time wins over the last event seen.
		if _, err := os.Stat(path); err != nil {
			b.Removed = append(b.Removed, path)
		} else {
			b.Changed = append(b.Changed, path)
		}
	}
	sort.Strings(b.Changed)
	sort.Strings(b.Removed)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.logger.Debug("change batch", "changed", len(b.Changed), "removed", len(b.Removed))
	if w.onChange != nil {
		w.onChange(b)
	}
}
