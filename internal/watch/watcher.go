// Package watch re-runs analysis when source files under a root change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/strata/internal/scanner"
	"github.com/panbanda/strata/pkg/config"
)

// DefaultDebounce is how long a file must stay quiet before a change fires.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc receives the root-relative, slash-separated paths that changed
// since the last call, sorted.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher monitors a directory tree and batches source file changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	filter    *scanner.Scanner
	root      string
	debounce  time.Duration
	onChange  ChangeFunc
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for root using the exclusion rules of cfg, or the
// defaults when cfg is nil. onChange may be nil.
func New(root string, cfg *config.Config, onChange ChangeFunc, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsWatcher: fsWatcher,
		filter:    scanner.NewScanner(cfg).ForRoot(root),
		root:      root,
		debounce:  DefaultDebounce,
		onChange:  onChange,
		logger:    slog.New(slog.NewTextHandler(os.Stderr, nil)),
		pending:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers every non-excluded directory under root.
func (w *Watcher) Start() error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excludedDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// Run processes events until ctx is done or the watcher is closed. It
// returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case now := <-ticker.C:
			if ready := w.collect(now); len(ready) > 0 && w.onChange != nil {
				w.onChange(ctx, ready)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// Watched returns the directories currently registered.
func (w *Watcher) Watched() []string {
	return w.fsWatcher.WatchList()
}

func (w *Watcher) tick() time.Duration {
	return max(w.debounce/5, 10*time.Millisecond)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.excludedDir(event.Name) {
				if err := w.fsWatcher.Add(event.Name); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
					w.logger.Warn("cannot watch directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	rel, ok := w.relevant(event.Name)
	if !ok {
		return
	}
	w.mu.Lock()
	w.pending[rel] = time.Now()
	w.mu.Unlock()
}

// relevant maps path to its root-relative form when a scan of the root
// would include it.
func (w *Watcher) relevant(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return rel, w.filter.Included(rel)
}

func (w *Watcher) excludedDir(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.filter.ExcludedDir(filepath.ToSlash(rel))
}

// collect removes and returns the pending paths that have been quiet for
// the debounce period as of now.
func (w *Watcher) collect(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	slices.Sort(ready)
	return ready
}
