// Package watch rebuilds the blog whenever post sources change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/InfTape/inftape.github.io/internal/foundation/errors"
	"github.com/InfTape/inftape.github.io/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one build. Errors are logged and do not stop watching.
type BuildFunc func(ctx context.Context, force bool) error

// Watcher runs an initial build and then an incremental build after each
// burst of changes in the watched directories.
type Watcher struct {
	dirs     []string
	ext      string
	debounce time.Duration
	build    BuildFunc
	logger   *slog.Logger

	// ready is called once the directories are being watched; set by tests.
	ready func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtension limits rebuild triggers to files with ext. Empty means any file.
func WithExtension(ext string) Option {
	return func(w *Watcher) {
		w.ext = ext
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Watcher for dirs.
func New(build BuildFunc, dirs []string, opts ...Option) *Watcher {
	w := &Watcher{
		dirs:     dirs,
		debounce: DefaultDebounce,
		build:    build,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run performs the initial build (honouring force), then watches until ctx
// is canceled. Subsequent builds are never forced and never overlap.
func (w *Watcher) Run(ctx context.Context, force bool) error {
	w.runBuild(ctx, force)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WatchError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return errors.WatchError("failed to watch directory").WithCause(err).
				WithContext("path", dir).Build()
		}
	}

	sched := newScheduler(func() { w.runBuild(ctx, false) })
	deb := newDebouncer(w.debounce, sched.Request)
	defer func() {
		deb.Stop()
		sched.Close()
	}()

	w.logger.Info("Watching for changes", slog.Any("dirs", w.dirs), slog.Duration("debounce", w.debounce))
	if w.ready != nil {
		w.ready()
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
				deb.Trigger()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context, force bool) {
	if ctx.Err() != nil {
		return
	}
	if err := w.build(ctx, force); err != nil {
		w.logger.Error("Build failed; waiting for further changes", logfields.Error(err))
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if shouldIgnoreEvent(ev.Name) {
		return false
	}
	return w.ext == "" || filepath.Ext(ev.Name) == w.ext
}
