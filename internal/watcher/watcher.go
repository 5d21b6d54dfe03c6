package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Aman-CERP/docsearch/internal/config"
	"github.com/Aman-CERP/docsearch/internal/content"
	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away.
	OpRename
	// OpIgnoreChange indicates the .docsearchignore file changed, which
	// can add or remove any number of entries.
	OpIgnoreChange
	// OpConfigChange indicates a .docsearch.yaml inside the tree changed.
	OpConfigChange
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	case OpIgnoreChange:
		return "IGNORE_CHANGE"
	case OpConfigChange:
		return "CONFIG_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one change under the watched root.
type FileEvent struct {
	// Path is relative to the root, slash-separated.
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Options configures a Watcher.
type Options struct {
	// DebounceWindow is the quiet period before a batch is emitted.
	DebounceWindow time.Duration

	// EventBufferSize is the number of batches buffered for the consumer.
	EventBufferSize int

	// Filter reports whether a file event should be kept. Directory
	// events and control files bypass it. Nil keeps everything.
	Filter func(rel string) bool

	// SkipDir reports whether a directory should not be watched.
	// ".git" is always skipped.
	SkipDir func(rel string) bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  300 * time.Millisecond,
		EventBufferSize: 100,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Watcher watches a directory tree with fsnotify and emits debounced
// batches of FileEvent.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	opts      Options
	logger    *slog.Logger

	events chan []FileEvent
	errors chan error
	ready  chan struct{}
	stopCh chan struct{}

	readyOnce sync.Once

	mu             sync.RWMutex
	root           string
	dirs           map[string]struct{}
	stopped        bool
	droppedBatches atomic.Uint64
}

// New creates a watcher. Call Start to begin watching.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	d := NewDebouncer(opts.DebounceWindow)
	d.logger = opts.Logger

	return &Watcher{
		fs:        fsw,
		debouncer: d,
		opts:      opts,
		logger:    opts.Logger,
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		ready:     make(chan struct{}),
		stopCh:    make(chan struct{}),
		dirs:      make(map[string]struct{}),
	}, nil
}

// Start watches root recursively and blocks until Stop is called or ctx
// is done. Ready is closed once every directory is registered.
func (w *Watcher) Start(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return w.fail(fmt.Errorf("resolve absolute path: %w", err))
	}
	info, err := os.Stat(abs)
	if err != nil {
		return w.fail(doerrors.IOError(fmt.Sprintf("cannot watch %s", root), err).WithDetail("dir", root))
	}
	if !info.IsDir() {
		return w.fail(doerrors.New(doerrors.ErrCodeInvalidInput, fmt.Sprintf("cannot watch %s: not a directory", root), nil))
	}

	w.mu.Lock()
	w.root = abs
	w.mu.Unlock()

	if err := w.addRecursive(abs); err != nil {
		return w.fail(fmt.Errorf("add directories to watcher: %w", err))
	}
	w.markReady()

	go w.forward(ctx)

	w.logger.Info("watching content", slog.String("dir", abs), slog.Int("dirs", w.dirCount()))

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// Ready is closed once Start has registered the initial tree, or once
// the watcher is stopped, whichever comes first.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

func (w *Watcher) markReady() {
	w.readyOnce.Do(func() { close(w.ready) })
}

// fail releases the watcher after Start could not begin watching.
func (w *Watcher) fail(err error) error {
	_ = w.Stop()
	return err
}

// handle converts an fsnotify event and feeds it to the debouncer.
func (w *Watcher) handle(event fsnotify.Event) {
	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	now := time.Now()
	switch base := path.Base(rel); base {
	case content.IgnoreFileName:
		w.debouncer.Add(FileEvent{Path: rel, Operation: OpIgnoreChange, Timestamp: now})
		return
	case config.ProjectConfigName, config.ProjectConfigNameAlt:
		w.debouncer.Add(FileEvent{Path: rel, Operation: OpConfigChange, Timestamp: now})
		return
	}

	isDir := w.isDir(event.Name)
	if isDir {
		if w.opts.SkipDir != nil && w.opts.SkipDir(rel) {
			return
		}
	} else if w.opts.Filter != nil && !w.opts.Filter(rel) {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
		if isDir {
			if err := w.addRecursive(event.Name); err != nil {
				w.emitError(err)
			}
		}
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
		w.forget(event.Name)
	case event.Has(fsnotify.Rename):
		op = OpRename
		w.forget(event.Name)
	default:
		return
	}

	w.debouncer.Add(FileEvent{Path: rel, Operation: op, IsDir: isDir, Timestamp: now})
}

func (w *Watcher) relative(name string) (string, bool) {
	w.mu.RLock()
	root := w.root
	w.mu.RUnlock()

	rel, err := filepath.Rel(root, name)
	if err != nil || rel == "." {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return "", false
	}
	return rel, true
}

// isDir checks the disk first and falls back to the registered set for
// paths that no longer exist.
func (w *Watcher) isDir(name string) bool {
	if info, err := os.Stat(name); err == nil {
		return info.IsDir()
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.dirs[name]
	return ok
}

func (w *Watcher) forget(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range w.dirs {
		if dir == name || strings.HasPrefix(dir, name+string(filepath.Separator)) {
			delete(w.dirs, dir)
		}
	}
}

func (w *Watcher) dirCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.dirs)
}

// addRecursive registers dir and every non-skipped directory below it.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			w.logger.Warn("skipping unreadable directory",
				slog.String("path", p),
				slog.String("error", err.Error()))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.Root() {
			rel, ok := w.relative(p)
			if !ok || (w.opts.SkipDir != nil && w.opts.SkipDir(rel)) {
				return filepath.SkipDir
			}
		}

		if err := w.fs.Add(p); err != nil {
			return err
		}
		w.mu.Lock()
		w.dirs[p] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}

// forward moves debounced batches to the events channel.
func (w *Watcher) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			w.emitEvents(batch)
		}
	}
}

func (w *Watcher) emitEvents(batch []FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}
	select {
	case w.events <- batch:
	default:
		count := w.droppedBatches.Add(1)
		w.logger.Warn("event buffer full, dropping batch",
			slog.Int("batch_size", len(batch)),
			slog.Uint64("total_dropped_batches", count))
	}
}

func (w *Watcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

// Stop releases the fsnotify watcher and closes the channels.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.markReady()

	w.debouncer.Stop()
	err := w.fs.Close()

	close(w.events)
	close(w.errors)
	return err
}

// Events returns the channel of debounced batches.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// DroppedBatches returns the number of batches dropped because the
// consumer fell behind.
func (w *Watcher) DroppedBatches() uint64 {
	return w.droppedBatches.Load()
}

// Root returns the absolute root being watched.
func (w *Watcher) Root() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.root
}
