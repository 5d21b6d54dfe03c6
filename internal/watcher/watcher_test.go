package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpCreate, "CREATE"},
		{OpModify, "MODIFY"},
		{OpDelete, "DELETE"},
		{OpRename, "RENAME"},
		{OpIgnoreChange, "IGNORE_CHANGE"},
		{OpConfigChange, "CONFIG_CHANGE"},
		{Operation(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{}.WithDefaults()
	assert.Equal(t, 300*time.Millisecond, got.DebounceWindow)
	assert.Equal(t, 100, got.EventBufferSize)
	assert.NotNil(t, got.Logger)

	custom := Options{DebounceWindow: time.Second, EventBufferSize: 5}.WithDefaults()
	assert.Equal(t, time.Second, custom.DebounceWindow)
	assert.Equal(t, 5, custom.EventBufferSize)
}

// startWatcher runs a watcher on dir and waits until it is registered.
func startWatcher(t *testing.T, dir string, opts Options) *Watcher {
	t.Helper()
	if opts.DebounceWindow == 0 {
		opts.DebounceWindow = 30 * time.Millisecond
	}
	w, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx, dir)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not become ready")
	}
	return w
}

// collectUntil gathers events until one satisfies stop or the timeout passes.
func collectUntil(t *testing.T, w *Watcher, stop func(FileEvent) bool) []FileEvent {
	t.Helper()
	var got []FileEvent
	timeout := time.After(3 * time.Second)
	for {
		select {
		case batch, ok := <-w.Events():
			if !ok {
				t.Fatal("events channel closed")
			}
			for _, e := range batch {
				got = append(got, e)
				if stop(e) {
					return got
				}
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event, got %v", got)
		}
	}
}

func paths(events []FileEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Path
	}
	return out
}

func TestWatcher_DetectsFileCreation(t *testing.T) {
	// Given: a watched content dir
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{})

	// When: a markdown file is created
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.md"), []byte("# Intro\n"), 0o644))

	// Then: a CREATE event arrives with a relative path
	events := collectUntil(t, w, func(e FileEvent) bool { return e.Path == "intro.md" })
	last := events[len(events)-1]
	assert.Equal(t, OpCreate, last.Operation)
	assert.False(t, last.IsDir)
}

func TestWatcher_DetectsModificationAndDeletion(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(file, []byte("# Note\n"), 0o644))
	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.WriteFile(file, []byte("# Note v2\n"), 0o644))
	events := collectUntil(t, w, func(e FileEvent) bool { return e.Path == "note.md" })
	assert.Equal(t, OpModify, events[len(events)-1].Operation)

	require.NoError(t, os.Remove(file))
	events = collectUntil(t, w, func(e FileEvent) bool { return e.Operation == OpDelete })
	assert.Equal(t, "note.md", events[len(events)-1].Path)
}

func TestWatcher_FilterDropsUnrelatedFiles(t *testing.T) {
	// Given: a filter accepting only markdown
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{
		Filter: func(rel string) bool { return strings.HasSuffix(rel, ".md") },
	})

	// When: an image and then a page are written
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte("# Page\n"), 0o644))

	// Then: only the page is reported
	events := collectUntil(t, w, func(e FileEvent) bool { return e.Path == "page.md" })
	assert.NotContains(t, paths(events), "logo.png")
}

func TestWatcher_ControlFiles(t *testing.T) {
	// Given: a filter that would reject both control files
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{Filter: func(string) bool { return false }})

	// When: the ignore file and a project config are written
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearchignore"), []byte("drafts/\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearch.yaml"), []byte("version: 1\n"), 0o644))

	// Then: both are reported with their dedicated operations
	ops := map[string]Operation{}
	collectUntil(t, w, func(e FileEvent) bool {
		ops[e.Path] = e.Operation
		return len(ops) == 2
	})
	assert.Equal(t, OpIgnoreChange, ops[".docsearchignore"])
	assert.Equal(t, OpConfigChange, ops[".docsearch.yaml"])
}

func TestWatcher_DetectsNewSubdirectory(t *testing.T) {
	// Given: a watched dir
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{})

	// When: a directory is created and a file is later written inside it
	sub := filepath.Join(dir, "tutorial")
	require.NoError(t, os.Mkdir(sub, 0o755))
	collectUntil(t, w, func(e FileEvent) bool { return e.Path == "tutorial" && e.IsDir })
	require.NoError(t, os.WriteFile(filepath.Join(sub, "counter.md"), []byte("# Counter\n"), 0o644))

	// Then: the nested file is reported
	collectUntil(t, w, func(e FileEvent) bool { return e.Path == "tutorial/counter.md" })
}

func TestWatcher_SkipsExcludedDirectories(t *testing.T) {
	// Given: an excluded directory present before the watch starts
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	w := startWatcher(t, dir, Options{
		SkipDir: func(rel string) bool { return rel == "node_modules" },
	})

	// When: files change inside the excluded dirs and then in the root
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "pkg", "readme.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A\n"), 0o644))

	// Then: only the root file is reported
	events := collectUntil(t, w, func(e FileEvent) bool { return e.Path == "a.md" })
	for _, p := range paths(events) {
		assert.False(t, strings.HasPrefix(p, "node_modules"), p)
		assert.False(t, strings.HasPrefix(p, ".git"), p)
	}
}

func TestWatcher_Start_InvalidPath(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.Equal(t, doerrors.CategoryIO, doerrors.GetCategory(err))
}

func TestWatcher_Start_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.md")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	w, err := New(Options{})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	err = w.Start(context.Background(), file)

	assert.Equal(t, doerrors.ErrCodeInvalidInput, doerrors.GetCode(err))
}

func TestWatcher_Start_FailureReleasesWatcher(t *testing.T) {
	// Given: a watcher pointed at a missing directory
	w, err := New(Options{})
	require.NoError(t, err)

	// When: Start fails
	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	// Then: waiters on Ready are released and the channels are closed
	select {
	case <-w.Ready():
	case <-time.After(time.Second):
		t.Fatal("Ready not closed after a failed Start")
	}
	_, open := <-w.Events()
	assert.False(t, open, "events channel closed")
	_, open = <-w.Errors()
	assert.False(t, open, "errors channel closed")
	assert.NoError(t, w.Stop(), "Stop stays safe")
}

func TestWatcher_ContextCancel_StopsCleanly(t *testing.T) {
	// Given: a running watcher
	w, err := New(Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, t.TempDir()) }()
	<-w.Ready()

	// When: the context is cancelled
	cancel()

	// Then: Start returns and the channels are closed
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	_, ok := <-w.Events()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}

func TestWatcher_ConcurrentStop_Safe(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Stop()
		}()
	}
	wg.Wait()

	_, ok := <-w.Events()
	assert.False(t, ok)
	assert.Zero(t, w.DroppedBatches())
}
