package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsearch/internal/search"
	"github.com/Aman-CERP/docsearch/internal/watcher"
)

const testProjectConfig = `version: 1
search:
  limit: 5
content:
  dir: .
  manifest: entries.yaml
  extensions: [.md]
  watch: false
`

const testManifest = `entries:
  - id: "1"
    title: Persisting state
    section: tutorial
    path: /tutorial/persist
    keywords: [storage, migration]
  - id: "2"
    title: Persistence API
    section: note
    path: /note/persistence
  - id: "3"
    title: Counter
    section: example
    path: /example/counter
    keywords: [state]
  - id: "4"
    title: "Glossary: Signal"
    section: glossary
    path: /glossary/signal
    keywords: [reactive]
`

// newTestProject writes a docs project with a manifest and isolates the
// user config and home directory.
func newTestProject(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearch.yaml"), []byte(testProjectConfig), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entries.yaml"), []byte(testManifest), 0644))
	return dir
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	stdout := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestLoadProject_ExplicitDir(t *testing.T) {
	// Given: a project directory
	dir := newTestProject(t)

	// When: loading it explicitly
	p, err := loadProject(dir)

	// Then: the dir is the root and the project config applies
	require.NoError(t, err)
	assert.Equal(t, dir, p.root)
	assert.Equal(t, 5, p.cfg.Search.Limit)
	assert.False(t, p.cfg.Content.Watch)
	assert.Equal(t, filepath.Join(dir, "entries.yaml"), p.loader.Manifest)
}

func TestLoadProject_InvalidConfig(t *testing.T) {
	// Given: a project config with a negative limit
	dir := newTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docsearch.yaml"),
		[]byte("search:\n  limit: -1\n"), 0644))

	// When: loading it
	_, err := loadProject(dir)

	// Then: validation fails
	require.Error(t, err)
}

func TestProject_Open(t *testing.T) {
	// Given: a loaded project
	p, err := loadProject(newTestProject(t))
	require.NoError(t, err)

	// When: opening the search
	s, stats, err := p.open(context.Background(), nil)

	// Then: the manifest entries are indexed
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 4, stats.Manifest)
	assert.Equal(t, []string{"1", "2"}, ids(s.Query("persist mig")))
}

func TestProject_WatchFilter(t *testing.T) {
	p, err := loadProject(newTestProject(t))
	require.NoError(t, err)

	assert.True(t, p.watchFilter("entries.yaml"), "manifest")
	assert.True(t, p.watchFilter("guide/intro.md"), "content file")
	assert.False(t, p.watchFilter("guide/intro.txt"), "other extension")
}

func TestProject_Reload(t *testing.T) {
	// Given: an opened project
	dir := newTestProject(t)
	p, err := loadProject(dir)
	require.NoError(t, err)
	s, _, err := p.open(context.Background(), nil)
	require.NoError(t, err)

	// When: a markdown page is added and a batch arrives
	page := "---\ntitle: Routing\nsection: example\n---\n# Routing\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routing.md"), []byte(page), 0644))
	p.reload(context.Background(), s, []watcher.FileEvent{{Path: "routing.md", Operation: watcher.OpCreate}})

	// Then: the new page is searchable
	assert.Equal(t, 5, s.Len())
	results := s.Query("rout")
	require.Len(t, results, 1)
	assert.Equal(t, "Routing", results[0].Entry.Title)
}

func TestProject_ReloadFailureKeepsEntries(t *testing.T) {
	// Given: an opened project
	dir := newTestProject(t)
	p, err := loadProject(dir)
	require.NoError(t, err)
	s, _, err := p.open(context.Background(), nil)
	require.NoError(t, err)

	// When: the manifest becomes unparsable
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entries.yaml"), []byte("entries: [\n"), 0644))
	p.reload(context.Background(), s, []watcher.FileEvent{{Path: "entries.yaml", Operation: watcher.OpModify}})

	// Then: the previous entries stay searchable
	assert.Equal(t, 4, s.Len())
	assert.Len(t, s.Query("cou"), 1)
}

func TestProject_WatchStopsOnCancel(t *testing.T) {
	p, err := loadProject(newTestProject(t))
	require.NoError(t, err)
	s, _, err := p.open(context.Background(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.watch(ctx, s)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func ids(results []search.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Entry.ID
	}
	return out
}
