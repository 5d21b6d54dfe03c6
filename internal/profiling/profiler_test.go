package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func TestStart_AllProfiles(t *testing.T) {
	// Given: paths for every profile kind
	dir := t.TempDir()
	opts := Options{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Heap:  filepath.Join(dir, "heap.prof"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	require.True(t, opts.Enabled())

	// When: profiling some work
	p, err := Start(opts)
	require.NoError(t, err)
	sum := 0
	for i := 0; i < 1000000; i++ {
		sum += i
	}
	_ = sum
	require.NoError(t, p.Stop())

	// Then: every file has content
	assert.Greater(t, fileSize(t, opts.CPU), int64(0))
	assert.Greater(t, fileSize(t, opts.Heap), int64(0))
	assert.Greater(t, fileSize(t, opts.Trace), int64(0))
}

func TestStop_Twice(t *testing.T) {
	p, err := Start(Options{CPU: filepath.Join(t.TempDir(), "cpu.prof")})
	require.NoError(t, err)

	require.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestStart_NothingRequested(t *testing.T) {
	assert.False(t, Options{}.Enabled())

	p, err := Start(Options{})
	require.NoError(t, err)
	assert.NoError(t, p.Stop())
}

func TestStart_BadPath(t *testing.T) {
	_, err := Start(Options{CPU: filepath.Join(t.TempDir(), "missing", "cpu.prof")})
	require.Error(t, err)

	// CPU profiling must not be left running.
	p, err := Start(Options{CPU: filepath.Join(t.TempDir(), "cpu.prof")})
	require.NoError(t, err)
	assert.NoError(t, p.Stop())
}

func TestWriteHeap_BadPath(t *testing.T) {
	err := WriteHeap(filepath.Join(t.TempDir(), "missing", "heap.prof"))
	assert.Error(t, err)
}
