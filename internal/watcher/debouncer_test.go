package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextBatch waits for one batch or fails after timeout.
func nextBatch(t *testing.T, d *Debouncer, timeout time.Duration) []FileEvent {
	t.Helper()
	select {
	case batch, ok := <-d.Output():
		require.True(t, ok, "output closed")
		return batch
	case <-time.After(timeout):
		t.Fatal("no batch within timeout")
		return nil
	}
}

func TestDebouncer_Coalescing(t *testing.T) {
	tests := []struct {
		name string
		ops  []Operation
		want []Operation // nil: the events cancel out
	}{
		{name: "single create", ops: []Operation{OpCreate}, want: []Operation{OpCreate}},
		{name: "modify storm", ops: []Operation{OpModify, OpModify, OpModify, OpModify}, want: []Operation{OpModify}},
		{name: "new page edited", ops: []Operation{OpCreate, OpModify}, want: []Operation{OpCreate}},
		{name: "page deleted after edit", ops: []Operation{OpModify, OpDelete}, want: []Operation{OpDelete}},
		{name: "page replaced", ops: []Operation{OpDelete, OpCreate}, want: []Operation{OpModify}},
		{name: "scratch file", ops: []Operation{OpCreate, OpDelete}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a debouncer with a short window
			d := NewDebouncer(30 * time.Millisecond)
			defer d.Stop()

			// When: the operations arrive for one page inside the window
			for _, op := range tt.ops {
				d.Add(FileEvent{Path: "guide/intro.md", Operation: op, Timestamp: time.Now()})
			}

			// Then: at most one merged event comes out
			if tt.want == nil {
				select {
				case batch := <-d.Output():
					t.Fatalf("expected no batch, got %v", batch)
				case <-time.After(150 * time.Millisecond):
				}
				return
			}
			batch := nextBatch(t, d, time.Second)
			require.Len(t, batch, len(tt.want))
			assert.Equal(t, "guide/intro.md", batch[0].Path)
			assert.Equal(t, tt.want[0], batch[0].Operation)
		})
	}
}

func TestDebouncer_QuietWindowResets(t *testing.T) {
	// Given: a debouncer with a 60ms window
	d := NewDebouncer(60 * time.Millisecond)
	defer d.Stop()

	// When: edits keep arriving faster than the window
	start := time.Now()
	for range 4 {
		d.Add(FileEvent{Path: "notes/api.md", Operation: OpModify, Timestamp: time.Now()})
		time.Sleep(20 * time.Millisecond)
	}

	// Then: a single batch is emitted after the last edit went quiet
	batch := nextBatch(t, d, time.Second)
	require.Len(t, batch, 1)
	assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
}

func TestDebouncer_BatchSortedByPath(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	// When: events for several pages arrive out of order
	d.Add(FileEvent{Path: "tutorial/routing.md", Operation: OpDelete})
	d.Add(FileEvent{Path: "entries.yaml", Operation: OpModify})
	d.Add(FileEvent{Path: ".docsearchignore", Operation: OpIgnoreChange})

	// Then: they share one batch in path order
	batch := nextBatch(t, d, time.Second)
	require.Len(t, batch, 3)
	assert.Equal(t, ".docsearchignore", batch[0].Path)
	assert.Equal(t, OpIgnoreChange, batch[0].Operation)
	assert.Equal(t, "entries.yaml", batch[1].Path)
	assert.Equal(t, "tutorial/routing.md", batch[2].Path)
}

func TestDebouncer_SeparateWindows(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.md", Operation: OpCreate})
	first := nextBatch(t, d, time.Second)

	d.Add(FileEvent{Path: "a.md", Operation: OpDelete})
	second := nextBatch(t, d, time.Second)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, OpCreate, first[0].Operation)
	assert.Equal(t, OpDelete, second[0].Operation, "a flushed create does not cancel a later delete")
}

func TestDebouncer_Stop(t *testing.T) {
	// Given: a debouncer with a pending event
	d := NewDebouncer(50 * time.Millisecond)
	d.Add(FileEvent{Path: "pending.md", Operation: OpCreate})

	// When: stopped twice and fed afterwards
	d.Stop()
	d.Stop()
	d.Add(FileEvent{Path: "late.md", Operation: OpCreate})

	// Then: the output is closed without the pending batch
	select {
	case batch, ok := <-d.Output():
		assert.False(t, ok, "output should be closed, got %v", batch)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("output not closed")
	}
}
