package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsearch/internal/entry"
	"github.com/Aman-CERP/docsearch/internal/search"
)

func TestWriter_StatusIcons(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"status", func(w *Writer) { w.Status("🔍", "Loading content...") }, "🔍 Loading content...\n"},
		{"no icon indents", func(w *Writer) { w.Status("", "detail") }, "   detail\n"},
		{"success", func(w *Writer) { w.Successf("Loaded %d entries", 3) }, "✅ Loaded 3 entries\n"},
		{"warning", func(w *Writer) { w.Warningf("duplicate id %q", "a") }, "⚠️  duplicate id \"a\"\n"},
		{"error", func(w *Writer) { w.Errorf("failed: %s", "boom") }, "❌ failed: boom\n"},
		{"newline", func(w *Writer) { w.Newline() }, "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}

			tt.write(New(buf))

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func sampleResults() []search.Result {
	return []search.Result{
		{Entry: entry.Entry{ID: "persist", Title: "Persisting state", Section: entry.SectionTutorial, Path: "/tutorial/persist"}, Score: 25, MatchedTerms: []string{"persist", "mig"}},
		{Entry: entry.Entry{ID: "api", Title: "Persistence API", Section: entry.SectionNote, Path: "/note/persistence"}, Score: 12, MatchedTerms: []string{"persist"}},
	}
}

func TestWriter_Results(t *testing.T) {
	// Given: two ranked results
	buf := &bytes.Buffer{}

	// When: printing them
	New(buf).Results("persist mig", sampleResults())

	// Then: columns are aligned in rank order
	want := "1.  tutorial  Persisting state  /tutorial/persist  25\n" +
		"2.  note      Persistence API   /note/persistence  12\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_Results_Empty(t *testing.T) {
	buf := &bytes.Buffer{}

	New(buf).Results("xyz123", nil)

	assert.Equal(t, "no matches for \"xyz123\"\n", buf.String())
}

func TestWriter_JSON(t *testing.T) {
	// Given: results converted for JSON
	buf := &bytes.Buffer{}

	// When: writing them
	require.NoError(t, New(buf).JSON(ResultsJSON(sampleResults())))

	// Then: ranks start at 1 and fields round-trip
	var got []ResultJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "persist", got[0].ID)
	assert.Equal(t, "tutorial", got[0].Section)
	assert.Equal(t, []string{"persist", "mig"}, got[0].MatchedTerms)
	assert.Equal(t, 2, got[1].Rank)
}

func TestResultsJSON_Empty(t *testing.T) {
	buf := &bytes.Buffer{}

	require.NoError(t, New(buf).JSON(ResultsJSON(nil)))

	assert.Equal(t, "[]\n", buf.String())
}
