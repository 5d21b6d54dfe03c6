package mcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/docsearch/internal/entry"
	"github.com/Aman-CERP/docsearch/internal/search"
)

func TestFormatResults_Basic(t *testing.T) {
	// Given: one ranked entry
	results := []search.Result{{
		Entry:        entry.Entry{ID: "counter", Title: "Counter", Section: entry.SectionTutorial, Path: "/tutorial/counter"},
		Score:        13,
		MatchedTerms: []string{"cou"},
	}}

	// When: formatting
	got := FormatResults("cou", results)

	// Then: header, count, title, section and path are present
	assert.Contains(t, got, `## Documentation Results for "cou"`)
	assert.Contains(t, got, "Found 1 result\n")
	assert.Contains(t, got, "### 1. Counter (score: 13)")
	assert.Contains(t, got, "**Section:** tutorial | **Path:** `/tutorial/counter`")
	assert.Contains(t, got, "**Matched:** cou")
}

func TestFormatResults_Plural(t *testing.T) {
	results := []search.Result{
		{Entry: entry.Entry{Title: "A", Path: "/a"}},
		{Entry: entry.Entry{Title: "B", Path: "/b"}},
	}

	got := FormatResults("x", results)

	assert.Contains(t, got, "Found 2 results")
	assert.Contains(t, got, "**Section:** other")
	assert.NotContains(t, got, "**Matched:**")
	assert.Less(t, strings.Index(got, "### 1. A"), strings.Index(got, "### 2. B"))
}

func TestFormatResults_Empty(t *testing.T) {
	assert.Equal(t, `No documentation found for "xyz123"`, FormatResults("xyz123", nil))
}

func TestMatchReason_LimitsManyTerms(t *testing.T) {
	r := search.Result{MatchedTerms: []string{"a", "b", "c", "d", "e", "f", "g"}}

	assert.Equal(t, "**Matched:** a, b, c, d, e", matchReason(r))
}

func TestFormatSections(t *testing.T) {
	got := FormatSections(ListSectionsOutput{
		Total: 3,
		Sections: []SectionCount{
			{Name: "tutorial", Count: 2, Rank: 1},
			{Name: "other", Count: 1, Rank: 2},
		},
	})

	assert.Contains(t, got, "## Sections (3 entries)")
	assert.Contains(t, got, "| 1 | tutorial | 2 |")
	assert.Contains(t, got, "| 2 | other | 1 |")
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		fallback int
		want     int
	}{
		{"zero uses default", 0, 8, 8},
		{"negative uses default", -3, 8, 8},
		{"within range", 20, 8, 20},
		{"above max", 500, 8, MaxLimit},
		{"default above max", 0, 80, MaxLimit},
		{"zero default clamps to min", 0, 0, MinLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampLimit(tt.limit, tt.fallback, MinLimit, MaxLimit))
		})
	}
}

func TestToResultOutput(t *testing.T) {
	r := search.Result{
		Entry:        entry.Entry{ID: "g", Title: "Glossary", Section: entry.SectionGlossary, Path: "/g", Keywords: []string{"terms"}},
		Score:        7,
		MatchedTerms: []string{"gl"},
	}

	got := ToResultOutput(r)

	assert.Equal(t, ResultOutput{
		ID: "g", Title: "Glossary", Section: "glossary", Path: "/g",
		Keywords: []string{"terms"}, Score: 7, MatchedTerms: []string{"gl"},
	}, got)
}
