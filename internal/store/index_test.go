package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsearch/internal/entry"
)

func TestBuild_IndexesTitleAndKeywordsWithWeights(t *testing.T) {
	// Given: one entry with a title and keywords
	entries := []entry.Entry{{
		ID:       "1",
		Title:    "Counter Tutorial",
		Keywords: []string{"state", "counter"},
	}}

	// When: building the index
	idx := Build(entries)

	// Then: title tokens carry weight 3 and keyword tokens weight 1
	posts := idx.Postings("counter")
	require.Len(t, posts, 2)
	assert.Equal(t, Posting{EntryID: "1", Field: FieldTitle, Weight: 3, Frequency: 1}, posts[0])
	assert.Equal(t, Posting{EntryID: "1", Field: FieldKeyword, Weight: 1, Frequency: 1}, posts[1])

	state := idx.Postings("state")
	require.Len(t, state, 1)
	assert.Equal(t, FieldKeyword, state[0].Field)
}

func TestBuild_CountsRepeatedTokensPerField(t *testing.T) {
	entries := []entry.Entry{{
		ID:       "1",
		Title:    "Go go GO",
		Keywords: []string{"go", "golang go"},
	}}

	idx := Build(entries)

	posts := idx.Postings("go")
	require.Len(t, posts, 2)
	assert.Equal(t, 3, posts[0].Frequency)
	assert.Equal(t, FieldTitle, posts[0].Field)
	assert.Equal(t, 2, posts[1].Frequency)
	assert.Equal(t, FieldKeyword, posts[1].Field)
}

func TestBuild_EmptyTitleStillIndexesKeywords(t *testing.T) {
	// Given: an entry whose title is only whitespace
	entries := []entry.Entry{{ID: "k", Title: "   ", Keywords: []string{"routing"}}}

	// When: building
	idx := Build(entries)

	// Then: the entry is kept and reachable through its keywords
	assert.Equal(t, 1, idx.Len())
	require.Len(t, idx.Postings("routing"), 1)
	_, ok := idx.Entry("k")
	assert.True(t, ok)
}

func TestBuild_NothingIndexableIsNotAnError(t *testing.T) {
	idx := Build([]entry.Entry{{ID: "x", Title: "!", Keywords: nil}})

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 0, idx.TokenCount())
}

func TestBuild_EmptyInput(t *testing.T) {
	idx := Build(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.TokensWithPrefix("a"))
}

func TestBuild_CopiesEntries(t *testing.T) {
	entries := []entry.Entry{{ID: "1", Title: "Original"}}
	idx := Build(entries)

	entries[0].Title = "Changed"

	got, _ := idx.Entry("1")
	assert.Equal(t, "Original", got.Title)
}

func TestIndex_KeywordsAreNotShared(t *testing.T) {
	// Given: an index built from an entry with keywords
	entries := []entry.Entry{{ID: "1", Title: "Counter", Keywords: []string{"state"}}}
	idx := Build(entries)

	// When: the input and every returned copy are mutated
	entries[0].Keywords[0] = "input"
	got, ok := idx.Entry("1")
	require.True(t, ok)
	got.Keywords[0] = "entry"
	idx.Entries()[0].Keywords[0] = "entries"

	// Then: the indexed entry is unchanged
	again, _ := idx.Entry("1")
	assert.Equal(t, []string{"state"}, again.Keywords)
	assert.Equal(t, []string{"state"}, idx.Entries()[0].Keywords)
}

func TestIndex_Position(t *testing.T) {
	idx := Build([]entry.Entry{
		{ID: "b", Title: "Beta"},
		{ID: "a", Title: "Alpha"},
		{ID: "b", Title: "Beta again"},
	})

	assert.Equal(t, 0, idx.Position("b"), "first occurrence wins")
	assert.Equal(t, 1, idx.Position("a"))
	assert.Equal(t, -1, idx.Position("missing"))
}

func TestTokensWithPrefix_ReturnsSortedMatches(t *testing.T) {
	idx := Build([]entry.Entry{
		{ID: "1", Title: "Counter Count"},
		{ID: "2", Title: "Country Codes"},
		{ID: "3", Title: "Cache"},
	})

	assert.Equal(t, []string{"count", "counter", "country"}, idx.TokensWithPrefix("cou"))
	assert.Equal(t, []string{"country"}, idx.TokensWithPrefix("country"))
	assert.Nil(t, idx.TokensWithPrefix("xyz"))
	assert.Nil(t, idx.TokensWithPrefix(""))
}

func TestBuild_GenerationsAreDistinct(t *testing.T) {
	entries := []entry.Entry{{ID: "1", Title: "Same"}}
	a := Build(entries)
	b := Build(entries)

	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.Equal(t, a.TokenCount(), b.TokenCount())
}

func TestBuildFromRegistry_UsesRegistrationOrder(t *testing.T) {
	r := entry.NewRegistry()
	_, err := r.Register(entry.Entry{ID: "b", Title: "Beta"})
	require.NoError(t, err)
	_, err = r.Register(entry.Entry{ID: "a", Title: "Alpha"})
	require.NoError(t, err)

	idx := BuildFromRegistry(r)

	all := idx.Entries()
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, 1, all[1].Seq)
}

func TestBuildFromRegistry_DuplicateFieldsAbsent(t *testing.T) {
	// Given: a registry that rejected a duplicate id
	r := entry.NewRegistry()
	_, err := r.Register(entry.Entry{ID: "a", Title: "Routing"})
	require.NoError(t, err)
	_, err = r.Register(entry.Entry{ID: "a", Title: "Middleware", Keywords: []string{"handlers"}})
	require.Error(t, err)

	// When: building from it
	idx := BuildFromRegistry(r)

	// Then: only the first entry's tokens exist
	assert.Len(t, idx.Postings("routing"), 1)
	assert.Nil(t, idx.Postings("middleware"))
	assert.Nil(t, idx.Postings("handlers"))
}

func TestField_WeightAndString(t *testing.T) {
	assert.Equal(t, 3, FieldTitle.Weight())
	assert.Equal(t, 1, FieldKeyword.Weight())
	assert.Equal(t, "title", FieldTitle.String())
	assert.Equal(t, "keyword", FieldKeyword.String())
}
