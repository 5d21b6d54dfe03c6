package store

import (
	"slices"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/Aman-CERP/docsearch/internal/entry"
)

// Field identifies which part of an entry a token came from.
type Field int

const (
	// FieldTitle is the entry title.
	FieldTitle Field = iota
	// FieldKeyword is any of the entry keywords.
	FieldKeyword
)

// Field weights applied during scoring.
const (
	TitleWeight   = 3
	KeywordWeight = 1
)

// Weight returns the scoring weight of the field.
func (f Field) Weight() int {
	if f == FieldTitle {
		return TitleWeight
	}
	return KeywordWeight
}

// String returns the field name.
func (f Field) String() string {
	if f == FieldTitle {
		return "title"
	}
	return "keyword"
}

// Posting records that a token occurs in one field of one entry.
type Posting struct {
	EntryID   string
	Field     Field
	Weight    int
	Frequency int
}

// builds hands out a distinct generation to every built index.
var builds atomic.Uint64

// Index is an immutable inverted index from normalized token to postings.
// It is safe for concurrent readers.
type Index struct {
	entries    []entry.Entry
	byID       map[string]int
	postings   map[string][]Posting
	vocab      []string // sorted, for prefix lookups
	generation uint64
}

// Build creates an index from entries. It never fails: entries with an
// empty title are indexed on their keywords alone, and entries with nothing
// indexable are kept (they simply never match).
//
// Building twice from the same entries yields indexes that answer every
// query identically.
func Build(entries []entry.Entry) *Index {
	idx := &Index{
		entries:    make([]entry.Entry, len(entries)),
		byID:       make(map[string]int, len(entries)),
		postings:   make(map[string][]Posting),
		generation: builds.Add(1),
	}
	for i, e := range entries {
		e.Keywords = slices.Clone(e.Keywords)
		idx.entries[i] = e
	}

	for i, e := range idx.entries {
		if _, dup := idx.byID[e.ID]; !dup {
			idx.byID[e.ID] = i
		}
		idx.addField(e.ID, FieldTitle, Tokenize(e.Title))

		var kwTokens []string
		for _, kw := range e.Keywords {
			kwTokens = append(kwTokens, Tokenize(kw)...)
		}
		idx.addField(e.ID, FieldKeyword, kwTokens)
	}

	idx.vocab = make([]string, 0, len(idx.postings))
	for tok := range idx.postings {
		idx.vocab = append(idx.vocab, tok)
	}
	sort.Strings(idx.vocab)

	return idx
}

// BuildFromRegistry builds an index from the registry's current entries.
func BuildFromRegistry(r *entry.Registry) *Index {
	return Build(r.All())
}

// addField appends one posting per distinct token, counting repeats.
func (idx *Index) addField(id string, field Field, tokens []string) {
	if len(tokens) == 0 {
		return
	}

	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	for _, t := range order {
		idx.postings[t] = append(idx.postings[t], Posting{
			EntryID:   id,
			Field:     field,
			Weight:    field.Weight(),
			Frequency: counts[t],
		})
	}
}

// Postings returns the postings for an exact token, or nil.
// The returned slice must not be modified.
func (idx *Index) Postings(token string) []Posting {
	return idx.postings[token]
}

// TokensWithPrefix returns every indexed token starting with prefix, in
// sorted order. An empty prefix returns nil.
func (idx *Index) TokensWithPrefix(prefix string) []string {
	if prefix == "" {
		return nil
	}
	start := sort.SearchStrings(idx.vocab, prefix)
	end := start
	for end < len(idx.vocab) && strings.HasPrefix(idx.vocab[end], prefix) {
		end++
	}
	if start == end {
		return nil
	}
	return idx.vocab[start:end:end]
}

// Entry returns the indexed entry with the given id.
func (idx *Index) Entry(id string) (entry.Entry, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return entry.Entry{}, false
	}
	e := idx.entries[i]
	e.Keywords = slices.Clone(e.Keywords)
	return e, true
}

// Position returns the entry's position in the slice the index was built
// from, or -1 for an unknown id. The first occurrence wins for repeated ids.
func (idx *Index) Position(id string) int {
	if i, ok := idx.byID[id]; ok {
		return i
	}
	return -1
}

// Entries returns the indexed entries in build order.
func (idx *Index) Entries() []entry.Entry {
	out := make([]entry.Entry, len(idx.entries))
	for i, e := range idx.entries {
		e.Keywords = slices.Clone(e.Keywords)
		out[i] = e
	}
	return out
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// TokenCount returns the number of distinct tokens in the index.
func (idx *Index) TokenCount() int {
	return len(idx.vocab)
}

// Generation identifies this build. No two builds share a generation.
func (idx *Index) Generation() uint64 {
	return idx.generation
}
