// Package search ranks documentation entries against a typed query.
//
// Matching is prefix-based: a query token matches an indexed token when the
// indexed token starts with it. Exact matches score higher than prefix-only
// matches, title matches higher than keyword matches, and ranking ties are
// broken deterministically so the same query over the same entries always
// yields the same order.
package search

import (
	"github.com/Aman-CERP/docsearch/internal/entry"
)

// DefaultLimit is the result count used when a caller passes limit <= 0.
const DefaultLimit = 8

// Scoring constants.
const (
	// ExactMatchPoints is multiplied by the field weight on exact token equality.
	ExactMatchPoints = 10
	// PrefixMatchPoints is multiplied by the field weight on prefix-only matches.
	PrefixMatchPoints = 4
	// MaxFrequencyBonus caps the per-token frequency bonus.
	MaxFrequencyBonus = 3
)

// Result is one ranked entry.
type Result struct {
	Entry entry.Entry
	Score int
	// MatchedTerms lists the query tokens that matched this entry, in query order.
	MatchedTerms []string
}

// Options narrows a search.
type Options struct {
	// Limit is the maximum number of results (DefaultLimit when <= 0).
	Limit int
	// Sections restricts results to these sections. Empty means all.
	Sections []entry.Section
}

// Entries extracts the entries from results, preserving order.
// Returns an empty, non-nil slice for no results.
func Entries(results []Result) []entry.Entry {
	out := make([]entry.Entry, len(results))
	for i, r := range results {
		out[i] = r.Entry
	}
	return out
}
