package store

import (
	"strings"
	"unicode"
)

// MinTokenLen is the shortest token kept by Tokenize, in runes.
const MinTokenLen = 2

// Tokenize normalizes text into search tokens.
//
// Text is lowercased, every rune that is neither a letter, a digit nor
// whitespace is removed (so "don't" becomes "dont"), the remainder is split
// on whitespace, and tokens shorter than MinTokenLen are dropped.
// Index building and query parsing share this function so both sides agree.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := current.String()
		current.Reset()
		if len([]rune(tok)) >= MinTokenLen {
			tokens = append(tokens, tok)
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(unicode.ToLower(r))
		}
	}
	flush()

	return tokens
}

// UniqueTokens tokenizes text and drops repeated tokens, keeping the
// position of the first occurrence. Returns an empty, non-nil slice when
// nothing survives normalization.
func UniqueTokens(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
