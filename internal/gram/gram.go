// Package gram extracts fixed-length substrings ("grams") from text.
//
// Grams are measured in runes, not bytes. Both the index and the regex
// translator fold case through this package so that a gram computed from
// a pattern and a gram computed from document text agree.
package gram

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLength is the gram length used when none is configured.
const DefaultLength = 3

// Fold maps a rune to the form stored in the index.
// It is a rune-for-rune mapping, so folding never changes gram boundaries.
func Fold(r rune) rune {
	return unicode.ToLower(r)
}

// FoldString folds every rune of s.
func FoldString(s string) string {
	return strings.Map(Fold, s)
}

// Len returns the length of s in runes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// All returns every overlapping n-rune gram of s in order, duplicates included.
// It returns nil if s is shorter than n runes or n < 1.
func All(s string, n int) []string {
	if n < 1 {
		return nil
	}
	// Byte offset of every rune start, plus len(s) as a sentinel.
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	runes := len(offsets)
	if runes < n {
		return nil
	}
	offsets = append(offsets, len(s))

	out := make([]string, 0, runes-n+1)
	for i := 0; i+n <= runes; i++ {
		out = append(out, s[offsets[i]:offsets[i+n]])
	}
	return out
}

// Split returns the distinct overlapping n-rune grams of s in order of
// first occurrence.
func Split(s string, n int) []string {
	all := All(s, n)
	if len(all) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, g := range all {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Set returns the distinct folded grams of text as a set.
// This is what the index stores for a document.
func Set(text string, n int) map[string]struct{} {
	all := All(FoldString(text), n)
	set := make(map[string]struct{}, len(all))
	for _, g := range all {
		set[g] = struct{}{}
	}
	return set
}
