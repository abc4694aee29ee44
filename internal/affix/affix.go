// Package affix implements the small string-set algebra used by the regex
// analysis: sets of exact matches, guaranteed prefixes and guaranteed
// suffixes.
//
// Sets are immutable. Every operation returns a new canonical set: sorted,
// deduplicated, and ordered either naturally (Forward) or by reversed rune
// sequence (Reverse). Reverse order puts strings sharing a suffix next to
// each other, the same way Forward order does for prefixes, so redundancy
// elimination is a single linear scan in both cases.
package affix

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Order is the canonical ordering of a Set.
type Order int

const (
	Forward Order = iota // natural string order (exact sets, prefixes)
	Reverse              // reversed-rune order (suffixes)
)

func (o Order) String() string {
	if o == Reverse {
		return "reverse"
	}
	return "forward"
}

// Set is an immutable canonical set of strings.
// The zero value is the empty Forward set.
type Set struct {
	strs  []string
	order Order
}

// New returns the canonical set of strs in the given order.
// The input slice is not retained.
func New(order Order, strs ...string) Set {
	return canonical(order, slices.Clone(strs))
}

// canonical sorts and dedupes strs in place and wraps it.
func canonical(order Order, strs []string) Set {
	if order == Reverse {
		slices.SortFunc(strs, compareReverse)
	} else {
		slices.Sort(strs)
	}
	return Set{strs: slices.Compact(strs), order: order}
}

// Len returns the number of strings in s.
func (s Set) Len() int { return len(s.strs) }

// Order returns the ordering of s.
func (s Set) Order() Order { return s.order }

// Strings returns a copy of the strings in canonical order.
func (s Set) Strings() []string { return slices.Clone(s.strs) }

// All iterates over the strings of s in canonical order.
func (s Set) All(yield func(string) bool) {
	for _, str := range s.strs {
		if !yield(str) {
			return
		}
	}
}

// Contains reports whether str is in s.
func (s Set) Contains(str string) bool {
	return slices.Contains(s.strs, str)
}

// WithOrder returns s re-sorted in the given order.
func (s Set) WithOrder(order Order) Set {
	if order == s.order {
		return s
	}
	return New(order, s.strs...)
}

// MinLen returns the rune length of the shortest string, or 0 for the empty set.
func (s Set) MinLen() int {
	if len(s.strs) == 0 {
		return 0
	}
	m := utf8.RuneCountInString(s.strs[0])
	for _, str := range s.strs[1:] {
		m = min(m, utf8.RuneCountInString(str))
	}
	return m
}

// MaxLen returns the rune length of the longest string, or 0 for the empty set.
func (s Set) MaxLen() int {
	m := 0
	for _, str := range s.strs {
		m = max(m, utf8.RuneCountInString(str))
	}
	return m
}

func (s Set) String() string {
	quoted := make([]string, len(s.strs))
	for i, str := range s.strs {
		quoted[i] = `"` + str + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

// Union returns a ∪ b in a's order.
func Union(a, b Set) Set {
	strs := make([]string, 0, len(a.strs)+len(b.strs))
	strs = append(strs, a.strs...)
	strs = append(strs, b.strs...)
	return canonical(a.order, strs)
}

// RemoveRedundant drops every string that extends the previously kept
// string: for a Forward set "abc" is dropped after "ab", for a Reverse set
// "xab" is dropped after "ab". A shorter guaranteed affix implies the
// longer one for filtering purposes.
func RemoveRedundant(s Set) Set {
	extends := strings.HasPrefix
	if s.order == Reverse {
		extends = strings.HasSuffix
	}
	out := make([]string, 0, len(s.strs))
	for _, str := range s.strs {
		if len(out) > 0 && extends(str, out[len(out)-1]) {
			continue
		}
		out = append(out, str)
	}
	return Set{strs: out, order: s.order}
}

// Cross returns the set of all concatenations x+y in the given order.
// If the deduplicated product has more than limit strings it returns
// false, and the caller must fall back to a coarser representation.
// The product is never truncated: a partial product would claim matches
// that are not guaranteed.
func Cross(xs, ys Set, order Order, limit int) (Set, bool) {
	// With a fixed y, distinct x give distinct x+y (and vice versa), so the
	// product is at least as large as either non-empty side.
	if len(xs.strs) > 0 && len(ys.strs) > 0 && max(len(xs.strs), len(ys.strs)) > limit {
		return Set{order: order}, false
	}
	strs := make([]string, 0, len(xs.strs)*len(ys.strs))
	for _, x := range xs.strs {
		for _, y := range ys.strs {
			strs = append(strs, x+y)
		}
	}
	out := canonical(order, strs)
	if len(out.strs) > limit {
		return Set{order: order}, false
	}
	return out, true
}

// Truncate shortens every string to at most n runes, keeping the leading
// runes of a Forward set and the trailing runes of a Reverse set.
func Truncate(s Set, n int) Set {
	n = max(n, 0)
	strs := make([]string, len(s.strs))
	for i, str := range s.strs {
		if s.order == Reverse {
			strs[i] = lastRunes(str, n)
		} else {
			strs[i] = firstRunes(str, n)
		}
	}
	return canonical(s.order, strs)
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func lastRunes(s string, n int) string {
	end := len(s)
	for i := 0; i < n && end > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:end])
		end -= size
	}
	return s[end:]
}

// compareReverse orders strings by their reversed rune sequences.
func compareReverse(a, b string) int {
	for len(a) > 0 && len(b) > 0 {
		ra, na := utf8.DecodeLastRuneInString(a)
		rb, nb := utf8.DecodeLastRuneInString(b)
		if ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
		a, b = a[:len(a)-na], b[:len(b)-nb]
	}
	switch {
	case len(a) == len(b):
		return 0
	case len(a) < len(b):
		return -1
	default:
		return 1
	}
}
