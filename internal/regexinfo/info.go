// Package regexinfo computes, for a regular expression, what every match of
// it is guaranteed to contain: an exact set of strings when the language is
// small, otherwise guaranteed prefixes, suffixes and a gram query.
//
// All strings are in folded form (see package gram), because that is the
// form in which document text reaches the index.
package regexinfo

import (
	"fmt"

	"gramsift/internal/affix"
	"gramsift/internal/gram"
	"gramsift/internal/gramquery"
)

// Config bounds the analysis. Every field must be at least 1.
type Config struct {
	GramLength   int // runes per gram
	MaxExactSize int // longest string kept in an exact set, in runes
	MaxSetSize   int // most strings kept in any set
}

// Info is the analysis result for one subexpression. It is never mutated
// after creation.
//
// When the exact set is present, prefix, suffix and match are derived from
// it on demand and the stored fields are unused. A present but empty exact
// set means the subexpression matches nothing.
type Info struct {
	exact    affix.Set
	hasExact bool
	prefix   affix.Set
	suffix   affix.Set
	match    *gramquery.Query
}

// Exact returns the exact set and whether it is present.
func (i Info) Exact() (affix.Set, bool) { return i.exact, i.hasExact }

// Prefix returns the guaranteed prefixes. For an exact info these are the
// exact strings themselves.
func (i Info) Prefix() affix.Set {
	if i.hasExact {
		return i.exact
	}
	return i.prefix
}

// Suffix returns the guaranteed suffixes in Reverse order.
func (i Info) Suffix() affix.Set {
	if i.hasExact {
		return i.exact.WithOrder(affix.Reverse)
	}
	return i.suffix
}

// Match returns the gram query every match satisfies, not counting grams
// still carried in the prefix and suffix sets.
func (i Info) Match(gramLen int) *gramquery.Query {
	if i.hasExact {
		return AndGrams(i.exact, gramLen)
	}
	return i.match
}

// EmptyLanguage reports whether the subexpression can match nothing at all.
func (i Info) EmptyLanguage() bool {
	return i.hasExact && i.exact.Len() == 0
}

func (i Info) String() string {
	if i.hasExact {
		return fmt.Sprintf("exact=%s", i.exact)
	}
	return fmt.Sprintf("prefix=%s suffix=%s match=%s", i.prefix, i.suffix, i.match)
}

func exactInfo(s affix.Set) Info {
	return Info{exact: s.WithOrder(affix.Forward), hasExact: true}
}

func emptyLanguage() Info {
	return exactInfo(affix.New(affix.Forward))
}

// anyInfo knows nothing: any string may match.
func anyInfo() Info {
	return Info{
		prefix: affix.New(affix.Forward, ""),
		suffix: affix.New(affix.Reverse, ""),
		match:  gramquery.MatchAll(),
	}
}

// demote turns an exact info into the equivalent prefix/suffix form.
func (i Info) demote() Info {
	if !i.hasExact {
		return i
	}
	return Info{
		prefix: i.exact,
		suffix: i.exact.WithOrder(affix.Reverse),
		match:  gramquery.MatchAll(),
	}
}

// AndGrams returns the query "the text contains every gram of at least one
// string of s". It is MatchAll when s is empty or holds a string too short
// to have a gram, since such a string constrains nothing.
func AndGrams(s affix.Set, gramLen int) *gramquery.Query {
	if s.Len() == 0 || s.MinLen() < gramLen {
		return gramquery.MatchAll()
	}
	terms := make([]*gramquery.Query, 0, s.Len())
	for str := range s.All {
		grams := gram.Split(str, gramLen)
		leaves := make([]*gramquery.Query, len(grams))
		for j, g := range grams {
			leaves[j] = gramquery.Leaf(g)
		}
		terms = append(terms, gramquery.And(leaves...))
	}
	return gramquery.Or(terms...)
}
