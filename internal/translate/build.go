package translate

import (
	"gramsift/internal/gram"
	"gramsift/internal/gramquery"
	"gramsift/internal/regexinfo"
)

// Build turns the Info of a whole pattern into a canonical gram query.
//
// With an exact set, the query is an OR over the exact strings of the AND of
// each string's grams. A string shorter than a gram contributes And(), and
// that makes the whole OR unconstrained. Without one, it is the match query
// plus whatever grams the remaining prefix and suffix strings still hold.
//
// The result is in DNF when that fits cfg.MaxClauses branches. An
// unconstrained result is always Or().
func Build(info regexinfo.Info, cfg Config) *gramquery.Query {
	g := cfg.GramLength

	var q *gramquery.Query
	if exact, ok := info.Exact(); ok {
		terms := make([]*gramquery.Query, 0, exact.Len())
		for s := range exact.All {
			if gram.Len(s) < g {
				terms = append(terms, gramquery.Neutral())
				continue
			}
			grams := gram.Split(s, g)
			leaves := make([]*gramquery.Query, len(grams))
			for i, gr := range grams {
				leaves[i] = gramquery.Leaf(gr)
			}
			terms = append(terms, gramquery.And(leaves...))
		}
		q = gramquery.Or(terms...)
	} else {
		q = gramquery.And(
			info.Match(g),
			regexinfo.AndGrams(info.Prefix(), g),
			regexinfo.AndGrams(info.Suffix(), g),
		)
	}

	if q.IsMatchAll() {
		return gramquery.MatchAll()
	}
	return gramquery.Canonical(q, cfg.MaxClauses)
}
