package gramquery

import "slices"

// DNF (Disjunctive Normal Form) conversion for gram queries.
//
// DNF is an OR of ANDs of leaves: (abc AND bcd) OR (xyz AND yzw).
// Each AND clause is a "branch". Distribution can grow the query
// exponentially, so the conversion gives up once the branch count exceeds
// a caller-supplied bound.

// clause is one branch: a sorted, deduplicated set of grams.
type clause []string

// DNF converts q to disjunctive normal form. Branches that are supersets of
// another branch are absorbed. If at any point more than maxClauses branches
// would be needed, DNF returns q unchanged and false.
func DNF(q *Query, maxClauses int) (*Query, bool) {
	if q.IsMatchAll() {
		return matchAll, true
	}
	branches, ok := toDNFBranches(q, maxClauses)
	if !ok {
		return q, false
	}
	branches = absorbClauses(branches)

	terms := make([]*Query, len(branches))
	for i, c := range branches {
		leaves := make([]*Query, len(c))
		for j, g := range c {
			leaves[j] = Leaf(g)
		}
		terms[i] = And(leaves...)
	}
	return Or(terms...), true
}

// Canonical returns the DNF of q when it fits in maxClauses branches,
// otherwise q itself, which the constructors already keep flattened and
// sorted.
func Canonical(q *Query, maxClauses int) *Query {
	d, _ := DNF(q, maxClauses)
	return d
}

// toDNFBranches converts q to a list of branches.
func toDNFBranches(q *Query, limit int) ([]clause, bool) {
	switch q.op {
	case OpLeaf:
		return []clause{{q.gram}}, true

	case OpAnd:
		// AND: cross-product of all child branches
		result := []clause{{}}
		for _, c := range q.sub {
			cb, ok := toDNFBranches(c, limit)
			if !ok || len(result)*len(cb) > limit {
				return nil, false
			}
			result = combineLists(result, cb)
		}
		return result, true

	case OpOr:
		if len(q.sub) == 0 {
			return []clause{{}}, true
		}
		// OR: concatenate all child branches
		var result []clause
		for _, c := range q.sub {
			cb, ok := toDNFBranches(c, limit)
			if !ok || len(result)+len(cb) > limit {
				return nil, false
			}
			result = append(result, cb...)
		}
		return result, true

	default:
		return nil, false
	}
}

// combineLists combines two lists of branches by merging each pair.
// (A1 OR A2) AND (B1 OR B2) = (A1 AND B1) OR (A1 AND B2) OR (A2 AND B1) OR (A2 AND B2)
func combineLists(a, b []clause) []clause {
	result := make([]clause, 0, len(a)*len(b))
	for _, ca := range a {
		for _, cb := range b {
			result = append(result, mergeClauses(ca, cb))
		}
	}
	return result
}

func mergeClauses(a, b clause) clause {
	m := slices.Concat(a, b)
	slices.Sort(m)
	return slices.Compact(m)
}

// absorbClauses drops duplicate branches and every branch that contains all
// grams of a smaller branch: (a AND b) OR a = a.
func absorbClauses(cs []clause) []clause {
	slices.SortFunc(cs, func(a, b clause) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return slices.Compare(a, b)
	})
	var out []clause
	for _, c := range cs {
		redundant := false
		for _, k := range out {
			if isSubset(k, c) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, c)
		}
	}
	return out
}

// isSubset reports whether every gram of sub is in super. Both are sorted.
func isSubset(sub, super clause) bool {
	i := 0
	for _, g := range super {
		if i < len(sub) && sub[i] == g {
			i++
		}
	}
	return i == len(sub)
}
