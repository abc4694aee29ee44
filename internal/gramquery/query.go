// Package gramquery implements the boolean query over grams that a regular
// expression is translated into.
//
// A Query is an immutable tree of Leaf, And and Or nodes. The constructors
// canonicalize as they build: same-operator children are flattened,
// duplicates removed, children sorted by Compare and single children
// unwrapped, so two structurally equivalent queries are Equal no matter
// what order they were assembled in.
//
// Or with no children is not "false". It is the sentinel for "no usable
// constraint": the query matches every document. And with no children is
// the neutral conjunction and is also always satisfied. An Or that has any
// always-satisfied child collapses to Or().
package gramquery

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Op identifies the kind of a Query node.
type Op uint8

const (
	OpLeaf Op = iota
	OpAnd
	OpOr
)

func (o Op) String() string {
	switch o {
	case OpLeaf:
		return "leaf"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "op(" + strconv.Itoa(int(o)) + ")"
	}
}

// Query is a node of a gram boolean query. The zero value is not valid;
// use the constructors.
type Query struct {
	op   Op
	gram string
	sub  []*Query
}

var (
	matchAll = &Query{op: OpOr}
	neutral  = &Query{op: OpAnd}
)

// Leaf returns a query satisfied by documents containing gram.
func Leaf(gram string) *Query {
	return &Query{op: OpLeaf, gram: gram}
}

// MatchAll returns Or(), the "no usable constraint" query.
func MatchAll() *Query { return matchAll }

// Neutral returns And(), the neutral element of conjunction.
func Neutral() *Query { return neutral }

// And returns the canonical conjunction of qs. Always-satisfied children
// are dropped; a conjunction left with nothing is Neutral.
func And(qs ...*Query) *Query {
	var flat []*Query
	for _, q := range qs {
		switch {
		case q.IsMatchAll():
		case q.op == OpAnd:
			flat = append(flat, q.sub...)
		default:
			flat = append(flat, q)
		}
	}
	flat = absorb(sortDedupe(flat), func(kept, c *Query) bool { return implies(kept, c) })
	switch len(flat) {
	case 0:
		return neutral
	case 1:
		return flat[0]
	}
	return &Query{op: OpAnd, sub: flat}
}

// Or returns the canonical disjunction of qs. If any child is always
// satisfied, or there are no children, the result is MatchAll.
func Or(qs ...*Query) *Query {
	var flat []*Query
	for _, q := range qs {
		switch {
		case q.IsMatchAll():
			return matchAll
		case q.op == OpOr:
			flat = append(flat, q.sub...)
		default:
			flat = append(flat, q)
		}
	}
	flat = absorb(sortDedupe(flat), func(kept, c *Query) bool { return implies(c, kept) })
	switch len(flat) {
	case 0:
		return matchAll
	case 1:
		return flat[0]
	}
	return &Query{op: OpOr, sub: flat}
}

func sortDedupe(qs []*Query) []*Query {
	slices.SortFunc(qs, Compare)
	return slices.CompactFunc(qs, Equal)
}

// absorb drops every child made redundant by another kept child.
// A child already dropped cannot absorb another, so of two mutually
// redundant children exactly one survives.
func absorb(qs []*Query, redundant func(kept, c *Query) bool) []*Query {
	if len(qs) < 2 {
		return qs
	}
	dropped := make([]bool, len(qs))
	for i, c := range qs {
		for j, k := range qs {
			if i == j || dropped[j] {
				continue
			}
			if redundant(k, c) {
				dropped[i] = true
				break
			}
		}
	}
	out := qs[:0:0]
	for i, q := range qs {
		if !dropped[i] {
			out = append(out, q)
		}
	}
	return out
}

// implies reports whether every document satisfying x also satisfies y.
// It is sound but not complete.
func implies(x, y *Query) bool {
	if y.IsMatchAll() {
		return true
	}
	if x.IsMatchAll() {
		return false
	}
	if Equal(x, y) {
		return true
	}
	switch {
	case x.op == OpOr:
		for _, c := range x.sub {
			if !implies(c, y) {
				return false
			}
		}
		return true
	case y.op == OpAnd:
		for _, c := range y.sub {
			if !implies(x, c) {
				return false
			}
		}
		return true
	case y.op == OpOr:
		for _, c := range y.sub {
			if implies(x, c) {
				return true
			}
		}
		return false
	case x.op == OpAnd:
		for _, c := range x.sub {
			if implies(c, y) {
				return true
			}
		}
		return false
	}
	return false
}

// Op returns the node kind.
func (q *Query) Op() Op { return q.op }

// Gram returns the gram of a leaf, or "" for compound nodes.
func (q *Query) Gram() string { return q.gram }

// Children returns a copy of the children of a compound node.
func (q *Query) Children() []*Query { return slices.Clone(q.sub) }

// IsMatchAll reports whether q is always satisfied: Or() or And().
func (q *Query) IsMatchAll() bool {
	return q.op != OpLeaf && len(q.sub) == 0
}

// Compare is a total order on queries: leaves before conjunctions before
// disjunctions, leaves by gram, compound nodes by their children
// lexicographically and then by arity.
func Compare(a, b *Query) int {
	if a.op != b.op {
		if a.op < b.op {
			return -1
		}
		return 1
	}
	if a.op == OpLeaf {
		return strings.Compare(a.gram, b.gram)
	}
	for i := range min(len(a.sub), len(b.sub)) {
		if c := Compare(a.sub[i], b.sub[i]); c != 0 {
			return c
		}
	}
	return len(a.sub) - len(b.sub)
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b *Query) bool {
	return Compare(a, b) == 0
}

// Size returns the number of nodes in q.
func Size(q *Query) int {
	n := 1
	for _, c := range q.sub {
		n += Size(c)
	}
	return n
}

// Depth returns the height of q; a leaf has depth 1.
func Depth(q *Query) int {
	d := 0
	for _, c := range q.sub {
		d = max(d, Depth(c))
	}
	return d + 1
}

// Grams returns the distinct leaf grams of q, sorted.
func Grams(q *Query) []string {
	var out []string
	var walk func(*Query)
	walk = func(q *Query) {
		if q.op == OpLeaf {
			out = append(out, q.gram)
			return
		}
		for _, c := range q.sub {
			walk(c)
		}
	}
	walk(q)
	slices.Sort(out)
	return slices.Compact(out)
}

// String renders q as AND(...)/OR(...) with quoted grams.
func (q *Query) String() string {
	var b strings.Builder
	q.writeTo(&b)
	return b.String()
}

func (q *Query) writeTo(b *strings.Builder) {
	if q.op == OpLeaf {
		b.WriteString(strconv.Quote(q.gram))
		return
	}
	if q.op == OpAnd {
		b.WriteString("AND(")
	} else {
		b.WriteString("OR(")
	}
	for i, c := range q.sub {
		if i > 0 {
			b.WriteString(", ")
		}
		c.writeTo(b)
	}
	b.WriteByte(')')
}

type jsonQuery struct {
	Op       string   `json:"op"`
	Gram     string   `json:"gram,omitempty"`
	Children []*Query `json:"children,omitempty"`
}

// MarshalJSON encodes q as {"op": ..., "gram": ..., "children": [...]}.
func (q *Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonQuery{Op: q.op.String(), Gram: q.gram, Children: q.sub})
}
