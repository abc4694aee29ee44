// Package gramindex is an inverted index from folded grams to the documents
// containing them.
//
// It answers gram queries (package gramquery) and query strings in the
// syntax produced by package serializer. An unconstrained query returns
// every document. Results are document ordinals in ascending order.
package gramindex

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"gramsift/internal/corpus"
	"gramsift/internal/gramquery"
	"gramsift/internal/serializer"
)

// Index is an immutable gram index. It is safe for concurrent use.
type Index struct {
	id       uuid.UUID
	instance uuid.UUID
	builtAt  time.Time
	gramLen  int
	docs     []corpus.Document
	postings map[string][]uint64
}

// ID identifies this build of the index.
func (ix *Index) ID() uuid.UUID { return ix.id }

// Instance returns the ID of the gramsift home that wrote the index file,
// or uuid.Nil for an index that was never written.
func (ix *Index) Instance() uuid.UUID { return ix.instance }

// BuiltAt returns when the index was built.
func (ix *Index) BuiltAt() time.Time { return ix.builtAt }

// GramLength returns the gram length the index was built with.
func (ix *Index) GramLength() int { return ix.gramLen }

// Len returns the number of documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Grams returns the number of distinct grams.
func (ix *Index) Grams() int { return len(ix.postings) }

// Doc returns the document with the given ordinal.
func (ix *Index) Doc(ord uint64) corpus.Document { return ix.docs[ord] }

// Docs iterates over all documents in ordinal order.
func (ix *Index) Docs(yield func(uint64, corpus.Document) bool) {
	for i, d := range ix.docs {
		if !yield(uint64(i), d) {
			return
		}
	}
}

// Postings returns the ordinals of the documents containing gram.
func (ix *Index) Postings(gram string) []uint64 {
	return slices.Clone(ix.postings[gram])
}

// GramList returns every indexed gram, sorted.
func (ix *Index) GramList() []string {
	return slices.Sorted(maps.Keys(ix.postings))
}

// Search returns the ordinals of the documents satisfying q.
func (ix *Index) Search(q *gramquery.Query) []uint64 {
	if q.IsMatchAll() {
		return ix.all()
	}
	switch q.Op() {
	case gramquery.OpLeaf:
		return ix.Postings(q.Gram())
	case gramquery.OpAnd:
		children := q.Children()
		if len(children) == 0 {
			return ix.all()
		}
		// Start from the smallest list to keep intersections short.
		lists := make([][]uint64, len(children))
		for i, c := range children {
			lists[i] = ix.Search(c)
		}
		slices.SortFunc(lists, func(a, b []uint64) int { return len(a) - len(b) })
		result := lists[0]
		for _, l := range lists[1:] {
			if len(result) == 0 {
				break
			}
			result = intersectPositions(result, l)
		}
		return result
	default:
		var result []uint64
		for _, c := range q.Children() {
			result = unionPositions(result, ix.Search(c))
		}
		return result
	}
}

// SearchString parses s in syn and searches for it.
func (ix *Index) SearchString(s string, syn serializer.Syntax) ([]uint64, error) {
	q, err := ParseQuery(s, syn)
	if err != nil {
		return nil, err
	}
	return ix.Search(q), nil
}

func (ix *Index) all() []uint64 {
	out := make([]uint64, len(ix.docs))
	for i := range out {
		out[i] = uint64(i)
	}
	return out
}

// intersectPositions returns positions present in both sorted slices.
func intersectPositions(a, b []uint64) []uint64 {
	var result []uint64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			result = append(result, a[i])
			i++
			j++
		} else if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	return result
}

// unionPositions returns all unique positions from both sorted slices, in sorted order.
func unionPositions(a, b []uint64) []uint64 {
	result := make([]uint64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] == b[j] {
			result = append(result, a[i])
			i++
			j++
		} else if a[i] < b[j] {
			result = append(result, a[i])
			i++
		} else {
			result = append(result, b[j])
			j++
		}
	}
	result = append(result, a[i:]...)
	result = append(result, b[j:]...)
	return result
}
