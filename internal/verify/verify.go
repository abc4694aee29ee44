// Package verify runs the original regular expression over candidate
// documents. The gram index only narrows the candidates; a document is a
// hit only if the pattern actually matches its text.
package verify

import (
	"fmt"
	"iter"
	"regexp"

	"gramsift/internal/corpus"
)

// Hit is a document the pattern matched, with the byte span of the
// leftmost match.
type Hit struct {
	Ord   uint64          `json:"ord"`
	Doc   corpus.Document `json:"doc"`
	Start int             `json:"start"`
	End   int             `json:"end"`
}

// Match returns the matched text.
func (h Hit) Match() string {
	return h.Doc.Text[h.Start:h.End]
}

// Candidate is a document produced by the index, with its ordinal.
type Candidate struct {
	Ord uint64
	Doc corpus.Document
}

// Verifier matches one compiled pattern. It is safe for concurrent use.
type Verifier struct {
	pattern string
	re      *regexp.Regexp
}

// New compiles pattern. With caseInsensitive the whole pattern matches
// without regard to case, the same way the translator folds it.
func New(pattern string, caseInsensitive bool) (*Verifier, error) {
	expr := pattern
	if caseInsensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}
	return &Verifier{pattern: pattern, re: re}, nil
}

// Pattern returns the pattern as given to New.
func (v *Verifier) Pattern() string { return v.pattern }

// Match reports whether text contains a match.
func (v *Verifier) Match(text string) bool {
	return v.re.MatchString(text)
}

// Find returns the byte span of the leftmost match, or nil.
func (v *Verifier) Find(text string) []int {
	return v.re.FindStringIndex(text)
}

// Filter yields a hit for every candidate whose text matches. It pulls
// from seq lazily and stops as soon as the consumer stops. Errors from seq
// are passed through.
//
// Most candidates are false positives, so each one is first checked with
// Match; only matching documents pay for locating the span.
func (v *Verifier) Filter(seq iter.Seq2[Candidate, error]) iter.Seq2[Hit, error] {
	return func(yield func(Hit, error) bool) {
		for c, err := range seq {
			if err != nil {
				if !yield(Hit{}, err) {
					return
				}
				continue
			}
			if !v.Match(c.Doc.Text) {
				continue
			}
			loc := v.Find(c.Doc.Text)
			if loc == nil {
				continue
			}
			if !yield(Hit{Ord: c.Ord, Doc: c.Doc, Start: loc[0], End: loc[1]}, nil) {
				return
			}
		}
	}
}
