// Package serializer renders a gram query in the boolean query syntax of an
// inverted index.
//
// Leaf grams are escaped and case folded. Nested compound nodes are
// parenthesized; the root is not. Both Or() and And() render as the
// syntax's match-all query, which is how "no usable constraint" reaches
// the index.
package serializer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gramsift/internal/gram"
	"gramsift/internal/gramquery"
)

// DefaultReserved is the reserved character set of the Lucene classic query
// parser, plus whitespace.
const DefaultReserved = "\\+-!():^[]\"{}~*?|&/ \t\r\n"

var ErrInvalidSyntax = errors.New("invalid query syntax")

// Syntax describes the target query language.
type Syntax struct {
	Field    string // optional; prepended to each gram as "field:"
	And      string // conjunction keyword including surrounding spaces
	Or       string // disjunction keyword including surrounding spaces
	MatchAll string // query that matches every document
	Reserved string // runes that must be escaped inside a gram
	Escape   rune   // escape rune, itself reserved
}

// DefaultSyntax returns Lucene classic syntax with no field prefix.
func DefaultSyntax() Syntax {
	return Syntax{
		And:      " AND ",
		Or:       " OR ",
		MatchAll: "*:*",
		Reserved: DefaultReserved,
		Escape:   '\\',
	}
}

// Validate checks that the syntax can represent every query unambiguously.
func (s Syntax) Validate() error {
	if strings.TrimSpace(s.And) == "" || strings.TrimSpace(s.Or) == "" {
		return fmt.Errorf("%w: conjunction and disjunction keywords must be non-empty", ErrInvalidSyntax)
	}
	if s.And == s.Or {
		return fmt.Errorf("%w: conjunction and disjunction keywords are both %q", ErrInvalidSyntax, s.And)
	}
	for _, kw := range []string{s.And, s.Or} {
		if !padded(kw) {
			return fmt.Errorf("%w: keyword %q must start and end with whitespace", ErrInvalidSyntax, kw)
		}
		if strings.ContainsAny(strings.TrimSpace(kw), "() \t\r\n") {
			return fmt.Errorf("%w: keyword %q must be a single word", ErrInvalidSyntax, kw)
		}
	}
	if s.MatchAll == "" || strings.ContainsAny(s.MatchAll, "() \t\r\n") {
		return fmt.Errorf("%w: match-all query must be a single non-empty word", ErrInvalidSyntax)
	}
	if s.Field != "" && !strings.ContainsRune(s.Reserved, ':') {
		return fmt.Errorf("%w: ':' must be reserved when a field is set", ErrInvalidSyntax)
	}
	if !strings.ContainsRune(s.Reserved, s.Escape) {
		return fmt.Errorf("%w: escape rune %q is not reserved", ErrInvalidSyntax, s.Escape)
	}
	for _, r := range "() \t" {
		if !strings.ContainsRune(s.Reserved, r) {
			return fmt.Errorf("%w: %q must be reserved", ErrInvalidSyntax, r)
		}
	}
	return nil
}

func padded(kw string) bool {
	return kw != "" && unicode.IsSpace(rune(kw[0])) && unicode.IsSpace(rune(kw[len(kw)-1]))
}

// Escape prefixes every reserved rune of text with the escape rune.
// The escape rune is handled in the same single pass, so an escape that
// is already present is never escaped twice.
func Escape(text string, syn Syntax) string {
	if !strings.ContainsAny(text, syn.Reserved) && !strings.ContainsRune(text, syn.Escape) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 4)
	for _, r := range text {
		if r == syn.Escape || strings.ContainsRune(syn.Reserved, r) {
			b.WriteRune(syn.Escape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Serialize renders q in syn.
func Serialize(q *gramquery.Query, syn Syntax) string {
	if q.IsMatchAll() {
		return syn.MatchAll
	}
	var b strings.Builder
	write(&b, q, syn, true)
	return b.String()
}

// escapeLeaf escapes text and, when the result would read as a keyword or
// as the match-all query, also escapes its first rune.
func escapeLeaf(text string, syn Syntax) string {
	esc := Escape(text, syn)
	if esc == strings.TrimSpace(syn.And) || esc == strings.TrimSpace(syn.Or) || esc == syn.MatchAll {
		return string(syn.Escape) + esc
	}
	return esc
}

func write(b *strings.Builder, q *gramquery.Query, syn Syntax, root bool) {
	if q.IsMatchAll() {
		b.WriteString(syn.MatchAll)
		return
	}
	if q.Op() == gramquery.OpLeaf {
		if syn.Field != "" {
			b.WriteString(syn.Field)
			b.WriteByte(':')
		}
		b.WriteString(escapeLeaf(gram.FoldString(q.Gram()), syn))
		return
	}

	sep := syn.And
	if q.Op() == gramquery.OpOr {
		sep = syn.Or
	}
	if !root {
		b.WriteByte('(')
	}
	for i, c := range q.Children() {
		if i > 0 {
			b.WriteString(sep)
		}
		write(b, c, syn, false)
	}
	if !root {
		b.WriteByte(')')
	}
}
