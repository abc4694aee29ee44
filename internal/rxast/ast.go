// Package rxast defines the immutable regular expression tree that the gram
// translator analyzes, and the single conversion from regexp/syntax into it.
//
// The tree is a closed set of node types. Nothing outside this package can
// add a variant, so a type switch over Node is exhaustive by construction.
// Nodes are never mutated after conversion.
package rxast

import (
	"fmt"
	"regexp/syntax"
	"strconv"
	"strings"
)

// Node is the interface for all regex tree nodes.
// The marker method prevents external types from implementing Node.
type Node interface {
	node()
	// String returns a regex-like rendering of the node.
	String() string
}

// Literal matches a fixed rune sequence.
type Literal struct {
	Runes []rune
}

// CharClass matches one rune from a set of inclusive ranges.
// Ranges holds lo/hi pairs: [lo0, hi0, lo1, hi1, ...].
type CharClass struct {
	Ranges []rune
}

// Concat matches its subexpressions in sequence.
type Concat struct {
	Subs []Node
}

// Alternate matches any one of its subexpressions.
type Alternate struct {
	Subs []Node
}

// Star matches zero or more repetitions of Sub.
type Star struct{ Sub Node }

// Plus matches one or more repetitions of Sub.
type Plus struct{ Sub Node }

// Quest matches zero or one occurrence of Sub.
type Quest struct{ Sub Node }

// Repeat matches between Min and Max repetitions of Sub.
// Max == -1 means unbounded.
type Repeat struct {
	Sub      Node
	Min, Max int
}

// Capture is a capturing group. Grouping does not change what is matched.
type Capture struct {
	Sub  Node
	Name string
}

// Zero-width and single-character nodes.
type (
	AnyChar        struct{}
	AnyCharNotNL   struct{}
	BeginText      struct{}
	EndText        struct{}
	BeginLine      struct{}
	EndLine        struct{}
	WordBoundary   struct{}
	NoWordBoundary struct{}
	EmptyMatch     struct{}
	NoMatch        struct{}
)

func (Literal) node()        {}
func (CharClass) node()      {}
func (Concat) node()         {}
func (Alternate) node()      {}
func (Star) node()           {}
func (Plus) node()           {}
func (Quest) node()          {}
func (Repeat) node()         {}
func (Capture) node()        {}
func (AnyChar) node()        {}
func (AnyCharNotNL) node()   {}
func (BeginText) node()      {}
func (EndText) node()        {}
func (BeginLine) node()      {}
func (EndLine) node()        {}
func (WordBoundary) node()   {}
func (NoWordBoundary) node() {}
func (EmptyMatch) node()     {}
func (NoMatch) node()        {}

func (l *Literal) String() string {
	var b strings.Builder
	for _, r := range l.Runes {
		b.WriteString(quoteRune(r))
	}
	return b.String()
}

func (c *CharClass) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i+1 < len(c.Ranges); i += 2 {
		lo, hi := c.Ranges[i], c.Ranges[i+1]
		b.WriteString(quoteRune(lo))
		if hi != lo {
			b.WriteByte('-')
			b.WriteString(quoteRune(hi))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func (c *Concat) String() string {
	parts := make([]string, len(c.Subs))
	for i, s := range c.Subs {
		parts[i] = s.String()
	}
	return "(?:" + strings.Join(parts, "") + ")"
}

func (a *Alternate) String() string {
	parts := make([]string, len(a.Subs))
	for i, s := range a.Subs {
		parts[i] = s.String()
	}
	return "(?:" + strings.Join(parts, "|") + ")"
}

func (s *Star) String() string  { return group(s.Sub) + "*" }
func (p *Plus) String() string  { return group(p.Sub) + "+" }
func (q *Quest) String() string { return group(q.Sub) + "?" }

func (r *Repeat) String() string {
	switch {
	case r.Max == -1:
		return fmt.Sprintf("%s{%d,}", group(r.Sub), r.Min)
	case r.Min == r.Max:
		return fmt.Sprintf("%s{%d}", group(r.Sub), r.Min)
	default:
		return fmt.Sprintf("%s{%d,%d}", group(r.Sub), r.Min, r.Max)
	}
}

func (c *Capture) String() string {
	if c.Name != "" {
		return "(?P<" + c.Name + ">" + c.Sub.String() + ")"
	}
	return "(" + c.Sub.String() + ")"
}

func (AnyChar) String() string        { return `(?s:.)` }
func (AnyCharNotNL) String() string   { return `.` }
func (BeginText) String() string      { return `\A` }
func (EndText) String() string        { return `\z` }
func (BeginLine) String() string      { return `(?m:^)` }
func (EndLine) String() string        { return `(?m:$)` }
func (WordBoundary) String() string   { return `\b` }
func (NoWordBoundary) String() string { return `\B` }
func (EmptyMatch) String() string     { return `(?:)` }
func (NoMatch) String() string        { return `[^\x00-\x{10FFFF}]` }

// group wraps multi-rune operands so a postfix operator applies to all of them.
func group(n Node) string {
	if l, ok := n.(*Literal); ok && len(l.Runes) == 1 {
		return l.String()
	}
	switch n.(type) {
	case *CharClass, *Capture, AnyChar, AnyCharNotNL:
		return n.String()
	}
	return "(?:" + n.String() + ")"
}

func quoteRune(r rune) string {
	if r < 0x80 && strings.ContainsRune(`\.+*?()|[]{}^$-`, r) {
		return `\` + string(r)
	}
	if strconv.IsPrint(r) {
		return string(r)
	}
	return fmt.Sprintf(`\x{%x}`, r)
}

// ParseError reports a pattern the regex parser rejected.
type ParseError struct {
	Pattern string
	Err     error // underlying *syntax.Error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse regex %q: %v", e.Pattern, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse parses pattern with Perl syntax and converts the simplified tree.
// Simplification rewrites counted repetitions into concatenations of
// optional subexpressions, so Repeat rarely survives into the result.
func Parse(pattern string, caseInsensitive bool) (Node, error) {
	flags := syntax.Perl
	if caseInsensitive {
		flags |= syntax.FoldCase
	}
	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		return nil, &ParseError{Pattern: pattern, Err: err}
	}
	return FromSyntax(re.Simplify()), nil
}
