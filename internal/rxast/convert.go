package rxast

import (
	"regexp/syntax"
	"slices"
	"unicode"
)

// FromSyntax converts a regexp/syntax tree into an immutable Node tree.
// It copies everything it keeps, so later changes to re do not leak in.
//
// Case-folded literals are expanded rune by rune: a rune whose simple-fold
// orbit is itself stays in a Literal run, any other rune becomes a
// CharClass over its orbit.
func FromSyntax(re *syntax.Regexp) Node {
	switch re.Op {
	case syntax.OpNoMatch:
		return NoMatch{}
	case syntax.OpEmptyMatch:
		return EmptyMatch{}
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return foldLiteral(re.Rune)
		}
		return &Literal{Runes: slices.Clone(re.Rune)}
	case syntax.OpCharClass:
		if len(re.Rune) == 0 {
			return NoMatch{}
		}
		return &CharClass{Ranges: slices.Clone(re.Rune)}
	case syntax.OpAnyCharNotNL:
		return AnyCharNotNL{}
	case syntax.OpAnyChar:
		return AnyChar{}
	case syntax.OpBeginLine:
		return BeginLine{}
	case syntax.OpEndLine:
		return EndLine{}
	case syntax.OpBeginText:
		return BeginText{}
	case syntax.OpEndText:
		return EndText{}
	case syntax.OpWordBoundary:
		return WordBoundary{}
	case syntax.OpNoWordBoundary:
		return NoWordBoundary{}
	case syntax.OpCapture:
		return &Capture{Sub: FromSyntax(re.Sub[0]), Name: re.Name}
	case syntax.OpStar:
		return &Star{Sub: FromSyntax(re.Sub[0])}
	case syntax.OpPlus:
		return &Plus{Sub: FromSyntax(re.Sub[0])}
	case syntax.OpQuest:
		return &Quest{Sub: FromSyntax(re.Sub[0])}
	case syntax.OpRepeat:
		return &Repeat{Sub: FromSyntax(re.Sub[0]), Min: re.Min, Max: re.Max}
	case syntax.OpConcat:
		return &Concat{Subs: convertAll(re.Sub)}
	case syntax.OpAlternate:
		return &Alternate{Subs: convertAll(re.Sub)}
	default:
		// OpPseudo and anything newer: a class over every rune is a sound
		// over-approximation of a single unknown position.
		return AnyChar{}
	}
}

func convertAll(subs []*syntax.Regexp) []Node {
	out := make([]Node, len(subs))
	for i, s := range subs {
		out[i] = FromSyntax(s)
	}
	return out
}

// foldLiteral expands a case-insensitive literal.
func foldLiteral(runes []rune) Node {
	var parts []Node
	var run []rune
	flush := func() {
		if len(run) > 0 {
			parts = append(parts, &Literal{Runes: run})
			run = nil
		}
	}
	for _, r := range runes {
		orbit := foldOrbit(r)
		if len(orbit) == 1 {
			run = append(run, r)
			continue
		}
		flush()
		ranges := make([]rune, 0, 2*len(orbit))
		for _, f := range orbit {
			ranges = append(ranges, f, f)
		}
		parts = append(parts, &CharClass{Ranges: ranges})
	}
	flush()

	switch len(parts) {
	case 0:
		return EmptyMatch{}
	case 1:
		return parts[0]
	default:
		return &Concat{Subs: parts}
	}
}

// foldOrbit returns r and every rune equivalent to it under simple case
// folding, sorted.
func foldOrbit(r rune) []rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	slices.Sort(orbit)
	return orbit
}

// Walk calls fn for n and every descendant in pre-order.
// If fn returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Children returns the direct subexpressions of n.
func Children(n Node) []Node {
	switch x := n.(type) {
	case *Concat:
		return x.Subs
	case *Alternate:
		return x.Subs
	case *Star:
		return []Node{x.Sub}
	case *Plus:
		return []Node{x.Sub}
	case *Quest:
		return []Node{x.Sub}
	case *Repeat:
		return []Node{x.Sub}
	case *Capture:
		return []Node{x.Sub}
	default:
		return nil
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	c := 0
	Walk(n, func(Node) bool {
		c++
		return true
	})
	return c
}
