package regexinfo

import (
	"gramsift/internal/affix"
	"gramsift/internal/gram"
	"gramsift/internal/gramquery"
	"gramsift/internal/rxast"
)

// classScanFactor bounds how many runes of a character class are examined
// before giving up. Folding can merge runes (A-Z with a-z), so a class a
// few times larger than MaxSetSize may still fold into a usable set.
const classScanFactor = 4

// Fold computes the Info of n. Children are folded first. Fold never fails;
// a node it has no rule for folds to "no constraint".
func Fold(n rxast.Node, cfg Config) Info {
	return folder{cfg: cfg}.fold(n)
}

type folder struct {
	cfg Config
}

func (f folder) fold(n rxast.Node) Info {
	switch x := n.(type) {
	case rxast.EmptyMatch, rxast.BeginText, rxast.EndText, rxast.BeginLine,
		rxast.EndLine, rxast.WordBoundary, rxast.NoWordBoundary:
		return exactInfo(affix.New(affix.Forward, ""))

	case rxast.NoMatch:
		return emptyLanguage()

	case *rxast.Literal:
		s := gram.FoldString(string(x.Runes))
		return f.simplify(exactInfo(affix.New(affix.Forward, s)))

	case *rxast.CharClass:
		return f.charClass(x)

	case rxast.AnyChar, rxast.AnyCharNotNL:
		return anyInfo()

	case *rxast.Concat:
		info := exactInfo(affix.New(affix.Forward, ""))
		for _, sub := range x.Subs {
			info = f.concat(info, f.fold(sub))
		}
		return info

	case *rxast.Alternate:
		info := emptyLanguage()
		for _, sub := range x.Subs {
			info = f.alternate(info, f.fold(sub))
		}
		return info

	case *rxast.Star, *rxast.Quest:
		return anyInfo()

	case *rxast.Plus:
		return f.plus(f.fold(x.Sub))

	case *rxast.Repeat:
		switch {
		case x.Min <= 0:
			return anyInfo()
		case x.Min == 1 && x.Max == 1:
			return f.fold(x.Sub)
		default:
			return f.plus(f.fold(x.Sub))
		}

	case *rxast.Capture:
		return f.fold(x.Sub)

	default:
		return anyInfo()
	}
}

func (f folder) charClass(c *rxast.CharClass) Info {
	limit := classScanFactor * f.cfg.MaxSetSize
	total := 0
	for i := 0; i+1 < len(c.Ranges); i += 2 {
		total += int(c.Ranges[i+1]-c.Ranges[i]) + 1
		if total > limit {
			return anyInfo()
		}
	}
	if total == 0 {
		return emptyLanguage()
	}

	strs := make([]string, 0, total)
	for i := 0; i+1 < len(c.Ranges); i += 2 {
		for r := c.Ranges[i]; r <= c.Ranges[i+1]; r++ {
			strs = append(strs, string(gram.Fold(r)))
		}
	}
	set := affix.New(affix.Forward, strs...)
	if set.Len() > f.cfg.MaxSetSize {
		return anyInfo()
	}
	return exactInfo(set)
}

func (f folder) concat(x, y Info) Info {
	if x.EmptyLanguage() || y.EmptyLanguage() {
		return emptyLanguage()
	}
	if x.hasExact && y.hasExact {
		if xy, ok := affix.Cross(x.exact, y.exact, affix.Forward, f.cfg.MaxSetSize); ok {
			return f.simplify(exactInfo(xy))
		}
		x, y = x.demote(), y.demote()
	}

	var out Info
	if x.hasExact {
		p, ok := affix.Cross(x.exact, y.prefix, affix.Forward, f.cfg.MaxSetSize)
		if !ok {
			p = x.exact
		}
		out.prefix = p
	} else {
		out.prefix = x.prefix
	}
	if y.hasExact {
		s, ok := affix.Cross(x.suffix, y.exact, affix.Reverse, f.cfg.MaxSetSize)
		if !ok {
			s = y.exact.WithOrder(affix.Reverse)
		}
		out.suffix = s
	} else {
		out.suffix = y.suffix
	}

	g := f.cfg.GramLength
	out.match = gramquery.And(x.Match(g), y.Match(g))
	if !x.hasExact && !y.hasExact && x.suffix.MinLen()+y.prefix.MinLen() >= g {
		// Grams spanning the boundary between x and y.
		if bridge, ok := affix.Cross(x.suffix, y.prefix, affix.Forward, f.cfg.MaxSetSize); ok {
			out.match = gramquery.And(out.match, AndGrams(bridge, g))
		}
	}
	return f.simplify(out)
}

func (f folder) alternate(x, y Info) Info {
	if x.EmptyLanguage() {
		return y
	}
	if y.EmptyLanguage() {
		return x
	}
	if x.hasExact && y.hasExact {
		return f.simplify(exactInfo(affix.Union(x.exact, y.exact)))
	}
	g := f.cfg.GramLength
	return f.simplify(Info{
		prefix: affix.Union(x.Prefix(), y.Prefix()),
		suffix: affix.Union(x.Suffix(), y.Suffix()),
		match:  gramquery.Or(x.Match(g), y.Match(g)),
	})
}

// plus folds one-or-more repetitions of a subexpression with info child.
// One copy carries every guarantee, but the language is no longer finite,
// so an exact set becomes prefixes and suffixes.
func (f folder) plus(child Info) Info {
	if !child.hasExact || child.EmptyLanguage() {
		return child
	}
	return f.simplify(child.demote())
}

// simplify enforces the caps. An exact set that is too large or holds a
// string that is too long is demoted. Prefix and suffix sets have their
// grams moved into match and are cut back to GramLength-1 runes, shorter
// still if there are more than MaxSetSize of them.
func (f folder) simplify(i Info) Info {
	if i.hasExact {
		if i.exact.Len() <= f.cfg.MaxSetSize && i.exact.MaxLen() <= f.cfg.MaxExactSize {
			return i
		}
		i = i.demote()
	}
	g := f.cfg.GramLength
	return Info{
		prefix: f.simplifySet(i.prefix),
		suffix: f.simplifySet(i.suffix),
		match:  gramquery.And(i.match, AndGrams(i.prefix, g), AndGrams(i.suffix, g)),
	}
}

func (f folder) simplifySet(s affix.Set) affix.Set {
	n := f.cfg.GramLength - 1
	s = affix.Truncate(s, n)
	for s.Len() > f.cfg.MaxSetSize && n > 0 {
		n--
		s = affix.Truncate(s, n)
	}
	return affix.RemoveRedundant(s)
}
