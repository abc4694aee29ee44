package translate

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"gramsift/internal/gram"
	"gramsift/internal/gramquery"
)

// regexGen builds random patterns over a tiny alphabet so that random
// strings actually match them often.
type regexGen struct {
	rng *rand.Rand
}

var atoms = []string{"a", "b", "c", "ab", "bc", "abc", "cab", "[ab]", "[a-c]", ".", "A", "Bc", "(?i:ab)", "k"}

func (g regexGen) pattern(depth int) string {
	if depth == 0 {
		return atoms[g.rng.IntN(len(atoms))]
	}
	switch g.rng.IntN(10) {
	case 0, 1, 2:
		n := 2 + g.rng.IntN(3)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = g.pattern(depth - 1)
		}
		return strings.Join(parts, "")
	case 3, 4:
		return "(" + g.pattern(depth-1) + "|" + g.pattern(depth-1) + ")"
	case 5:
		return "(?:" + g.pattern(depth-1) + ")*"
	case 6:
		return "(?:" + g.pattern(depth-1) + ")+"
	case 7:
		return "(?:" + g.pattern(depth-1) + ")?"
	case 8:
		lo := g.rng.IntN(3)
		hi := lo + g.rng.IntN(3)
		return "(?:" + g.pattern(depth-1) + "){" + itoa(lo) + "," + itoa(hi) + "}"
	default:
		anchors := []string{"^", "$", `\b`, `\B`}
		return anchors[g.rng.IntN(len(anchors))] + g.pattern(depth-1)
	}
}

func itoa(n int) string { return string(rune('0' + n)) }

func (g regexGen) text(maxLen int) string {
	const alphabet = "abcABCk K"
	r := []rune(alphabet)
	n := g.rng.IntN(maxLen + 1)
	var b strings.Builder
	for range n {
		b.WriteRune(r[g.rng.IntN(len(r))])
	}
	return b.String()
}

// checkSoundness asserts that every string the regex finds a match in
// satisfies the translated query.
func checkSoundness(t *testing.T, cfg Config, seed uint64, patterns, texts int) {
	t.Helper()
	tr := newTranslator(t, cfg)
	g := regexGen{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}

	for range patterns {
		pattern := g.pattern(3)
		ci := g.rng.IntN(4) == 0
		res, err := tr.Translate(pattern, ci)
		if err != nil {
			t.Fatalf("Translate(%q): %v", pattern, err)
		}
		goPattern := pattern
		if ci {
			goPattern = "(?i)" + pattern
		}
		re := regexp.MustCompile(goPattern)

		for range texts {
			s := g.text(14)
			if !re.MatchString(s) {
				continue
			}
			if !gramquery.EvalSet(res.Query, gram.Set(s, cfg.GramLength)) {
				t.Fatalf("unsound: %q (ci=%v) matches %q but query %s rejects it", pattern, ci, s, res.Query)
			}
		}
	}
}

func TestSoundness(t *testing.T) {
	checkSoundness(t, DefaultConfig(), 1, 400, 200)
}

func TestSoundnessGramLengths(t *testing.T) {
	for _, n := range []int{1, 2, 4} {
		cfg := DefaultConfig()
		cfg.GramLength = n
		cfg.MaxExactSize = max(cfg.MaxExactSize, n)
		checkSoundness(t, cfg, uint64(10+n), 150, 150)
	}
}

func TestSoundnessMinimalSets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSetSize = 1
	checkSoundness(t, cfg, 7, 400, 200)

	cfg.MaxClauses = 1
	checkSoundness(t, cfg, 8, 200, 200)
}

func TestSoundnessExactMatchesForSpecificPatterns(t *testing.T) {
	tr := newTranslator(t, Config{GramLength: 3, MaxExactSize: 7, MaxSetSize: 1, MaxClauses: 64})
	for _, tc := range []struct{ pattern, text string }{
		{"uci|ics", "xics"},
		{"uci|ics", "ucix"},
		{"data*(bcd|pqr)", "datpqr"},
		{"data*(bcd|pqr)", "dataaaabcd"},
		{"(abc|abd)(efg|xyz)", "abdxyz"},
	} {
		res, err := tr.Translate(tc.pattern, false)
		if err != nil {
			t.Fatal(err)
		}
		if !gramquery.EvalSet(res.Query, gram.Set(tc.text, 3)) {
			t.Errorf("%q with MaxSetSize=1 rejects %q: %s", tc.pattern, tc.text, res.Query)
		}
	}
}

// A repeated atom must not be treated as occurring exactly once.
func TestSoundnessRepetitionInsideConcat(t *testing.T) {
	tr := newTranslator(t, DefaultConfig())
	for _, tc := range []struct{ pattern, text string }{
		{"abc+d", "abcd"},
		{"abc+d", "abccd"},
		{"abc+d", "abccccd"},
		{"a(?:bc)+d", "abcbcd"},
		{"xy{2,}z", "xyyyz"},
	} {
		res, err := tr.Translate(tc.pattern, false)
		if err != nil {
			t.Fatal(err)
		}
		if !gramquery.EvalSet(res.Query, gram.Set(tc.text, 3)) {
			t.Errorf("%q rejects %q: %s", tc.pattern, tc.text, res.Query)
		}
	}
}

func TestDeterminism(t *testing.T) {
	g := regexGen{rng: rand.New(rand.NewPCG(3, 4))}
	a := newTranslator(t, DefaultConfig())
	b := newTranslator(t, DefaultConfig())
	for range 300 {
		pattern := g.pattern(3)
		ra, err := a.Translate(pattern, false)
		if err != nil {
			t.Fatal(err)
		}
		rb, err := b.Translate(pattern, false)
		if err != nil {
			t.Fatal(err)
		}
		if !gramquery.Equal(ra.Query, rb.Query) || ra.String != rb.String {
			t.Fatalf("%q translated differently: %s vs %s", pattern, ra.Query, rb.Query)
		}
	}
}

func TestBoundedness(t *testing.T) {
	tr := newTranslator(t, DefaultConfig())

	tests := []struct {
		name    string
		pattern string
	}{
		{"alternation chain", strings.Repeat("(abc|bcd|cde|def)", 30)},
		{"nested alternation", strings.Repeat("(x", 40) + strings.Repeat("|yzw)", 40)},
		{"nested concatenation", strings.Repeat("(?:ab(?:", 40) + "c" + strings.Repeat("d)e)", 40)},
		{"classes", strings.Repeat("[a-d][e-h]", 40)},
		{"plus chain", strings.Repeat("ab+c+", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tr.Translate(tt.pattern, false)
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			n := len(tt.pattern)
			if size := gramquery.Size(r.Query); size > 4*n*n {
				t.Errorf("query has %d nodes for a %d byte pattern", size, n)
			}
			if len(r.String) > 64*n*n {
				t.Errorf("serialized query is %d bytes for a %d byte pattern", len(r.String), n)
			}
		})
	}
}
