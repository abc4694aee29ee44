package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"testing"

	"gramsift/internal/corpus"
	"gramsift/internal/gramindex"
	"gramsift/internal/serializer"
	"gramsift/internal/translate"
)

var corpusTexts = []string{
	"database backup completed in 42s",
	"Physics lecture at UCI",
	"metrics and analytics dashboard",
	"dataPQR export finished",
	"datbcd checksum",
	"abc+ and more abcabc",
	"ERROR: connection refused",
	"error: disk full",
	"user=alice action=login",
	"user=bob action=logout",
	"KELVIN 300K",
	"",
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	b := gramindex.NewBuilder(translate.DefaultGramLength)
	for _, d := range corpus.FromStrings("test", corpusTexts...) {
		b.Add(d)
	}
	tr, err := translate.New(translate.DefaultConfig(), serializer.DefaultSyntax(), nil)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(b.Build(), tr, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// fullScan is the reference: the regex run over every document.
func fullScan(t *testing.T, pattern string, ci bool) []uint64 {
	t.Helper()
	if ci {
		pattern = "(?i)" + pattern
	}
	re := regexp.MustCompile(pattern)
	var out []uint64
	for i, text := range corpusTexts {
		if re.MatchString(text) {
			out = append(out, uint64(i))
		}
	}
	return out
}

func TestSearchMatchesFullScan(t *testing.T) {
	e := newEngine(t)
	patterns := []string{
		"", "abc", "abcd", "uci|ics", "data*(bcd|pqr)", "abc+", "abc+pqr+",
		"error", "^error", `\d+s`, "user=(alice|bob)", "action=log(in|out)",
		"dis[kc] full", "(?s).*", "kelvin", "300k", "x^", `\bdisk\b`,
		"(abc){2}", "connection|checksum", "[a-z]+=[a-z]+",
	}
	for _, p := range patterns {
		for _, ci := range []bool{false, true} {
			name := p
			if ci {
				name += "/ci"
			}
			t.Run(name, func(t *testing.T) {
				seq, stats := e.Search(context.Background(), Request{Pattern: p, CaseInsensitive: ci})
				hits, err := Collect(seq, 0)
				if err != nil {
					t.Fatalf("Search: %v", err)
				}
				var got []uint64
				for _, h := range hits {
					got = append(got, h.Ord)
				}
				if want := fullScan(t, p, ci); !slices.Equal(got, want) {
					t.Errorf("hits = %v, full scan = %v (candidates %d)", got, want, stats.Candidates)
				}
				if stats.Verified != len(hits) || stats.Candidates < len(hits) {
					t.Errorf("stats = %+v with %d hits", stats, len(hits))
				}
				if stats.Documents != len(corpusTexts) {
					t.Errorf("Documents = %d", stats.Documents)
				}
			})
		}
	}
}

func TestSearchKnownHits(t *testing.T) {
	e := newEngine(t)
	tests := []struct {
		pattern string
		ci      bool
		want    []uint64
	}{
		{"^error", true, []uint64{6, 7}},
		{"^error", false, []uint64{7}},
		{`\d+s`, false, []uint64{0}},
		{"300k", true, []uint64{10}},
		{"300k", false, nil},
		{"uci|ics", false, []uint64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.pattern, tt.ci), func(t *testing.T) {
			seq, _ := e.Search(context.Background(), Request{Pattern: tt.pattern, CaseInsensitive: tt.ci})
			hits, err := Collect(seq, 0)
			if err != nil {
				t.Fatal(err)
			}
			var got []uint64
			for _, h := range hits {
				got = append(got, h.Ord)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("hits = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchNarrowsCandidates(t *testing.T) {
	e := newEngine(t)
	seq, stats := e.Search(context.Background(), Request{Pattern: "data*(bcd|pqr)", CaseInsensitive: true})
	hits, err := Collect(seq, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}
	if stats.Candidates != 2 || stats.Fallback {
		t.Errorf("stats = %+v, want 2 candidates without fallback", stats)
	}
}

func TestSearchLimit(t *testing.T) {
	e := newEngine(t)
	seq, stats := e.Search(context.Background(), Request{Pattern: "a", Limit: 2})
	hits, err := Collect(seq, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 || stats.Verified != 2 {
		t.Errorf("got %d hits, stats %+v", len(hits), stats)
	}
	if stats.Examined >= stats.Candidates {
		t.Errorf("limit did not stop pulling: %+v", stats)
	}
}

func TestSearchInvalidPattern(t *testing.T) {
	e := newEngine(t)
	seq, stats := e.Search(context.Background(), Request{Pattern: "a(b"})
	_, err := Collect(seq, 0)
	if err == nil {
		t.Fatal("expected compile error")
	}
	if stats.Candidates != 0 {
		t.Errorf("candidates read before the pattern compiled: %+v", stats)
	}
}

func TestSearchCanceled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	seq, _ := e.Search(ctx, Request{Pattern: "a"})
	if _, err := Collect(seq, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPlan(t *testing.T) {
	e := newEngine(t)

	p, err := e.Plan(Request{Pattern: "uci|ics"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Translation.String != "ics OR uci" || p.Candidates != 2 || p.Reason != "" {
		t.Errorf("Plan = %+v", p)
	}
	if p.Selectivity() <= 0.5 {
		t.Errorf("Selectivity = %v", p.Selectivity())
	}

	p, err = e.Plan(Request{Pattern: "a(b"})
	if err != nil {
		t.Fatal(err)
	}
	if !p.Translation.Fallback || p.Candidates != len(corpusTexts) || !strings.Contains(p.Reason, "a(b") {
		t.Errorf("fallback Plan = %+v", p)
	}
}

func TestNewEngineGramLengthMismatch(t *testing.T) {
	ix := gramindex.NewBuilder(2).Build()
	tr, err := translate.New(translate.DefaultConfig(), serializer.DefaultSyntax(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(ix, tr, nil); !errors.Is(err, ErrGramLengthMismatch) {
		t.Errorf("NewEngine = %v, want ErrGramLengthMismatch", err)
	}
}
