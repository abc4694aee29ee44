package gramquery

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestConstructorsCanonicalize(t *testing.T) {
	a, b, c := Leaf("abc"), Leaf("bcd"), Leaf("cde")

	tests := []struct {
		name string
		got  *Query
		want string
	}{
		{"and sorts", And(c, a, b), `AND("abc", "bcd", "cde")`},
		{"and dedupes", And(a, a, b), `AND("abc", "bcd")`},
		{"and flattens", And(a, And(b, c)), `AND("abc", "bcd", "cde")`},
		{"and unwraps single", And(a), `"abc"`},
		{"and drops neutral", And(a, Neutral()), `"abc"`},
		{"and drops match all", And(a, MatchAll()), `"abc"`},
		{"empty and is neutral", And(), `AND()`},
		{"or sorts", Or(c, a), `OR("abc", "cde")`},
		{"or flattens", Or(a, Or(b, c)), `OR("abc", "bcd", "cde")`},
		{"or with match all collapses", Or(a, MatchAll()), `OR()`},
		{"or with neutral collapses", Or(a, Neutral()), `OR()`},
		{"empty or is match all", Or(), `OR()`},
		{"and absorbs weaker or", And(a, Or(a, b)), `"abc"`},
		{"or absorbs stronger and", Or(a, And(a, b)), `"abc"`},
		{"leaves before compound", Or(And(b, c), a), `OR("abc", AND("bcd", "cde"))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEqualIgnoresBuildOrder(t *testing.T) {
	x := Or(And(Leaf("dat"), Leaf("pqr")), And(Leaf("dat"), Leaf("bcd")))
	y := Or(And(Leaf("bcd"), Leaf("dat")), And(Leaf("pqr"), Leaf("dat")))
	if !Equal(x, y) {
		t.Errorf("%s != %s", x, y)
	}
	if Equal(x, And(Leaf("dat"), Leaf("pqr"))) {
		t.Error("distinct queries compared equal")
	}
}

func TestCompareTotalOrder(t *testing.T) {
	qs := []*Query{
		Or(Leaf("a"), Leaf("b")),
		And(Leaf("a"), Leaf("c")),
		Leaf("b"),
		And(Leaf("a"), Leaf("b")),
		Leaf("a"),
		And(Leaf("a"), Leaf("b"), Leaf("c")),
	}
	slices.SortFunc(qs, Compare)
	var got []string
	for _, q := range qs {
		got = append(got, q.String())
	}
	want := []string{
		`"a"`,
		`"b"`,
		`AND("a", "b")`,
		`AND("a", "b", "c")`,
		`AND("a", "c")`,
		`OR("a", "b")`,
	}
	if !slices.Equal(got, want) {
		t.Errorf("sorted = %q, want %q", got, want)
	}
}

func TestIsMatchAll(t *testing.T) {
	if !MatchAll().IsMatchAll() || !Neutral().IsMatchAll() {
		t.Error("Or() and And() must be match-all")
	}
	if Leaf("abc").IsMatchAll() || And(Leaf("a"), Leaf("b")).IsMatchAll() {
		t.Error("constrained query reported as match-all")
	}
}

func TestEval(t *testing.T) {
	q := Or(And(Leaf("abc"), Leaf("bcd")), Leaf("xyz"))
	tests := []struct {
		grams []string
		want  bool
	}{
		{[]string{"abc", "bcd"}, true},
		{[]string{"abc"}, false},
		{[]string{"xyz"}, true},
		{nil, false},
	}
	for _, tt := range tests {
		set := make(map[string]struct{})
		for _, g := range tt.grams {
			set[g] = struct{}{}
		}
		if got := EvalSet(q, set); got != tt.want {
			t.Errorf("EvalSet(%v) = %v, want %v", tt.grams, got, tt.want)
		}
	}

	if !EvalSet(MatchAll(), nil) || !EvalSet(Neutral(), nil) {
		t.Error("match-all queries must evaluate to true on any document")
	}
}

func TestSizeDepthGrams(t *testing.T) {
	q := Or(And(Leaf("abc"), Leaf("bcd")), Leaf("abc"), Leaf("xyz"))
	// abc absorbs AND(abc, bcd).
	if got := q.String(); got != `OR("abc", "xyz")` {
		t.Fatalf("q = %s", got)
	}
	if Size(q) != 3 {
		t.Errorf("Size = %d, want 3", Size(q))
	}
	if Depth(q) != 2 {
		t.Errorf("Depth = %d, want 2", Depth(q))
	}
	if got := Grams(And(Leaf("b"), Or(Leaf("a"), Leaf("c")), Leaf("d"), Leaf("b"))); !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("Grams = %q", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(And(Leaf("abc"), Leaf("bcd")))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"op":"and","children":[{"op":"leaf","gram":"abc"},{"op":"leaf","gram":"bcd"}]}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
