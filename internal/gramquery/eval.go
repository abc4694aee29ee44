package gramquery

// Eval evaluates q against a document's gram set. has reports whether the
// document contains a gram. Or() and And() are true.
func Eval(q *Query, has func(gram string) bool) bool {
	switch q.op {
	case OpLeaf:
		return has(q.gram)
	case OpAnd:
		for _, c := range q.sub {
			if !Eval(c, has) {
				return false
			}
		}
		return true
	case OpOr:
		if len(q.sub) == 0 {
			return true
		}
		for _, c := range q.sub {
			if Eval(c, has) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// EvalSet evaluates q against a set of grams.
func EvalSet(q *Query, grams map[string]struct{}) bool {
	return Eval(q, func(g string) bool {
		_, ok := grams[g]
		return ok
	})
}
