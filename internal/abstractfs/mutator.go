package abstractfs

// Remove deletes the operation at index i from w and replays the result on
// a fresh executor. It returns the shrunk Workload and true iff the replay
// succeeds; otherwise the mutation is discarded.
func Remove(w Workload, i int) (Workload, bool) {
	candidate := w.Without(i)
	if Valid(candidate) {
		return candidate, true
	}
	return Workload{}, false
}

// Insert replays w[0:i), appends one Generator-sampled operation
// constrained to pickFrom, then replays w[i:) on the same executor. It
// returns the resulting Workload and true iff both replays and the
// insertion succeed.
func Insert(g *Generator, w Workload, i int, pickFrom map[OperationKind]bool) (Workload, bool) {
	e := NewExecutor()
	if err := e.Replay(w.Prefix(i)); err != nil {
		return Workload{}, false
	}
	applied, sampled := g.appendOne(e, pickFrom)
	if !sampled || !applied {
		return Workload{}, false
	}
	tail := Workload{Ops: append([]Operation(nil), w.Ops[i:]...)}
	if err := e.Replay(tail); err != nil {
		return Workload{}, false
	}
	return e.Recording(), true
}

// Append samples and applies one operation at the end of w via Insert.
func Append(g *Generator, w Workload) (Workload, bool) {
	return Insert(g, w, w.Len(), nil)
}

// Mutate picks one primitive edit according to weights and applies it at a
// random index (Remove, Insert) or the tail (Append). It makes a single
// attempt: when the chosen edit fails it returns false without trying
// another index.
func Mutate(g *Generator, w Workload, weights MutationWeights) (Workload, bool) {
	if w.Len() == 0 {
		return Append(g, w)
	}
	switch pickMutationKind(g, weights) {
	case MutateRemove:
		return Remove(w, g.rng.Intn(w.Len()))
	case MutateInsert:
		return Insert(g, w, g.rng.Intn(w.Len()+1), nil)
	default:
		return Append(g, w)
	}
}

func pickMutationKind(g *Generator, weights MutationWeights) MutationKind {
	kinds := []MutationKind{MutateRemove, MutateInsert, MutateAppend}
	total := uint32(0)
	for _, k := range kinds {
		total += weights[k]
	}
	if total == 0 {
		return MutateAppend
	}
	target := uint32(g.rng.Int63n(int64(total)))
	for _, k := range kinds {
		if target < weights[k] {
			return k
		}
		target -= weights[k]
	}
	return MutateAppend
}
