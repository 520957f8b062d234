package namesbench

func (r *Run) Clone() *Run {
	rc := *r
	return &rc
}

func (g *Game) Clone() *Game {
	gc := *g
	if g.Summary != nil {
		gc.Summary = g.Summary.Clone()
	}
	return &gc
}

func (s *Summary) Clone() *Summary {
	sc := *s
	return &sc
}

func (r *Round) Clone() *Round {
	return &Round{
		Number:          r.Number,
		Clue:            r.Clue,
		Count:           r.Count,
		Guesses:         cloneInts(r.Guesses),
		IntendedTargets: cloneInts(r.IntendedTargets),
		Correct:         cloneInts(r.Correct),
		Wrong:           cloneInts(r.Wrong),
	}
}

// cloneInts copies a list, always returning a non-nil slice so that records
// serialize as [] instead of null.
func cloneInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}
