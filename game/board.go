package game

import (
	"sort"

	"github.com/bcspragu/namesbench"
)

type posSet map[int]struct{}

func newPosSet(ps []int) posSet {
	s := make(posSet, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

func (s posSet) has(p int) bool {
	_, ok := s[p]
	return ok
}

func (s posSet) sorted() []int {
	out := make([]int, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// boardState is the mutable view over a fixed team assignment. The remaining
// sets only shrink and revealed only grows.
type boardState struct {
	board *namesbench.Board

	friendly posSet
	opponent posSet

	remainingFriendly posSet
	remainingOpponent posSet
	revealed          posSet
}

func newBoardState(b *namesbench.Board) *boardState {
	friendly := b.Positions(namesbench.Friendly)
	opponent := b.Positions(namesbench.Opponent)
	return &boardState{
		board:             b,
		friendly:          newPosSet(friendly),
		opponent:          newPosSet(opponent),
		remainingFriendly: newPosSet(friendly),
		remainingOpponent: newPosSet(opponent),
		revealed:          make(posSet),
	}
}

func (bs *boardState) revealFriendly(p int) {
	delete(bs.remainingFriendly, p)
	bs.revealed[p] = struct{}{}
}

func (bs *boardState) revealOpponent(p int) {
	delete(bs.remainingOpponent, p)
	bs.revealed[p] = struct{}{}
}

// revealedOf returns the positions of the given set that are no longer
// remaining.
func revealedOf(all, remaining posSet) []int {
	out := []int{}
	for p := range all {
		if !remaining.has(p) {
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}
