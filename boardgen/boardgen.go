// Package boardgen assigns teams to the positions of a board.
package boardgen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/cryptorand"
)

// epsilon keeps float noise (10 * 0.3 == 3.0000000000000004) from rounding up
// to an extra friendly card.
const epsilon = 1e-9

// FriendlyCount is how many of n positions are friendly for the given
// fraction. There is always at least one.
func FriendlyCount(n int, friendlyFraction float64) int {
	c := int(math.Ceil(float64(n)*friendlyFraction - epsilon))
	if c < 1 {
		c = 1
	}
	if c > n {
		c = n
	}
	return c
}

// New partitions positions 1..n into friendly and opponent positions. The same
// n, friendlyFraction and seed for r always produce the same board. If r is
// nil, a non-reproducible source is used.
func New(n int, friendlyFraction float64, r *rand.Rand) (*namesbench.Board, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: board needs at least one position, got %d", namesbench.ErrInvalidConfig, n)
	}
	// Written this way so NaN fails too.
	if !(friendlyFraction > 0 && friendlyFraction <= 1) {
		return nil, fmt.Errorf("%w: friendly fraction must be in (0, 1], got %v", namesbench.ErrInvalidConfig, friendlyFraction)
	}
	if r == nil {
		r = rand.New(cryptorand.NewSource())
	}

	teams := make([]namesbench.Team, n)
	for i := range teams {
		teams[i] = namesbench.Opponent
	}

	// The first FriendlyCount entries of a random permutation are friendly.
	for _, idx := range r.Perm(n)[:FriendlyCount(n, friendlyFraction)] {
		teams[idx] = namesbench.Friendly
	}

	return &namesbench.Board{Teams: teams}, nil
}
