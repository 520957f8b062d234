// Package game tracks a single benchmark game: which positions are left, what
// each round revealed, and the running score.
package game

import (
	"errors"
	"fmt"

	"github.com/bcspragu/namesbench"
)

var (
	ErrRoundNotStarted = errors.New("game: ApplyRound called without NextRound")
	ErrGameOver        = errors.New("game: game is already complete")
)

// Game is the state machine for one game. It is either in progress or
// complete, and becomes complete exactly when the last friendly position is
// revealed. There's no round limit in here, a game where the Operative never
// finds the remaining friendly positions goes on forever unless the caller
// stops it.
//
// A Game isn't safe for concurrent use, each game should be owned by a single
// goroutine.
type Game struct {
	bs *boardState

	round   int
	history []*namesbench.Round

	// correctTotal is the number of friendly positions revealed.
	correctTotal int
	// opponentHits counts every wrong guess, including guesses of positions
	// that aren't on the board.
	opponentHits int
}

// New starts a game on the given board.
func New(b *namesbench.Board) (*Game, error) {
	if b == nil || b.Size() == 0 {
		return nil, fmt.Errorf("%w: board has no positions", namesbench.ErrInvalidConfig)
	}
	for i, t := range b.Teams {
		if t != namesbench.Friendly && t != namesbench.Opponent {
			return nil, fmt.Errorf("%w: position %d has no team", namesbench.ErrInvalidConfig, i+1)
		}
	}

	return &Game{bs: newBoardState(namesbench.CloneBoard(b))}, nil
}

// NextRound starts a new round and returns its number, starting at 1.
func (g *Game) NextRound() int {
	g.round++
	return g.round
}

// Round returns the current round number, zero if no round has been started.
func (g *Game) Round() int {
	return g.round
}

// ApplyRound resolves the guesses for the current round's clue and records the
// result. Only clue.Count guesses are considered, see resolve for the rules.
// The only errors are from calling it out of order.
func (g *Game) ApplyRound(clue *namesbench.Clue, guesses []int) (*namesbench.Round, error) {
	if g.IsComplete() {
		return nil, ErrGameOver
	}
	if g.round == len(g.history) {
		return nil, ErrRoundNotStarted
	}

	r := g.resolve(clue, guesses)
	g.history = append(g.history, r)
	return r.Clone(), nil
}

// IsComplete returns true once every friendly position has been revealed.
func (g *Game) IsComplete() bool {
	return len(g.bs.remainingFriendly) == 0
}

// Score is the net number of correct guesses per round played:
//
//	(correct - wrong) / rounds
//
// A game that hasn't played any rounds scores zero.
func (g *Game) Score() float64 {
	if len(g.history) == 0 {
		return 0.0
	}
	return float64(g.correctTotal-g.opponentHits) / float64(len(g.history))
}

// CorrectTotal is the number of friendly positions found so far.
func (g *Game) CorrectTotal() int { return g.correctTotal }

// OpponentHits is the number of wrong guesses so far, off-board ones included.
func (g *Game) OpponentHits() int { return g.opponentHits }

// History returns a copy of every round played so far, in order.
func (g *Game) History() []*namesbench.Round {
	out := make([]*namesbench.Round, len(g.history))
	for i, r := range g.history {
		out[i] = r.Clone()
	}
	return out
}

// Remaining returns the friendly positions that haven't been found yet.
func (g *Game) Remaining() []int {
	return g.bs.remainingFriendly.sorted()
}

// RemainingOpponent returns the opponent positions that haven't been guessed.
func (g *Game) RemainingOpponent() []int {
	return g.bs.remainingOpponent.sorted()
}

// Revealed returns every position that has been guessed and resolved.
func (g *Game) Revealed() []int {
	return g.bs.revealed.sorted()
}

// RevealedFriendly returns the friendly positions found so far, sorted.
func (g *Game) RevealedFriendly() []int {
	return revealedOf(g.bs.friendly, g.bs.remainingFriendly)
}

// RevealedOpponent returns the opponent positions guessed so far, sorted.
func (g *Game) RevealedOpponent() []int {
	return revealedOf(g.bs.opponent, g.bs.remainingOpponent)
}

// FriendlyTotal is the number of friendly positions on the board.
func (g *Game) FriendlyTotal() int { return len(g.bs.friendly) }

// OpponentTotal is the number of opponent positions on the board.
func (g *Game) OpponentTotal() int { return len(g.bs.opponent) }

// Summary returns the scoring summary for the game so far. The image fields
// are left for the caller to fill in.
func (g *Game) Summary() *namesbench.Summary {
	return &namesbench.Summary{
		Score:        g.Score(),
		Rounds:       len(g.history),
		CorrectTotal: g.correctTotal,
		OpponentHits: g.opponentHits,
	}
}
