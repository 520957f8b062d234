package game

import "github.com/bcspragu/namesbench"

// resolve scores one batch of guesses against the board, mutating the board
// state and the game's counters. Guesses come from a model, so nothing in here
// rejects a guess: duplicates, guesses past the budget and positions that
// aren't on the board are all absorbed.
func (g *Game) resolve(clue *namesbench.Clue, guesses []int) *namesbench.Round {
	applied := truncate(dedupe(guesses), clue.Count)

	correct, wrong := []int{}, []int{}
	for _, guess := range applied {
		// Guessing something that's already been revealed is free.
		if g.bs.revealed.has(guess) {
			continue
		}

		switch g.bs.board.Team(guess) {
		case namesbench.Friendly:
			if g.bs.remainingFriendly.has(guess) {
				g.bs.revealFriendly(guess)
				g.correctTotal++
			}
			correct = append(correct, guess)
		case namesbench.Opponent:
			g.opponentHits++
			wrong = append(wrong, guess)
			if g.bs.remainingOpponent.has(guess) {
				g.bs.revealOpponent(guess)
			}
		default:
			// Not a position on the board, it still costs a point but there's
			// nothing to reveal.
			g.opponentHits++
			wrong = append(wrong, guess)
		}
	}

	intended := []int{}
	for _, pos := range dedupe(clue.Targets) {
		if g.bs.friendly.has(pos) {
			intended = append(intended, pos)
		}
	}

	return &namesbench.Round{
		Number:          g.round,
		Clue:            clue.Word,
		Count:           clue.Count,
		Guesses:         applied,
		IntendedTargets: intended,
		Correct:         correct,
		Wrong:           wrong,
	}
}

// dedupe removes repeated positions, keeping the first occurrence of each.
func dedupe(ps []int) []int {
	seen := make(map[int]bool)
	out := []int{}
	for _, p := range ps {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func truncate(ps []int, n int) []int {
	if n < 0 {
		n = 0
	}
	if len(ps) > n {
		return ps[:n]
	}
	return ps
}
