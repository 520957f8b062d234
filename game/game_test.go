package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/boardgen"
	"github.com/google/go-cmp/cmp"
)

// testBoard has friendly positions 1-4 and opponent positions 5-8.
func testBoard() *namesbench.Board {
	f, o := namesbench.Friendly, namesbench.Opponent
	return &namesbench.Board{Teams: []namesbench.Team{f, f, f, f, o, o, o, o}}
}

func newGame(t *testing.T, b *namesbench.Board) *Game {
	t.Helper()
	g, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func play(t *testing.T, g *Game, count int, guesses ...int) *namesbench.Round {
	t.Helper()
	g.NextRound()
	r, err := g.ApplyRound(&namesbench.Clue{Word: "clue", Count: count}, guesses)
	if err != nil {
		t.Fatalf("ApplyRound: %v", err)
	}
	return r
}

func TestCleanSweep(t *testing.T) {
	g := newGame(t, testBoard())

	if g.IsComplete() {
		t.Fatal("new game shouldn't be complete")
	}

	got := play(t, g, 4, 1, 2, 3, 4)
	want := &namesbench.Round{
		Number:          1,
		Clue:            "clue",
		Count:           4,
		Guesses:         []int{1, 2, 3, 4},
		IntendedTargets: []int{},
		Correct:         []int{1, 2, 3, 4},
		Wrong:           []int{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected round (-want +got)\n%s", diff)
	}

	if !g.IsComplete() {
		t.Error("game should be complete once every friendly position is found")
	}
	if len(g.Remaining()) != 0 {
		t.Errorf("Remaining() = %v, want none", g.Remaining())
	}
	if g.CorrectTotal() != 4 || g.OpponentHits() != 0 {
		t.Errorf("got correct=%d hits=%d, want correct=4 hits=0", g.CorrectTotal(), g.OpponentHits())
	}
	if got := g.Score(); got != 4.0 {
		t.Errorf("Score() = %v, want 4.0", got)
	}
}

func TestRoundWithPenalty(t *testing.T) {
	g := newGame(t, testBoard())

	got := play(t, g, 3, 1, 5, 2, 1)
	want := &namesbench.Round{
		Number:          1,
		Clue:            "clue",
		Count:           3,
		Guesses:         []int{1, 5, 2},
		IntendedTargets: []int{},
		Correct:         []int{1, 2},
		Wrong:           []int{5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected round (-want +got)\n%s", diff)
	}

	if g.CorrectTotal() != 2 || g.OpponentHits() != 1 {
		t.Errorf("got correct=%d hits=%d, want correct=2 hits=1", g.CorrectTotal(), g.OpponentHits())
	}
	if diff := cmp.Diff([]int{3, 4}, g.Remaining()); diff != "" {
		t.Errorf("unexpected remaining friendly (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]int{6, 7, 8}, g.RemainingOpponent()); diff != "" {
		t.Errorf("unexpected remaining opponent (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 5}, g.Revealed()); diff != "" {
		t.Errorf("unexpected revealed (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, g.RevealedFriendly()); diff != "" {
		t.Errorf("unexpected revealed friendly (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]int{5}, g.RevealedOpponent()); diff != "" {
		t.Errorf("unexpected revealed opponent (-want +got)\n%s", diff)
	}
}

func TestInvalidPositions(t *testing.T) {
	g := newGame(t, testBoard())

	got := play(t, g, 4, 9, 0, -1, 2)
	if diff := cmp.Diff([]int{9, 0, -1}, got.Wrong); diff != "" {
		t.Errorf("unexpected wrong guesses (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, got.Correct); diff != "" {
		t.Errorf("unexpected correct guesses (-want +got)\n%s", diff)
	}
	if g.OpponentHits() != 3 {
		t.Errorf("OpponentHits() = %d, want 3", g.OpponentHits())
	}
	if diff := cmp.Diff([]int{5, 6, 7, 8}, g.RemainingOpponent()); diff != "" {
		t.Errorf("invalid guesses shouldn't touch the opponent set (-want +got)\n%s", diff)
	}

	// Off-board guesses are never revealed, so they cost a point every time.
	play(t, g, 1, 9)
	if g.OpponentHits() != 4 {
		t.Errorf("OpponentHits() = %d, want 4", g.OpponentHits())
	}
}

func TestRevealedGuessesAreFree(t *testing.T) {
	g := newGame(t, testBoard())
	play(t, g, 2, 1, 5)

	correct, hits := g.CorrectTotal(), g.OpponentHits()
	remaining, remainingOpp := g.Remaining(), g.RemainingOpponent()

	got := play(t, g, 2, 1, 5)
	if len(got.Correct) != 0 || len(got.Wrong) != 0 {
		t.Errorf("re-guessing revealed positions gave correct=%v wrong=%v, want neither", got.Correct, got.Wrong)
	}
	// The guesses still show up as applied.
	if diff := cmp.Diff([]int{1, 5}, got.Guesses); diff != "" {
		t.Errorf("unexpected applied guesses (-want +got)\n%s", diff)
	}
	if g.CorrectTotal() != correct || g.OpponentHits() != hits {
		t.Errorf("counters changed: correct %d -> %d, hits %d -> %d", correct, g.CorrectTotal(), hits, g.OpponentHits())
	}
	if diff := cmp.Diff(remaining, g.Remaining()); diff != "" {
		t.Errorf("remaining friendly changed (-before +after)\n%s", diff)
	}
	if diff := cmp.Diff(remainingOpp, g.RemainingOpponent()); diff != "" {
		t.Errorf("remaining opponent changed (-before +after)\n%s", diff)
	}
}

func TestGuessBudget(t *testing.T) {
	tests := []struct {
		desc    string
		count   int
		guesses []int
		want    *namesbench.Round
	}{
		{
			desc:    "extra guesses are dropped",
			count:   2,
			guesses: []int{1, 5, 2, 6},
			want: &namesbench.Round{
				Guesses: []int{1, 5},
				Correct: []int{1},
				Wrong:   []int{5},
			},
		},
		{
			desc:    "duplicates don't use up the budget",
			count:   2,
			guesses: []int{3, 3, 3, 4},
			want: &namesbench.Round{
				Guesses: []int{3, 4},
				Correct: []int{3, 4},
				Wrong:   []int{},
			},
		},
		{
			desc:    "fewer guesses than the budget",
			count:   4,
			guesses: []int{7},
			want: &namesbench.Round{
				Guesses: []int{7},
				Correct: []int{},
				Wrong:   []int{7},
			},
		},
		{
			desc:    "no guesses",
			count:   3,
			guesses: nil,
			want: &namesbench.Round{
				Guesses: []int{},
				Correct: []int{},
				Wrong:   []int{},
			},
		},
		{
			desc:    "zero budget",
			count:   0,
			guesses: []int{1, 2},
			want: &namesbench.Round{
				Guesses: []int{},
				Correct: []int{},
				Wrong:   []int{},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			g := newGame(t, testBoard())
			got := play(t, g, test.count, test.guesses...)

			if diff := cmp.Diff(test.want.Guesses, got.Guesses); diff != "" {
				t.Errorf("unexpected applied guesses (-want +got)\n%s", diff)
			}
			if diff := cmp.Diff(test.want.Correct, got.Correct); diff != "" {
				t.Errorf("unexpected correct guesses (-want +got)\n%s", diff)
			}
			if diff := cmp.Diff(test.want.Wrong, got.Wrong); diff != "" {
				t.Errorf("unexpected wrong guesses (-want +got)\n%s", diff)
			}
			if g.OpponentHits() != len(test.want.Wrong) {
				t.Errorf("OpponentHits() = %d, want %d", g.OpponentHits(), len(test.want.Wrong))
			}
		})
	}
}

func TestIntendedTargets(t *testing.T) {
	g := newGame(t, testBoard())
	g.NextRound()

	clue := &namesbench.Clue{Word: "tide", Count: 1, Targets: []int{4, 6, 4, 12, 1}}
	got, err := g.ApplyRound(clue, []int{7})
	if err != nil {
		t.Fatalf("ApplyRound: %v", err)
	}

	if diff := cmp.Diff([]int{4, 1}, got.IntendedTargets); diff != "" {
		t.Errorf("unexpected intended targets (-want +got)\n%s", diff)
	}
	// Targets never count towards the score.
	if g.CorrectTotal() != 0 || g.OpponentHits() != 1 {
		t.Errorf("got correct=%d hits=%d, want correct=0 hits=1", g.CorrectTotal(), g.OpponentHits())
	}
}

func TestScore(t *testing.T) {
	f, o := namesbench.Friendly, namesbench.Opponent
	g := newGame(t, &namesbench.Board{Teams: []namesbench.Team{f, f, f, f, f, f, o, o}})

	if got := g.Score(); got != 0.0 {
		t.Errorf("Score() before any rounds = %v, want 0", got)
	}

	play(t, g, 3, 1, 2, 7)
	play(t, g, 2, 3, 8)
	play(t, g, 2, 4, 5)

	if g.CorrectTotal() != 5 || g.OpponentHits() != 2 {
		t.Fatalf("got correct=%d hits=%d, want correct=5 hits=2", g.CorrectTotal(), g.OpponentHits())
	}
	if got := g.Score(); got != 1.0 {
		t.Errorf("Score() = %v, want 1.0", got)
	}

	want := &namesbench.Summary{Score: 1.0, Rounds: 3, CorrectTotal: 5, OpponentHits: 2}
	if diff := cmp.Diff(want, g.Summary()); diff != "" {
		t.Errorf("unexpected summary (-want +got)\n%s", diff)
	}
}

func TestScoreCanBeNegative(t *testing.T) {
	g := newGame(t, testBoard())
	play(t, g, 3, 5, 6, 9)
	play(t, g, 1, 1)

	// (1 - 3) / 2
	if got := g.Score(); got != -1.0 {
		t.Errorf("Score() = %v, want -1.0", got)
	}
}

func TestCallOrder(t *testing.T) {
	g := newGame(t, testBoard())
	clue := &namesbench.Clue{Word: "clue", Count: 4}

	if _, err := g.ApplyRound(clue, []int{1}); !errors.Is(err, ErrRoundNotStarted) {
		t.Errorf("ApplyRound before NextRound = %v, want ErrRoundNotStarted", err)
	}

	if n := g.NextRound(); n != 1 {
		t.Errorf("NextRound() = %d, want 1", n)
	}
	if _, err := g.ApplyRound(clue, []int{1}); err != nil {
		t.Fatalf("ApplyRound: %v", err)
	}
	if _, err := g.ApplyRound(clue, []int{2}); !errors.Is(err, ErrRoundNotStarted) {
		t.Errorf("second ApplyRound in a round = %v, want ErrRoundNotStarted", err)
	}

	if n := g.NextRound(); n != 2 {
		t.Errorf("NextRound() = %d, want 2", n)
	}
	if _, err := g.ApplyRound(clue, []int{2, 3, 4}); err != nil {
		t.Fatalf("ApplyRound: %v", err)
	}

	g.NextRound()
	if _, err := g.ApplyRound(clue, []int{5}); !errors.Is(err, ErrGameOver) {
		t.Errorf("ApplyRound after completion = %v, want ErrGameOver", err)
	}
	if !g.IsComplete() {
		t.Error("completed game shouldn't go back to in progress")
	}
}

func TestNewInvalidBoard(t *testing.T) {
	boards := map[string]*namesbench.Board{
		"nil":     nil,
		"empty":   {},
		"no team": {Teams: []namesbench.Team{namesbench.Friendly, namesbench.NoTeam}},
	}
	for desc, b := range boards {
		t.Run(desc, func(t *testing.T) {
			if _, err := New(b); !errors.Is(err, namesbench.ErrInvalidConfig) {
				t.Errorf("New = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestHistoryIsACopy(t *testing.T) {
	g := newGame(t, testBoard())
	r := play(t, g, 2, 1, 5)
	r.Correct[0] = 99

	h := g.History()
	if len(h) != 1 {
		t.Fatalf("got %d rounds of history, want 1", len(h))
	}
	h[0].Wrong[0] = 42

	if diff := cmp.Diff([]int{1}, g.History()[0].Correct); diff != "" {
		t.Errorf("history was modified through a returned round (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]int{5}, g.History()[0].Wrong); diff != "" {
		t.Errorf("history was modified through History() (-want +got)\n%s", diff)
	}
}

// TestRandomPlay throws noisy guesses at random boards and checks the
// invariants that should hold after every round.
func TestRandomPlay(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		r := rand.New(rand.NewSource(seed))
		b, err := boardgen.New(12, 0.5, r)
		if err != nil {
			t.Fatalf("boardgen.New: %v", err)
		}
		g := newGame(t, b)

		prevRemaining, prevRemainingOpp, prevRevealed := len(g.Remaining()), len(g.RemainingOpponent()), len(g.Revealed())
		wasComplete := false
		for round := 0; round < 40 && !g.IsComplete(); round++ {
			guesses := make([]int, r.Intn(6))
			for i := range guesses {
				// Includes some positions that aren't on the board.
				guesses[i] = r.Intn(15)
			}
			res := play(t, g, 1+r.Intn(4), guesses...)

			for _, p := range res.Correct {
				if b.Team(p) != namesbench.Friendly {
					t.Fatalf("seed %d: correct guess %d isn't friendly", seed, p)
				}
			}
			if len(res.Correct)+len(res.Wrong) > len(res.Guesses) {
				t.Fatalf("seed %d: more results than applied guesses: %+v", seed, res)
			}

			remaining, remainingOpp, revealed := len(g.Remaining()), len(g.RemainingOpponent()), len(g.Revealed())
			if remaining > prevRemaining || remainingOpp > prevRemainingOpp || revealed < prevRevealed {
				t.Fatalf("seed %d: sets moved the wrong way", seed)
			}
			if revealed != len(g.RevealedFriendly())+len(g.RevealedOpponent()) {
				t.Fatalf("seed %d: revealed set doesn't match the removed positions", seed)
			}
			if g.CorrectTotal() != len(g.RevealedFriendly()) {
				t.Fatalf("seed %d: CorrectTotal() = %d, but %d friendly positions revealed", seed, g.CorrectTotal(), len(g.RevealedFriendly()))
			}
			if wasComplete && !g.IsComplete() {
				t.Fatalf("seed %d: game went from complete back to in progress", seed)
			}
			if g.IsComplete() != (remaining == 0) {
				t.Fatalf("seed %d: IsComplete() = %t with %d remaining", seed, g.IsComplete(), remaining)
			}
			prevRemaining, prevRemainingOpp, prevRevealed = remaining, remainingOpp, revealed
			wasComplete = g.IsComplete()
		}
	}
}
