// Package dbtest checks that an implementation of namesbench.DB behaves the way
// the rest of the code expects. Each implementation runs it from its own tests.
package dbtest

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bcspragu/namesbench"
	"github.com/google/go-cmp/cmp"
)

// Run runs every check against a fresh DB from newDB.
func Run(t *testing.T, newDB func(t *testing.T) namesbench.DB) {
	tests := []struct {
		name string
		fn   func(*testing.T, namesbench.DB)
	}{
		{"Runs", testRuns},
		{"Games", testGames},
		{"Rounds", testRounds},
		{"FinishAndFail", testFinishAndFail},
		{"NotFound", testNotFound},
		{"Concurrent", testConcurrent},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.fn(t, newDB(t))
		})
	}
}

func newRun(t *testing.T, db namesbench.DB, created time.Time) *namesbench.Run {
	t.Helper()
	r := &namesbench.Run{
		Provider:         "openai",
		Model:            "gpt-4o",
		Grid:             "2x4",
		FriendlyFraction: 0.5,
		Games:            3,
		BaseSeed:         42,
		OutDir:           "/tmp/runs/run_1",
		CreatedAt:        created,
	}
	id, err := db.NewRun(r)
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	r.ID = id
	return r
}

func newGame(t *testing.T, db namesbench.DB, rID namesbench.RunID, idx int) namesbench.GameID {
	t.Helper()
	id, err := db.NewGame(&namesbench.Game{RunID: rID, Index: idx, Seed: int64(42 + idx)})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return id
}

func testRuns(t *testing.T, db namesbench.DB) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := newRun(t, db, base)
	newer := newRun(t, db, base.Add(time.Hour))
	if older.ID == newer.ID {
		t.Fatalf("both runs got ID %q", older.ID)
	}

	got, err := db.Run(older.ID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(older, got); diff != "" {
		t.Errorf("unexpected run (-want +got)\n%s", diff)
	}

	runs, err := db.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if diff := cmp.Diff([]*namesbench.Run{newer, older}, runs); diff != "" {
		t.Errorf("unexpected runs, want newest first (-want +got)\n%s", diff)
	}
}

func testGames(t *testing.T, db namesbench.DB) {
	r := newRun(t, db, time.Now().UTC().Truncate(time.Second))
	other := newRun(t, db, time.Now().UTC().Truncate(time.Second))

	// Added out of order, Games returns them by index.
	g1 := newGame(t, db, r.ID, 1)
	g0 := newGame(t, db, r.ID, 0)
	newGame(t, db, other.ID, 0)

	got, err := db.Game(g0)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	want := &namesbench.Game{ID: g0, RunID: r.ID, Index: 0, Seed: 42, Status: namesbench.Playing}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected game (-want +got)\n%s", diff)
	}

	games, err := db.Games(r.ID)
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	var ids []namesbench.GameID
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	if diff := cmp.Diff([]namesbench.GameID{g0, g1}, ids); diff != "" {
		t.Errorf("unexpected games (-want +got)\n%s", diff)
	}
}

func testRounds(t *testing.T, db namesbench.DB) {
	r := newRun(t, db, time.Now().UTC().Truncate(time.Second))
	gID := newGame(t, db, r.ID, 0)

	rounds, err := db.Rounds(gID)
	if err != nil {
		t.Fatalf("Rounds: %v", err)
	}
	if len(rounds) != 0 {
		t.Errorf("new game has %d rounds", len(rounds))
	}

	want := []*namesbench.Round{
		{Number: 1, Clue: "tide", Count: 2, Guesses: []int{1, 3}, IntendedTargets: []int{1, 4}, Correct: []int{1}, Wrong: []int{3}},
		{Number: 2, Clue: "moss", Count: 1, Guesses: []int{4}, IntendedTargets: []int{}, Correct: []int{4}, Wrong: []int{}},
	}
	for _, rnd := range want {
		if err := db.AddRound(gID, rnd); err != nil {
			t.Fatalf("AddRound(%d): %v", rnd.Number, err)
		}
	}
	if err := db.AddRound(gID, want[0]); err == nil {
		t.Error("adding round 1 twice should fail")
	}

	got, err := db.Rounds(gID)
	if err != nil {
		t.Fatalf("Rounds: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected rounds (-want +got)\n%s", diff)
	}
}

func testFinishAndFail(t *testing.T, db namesbench.DB) {
	r := newRun(t, db, time.Now().UTC().Truncate(time.Second))
	done := newGame(t, db, r.ID, 0)
	broken := newGame(t, db, r.ID, 1)

	sum := &namesbench.Summary{Score: 1.5, Rounds: 2, CorrectTotal: 4, OpponentHits: 1, CompositeImage: "/x/board_composite.png"}
	if err := db.FinishGame(done, sum); err != nil {
		t.Fatalf("FinishGame: %v", err)
	}
	if err := db.FailGame(broken, errors.New("model timed out")); err != nil {
		t.Fatalf("FailGame: %v", err)
	}

	got, err := db.Game(done)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if got.Status != namesbench.Finished {
		t.Errorf("Status = %q, want %q", got.Status, namesbench.Finished)
	}
	if diff := cmp.Diff(sum, got.Summary); diff != "" {
		t.Errorf("unexpected summary (-want +got)\n%s", diff)
	}

	if got, err = db.Game(broken); err != nil {
		t.Fatalf("Game: %v", err)
	}
	if got.Status != namesbench.Failed || got.Error != "model timed out" || got.Summary != nil {
		t.Errorf("unexpected failed game %+v", got)
	}
}

func testNotFound(t *testing.T, db namesbench.DB) {
	if _, err := db.Run("nope"); !errors.Is(err, namesbench.ErrRunNotFound) {
		t.Errorf("Run = %v, want ErrRunNotFound", err)
	}
	if _, err := db.Games("nope"); !errors.Is(err, namesbench.ErrRunNotFound) {
		t.Errorf("Games = %v, want ErrRunNotFound", err)
	}
	if _, err := db.NewGame(&namesbench.Game{RunID: "nope"}); !errors.Is(err, namesbench.ErrRunNotFound) {
		t.Errorf("NewGame = %v, want ErrRunNotFound", err)
	}
	if _, err := db.Game("nope"); !errors.Is(err, namesbench.ErrGameNotFound) {
		t.Errorf("Game = %v, want ErrGameNotFound", err)
	}
	if _, err := db.Rounds("nope"); !errors.Is(err, namesbench.ErrGameNotFound) {
		t.Errorf("Rounds = %v, want ErrGameNotFound", err)
	}
	if err := db.AddRound("nope", &namesbench.Round{Number: 1}); !errors.Is(err, namesbench.ErrGameNotFound) {
		t.Errorf("AddRound = %v, want ErrGameNotFound", err)
	}
	if err := db.FinishGame("nope", &namesbench.Summary{}); !errors.Is(err, namesbench.ErrGameNotFound) {
		t.Errorf("FinishGame = %v, want ErrGameNotFound", err)
	}
	if err := db.FailGame("nope", errors.New("x")); !errors.Is(err, namesbench.ErrGameNotFound) {
		t.Errorf("FailGame = %v, want ErrGameNotFound", err)
	}
}

func testConcurrent(t *testing.T, db namesbench.DB) {
	r := newRun(t, db, time.Now().UTC().Truncate(time.Second))

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gID, err := db.NewGame(&namesbench.Game{RunID: r.ID, Index: i})
			if err != nil {
				errs <- err
				return
			}
			for rnd := 1; rnd <= 3; rnd++ {
				if err := db.AddRound(gID, &namesbench.Round{Number: rnd, Clue: fmt.Sprint("clue", rnd)}); err != nil {
					errs <- err
					return
				}
			}
			errs <- db.FinishGame(gID, &namesbench.Summary{Rounds: 3})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent game: %v", err)
		}
	}

	games, err := db.Games(r.ID)
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if len(games) != n {
		t.Fatalf("got %d games, want %d", len(games), n)
	}
	for _, g := range games {
		if g.Status != namesbench.Finished {
			t.Errorf("game %d has status %q", g.Index, g.Status)
		}
	}
}
