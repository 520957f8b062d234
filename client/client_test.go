package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/hub"
	"github.com/bcspragu/namesbench/memdb"
	"github.com/bcspragu/namesbench/web"
	"github.com/google/go-cmp/cmp"
)

type testEnv struct {
	db     *memdb.DB
	hub    *hub.Hub
	client *Client
	runID  namesbench.RunID
	gameID namesbench.GameID
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db := memdb.New()
	h := hub.New()
	srv := httptest.NewServer(web.New(db, h))
	t.Cleanup(srv.Close)

	rID, err := db.NewRun(&namesbench.Run{Model: "claude", Grid: "2x2", Games: 1, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	gID, err := db.NewGame(&namesbench.Game{RunID: rID, Seed: 7})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	return &testEnv{
		db:     db,
		hub:    h,
		client: New("http", strings.TrimPrefix(srv.URL, "http://")),
		runID:  rID,
		gameID: gID,
	}
}

func TestResults(t *testing.T) {
	env := setup(t)
	rnd := &namesbench.Round{Number: 1, Clue: "moss", Count: 1, Guesses: []int{2}, IntendedTargets: []int{2}, Correct: []int{2}, Wrong: []int{}}
	if err := env.db.AddRound(env.gameID, rnd); err != nil {
		t.Fatalf("AddRound: %v", err)
	}

	runs, err := env.client.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != env.runID || runs[0].Model != "claude" {
		t.Errorf("unexpected runs %+v", runs)
	}

	rd, err := env.client.Run(env.runID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rd.Games) != 1 || rd.Games[0].ID != env.gameID || rd.Games[0].Status != namesbench.Playing {
		t.Errorf("unexpected games %+v", rd.Games)
	}

	gd, err := env.client.Game(env.gameID)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if diff := cmp.Diff([]*namesbench.Round{rnd}, gd.Rounds); diff != "" {
		t.Errorf("unexpected rounds (-want +got)\n%s", diff)
	}
}

func TestNotFound(t *testing.T) {
	env := setup(t)

	_, err := env.client.Run("run_404")
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("Run = %v, want an *HTTPError", err)
	}
	if herr.StatusCode != http.StatusNotFound || herr.Body != "run not found" {
		t.Errorf("unexpected error %+v", herr)
	}
}

func TestListenForUpdates(t *testing.T) {
	env := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rounds := make(chan *web.RoundPlayed, 1)
	finished := make(chan *web.GameFinished, 1)
	errC := make(chan error, 1)
	go func() {
		errC <- env.client.ListenForUpdates(ctx, env.runID, WSHooks{
			OnRoundPlayed:  func(rp *web.RoundPlayed) { rounds <- rp },
			OnGameFinished: func(gf *web.GameFinished) { finished <- gf },
		})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for env.hub.Watchers(env.runID) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never connected")
		}
		time.Sleep(10 * time.Millisecond)
	}

	n := web.NewNotifier(env.hub)
	g := &namesbench.Game{ID: env.gameID, RunID: env.runID, Index: 0}
	rnd := &namesbench.Round{Number: 1, Clue: "moss", Count: 1, Guesses: []int{2}, IntendedTargets: []int{}, Correct: []int{}, Wrong: []int{2}}
	n.RoundPlayed(g, rnd)
	// Nobody hooked failures, it should just be skipped.
	n.GameFailed(&namesbench.Game{ID: "other", RunID: env.runID, Index: 1, Error: "boom"})
	g.Summary = &namesbench.Summary{Score: -1, Rounds: 1, OpponentHits: 1}
	n.GameFinished(g)

	select {
	case rp := <-rounds:
		want := &web.RoundPlayed{RunID: env.runID, GameID: env.gameID, Game: 0, Round: rnd}
		if diff := cmp.Diff(want, rp); diff != "" {
			t.Errorf("unexpected round update (-want +got)\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("never got the round update")
	}

	select {
	case gf := <-finished:
		if diff := cmp.Diff(g.Summary, gf.Summary); diff != "" {
			t.Errorf("unexpected summary (-want +got)\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("never got the finished update")
	}

	cancel()
	select {
	case err := <-errC:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ListenForUpdates = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenForUpdates didn't stop when canceled")
	}
}
