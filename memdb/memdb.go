// Package memdb is an in-memory implementation of namesbench.DB, useful for
// tests and for runs that don't need to outlive the process.
package memdb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bcspragu/namesbench"
)

type idNamespace string

const (
	runID  = idNamespace("run")
	gameID = idNamespace("game")
)

var _ namesbench.DB = (*DB)(nil)

type DB struct {
	mu sync.Mutex

	ids    map[idNamespace]int
	runs   map[namesbench.RunID]*namesbench.Run
	games  map[namesbench.GameID]*namesbench.Game
	rounds map[namesbench.GameID][]*namesbench.Round
}

func New() *DB {
	return &DB{
		ids:    make(map[idNamespace]int),
		runs:   make(map[namesbench.RunID]*namesbench.Run),
		games:  make(map[namesbench.GameID]*namesbench.Game),
		rounds: make(map[namesbench.GameID][]*namesbench.Round),
	}
}

func (db *DB) NewRun(r *namesbench.Run) (namesbench.RunID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rID := namesbench.RunID(db.newID(runID))
	rc := r.Clone()
	rc.ID = rID
	db.runs[rID] = rc

	return rID, nil
}

func (db *DB) Run(rID namesbench.RunID) (*namesbench.Run, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	r, ok := db.runs[rID]
	if !ok {
		return nil, namesbench.ErrRunNotFound
	}
	return r.Clone(), nil
}

// Runs returns every run, newest first.
func (db *DB) Runs() ([]*namesbench.Run, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]*namesbench.Run, 0, len(db.runs))
	for _, r := range db.runs {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (db *DB) NewGame(g *namesbench.Game) (namesbench.GameID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.runs[g.RunID]; !ok {
		return "", namesbench.ErrRunNotFound
	}

	gID := namesbench.GameID(db.newID(gameID))
	gc := g.Clone()
	gc.ID = gID
	gc.Status = namesbench.Playing
	gc.Summary = nil
	gc.Error = ""
	db.games[gID] = gc
	db.rounds[gID] = []*namesbench.Round{}

	return gID, nil
}

func (db *DB) Game(gID namesbench.GameID) (*namesbench.Game, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.games[gID]
	if !ok {
		return nil, namesbench.ErrGameNotFound
	}
	return g.Clone(), nil
}

// Games returns the games in a run, ordered by their index.
func (db *DB) Games(rID namesbench.RunID) ([]*namesbench.Game, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.runs[rID]; !ok {
		return nil, namesbench.ErrRunNotFound
	}

	out := []*namesbench.Game{}
	for _, g := range db.games {
		if g.RunID == rID {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (db *DB) AddRound(gID namesbench.GameID, r *namesbench.Round) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	rs, ok := db.rounds[gID]
	if !ok {
		return namesbench.ErrGameNotFound
	}
	// The SQLite implementation has a unique key on the round number, so we
	// should do the same.
	for _, existing := range rs {
		if existing.Number == r.Number {
			return fmt.Errorf("round %d already recorded for game %q", r.Number, gID)
		}
	}
	db.rounds[gID] = append(rs, r.Clone())
	return nil
}

func (db *DB) Rounds(gID namesbench.GameID) ([]*namesbench.Round, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rs, ok := db.rounds[gID]
	if !ok {
		return nil, namesbench.ErrGameNotFound
	}

	out := make([]*namesbench.Round, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (db *DB) FinishGame(gID namesbench.GameID, s *namesbench.Summary) error {
	return db.updateGame(gID, func(g *namesbench.Game) {
		g.Status = namesbench.Finished
		g.Summary = s.Clone()
	})
}

func (db *DB) FailGame(gID namesbench.GameID, gameErr error) error {
	return db.updateGame(gID, func(g *namesbench.Game) {
		g.Status = namesbench.Failed
		g.Error = gameErr.Error()
	})
}

func (db *DB) updateGame(gID namesbench.GameID, update func(*namesbench.Game)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.games[gID]
	if !ok {
		return namesbench.ErrGameNotFound
	}
	update(g)
	return nil
}

// newID must be called with mu held.
func (db *DB) newID(ns idNamespace) string {
	idx := db.ids[ns]
	id := fmt.Sprintf("%s_%d", ns, idx)
	db.ids[ns]++
	return id
}
