// Package sqldb implements namesbench.DB on top of SQLite.
package sqldb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bcspragu/namesbench"
	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	grid TEXT NOT NULL,
	friendly_fraction REAL NOT NULL,
	games INTEGER NOT NULL,
	base_seed INTEGER NOT NULL,
	out_dir TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	idx INTEGER NOT NULL,
	seed INTEGER NOT NULL,
	status TEXT NOT NULL,
	summary TEXT,
	error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS games_run_id ON games(run_id);

CREATE TABLE IF NOT EXISTS rounds (
	game_id TEXT NOT NULL REFERENCES games(id),
	number INTEGER NOT NULL,
	clue TEXT NOT NULL,
	count INTEGER NOT NULL,
	guesses TEXT NOT NULL,
	intended_targets TEXT NOT NULL,
	correct TEXT NOT NULL,
	wrong TEXT NOT NULL,
	PRIMARY KEY (game_id, number)
);
`

var _ namesbench.DB = (*DB)(nil)

// DB implements the namesbench database API, backed by a SQLite database.
// NOTE: Since the database doesn't support concurrent writers, we don't
// actually hold the *sql.DB in this struct, we force all callers to get a
// handle via channels.
type DB struct {
	dbChan   chan func(*sql.DB)
	doneChan chan struct{}
	closed   chan struct{}
}

// New creates a new *DB that is stored on disk at the given filename, creating
// the tables if they don't exist yet.
func New(fn string) (*DB, error) {
	sdb, err := sql.Open("sqlite3", fn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", fn, err)
	}
	sdb.SetMaxOpenConns(1)

	if _, err := sdb.Exec(schema); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	db := &DB{
		dbChan:   make(chan func(*sql.DB)),
		doneChan: make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go db.run(sdb)
	return db, nil
}

// run handles all database calls, and ensures that only one thing is happening
// against the database at a time.
func (s *DB) run(sdb *sql.DB) {
	defer close(s.closed)
	for {
		select {
		case dbFn := <-s.dbChan:
			dbFn(sdb)
		case <-s.doneChan:
			sdb.Close()
			return
		}
	}
}

func (s *DB) Close() error {
	close(s.doneChan)
	<-s.closed
	return nil
}

var errClosed = errors.New("sqldb: database is closed")

// do runs fn on the database goroutine and waits for it to finish.
func (s *DB) do(fn func(*sql.DB) error) error {
	errC := make(chan error, 1)
	select {
	case s.dbChan <- func(sdb *sql.DB) { errC <- fn(sdb) }:
	case <-s.doneChan:
		return errClosed
	}
	return <-errC
}

func (s *DB) NewRun(r *namesbench.Run) (namesbench.RunID, error) {
	rID := namesbench.RunID(uuid.NewString())
	err := s.do(func(sdb *sql.DB) error {
		_, err := sdb.Exec(`INSERT INTO runs (id, provider, model, grid, friendly_fraction, games, base_seed, out_dir, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rID, r.Provider, r.Model, r.Grid, r.FriendlyFraction, r.Games, r.BaseSeed, r.OutDir, formatTime(r.CreatedAt))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return rID, nil
}

const runColumns = `id, provider, model, grid, friendly_fraction, games, base_seed, out_dir, created_at`

func (s *DB) Run(rID namesbench.RunID) (*namesbench.Run, error) {
	var r *namesbench.Run
	err := s.do(func(sdb *sql.DB) error {
		var err error
		r, err = scanRun(sdb.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, rID))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, namesbench.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return r, nil
}

// Runs returns every run, newest first.
func (s *DB) Runs() ([]*namesbench.Run, error) {
	var runs []*namesbench.Run
	err := s.do(func(sdb *sql.DB) error {
		rows, err := sdb.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			r, err := scanRun(rows)
			if err != nil {
				return err
			}
			runs = append(runs, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	return runs, nil
}

func (s *DB) NewGame(g *namesbench.Game) (namesbench.GameID, error) {
	gID := namesbench.GameID(uuid.NewString())
	err := s.do(func(sdb *sql.DB) error {
		if err := runExists(sdb, g.RunID); err != nil {
			return err
		}
		_, err := sdb.Exec(`INSERT INTO games (id, run_id, idx, seed, status) VALUES (?, ?, ?, ?, ?)`,
			gID, g.RunID, g.Index, g.Seed, namesbench.Playing)
		return err
	})
	if errors.Is(err, namesbench.ErrRunNotFound) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert game: %w", err)
	}
	return gID, nil
}

const gameColumns = `id, run_id, idx, seed, status, summary, error`

func (s *DB) Game(gID namesbench.GameID) (*namesbench.Game, error) {
	var g *namesbench.Game
	err := s.do(func(sdb *sql.DB) error {
		var err error
		g, err = scanGame(sdb.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, gID))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, namesbench.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return g, nil
}

// Games returns the games in a run, ordered by their index.
func (s *DB) Games(rID namesbench.RunID) ([]*namesbench.Game, error) {
	games := []*namesbench.Game{}
	err := s.do(func(sdb *sql.DB) error {
		if err := runExists(sdb, rID); err != nil {
			return err
		}
		rows, err := sdb.Query(`SELECT `+gameColumns+` FROM games WHERE run_id = ? ORDER BY idx`, rID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			g, err := scanGame(rows)
			if err != nil {
				return err
			}
			games = append(games, g)
		}
		return rows.Err()
	})
	if errors.Is(err, namesbench.ErrRunNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	return games, nil
}

func (s *DB) AddRound(gID namesbench.GameID, r *namesbench.Round) error {
	lists, err := encodeLists(r.Guesses, r.IntendedTargets, r.Correct, r.Wrong)
	if err != nil {
		return err
	}
	err = s.do(func(sdb *sql.DB) error {
		if err := gameExists(sdb, gID); err != nil {
			return err
		}
		_, err := sdb.Exec(`INSERT INTO rounds (game_id, number, clue, count, guesses, intended_targets, correct, wrong)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			gID, r.Number, r.Clue, r.Count, lists[0], lists[1], lists[2], lists[3])
		return err
	})
	if errors.Is(err, namesbench.ErrGameNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to insert round %d: %w", r.Number, err)
	}
	return nil
}

func (s *DB) Rounds(gID namesbench.GameID) ([]*namesbench.Round, error) {
	rounds := []*namesbench.Round{}
	err := s.do(func(sdb *sql.DB) error {
		if err := gameExists(sdb, gID); err != nil {
			return err
		}
		rows, err := sdb.Query(`SELECT number, clue, count, guesses, intended_targets, correct, wrong
			FROM rounds WHERE game_id = ? ORDER BY number`, gID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				r     namesbench.Round
				lists [4]string
			)
			if err := rows.Scan(&r.Number, &r.Clue, &r.Count, &lists[0], &lists[1], &lists[2], &lists[3]); err != nil {
				return err
			}
			for i, dst := range []*[]int{&r.Guesses, &r.IntendedTargets, &r.Correct, &r.Wrong} {
				if err := json.Unmarshal([]byte(lists[i]), dst); err != nil {
					return fmt.Errorf("bad list in round %d: %w", r.Number, err)
				}
			}
			rounds = append(rounds, &r)
		}
		return rows.Err()
	})
	if errors.Is(err, namesbench.ErrGameNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}
	return rounds, nil
}

func (s *DB) FinishGame(gID namesbench.GameID, sum *namesbench.Summary) error {
	dat, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return s.updateGame(gID, `UPDATE games SET status = ?, summary = ? WHERE id = ?`, namesbench.Finished, string(dat), gID)
}

func (s *DB) FailGame(gID namesbench.GameID, gameErr error) error {
	return s.updateGame(gID, `UPDATE games SET status = ?, error = ? WHERE id = ?`, namesbench.Failed, gameErr.Error(), gID)
}

func (s *DB) updateGame(gID namesbench.GameID, query string, args ...interface{}) error {
	err := s.do(func(sdb *sql.DB) error {
		res, err := sdb.Exec(query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return namesbench.ErrGameNotFound
		}
		return nil
	})
	if errors.Is(err, namesbench.ErrGameNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*namesbench.Run, error) {
	var (
		r       namesbench.Run
		created string
	)
	if err := sc.Scan(&r.ID, &r.Provider, &r.Model, &r.Grid, &r.FriendlyFraction, &r.Games, &r.BaseSeed, &r.OutDir, &created); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", created, err)
	}
	r.CreatedAt = t
	return &r, nil
}

func scanGame(sc scanner) (*namesbench.Game, error) {
	var (
		g   namesbench.Game
		sum sql.NullString
	)
	if err := sc.Scan(&g.ID, &g.RunID, &g.Index, &g.Seed, &g.Status, &sum, &g.Error); err != nil {
		return nil, err
	}
	if sum.Valid {
		g.Summary = &namesbench.Summary{}
		if err := json.Unmarshal([]byte(sum.String), g.Summary); err != nil {
			return nil, fmt.Errorf("bad summary for game %q: %w", g.ID, err)
		}
	}
	return &g, nil
}

func runExists(sdb *sql.DB, rID namesbench.RunID) error {
	var n int
	if err := sdb.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, rID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return namesbench.ErrRunNotFound
	}
	return nil
}

func gameExists(sdb *sql.DB, gID namesbench.GameID) error {
	var n int
	if err := sdb.QueryRow(`SELECT COUNT(*) FROM games WHERE id = ?`, gID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return namesbench.ErrGameNotFound
	}
	return nil
}

// encodeLists stores each list as JSON text, with nil lists stored as [].
func encodeLists(lists ...[]int) ([]string, error) {
	out := make([]string, len(lists))
	for i, l := range lists {
		if l == nil {
			l = []int{}
		}
		dat, err := json.Marshal(l)
		if err != nil {
			return nil, fmt.Errorf("failed to encode list: %w", err)
		}
		out[i] = string(dat)
	}
	return out, nil
}

// formatTime stores times in UTC with a fixed width, so they sort as text.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
