// Package bench runs benchmark games: it builds each board, plays the
// Spymaster and Operative against it, and records what happened.
package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/cryptorand"
	"github.com/bcspragu/namesbench/deck"
	"github.com/bcspragu/namesbench/trace"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxRounds is the round limit used by the command line tools.
const DefaultMaxRounds = 50

// ParseGrid parses a grid size like "2x4" into rows and columns.
func ParseGrid(grid string) (rows, cols int, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(grid)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: invalid grid format %q", namesbench.ErrInvalidConfig, grid)
	}
	if rows, err = strconv.Atoi(parts[0]); err != nil || rows < 1 {
		return 0, 0, fmt.Errorf("%w: invalid grid rows in %q", namesbench.ErrInvalidConfig, grid)
	}
	if cols, err = strconv.Atoi(parts[1]); err != nil || cols < 1 {
		return 0, 0, fmt.Errorf("%w: invalid grid columns in %q", namesbench.ErrInvalidConfig, grid)
	}
	return rows, cols, nil
}

// GameSeed returns the seed for the game at index in a run, which keeps every
// game in a run reproducible from the run's base seed.
func GameSeed(base int64, index int) int64 {
	return (base + int64(index)) & (1<<32 - 1)
}

// Observer gets notified as games in a run progress. Calls can come from
// multiple goroutines when games are played in parallel.
type Observer interface {
	RoundPlayed(g *namesbench.Game, r *namesbench.Round)
	// GameFinished is called with g.Summary set.
	GameFinished(g *namesbench.Game)
	// GameFailed is called with g.Error set.
	GameFailed(g *namesbench.Game)
}

type Config struct {
	// Deck is a directory of card images.
	Deck string
	// Grid is the board size, like "5x5".
	Grid             string
	FriendlyFraction float64
	Games            int
	// Seed is the base seed for the run. If nil, one is picked at random and
	// logged, so the run can still be reproduced.
	Seed      *int64
	MaxRounds int
	// Parallel is how many games are played at once, at least one.
	Parallel int
	// OutDir is the parent directory, each run gets a timestamped directory in
	// it.
	OutDir   string
	Debug    bool
	Progress bool

	Spymaster namesbench.Spymaster
	Operative namesbench.Operative

	// Provider and Model are only recorded, they don't change how games are
	// played.
	Provider string
	Model    string

	// DB is optional, if set the run and every game and round in it are
	// recorded.
	DB        namesbench.DB
	Observers []Observer
}

// GameResult is what happened to one game in a run. Exactly one of Result and
// Err is set.
type GameResult struct {
	Index  int
	ID     namesbench.GameID
	Seed   int64
	Dir    string
	Result *Result
	Err    error
}

type Stats struct {
	Played            int
	Failed            int
	MeanScore         float64
	MeanRounds        float64
	TotalOpponentHits int
}

type RunResult struct {
	ID       namesbench.RunID
	Dir      string
	BaseSeed int64
	Games    []*GameResult
	Stats    Stats
}

// Run plays every game in the run. A game that fails is logged and recorded as
// failed, but doesn't stop the other games. Run itself only returns an error
// if the run can't be set up at all, or if ctx is canceled.
func Run(ctx context.Context, cfg *Config) (*RunResult, error) {
	rows, cols, err := ParseGrid(cfg.Grid)
	if err != nil {
		return nil, err
	}
	if cfg.Games < 1 {
		return nil, fmt.Errorf("%w: need at least one game, got %d", namesbench.ErrInvalidConfig, cfg.Games)
	}
	if !(cfg.FriendlyFraction > 0 && cfg.FriendlyFraction <= 1) {
		return nil, fmt.Errorf("%w: friendly fraction %v isn't in (0, 1]", namesbench.ErrInvalidConfig, cfg.FriendlyFraction)
	}
	if cfg.Spymaster == nil || cfg.Operative == nil {
		return nil, fmt.Errorf("%w: a run needs a spymaster and an operative", namesbench.ErrInvalidConfig)
	}

	cards, err := deck.Load(cfg.Deck)
	if err != nil {
		return nil, err
	}
	if len(cards) < rows*cols {
		return nil, fmt.Errorf("%w: deck has %d cards, a %dx%d grid needs %d", namesbench.ErrInvalidConfig, len(cards), rows, cols, rows*cols)
	}

	var base int64
	if cfg.Seed != nil {
		base = *cfg.Seed & (1<<32 - 1)
	} else {
		base = cryptorand.Seed()
		log.Info().Int64("seed", base).Msg("no seed given, picked one at random")
	}

	now := time.Now()
	dir, err := makeRunDir(cfg.OutDir, now)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", dir).Msg("writing results")

	run := &namesbench.Run{
		ID:               namesbench.RunID(uuid.NewString()),
		Provider:         cfg.Provider,
		Model:            cfg.Model,
		Grid:             fmt.Sprintf("%dx%d", rows, cols),
		FriendlyFraction: cfg.FriendlyFraction,
		Games:            cfg.Games,
		BaseSeed:         base,
		OutDir:           dir,
		CreatedAt:        now.UTC(),
	}
	if cfg.DB != nil {
		if run.ID, err = cfg.DB.NewRun(run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	r := &runner{
		cfg:         cfg,
		run:         run,
		cards:       cards,
		rows:        rows,
		cols:        cols,
		summaryPath: filepath.Join(dir, trace.SummaryName),
	}

	results := make([]*GameResult, cfg.Games)
	var eg errgroup.Group
	parallel := cfg.Parallel
	if parallel < 1 {
		parallel = 1
	}
	eg.SetLimit(parallel)
	for i := 0; i < cfg.Games; i++ {
		eg.Go(func() error {
			results[i] = r.playGame(ctx, i)
			return nil
		})
	}
	eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &RunResult{
		ID:       run.ID,
		Dir:      dir,
		BaseSeed: base,
		Games:    results,
		Stats:    Aggregate(results),
	}, nil
}

// makeRunDir creates a new directory named for the current time under parent.
func makeRunDir(parent string, now time.Time) (string, error) {
	if err := os.MkdirAll(parent, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	dir, err := filepath.Abs(filepath.Join(parent, now.Format("20060102-150405.000000")))
	if err != nil {
		return "", fmt.Errorf("failed to resolve run dir: %w", err)
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run dir: %w", err)
	}
	return dir, nil
}

type runner struct {
	cfg        *Config
	run        *namesbench.Run
	cards      []string
	rows, cols int

	// csvMu guards appends to the summary file.
	csvMu       sync.Mutex
	summaryPath string
}

func (r *runner) playGame(ctx context.Context, idx int) *GameResult {
	gr := &GameResult{
		Index: idx,
		Seed:  GameSeed(r.run.BaseSeed, idx),
		Dir:   filepath.Join(r.run.OutDir, fmt.Sprintf("game_%03d", idx)),
	}
	logger := log.With().Int("game", idx).Int64("seed", gr.Seed).Logger()

	rec := &namesbench.Game{
		RunID:  r.run.ID,
		Index:  idx,
		Seed:   gr.Seed,
		Status: namesbench.Playing,
	}
	if r.cfg.DB != nil {
		id, err := r.cfg.DB.NewGame(rec)
		if err != nil {
			gr.Err = fmt.Errorf("failed to record game: %w", err)
			logger.Error().Err(gr.Err).Msg("game failed")
			return gr
		}
		rec.ID = id
	} else {
		rec.ID = namesbench.GameID(uuid.NewString())
	}
	gr.ID = rec.ID

	logger.Info().Int("of", r.cfg.Games).Str("grid", r.run.Grid).Str("model", r.run.Model).Msg("starting game")

	var rounds []*namesbench.Round
	res, err := RunGame(ctx, &GameConfig{
		Cards:            r.cards,
		Rows:             r.rows,
		Cols:             r.cols,
		FriendlyFraction: r.run.FriendlyFraction,
		MaxRounds:        r.cfg.MaxRounds,
		OutDir:           gr.Dir,
		Debug:            r.cfg.Debug,
		Spymaster:        r.cfg.Spymaster,
		Operative:        r.cfg.Operative,
		Progress:         r.cfg.Progress,
		Logger:           &logger,
		OnRound: func(rnd *namesbench.Round) error {
			rounds = append(rounds, rnd)
			if r.cfg.DB != nil {
				if err := r.cfg.DB.AddRound(rec.ID, rnd); err != nil {
					return fmt.Errorf("failed to record round: %w", err)
				}
			}
			for _, o := range r.cfg.Observers {
				o.RoundPlayed(rec.Clone(), rnd.Clone())
			}
			return nil
		},
	}, gr.Seed)

	// The trace is written even for failed games, it's the only record of
	// how far they got.
	if terr := trace.WriteRounds(filepath.Join(gr.Dir, trace.TraceName), rounds); terr != nil && err == nil {
		err = terr
	}
	if err == nil {
		r.csvMu.Lock()
		err = trace.AppendSummary(r.summaryPath, res.Summary)
		r.csvMu.Unlock()
	}

	if err != nil {
		gr.Err = err
		r.fail(rec, err, logger)
		return gr
	}

	gr.Result = res
	rec.Status = namesbench.Finished
	rec.Summary = res.Summary.Clone()
	if r.cfg.DB != nil {
		if err := r.cfg.DB.FinishGame(rec.ID, res.Summary); err != nil {
			logger.Error().Err(err).Msg("failed to record finished game")
		}
	}
	for _, o := range r.cfg.Observers {
		o.GameFinished(rec.Clone())
	}

	logger.Info().
		Float64("score", res.Summary.Score).
		Int("rounds", res.Summary.Rounds).
		Int("correct", res.Summary.CorrectTotal).
		Int("opponent_hits", res.Summary.OpponentHits).
		Bool("truncated", res.Truncated).
		Msg("game finished")
	return gr
}

func (r *runner) fail(rec *namesbench.Game, err error, logger zerolog.Logger) {
	logger.Error().Err(err).Msg("game failed")
	rec.Status = namesbench.Failed
	rec.Error = err.Error()
	if r.cfg.DB != nil {
		if err := r.cfg.DB.FailGame(rec.ID, err); err != nil {
			logger.Error().Err(err).Msg("failed to record failed game")
		}
	}
	for _, o := range r.cfg.Observers {
		o.GameFailed(rec.Clone())
	}
}

// Aggregate computes the run statistics over the games that finished.
func Aggregate(games []*GameResult) Stats {
	var (
		s             Stats
		score, rounds float64
	)
	for _, g := range games {
		if g == nil || g.Result == nil {
			s.Failed++
			continue
		}
		s.Played++
		score += g.Result.Summary.Score
		rounds += float64(g.Result.Summary.Rounds)
		s.TotalOpponentHits += g.Result.Summary.OpponentHits
	}
	if s.Played > 0 {
		s.MeanScore = score / float64(s.Played)
		s.MeanRounds = rounds / float64(s.Played)
	}
	return s
}
