package bench

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/boardgen"
	"github.com/bcspragu/namesbench/deck"
	"github.com/bcspragu/namesbench/game"
	"github.com/bcspragu/namesbench/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// GameConfig is everything needed to play a single game.
type GameConfig struct {
	// Cards is the whole deck, the game samples Rows*Cols of them.
	Cards      []string
	Rows, Cols int

	FriendlyFraction float64
	// MaxRounds stops a game that hasn't found every friendly card after that
	// many rounds. Zero means no limit.
	MaxRounds int
	// OutDir is where the board images for this game are written.
	OutDir string
	Debug  bool

	Spymaster namesbench.Spymaster
	Operative namesbench.Operative

	// OnRound, if set, is called after every round. An error stops the game.
	OnRound func(*namesbench.Round) error
	// Progress logs every round at info level instead of debug.
	Progress bool
	// Logger is used for per-round logging, the global logger if nil.
	Logger *zerolog.Logger
}

// Result is the outcome of one game.
type Result struct {
	Summary *namesbench.Summary
	Rounds  []*namesbench.Round
	Seed    int64
	Board   *namesbench.Board
	// Cards[i] is the card at position i+1.
	Cards []string
	// Truncated is set when the game hit MaxRounds before finding every
	// friendly card.
	Truncated bool
}

// RunGame plays a single game to completion. The cards and the team assignment
// both come from one random source seeded with seed, so the same seed and deck
// always produce the same board.
func RunGame(ctx context.Context, cfg *GameConfig, seed int64) (*Result, error) {
	if cfg.Spymaster == nil || cfg.Operative == nil {
		return nil, fmt.Errorf("%w: a game needs a spymaster and an operative", namesbench.ErrInvalidConfig)
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	r := rand.New(rand.NewSource(seed))
	cards, err := deck.Sample(r, cfg.Cards, cfg.Rows*cfg.Cols)
	if err != nil {
		return nil, fmt.Errorf("failed to pick cards: %w", err)
	}
	b, err := boardgen.New(len(cards), cfg.FriendlyFraction, r)
	if err != nil {
		return nil, fmt.Errorf("failed to assign teams: %w", err)
	}

	img, err := render.Build(&render.Config{
		Cards:  cards,
		Rows:   cfg.Rows,
		Cols:   cfg.Cols,
		OutDir: cfg.OutDir,
		Board:  b,
		Debug:  cfg.Debug,
	})
	if err != nil {
		return nil, err
	}

	g, err := game.New(b)
	if err != nil {
		return nil, err
	}

	res := &Result{Seed: seed, Board: b, Cards: cards}
	for !g.IsComplete() {
		if cfg.MaxRounds > 0 && g.Round() >= cfg.MaxRounds {
			res.Truncated = true
			logger.Warn().Int("max_rounds", cfg.MaxRounds).Ints("remaining", g.Remaining()).Msg("game hit the round limit")
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		round := g.NextRound()
		clue, err := cfg.Spymaster.GiveClue(ctx, &namesbench.ClueRequest{
			Round:            round,
			Image:            img,
			Board:            namesbench.CloneBoard(b),
			Cards:            cards,
			Remaining:        g.Remaining(),
			RevealedFriendly: g.RevealedFriendly(),
			RevealedOpponent: g.RevealedOpponent(),
		})
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		if clue == nil {
			return nil, fmt.Errorf("round %d: %w: no clue given", round, namesbench.ErrMalformedResponse)
		}
		progress(logger, cfg.Progress).
			Int("round", round).
			Str("clue", clue.Word).
			Int("count", clue.Count).
			Ints("targets", clue.Targets).
			Msg("clue")

		// The Operative is never asked for more guesses than there are friendly
		// cards left.
		count := clue.Count
		if left := len(g.Remaining()); count > left {
			count = left
		}

		guesses, err := cfg.Operative.Guess(ctx, &namesbench.GuessRequest{
			Round:            round,
			Image:            img,
			Clue:             clue.Word,
			Count:            count,
			RevealedFriendly: g.RevealedFriendly(),
			RevealedOpponent: g.RevealedOpponent(),
			FriendlyTotal:    g.FriendlyTotal(),
			OpponentTotal:    g.OpponentTotal(),
		})
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		progress(logger, cfg.Progress).Int("round", round).Ints("guesses", guesses).Msg("guesses")

		rec, err := g.ApplyRound(&namesbench.Clue{Word: clue.Word, Count: count, Targets: clue.Targets}, guesses)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		progress(logger, cfg.Progress).
			Int("round", round).
			Ints("correct", rec.Correct).
			Ints("wrong", rec.Wrong).
			Msg("result")

		res.Rounds = append(res.Rounds, rec)
		if cfg.OnRound != nil {
			if err := cfg.OnRound(rec); err != nil {
				return nil, fmt.Errorf("round %d: %w", round, err)
			}
		}
	}

	res.Summary = g.Summary()
	res.Summary.CompositeImage = img.Path
	res.Summary.DebugImage = img.DebugPath
	return res, nil
}

func progress(l zerolog.Logger, on bool) *zerolog.Event {
	if on {
		return l.Info()
	}
	return l.Debug()
}
