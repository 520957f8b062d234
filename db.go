package namesbench

import (
	"errors"
	"time"
)

var (
	ErrRunNotFound  = errors.New("namesbench: run not found")
	ErrGameNotFound = errors.New("namesbench: game not found")
)

type RunID string
type GameID string

type GameStatus string

const (
	// NoStatus is an error case.
	NoStatus = GameStatus("")
	// Game is still being played.
	Playing = GameStatus("PLAYING")
	// Game reached the end, either by clearing the board or hitting the round
	// cap.
	Finished = GameStatus("FINISHED")
	// Game couldn't be played, see Game.Error.
	Failed = GameStatus("FAILED")
)

// Run is a batch of games played with the same settings.
type Run struct {
	ID               RunID     `json:"id"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	Grid             string    `json:"grid"`
	FriendlyFraction float64   `json:"friendly_fraction"`
	Games            int       `json:"games"`
	BaseSeed         int64     `json:"base_seed"`
	OutDir           string    `json:"out_dir"`
	CreatedAt        time.Time `json:"created_at"`
}

type Game struct {
	ID     GameID     `json:"id"`
	RunID  RunID      `json:"run_id"`
	Index  int        `json:"index"`
	Seed   int64      `json:"seed"`
	Status GameStatus `json:"status"`
	// Summary is only populated for Finished games.
	Summary *Summary `json:"summary,omitempty"`
	// Error is only populated for Failed games.
	Error string `json:"error,omitempty"`
}

// DB stores benchmark runs and everything that happened in them. Implementations
// must be safe to call from multiple goroutines, games in a run can be played
// concurrently.
type DB interface {
	NewRun(*Run) (RunID, error)
	Run(RunID) (*Run, error)
	Runs() ([]*Run, error)

	NewGame(*Game) (GameID, error)
	Game(GameID) (*Game, error)
	Games(RunID) ([]*Game, error)

	AddRound(GameID, *Round) error
	Rounds(GameID) ([]*Round, error)

	FinishGame(GameID, *Summary) error
	FailGame(GameID, error) error
}
