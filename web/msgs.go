package web

import (
	"encoding/json"
	"fmt"

	"github.com/bcspragu/namesbench"
)

const (
	ActionRoundPlayed  = "ROUND_PLAYED"
	ActionGameFinished = "GAME_FINISHED"
	ActionGameFailed   = "GAME_FAILED"
)

type RoundPlayed struct {
	RunID  namesbench.RunID  `json:"run_id"`
	GameID namesbench.GameID `json:"game_id"`
	// Game is the index of the game in the run.
	Game  int               `json:"game"`
	Round *namesbench.Round `json:"round"`
}

func (rp *RoundPlayed) MarshalJSON() ([]byte, error) {
	type alias RoundPlayed
	return withAction(ActionRoundPlayed, (*alias)(rp))
}

type GameFinished struct {
	RunID   namesbench.RunID    `json:"run_id"`
	GameID  namesbench.GameID   `json:"game_id"`
	Game    int                 `json:"game"`
	Summary *namesbench.Summary `json:"summary"`
}

func (gf *GameFinished) MarshalJSON() ([]byte, error) {
	type alias GameFinished
	return withAction(ActionGameFinished, (*alias)(gf))
}

type GameFailed struct {
	RunID  namesbench.RunID  `json:"run_id"`
	GameID namesbench.GameID `json:"game_id"`
	Game   int               `json:"game"`
	Error  string            `json:"error"`
}

func (gf *GameFailed) MarshalJSON() ([]byte, error) {
	type alias GameFailed
	return withAction(ActionGameFailed, (*alias)(gf))
}

// withAction adds an "action" field to the JSON object msg encodes to, which
// is how clients tell messages apart. msg must not implement json.Marshaler
// itself, or this recurses forever.
func withAction(action string, msg interface{}) ([]byte, error) {
	dat, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(dat, &fields); err != nil {
		return nil, fmt.Errorf("message isn't a JSON object: %w", err)
	}
	if fields["action"], err = json.Marshal(action); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}
