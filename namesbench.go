package namesbench

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidConfig is returned when a board or a run can't be set up with
	// the parameters it was given.
	ErrInvalidConfig = errors.New("namesbench: invalid configuration")
	// ErrMalformedResponse is returned when a Spymaster or Operative answer
	// can't be parsed into a clue or a list of guesses at all.
	ErrMalformedResponse = errors.New("namesbench: malformed agent response")
)

type Spymaster interface {
	// GiveClue looks at the board and returns a clue for the Operative.
	GiveClue(ctx context.Context, req *ClueRequest) (*Clue, error)
}

type Operative interface {
	// Guess takes in the board image and a clue and returns the guessed
	// positions, best guess first.
	Guess(ctx context.Context, req *GuessRequest) ([]int, error)
}

// Board contains the hidden team assignment for a game. Positions are
// numbered from 1, position 1 is the top-left card.
type Board struct {
	// Teams[i] is the team of position i+1.
	Teams []Team
}

// Size is the number of positions on the board.
func (b *Board) Size() int {
	return len(b.Teams)
}

// Team returns the team at the given position, or NoTeam if the position isn't
// on the board.
func (b *Board) Team(pos int) Team {
	if pos < 1 || pos > len(b.Teams) {
		return NoTeam
	}
	return b.Teams[pos-1]
}

// Positions returns all of the positions that belong to the given team, in
// ascending order.
func (b *Board) Positions(t Team) []int {
	var out []int
	for i, team := range b.Teams {
		if team == t {
			out = append(out, i+1)
		}
	}
	return out
}

func CloneBoard(b *Board) *Board {
	teams := make([]Team, len(b.Teams))
	copy(teams, b.Teams)
	return &Board{Teams: teams}
}

// Clue is a word and a count from the Spymaster, plus the positions the
// Spymaster says it was aiming for.
type Clue struct {
	Word  string
	Count int
	// Targets is informational only, it never affects scoring.
	Targets []int
}

func (c *Clue) String() string {
	return c.Word + " " + strconv.Itoa(c.Count)
}

// BoardImage is the rendered board that both agents look at.
type BoardImage struct {
	// Path is the composite image, with numbered cards.
	Path string
	// DataURL is the composite image as a base64 data: URL.
	DataURL string
	// DebugPath is only set when a debug image, with team outlines, was
	// requested.
	DebugPath string
}

type ClueRequest struct {
	Round int
	Image *BoardImage
	// Board and Cards are only given to the Spymaster. Cards[i] is the image
	// file at position i+1.
	Board *Board
	Cards []string

	Remaining        []int
	RevealedFriendly []int
	RevealedOpponent []int
}

type GuessRequest struct {
	Round int
	Image *BoardImage
	Clue  string
	// Count is the number of guesses that will be considered, it can be lower
	// than what the Spymaster asked for.
	Count int

	RevealedFriendly []int
	RevealedOpponent []int
	FriendlyTotal    int
	OpponentTotal    int
}

// Round is the record of one clue and the guesses made for it.
type Round struct {
	Number int    `json:"round"`
	Clue   string `json:"clue"`
	Count  int    `json:"count"`
	// Guesses are the guesses that were applied, after removing duplicates and
	// anything past Count.
	Guesses         []int `json:"guesses"`
	IntendedTargets []int `json:"intended_targets"`
	Correct         []int `json:"correct"`
	Wrong           []int `json:"wrong"`
}

// Summary is the outcome of a single game.
type Summary struct {
	Score        float64 `json:"score"`
	Rounds       int     `json:"rounds"`
	CorrectTotal int     `json:"correct_total"`
	OpponentHits int     `json:"opponent_hits"`

	CompositeImage string `json:"composite_image"`
	DebugImage     string `json:"debug_image"`
}

// Team is the affiliation of a position on the board.
type Team int

const (
	// NoTeam means the position isn't on the board.
	NoTeam Team = iota
	// Friendly positions are the ones the Operative is trying to find.
	Friendly
	// Opponent positions cost a point when guessed.
	Opponent
)

func (t Team) String() string {
	switch t {
	case Friendly:
		return "friendly"
	case Opponent:
		return "opponent"
	}
	return "none"
}

func (t Team) MarshalText() ([]byte, error) {
	if t == NoTeam {
		return nil, fmt.Errorf("can't marshal team %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Team) UnmarshalText(dat []byte) error {
	switch string(dat) {
	case "friendly":
		*t = Friendly
	case "opponent":
		*t = Opponent
	default:
		return fmt.Errorf("unknown team %q", string(dat))
	}
	return nil
}
