// Package agent implements the Spymaster and Operative roles on top of a
// multimodal chat model.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/llm"
	"github.com/rs/zerolog/log"
)

var errNoImage = errors.New("agent: no board image given")

// LoadPrompt returns the contents of path, or def if path is empty.
func LoadPrompt(path, def string) (string, error) {
	if path == "" {
		return strings.TrimSpace(def), nil
	}
	dat, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %q: %w", path, err)
	}
	return strings.TrimSpace(string(dat)), nil
}

type Spymaster struct {
	client llm.Client
	prompt string
}

// NewSpymaster returns a Spymaster that asks the given model for clues. An
// empty prompt uses SpymasterPrompt.
func NewSpymaster(c llm.Client, prompt string) *Spymaster {
	if prompt == "" {
		prompt = strings.TrimSpace(SpymasterPrompt)
	}
	return &Spymaster{client: c, prompt: prompt}
}

func (s *Spymaster) GiveClue(ctx context.Context, req *namesbench.ClueRequest) (*namesbench.Clue, error) {
	if req.Image == nil || req.Image.DataURL == "" {
		return nil, errNoImage
	}

	text := fmt.Sprintf("Round: %d\n"+
		"Remaining friendly indices: %s\n"+
		"Revealed friendly: %s\n"+
		"Revealed opponent: %s\n\n"+
		"Return your clue as JSON, or using the format 'Clue: <one-word> - <number>'.",
		req.Round, intList(req.Remaining), intList(req.RevealedFriendly), intList(req.RevealedOpponent))

	resp, err := s.client.Complete(ctx, &llm.Prompt{
		System:   s.prompt,
		Text:     text,
		ImageURL: req.Image.DataURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get clue: %w", err)
	}
	log.Debug().Int("round", req.Round).Str("response", resp).Msg("spymaster response")

	return ParseClue(resp)
}

type Operative struct {
	client llm.Client
	prompt string
}

// NewOperative returns an Operative that asks the given model for guesses. An
// empty prompt uses OperativePrompt.
func NewOperative(c llm.Client, prompt string) *Operative {
	if prompt == "" {
		prompt = strings.TrimSpace(OperativePrompt)
	}
	return &Operative{client: c, prompt: prompt}
}

func (o *Operative) Guess(ctx context.Context, req *namesbench.GuessRequest) ([]int, error) {
	if req.Image == nil || req.Image.DataURL == "" {
		return nil, errNoImage
	}

	text := fmt.Sprintf("Clue: %s\n"+
		"Count: %d\n"+
		"Revealed friendly: %s\n"+
		"Revealed opponent: %s\n"+
		"Totals at start - friendly: %d, opponent: %d\n\n"+
		"Respond with JSON, or with 'My guesses: [<index1>, <index2>, ...]' using up to %d distinct indices.",
		req.Clue, req.Count, intList(req.RevealedFriendly), intList(req.RevealedOpponent),
		req.FriendlyTotal, req.OpponentTotal, req.Count)

	resp, err := o.client.Complete(ctx, &llm.Prompt{
		System:   o.prompt,
		Text:     text,
		ImageURL: req.Image.DataURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get guesses: %w", err)
	}
	log.Debug().Int("round", req.Round).Str("response", resp).Msg("operative response")

	return ParseGuesses(resp)
}

// intList formats positions the way they're shown in the prompts, [1, 2, 3].
func intList(ps []int) string {
	strs := make([]string, len(ps))
	for i, p := range ps {
		strs[i] = fmt.Sprint(p)
	}
	return "[" + strings.Join(strs, ", ") + "]"
}
