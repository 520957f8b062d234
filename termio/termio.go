// Package termio has a Spymaster and Operative that are played by a person at
// the terminal.
package termio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/agent"
	"github.com/olekukonko/tablewriter"
)

// Spymaster asks the user on the terminal to enter a clue. The board is
// printed first, with every card colored by its team.
type Spymaster struct {
	// In is where the user's clue is read from. It buffers ahead, so it has to
	// be the same reader the Operative uses.
	In *bufio.Reader
	// Out is where the board and prompts are written out to.
	Out io.Writer
	// Cols is the number of cards per row on the board.
	Cols int
}

func (s *Spymaster) GiveClue(_ context.Context, req *namesbench.ClueRequest) (*namesbench.Clue, error) {
	s.printBoard(req)
	if req.Image != nil {
		fmt.Fprintf(s.Out, "Board image: %s\n", req.Image.Path)
	}
	fmt.Fprintf(s.Out, "Round %d Spymaster, enter a clue [ex. 'Muffins 3']: ", req.Round)

	line, err := readLine(s.In)
	if err != nil {
		return nil, err
	}
	return parseClue(line)
}

func (s *Spymaster) printBoard(req *namesbench.ClueRequest) {
	if req.Board == nil {
		return
	}
	cols := s.Cols
	if cols < 1 {
		cols = req.Board.Size()
	}

	revealed := make(map[int]bool)
	for _, p := range req.RevealedFriendly {
		revealed[p] = true
	}
	for _, p := range req.RevealedOpponent {
		revealed[p] = true
	}

	table := tablewriter.NewWriter(s.Out)
	for start := 1; start <= req.Board.Size(); start += cols {
		var row []string
		var colors []tablewriter.Colors
		for pos := start; pos < start+cols && pos <= req.Board.Size(); pos++ {
			var c tablewriter.Colors
			switch req.Board.Team(pos) {
			case namesbench.Friendly:
				c = append(c, tablewriter.FgGreenColor)
			case namesbench.Opponent:
				c = append(c, tablewriter.FgHiRedColor)
			}
			if revealed[pos] {
				c = append(c, tablewriter.UnderlineSingle)
			}
			colors = append(colors, c)
			row = append(row, cardLabel(req.Cards, pos))
		}
		table.Rich(row, colors)
	}

	table.Render()
}

func cardLabel(cards []string, pos int) string {
	if pos > len(cards) {
		return strconv.Itoa(pos)
	}
	return fmt.Sprintf("%d: %s", pos, filepath.Base(cards[pos-1]))
}

// Operative asks the user on the terminal to enter their guesses.
type Operative struct {
	// In is where the user's guesses are read from, shared with the Spymaster.
	In *bufio.Reader
	// Out is where the prompts should be written out to.
	Out io.Writer
}

func (o *Operative) Guess(_ context.Context, req *namesbench.GuessRequest) ([]int, error) {
	if req.Image != nil {
		fmt.Fprintf(o.Out, "Board image: %s\n", req.Image.Path)
	}
	fmt.Fprintf(o.Out, "Revealed friendly: %v, revealed opponent: %v\n", req.RevealedFriendly, req.RevealedOpponent)
	fmt.Fprintf(o.Out, "Operative, enter up to %d positions for hint '%s %d' [ex. '4, 1']: ", req.Count, req.Clue, req.Count)

	line, err := readLine(o.In)
	if err != nil {
		return nil, err
	}
	return parseGuesses(line)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if errors.Is(err, io.EOF) {
		// A last line without a newline still counts.
		if line == "" {
			return "", io.ErrUnexpectedEOF
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// parseClue accepts 'Muffins 3', and anything the model agents accept.
func parseClue(line string) (*namesbench.Clue, error) {
	fields := strings.Fields(line)
	if len(fields) == 2 {
		if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
			return &namesbench.Clue{Word: fields[0], Count: n, Targets: []int{}}, nil
		}
	}
	return agent.ParseClue(line)
}

func parseGuesses(line string) ([]int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := []int{}
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return agent.ParseGuesses(line)
		}
		out = append(out, n)
	}
	return out, nil
}
