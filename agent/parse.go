package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bcspragu/namesbench"
)

var (
	// Clue: Tide - 3, also accepting a colon or no separator before the count.
	clueLine    = regexp.MustCompile(`(?i)clue\s*:\s*"?([^\s"\-:]+)"?\s*[-:]?\s*(\d+)`)
	targetsLine = regexp.MustCompile(`(?i)targets?\s*:\s*\[([^\]]*)\]`)
	guessesLine = regexp.MustCompile(`(?i)guess(?:es)?\s*:\s*\[([^\]]*)\]`)
	anyList     = regexp.MustCompile(`\[([^\]]*)\]`)
	jsonObject  = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseClue reads a Spymaster answer, either as JSON like
//
//	{"clue": "tide", "count": 2, "targets": [3, 7]}
//
// or as text like
//
//	Clue: Tide - 2
//	Targets: [3, 7]
//
// The count must be at least one. Targets are optional and any non-numbers in
// them are dropped.
func ParseClue(s string) (*namesbench.Clue, error) {
	if obj := jsonObject.FindString(s); obj != "" {
		var resp struct {
			Clue    string            `json:"clue"`
			Count   json.Number       `json:"count"`
			Targets []json.RawMessage `json:"targets"`
		}
		if err := json.Unmarshal([]byte(obj), &resp); err == nil && resp.Clue != "" {
			n, err := strconv.Atoi(resp.Count.String())
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: clue count %q isn't a positive number", namesbench.ErrMalformedResponse, resp.Count)
			}
			return &namesbench.Clue{
				Word:    strings.TrimSpace(resp.Clue),
				Count:   n,
				Targets: rawInts(resp.Targets),
			}, nil
		}
	}

	m := clueLine.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: no clue found in %q", namesbench.ErrMalformedResponse, s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: clue count %q isn't a positive number", namesbench.ErrMalformedResponse, m[2])
	}

	clue := &namesbench.Clue{Word: m[1], Count: n, Targets: []int{}}
	if tm := targetsLine.FindStringSubmatch(s); tm != nil {
		clue.Targets = listInts(tm[1])
	}
	return clue, nil
}

// ParseGuesses reads an Operative answer, either as JSON like
//
//	{"guesses": [4, 1]}
//
// or as text with a bracketed list, preferably labelled, like
//
//	My guesses: [4, 1]
//
// Entries that aren't numbers are dropped. Nothing else is checked here,
// duplicates and positions that aren't on the board are left for the game to
// score.
func ParseGuesses(s string) ([]int, error) {
	if obj := jsonObject.FindString(s); obj != "" {
		var resp struct {
			Guesses []json.RawMessage `json:"guesses"`
		}
		if err := json.Unmarshal([]byte(obj), &resp); err == nil && resp.Guesses != nil {
			return rawInts(resp.Guesses), nil
		}
	}

	if m := guessesLine.FindStringSubmatch(s); m != nil {
		return listInts(m[1]), nil
	}
	if m := anyList.FindStringSubmatch(s); m != nil {
		return listInts(m[1]), nil
	}
	return nil, fmt.Errorf("%w: no guesses found in %q", namesbench.ErrMalformedResponse, s)
}

// rawInts keeps the entries of a JSON list that are integers, or strings
// holding integers.
func rawInts(raw []json.RawMessage) []int {
	out := []int{}
	for _, r := range raw {
		if strings.TrimSpace(string(r)) == "null" {
			continue
		}
		var n int
		if err := json.Unmarshal(r, &n); err == nil {
			out = append(out, n)
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				out = append(out, n)
			}
		}
	}
	return out
}

func listInts(list string) []int {
	out := []int{}
	for _, f := range strings.Split(list, ",") {
		f = strings.Trim(strings.TrimSpace(f), `"'`)
		if n, err := strconv.Atoi(f); err == nil {
			out = append(out, n)
		}
	}
	return out
}
