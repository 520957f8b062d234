// Package trace writes the on-disk record of a benchmark run: a JSONL file of
// rounds for every game, and a CSV with one summary row per game.
package trace

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bcspragu/namesbench"
)

const (
	TraceName   = "trace.jsonl"
	SummaryName = "summary.csv"
)

// SummaryHeader is the first row of every summary CSV.
var SummaryHeader = []string{"score", "rounds", "correct_total", "opponent_hits", "composite_image", "debug_image"}

// WriteRounds writes one JSON object per line for each round, in order,
// replacing anything already at path.
func WriteRounds(path string, rounds []*namesbench.Round) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create trace dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace: %w", err)
	}

	enc := json.NewEncoder(f)
	for _, r := range rounds {
		if err := enc.Encode(r.Clone()); err != nil {
			f.Close()
			return fmt.Errorf("failed to write round %d: %w", r.Number, err)
		}
	}
	return f.Close()
}

// ReadRounds reads back a file written by WriteRounds.
func ReadRounds(path string) ([]*namesbench.Round, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	var out []*namesbench.Round
	dec := json.NewDecoder(f)
	for dec.More() {
		var r namesbench.Round
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to read round %d: %w", len(out)+1, err)
		}
		out = append(out, &r)
	}
	return out, nil
}

// AppendSummary adds a row for one game to the CSV at path, writing the header
// first if the file doesn't exist yet. Callers writing to the same file from
// multiple goroutines need to serialize their calls.
func AppendSummary(path string, s *namesbench.Summary) error {
	_, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat summary: %w", err)
	}
	isNew := err != nil

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open summary: %w", err)
	}

	w := csv.NewWriter(f)
	if isNew {
		w.Write(SummaryHeader)
	}
	w.Write(summaryRow(s))
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return f.Close()
}

// ReadSummaries reads back every row written by AppendSummary.
func ReadSummaries(path string) ([]*namesbench.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary: %w", err)
	}
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}

	var out []*namesbench.Summary
	for i, rec := range recs[1:] {
		s, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("bad summary row %d: %w", i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func summaryRow(s *namesbench.Summary) []string {
	return []string{
		strconv.FormatFloat(s.Score, 'f', -1, 64),
		strconv.Itoa(s.Rounds),
		strconv.Itoa(s.CorrectTotal),
		strconv.Itoa(s.OpponentHits),
		s.CompositeImage,
		s.DebugImage,
	}
}

func parseRow(rec []string) (*namesbench.Summary, error) {
	if len(rec) != len(SummaryHeader) {
		return nil, fmt.Errorf("got %d fields, want %d", len(rec), len(SummaryHeader))
	}
	score, err := strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return nil, fmt.Errorf("bad score: %w", err)
	}
	ints := make([]int, 3)
	for i := range ints {
		if ints[i], err = strconv.Atoi(rec[i+1]); err != nil {
			return nil, fmt.Errorf("bad %s: %w", SummaryHeader[i+1], err)
		}
	}
	return &namesbench.Summary{
		Score:          score,
		Rounds:         ints[0],
		CorrectTotal:   ints[1],
		OpponentHits:   ints[2],
		CompositeImage: rec[4],
		DebugImage:     rec[5],
	}, nil
}
