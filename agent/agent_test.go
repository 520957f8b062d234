package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/llm"
	"github.com/google/go-cmp/cmp"
)

type fakeClient struct {
	resp string
	err  error

	got []*llm.Prompt
}

func (f *fakeClient) Complete(_ context.Context, p *llm.Prompt) (string, error) {
	f.got = append(f.got, p)
	return f.resp, f.err
}

var testImage = &namesbench.BoardImage{Path: "/tmp/board.png", DataURL: "data:image/png;base64,aGVsbG8="}

func TestSpymaster(t *testing.T) {
	fc := &fakeClient{resp: `{"clue": "tide", "count": 2, "targets": [1, 4]}`}
	s := NewSpymaster(fc, "")

	got, err := s.GiveClue(context.Background(), &namesbench.ClueRequest{
		Round:            2,
		Image:            testImage,
		Remaining:        []int{1, 4},
		RevealedFriendly: []int{2},
		RevealedOpponent: []int{},
	})
	if err != nil {
		t.Fatalf("GiveClue: %v", err)
	}

	want := &namesbench.Clue{Word: "tide", Count: 2, Targets: []int{1, 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected clue (-want +got)\n%s", diff)
	}

	if len(fc.got) != 1 {
		t.Fatalf("%d prompts sent, want 1", len(fc.got))
	}
	p := fc.got[0]
	if p.System != strings.TrimSpace(SpymasterPrompt) {
		t.Error("default spymaster prompt wasn't used")
	}
	if p.ImageURL != testImage.DataURL {
		t.Errorf("ImageURL = %q", p.ImageURL)
	}
	for _, want := range []string{"Round: 2", "Remaining friendly indices: [1, 4]", "Revealed friendly: [2]", "Revealed opponent: []"} {
		if !strings.Contains(p.Text, want) {
			t.Errorf("prompt %q doesn't contain %q", p.Text, want)
		}
	}
}

func TestSpymasterErrors(t *testing.T) {
	errAPI := errors.New("api down")
	s := NewSpymaster(&fakeClient{err: errAPI}, "custom")
	if _, err := s.GiveClue(context.Background(), &namesbench.ClueRequest{Image: testImage}); !errors.Is(err, errAPI) {
		t.Errorf("GiveClue = %v, want the client error", err)
	}

	s = NewSpymaster(&fakeClient{resp: "no idea"}, "custom")
	if _, err := s.GiveClue(context.Background(), &namesbench.ClueRequest{Image: testImage}); !errors.Is(err, namesbench.ErrMalformedResponse) {
		t.Errorf("GiveClue = %v, want ErrMalformedResponse", err)
	}

	if _, err := s.GiveClue(context.Background(), &namesbench.ClueRequest{}); err == nil {
		t.Error("GiveClue without an image should fail")
	}
}

func TestOperative(t *testing.T) {
	fc := &fakeClient{resp: "My guesses: [4, 1]"}
	o := NewOperative(fc, "guess well")

	got, err := o.Guess(context.Background(), &namesbench.GuessRequest{
		Round:            1,
		Image:            testImage,
		Clue:             "tide",
		Count:            2,
		RevealedFriendly: []int{},
		RevealedOpponent: []int{3},
		FriendlyTotal:    4,
		OpponentTotal:    4,
	})
	if err != nil {
		t.Fatalf("Guess: %v", err)
	}
	if diff := cmp.Diff([]int{4, 1}, got); diff != "" {
		t.Errorf("unexpected guesses (-want +got)\n%s", diff)
	}

	p := fc.got[0]
	if p.System != "guess well" {
		t.Errorf("System = %q, want the custom prompt", p.System)
	}
	for _, want := range []string{"Clue: tide", "Count: 2", "Revealed opponent: [3]", "friendly: 4, opponent: 4"} {
		if !strings.Contains(p.Text, want) {
			t.Errorf("prompt %q doesn't contain %q", p.Text, want)
		}
	}
}

func TestLoadPrompt(t *testing.T) {
	got, err := LoadPrompt("", "\n  default\n")
	if err != nil {
		t.Fatalf("LoadPrompt: %v", err)
	}
	if got != "default" {
		t.Errorf("LoadPrompt(\"\") = %q, want %q", got, "default")
	}

	path := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(path, []byte("from a file\n"), 0644); err != nil {
		t.Fatalf("failed to write prompt: %v", err)
	}
	if got, err = LoadPrompt(path, "default"); err != nil || got != "from a file" {
		t.Errorf("LoadPrompt(%q) = %q, %v", path, got, err)
	}

	if _, err := LoadPrompt(filepath.Join(t.TempDir(), "missing"), "default"); err == nil {
		t.Error("LoadPrompt of a missing file should fail")
	}
}
