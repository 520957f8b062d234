package deck

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.jpeg", "d.webp", "notes.txt", "e.gif"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("failed to write %q: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatalf("failed to make dir: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.jpeg"),
		filepath.Join(dir, "d.webp"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected cards (-want +got)\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrNoDeck) {
		t.Errorf("Load(missing) = %v, want ErrNoDeck", err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), nil, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := Load(dir); !errors.Is(err, ErrEmptyDeck) {
		t.Errorf("Load(no images) = %v, want ErrEmptyDeck", err)
	}
}

func TestSample(t *testing.T) {
	cards := []string{"a", "b", "c", "d", "e", "f"}

	got, err := Sample(rand.New(rand.NewSource(3)), cards, 4)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d cards, want 4", len(got))
	}
	seen := make(map[string]bool)
	for _, c := range got {
		if seen[c] {
			t.Errorf("card %q picked twice", c)
		}
		seen[c] = true
	}

	again, err := Sample(rand.New(rand.NewSource(3)), cards, 4)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("same seed gave different samples (-first +second)\n%s", diff)
	}

	if _, err := Sample(rand.New(rand.NewSource(0)), cards, 7); err == nil {
		t.Error("expected an error sampling more cards than the deck has")
	}
}
