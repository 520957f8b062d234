// Package deck loads the picture cards that boards are built from.
package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrNoDeck    = errors.New("deck: deck directory not found")
	ErrEmptyDeck = errors.New("deck: no images in deck")
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// Load returns the paths of every card image in dir, sorted by name.
func Load(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if os.IsNotExist(err) || (err == nil && !fi.IsDir()) {
		return nil, fmt.Errorf("%w: %s", ErrNoDeck, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat deck %q: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck %q: %w", dir, err)
	}

	var cards []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		cards = append(cards, filepath.Join(dir, e.Name()))
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDeck, dir)
	}
	sort.Strings(cards)

	log.Debug().Str("deck", dir).Int("cards", len(cards)).Msg("loaded deck")
	return cards, nil
}

// Sample picks n distinct cards in a random order.
func Sample(r *rand.Rand, cards []string, n int) ([]string, error) {
	if n > len(cards) {
		return nil, fmt.Errorf("need %d cards for the board, deck only has %d", n, len(cards))
	}
	out := make([]string, n)
	for i, idx := range r.Perm(len(cards))[:n] {
		out[i] = cards[idx]
	}
	return out, nil
}
