// Command boardgen prints a team assignment, like 1:friendly,2:opponent,...
package main

import (
	"bytes"
	"fmt"
	"math/rand"

	"github.com/bcspragu/namesbench/bench"
	"github.com/bcspragu/namesbench/boardgen"
	"github.com/bcspragu/namesbench/cryptorand"
	"github.com/namsral/flag"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		grid             = flag.String("grid", "5x5", "Grid size, e.g. 2x4 or 5x5")
		friendlyFraction = flag.Float64("friendly_fraction", 0.5, "Fraction of friendly cards")
		seed             = flag.Int64("seed", -1, "Random seed, a negative seed means a random board")
	)
	flag.Parse()

	rows, cols, err := bench.ParseGrid(*grid)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid grid")
	}

	var r *rand.Rand
	if *seed >= 0 {
		r = rand.New(rand.NewSource(*seed))
	} else {
		r = rand.New(cryptorand.NewSource())
	}

	bd, err := boardgen.New(rows*cols, *friendlyFraction, r)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate board")
	}

	var buf bytes.Buffer
	for i, t := range bd.Teams {
		buf.WriteString(fmt.Sprintf("%d:%s", i+1, t))
		if i != len(bd.Teams)-1 {
			buf.WriteString(",")
		}
	}

	fmt.Println(buf.String())
}
