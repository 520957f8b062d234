// Command namesbench-watch prints live updates from a run being served with
// namesbench --addr.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/client"
	"github.com/bcspragu/namesbench/web"
	"github.com/namsral/flag"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		serverScheme = flag.String("server_scheme", "http", "The scheme of the server to connect to")
		serverAddr   = flag.String("server_addr", "localhost:8080", "The address of the server to connect to")
		runID        = flag.String("run", "", "The ID of the run to watch, the most recent run if blank")
	)
	flag.Parse()

	c := client.New(*serverScheme, *serverAddr)

	rID := namesbench.RunID(*runID)
	if rID == "" {
		runs, err := c.Runs()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load runs")
		}
		if len(runs) == 0 {
			log.Fatal().Msg("no runs to watch")
		}
		rID = runs[0].ID
	}

	rd, err := c.Run(rID)
	if err != nil {
		log.Fatal().Err(err).Str("run", string(rID)).Msg("failed to load run")
	}
	printGames(rd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = c.ListenForUpdates(ctx, rID, client.WSHooks{
		OnConnect: func() {
			fmt.Printf("Watching run %s (%s, %s)\n", rID, rd.Run.Model, rd.Run.Grid)
		},
		OnRoundPlayed: func(rp *web.RoundPlayed) {
			r := rp.Round
			if r == nil {
				return
			}
			fmt.Printf("[game %d, round %d] %s %d: guessed %v, correct %v, wrong %v\n",
				rp.Game+1, r.Number, r.Clue, r.Count, r.Guesses, r.Correct, r.Wrong)
		},
		OnGameFinished: func(gf *web.GameFinished) {
			s := gf.Summary
			if s == nil {
				fmt.Printf("[game %d] finished\n", gf.Game+1)
				return
			}
			fmt.Printf("[game %d] finished: score=%.2f rounds=%d correct=%d opponent_hits=%d\n",
				gf.Game+1, s.Score, s.Rounds, s.CorrectTotal, s.OpponentHits)
		},
		OnGameFailed: func(gf *web.GameFailed) {
			fmt.Printf("[game %d] failed: %s\n", gf.Game+1, gf.Error)
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("stopped watching")
	}
}

func printGames(rd *web.RunDetails) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Game", "Seed", "Status", "Score"})
	for _, g := range rd.Games {
		score := "-"
		if g.Summary != nil {
			score = fmt.Sprintf("%.2f", g.Summary.Score)
		}
		table.Append([]string{fmt.Sprint(g.Index + 1), fmt.Sprint(g.Seed), string(g.Status), score})
	}
	table.Render()
}
