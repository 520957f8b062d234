// Command namesbench runs the picture-card benchmark against a model, or
// against a person at the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bcspragu/namesbench/agent"
	"github.com/bcspragu/namesbench/bench"
	"github.com/bcspragu/namesbench/hub"
	"github.com/bcspragu/namesbench/llm"
	"github.com/bcspragu/namesbench/memdb"
	"github.com/bcspragu/namesbench/sqldb"
	"github.com/bcspragu/namesbench/termio"
	"github.com/bcspragu/namesbench/web"
	"github.com/joho/godotenv"
	"github.com/namsral/flag"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine, keys can come from the real environment.
	_ = godotenv.Load()

	var (
		grid             = flag.String("grid", "2x4", "Grid size, e.g. 2x4 or 5x5")
		games            = flag.Int("games", 1, "Number of games to run")
		model            = flag.String("model", "gpt-4o", "Model name for the selected provider")
		provider         = flag.String("provider", "openai", "Model provider: openai, anthropic, gemini, or human to play from the terminal")
		seed             = flag.String("seed", "", "Base random seed, picked at random if unset")
		friendlyFraction = flag.Float64("friendly_fraction", 0.5, "Fraction of friendly cards")
		deckDir          = flag.String("deck", "deck", "Path to the deck image directory")
		out              = flag.String("out", "out", "Output directory")
		debugImages      = flag.Bool("debug_images", false, "Also write a board image with team colors")
		progress         = flag.Bool("progress", true, "Log every round of every game")
		maxRounds        = flag.Int("max_rounds", bench.DefaultMaxRounds, "Stop a game after this many rounds, 0 for no limit")
		parallel         = flag.Int("parallel", 1, "Number of games to play at once")
		dbPath           = flag.String("db_path", "", "Optional SQLite file to record results in")
		addr             = flag.String("addr", "", "If set, serve live results on this address, e.g. :8080")
		spymasterPrompt  = flag.String("spymaster_prompt", "", "Optional file to read the spymaster system prompt from")
		operativePrompt  = flag.String("operative_prompt", "", "Optional file to read the operative system prompt from")
		apiKey           = flag.String("api_key", "", "API key for the provider, read from the provider's usual environment variable if unset")
		baseURL          = flag.String("base_url", "", "Override the provider's API address")
		timeout          = flag.Duration("timeout", 2*time.Minute, "Timeout for each model call")
		retries          = flag.Int("retries", 2, "Times a failed model call is retried")
		logLevel         = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	setupLogging(*logLevel, *progress)

	cfg := &bench.Config{
		Deck:             *deckDir,
		Grid:             *grid,
		FriendlyFraction: *friendlyFraction,
		Games:            *games,
		MaxRounds:        *maxRounds,
		Parallel:         *parallel,
		OutDir:           *out,
		Debug:            *debugImages,
		Progress:         *progress,
		Provider:         *provider,
		Model:            *model,
	}

	if *seed != "" {
		s, err := strconv.ParseInt(*seed, 10, 64)
		if err != nil {
			log.Fatal().Err(err).Str("seed", *seed).Msg("invalid seed")
		}
		cfg.Seed = &s
	}

	if strings.EqualFold(*provider, "human") {
		_, cols, err := bench.ParseGrid(*grid)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid grid")
		}
		in := bufio.NewReader(os.Stdin)
		cfg.Spymaster = &termio.Spymaster{In: in, Out: os.Stdout, Cols: cols}
		cfg.Operative = &termio.Operative{In: in, Out: os.Stdout}
		// There's only one person at the keyboard.
		cfg.Parallel = 1
		cfg.Model = "human"
	} else {
		key := *apiKey
		for _, env := range llm.KeyEnv(*provider) {
			if key != "" {
				break
			}
			key = os.Getenv(env)
		}
		if key == "" {
			log.Warn().Str("provider", *provider).Strs("env", llm.KeyEnv(*provider)).Msg("no API key found")
		}

		client, err := llm.New(&llm.Config{
			Provider:   *provider,
			Model:      *model,
			APIKey:     key,
			BaseURL:    *baseURL,
			HTTPClient: &http.Client{Timeout: *timeout},
			Retries:    *retries,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create model client")
		}

		smPrompt, err := agent.LoadPrompt(*spymasterPrompt, agent.SpymasterPrompt)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load spymaster prompt")
		}
		opPrompt, err := agent.LoadPrompt(*operativePrompt, agent.OperativePrompt)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load operative prompt")
		}
		cfg.Spymaster = agent.NewSpymaster(client, smPrompt)
		cfg.Operative = agent.NewOperative(client, opPrompt)
	}

	res, err := runBench(cfg, *dbPath, *addr)
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("run interrupted")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to run benchmark")
	}

	printResults(res)
}

// runBench plays the run, with the optional store and live viewer. The store is
// closed before it returns, so callers are free to exit.
func runBench(cfg *bench.Config, dbPath, addr string) (*bench.RunResult, error) {
	if dbPath != "" {
		db, err := sqldb.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize datastore at %q: %w", dbPath, err)
		}
		defer db.Close()
		cfg.DB = db
	}

	if addr != "" {
		if cfg.DB == nil {
			cfg.DB = memdb.New()
		}
		h := hub.New()
		cfg.Observers = append(cfg.Observers, web.NewNotifier(h))
		go serve(addr, web.New(cfg.DB, h))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return bench.Run(ctx, cfg)
}

func setupLogging(level string, console bool) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func serve(addr string, h http.Handler) {
	log.Info().Str("addr", addr).Msg("serving live results")
	if err := http.ListenAndServe(addr, h); err != nil {
		log.Error().Err(err).Msg("results server stopped")
	}
}

func printResults(res *bench.RunResult) {
	fmt.Printf("Output directory: %s\n", res.Dir)
	fmt.Printf("Run %s, base seed %d\n\n", res.ID, res.BaseSeed)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Game", "Seed", "Score", "Rounds", "Correct", "Opponent hits", "Note"})
	for _, g := range res.Games {
		if g.Err != nil {
			table.Append([]string{strconv.Itoa(g.Index + 1), strconv.FormatInt(g.Seed, 10), "-", "-", "-", "-", g.Err.Error()})
			continue
		}
		s := g.Result.Summary
		note := ""
		if g.Result.Truncated {
			note = "hit round limit"
		}
		table.Append([]string{
			strconv.Itoa(g.Index + 1),
			strconv.FormatInt(g.Seed, 10),
			fmt.Sprintf("%.2f", s.Score),
			strconv.Itoa(s.Rounds),
			strconv.Itoa(s.CorrectTotal),
			strconv.Itoa(s.OpponentHits),
			note,
		})
	}
	table.Render()

	st := res.Stats
	if st.Played == 0 {
		fmt.Println("\nNo games finished.")
		return
	}
	fmt.Println("\nAggregate stats:")
	fmt.Printf("Average score: %.2f\n", st.MeanScore)
	fmt.Printf("Average rounds: %.2f\n", st.MeanRounds)
	fmt.Printf("Total opponent hits: %d\n", st.TotalOpponentHits)
	if st.Failed > 0 {
		fmt.Printf("Failed games: %d\n", st.Failed)
	}
}
