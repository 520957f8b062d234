// Command namesbench-server serves the results recorded in a SQLite file.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcspragu/namesbench/hub"
	"github.com/bcspragu/namesbench/sqldb"
	"github.com/bcspragu/namesbench/web"
	"github.com/joho/godotenv"
	"github.com/namsral/flag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	var (
		addr     = flag.String("addr", ":8080", "HTTP service address")
		dbPath   = flag.String("db_path", "namesbench.db", "Path to the SQLite DB file")
		logLevel = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := sqldb.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", *dbPath).Msg("failed to initialize datastore")
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		db.Close()
		os.Exit(1)
	}()

	log.Info().Str("addr", *addr).Msg("server is running")
	if err := http.ListenAndServe(*addr, web.New(db, hub.New())); err != nil {
		log.Fatal().Err(err).Msg("ListenAndServe")
	}
}
