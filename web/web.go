// Package web serves benchmark results over HTTP, and live updates for runs in
// progress over websockets.
package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/httperr"
	"github.com/bcspragu/namesbench/hub"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Srv struct {
	h    *hub.Hub
	mux  *mux.Router
	db   namesbench.DB
	tmpl *template.Template

	upgrader websocket.Upgrader
}

// RunDetails is a run and every game in it.
type RunDetails struct {
	Run   *namesbench.Run    `json:"run"`
	Games []*namesbench.Game `json:"games"`
}

// GameDetails is a game and every round played in it so far.
type GameDetails struct {
	Game   *namesbench.Game    `json:"game"`
	Rounds []*namesbench.Round `json:"rounds"`
}

// New returns an initialized server.
func New(db namesbench.DB, h *hub.Hub) *Srv {
	s := &Srv{
		h:    h,
		db:   db,
		tmpl: template.Must(template.New("index").Funcs(tmplFuncs).Parse(indexTmpl)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The viewer is read-only, any page can watch a run.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.mux = s.initMux()

	return s
}

func (s *Srv) initMux() *mux.Router {
	m := mux.NewRouter()
	// Overview page.
	m.HandleFunc("/", s.handleError(s.serveIndex)).Methods("GET")
	// All runs.
	m.HandleFunc("/api/runs", s.handleError(s.serveRuns)).Methods("GET")
	// A run and its games.
	m.HandleFunc("/api/runs/{id}", s.handleError(s.serveRun)).Methods("GET")
	// A game and its rounds.
	m.HandleFunc("/api/games/{id}", s.handleError(s.serveGame)).Methods("GET")

	// WebSocket handler for runs.
	m.HandleFunc("/api/runs/{id}/ws", s.handleError(s.serveData)).Methods("GET")

	return m
}

func (s *Srv) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Srv) serveRuns(w http.ResponseWriter, r *http.Request) error {
	runs, err := s.db.Runs()
	if err != nil {
		return httperr.Internal("failed to load runs: %w", err)
	}
	if runs == nil {
		runs = []*namesbench.Run{}
	}

	jsonResp(w, runs)
	return nil
}

func (s *Srv) serveRun(w http.ResponseWriter, r *http.Request) error {
	rd, err := s.runDetails(namesbench.RunID(mux.Vars(r)["id"]))
	if err != nil {
		return err
	}

	jsonResp(w, rd)
	return nil
}

func (s *Srv) runDetails(rID namesbench.RunID) (*RunDetails, error) {
	run, err := s.db.Run(rID)
	if errors.Is(err, namesbench.ErrRunNotFound) {
		return nil, httperr.NotFound("run %q not found", rID).WithMessage("run not found")
	}
	if err != nil {
		return nil, httperr.Internal("failed to load run %q: %w", rID, err)
	}

	games, err := s.db.Games(rID)
	if err != nil {
		return nil, httperr.Internal("failed to load games for run %q: %w", rID, err)
	}
	return &RunDetails{Run: run, Games: games}, nil
}

func (s *Srv) serveGame(w http.ResponseWriter, r *http.Request) error {
	gID := namesbench.GameID(mux.Vars(r)["id"])

	g, err := s.db.Game(gID)
	if errors.Is(err, namesbench.ErrGameNotFound) {
		return httperr.NotFound("game %q not found", gID).WithMessage("game not found")
	}
	if err != nil {
		return httperr.Internal("failed to load game %q: %w", gID, err)
	}

	rounds, err := s.db.Rounds(gID)
	if err != nil {
		return httperr.Internal("failed to load rounds for game %q: %w", gID, err)
	}

	jsonResp(w, &GameDetails{Game: g, Rounds: rounds})
	return nil
}

func (s *Srv) serveData(w http.ResponseWriter, r *http.Request) error {
	rID := namesbench.RunID(mux.Vars(r)["id"])

	if _, err := s.db.Run(rID); errors.Is(err, namesbench.ErrRunNotFound) {
		return httperr.NotFound("run %q not found", rID).WithMessage("run not found")
	} else if err != nil {
		return httperr.Internal("failed to load run %q: %w", rID, err)
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		log.Warn().Err(err).Str("run", string(rID)).Msg("failed to upgrade websocket")
		return nil
	}

	s.h.Register(ws, rID)
	return nil
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Srv) handleError(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		code, userMsg := httperr.Extract(err)
		ev := log.Warn()
		if code >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Err(err).Str("path", r.URL.Path).Int("code", code).Msg("request failed")

		http.Error(w, userMsg, code)
	}
}

func jsonResp(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("jsonResp")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
