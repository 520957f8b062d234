package web

import (
	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/hub"
	"github.com/rs/zerolog/log"
)

// Notifier forwards benchmark progress to everyone watching the run.
type Notifier struct {
	h *hub.Hub
}

func NewNotifier(h *hub.Hub) *Notifier {
	return &Notifier{h: h}
}

func (n *Notifier) RoundPlayed(g *namesbench.Game, r *namesbench.Round) {
	n.send(g.RunID, &RoundPlayed{RunID: g.RunID, GameID: g.ID, Game: g.Index, Round: r})
}

func (n *Notifier) GameFinished(g *namesbench.Game) {
	n.send(g.RunID, &GameFinished{RunID: g.RunID, GameID: g.ID, Game: g.Index, Summary: g.Summary})
}

func (n *Notifier) GameFailed(g *namesbench.Game) {
	n.send(g.RunID, &GameFailed{RunID: g.RunID, GameID: g.ID, Game: g.Index, Error: g.Error})
}

func (n *Notifier) send(rID namesbench.RunID, msg interface{}) {
	if err := n.h.ToRun(rID, msg); err != nil {
		log.Error().Err(err).Str("run", string(rID)).Msg("failed to send update")
	}
}
