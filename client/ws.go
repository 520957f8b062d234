package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bcspragu/namesbench"
	"github.com/bcspragu/namesbench/web"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type WSHooks struct {
	OnConnect      func()
	OnRoundPlayed  func(*web.RoundPlayed)
	OnGameFinished func(*web.GameFinished)
	OnGameFailed   func(*web.GameFailed)
}

type wsClient struct {
	conn  *websocket.Conn
	msgs  chan []byte
	hooks WSHooks
}

// ListenForUpdates calls hooks for every update about the run, until ctx is
// done or the connection drops. Hooks are called one at a time, in the order
// the updates arrive.
func (c *Client) ListenForUpdates(ctx context.Context, rID namesbench.RunID, hooks WSHooks) error {
	scheme := "ws"
	if c.scheme == "https" {
		scheme = "wss"
	}

	addr := scheme + "://" + c.addr + "/api/runs/" + url.PathEscape(string(rID)) + "/ws"

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer conn.Close()

	if hooks.OnConnect != nil {
		go hooks.OnConnect()
	}

	wsc := &wsClient{
		conn: conn,
		// Buffered so a slow hook doesn't stall reading, the server drops
		// watchers that fall too far behind.
		msgs:  make(chan []byte, 100),
		hooks: hooks,
	}

	handled := make(chan struct{})
	go func() {
		defer close(handled)
		wsc.handleMessages()
	}()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	err = wsc.read()
	<-handled
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (ws *wsClient) read() error {
	defer close(ws.msgs)
	for {
		messageType, message, err := ws.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("ReadMessage: %w", err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		ws.msgs <- message
	}
}

func (ws *wsClient) handleMessages() {
	for msg := range ws.msgs {
		var justAction struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(msg, &justAction); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal action from server")
			continue
		}

		switch justAction.Action {
		case web.ActionRoundPlayed:
			handle(msg, ws.hooks.OnRoundPlayed)
		case web.ActionGameFinished:
			handle(msg, ws.hooks.OnGameFinished)
		case web.ActionGameFailed:
			handle(msg, ws.hooks.OnGameFailed)
		default:
			log.Warn().Str("action", justAction.Action).Msg("unknown message action")
		}
	}
}

func handle[T any](dat []byte, hook func(*T)) {
	if hook == nil {
		return
	}
	var v T
	if err := json.Unmarshal(dat, &v); err != nil {
		log.Error().Err(err).Msgf("failed to decode %T", v)
		return
	}
	hook(&v)
}
