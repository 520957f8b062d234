// Package hub fans out live updates about a benchmark run to every websocket
// watching it.
package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/bcspragu/namesbench"
	"github.com/gorilla/websocket"
)

// Hub maintains the set of active connections and broadcasts messages to the
// connections.
type Hub struct {
	// Registered connections, by the run they're watching.
	connections map[namesbench.RunID][]*connection

	// Messages to send to everyone watching a run.
	broadcast chan *broadcastMsg

	// Register requests from the connections.
	register chan *connection

	// Unregister requests from connections.
	unregister chan *connection

	// Requests for the number of connections watching a run.
	count chan *countReq
}

// New creates a new Hub and starts it in a background Go routine.
func New() *Hub {
	h := &Hub{
		broadcast:   make(chan *broadcastMsg),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		count:       make(chan *countReq),
		connections: make(map[namesbench.RunID][]*connection),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			conns := h.connections[c.runID]
			h.connections[c.runID] = append(conns, c)
		case c := <-h.unregister:
			h.deleteConn(c)
		case m := <-h.broadcast:
			// Iterate over a copy, slow connections are removed as we go.
			conns := append([]*connection(nil), h.connections[m.runID]...)
			for _, c := range conns {
				select {
				case c.send <- m.msg:
				default:
					h.deleteConn(c)
				}
			}
		case req := <-h.count:
			req.resp <- len(h.connections[req.runID])
		}
	}
}

// deleteConn removes the connection if it's still registered, it's a no-op for
// connections that were already dropped.
func (h *Hub) deleteConn(c *connection) {
	rconns := h.connections[c.runID]
	for i, rconn := range rconns {
		if rconn.id == c.id {
			close(c.send)
			// Remove the connection.
			copy(rconns[i:], rconns[i+1:])
			rconns[len(rconns)-1] = nil
			h.connections[c.runID] = rconns[:len(rconns)-1]
			if len(h.connections[c.runID]) == 0 {
				delete(h.connections, c.runID)
			}
			return
		}
	}
}

type broadcastMsg struct {
	runID namesbench.RunID
	msg   []byte
}

// ToRun sends a message to everyone watching a run.
func (h *Hub) ToRun(rID namesbench.RunID, msg interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	h.broadcast <- &broadcastMsg{
		runID: rID,
		msg:   buf.Bytes(),
	}

	return nil
}

type countReq struct {
	runID namesbench.RunID
	resp  chan int
}

// Watchers returns how many connections are watching a run.
func (h *Hub) Watchers(rID namesbench.RunID) int {
	req := &countReq{runID: rID, resp: make(chan int, 1)}
	h.count <- req
	return <-req.resp
}

// Register associates a connection with the hub and a given run.
func (h *Hub) Register(ws *websocket.Conn, rID namesbench.RunID) {
	conn := &connection{
		id:    newID(rID),
		h:     h,
		runID: rID,
		send:  make(chan []byte, 256),
		ws:    ws,
	}
	h.register <- conn
	go conn.writePump()
	go conn.readPump()
}

func newID(rID namesbench.RunID) string {
	return fmt.Sprintf("%s-%d", rID, rand.Int63())
}
