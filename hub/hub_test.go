package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bcspragu/namesbench"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
)

func serve(t *testing.T, h *Hub) string {
	t.Helper()
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade: %v", err)
			return
		}
		h.Register(ws, namesbench.RunID(strings.TrimPrefix(r.URL.Path, "/")))
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, addr string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		t.Fatalf("failed to dial %q: %v", addr, err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitForWatchers(t *testing.T, h *Hub, rID namesbench.RunID, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.Watchers(rID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("run %q has %d watchers, want %d", rID, h.Watchers(rID), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestToRun(t *testing.T) {
	h := New()
	addr := serve(t, h)

	a1, a2 := dial(t, addr+"/run_a"), dial(t, addr+"/run_a")
	b := dial(t, addr+"/run_b")
	waitForWatchers(t, h, "run_a", 2)
	waitForWatchers(t, h, "run_b", 1)

	msg := struct {
		Action string `json:"action"`
		Round  int    `json:"round"`
	}{"ROUND_PLAYED", 3}
	if err := h.ToRun("run_a", msg); err != nil {
		t.Fatalf("ToRun: %v", err)
	}
	if err := h.ToRun("run_b", struct {
		Action string `json:"action"`
	}{"GAME_FINISHED"}); err != nil {
		t.Fatalf("ToRun: %v", err)
	}

	read := func(ws *websocket.Conn) string {
		t.Helper()
		ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, dat, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		return string(dat)
	}

	want := "{\"action\":\"ROUND_PLAYED\",\"round\":3}\n"
	for _, ws := range []*websocket.Conn{a1, a2} {
		if diff := cmp.Diff(want, read(ws)); diff != "" {
			t.Errorf("unexpected message (-want +got)\n%s", diff)
		}
	}
	// run_b only sees its own message.
	if diff := cmp.Diff("{\"action\":\"GAME_FINISHED\"}\n", read(b)); diff != "" {
		t.Errorf("unexpected message (-want +got)\n%s", diff)
	}
}

func TestUnregister(t *testing.T) {
	h := New()
	addr := serve(t, h)

	ws := dial(t, addr+"/run_a")
	waitForWatchers(t, h, "run_a", 1)

	ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.Close()
	waitForWatchers(t, h, "run_a", 0)

	// Nobody is listening, this shouldn't block or fail.
	if err := h.ToRun("run_a", map[string]int{"round": 1}); err != nil {
		t.Errorf("ToRun: %v", err)
	}
}
