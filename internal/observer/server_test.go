package observer

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func testServer(frame *atomic.Uint64) *Server {
	boot := func() Bootstrap {
		return Bootstrap{
			ProtocolVersion: Version,
			ChunkSize:       16,
			ChunkHeight:     128,
			LoadRadius:      6,
			Seed:            42,
			BlockPalette:    []string{"air", "stone", "water"},
		}
	}
	status := func() Status {
		return Status{Frame: frame.Load(), ChunksLoaded: 9, MeshesBuilt: 9}
	}
	return NewServer(boot, status, log.New(io.Discard, "", 0))
}

func TestBootstrapHandler(t *testing.T) {
	var frame atomic.Uint64
	s := testServer(&frame)

	req := httptest.NewRequest(http.MethodGet, "/v1/bootstrap", nil)
	req.RemoteAddr = "127.0.0.1:50000"
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var boot Bootstrap
	if err := json.NewDecoder(rec.Body).Decode(&boot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if boot.ProtocolVersion != Version || boot.Seed != 42 {
		t.Fatalf("unexpected bootstrap: %+v", boot)
	}
	if len(boot.BlockPalette) != 3 || boot.BlockPalette[1] != "stone" {
		t.Fatalf("unexpected palette: %v", boot.BlockPalette)
	}
}

func TestBootstrapRejectsNonLoopback(t *testing.T) {
	var frame atomic.Uint64
	s := testServer(&frame)

	req := httptest.NewRequest(http.MethodGet, "/v1/bootstrap", nil)
	req.RemoteAddr = "10.1.2.3:50000"
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestWSStatusStream(t *testing.T) {
	var frame atomic.Uint64
	frame.Store(7)
	s := testServer(&frame)

	srv := httptest.NewServer(s.Mux())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := subscribeMsg{Type: "SUBSCRIBE", ProtocolVersion: Version, IntervalMs: 50}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var st Status
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if st.Frame != 7 || st.ChunksLoaded != 9 {
		t.Fatalf("unexpected status: %+v", st)
	}

	frame.Store(8)
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if st.Frame != 8 {
		t.Fatalf("frame = %d, want 8", st.Frame)
	}
}

func TestWSRejectsMissingSubscribe(t *testing.T) {
	var frame atomic.Uint64
	s := testServer(&frame)

	srv := httptest.NewServer(s.Mux())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"NOPE"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close after bad handshake")
	}
}
