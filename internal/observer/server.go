// Package observer exposes a loopback-only inspection endpoint for a running
// engine: a bootstrap document describing the world, and a websocket stream
// of per-frame status updates.
package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const Version = 1

// Bootstrap describes the engine to a connecting observer.
type Bootstrap struct {
	ProtocolVersion int      `json:"protocol_version"`
	ChunkSize       int      `json:"chunk_size"`
	ChunkHeight     int      `json:"chunk_height"`
	LoadRadius      int      `json:"load_radius"`
	Seed            int64    `json:"seed"`
	BlockPalette    []string `json:"block_palette"`
}

// Status is one frame of engine state, pushed over the websocket.
type Status struct {
	Frame         uint64  `json:"frame"`
	FrameTime     float64 `json:"frame_time"`
	ChunksLoaded  int64   `json:"chunks_loaded"`
	MeshesBuilt   uint64  `json:"meshes_built"`
	BuildsDropped uint64  `json:"builds_dropped"`
	JobsQueued    int     `json:"jobs_queued"`
	JobsRunning   int     `json:"jobs_running"`
	Visible       int     `json:"visible"`
	Culled        int     `json:"culled"`
}

type subscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version"`
	IntervalMs      int    `json:"interval_ms"`
}

type Server struct {
	bootstrap func() Bootstrap
	status    func() Status
	log       *log.Logger

	upgrader websocket.Upgrader
}

// NewServer builds an observer server. The callbacks are invoked from HTTP
// handler goroutines and must be safe for concurrent use.
func NewServer(bootstrap func() Bootstrap, status func() Status, logger *log.Logger) *Server {
	return &Server{
		bootstrap: bootstrap,
		status:    status,
		log:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only
		},
	}
}

// Mux returns the observer's HTTP routes.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/v1/ws", s.WSHandler())
	return mux
}

// Serve runs the observer on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx2)
	}()
	s.log.Printf("[observer] listening on %s", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.bootstrap())
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub subscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil || sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != Version {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"),
				time.Now().Add(time.Second))
			return
		}
		interval := normalizeInterval(sub.IntervalMs)

		// Reader goroutine: surfaces client close, allows interval updates.
		intervalCh := make(chan time.Duration, 1)
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var sub subscribeMsg
				if err := json.Unmarshal(msg, &sub); err != nil {
					continue
				}
				if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != Version {
					continue
				}
				select {
				case intervalCh <- normalizeInterval(sub.IntervalMs):
				default:
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-readDone:
				return
			case d := <-intervalCh:
				ticker.Reset(d)
			case <-ticker.C:
				b, err := json.Marshal(s.status())
				if err != nil {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

func normalizeInterval(ms int) time.Duration {
	if ms <= 0 {
		ms = 500
	}
	if ms < 50 {
		ms = 50
	}
	if ms > 10000 {
		ms = 10000
	}
	return time.Duration(ms) * time.Millisecond
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
