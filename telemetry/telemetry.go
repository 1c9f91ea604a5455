// Package telemetry streams computed snapshot ticks over a websocket
// to any connected observer while a run is in progress. It is pure
// observability layered on top of the authoritative stdout report
// (§6); nothing here participates in the simulation's correctness.
//
// The upgrade/ping-pong/serialized-write pattern mirrors the teacher's
// server/fastview client: gorilla/websocket for the connection,
// gorilla/mux for routing (replacing the teacher's bare
// http.HandleFunc), and channerics.NewTicker for ping cadence.
package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"metrosim/stats"
)

// TickUpdate is one tick's worth of published state: the rendered
// report line plus a point-in-time read of the run counters.
type TickUpdate struct {
	Tick  int            `json:"tick"`
	Line  string         `json:"line"`
	Stats stats.Snapshot `json:"stats"`
}

// Server accepts websocket connections on /ws and fans every
// Broadcast call out to all of them, best-effort.
type Server struct {
	addr      string
	upgrader  websocket.Upgrader
	pingEvery time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer returns a Server listening on addr once ListenAndServe is
// called. An empty addr is not special here (net/http then listens on
// ":http"); main simply does not construct a Server when no telemetry
// address is configured.
func NewServer(addr string) *Server {
	return &Server{
		addr:      addr,
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		pingEvery: 30 * time.Second,
		clients:   map[*client]struct{}{},
	}
}

// Broadcast pushes u to every connected client. A client whose send
// buffer is full misses this update (the client itself stays
// connected) rather than being allowed to back-pressure the simulation.
func (s *Server) Broadcast(u TickUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- u:
		default:
		}
	}
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/ws", s.serveWS)

	httpSrv := &http.Server{Addr: s.addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	err := httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

type client struct {
	conn *websocket.Conn
	send chan TickUpdate
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan TickUpdate, 16)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		conn.Close()
	}()

	pong := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	group, groupCtx := errgroup.WithContext(r.Context())
	group.Go(func() error { return c.readPump() })
	group.Go(func() error { return c.writePump(groupCtx, s.pingEvery) })
	group.Wait()
}

// readPump only exists to keep control-frame (pong) processing alive;
// this server never expects data frames from observers.
func (c *client) readPump() error {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if isExpectedClosure(err) {
				return nil
			}
			return err
		}
	}
}

func (c *client) writePump(ctx context.Context, pingEvery time.Duration) error {
	ticker := channerics.NewTicker(ctx.Done(), pingEvery)
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-c.send:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(u)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return err
			}
		case <-ticker:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// isExpectedClosure matches the teacher's isClosure/isError split: only
// an unexpected close code is worth propagating as a pump error.
func isExpectedClosure(err error) bool {
	return !websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
