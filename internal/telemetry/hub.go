package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Status is served by /api/status and pushed to websocket clients.
type Status struct {
	Record
	Frames   uint64   `json:"frames"`
	Patterns []string `json:"patterns,omitempty"`
}

// Hub serves the live telemetry page and broadcasts records over websockets.
// Publish is called from the control loop and never blocks it; slow clients
// are dropped.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]bool
	broadcast chan []byte
	upgrader  websocket.Upgrader
	log       *log.Logger
	patterns  []string

	last   Record
	frames uint64
	every  uint64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// HubConfig configures a Hub.
type HubConfig struct {
	Log      *log.Logger
	Patterns []string
	// Every throttles websocket pushes to one per Every records.
	Every int
}

func NewHub(cfg HubConfig) *Hub {
	every := uint64(1)
	if cfg.Every > 1 {
		every = uint64(cfg.Every)
	}
	return &Hub{
		clients:   make(map[*client]bool),
		broadcast: make(chan []byte, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log:      cfg.Log,
		patterns: cfg.Patterns,
		every:    every,
	}
}

// Handler returns the HTTP routes.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/ws", h.handleWebSocket)
	return mux
}

// Serve listens on port until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return errors.Wrap(err, "telemetry listen")
	}
	return h.serve(ctx, ln)
}

func (h *Hub) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	h.logf("telemetry page on http://%s", ln.Addr())

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	go h.broadcastLoop(loopCtx)
	go func() {
		<-loopCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "telemetry server")
	}
	return nil
}

// Publish records the latest tick and queues it for websocket clients.
func (h *Hub) Publish(_ []byte, rec Record) {
	h.mu.Lock()
	h.last = rec
	h.frames++
	frames := h.frames
	h.mu.Unlock()

	if frames%h.every != 0 {
		return
	}
	data, err := json.Marshal(h.status(rec, frames))
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		// drop if channel full
	}
}

// Last returns the most recent record and how many were published.
func (h *Hub) Last() (Record, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.frames
}

func (h *Hub) status(rec Record, frames uint64) Status {
	return Status{Record: rec, Frames: frames, Patterns: h.patterns}
}

func (h *Hub) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, frames := h.Last()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.status(rec, frames))
}

func (h *Hub) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logf("websocket upgrade error: %v", err)
		return
	}
	c := &client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case message := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) logf(format string, args ...any) {
	if h.log != nil {
		h.log.Printf(format, args...)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.mu.Lock()
		delete(c.hub.clients, c)
		c.hub.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

const indexPage = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>ledtree</title>
<style>
body { background: #111; color: #ddd; font-family: monospace; margin: 2em; }
#bar { height: 24px; background: #333; position: relative; width: 100%; }
#fill { height: 100%; background: linear-gradient(90deg, #f00, #ff0, #0f0, #0ff, #00f, #f0f); width: 0; }
#peak { position: absolute; top: 0; width: 3px; height: 100%; background: #fff; }
td { padding: 0 1em 0 0; }
</style>
</head>
<body>
<h3>ledtree</h3>
<div id="bar"><div id="fill"></div><div id="peak"></div></div>
<table id="stats"></table>
<script>
const fields = ["mode", "pattern", "raw", "amplitude", "ceiling", "zeroPoint", "height", "peak", "frames"];
const table = document.getElementById("stats");
function show(s) {
  const len = 300;
  document.getElementById("fill").style.width = (100 * s.height / len) + "%";
  document.getElementById("peak").style.left = (100 * s.peak / len) + "%";
  table.innerHTML = fields.map(f => "<tr><td>" + f + "</td><td>" + (s[f] ?? "") + "</td></tr>").join("");
}
fetch("/api/status").then(r => r.json()).then(show);
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = e => show(JSON.parse(e.data));
</script>
</body>
</html>
`
