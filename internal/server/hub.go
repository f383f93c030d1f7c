package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pdrpinto/gridsearch"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512

	// Outbound messages queued per client before it counts as slow.
	sendBuffer = 256
)

const (
	messageSnapshot = "snapshot"
	messageEvent    = "event"
)

// message is one text frame on the event stream. The first frame of every
// connection is a snapshot; each later frame carries one controller event.
type message struct {
	Type     string               `json:"type"`
	Snapshot *gridsearch.Snapshot `json:"snapshot,omitempty"`
	Event    *gridsearch.Event    `json:"event,omitempty"`
}

// Hub fans controller events out to WebSocket clients. It implements
// gridsearch.Observer; a client whose buffer is full is dropped rather than
// allowed to stall the search.
type Hub struct {
	snapshot func() gridsearch.Snapshot
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	hub  *Hub
	ws   *websocket.Conn
	addr string
	send chan []byte
}

// NewHub creates a hub. snapshot supplies the first frame for new clients;
// allowedOrigin "*" accepts any origin.
func NewHub(snapshot func() gridsearch.Snapshot, allowedOrigin string, logger *slog.Logger) *Hub {
	return &Hub{
		snapshot: snapshot,
		logger:   logger,
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Observe implements gridsearch.Observer.
func (h *Hub) Observe(e gridsearch.Event) {
	data, err := json.Marshal(message{Type: messageEvent, Event: &e})
	if err != nil {
		h.logger.Error("Failed to marshal event.", "kind", e.Kind.String(), "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Send buffer full, dropping client.", "remote_addr", c.addr)
			h.drop(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.drop(c)
	}
}

// drop must be called with h.mu held.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// register queues the snapshot and adds c under one lock, so no event falls
// between the two.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	snap := h.snapshot()
	data, err := json.Marshal(message{Type: messageSnapshot, Snapshot: &snap})
	if err != nil {
		h.logger.Error("Failed to marshal snapshot.", "error", err)
		return false
	}
	c.send <- data
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// ServeWS upgrades the request and streams events until the peer goes away.
func (h *Hub) ServeWS(ctx *gin.Context) {
	ws, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Debug("WebSocket upgrade failed.", "error", err)
		return
	}

	c := &client{hub: h, ws: ws, addr: ws.RemoteAddr().String(), send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
		ws.Close()
		return
	}
	h.logger.Debug("WebSocket client connected.", "remote_addr", c.addr)

	go c.writePump()
	c.readPump()
}

// readPump consumes control frames so pongs and close messages are processed.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.ws.Close()
		c.hub.logger.Debug("WebSocket client disconnected.", "remote_addr", c.addr)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("WebSocket read error.", "error", err)
			}
			return
		}
	}
}

// writePump is the only writer on the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.logger.Debug("WebSocket write error.", "error", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
