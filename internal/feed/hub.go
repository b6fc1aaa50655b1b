// Package feed pushes trip events to connected WebSocket clients.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pkordes/shuttle-control/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	// sendBuffer is how many events may queue for a slow client before it
	// is dropped.
	sendBuffer = 32
)

// Event is the message sent to clients.
type Event struct {
	Type string      `json:"type"`
	Trip domain.Trip `json:"trip"`
}

// TokenParser resolves a session token to its user.
type TokenParser interface {
	Parse(token string) (domain.User, error)
}

type client struct {
	user domain.User
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and fans trip events out to them.
// Conductors only receive events for their own trips.
type Hub struct {
	tokens   TokenParser
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewHub returns a Hub that authenticates clients with tokens. Browser
// origins are checked by checkOrigin; nil accepts any origin.
func NewHub(tokens TokenParser, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*client]struct{}),
	}
}

// TripChanged broadcasts a trip event. It never blocks: a client whose
// queue is full is disconnected.
func (h *Hub) TripChanged(ctx context.Context, action domain.TripAction, trip domain.Trip) {
	msg, err := json.Marshal(Event{Type: "trip." + string(action), Trip: trip})
	if err != nil {
		slog.ErrorContext(ctx, "feed: encode event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.user.Role == domain.RoleConductor && trip.ConductorID != c.user.ID {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slog.WarnContext(ctx, "feed: dropping slow client", "user_id", c.user.ID)
			h.remove(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades an authenticated request to a WebSocket connection.
// The session token is read from the "token" query parameter, since
// browsers cannot set headers on WebSocket requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token is required", http.StatusUnauthorized)
		return
	}
	user, err := h.tokens.Parse(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.WarnContext(r.Context(), "feed: upgrade failed", "error", err)
		return
	}

	c := &client{user: user, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		conn.Close()
		return
	}
	slog.InfoContext(r.Context(), "feed: client connected", "user_id", user.ID, "role", user.Role)

	h.wg.Add(2)
	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every client and waits for their goroutines to exit.
// Later connection attempts are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		h.remove(c)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

// remove must be called with h.mu held.
func (h *Hub) remove(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	h.remove(c)
	h.mu.Unlock()
}

// readPump discards client messages and keeps the read deadline alive on
// pongs. It unregisters the client when the connection fails.
func (h *Hub) readPump(c *client) {
	defer h.wg.Done()
	defer h.unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("feed: unexpected close", "user_id", c.user.ID, "error", err)
			}
			return
		}
	}
}

// writePump owns all writes to the connection. It exits, closing the
// connection, when the send channel is closed or a write fails.
func (h *Hub) writePump(c *client) {
	defer h.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
