// Package push delivers real-time events to connected clients over
// websockets. Delivery is best effort: a slow or absent client never
// blocks the sender.
package push

import (
	"net/http"
	"sync"
	"time"

	"internhub/internal/contextutils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is a single push message
type Event struct {
	Kind      string      `json:"kind"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// clientKey identifies a connected principal
type clientKey struct {
	role string
	id   int64
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub tracks connected clients keyed by principal
type Hub struct {
	mu      sync.Mutex
	clients map[clientKey]*client
	logger  *zap.Logger

	upgrader websocket.Upgrader
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[clientKey]*client),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // origin is enforced by the CORS layer
			},
		},
	}
}

// ServeHTTP upgrades an authenticated request to a websocket connection.
// The principal must already be on the request context.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	principalID := contextutils.GetPrincipalID(r.Context())
	if principalID == 0 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role := contextutils.GetRole(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	key := clientKey{role: role, id: principalID}
	c := &client{conn: conn, send: make(chan Event, 16)}

	h.mu.Lock()
	if old, exists := h.clients[key]; exists {
		close(old.send)
		old.conn.Close()
	}
	h.clients[key] = c
	h.mu.Unlock()

	h.logger.Debug("Websocket client connected",
		zap.String("role", role),
		zap.Int64("principal_id", principalID),
	)

	go c.writeLoop()
	h.readLoop(key, c)
}

// Publish queues an event for one principal. Events for principals without
// a live connection are dropped.
func (h *Hub) Publish(role string, principalID int64, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	// The send happens under the lock: a disconnecting reader closes
	// c.send under the same lock, so the channel cannot close between
	// the lookup and the send.
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[clientKey{role: role, id: principalID}]
	if !ok {
		return
	}

	select {
	case c.send <- event:
	default:
		h.logger.Warn("Dropping push event, client buffer full",
			zap.String("kind", event.Kind),
			zap.Int64("principal_id", principalID),
		)
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, key)
	}
}

func (h *Hub) readLoop(key clientKey, c *client) {
	defer func() {
		h.mu.Lock()
		if h.clients[key] == c {
			delete(h.clients, key)
			close(c.send)
		}
		h.mu.Unlock()
		c.conn.Close()

		h.logger.Debug("Websocket client disconnected",
			zap.String("role", key.role),
			zap.Int64("principal_id", key.id),
		)
	}()

	// Clients only listen; reads exist to observe close frames
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	for event := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}
}
