// Package notify pushes saved notifications to connected clients over
// WebSocket. Delivery is best effort; the persisted notification is the
// source of truth and a recipient without an open connection simply fetches
// it later.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event is the payload pushed to a recipient's open connections.
type Event struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
	SentAt  int64  `json:"sentAt"`
}

// Publisher fans an event out to a recipient's live connections.
type Publisher interface {
	Publish(recipientID string, event Event)
}

const writeTimeout = 10 * time.Second

// client wraps a connection with a write mutex; gorilla/websocket allows at
// most one concurrent writer per connection.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub tracks live WebSocket connections per recipient and implements
// Publisher over them.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[*client]struct{}
	logger *zerolog.Logger
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// NewHub creates an empty connection hub.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[*client]struct{}),
		logger: logger,
	}
}

// Attach upgrades the request to a WebSocket and keeps the connection
// registered for the recipient until the peer closes it. It blocks for the
// lifetime of the connection.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, recipientID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn}
	h.register(recipientID, c)
	defer func() {
		h.unregister(recipientID, c)
		conn.Close()
	}()

	// Drain control frames until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("recipient_id", recipientID).Msg("notification connection closed")
			}
			return
		}
	}
}

// Publish sends the event to every open connection of the recipient.
// Connections that fail to accept the write are dropped.
func (h *Hub) Publish(recipientID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode notification event")
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.conns[recipientID]))
	for c := range h.conns[recipientID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(payload); err != nil {
			h.unregister(recipientID, c)
			c.conn.Close()
		}
	}
}

func (h *Hub) register(recipientID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[recipientID] == nil {
		h.conns[recipientID] = make(map[*client]struct{})
	}
	h.conns[recipientID][c] = struct{}{}
}

func (h *Hub) unregister(recipientID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns[recipientID], c)
	if len(h.conns[recipientID]) == 0 {
		delete(h.conns, recipientID)
	}
}
