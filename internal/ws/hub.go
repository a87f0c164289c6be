package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"messagely/internal/domain"
)

// Event is the payload pushed to connected clients.
type Event struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message"`
}

// Hub manages active WebSocket connections keyed by username and pushes
// new-message events to the recipient's live connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Register adds a connection for the given user.
func (h *Hub) Register(username string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[username] == nil {
		h.conns[username] = make(map[*websocket.Conn]struct{})
	}
	h.conns[username][conn] = struct{}{}
}

// Unregister removes a connection for the given user.
func (h *Hub) Unregister(username string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[username]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, username)
		}
	}
}

// NotifyNewMessage pushes a message.created event to all of the recipient's
// connections. Writes to broken connections just close them; delivery is
// best effort.
func (h *Hub) NotifyNewMessage(toUsername string, m *domain.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.conns[toUsername]
	if !ok {
		return
	}
	evt := Event{Type: "message.created", Message: m}
	for conn := range conns {
		if err := conn.WriteJSON(evt); err != nil {
			conn.Close()
		}
	}
}
