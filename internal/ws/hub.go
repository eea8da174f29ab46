package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/yourorg/chat-app/services/dm-service/internal/events"
)

// Hub pushes refresh hints to connected clients. A hint carries no query
// result, only "something you watch changed"; clients re-run their reads.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[string]*Client // userID -> clientID -> client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[string]*Client)}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) *Client {
	c := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
		send:   make(chan events.Event, 16),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[string]*Client)
	}
	h.clients[userID][c.ID] = c
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.UserID]; ok {
		if _, ok := conns[c.ID]; ok {
			delete(conns, c.ID)
			close(c.send)
		}
		if len(conns) == 0 {
			delete(h.clients, c.UserID)
		}
	}
}

// Notify fans one event out to every connection of the given users.
func (h *Hub) Notify(userIDs []string, ev events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range userIDs {
		for _, c := range h.clients[userID] {
			c.enqueue(ev)
		}
	}
}

// Client is one websocket connection of one user.
type Client struct {
	ID     string
	UserID string
	conn   *websocket.Conn
	send   chan events.Event
}

func (c *Client) enqueue(ev events.Event) {
	select {
	case c.send <- ev:
	default:
		// slow consumer, drop the hint; the next event re-triggers it
	}
}

// WritePump drains the send queue onto the socket until Unregister closes it.
func (c *Client) WritePump() {
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
