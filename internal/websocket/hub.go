// Package websocket pushes live week-change notifications to a user's
// open clients, keeping multiple tabs or devices in sync after a save.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is a notification delivered to one user's connected clients.
type Message struct {
	Type      string `json:"type"`
	RecordID  int64  `json:"record_id,omitempty"`
	WeekStart string `json:"week_start,omitempty"`
}

// WeekSaved builds the notification sent after a payload overwrite.
func WeekSaved(recordID int64, weekStart string) Message {
	return Message{
		Type:      "week_saved",
		RecordID:  recordID,
		WeekStart: weekStart,
	}
}

// Hub tracks active clients per user and routes messages to the owner's
// connections only.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client under its user ID.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
}

// NotifyUser sends a message to every connection the user has open.
// Other users never see it.
func (h *Hub) NotifyUser(userID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal notification", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
