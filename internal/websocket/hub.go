package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	ws "github.com/coder/websocket"
)

// Message is a sync notification sent to every client watching a pantry.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub tracks connected clients grouped by pantry.
type Hub struct {
	mu       sync.RWMutex
	pantries map[int64]map[*Client]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		pantries: make(map[int64]map[*Client]struct{}),
		logger:   logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.pantries[c.pantryID]
	if !ok {
		set = make(map[*Client]struct{})
		h.pantries[c.pantryID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes a client and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.pantries[c.pantryID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.pantries, c.pantryID)
	}
}

// DisconnectUser drops every client the user has open on the pantry and
// closes their connections. It returns the number of clients dropped.
func (h *Hub) DisconnectUser(pantryID, userID int64) int {
	h.mu.Lock()
	var dropped []*Client
	set := h.pantries[pantryID]
	for c := range set {
		if c.userID != userID {
			continue
		}
		delete(set, c)
		close(c.send)
		dropped = append(dropped, c)
	}
	if set != nil && len(set) == 0 {
		delete(h.pantries, pantryID)
	}
	h.mu.Unlock()

	for _, c := range dropped {
		if c.conn == nil {
			continue
		}
		// Close waits for the peer's close frame.
		go c.conn.Close(ws.StatusPolicyViolation, "removed from pantry")
	}
	if len(dropped) > 0 {
		h.logger.Info("disconnected removed member", "pantry_id", pantryID, "user_id", userID, "clients", len(dropped))
	}
	return len(dropped)
}

// Broadcast queues msg for every client of the pantry. Clients whose buffer
// is full miss the message.
func (h *Hub) Broadcast(pantryID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for c := range h.pantries[pantryID] {
		select {
		case c.send <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Debug("dropped broadcast", "pantry_id", pantryID, "type", msg.Type, "clients", dropped)
	}
}

// ClientCount returns the number of connected clients across all pantries.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.pantries {
		n += len(set)
	}
	return n
}

// PantryClientCount returns the number of clients watching one pantry.
func (h *Hub) PantryClientCount(pantryID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.pantries[pantryID])
}
