// Package realtime pushes newly created direct messages to the connected
// sessions of both participants.
package realtime

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboundEvent is a server-emitted frame.
type OutboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one live connection joined to a user's room. A user may hold
// several at once (multiple tabs or devices).
type Client struct {
	ID     string
	UserID uint
	Send   chan OutboundEvent
}

// NewClient allocates a client with a buffered outbound queue.
func NewClient(userID uint) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan OutboundEvent, 32),
	}
}

// Hub is a registry from user identifier to the set of live connection
// handles. Publishing is fire-and-forget: a disconnected or slow recipient
// simply misses the live push; the persisted record covers later fetch.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uint]map[*Client]struct{}
	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[uint]map[*Client]struct{}),
		logger: logger,
	}
}

// Join adds the client to its user's room.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.UserID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.UserID] = room
	}
	room[c] = struct{}{}
}

// Leave removes the client and drops empty rooms.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.UserID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.UserID)
	}
}

// Publish delivers the event to every client in the user's room without
// blocking; clients whose queue is full are skipped.
func (h *Hub) Publish(userID uint, event OutboundEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[userID] {
		select {
		case c.Send <- event:
		default:
			h.logger.Warn("realtime client queue full, dropping event",
				zap.String("client", c.ID),
				zap.Uint("user", userID))
		}
	}
}

// RoomSize reports the live connection count for a user.
func (h *Hub) RoomSize(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}
