package handlers

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mossy-p/rooms/internal/models"
)

// Hub maps room IDs to the set of connections subscribed to that room's
// roster updates. Each group has its own lock; WithRoom holds it across a
// registry mutation and the broadcast that follows, so subscribers receive
// roster snapshots in mutation order.
type Hub struct {
	mu     sync.Mutex
	groups map[string]*group
	logger zerolog.Logger
}

type group struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

// Group is the locked view of one room's broadcast group handed to WithRoom.
// It must not be retained after the callback returns.
type Group struct {
	roomID string
	g      *group
	hub    *Hub
}

// NewHub creates an empty hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		groups: make(map[string]*group),
		logger: logger.With().Str("module", "hub").Logger(),
	}
}

// WithRoom runs fn with exclusive access to the room's broadcast group
func (h *Hub) WithRoom(roomID string, fn func(g *Group)) {
	grp := h.acquire(roomID)
	defer h.release(roomID, grp)
	fn(&Group{roomID: roomID, g: grp, hub: h})
}

// Subscribers returns the number of connections subscribed to a room
func (h *Hub) Subscribers(roomID string) int {
	h.mu.Lock()
	grp, ok := h.groups[roomID]
	h.mu.Unlock()
	if !ok {
		return 0
	}

	grp.mu.Lock()
	defer grp.mu.Unlock()
	if grp.closed {
		return 0
	}
	return len(grp.clients)
}

// Rooms returns the number of rooms with at least one subscriber
func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups)
}

func (h *Hub) acquire(roomID string) *group {
	for {
		h.mu.Lock()
		grp, ok := h.groups[roomID]
		if !ok {
			grp = &group{clients: make(map[*Client]struct{})}
			h.groups[roomID] = grp
		}
		h.mu.Unlock()

		grp.mu.Lock()
		if !grp.closed {
			return grp
		}
		// Dropped while we waited; fetch the replacement
		grp.mu.Unlock()
	}
}

func (h *Hub) release(roomID string, grp *group) {
	if len(grp.clients) == 0 {
		grp.closed = true
		h.mu.Lock()
		if h.groups[roomID] == grp {
			delete(h.groups, roomID)
		}
		h.mu.Unlock()
	}
	grp.mu.Unlock()
}

// RoomID returns the room this group belongs to
func (g *Group) RoomID() string {
	return g.roomID
}

// Subscribe adds a connection to the group
func (g *Group) Subscribe(c *Client) {
	g.g.clients[c] = struct{}{}
}

// Unsubscribe removes a connection from the group
func (g *Group) Unsubscribe(c *Client) {
	delete(g.g.clients, c)
}

// Clear unsubscribes every connection and returns them
func (g *Group) Clear() []*Client {
	clients := make([]*Client, 0, len(g.g.clients))
	for c := range g.g.clients {
		clients = append(clients, c)
		delete(g.g.clients, c)
	}
	return clients
}

// Len returns the number of subscribers
func (g *Group) Len() int {
	return len(g.g.clients)
}

// Broadcast delivers an event to every subscriber. Delivery to each
// connection is attempted independently; a full queue drops the message for
// that connection only.
func (g *Group) Broadcast(event models.EventType, data any) {
	payload, err := json.Marshal(models.OutboundMessage{Event: event, Data: data})
	if err != nil {
		g.hub.logger.Error().Err(err).Str("event", string(event)).Msg("failed to marshal broadcast")
		return
	}

	delivered := 0
	for c := range g.g.clients {
		if c.enqueue(payload) {
			delivered++
		}
	}

	g.hub.logger.Debug().
		Str("room_id", g.roomID).
		Str("event", string(event)).
		Int("subscribers", len(g.g.clients)).
		Int("delivered", delivered).
		Msg("broadcast")
}
