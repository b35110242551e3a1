// Package handlers exposes the room registry over two interfaces: a JSON
// request/response API and a WebSocket membership channel. Mutations from
// either interface are published to the room's WebSocket subscribers.
package handlers

import (
	"github.com/rs/zerolog"

	"github.com/mossy-p/rooms/internal/models"
	"github.com/mossy-p/rooms/internal/registry"
)

// DefaultSendBuffer is the outbound queue size of a connection
const DefaultSendBuffer = 256

// Handler serves both gateways over a shared registry and hub
type Handler struct {
	registry   *registry.Registry
	hub        *Hub
	logger     zerolog.Logger
	sendBuffer int
}

// New creates a Handler. A non-positive sendBuffer selects DefaultSendBuffer.
func New(reg *registry.Registry, hub *Hub, logger zerolog.Logger, sendBuffer int) *Handler {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Handler{
		registry:   reg,
		hub:        hub,
		logger:     logger.With().Str("module", "handlers").Logger(),
		sendBuffer: sendBuffer,
	}
}

// broadcastRoster sends the room's current roster to its subscribers.
// Nothing is sent if the room no longer exists.
func (h *Handler) broadcastRoster(g *Group) {
	room, players, err := h.registry.ListPlayers(g.RoomID())
	if err != nil {
		return
	}
	g.Broadcast(models.EventPlayers, models.PlayersEvent{RoomID: room.ID, Players: players})
}
