package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mossy-p/rooms/internal/models"
	"github.com/mossy-p/rooms/internal/registry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// HandleWebSocket upgrades the request and serves the membership protocol.
// A new connection starts unbound.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(uuid.NewString(), conn, h.sendBuffer, h.logger)
	h.logger.Info().Str("conn_id", client.ID).Str("remote", c.ClientIP()).Msg("connection opened")

	go client.writePump()
	go h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.Disconnect(c)
		c.close()
		h.logger.Info().Str("conn_id", c.ID).Msg("connection closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Str("conn_id", c.ID).Msg("websocket error")
			}
			return
		}
		h.dispatch(c, message)
	}
}

func (h *Handler) dispatch(c *Client, raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError(errBadRequest, "invalid JSON")
		return
	}

	switch env.Event {
	case models.EventJoin:
		var ev models.JoinEvent
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &ev); err != nil {
				c.sendError(errBadRequest, "invalid join payload")
				return
			}
		}
		h.Join(c, ev)
	case models.EventLeave:
		h.Leave(c)
	default:
		h.logger.Debug().Str("conn_id", c.ID).Str("event", string(env.Event)).Msg("unknown event")
		c.sendError(errBadRequest, "unknown event")
	}
}

// Join binds an unbound connection to a new player in the requested room.
// On success the requester gets room:joined and every subscriber of the
// room, the requester included, gets the updated roster.
func (h *Handler) Join(c *Client, ev models.JoinEvent) {
	if c.binding != nil {
		c.sendError(errAlreadyJoined, "leave the current room first")
		return
	}

	roomID, name, err := ev.Validate()
	if err != nil {
		resp := validationResponse(err)
		c.sendError(resp.Error, resp.Details)
		return
	}

	h.hub.WithRoom(roomID, func(g *Group) {
		room, player, err := h.registry.AddPlayer(roomID, name)
		switch {
		case errors.Is(err, registry.ErrRoomNotFound):
			c.sendError(errRoomNotFound, "")
			return
		case errors.Is(err, registry.ErrNameTaken):
			c.sendError(errNameTaken, "")
			return
		case err != nil:
			h.logger.Error().Err(err).Str("room_id", roomID).Msg("join failed")
			c.sendError(errInternal, "")
			return
		}

		g.Subscribe(c)
		c.binding = &binding{roomID: room.ID, playerID: player.ID}
		c.sendEvent(models.EventJoined, models.JoinedEvent{RoomID: room.ID, Player: player})
		h.broadcastRoster(g)

		h.logger.Info().
			Str("conn_id", c.ID).
			Str("room_id", room.ID).
			Str("player_id", player.ID).
			Str("player", player.Name).
			Msg("player joined")
	})
}

// Leave releases the connection's binding and confirms with room:left.
// An unbound connection is left untouched.
func (h *Handler) Leave(c *Client) {
	roomID, ok := h.unbind(c)
	if !ok {
		return
	}
	c.sendEvent(models.EventLeft, models.RoomEvent{RoomID: roomID})
}

// Disconnect performs the same cleanup as Leave without a confirmation
func (h *Handler) Disconnect(c *Client) {
	h.unbind(c)
}

func (h *Handler) unbind(c *Client) (string, bool) {
	b := c.binding
	if b == nil {
		return "", false
	}

	h.hub.WithRoom(b.roomID, func(g *Group) {
		removed := h.registry.RemovePlayer(b.roomID, b.playerID)
		g.Unsubscribe(c)
		c.binding = nil
		h.broadcastRoster(g)

		h.logger.Info().
			Str("conn_id", c.ID).
			Str("room_id", b.roomID).
			Str("player_id", b.playerID).
			Bool("removed", removed).
			Msg("player left")
	})
	return b.roomID, true
}
