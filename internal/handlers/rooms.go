package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mossy-p/rooms/internal/models"
	"github.com/mossy-p/rooms/internal/registry"
)

// ListRooms lists a summary of every room
func (h *Handler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, models.ListRoomsResponse{Rooms: h.registry.ListRooms()})
}

// CreateRoom creates a new empty room
func (h *Handler) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = models.CreateRoomRequest{}
	}

	name, err := req.Validate()
	if err != nil {
		c.JSON(http.StatusBadRequest, validationResponse(err))
		return
	}

	room := h.registry.CreateRoom(name)
	h.logger.Info().Str("room_id", room.ID).Str("name", room.Name).Msg("room created")

	c.JSON(http.StatusCreated, room)
}

// GetRoom returns a room with its players
func (h *Handler) GetRoom(c *gin.Context) {
	room, ok := h.registry.GetRoom(c.Param("roomId"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: errRoomNotFound})
		return
	}
	c.JSON(http.StatusOK, room)
}

// JoinRoom adds a player to a room. Connected members of the room receive
// the updated roster.
func (h *Handler) JoinRoom(c *gin.Context) {
	var req models.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = models.JoinRoomRequest{}
	}

	name, err := req.Validate()
	if err != nil {
		c.JSON(http.StatusBadRequest, validationResponse(err))
		return
	}

	roomID := c.Param("roomId")
	var (
		player  models.Player
		joinErr error
	)
	h.hub.WithRoom(roomID, func(g *Group) {
		_, player, joinErr = h.registry.AddPlayer(roomID, name)
		if joinErr == nil {
			h.broadcastRoster(g)
		}
	})

	switch {
	case errors.Is(joinErr, registry.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: errRoomNotFound})
		return
	case errors.Is(joinErr, registry.ErrNameTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   errConflict,
			Details: "Player name already taken in this room.",
		})
		return
	case joinErr != nil:
		_ = c.Error(joinErr)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: errInternal})
		return
	}

	h.logger.Info().Str("room_id", roomID).Str("player_id", player.ID).Str("player", player.Name).Msg("player joined over http")

	c.JSON(http.StatusCreated, models.JoinRoomResponse{RoomID: roomID, Player: player})
}

// ListPlayers lists the players of a room in join order
func (h *Handler) ListPlayers(c *gin.Context) {
	room, players, err := h.registry.ListPlayers(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: errRoomNotFound})
		return
	}
	c.JSON(http.StatusOK, models.ListPlayersResponse{RoomID: room.ID, Players: players})
}

// DeleteRoom deletes a room and its players. Connected members are told with
// room:deleted and dropped from the room's broadcast group; their bindings
// are kept until they leave or disconnect.
func (h *Handler) DeleteRoom(c *gin.Context) {
	roomID := c.Param("roomId")

	var deleted bool
	h.hub.WithRoom(roomID, func(g *Group) {
		deleted = h.registry.DeleteRoom(roomID)
		if !deleted {
			return
		}
		g.Broadcast(models.EventDeleted, models.RoomEvent{RoomID: roomID})
		g.Clear()
	})

	if !deleted {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: errRoomNotFound})
		return
	}

	h.logger.Info().Str("room_id", roomID).Msg("room deleted")
	c.Status(http.StatusNoContent)
}
