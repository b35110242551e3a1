package models

import (
	"strings"
	"time"
)

// MinNameLength is the minimum trimmed length of room and player names
const MinNameLength = 2

// Player is a participant's membership record within a room
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Room is a named container for an ordered set of players.
// Players are kept in join order.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Players   []Player  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomSummary is the listing projection of a room
type RoomSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PlayersCount int       `json:"playersCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name *string `json:"name"`
}

// Validate checks the request and returns the trimmed room name
func (r CreateRoomRequest) Validate() (string, error) {
	return validName("name", r.Name)
}

// JoinRoomRequest is the request body for joining a room over HTTP
type JoinRoomRequest struct {
	PlayerName *string `json:"playerName"`
}

// Validate checks the request and returns the trimmed player name
func (r JoinRoomRequest) Validate() (string, error) {
	return validName("playerName", r.PlayerName)
}

// ListRoomsResponse is the response for listing rooms
type ListRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}

// JoinRoomResponse is the response for a successful join
type JoinRoomResponse struct {
	RoomID string `json:"roomId"`
	Player Player `json:"player"`
}

// ListPlayersResponse is the response for listing the players of a room
type ListPlayersResponse struct {
	RoomID  string   `json:"roomId"`
	Players []Player `json:"players"`
}

// ErrorResponse is the error envelope shared by HTTP responses and channel events
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func validName(field string, value *string) (string, error) {
	if value == nil {
		return "", &ValidationError{Field: field, Details: requiredDetails(field)}
	}
	name := strings.TrimSpace(*value)
	if len([]rune(name)) < MinNameLength {
		return "", &ValidationError{Field: field, Details: requiredDetails(field)}
	}
	return name, nil
}

func requiredDetails(field string) string {
	return "Field '" + field + "' is required (string, min 2 chars)."
}
