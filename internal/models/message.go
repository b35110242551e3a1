package models

import (
	"encoding/json"
	"strings"
)

// EventType names a persistent-channel event
type EventType string

const (
	// Inbound
	EventJoin  EventType = "room:join"
	EventLeave EventType = "room:leave"

	// Outbound
	EventJoined  EventType = "room:joined"
	EventPlayers EventType = "room:players"
	EventLeft    EventType = "room:left"
	EventDeleted EventType = "room:deleted"
	EventError   EventType = "error"
)

// Envelope frames every message on the persistent channel
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundMessage is an outbound event before encoding
type OutboundMessage struct {
	Event EventType `json:"event"`
	Data  any       `json:"data"`
}

// JoinEvent is the payload of room:join
type JoinEvent struct {
	RoomID     *string `json:"roomId"`
	PlayerName *string `json:"playerName"`
}

// Validate checks the payload and returns the room ID and trimmed player name
func (e JoinEvent) Validate() (string, string, error) {
	if e.RoomID == nil || *e.RoomID == "" {
		return "", "", &ValidationError{Field: "roomId", Details: "roomId required"}
	}
	if e.PlayerName == nil || len([]rune(strings.TrimSpace(*e.PlayerName))) < MinNameLength {
		return "", "", &ValidationError{Field: "playerName", Details: "playerName required (min 2 chars)"}
	}
	return *e.RoomID, strings.TrimSpace(*e.PlayerName), nil
}

// JoinedEvent confirms a join to the requester
type JoinedEvent struct {
	RoomID string `json:"roomId"`
	Player Player `json:"player"`
}

// PlayersEvent carries the full roster of a room
type PlayersEvent struct {
	RoomID  string   `json:"roomId"`
	Players []Player `json:"players"`
}

// RoomEvent carries only a room ID (room:left, room:deleted)
type RoomEvent struct {
	RoomID string `json:"roomId"`
}
