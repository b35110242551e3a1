package handlers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mossy-p/rooms/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// binding is a connection's memory of the room and player it represents.
// The IDs are weak references that must be re-resolved through the registry.
type binding struct {
	roomID   string
	playerID string
}

// Client represents a WebSocket client connection
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	logger zerolog.Logger

	// binding is only touched from the client's read loop
	binding *binding

	mu     sync.Mutex
	closed bool
}

// NewClient creates a client with an outbound queue of the given size.
// conn may be nil for clients that are only fed through the hub.
func NewClient(id string, conn *websocket.Conn, buffer int, logger zerolog.Logger) *Client {
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, buffer),
		logger: logger.With().Str("conn_id", id).Logger(),
	}
}

// Send returns the client's outbound queue
func (c *Client) Send() <-chan []byte {
	return c.send
}

// RoomID returns the room the client is bound to, if any
func (c *Client) RoomID() (string, bool) {
	if c.binding == nil {
		return "", false
	}
	return c.binding.roomID, true
}

func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn().Msg("send buffer full, dropping message")
		return false
	}
}

func (c *Client) sendEvent(event models.EventType, data any) {
	payload, err := json.Marshal(models.OutboundMessage{Event: event, Data: data})
	if err != nil {
		c.logger.Error().Err(err).Str("event", string(event)).Msg("failed to marshal message")
		return
	}
	c.enqueue(payload)
}

func (c *Client) sendError(msg, details string) {
	c.sendEvent(models.EventError, models.ErrorResponse{Error: msg, Details: details})
}

// close stops further delivery and lets the write pump finish
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
