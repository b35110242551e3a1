package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mossy-p/rooms/internal/models"
	"github.com/mossy-p/rooms/internal/registry"
)

const defaultQueueSize = 1024

var _ registry.Listener = (*Mirror)(nil)

type mirrorOp struct {
	room    models.Room
	deleted bool
	roomID  string
}

// Mirror writes room snapshots to Redis from a background worker so that
// registry mutations never wait on the network.
//
// Keys:
//
//	room:<id>          JSON room summary
//	room:<id>:players  set of player IDs
//	rooms              set of room IDs
type Mirror struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger

	queue chan mirrorOp
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewMirror starts a mirror worker. Keys expire after ttl unless rewritten;
// a zero ttl keeps them until the room is deleted.
func NewMirror(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Mirror {
	m := &Mirror{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("module", "redis").Logger(),
		queue:  make(chan mirrorOp, defaultQueueSize),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

// RoomSaved queues a snapshot write
func (m *Mirror) RoomSaved(room models.Room) {
	m.push(mirrorOp{room: room, roomID: room.ID})
}

// RoomDeleted queues removal of the room's keys
func (m *Mirror) RoomDeleted(roomID string) {
	m.push(mirrorOp{deleted: true, roomID: roomID})
}

// Close stops accepting work and waits for queued writes to finish
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	<-m.done
}

func (m *Mirror) push(op mirrorOp) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}

	select {
	case m.queue <- op:
	default:
		m.logger.Warn().Str("room_id", op.roomID).Msg("mirror queue full, dropping update")
	}
}

func (m *Mirror) run() {
	defer close(m.done)

	for op := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var err error
		if op.deleted {
			err = m.delete(ctx, op.roomID)
		} else {
			err = m.save(ctx, op.room)
		}
		cancel()

		if err != nil {
			m.logger.Error().Err(err).Str("room_id", op.roomID).Bool("deleted", op.deleted).Msg("failed to mirror room")
		}
	}
}

func (m *Mirror) save(ctx context.Context, room models.Room) error {
	data, err := json.Marshal(models.RoomSummary{
		ID:           room.ID,
		Name:         room.Name,
		PlayersCount: len(room.Players),
		CreatedAt:    room.CreatedAt,
	})
	if err != nil {
		return err
	}

	playersKey := roomPlayersKey(room.ID)

	pipe := m.client.TxPipeline()
	pipe.Set(ctx, roomKey(room.ID), data, m.ttl)
	pipe.Del(ctx, playersKey)
	if len(room.Players) > 0 {
		ids := make([]any, 0, len(room.Players))
		for _, p := range room.Players {
			ids = append(ids, p.ID)
		}
		pipe.SAdd(ctx, playersKey, ids...)
		if m.ttl > 0 {
			pipe.Expire(ctx, playersKey, m.ttl)
		}
	}
	pipe.SAdd(ctx, roomsKey, room.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (m *Mirror) delete(ctx context.Context, roomID string) error {
	pipe := m.client.TxPipeline()
	pipe.Del(ctx, roomKey(roomID), roomPlayersKey(roomID))
	pipe.SRem(ctx, roomsKey, roomID)
	_, err := pipe.Exec(ctx)
	return err
}

const roomsKey = "rooms"

func roomKey(id string) string {
	return "room:" + id
}

func roomPlayersKey(id string) string {
	return "room:" + id + ":players"
}
