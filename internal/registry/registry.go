package registry

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mossy-p/rooms/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNameTaken    = errors.New("player name already taken in this room")
)

// Listener observes committed mutations. It is called with the room lock
// held and must not block.
type Listener interface {
	RoomSaved(room models.Room)
	RoomDeleted(roomID string)
}

// Option configures a Registry
type Option func(*Registry)

// WithClock overrides the time source used for createdAt and joinedAt
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithIDGenerator overrides the generator for room and player IDs
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		r.newID = newID
	}
}

// WithListener registers a mutation listener
func WithListener(l Listener) Option {
	return func(r *Registry) {
		r.listener = l
	}
}

type roomEntry struct {
	mu      sync.Mutex
	room    models.Room
	deleted bool
}

// Registry owns all Room and Player records
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
	order []string

	now      func() time.Time
	newID    func() string
	listener Listener
}

// New creates an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{
		rooms: make(map[string]*roomEntry),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRoom stores a new empty room. The name is trimmed; callers validate it.
func (r *Registry) CreateRoom(name string) models.Room {
	entry := &roomEntry{
		room: models.Room{
			ID:        r.newID(),
			Name:      strings.TrimSpace(name),
			Players:   []models.Player{},
			CreatedAt: r.now().UTC(),
		},
	}

	r.mu.Lock()
	// IDs are never reused, even if a generator repeats itself
	for r.rooms[entry.room.ID] != nil {
		entry.room.ID = r.newID()
	}
	r.rooms[entry.room.ID] = entry
	r.order = append(r.order, entry.room.ID)
	r.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	snapshot := entry.snapshot()
	r.notifySaved(snapshot)
	return snapshot
}

// GetRoom returns the room with the given ID
func (r *Registry) GetRoom(id string) (models.Room, bool) {
	entry := r.lookup(id)
	if entry == nil {
		return models.Room{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return models.Room{}, false
	}
	return entry.snapshot(), true
}

// ListRooms returns a summary of every room in creation order
func (r *Registry) ListRooms() []models.RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]models.RoomSummary, 0, len(r.order))
	for _, id := range r.order {
		entry := r.rooms[id]
		entry.mu.Lock()
		summaries = append(summaries, models.RoomSummary{
			ID:           entry.room.ID,
			Name:         entry.room.Name,
			PlayersCount: len(entry.room.Players),
			CreatedAt:    entry.room.CreatedAt,
		})
		entry.mu.Unlock()
	}
	return summaries
}

// AddPlayer appends a new player to a room.
// It fails with ErrRoomNotFound or ErrNameTaken.
func (r *Registry) AddPlayer(roomID, name string) (models.Room, models.Player, error) {
	entry := r.lookup(roomID)
	if entry == nil {
		return models.Room{}, models.Player{}, ErrRoomNotFound
	}

	name = strings.TrimSpace(name)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return models.Room{}, models.Player{}, ErrRoomNotFound
	}

	for _, p := range entry.room.Players {
		if strings.EqualFold(p.Name, name) {
			return models.Room{}, models.Player{}, ErrNameTaken
		}
	}

	player := models.Player{
		ID:       r.uniquePlayerID(entry),
		Name:     name,
		JoinedAt: r.now().UTC(),
	}
	entry.room.Players = append(entry.room.Players, player)

	snapshot := entry.snapshot()
	r.notifySaved(snapshot)
	return snapshot, player, nil
}

// ListPlayers returns the room and its roster in join order
func (r *Registry) ListPlayers(roomID string) (models.Room, []models.Player, error) {
	room, ok := r.GetRoom(roomID)
	if !ok {
		return models.Room{}, nil, ErrRoomNotFound
	}
	return room, room.Players, nil
}

// RemovePlayer removes a player from a room and reports whether one was
// removed. Missing rooms and players are not errors.
func (r *Registry) RemovePlayer(roomID, playerID string) bool {
	entry := r.lookup(roomID)
	if entry == nil {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.deleted {
		return false
	}

	for i, p := range entry.room.Players {
		if p.ID == playerID {
			entry.room.Players = append(entry.room.Players[:i:i], entry.room.Players[i+1:]...)
			r.notifySaved(entry.snapshot())
			return true
		}
	}
	return false
}

// DeleteRoom removes a room and all of its players and reports whether it existed
func (r *Registry) DeleteRoom(id string) bool {
	r.mu.Lock()
	entry, ok := r.rooms[id]
	if ok {
		delete(r.rooms, id)
		for i, roomID := range r.order {
			if roomID == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.deleted = true
	entry.room.Players = nil
	if r.listener != nil {
		r.listener.RoomDeleted(id)
	}
	return true
}

func (r *Registry) lookup(id string) *roomEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[id]
}

// uniquePlayerID must be called with entry.mu held
func (r *Registry) uniquePlayerID(entry *roomEntry) string {
	for {
		id := r.newID()
		taken := false
		for _, p := range entry.room.Players {
			if p.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

func (r *Registry) notifySaved(room models.Room) {
	if r.listener != nil {
		r.listener.RoomSaved(room)
	}
}

// snapshot must be called with e.mu held
func (e *roomEntry) snapshot() models.Room {
	room := e.room
	room.Players = make([]models.Player, len(e.room.Players))
	copy(room.Players, e.room.Players)
	return room
}
