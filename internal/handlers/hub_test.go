package handlers

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mossy-p/rooms/internal/models"
)

func TestHubBroadcastReachesSubscribersOnly(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	a := newFakeClient("a")
	b := newFakeClient("b")
	other := newFakeClient("other")

	hub.WithRoom("room-1", func(g *Group) {
		g.Subscribe(a)
		g.Subscribe(b)
	})
	hub.WithRoom("room-2", func(g *Group) {
		g.Subscribe(other)
	})

	hub.WithRoom("room-1", func(g *Group) {
		g.Broadcast(models.EventDeleted, models.RoomEvent{RoomID: "room-1"})
	})

	for _, c := range []*Client{a, b} {
		ev := expectEvent[models.RoomEvent](t, c, models.EventDeleted)
		assert.Equal(t, "room-1", ev.RoomID)
	}
	expectNoMessage(t, other)
	assert.Equal(t, 2, hub.Subscribers("room-1"))
	assert.Equal(t, 1, hub.Subscribers("room-2"))
	assert.Equal(t, 2, hub.Rooms())
}

func TestHubSlowClientDoesNotStallOthers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	slow := NewClient("slow", nil, 1, zerolog.Nop())
	fast := newFakeClient("fast")

	hub.WithRoom("room", func(g *Group) {
		g.Subscribe(slow)
		g.Subscribe(fast)
		g.Broadcast(models.EventLeft, models.RoomEvent{RoomID: "first"})
		g.Broadcast(models.EventLeft, models.RoomEvent{RoomID: "second"})
	})

	assert.Equal(t, "first", expectEvent[models.RoomEvent](t, fast, models.EventLeft).RoomID)
	assert.Equal(t, "second", expectEvent[models.RoomEvent](t, fast, models.EventLeft).RoomID)
	assert.Equal(t, "first", expectEvent[models.RoomEvent](t, slow, models.EventLeft).RoomID)
	expectNoMessage(t, slow)
}

func TestHubClosedClientIsSkipped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	closed := newFakeClient("closed")
	open := newFakeClient("open")
	closed.close()

	hub.WithRoom("room", func(g *Group) {
		g.Subscribe(closed)
		g.Subscribe(open)
		g.Broadcast(models.EventLeft, models.RoomEvent{RoomID: "room"})
	})

	expectEvent[models.RoomEvent](t, open, models.EventLeft)
}

func TestHubDropsEmptyGroups(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newFakeClient("c")

	hub.WithRoom("room", func(g *Group) {
		g.Subscribe(c)
	})
	assert.Equal(t, 1, hub.Rooms())

	hub.WithRoom("room", func(g *Group) {
		g.Unsubscribe(c)
	})
	assert.Equal(t, 0, hub.Rooms())
	assert.Equal(t, 0, hub.Subscribers("room"))

	hub.WithRoom("room", func(g *Group) {
		g.Subscribe(c)
		g.Subscribe(newFakeClient("d"))
		cleared := g.Clear()
		assert.Len(t, cleared, 2)
		assert.Equal(t, 0, g.Len())
	})
	assert.Equal(t, 0, hub.Rooms())
}

func TestHubSerializesRoomCallbacks(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	keep := newFakeClient("keep")
	hub.WithRoom("room", func(g *Group) {
		g.Subscribe(keep)
	})

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.WithRoom("room", func(g *Group) {
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				c := newFakeClient("tmp")
				g.Subscribe(c)
				g.Unsubscribe(c)
				inside--
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 1, hub.Subscribers("room"))
}
