package redis

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/mossy-p/rooms/config"
	"github.com/mossy-p/rooms/internal/models"
	"github.com/mossy-p/rooms/internal/registry"
)

type MirrorSuite struct {
	suite.Suite
	mini   *miniredis.Miniredis
	client *redis.Client
	ctx    context.Context
}

func TestMirrorSuite(t *testing.T) {
	suite.Run(t, new(MirrorSuite))
}

func (s *MirrorSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.ctx = context.Background()
}

func (s *MirrorSuite) TearDownTest() {
	_ = s.client.Close()
	s.mini.Close()
}

func (s *MirrorSuite) TestConnect() {
	host, port, err := net.SplitHostPort(s.mini.Addr())
	s.Require().NoError(err)

	client, err := Connect(s.ctx, config.RedisConfig{Host: host, Port: port})
	s.Require().NoError(err)
	s.NoError(client.Close())
}

func (s *MirrorSuite) TestConnectFailure() {
	_, err := Connect(s.ctx, config.RedisConfig{Host: "127.0.0.1", Port: "1"})
	s.Error(err)
}

func (s *MirrorSuite) TestMirrorsRegistryMutations() {
	mirror := NewMirror(s.client, time.Hour, zerolog.Nop())
	reg := registry.New(registry.WithListener(mirror))

	room := reg.CreateRoom("Trivia Night")
	_, ana, err := reg.AddPlayer(room.ID, "Ana")
	s.Require().NoError(err)
	_, bea, err := reg.AddPlayer(room.ID, "Bea")
	s.Require().NoError(err)
	reg.RemovePlayer(room.ID, ana.ID)
	other := reg.CreateRoom("Other")
	reg.DeleteRoom(other.ID)

	// Close drains the queue
	mirror.Close()

	data, err := s.mini.Get("room:" + room.ID)
	s.Require().NoError(err)
	var summary models.RoomSummary
	s.Require().NoError(json.Unmarshal([]byte(data), &summary))
	s.Equal("Trivia Night", summary.Name)
	s.Equal(1, summary.PlayersCount)

	members, err := s.mini.Members("room:" + room.ID + ":players")
	s.Require().NoError(err)
	s.Equal([]string{bea.ID}, members)

	rooms, err := s.mini.Members("rooms")
	s.Require().NoError(err)
	s.Equal([]string{room.ID}, rooms)

	s.False(s.mini.Exists("room:" + other.ID))
	s.True(s.mini.TTL("room:"+room.ID) > 0)
}

func (s *MirrorSuite) TestEmptyRosterRemovesPlayersKey() {
	mirror := NewMirror(s.client, 0, zerolog.Nop())
	reg := registry.New(registry.WithListener(mirror))

	room := reg.CreateRoom("Lobby")
	_, p, err := reg.AddPlayer(room.ID, "Ana")
	s.Require().NoError(err)
	reg.RemovePlayer(room.ID, p.ID)
	mirror.Close()

	s.False(s.mini.Exists("room:" + room.ID + ":players"))
	s.True(s.mini.Exists("room:" + room.ID))
	s.Equal(time.Duration(0), s.mini.TTL("room:"+room.ID))
}

func (s *MirrorSuite) TestUpdatesAfterCloseAreIgnored() {
	mirror := NewMirror(s.client, time.Hour, zerolog.Nop())
	mirror.Close()
	mirror.Close()

	mirror.RoomSaved(models.Room{ID: "late", Name: "Late"})
	mirror.RoomDeleted("late")

	s.False(s.mini.Exists("room:late"))
}
