package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mossy-p/rooms/internal/models"
)

func newProbeCmd() *cobra.Command {
	var (
		url        string
		leaveAfter time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe <roomId> [playerName]",
		Short: "Join a room over WebSocket and print every event",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID := args[0]
			playerName := "Jaime"
			if len(args) > 1 {
				playerName = args[1]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return probe(ctx, cmd.OutOrStdout(), url, roomID, playerName, leaveAfter)
		},
	}

	cmd.Flags().StringVar(&url, "url", "ws://localhost:3001/ws", "WebSocket endpoint")
	cmd.Flags().DurationVar(&leaveAfter, "leave-after", 5*time.Second, "Send room:leave after this delay")

	return cmd
}

func probe(ctx context.Context, out io.Writer, url, roomID, playerName string, leaveAfter time.Duration) error {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()
	fmt.Fprintf(out, "connected %s\n", url)

	if err := sendEvent(conn, models.EventJoin, models.JoinEvent{RoomID: &roomID, PlayerName: &playerName}); err != nil {
		return err
	}

	events := make(chan models.Envelope, 16)
	readErr := make(chan error, 1)
	go func() {
		for {
			var env models.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				readErr <- err
				return
			}
			events <- env
		}
	}()

	leave := time.After(leaveAfter)
	for {
		select {
		case env := <-events:
			fmt.Fprintf(out, "%s %s\n", env.Event, string(env.Data))
			if env.Event == models.EventLeft {
				return conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
		case <-leave:
			if err := sendEvent(conn, models.EventLeave, nil); err != nil {
				return err
			}
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		}
	}
}

func sendEvent(conn *websocket.Conn, event models.EventType, data any) error {
	env := models.Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		env.Data = raw
	}
	return conn.WriteJSON(env)
}
