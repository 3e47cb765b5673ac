package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()
	return hub
}

func register(t *testing.T, hub *Hub, room string, buffer int) *Client {
	t.Helper()
	client := &Client{Hub: hub, Send: make(chan []byte, buffer), Room: room}
	hub.Register <- client

	// Registration completes asynchronously in Run; wait for it to land so a
	// broadcast issued right after cannot miss the client.
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		_, ok := hub.rooms[room][client]
		hub.mu.RUnlock()
		if ok {
			return client
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for client registration")
		}
		time.Sleep(time.Millisecond)
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case raw := <-client.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return Message{}
	}
}

func TestTournamentRoom(t *testing.T) {
	assert.Equal(t, "tournament_42", TournamentRoom(42))
}

func TestBroadcastToRoom(t *testing.T) {
	hub := newTestHub()
	first := register(t, hub, TournamentRoom(1), 4)
	second := register(t, hub, TournamentRoom(1), 4)
	other := register(t, hub, TournamentRoom(2), 4)

	hub.BroadcastToRoom(TournamentRoom(1), MessageSessionsChanged, nil)

	for _, client := range []*Client{first, second} {
		msg := receive(t, client)
		assert.Equal(t, MessageSessionsChanged, msg.Type)
		assert.Equal(t, TournamentRoom(1), msg.RoomID)
	}

	select {
	case <-other.Send:
		t.Fatal("client in another room received the broadcast")
	default:
	}
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	hub := newTestHub()
	// Nothing to deliver to; must not panic or block.
	hub.BroadcastToRoom(TournamentRoom(9), MessageSessionActivated, nil)
}

func TestBroadcastSkipsSlowConsumer(t *testing.T) {
	hub := newTestHub()
	client := register(t, hub, TournamentRoom(1), 1)

	hub.BroadcastToRoom(TournamentRoom(1), MessageSessionActivated, nil)
	hub.BroadcastToRoom(TournamentRoom(1), MessageSessionCompleted, nil)

	// The buffer held one message; the second was dropped, not blocked on.
	msg := receive(t, client)
	assert.Equal(t, MessageSessionActivated, msg.Type)
	select {
	case raw := <-client.Send:
		t.Fatalf("unexpected second message: %s", raw)
	default:
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := newTestHub()
	client := register(t, hub, TournamentRoom(1), 1)

	hub.Unregister <- client

	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel should be closed on unregister")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for send channel to close")
	}

	// A broadcast after unregister must not reach or panic on the client.
	hub.BroadcastToRoom(TournamentRoom(1), MessageSessionsChanged, nil)
}
