package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message types pushed to subscribed clients. The scheduler itself never
// subscribes; it polls and relies on its own conditional writes being
// observed by everyone else through this channel.
const (
	MessageTournamentUpdated = "TOURNAMENT_UPDATED"
	MessageSessionActivated  = "SESSION_ACTIVATED"
	MessageSessionCompleted  = "SESSION_COMPLETED"
	MessageSessionsChanged   = "SESSIONS_CHANGED"
	MessageGameUpdated       = "GAME_UPDATED"
	MessagePlayerUpdated     = "PLAYER_UPDATED"
)

// Message is the envelope every room broadcast is wrapped in.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	RoomID  string      `json:"room_id,omitempty"`
}

// TournamentRoom names the hub room spectators and admin views of one
// tournament subscribe to.
func TournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}

// Hub fans row-level change notifications out to websocket clients grouped
// into per-tournament rooms.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("client registered",
				slog.String("room", client.Room),
				slog.Int("room_clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
					h.logger.Debug("client unregistered", slog.String("room", client.Room))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom sends a message to every client in the room. A client whose
// send buffer is full is skipped rather than blocked on.
func (h *Hub) BroadcastToRoom(roomID string, msgType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(Message{Type: msgType, Payload: payload, RoomID: roomID})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message",
			slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		client.trySend(messageBytes)
	}
}
