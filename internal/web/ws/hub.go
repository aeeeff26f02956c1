package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mcoot/chainreaction/internal/model"
)

// Hub tracks websocket sessions per game and pushes game events to them
type Hub struct {
	mu     sync.RWMutex
	rooms  map[model.GameID]map[*session]struct{}
	logger *slog.Logger
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[model.GameID]map[*session]struct{}),
		logger: logger.With(slog.String("component", "ws-hub")),
	}
}

func (h *Hub) join(s *session) {
	h.mu.Lock()
	room, ok := h.rooms[s.gameID]
	if !ok {
		room = make(map[*session]struct{})
		h.rooms[s.gameID] = room
	}
	room[s] = struct{}{}
	count := len(room)
	h.mu.Unlock()

	h.logger.Info("ws session joined",
		slog.String("game_id", string(s.gameID)),
		slog.Int("player", int(s.playerID())),
		slog.Int("sessions", count))
}

func (h *Hub) leave(s *session) {
	h.mu.Lock()
	if room, ok := h.rooms[s.gameID]; ok {
		delete(room, s)
		if len(room) == 0 {
			delete(h.rooms, s.gameID)
		}
	}
	h.mu.Unlock()
	s.close()

	h.logger.Info("ws session left",
		slog.String("game_id", string(s.gameID)),
		slog.Int("player", int(s.playerID())))
}

// Publish pushes the event to every session watching its game
func (h *Hub) Publish(event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[event.GameID]
	if len(room) == 0 {
		return
	}
	data, err := json.Marshal(ServerMessage{Type: TypeEvent, Event: &event})
	if err != nil {
		h.logger.Error("ws failed to encode event",
			slog.String("game_id", string(event.GameID)),
			slog.Any("error", err))
		return
	}
	for s := range room {
		if !s.enqueue(data) {
			h.logger.Warn("ws message dropped - session buffer full",
				slog.String("game_id", string(event.GameID)),
				slog.Int("player", int(s.playerID())))
		}
	}
}

// SessionCount returns the number of sessions watching a game
func (h *Hub) SessionCount(gameID model.GameID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

// Close disconnects every session
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for s := range room {
			s.close()
		}
		delete(h.rooms, id)
	}
}
