package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/chainreaction/internal/api/apierr"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/bot"
	"github.com/mcoot/chainreaction/internal/services/game"
)

// BotRunner plays bot seats after a human move
type BotRunner interface {
	ProcessBotMoves(ctx context.Context, gameID model.GameID) ([]bot.BotAction, error)
}

// HandlerConfig holds dependencies for the websocket handler
type HandlerConfig struct {
	Games  game.ControllerInterface
	Bots   BotRunner // Optional
	Hub    *Hub
	Logger *slog.Logger
}

// Handler upgrades game connections and serves the live play protocol
type Handler struct {
	games    game.ControllerInterface
	bots     BotRunner
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		games:  cfg.Games,
		bots:   cfg.Bots,
		hub:    cfg.Hub,
		logger: cfg.Logger.With(slog.String("component", "ws-handler")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle serves GET /games/{id}/ws. A ?token= query parameter binds the
// connection to a seat; without one the client is a spectator.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["id"])

	view, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	var seat *model.Seat
	if token := r.URL.Query().Get("token"); token != "" {
		seat, err = h.games.Authenticate(r.Context(), gameID, token)
		if err != nil {
			apierr.WriteError(w, err)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()))
		return
	}

	s := newSession(conn, gameID, seat)
	h.hub.join(s)
	defer h.hub.leave(s)
	go s.writePump()

	h.send(s, ServerMessage{Type: TypeState, Game: view})
	h.readLoop(s)
}

func (h *Handler) readLoop(s *session) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("ws read failed",
					slog.String("game_id", string(s.gameID)),
					slog.String("error", err.Error()))
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.sendError(s, apierr.NewInvalidRequestError("malformed message"))
			continue
		}

		switch msg.Type {
		case TypeMove:
			if msg.Row == nil || msg.Col == nil {
				h.sendError(s, apierr.NewInvalidRequestError("move requires row and col"))
				continue
			}
			h.handleMove(s, model.Position{Row: *msg.Row, Col: *msg.Col})
		case TypeState:
			view, err := h.games.GetGame(context.Background(), s.gameID)
			if err != nil {
				h.sendError(s, err)
				continue
			}
			h.send(s, ServerMessage{Type: TypeState, Game: view})
		default:
			h.sendError(s, apierr.NewInvalidRequestError("unknown message type "+msg.Type))
		}
	}
}

// handleMove applies a move for the session's seat. The resulting events reach
// every session, the sender included, through the hub.
func (h *Handler) handleMove(s *session, pos model.Position) {
	if s.seat == nil {
		h.sendError(s, apierr.NewForbiddenError("spectators cannot move"))
		return
	}
	ctx := context.Background()
	if _, err := h.games.ApplyMove(ctx, s.gameID, s.seat.PlayerID, pos); err != nil {
		h.sendError(s, err)
		return
	}
	if h.bots == nil {
		return
	}
	if _, err := h.bots.ProcessBotMoves(ctx, s.gameID); err != nil && !errors.Is(err, model.ErrGameAlreadyFinished) {
		h.logger.Error("bot moves failed",
			slog.String("game_id", string(s.gameID)),
			slog.String("error", err.Error()))
	}
}

func (h *Handler) sendError(s *session, err error) {
	_, apiError := apierr.FromError(err)
	h.send(s, ServerMessage{Type: TypeError, Error: &apiError})
}

func (h *Handler) send(s *session, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("ws failed to encode message", slog.Any("error", err))
		return
	}
	if !s.enqueue(data) {
		h.logger.Warn("ws message dropped - session buffer full",
			slog.String("game_id", string(s.gameID)))
	}
}
