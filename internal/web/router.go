package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chainreaction/internal/api/apierr"
	"github.com/mcoot/chainreaction/internal/middleware"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/game"
	"github.com/mcoot/chainreaction/internal/web/sse"
	"github.com/mcoot/chainreaction/internal/web/ws"
)

// RouterConfig holds configuration for the stream router
type RouterConfig struct {
	Logger     *slog.Logger
	Games      game.ControllerInterface
	HubManager *sse.HubManager
	WSHandler  *ws.Handler // Optional; websocket routes are skipped without it
}

// NewRouter creates the router for live game streams
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger, nil))
	r.Use(middleware.Logging(cfg.Logger))

	events := &eventsHandler{games: cfg.Games, hubManager: cfg.HubManager}
	r.HandleFunc("/games/{id}/events", events.Stream).Methods(http.MethodGet)
	if cfg.WSHandler != nil {
		r.HandleFunc("/games/{id}/ws", cfg.WSHandler.Handle).Methods(http.MethodGet)
	}

	return r
}

type eventsHandler struct {
	games      game.ControllerInterface
	hubManager *sse.HubManager
}

// Stream serves GET /games/{id}/events. A ?token= query parameter
// identifies the watching seat in logs; without one the client is a spectator.
func (h *eventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["id"])

	if _, err := h.games.GetGame(r.Context(), gameID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	playerID := model.NoPlayer
	if token := r.URL.Query().Get("token"); token != "" {
		seat, err := h.games.Authenticate(r.Context(), gameID, token)
		if err != nil {
			apierr.WriteError(w, err)
			return
		}
		playerID = seat.PlayerID
	}

	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(gameID), playerID)
}
