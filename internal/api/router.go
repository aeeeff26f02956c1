package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chainreaction/internal/api/apierr"
	"github.com/mcoot/chainreaction/internal/api/handler"
	apimw "github.com/mcoot/chainreaction/internal/api/middleware"
	"github.com/mcoot/chainreaction/internal/api/response"
	"github.com/mcoot/chainreaction/internal/middleware"
	"github.com/mcoot/chainreaction/internal/services/game"
	"github.com/mcoot/chainreaction/internal/services/preset"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger  *slog.Logger
	Games   game.ControllerInterface
	Presets preset.ServiceInterface // Optional; preset routes are skipped without it
	Bots    handler.BotRunner       // Optional
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	gameHandler := handler.NewGameHandler(cfg.Games, cfg.Presets, cfg.Bots, cfg.Logger)
	seatAuth := apimw.SeatAuth(cfg.Games)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID())
	api.Use(apimw.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Game routes; mutations require the bearer token of a seat in the game
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.Handle("/games/{id}", seatAuth(http.HandlerFunc(gameHandler.Delete))).Methods(http.MethodDelete)
	api.Handle("/games/{id}/moves", seatAuth(http.HandlerFunc(gameHandler.Move))).Methods(http.MethodPost)
	api.Handle("/games/{id}/undo", seatAuth(http.HandlerFunc(gameHandler.Undo))).Methods(http.MethodPost)
	api.Handle("/games/{id}/redo", seatAuth(http.HandlerFunc(gameHandler.Redo))).Methods(http.MethodPost)
	api.Handle("/games/{id}/rematch", seatAuth(http.HandlerFunc(gameHandler.Rematch))).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/history", gameHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/legal-moves", gameHandler.LegalMoves).Methods(http.MethodGet)

	if cfg.Presets != nil {
		presetHandler := handler.NewPresetHandler(cfg.Presets)
		api.HandleFunc("/presets", presetHandler.List).Methods(http.MethodGet)
		api.HandleFunc("/presets/schema", presetHandler.Schema).Methods(http.MethodGet)
		api.HandleFunc("/presets/{name}", presetHandler.Get).Methods(http.MethodGet)
		api.HandleFunc("/presets/{name}", presetHandler.Put).Methods(http.MethodPut)
		api.HandleFunc("/presets/{name}", presetHandler.Delete).Methods(http.MethodDelete)
	}

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}
