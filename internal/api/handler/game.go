package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/chainreaction/internal/api/middleware"
	"github.com/mcoot/chainreaction/internal/api/request"
	"github.com/mcoot/chainreaction/internal/api/response"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/bot"
	"github.com/mcoot/chainreaction/internal/services/game"
	"github.com/mcoot/chainreaction/internal/services/preset"
)

// BotRunner plays bot seats until a human is to move
type BotRunner interface {
	ProcessBotMoves(ctx context.Context, gameID model.GameID) ([]bot.BotAction, error)
}

// GameHandler handles game-related endpoints
type GameHandler struct {
	games   game.ControllerInterface
	presets preset.ServiceInterface
	bots    BotRunner
	logger  *slog.Logger
}

// NewGameHandler creates a new game handler. bots may be nil.
func NewGameHandler(
	games game.ControllerInterface,
	presets preset.ServiceInterface,
	bots BotRunner,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		games:   games,
		presets: presets,
		bots:    bots,
		logger:  logger.With(slog.String("component", "api-games")),
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, NewInvalidRequestError("invalid request body"))
			return
		}
	}

	params := game.CreateParams{
		Config:  req.Config(),
		Players: req.PlayerSpecs(),
	}

	if req.Preset != "" {
		if h.presets == nil {
			WriteError(w, NewInvalidRequestError("presets are not available"))
			return
		}
		seats := max(req.MaxPlayers, len(req.Players))
		if seats == 0 {
			seats = len(model.Palette)
		}
		board, err := h.presets.Board(r.Context(), req.Preset, seats)
		if err != nil {
			WriteError(w, err)
			return
		}
		params.InitialBoard = board
		if params.Config.BoardSize == 0 {
			params.Config.BoardSize = board.Size
		}
	}

	created, err := h.games.CreateGame(r.Context(), params)
	if err != nil {
		WriteError(w, err)
		return
	}

	botMoves := h.runBots(r.Context(), created.Game.ID)
	if len(botMoves) > 0 {
		if view, err := h.games.GetGame(r.Context(), created.Game.ID); err == nil {
			created.Game = view
		}
	}

	response.Created(w, response.CreateGameResponseFrom(created, botMoves))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.games.ListGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.GameList{Games: make([]response.GameSummary, len(records))}
	for i, rec := range records {
		resp.Games[i] = response.GameSummaryFromRecord(rec)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.games.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	seat := middleware.MustGetSeat(r.Context())
	id := gameID(r)

	if err := h.games.DeleteGame(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	h.logger.Info("game deleted", slog.String("game_id", string(id)), slog.Int("player", int(seat.PlayerID)))
	response.NoContent(w)
}

// Move handles POST /api/v1/games/{id}/moves
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	seat := middleware.MustGetSeat(r.Context())
	id := gameID(r)

	var req request.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Row == nil || req.Col == nil {
		WriteError(w, NewInvalidRequestError("row and col are required"))
		return
	}

	outcome, err := h.games.ApplyMove(r.Context(), id, seat.PlayerID, model.Position{Row: *req.Row, Col: *req.Col})
	if err != nil {
		WriteError(w, err)
		return
	}

	botMoves := h.runBots(r.Context(), id)

	view, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MoveResponse{
		Outcome:  outcome,
		BotMoves: botMoves,
		Game:     view,
	})
}

// Undo handles POST /api/v1/games/{id}/undo
func (h *GameHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.seek(w, r, h.games.Undo)
}

// Redo handles POST /api/v1/games/{id}/redo
func (h *GameHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.seek(w, r, h.games.Redo)
}

func (h *GameHandler) seek(
	w http.ResponseWriter,
	r *http.Request,
	step func(context.Context, model.GameID) (*model.GameSnapshot, error),
) {
	middleware.MustGetSeat(r.Context())
	id := gameID(r)

	if _, err := step(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	view, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// Rematch handles POST /api/v1/games/{id}/rematch
func (h *GameHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	middleware.MustGetSeat(r.Context())
	id := gameID(r)

	view, err := h.games.Rematch(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	botMoves := h.runBots(r.Context(), id)
	if len(botMoves) > 0 {
		if updated, err := h.games.GetGame(r.Context(), id); err == nil {
			view = updated
		}
	}

	response.JSON(w, http.StatusOK, response.RematchResponse{Game: view, BotMoves: botMoves})
}

// History handles GET /api/v1/games/{id}/history
func (h *GameHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.games.History(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, history)
}

// LegalMoves handles GET /api/v1/games/{id}/legal-moves?player=N
func (h *GameHandler) LegalMoves(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)

	var player model.PlayerID
	if raw := r.URL.Query().Get("player"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError("player must be a number"))
			return
		}
		player = model.PlayerID(n)
	} else {
		view, err := h.games.GetGame(r.Context(), id)
		if err != nil {
			WriteError(w, err)
			return
		}
		player = view.Snapshot.CurrentPlayer
	}

	positions, err := h.games.LegalMoves(r.Context(), id, player)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LegalMoves{Player: player, Positions: positions})
}

// runBots plays any bot seats now to move. Bot failures are logged, not returned:
// the human request that triggered them has already succeeded.
func (h *GameHandler) runBots(ctx context.Context, id model.GameID) []bot.BotAction {
	if h.bots == nil {
		return nil
	}
	actions, err := h.bots.ProcessBotMoves(ctx, id)
	if err != nil {
		h.logger.Error("bot moves failed", slog.String("game_id", string(id)), slog.Any("error", err))
	}
	return actions
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}
