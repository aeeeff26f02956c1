package response

import (
	"strconv"
	"time"

	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/bot"
	"github.com/mcoot/chainreaction/internal/services/game"
)

// CreateGameResponse is returned once when a game is created.
// Tokens are keyed by player ID and cannot be retrieved again.
type CreateGameResponse struct {
	Game     *game.View        `json:"game"`
	Tokens   map[string]string `json:"tokens"`
	BotMoves []bot.BotAction   `json:"bot_moves,omitempty"`
}

// CreateGameResponseFrom converts a created game
func CreateGameResponseFrom(created *game.CreatedGame, botMoves []bot.BotAction) CreateGameResponse {
	tokens := make(map[string]string, len(created.Tokens))
	for id, token := range created.Tokens {
		tokens[strconv.Itoa(int(id))] = token
	}
	return CreateGameResponse{Game: created.Game, Tokens: tokens, BotMoves: botMoves}
}

// GameSummary is one entry of the game list
type GameSummary struct {
	ID               string                 `json:"id"`
	BoardSize        int                    `json:"board_size"`
	VictoryCondition model.VictoryCondition `json:"victory_condition"`
	Players          []string               `json:"players"`
	Moves            int                    `json:"moves"`
	Status           model.GameStatus       `json:"status"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// GameSummaryFromRecord converts a stored game record
func GameSummaryFromRecord(r *model.GameRecord) GameSummary {
	players := make([]string, len(r.Seats))
	for i, s := range r.Seats {
		players[i] = s.Name
	}
	return GameSummary{
		ID:               string(r.ID),
		BoardSize:        r.Config.BoardSize,
		VictoryCondition: r.Config.VictoryCondition,
		Players:          players,
		Moves:            r.Cursor,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// GameList wraps the game list
type GameList struct {
	Games []GameSummary `json:"games"`
}

// MoveResponse is the response after playing a move
type MoveResponse struct {
	Outcome  *model.MoveOutcome `json:"outcome"`
	BotMoves []bot.BotAction    `json:"bot_moves,omitempty"`
	Game     *game.View         `json:"game"`
}

// RematchResponse is the response after restarting a game
type RematchResponse struct {
	Game     *game.View      `json:"game"`
	BotMoves []bot.BotAction `json:"bot_moves,omitempty"`
}

// LegalMoves lists the positions a player may play
type LegalMoves struct {
	Player    model.PlayerID   `json:"player"`
	Positions []model.Position `json:"positions"`
}

// PresetList wraps the preset list
type PresetList struct {
	Presets []*model.Preset `json:"presets"`
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
