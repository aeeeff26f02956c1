package bot

import (
	"context"
	"log/slog"

	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/game"
)

const (
	// MaxBotIterations is a safety limit for the ProcessBotMoves loop
	MaxBotIterations = 1000
)

// BotActionType represents the type of action a bot took
type BotActionType string

const (
	ActionMove         BotActionType = "move"
	ActionGameComplete BotActionType = "game_complete"
)

// BotAction represents a single action taken by a bot during ProcessBotMoves
type BotAction struct {
	Type     BotActionType  `json:"type"`
	PlayerID model.PlayerID `json:"player_id,omitempty"`
	Position model.Position `json:"position"`
}

// Service plays the turns of bot seats
type Service struct {
	games      game.ControllerInterface
	strategies map[string]Strategy
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	games game.ControllerInterface,
	strategies map[string]Strategy,
	logger *slog.Logger,
) *Service {
	return &Service{
		games:      games,
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// ProcessBotMoves plays moves for consecutive bot seats until a human is
// to move or the game ends. It returns all actions taken.
func (s *Service) ProcessBotMoves(ctx context.Context, gameID model.GameID) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		view, err := s.games.GetGame(ctx, gameID)
		if err != nil {
			return actions, err
		}

		if view.Snapshot.Status.IsFinished() {
			if len(actions) > 0 {
				actions = append(actions, BotAction{Type: ActionGameComplete})
			}
			break
		}

		current := view.Snapshot.CurrentPlayer
		seat := seatFor(view, current)
		if seat == nil || !seat.IsBot {
			break // Human's turn
		}

		legal, err := s.games.LegalMoves(ctx, gameID, current)
		if err != nil {
			return actions, err
		}
		if len(legal) == 0 {
			break
		}

		pos := s.strategyFor(seat.BotStrategy).ChooseMove(view.Snapshot, current, legal)
		if _, err := s.games.ApplyMove(ctx, gameID, current, pos); err != nil {
			return actions, err
		}

		s.logger.Debug("bot moved",
			slog.String("game_id", string(gameID)),
			slog.Int("player", int(current)),
			slog.String("position", pos.String()),
		)
		actions = append(actions, BotAction{
			Type:     ActionMove,
			PlayerID: current,
			Position: pos,
		})
	}

	return actions, nil
}

func seatFor(view *game.View, id model.PlayerID) *game.SeatView {
	for i := range view.Seats {
		if view.Seats[i].PlayerID == id {
			return &view.Seats[i]
		}
	}
	return nil
}

// strategyFor returns the named strategy, falling back to
// the first registered strategy if the name is not found
func (s *Service) strategyFor(name string) Strategy {
	if st, ok := s.strategies[name]; ok {
		return st
	}
	// Fallback: use first available strategy
	for _, st := range s.strategies {
		return st
	}
	return nil
}
