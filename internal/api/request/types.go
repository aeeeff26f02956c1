package request

import "github.com/mcoot/chainreaction/internal/model"

// PlayerRequest describes one seat of a new game
type PlayerRequest struct {
	Name        string `json:"name,omitempty"`
	Bot         bool   `json:"bot,omitempty"`
	BotStrategy string `json:"bot_strategy,omitempty"`
}

// CreateGameRequest is the request body for creating a game.
// Zero fields take the server defaults.
type CreateGameRequest struct {
	BoardSize            int             `json:"board_size,omitempty"`
	MaxPlayers           int             `json:"max_players,omitempty"`
	VictoryCondition     string          `json:"victory_condition,omitempty"`
	MaxMoves             int             `json:"max_moves,omitempty"`
	CriticalMassOverride *int            `json:"critical_mass_override,omitempty"`
	Players              []PlayerRequest `json:"players,omitempty"`
	Preset               string          `json:"preset,omitempty"`
}

// Config returns the game configuration requested
func (r CreateGameRequest) Config() model.GameConfig {
	return model.GameConfig{
		BoardSize:            r.BoardSize,
		MaxPlayers:           r.MaxPlayers,
		CriticalMassOverride: r.CriticalMassOverride,
		VictoryCondition:     model.VictoryCondition(r.VictoryCondition),
		MaxMoves:             r.MaxMoves,
	}
}

// PlayerSpecs returns the requested roster. Bots without a strategy play randomly.
func (r CreateGameRequest) PlayerSpecs() []model.PlayerSpec {
	if len(r.Players) == 0 {
		return nil
	}
	specs := make([]model.PlayerSpec, len(r.Players))
	for i, p := range r.Players {
		specs[i] = model.PlayerSpec{Name: p.Name, IsBot: p.Bot, BotStrategy: p.BotStrategy}
		if p.Bot && p.BotStrategy == "" {
			specs[i].BotStrategy = model.DefaultBotStrategy
		}
	}
	return specs
}

// MoveRequest is the request body for playing a move
type MoveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}
