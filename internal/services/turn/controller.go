package turn

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mcoot/chainreaction/internal/model"
)

// Controller tracks the roster, whose turn it is, eliminations and victory.
// It is not safe for concurrent use.
type Controller struct {
	config  model.GameConfig
	players []model.Player // Ordered by ID
	current model.PlayerID
	moved   map[model.PlayerID]bool
	status  model.GameStatus
}

// New creates a controller for a fresh game. Player IDs are assigned from 1
// in roster order and player 1 moves first.
func New(cfg model.GameConfig, specs []model.PlayerSpec) (*Controller, error) {
	if len(specs) < model.MinPlayers || len(specs) > cfg.MaxPlayers {
		return nil, fmt.Errorf("%w: %d players, want %d to %d", model.ErrInvalidConfig, len(specs), model.MinPlayers, cfg.MaxPlayers)
	}
	players := make([]model.Player, len(specs))
	for i, spec := range specs {
		id := model.PlayerID(i + 1)
		name := spec.Name
		if name == "" {
			name = model.DefaultPlayerName(id)
		}
		players[i] = model.Player{
			ID:     id,
			Name:   name,
			Color:  model.ColorForPlayer(id),
			Status: model.PlayerActive,
		}
	}
	return &Controller{
		config:  cfg,
		players: players,
		current: players[0].ID,
		moved:   make(map[model.PlayerID]bool),
		status:  model.GameStatus{State: model.GameStateInProgress},
	}, nil
}

// CurrentPlayer returns the player whose turn it is
func (c *Controller) CurrentPlayer() model.PlayerID {
	return c.current
}

// Status returns the overall game status
func (c *Controller) Status() model.GameStatus {
	return c.status
}

// Players returns a copy of the roster
func (c *Controller) Players() []model.Player {
	return slices.Clone(c.players)
}

// Player returns the player with the given ID
func (c *Controller) Player(id model.PlayerID) (model.Player, bool) {
	if id < 1 || int(id) > len(c.players) {
		return model.Player{}, false
	}
	return c.players[id-1], true
}

// IsActive reports whether the player is still in the game
func (c *Controller) IsActive(id model.PlayerID) bool {
	p, ok := c.Player(id)
	return ok && p.Status == model.PlayerActive
}

// ActivePlayers returns the IDs of players not yet eliminated
func (c *Controller) ActivePlayers() []model.PlayerID {
	var ids []model.PlayerID
	for _, p := range c.players {
		if p.Status == model.PlayerActive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// HasMoved reports whether the player has made at least one move
func (c *Controller) HasMoved(id model.PlayerID) bool {
	return c.moved[id]
}

// RecordMove marks the player as having moved
func (c *Controller) RecordMove(id model.PlayerID) {
	c.moved[id] = true
}

// OthersHaveMoved reports whether every active player other than id has moved.
// Once true, a board held entirely by id decides the game.
func (c *Controller) OthersHaveMoved(id model.PlayerID) bool {
	for _, p := range c.players {
		if p.ID != id && p.Status == model.PlayerActive && !c.moved[p.ID] {
			return false
		}
	}
	return true
}

// RecomputeElimination eliminates every active player who has moved and owns
// no cells. Players who have not moved yet are never eliminated.
func (c *Controller) RecomputeElimination(board *model.Board) []model.PlayerID {
	counts := board.CellCounts()
	var eliminated []model.PlayerID
	for i := range c.players {
		p := &c.players[i]
		if p.Status != model.PlayerActive || !c.moved[p.ID] || counts[p.ID] > 0 {
			continue
		}
		p.Status = model.PlayerEliminated
		eliminated = append(eliminated, p.ID)
	}
	return eliminated
}

// CheckVictory updates the game status after a completed move
func (c *Controller) CheckVictory(board *model.Board, moveNumber int) model.GameStatus {
	active := c.ActivePlayers()
	if len(active) == 1 {
		c.status = model.GameStatus{State: model.GameStateFinished, Winner: active[0]}
		return c.status
	}
	if c.config.VictoryCondition == model.VictoryHighestControl && moveNumber >= c.config.MaxMoves {
		c.status = highestControl(board.CellCounts(), active)
	}
	return c.status
}

func highestControl(counts map[model.PlayerID]int, active []model.PlayerID) model.GameStatus {
	status := model.GameStatus{State: model.GameStateFinished}
	best := -1
	for _, id := range active {
		switch n := counts[id]; {
		case n > best:
			best = n
			status.Winner = id
			status.Draw = false
		case n == best:
			status.Draw = true
		}
	}
	if status.Draw {
		status.Winner = model.NoPlayer
	}
	return status
}

// AdvanceTurn passes the turn to the next active player in ID order, wrapping.
// With a single active player left the game finishes with that player as winner.
func (c *Controller) AdvanceTurn() model.PlayerID {
	if c.status.IsFinished() {
		return c.current
	}
	active := c.ActivePlayers()
	if len(active) == 1 {
		c.status = model.GameStatus{State: model.GameStateFinished, Winner: active[0]}
		c.current = active[0]
		return c.current
	}
	for _, id := range active {
		if id > c.current {
			c.current = id
			return c.current
		}
	}
	c.current = active[0]
	return c.current
}

// PlayerStatuses returns the status of every player
func (c *Controller) PlayerStatuses() map[model.PlayerID]model.PlayerStatus {
	statuses := make(map[model.PlayerID]model.PlayerStatus, len(c.players))
	for _, p := range c.players {
		statuses[p.ID] = p.Status
	}
	return statuses
}

// MovedPlayers returns the IDs of players who have moved, ascending
func (c *Controller) MovedPlayers() []model.PlayerID {
	return slices.Sorted(maps.Keys(c.moved))
}

// Restore resets the controller to the state captured in a snapshot
func (c *Controller) Restore(snapshot model.GameSnapshot) {
	c.current = snapshot.CurrentPlayer
	c.status = snapshot.Status
	for i := range c.players {
		if status, ok := snapshot.PlayerStatuses[c.players[i].ID]; ok {
			c.players[i].Status = status
		}
	}
	c.moved = make(map[model.PlayerID]bool, len(snapshot.MovedPlayers))
	for _, id := range snapshot.MovedPlayers {
		c.moved[id] = true
	}
}
