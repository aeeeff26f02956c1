package model

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// GameID uniquely identifies a hosted game
type GameID string

// VictoryCondition selects how a game is decided
type VictoryCondition string

const (
	// VictoryElimination ends the game when one active player remains
	VictoryElimination VictoryCondition = "elimination"
	// VictoryHighestControl also ends the game after MaxMoves, won by the largest territory
	VictoryHighestControl VictoryCondition = "highest_control"
)

// Board and roster limits
const (
	MinBoardSize   = 5
	MaxBoardSize   = 32
	MinPlayers     = 2
	DefaultPlayers = 2
)

// GameConfig is fixed at game creation and never changes afterwards
type GameConfig struct {
	BoardSize            int              `json:"board_size"`
	MaxPlayers           int              `json:"max_players"`
	CriticalMassOverride *int             `json:"critical_mass_override,omitempty"`
	VictoryCondition     VictoryCondition `json:"victory_condition"`
	MaxMoves             int              `json:"max_moves,omitempty"` // HighestControl only
}

// DefaultGameConfig returns the classic 5x5 two-player elimination setup
func DefaultGameConfig() GameConfig {
	return GameConfig{
		BoardSize:        MinBoardSize,
		MaxPlayers:       DefaultPlayers,
		VictoryCondition: VictoryElimination,
	}
}

// Validate checks the configuration against the game limits
func (c GameConfig) Validate() error {
	if c.BoardSize < MinBoardSize || c.BoardSize > MaxBoardSize {
		return fmt.Errorf("%w: board size %d outside [%d, %d]", ErrInvalidConfig, c.BoardSize, MinBoardSize, MaxBoardSize)
	}
	if c.MaxPlayers < MinPlayers || c.MaxPlayers > len(Palette) {
		return fmt.Errorf("%w: max players %d outside [%d, %d]", ErrInvalidConfig, c.MaxPlayers, MinPlayers, len(Palette))
	}
	if c.CriticalMassOverride != nil && *c.CriticalMassOverride < 1 {
		return fmt.Errorf("%w: critical mass override must be positive", ErrInvalidConfig)
	}
	switch c.VictoryCondition {
	case VictoryElimination:
	case VictoryHighestControl:
		if c.MaxMoves <= 0 {
			return fmt.Errorf("%w: highest_control requires max_moves", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown victory condition %q", ErrInvalidConfig, c.VictoryCondition)
	}
	return nil
}

// GameState is the overall phase of a game
type GameState string

const (
	GameStateInProgress GameState = "in_progress"
	GameStateFinished   GameState = "finished"
)

// GameStatus describes whether and how the game ended
type GameStatus struct {
	State  GameState `json:"state"`
	Winner PlayerID  `json:"winner,omitempty"` // NoPlayer while in progress or on a draw
	Draw   bool      `json:"draw,omitempty"`
}

// IsFinished returns true once the game has a winner or ended in a draw
func (s GameStatus) IsFinished() bool {
	return s.State == GameStateFinished
}

// Move is one accepted placement. Sequence is the logical move number, starting at 1.
type Move struct {
	Player   PlayerID `json:"player"`
	Position Position `json:"position"`
	Sequence int      `json:"sequence"`
}

// GameSnapshot captures the full engine state at one point in history.
// Snapshots are never modified after they are recorded.
type GameSnapshot struct {
	Board          *Board                    `json:"board"`
	CurrentPlayer  PlayerID                  `json:"current_player"`
	MoveNumber     int                       `json:"move_number"`
	PlayerStatuses map[PlayerID]PlayerStatus `json:"player_statuses"`
	MovedPlayers   []PlayerID                `json:"moved_players"` // Sorted ascending
	Status         GameStatus                `json:"status"`
	LastMove       *Move                     `json:"last_move,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (s GameSnapshot) Clone() GameSnapshot {
	clone := s
	clone.Board = s.Board.Clone()
	clone.PlayerStatuses = maps.Clone(s.PlayerStatuses)
	clone.MovedPlayers = slices.Clone(s.MovedPlayers)
	if s.LastMove != nil {
		m := *s.LastMove
		clone.LastMove = &m
	}
	return clone
}

// HasMoved returns true if the player had made a move when the snapshot was taken
func (s GameSnapshot) HasMoved(id PlayerID) bool {
	_, found := slices.BinarySearch(s.MovedPlayers, id)
	return found
}

// ExplosionEvent records one processed explosion during cascade resolution
type ExplosionEvent struct {
	Position      Position   `json:"position"`
	Owner         PlayerID   `json:"owner"`
	DistributedTo []Position `json:"distributed_to"`
	Generation    int        `json:"generation"` // 0 for the triggering cell
}

// MoveOutcome is the result of a committed move
type MoveOutcome struct {
	Move             Move             `json:"move"`
	FinalBoard       *Board           `json:"final_board"`
	ExplosionEvents  []ExplosionEvent `json:"explosion_events"`
	NewCurrentPlayer PlayerID         `json:"new_current_player"`
	GameStatus       GameStatus       `json:"game_status"`
	Eliminated       []PlayerID       `json:"eliminated,omitempty"` // Players eliminated by this move
}

// Seat binds a player slot in a hosted game to its credentials
type Seat struct {
	PlayerID    PlayerID `json:"player_id"`
	Name        string   `json:"name"`
	TokenHash   string   `json:"token_hash"`
	IsBot       bool     `json:"is_bot,omitempty"`
	BotStrategy string   `json:"bot_strategy,omitempty"`
}

// GameRecord is the persisted form of a hosted game.
// The engine state is rebuilt by replaying Moves and seeking to Cursor.
type GameRecord struct {
	ID           GameID     `json:"id"`
	Config       GameConfig `json:"config"`
	Seats        []Seat     `json:"seats"`
	InitialBoard *Board     `json:"initial_board,omitempty"`
	Moves        []Move     `json:"moves"`
	Cursor       int        `json:"cursor"`
	Status       GameStatus `json:"status"`
	Generation   int        `json:"generation"` // Incremented on each rematch
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Seat returns the seat for a player, or nil if not found
func (r *GameRecord) Seat(id PlayerID) *Seat {
	for i := range r.Seats {
		if r.Seats[i].PlayerID == id {
			return &r.Seats[i]
		}
	}
	return nil
}

// PlayerSpecs returns the roster used to construct an engine for this record
func (r *GameRecord) PlayerSpecs() []PlayerSpec {
	specs := make([]PlayerSpec, len(r.Seats))
	for i, seat := range r.Seats {
		specs[i] = PlayerSpec{
			Name:        seat.Name,
			IsBot:       seat.IsBot,
			BotStrategy: seat.BotStrategy,
		}
	}
	return specs
}
