package rules

import (
	"github.com/mcoot/chainreaction/internal/model"
)

// Orthogonal directions in neighbour iteration order: N, S, W, E
var directions = [4]model.Position{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// Rules computes cell capacities and move legality for one board size.
// It holds no mutable state.
type Rules struct {
	size     int
	override int // 0 means geometric critical mass
}

// New creates the rules for a game configuration
func New(cfg model.GameConfig) *Rules {
	r := &Rules{size: cfg.BoardSize}
	if cfg.CriticalMassOverride != nil {
		r.override = *cfg.CriticalMassOverride
	}
	return r
}

// Size returns the board size the rules were built for
func (r *Rules) Size() int {
	return r.size
}

// CriticalMass returns the token count at which the cell at pos explodes
func (r *Rules) CriticalMass(pos model.Position) int {
	if r.override > 0 {
		return r.override
	}
	return CriticalMass(pos, r.size)
}

// Neighbors returns the in-bounds orthogonal neighbours of pos
func (r *Rules) Neighbors(pos model.Position) []model.Position {
	return Neighbors(pos, r.size)
}

// IsLegalMove reports whether player may place a token at pos
func (r *Rules) IsLegalMove(board *model.Board, pos model.Position, player model.PlayerID) bool {
	return IsLegalMove(board, pos, player)
}

// MaxValueBound bounds the number of tokens a settled board can hold
func (r *Rules) MaxValueBound() int {
	perCell := len(directions)
	if r.override > 0 {
		perCell = r.override
	}
	return r.size * r.size * perCell
}

// CriticalMass returns the number of orthogonal in-bounds neighbours of pos:
// 2 for corners, 3 for edges and 4 for interior cells.
func CriticalMass(pos model.Position, size int) int {
	n := 0
	for _, d := range directions {
		if inBounds(pos.Row+d.Row, pos.Col+d.Col, size) {
			n++
		}
	}
	return n
}

// Neighbors returns the in-bounds orthogonal neighbours of pos in N, S, W, E order
func Neighbors(pos model.Position, size int) []model.Position {
	out := make([]model.Position, 0, len(directions))
	for _, d := range directions {
		row, col := pos.Row+d.Row, pos.Col+d.Col
		if inBounds(row, col, size) {
			out = append(out, model.Position{Row: row, Col: col})
		}
	}
	return out
}

// IsLegalMove is true if pos is on the board and empty or already owned by player
func IsLegalMove(board *model.Board, pos model.Position, player model.PlayerID) bool {
	cell, err := board.GetCell(pos)
	if err != nil {
		return false
	}
	return cell.Owner == model.NoPlayer || cell.Owner == player
}

func inBounds(row, col, size int) bool {
	return row >= 0 && row < size && col >= 0 && col < size
}
