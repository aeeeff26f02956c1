package model

import (
	"fmt"
	"iter"
)

// Position identifies a cell on the board
type Position struct {
	Row int `json:"row"` // 0-indexed from top
	Col int `json:"col"` // 0-indexed from left
}

// String renders the position as (row,col)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Cell holds the tokens stacked on one board position.
// Owner is NoPlayer exactly when Value is 0.
type Cell struct {
	Owner PlayerID `json:"owner"`
	Value int      `json:"value"`
}

// IsEmpty returns true if the cell holds no tokens
func (c Cell) IsEmpty() bool {
	return c.Value == 0
}

// Valid reports whether the cell satisfies the owner/value invariant
func (c Cell) Valid() bool {
	if c.Value < 0 || c.Owner < 0 {
		return false
	}
	return (c.Owner == NoPlayer) == (c.Value == 0)
}

// Board is a square grid of cells. It has no knowledge of the game rules.
type Board struct {
	Size  int      `json:"size"`
	Cells [][]Cell `json:"cells"` // Row-major: Cells[row][col]
}

// NewBoard creates an empty board of the given size
func NewBoard(size int) *Board {
	cells := make([][]Cell, size)
	for i := range cells {
		cells[i] = make([]Cell, size)
	}
	return &Board{
		Size:  size,
		Cells: cells,
	}
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Size && pos.Col >= 0 && pos.Col < b.Size
}

// GetCell returns the cell at the given position
func (b *Board) GetCell(pos Position) (Cell, error) {
	if !b.IsValidPosition(pos) {
		return Cell{}, fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, pos, b.Size, b.Size)
	}
	return b.Cells[pos.Row][pos.Col], nil
}

// SetCell replaces the cell at the given position
func (b *Board) SetCell(pos Position, cell Cell) error {
	if !b.IsValidPosition(pos) {
		return fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, pos, b.Size, b.Size)
	}
	b.Cells[pos.Row][pos.Col] = cell
	return nil
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	clone := &Board{
		Size:  b.Size,
		Cells: make([][]Cell, len(b.Cells)),
	}
	for i, row := range b.Cells {
		clone.Cells[i] = make([]Cell, len(row))
		copy(clone.Cells[i], row)
	}
	return clone
}

// All iterates over every cell in row-major order starting at (0,0).
// Each call returns a fresh sequence.
func (b *Board) All() iter.Seq2[Position, Cell] {
	return func(yield func(Position, Cell) bool) {
		for row := 0; row < b.Size; row++ {
			for col := 0; col < b.Size; col++ {
				if !yield(Position{Row: row, Col: col}, b.Cells[row][col]) {
					return
				}
			}
		}
	}
}

// Equal reports whether two boards have the same size and cells
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.Size != other.Size {
		return false
	}
	for pos, cell := range b.All() {
		if other.Cells[pos.Row][pos.Col] != cell {
			return false
		}
	}
	return true
}

// TotalTokens returns the number of tokens on the board
func (b *Board) TotalTokens() int {
	total := 0
	for _, cell := range b.All() {
		total += cell.Value
	}
	return total
}

// CellCounts returns how many cells each player owns
func (b *Board) CellCounts() map[PlayerID]int {
	counts := make(map[PlayerID]int)
	for _, cell := range b.All() {
		if cell.Owner != NoPlayer {
			counts[cell.Owner]++
		}
	}
	return counts
}

// MaxOwner returns the highest player ID owning a cell, or NoPlayer on an
// empty or nil board
func (b *Board) MaxOwner() PlayerID {
	if b == nil {
		return NoPlayer
	}
	highest := NoPlayer
	for _, cell := range b.All() {
		highest = max(highest, cell.Owner)
	}
	return highest
}

// Validate checks the board shape and the per-cell invariant
func (b *Board) Validate() error {
	if b.Size <= 0 || len(b.Cells) != b.Size {
		return fmt.Errorf("%w: board has %d rows, want %d", ErrInvalidBoard, len(b.Cells), b.Size)
	}
	for row, cells := range b.Cells {
		if len(cells) != b.Size {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, row, len(cells), b.Size)
		}
		for col, cell := range cells {
			if !cell.Valid() {
				return fmt.Errorf("%w: cell (%d,%d) has owner %d with value %d",
					ErrInvalidBoard, row, col, cell.Owner, cell.Value)
			}
		}
	}
	return nil
}
