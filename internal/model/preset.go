package model

import (
	"fmt"
	"time"
)

// Preset is a named, pre-populated board that can seed a new game
type Preset struct {
	Name        string       `json:"name" jsonschema:"title=Preset name,pattern=^[a-z0-9-]+$,minLength=1,required"`
	Description string       `json:"description,omitempty" jsonschema:"description=Free-form text shown when choosing a preset"`
	Size        int          `json:"size" jsonschema:"title=Board size,minimum=5,maximum=32,required"`
	Cells       []PresetCell `json:"cells" jsonschema:"description=Occupied cells; every other cell starts empty"`
	UpdatedAt   time.Time    `json:"updated_at,omitempty" jsonschema:"-"`
}

// PresetCell places tokens for one player on one cell
type PresetCell struct {
	Row   int      `json:"row" jsonschema:"minimum=0,required"`
	Col   int      `json:"col" jsonschema:"minimum=0,required"`
	Owner PlayerID `json:"owner" jsonschema:"minimum=1,maximum=8,required"`
	Value int      `json:"value" jsonschema:"minimum=1,required"`
}

// ToBoard builds the board described by the preset
func (p *Preset) ToBoard() (*Board, error) {
	if p.Size < MinBoardSize || p.Size > MaxBoardSize {
		return nil, fmt.Errorf("%w: size %d outside [%d, %d]", ErrInvalidPreset, p.Size, MinBoardSize, MaxBoardSize)
	}
	board := NewBoard(p.Size)
	for _, c := range p.Cells {
		pos := Position{Row: c.Row, Col: c.Col}
		cell := Cell{Owner: c.Owner, Value: c.Value}
		if c.Owner <= NoPlayer || !cell.Valid() {
			return nil, fmt.Errorf("%w: cell %s has owner %d with value %d", ErrInvalidPreset, pos, c.Owner, c.Value)
		}
		if err := board.SetCell(pos, cell); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
		}
	}
	return board, nil
}

// PresetFromBoard captures the occupied cells of a board as a preset
func PresetFromBoard(name string, board *Board) *Preset {
	preset := &Preset{
		Name: name,
		Size: board.Size,
	}
	for pos, cell := range board.All() {
		if cell.IsEmpty() {
			continue
		}
		preset.Cells = append(preset.Cells, PresetCell{
			Row:   pos.Row,
			Col:   pos.Col,
			Owner: cell.Owner,
			Value: cell.Value,
		})
	}
	return preset
}
