package model

import "errors"

// Common errors used across the application
var (
	// Board errors
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrInvalidBoard = errors.New("invalid board")

	// Move errors
	ErrInvalidPosition     = errors.New("invalid board position")
	ErrNotYourTurn         = errors.New("not this player's turn")
	ErrCellNotOwnable      = errors.New("cell is owned by another player")
	ErrGameAlreadyFinished = errors.New("game is already finished")
	ErrUnknownPlayer       = errors.New("unknown player")

	// History errors
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrResolutionOverflow means a cascade did not settle within the step bound.
	// It indicates a broken rule configuration, not a user mistake.
	ErrResolutionOverflow = errors.New("chain reaction exceeded resolution bound")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid game configuration")

	// Hosting errors
	ErrGameNotFound     = errors.New("game not found")
	ErrInvalidSeatToken = errors.New("invalid seat token")

	// Preset errors
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidPreset  = errors.New("invalid preset")
)
