package storage

import (
	"context"

	"github.com/mcoot/chainreaction/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Game operations
	SaveGame(ctx context.Context, record *model.GameRecord) error
	GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	// ListGames returns all stored games, most recently updated first
	ListGames(ctx context.Context) ([]*model.GameRecord, error)

	// Preset operations
	SavePreset(ctx context.Context, preset *model.Preset) error
	GetPreset(ctx context.Context, name string) (*model.Preset, error)
	DeletePreset(ctx context.Context, name string) error
	// ListPresets returns all presets ordered by name
	ListPresets(ctx context.Context) ([]*model.Preset, error)
}
