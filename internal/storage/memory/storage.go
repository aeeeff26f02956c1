package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	games   map[model.GameID]*model.GameRecord
	presets map[string]*model.Preset
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:   make(map[model.GameID]*model.GameRecord),
		presets: make(map[string]*model.Preset),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) SaveGame(ctx context.Context, record *model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[record.ID] = cloneRecord(record)
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return cloneRecord(record), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*model.GameRecord, 0, len(s.games))
	for _, record := range s.games {
		records = append(records, cloneRecord(record))
	}
	slices.SortFunc(records, func(a, b *model.GameRecord) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return records, nil
}

// Preset operations

func (s *Storage) SavePreset(ctx context.Context, preset *model.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[preset.Name] = clonePreset(preset)
	return nil
}

func (s *Storage) GetPreset(ctx context.Context, name string) (*model.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	preset, ok := s.presets[name]
	if !ok {
		return nil, model.ErrPresetNotFound
	}
	return clonePreset(preset), nil
}

func (s *Storage) DeletePreset(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.presets, name)
	return nil
}

func (s *Storage) ListPresets(ctx context.Context) ([]*model.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	presets := make([]*model.Preset, 0, len(s.presets))
	for _, preset := range s.presets {
		presets = append(presets, clonePreset(preset))
	}
	slices.SortFunc(presets, func(a, b *model.Preset) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return presets, nil
}

func cloneRecord(r *model.GameRecord) *model.GameRecord {
	clone := *r
	clone.Seats = slices.Clone(r.Seats)
	clone.Moves = slices.Clone(r.Moves)
	clone.InitialBoard = r.InitialBoard.Clone()
	if r.Config.CriticalMassOverride != nil {
		v := *r.Config.CriticalMassOverride
		clone.Config.CriticalMassOverride = &v
	}
	return &clone
}

func clonePreset(p *model.Preset) *model.Preset {
	clone := *p
	clone.Cells = slices.Clone(p.Cells)
	return &clone
}
