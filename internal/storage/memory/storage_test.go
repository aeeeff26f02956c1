package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chainreaction/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func newRecord(id model.GameID, updated time.Time) *model.GameRecord {
	return &model.GameRecord{
		ID:     id,
		Config: model.DefaultGameConfig(),
		Seats: []model.Seat{
			{PlayerID: 1, Name: "Alice", TokenHash: "hash-1"},
			{PlayerID: 2, Name: "Bob", TokenHash: "hash-2"},
		},
		Moves:     []model.Move{{Player: 1, Position: model.Position{Row: 0, Col: 0}, Sequence: 1}},
		Cursor:    1,
		Status:    model.GameStatus{State: model.GameStateInProgress},
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	record := newRecord("game-1", time.Now())

	err := s.storage.SaveGame(s.ctx, record)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(record, retrieved)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestSavedGameIsCopied() {
	record := newRecord("game-1", time.Now())
	_ = s.storage.SaveGame(s.ctx, record)

	record.Moves = append(record.Moves, model.Move{Player: 2})
	record.Seats[0].Name = "Mallory"

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Len(retrieved.Moves, 1)
	s.Equal("Alice", retrieved.Seats[0].Name)
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, newRecord("game-1", time.Now()))

	err := s.storage.DeleteGame(s.ctx, "game-1")
	s.Require().NoError(err)

	_, err = s.storage.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestListGamesNewestFirst() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_ = s.storage.SaveGame(s.ctx, newRecord("old", base))
	_ = s.storage.SaveGame(s.ctx, newRecord("new", base.Add(time.Hour)))

	records, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(model.GameID("new"), records[0].ID)
	s.Equal(model.GameID("old"), records[1].ID)
}

// Preset tests

func (s *StorageSuite) TestSaveAndGetPreset() {
	preset := &model.Preset{
		Name:  "corners",
		Size:  5,
		Cells: []model.PresetCell{{Row: 0, Col: 0, Owner: 1, Value: 1}},
	}

	err := s.storage.SavePreset(s.ctx, preset)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPreset(s.ctx, "corners")
	s.Require().NoError(err)
	s.Equal(preset, retrieved)
}

func (s *StorageSuite) TestGetPresetNotFound() {
	_, err := s.storage.GetPreset(s.ctx, "missing")
	s.ErrorIs(err, model.ErrPresetNotFound)
}

func (s *StorageSuite) TestListPresetsByName() {
	_ = s.storage.SavePreset(s.ctx, &model.Preset{Name: "b", Size: 5})
	_ = s.storage.SavePreset(s.ctx, &model.Preset{Name: "a", Size: 6})

	presets, err := s.storage.ListPresets(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(presets, 2)
	s.Equal("a", presets[0].Name)
	s.Equal("b", presets[1].Name)
}

func (s *StorageSuite) TestDeletePreset() {
	_ = s.storage.SavePreset(s.ctx, &model.Preset{Name: "a", Size: 5})

	s.Require().NoError(s.storage.DeletePreset(s.ctx, "a"))

	_, err := s.storage.GetPreset(s.ctx, "a")
	s.ErrorIs(err, model.ErrPresetNotFound)
}
