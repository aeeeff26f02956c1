package history

import (
	"github.com/mcoot/chainreaction/internal/model"
)

// Store is an append-only log of game snapshots with a cursor for undo and redo.
// Entries are never modified once pushed. The zero value is not usable; use New.
type Store struct {
	entries []model.GameSnapshot
	cursor  int
}

// New creates a store whose oldest entry is the initial game state
func New(initial model.GameSnapshot) *Store {
	return &Store{
		entries: []model.GameSnapshot{initial.Clone()},
	}
}

// Push appends a snapshot after the cursor, discarding any redo tail
func (s *Store) Push(snapshot model.GameSnapshot) {
	s.entries = append(s.entries[:s.cursor+1], snapshot.Clone())
	s.cursor++
}

// Current returns the snapshot at the cursor
func (s *Store) Current() model.GameSnapshot {
	return s.entries[s.cursor].Clone()
}

// CanUndo reports whether an older snapshot exists
func (s *Store) CanUndo() bool {
	return s.cursor > 0
}

// CanRedo reports whether a newer snapshot exists
func (s *Store) CanRedo() bool {
	return s.cursor < len(s.entries)-1
}

// Undo moves the cursor back one entry and returns the snapshot there
func (s *Store) Undo() (model.GameSnapshot, error) {
	if !s.CanUndo() {
		return model.GameSnapshot{}, model.ErrNothingToUndo
	}
	s.cursor--
	return s.Current(), nil
}

// Redo moves the cursor forward one entry and returns the snapshot there
func (s *Store) Redo() (model.GameSnapshot, error) {
	if !s.CanRedo() {
		return model.GameSnapshot{}, model.ErrNothingToRedo
	}
	s.cursor++
	return s.Current(), nil
}

// Seek moves the cursor to an absolute index
func (s *Store) Seek(index int) (model.GameSnapshot, error) {
	switch {
	case index < 0:
		return model.GameSnapshot{}, model.ErrNothingToUndo
	case index > len(s.entries)-1:
		return model.GameSnapshot{}, model.ErrNothingToRedo
	}
	s.cursor = index
	return s.Current(), nil
}

// Cursor returns the index of the current entry; 0 is the initial state
func (s *Store) Cursor() int {
	return s.cursor
}

// Len returns the number of entries including the redo tail
func (s *Store) Len() int {
	return len(s.entries)
}

// At returns a copy of the entry at index
func (s *Store) At(index int) (model.GameSnapshot, bool) {
	if index < 0 || index >= len(s.entries) {
		return model.GameSnapshot{}, false
	}
	return s.entries[index].Clone(), true
}
