package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameCreated    EventType = "game_created"
	EventMoveApplied    EventType = "move_applied"
	EventHistoryChanged EventType = "history_changed" // Undo or redo
	EventGameFinished   EventType = "game_finished"
	EventGameRestarted  EventType = "game_restarted"
)

// Event is the base structure for all events published by hosted games
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    GameID    `json:"game_id"`
	Payload   any       `json:"payload"` // Type-specific data
}

// GameCreatedPayload contains data for game created and restarted events
type GameCreatedPayload struct {
	Config   GameConfig   `json:"config"`
	Players  []Player     `json:"players"`
	Snapshot GameSnapshot `json:"snapshot"`
}

// HistoryChangedPayload contains data for undo and redo events
type HistoryChangedPayload struct {
	Direction string       `json:"direction"` // "undo" or "redo"
	Snapshot  GameSnapshot `json:"snapshot"`
}

// GameFinishedPayload contains data for game finished events
type GameFinishedPayload struct {
	Status     GameStatus       `json:"status"`
	CellCounts map[PlayerID]int `json:"cell_counts"`
}
