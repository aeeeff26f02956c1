package ws

import (
	"github.com/mcoot/chainreaction/internal/api/apierr"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/game"
)

// Client message types
const (
	TypeMove  = "move"
	TypeState = "state"
)

// Server message types
const (
	TypeEvent = "event"
	TypeError = "error"
)

// clientMessage is a frame sent by a websocket client. Row and Col are
// pointers so a move missing either is rejected rather than read as 0.
type clientMessage struct {
	Type string `json:"type"`
	Row  *int   `json:"row"`
	Col  *int   `json:"col"`
}

// ServerMessage is a frame pushed to websocket clients
type ServerMessage struct {
	Type  string           `json:"type"`
	Game  *game.View       `json:"game,omitempty"`
	Event *model.Event     `json:"event,omitempty"`
	Error *apierr.APIError `json:"error,omitempty"`
}
