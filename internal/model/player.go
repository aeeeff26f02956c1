package model

import (
	"fmt"
	"strconv"
)

// PlayerID identifies a seat in a game, from 1 to the configured maximum.
type PlayerID int

// NoPlayer is the owner of an empty cell
const NoPlayer PlayerID = 0

// String renders the player ID for logs and keys
func (id PlayerID) String() string {
	return strconv.Itoa(int(id))
}

// PlayerStatus tracks whether a player is still in the game
type PlayerStatus string

const (
	PlayerActive     PlayerStatus = "active"
	PlayerEliminated PlayerStatus = "eliminated"
)

// PlayerColor is the display colour assigned to a seat
type PlayerColor string

const (
	ColorRed    PlayerColor = "red"
	ColorGreen  PlayerColor = "green"
	ColorBlue   PlayerColor = "blue"
	ColorYellow PlayerColor = "yellow"
	ColorPurple PlayerColor = "purple"
	ColorCyan   PlayerColor = "cyan"
	ColorOrange PlayerColor = "orange"
	ColorPink   PlayerColor = "pink"
)

// Palette is the seat colour order; seat N gets Palette[N-1]
var Palette = []PlayerColor{
	ColorRed, ColorGreen, ColorBlue, ColorYellow,
	ColorPurple, ColorCyan, ColorOrange, ColorPink,
}

// ColorForPlayer returns the palette colour for a seat
func ColorForPlayer(id PlayerID) PlayerColor {
	if id < 1 || int(id) > len(Palette) {
		return ""
	}
	return Palette[id-1]
}

// Player represents a game participant
type Player struct {
	ID     PlayerID     `json:"id"`
	Name   string       `json:"name"`
	Color  PlayerColor  `json:"color"`
	Status PlayerStatus `json:"status"`
}

// PlayerSpec describes a seat before the game starts
type PlayerSpec struct {
	Name        string `json:"name"`
	IsBot       bool   `json:"is_bot,omitempty"`
	BotStrategy string `json:"bot_strategy,omitempty"`
}

// DefaultPlayerName returns the name used when a seat has none
func DefaultPlayerName(id PlayerID) string {
	return fmt.Sprintf("Player %d", int(id))
}
