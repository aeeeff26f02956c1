package bot

import (
	"github.com/mcoot/chainreaction/internal/model"
)

// Strategy defines how a bot chooses its move
type Strategy interface {
	// ChooseMove selects one of the legal positions. legal is never empty.
	ChooseMove(snapshot model.GameSnapshot, player model.PlayerID, legal []model.Position) model.Position
}
