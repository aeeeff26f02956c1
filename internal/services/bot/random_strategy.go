package bot

import (
	"github.com/mcoot/chainreaction/internal/dependencies/random"
	"github.com/mcoot/chainreaction/internal/model"
)

// RandomStrategy picks uniformly among the legal moves
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseMove picks a random legal position
func (s *RandomStrategy) ChooseMove(snapshot model.GameSnapshot, player model.PlayerID, legal []model.Position) model.Position {
	return legal[s.random.Intn(len(legal))]
}
