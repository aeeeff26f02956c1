package model

import "slices"

// BotStrategyRandom picks uniformly among the legal moves.
const BotStrategyRandom = "random"

// DefaultBotStrategy is assigned to bot seats that do not name one.
const DefaultBotStrategy = BotStrategyRandom

var botStrategies = []string{BotStrategyRandom}

// IsValidBotStrategy reports whether a bot seat may use the named strategy.
func IsValidBotStrategy(name string) bool {
	return slices.Contains(botStrategies, name)
}
