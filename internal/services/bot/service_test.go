package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chainreaction/internal/dependencies/mocks"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/bot"
	"github.com/mcoot/chainreaction/internal/services/game"
	"github.com/mcoot/chainreaction/internal/services/seat"
	"github.com/mcoot/chainreaction/internal/storage/memory"
	"github.com/mcoot/chainreaction/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	mockRandom *mocks.MockRandom
	controller *game.Controller
	botService *bot.Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.mockRandom = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	seats := seat.New(s.mockRandom, seat.Config{BcryptCost: bcrypt.MinCost})
	s.controller = game.NewController(
		memory.New(),
		seats,
		mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		mocks.NewMockIDs("game-1"),
		nil,
		game.Config{},
		logger,
	)
	strategies := map[string]bot.Strategy{
		model.BotStrategyRandom: bot.NewRandomStrategy(s.mockRandom),
	}
	s.botService = bot.NewService(s.controller, strategies, logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) createGame(players ...model.PlayerSpec) model.GameID {
	s.mockRandom.QueueString("secretsecretsecretsecretsecret01", "secretsecretsecretsecretsecret02")
	created, err := s.controller.CreateGame(s.ctx, game.CreateParams{Players: players})
	s.Require().NoError(err)
	return created.Game.ID
}

func human(name string) model.PlayerSpec {
	return model.PlayerSpec{Name: name}
}

func randomBot(name string) model.PlayerSpec {
	return model.PlayerSpec{Name: name, IsBot: true, BotStrategy: model.BotStrategyRandom}
}

func (s *ServiceSuite) TestProcessBotMoves_HumanToMove() {
	id := s.createGame(human("Alice"), randomBot("Bot"))

	actions, err := s.botService.ProcessBotMoves(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotMoves_BotRepliesToHuman() {
	id := s.createGame(human("Alice"), randomBot("Bot"))

	_, err := s.controller.ApplyMove(s.ctx, id, 1, model.Position{Row: 0, Col: 0})
	s.Require().NoError(err)

	// First legal cell for the bot is (0,1)
	s.mockRandom.QueueIntn(0)
	actions, err := s.botService.ProcessBotMoves(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(actions, 1)
	s.Equal(bot.ActionMove, actions[0].Type)
	s.Equal(model.PlayerID(2), actions[0].PlayerID)
	s.Equal(model.Position{Row: 0, Col: 1}, actions[0].Position)

	view, err := s.controller.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.PlayerID(1), view.Snapshot.CurrentPlayer)
	cell, err := view.Snapshot.Board.GetCell(model.Position{Row: 0, Col: 1})
	s.Require().NoError(err)
	s.Equal(model.Cell{Owner: 2, Value: 1}, cell)
}

func (s *ServiceSuite) TestProcessBotMoves_BotsPlayToCompletion() {
	id := s.createGame(randomBot("Bot 1"), randomBot("Bot 2"))

	// Always pick the first legal cell:
	// P1 (0,0), P2 (0,1), P1 (0,0) explodes and captures P2's only cell
	actions, err := s.botService.ProcessBotMoves(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(actions, 4)
	s.Equal(model.Position{Row: 0, Col: 0}, actions[0].Position)
	s.Equal(model.Position{Row: 0, Col: 1}, actions[1].Position)
	s.Equal(model.Position{Row: 0, Col: 0}, actions[2].Position)
	s.Equal(bot.ActionGameComplete, actions[3].Type)

	view, err := s.controller.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.True(view.Snapshot.Status.IsFinished())
	s.Equal(model.PlayerID(1), view.Snapshot.Status.Winner)
}

func (s *ServiceSuite) TestProcessBotMoves_FinishedGameNoActions() {
	id := s.createGame(randomBot("Bot 1"), randomBot("Bot 2"))
	_, err := s.botService.ProcessBotMoves(s.ctx, id)
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotMoves(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotMoves_GameNotFound() {
	_, err := s.botService.ProcessBotMoves(s.ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}
