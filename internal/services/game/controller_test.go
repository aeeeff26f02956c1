package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chainreaction/internal/dependencies/mocks"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/seat"
	"github.com/mcoot/chainreaction/internal/storage/memory"
	"github.com/mcoot/chainreaction/internal/testutil"
)

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.EventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// failingStorage fails SaveGame once armed. With hold set, SaveGame
// signals entered and waits for hold to close.
type failingStorage struct {
	*memory.Storage
	fail    bool
	entered chan struct{}
	hold    chan struct{}
}

var errSaveFailed = errors.New("save failed")

func (s *failingStorage) SaveGame(ctx context.Context, record *model.GameRecord) error {
	if s.fail {
		return errSaveFailed
	}
	if s.hold != nil {
		close(s.entered)
		<-s.hold
	}
	return s.Storage.SaveGame(ctx, record)
}

type ControllerSuite struct {
	suite.Suite
	storage    *failingStorage
	seats      *seat.Service
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	publisher  *recordingPublisher
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = &failingStorage{Storage: memory.New()}
	s.random = mocks.NewMockRandom()
	s.seats = seat.New(s.random, seat.Config{BcryptCost: bcrypt.MinCost})
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.publisher = &recordingPublisher{}
	s.controller = s.newController()
	s.ctx = context.Background()
}

func (s *ControllerSuite) newController() *Controller {
	return NewController(
		s.storage,
		s.seats,
		s.clock,
		mocks.NewMockIDs("game-1", "game-2"),
		s.publisher,
		Config{},
		testutil.NopLogger(),
	)
}

func (s *ControllerSuite) createTwoPlayer() *CreatedGame {
	s.random.QueueString("secretsecretsecretsecretsecret01", "secretsecretsecretsecretsecret02")
	created, err := s.controller.CreateGame(s.ctx, CreateParams{
		Players: []model.PlayerSpec{{Name: "Alice"}, {Name: "Bob"}},
	})
	s.Require().NoError(err)
	return created
}

func pos(row, col int) model.Position {
	return model.Position{Row: row, Col: col}
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGameSucceeds() {
	created := s.createTwoPlayer()

	s.Equal(model.GameID("game-1"), created.Game.ID)
	s.Equal(model.DefaultGameConfig(), created.Game.Config)
	s.Require().Len(created.Game.Seats, 2)
	s.Equal("Alice", created.Game.Seats[0].Name)
	s.Equal(model.PlayerID(1), created.Game.Snapshot.CurrentPlayer)
	s.Equal(0, created.Game.Snapshot.MoveNumber)
	s.False(created.Game.CanUndo)
	s.Equal(s.clock.Now(), created.Game.CreatedAt)

	s.Len(created.Tokens, 2)
	s.Equal("1.secretsecretsecretsecretsecret01", created.Tokens[1])

	record, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.NotEmpty(record.Seats[0].TokenHash)
	s.NotEqual(created.Tokens[1], record.Seats[0].TokenHash)

	s.Equal([]model.EventType{model.EventGameCreated}, s.publisher.types())
}

func (s *ControllerSuite) TestCreateGameDefaultsRoster() {
	s.random.QueueString("secretsecretsecretsecretsecret01", "secretsecretsecretsecretsecret02")
	created, err := s.controller.CreateGame(s.ctx, CreateParams{})
	s.Require().NoError(err)

	s.Require().Len(created.Game.Players, 2)
	s.Equal(model.DefaultPlayerName(1), created.Game.Players[0].Name)
}

func (s *ControllerSuite) TestCreateGameBotSeatsHaveNoToken() {
	s.random.QueueString("secretsecretsecretsecretsecret01")
	created, err := s.controller.CreateGame(s.ctx, CreateParams{
		Players: []model.PlayerSpec{
			{Name: "Alice"},
			{Name: "Bot", IsBot: true, BotStrategy: model.BotStrategyRandom},
		},
	})
	s.Require().NoError(err)

	s.Len(created.Tokens, 1)
	s.True(created.Game.Seats[1].IsBot)
}

func (s *ControllerSuite) TestCreateGameUnknownBotStrategy() {
	_, err := s.controller.CreateGame(s.ctx, CreateParams{
		Players: []model.PlayerSpec{
			{Name: "Alice"},
			{Name: "Bot", IsBot: true, BotStrategy: "clever"},
		},
	})
	s.ErrorIs(err, model.ErrInvalidConfig)
}

func (s *ControllerSuite) TestCreateGameInvalidConfig() {
	_, err := s.controller.CreateGame(s.ctx, CreateParams{
		Config: model.GameConfig{BoardSize: 3},
	})
	s.ErrorIs(err, model.ErrInvalidConfig)
}

func (s *ControllerSuite) TestCreateGameFromInitialBoard() {
	board := model.NewBoard(6)
	s.Require().NoError(board.SetCell(pos(0, 0), model.Cell{Owner: 2, Value: 1}))

	s.random.QueueString("secretsecretsecretsecretsecret01", "secretsecretsecretsecretsecret02")
	created, err := s.controller.CreateGame(s.ctx, CreateParams{InitialBoard: board})
	s.Require().NoError(err)

	s.Equal(6, created.Game.Config.BoardSize)
	cell, err := created.Game.Snapshot.Board.GetCell(pos(0, 0))
	s.Require().NoError(err)
	s.Equal(model.Cell{Owner: 2, Value: 1}, cell)
}

func (s *ControllerSuite) TestCreateGameSeatsEveryBoardOwner() {
	board := model.NewBoard(5)
	s.Require().NoError(board.SetCell(pos(2, 2), model.Cell{Owner: 4, Value: 1}))

	created, err := s.controller.CreateGame(s.ctx, CreateParams{InitialBoard: board})
	s.Require().NoError(err)

	s.Equal(4, created.Game.Config.MaxPlayers)
	s.Len(created.Game.Players, 4)
}

// Authenticate tests

func (s *ControllerSuite) TestAuthenticate() {
	created := s.createTwoPlayer()

	seatRec, err := s.controller.Authenticate(s.ctx, created.Game.ID, created.Tokens[2])
	s.Require().NoError(err)
	s.Equal(model.PlayerID(2), seatRec.PlayerID)

	_, err = s.controller.Authenticate(s.ctx, created.Game.ID, "2.wrong")
	s.ErrorIs(err, model.ErrInvalidSeatToken)
}

// ApplyMove tests

func (s *ControllerSuite) TestApplyMove() {
	created := s.createTwoPlayer()
	s.publisher.reset()
	s.clock.Advance(time.Minute)

	outcome, err := s.controller.ApplyMove(s.ctx, created.Game.ID, 1, pos(2, 2))
	s.Require().NoError(err)
	s.Equal(model.PlayerID(2), outcome.NewCurrentPlayer)
	s.Equal(1, outcome.Move.Sequence)

	record, err := s.storage.GetGame(s.ctx, created.Game.ID)
	s.Require().NoError(err)
	s.Equal([]model.Move{outcome.Move}, record.Moves)
	s.Equal(1, record.Cursor)
	s.Equal(s.clock.Now(), record.UpdatedAt)

	s.Equal([]model.EventType{model.EventMoveApplied}, s.publisher.types())
}

func (s *ControllerSuite) TestApplyMoveNotYourTurn() {
	created := s.createTwoPlayer()
	s.publisher.reset()

	_, err := s.controller.ApplyMove(s.ctx, created.Game.ID, 2, pos(0, 0))
	s.ErrorIs(err, model.ErrNotYourTurn)
	s.Empty(s.publisher.types())
}

func (s *ControllerSuite) TestApplyMoveGameNotFound() {
	_, err := s.controller.ApplyMove(s.ctx, "missing", 1, pos(0, 0))
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestApplyMoveFinishesGame() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(0, 0))
	s.Require().NoError(err)
	_, err = s.controller.ApplyMove(s.ctx, id, 2, pos(0, 1))
	s.Require().NoError(err)
	s.publisher.reset()

	outcome, err := s.controller.ApplyMove(s.ctx, id, 1, pos(0, 0))
	s.Require().NoError(err)
	s.True(outcome.GameStatus.IsFinished())
	s.Equal(model.PlayerID(1), outcome.GameStatus.Winner)
	s.Equal([]model.EventType{model.EventMoveApplied, model.EventGameFinished}, s.publisher.types())

	_, err = s.controller.ApplyMove(s.ctx, id, 2, pos(4, 4))
	s.ErrorIs(err, model.ErrGameAlreadyFinished)
}

func (s *ControllerSuite) TestSaveFailureEvictsAndSuppressesEvents() {
	created := s.createTwoPlayer()
	id := created.Game.ID
	s.publisher.reset()

	s.storage.fail = true
	_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(2, 2))
	s.ErrorIs(err, errSaveFailed)
	s.Empty(s.publisher.types())

	// The unsaved move is gone once the game reloads from storage
	s.storage.fail = false
	view, err := s.controller.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(0, view.Snapshot.MoveNumber)
	s.Equal(model.PlayerID(1), view.Snapshot.CurrentPlayer)
}

// Undo / Redo tests

func (s *ControllerSuite) TestUndoRedo() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(2, 2))
	s.Require().NoError(err)
	s.publisher.reset()

	snapshot, err := s.controller.Undo(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(0, snapshot.MoveNumber)
	s.Equal(model.PlayerID(1), snapshot.CurrentPlayer)

	history, err := s.controller.History(s.ctx, id)
	s.Require().NoError(err)
	s.Len(history.Moves, 1)
	s.Equal(0, history.Cursor)

	snapshot, err = s.controller.Redo(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, snapshot.MoveNumber)

	s.Equal([]model.EventType{model.EventHistoryChanged, model.EventHistoryChanged}, s.publisher.types())

	_, err = s.controller.Redo(s.ctx, id)
	s.ErrorIs(err, model.ErrNothingToRedo)
}

func (s *ControllerSuite) TestUndoAtStart() {
	created := s.createTwoPlayer()

	_, err := s.controller.Undo(s.ctx, created.Game.ID)
	s.ErrorIs(err, model.ErrNothingToUndo)
}

func (s *ControllerSuite) TestMoveAfterUndoTruncatesRedo() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(2, 2))
	s.Require().NoError(err)
	_, err = s.controller.Undo(s.ctx, id)
	s.Require().NoError(err)
	_, err = s.controller.ApplyMove(s.ctx, id, 1, pos(3, 3))
	s.Require().NoError(err)

	history, err := s.controller.History(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(history.Moves, 1)
	s.Equal(pos(3, 3), history.Moves[0].Position)

	view, err := s.controller.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.False(view.CanRedo)
}

// Restore tests

func (s *ControllerSuite) TestRestoreFromStorage() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(0, 0))
	s.Require().NoError(err)
	_, err = s.controller.ApplyMove(s.ctx, id, 2, pos(4, 4))
	s.Require().NoError(err)
	_, err = s.controller.Undo(s.ctx, id)
	s.Require().NoError(err)
	before, err := s.controller.GetGame(s.ctx, id)
	s.Require().NoError(err)

	restarted := s.newController()
	after, err := restarted.GetGame(s.ctx, id)
	s.Require().NoError(err)

	s.True(before.Snapshot.Board.Equal(after.Snapshot.Board))
	s.Equal(before.Snapshot.CurrentPlayer, after.Snapshot.CurrentPlayer)
	s.Equal(before.Snapshot.MoveNumber, after.Snapshot.MoveNumber)
	s.True(after.CanRedo)

	// Tokens issued by the first controller still work
	seatRec, err := restarted.Authenticate(s.ctx, id, created.Tokens[1])
	s.Require().NoError(err)
	s.Equal(model.PlayerID(1), seatRec.PlayerID)

	_, err = restarted.Redo(s.ctx, id)
	s.Require().NoError(err)
}

// Rematch tests

func (s *ControllerSuite) TestRematch() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(2, 2))
	s.Require().NoError(err)
	s.publisher.reset()

	view, err := s.controller.Rematch(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, view.Generation)
	s.Equal(0, view.Snapshot.MoveNumber)
	s.False(view.CanUndo)
	s.Equal([]model.EventType{model.EventGameRestarted}, s.publisher.types())

	// Moves on the new engine publish events
	s.publisher.reset()
	_, err = s.controller.ApplyMove(s.ctx, id, 1, pos(1, 1))
	s.Require().NoError(err)
	s.Equal([]model.EventType{model.EventMoveApplied}, s.publisher.types())

	seatRec, err := s.controller.Authenticate(s.ctx, id, created.Tokens[2])
	s.Require().NoError(err)
	s.Equal(model.PlayerID(2), seatRec.PlayerID)
}

// Query tests

func (s *ControllerSuite) TestLegalMoves() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(0, 0))
	s.Require().NoError(err)

	legal, err := s.controller.LegalMoves(s.ctx, id, 2)
	s.Require().NoError(err)
	s.Len(legal, 24)
	s.NotContains(legal, pos(0, 0))

	legal, err = s.controller.LegalMoves(s.ctx, id, 1)
	s.Require().NoError(err)
	s.Len(legal, 25)

	_, err = s.controller.LegalMoves(s.ctx, id, 7)
	s.ErrorIs(err, model.ErrUnknownPlayer)
}

func (s *ControllerSuite) TestListAndDeleteGames() {
	s.createTwoPlayer()
	s.clock.Advance(time.Minute)
	s.random.QueueString("secretsecretsecretsecretsecret03", "secretsecretsecretsecretsecret04")
	_, err := s.controller.CreateGame(s.ctx, CreateParams{})
	s.Require().NoError(err)

	records, err := s.controller.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(model.GameID("game-2"), records[0].ID)

	s.Require().NoError(s.controller.DeleteGame(s.ctx, "game-1"))
	_, err = s.controller.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestDeleteDuringSaveStaysDeleted() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	s.storage.entered = make(chan struct{})
	s.storage.hold = make(chan struct{})

	moved := make(chan error, 1)
	go func() {
		_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(2, 2))
		moved <- err
	}()
	<-s.storage.entered

	deleted := make(chan error, 1)
	go func() {
		deleted <- s.controller.DeleteGame(s.ctx, id)
	}()

	// Give the delete a chance to run while the save is held
	time.Sleep(20 * time.Millisecond)
	close(s.storage.hold)

	s.Require().NoError(<-moved)
	s.Require().NoError(<-deleted)

	_, err := s.storage.GetGame(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.controller.ApplyMove(s.ctx, id, 2, pos(0, 0))
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.controller.GetGame(s.ctx, id)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestStaleHandleSeesDeletion() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	c := s.controller
	c.mu.Lock()
	stale := c.games[id]
	c.mu.Unlock()
	s.Require().NotNil(stale)

	s.Require().NoError(c.DeleteGame(s.ctx, id))

	stale.mu.Lock()
	s.True(stale.deleted)
	stale.mu.Unlock()

	// A restore that read storage before the delete must not re-cache the game
	c.mu.Lock()
	_, cached := c.games[id]
	c.mu.Unlock()
	s.False(cached)
}

func (s *ControllerSuite) TestViewCellCounts() {
	created := s.createTwoPlayer()
	id := created.Game.ID

	_, err := s.controller.ApplyMove(s.ctx, id, 1, pos(0, 0))
	s.Require().NoError(err)

	view, err := s.controller.GetGame(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, view.CellCounts[1])
	s.Equal(0, view.CellCounts[2])
}
