package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/chainreaction/internal/dependencies/clock"
	"github.com/mcoot/chainreaction/internal/dependencies/ids"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/engine"
	"github.com/mcoot/chainreaction/internal/services/seat"
	"github.com/mcoot/chainreaction/internal/storage"
)

// Publisher receives events from hosted games, e.g. to fan them out to stream clients
type Publisher interface {
	Publish(event model.Event)
}

// NopPublisher discards all events
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(model.Event) {}

// MultiPublisher forwards every event to each publisher in order
type MultiPublisher []Publisher

// Publish forwards the event
func (m MultiPublisher) Publish(event model.Event) {
	for _, p := range m {
		p.Publish(event)
	}
}

// CreateParams describes a new hosted game. Zero config fields take the controller defaults.
type CreateParams struct {
	Config       model.GameConfig
	Players      []model.PlayerSpec
	InitialBoard *model.Board
}

// CreatedGame is returned once from CreateGame; the seat tokens are not stored
type CreatedGame struct {
	Game   *View
	Tokens map[model.PlayerID]string // Human seats only
}

// View is the externally visible state of a hosted game
type View struct {
	ID         model.GameID           `json:"id"`
	Config     model.GameConfig       `json:"config"`
	Players    []model.Player         `json:"players"`
	Seats      []SeatView             `json:"seats"`
	Snapshot   model.GameSnapshot     `json:"snapshot"`
	CellCounts map[model.PlayerID]int `json:"cell_counts"`
	CanUndo    bool                   `json:"can_undo"`
	CanRedo    bool                   `json:"can_redo"`
	Generation int                    `json:"generation"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// SeatView describes a seat without its credentials
type SeatView struct {
	PlayerID    model.PlayerID `json:"player_id"`
	Name        string         `json:"name"`
	IsBot       bool           `json:"is_bot"`
	BotStrategy string         `json:"bot_strategy,omitempty"`
}

// History is the recorded move line of a game and the cursor into it
type History struct {
	Moves  []model.Move `json:"moves"`
	Cursor int          `json:"cursor"`
}

// hostedGame pairs a persisted record with its live engine.
// mu serialises every engine call for the game.
type hostedGame struct {
	mu      sync.Mutex
	record  *model.GameRecord
	engine  *engine.Engine
	pending []model.Event
	deleted bool // set under mu once the record is gone from storage
}

// Config holds configuration for the game controller
type Config struct {
	Defaults model.GameConfig
}

// Controller hosts many games, each driven by its own engine
type Controller struct {
	storage   storage.Storage
	seats     seat.ServiceInterface
	clock     clock.Clock
	ids       ids.Generator
	publisher Publisher
	defaults  model.GameConfig
	logger    *slog.Logger

	mu        sync.Mutex
	games     map[model.GameID]*hostedGame
	deletions uint64 // bumped by DeleteGame so in-flight restores re-read storage
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	seats seat.ServiceInterface,
	clock clock.Clock,
	ids ids.Generator,
	publisher Publisher,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if cfg.Defaults.BoardSize == 0 {
		cfg.Defaults = model.DefaultGameConfig()
	}
	return &Controller{
		storage:   storage,
		seats:     seats,
		clock:     clock,
		ids:       ids,
		publisher: publisher,
		defaults:  cfg.Defaults,
		logger:    logger.With(slog.String("component", "game-controller")),
		games:     make(map[model.GameID]*hostedGame),
	}
}

// CreateGame starts a new game and issues one token per human seat
func (c *Controller) CreateGame(ctx context.Context, params CreateParams) (*CreatedGame, error) {
	cfg := c.withDefaults(params.Config, params.InitialBoard, len(params.Players))
	players := params.Players
	if len(players) == 0 {
		players = make([]model.PlayerSpec, cfg.MaxPlayers)
	}
	for _, p := range players {
		if p.IsBot && !model.IsValidBotStrategy(p.BotStrategy) {
			return nil, fmt.Errorf("%w: unknown bot strategy %q", model.ErrInvalidConfig, p.BotStrategy)
		}
	}

	eng, err := engine.New(cfg, players, c.engineOptions(params.InitialBoard)...)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	record := &model.GameRecord{
		ID:           model.GameID(c.ids.NewID()),
		Config:       cfg,
		InitialBoard: params.InitialBoard.Clone(),
		Status:       eng.Status(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tokens := make(map[model.PlayerID]string)
	for _, p := range eng.Players() {
		spec := players[p.ID-1]
		s := model.Seat{
			PlayerID:    p.ID,
			Name:        p.Name,
			IsBot:       spec.IsBot,
			BotStrategy: spec.BotStrategy,
		}
		if !spec.IsBot {
			token, hash, err := c.seats.Issue(p.ID)
			if err != nil {
				return nil, err
			}
			s.TokenHash = hash
			tokens[p.ID] = token
		}
		record.Seats = append(record.Seats, s)
	}

	if err := c.storage.SaveGame(ctx, record); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(record.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	g := c.host(record, eng)
	c.logger.Info("game created",
		slog.String("game_id", string(record.ID)),
		slog.Int("player_count", len(record.Seats)),
		slog.Int("board_size", cfg.BoardSize),
		slog.String("victory_condition", string(cfg.VictoryCondition)),
	)
	c.publish(record.ID, model.EventGameCreated, model.GameCreatedPayload{
		Config:   cfg,
		Players:  eng.Players(),
		Snapshot: eng.Snapshot(),
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	return &CreatedGame{Game: c.view(g), Tokens: tokens}, nil
}

func (c *Controller) withDefaults(cfg model.GameConfig, board *model.Board, rosterSize int) model.GameConfig {
	if cfg.BoardSize == 0 {
		cfg.BoardSize = c.defaults.BoardSize
		if board != nil {
			cfg.BoardSize = board.Size
		}
	}
	if cfg.MaxPlayers == 0 {
		// Seat every owner a seeded board refers to
		cfg.MaxPlayers = max(c.defaults.MaxPlayers, rosterSize, int(board.MaxOwner()))
	}
	if cfg.VictoryCondition == "" {
		cfg.VictoryCondition = c.defaults.VictoryCondition
		if cfg.MaxMoves == 0 {
			cfg.MaxMoves = c.defaults.MaxMoves
		}
	}
	if cfg.CriticalMassOverride == nil {
		cfg.CriticalMassOverride = c.defaults.CriticalMassOverride
	}
	return cfg
}

func (c *Controller) engineOptions(board *model.Board) []engine.Option {
	return []engine.Option{
		engine.WithLogger(c.logger),
		engine.WithInitialBoard(board),
	}
}

// host registers a live engine and forwards its changes as pending events
func (c *Controller) host(record *model.GameRecord, eng *engine.Engine) *hostedGame {
	g := &hostedGame{record: record}
	c.attach(g, eng)

	c.mu.Lock()
	c.games[record.ID] = g
	c.mu.Unlock()
	return g
}

func (c *Controller) attach(g *hostedGame, eng *engine.Engine) {
	g.engine = eng
	id := g.record.ID
	eng.Subscribe(func(change engine.Change) {
		now := c.clock.Now()
		switch change.Kind {
		case engine.ChangeMove:
			g.pending = append(g.pending, model.Event{
				Type: model.EventMoveApplied, Timestamp: now, GameID: id, Payload: *change.Outcome,
			})
			if change.Outcome.GameStatus.IsFinished() {
				g.pending = append(g.pending, model.Event{
					Type:      model.EventGameFinished,
					Timestamp: now,
					GameID:    id,
					Payload: model.GameFinishedPayload{
						Status:     change.Outcome.GameStatus,
						CellCounts: change.Outcome.FinalBoard.CellCounts(),
					},
				})
			}
		case engine.ChangeUndo, engine.ChangeRedo:
			g.pending = append(g.pending, model.Event{
				Type:      model.EventHistoryChanged,
				Timestamp: now,
				GameID:    id,
				Payload: model.HistoryChangedPayload{
					Direction: string(change.Kind),
					Snapshot:  change.Snapshot,
				},
			})
		}
	})
}

// load returns the hosted game, restoring it from storage if needed
func (c *Controller) load(ctx context.Context, id model.GameID) (*hostedGame, error) {
	c.mu.Lock()
	g, ok := c.games[id]
	deletions := c.deletions
	c.mu.Unlock()
	if ok {
		return g, nil
	}

	record, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	eng, err := c.restore(record)
	if err != nil {
		c.logger.Error("failed to restore game",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.mu.Lock()
	// Another request may have restored it first
	if existing, ok := c.games[id]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	// A delete ran while the record was being read; it may be stale
	if c.deletions != deletions {
		c.mu.Unlock()
		return c.load(ctx, id)
	}
	g = &hostedGame{record: record}
	c.attach(g, eng)
	c.games[id] = g
	c.mu.Unlock()
	c.logger.Debug("game restored",
		slog.String("game_id", string(id)),
		slog.Int("moves", len(record.Moves)),
		slog.Int("cursor", record.Cursor),
	)
	return g, nil
}

func (c *Controller) restore(record *model.GameRecord) (*engine.Engine, error) {
	eng, err := engine.Replay(record.Config, record.PlayerSpecs(), record.Moves, c.engineOptions(record.InitialBoard)...)
	if err != nil {
		return nil, err
	}
	if record.Cursor != eng.Cursor() {
		if _, err := eng.Seek(record.Cursor); err != nil {
			return nil, err
		}
	}
	return eng, nil
}

// acquire loads a game and locks it. The caller must unlock g.mu.
func (c *Controller) acquire(ctx context.Context, id model.GameID) (*hostedGame, error) {
	g, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	if g.deleted {
		g.mu.Unlock()
		return nil, model.ErrGameNotFound
	}
	return g, nil
}

// evict drops the cached engine and seat verifications so the next access
// reloads from storage
func (c *Controller) evict(id model.GameID) {
	c.mu.Lock()
	delete(c.games, id)
	c.mu.Unlock()
	c.seats.Forget(id)
}

// commit persists the engine state and publishes any pending events.
// Callers must hold g.mu.
func (c *Controller) commit(ctx context.Context, g *hostedGame) error {
	if g.deleted {
		g.pending = nil
		return model.ErrGameNotFound
	}
	g.record.Moves = g.engine.Moves()
	g.record.Cursor = g.engine.Cursor()
	g.record.Status = g.engine.Status()
	g.record.UpdatedAt = c.clock.Now()

	pending := g.pending
	g.pending = nil
	if err := c.storage.SaveGame(ctx, g.record); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(g.record.ID)),
			slog.String("error", err.Error()),
		)
		c.evict(g.record.ID)
		return err
	}
	for _, event := range pending {
		c.publisher.Publish(event)
	}
	return nil
}

// GetGame returns the current state of a game
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*View, error) {
	g, err := c.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer g.mu.Unlock()
	return c.view(g), nil
}

// GetRecord returns the persisted record of a game
func (c *Controller) GetRecord(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	return c.storage.GetGame(ctx, id)
}

// ListGames returns every stored game, most recently updated first
func (c *Controller) ListGames(ctx context.Context) ([]*model.GameRecord, error) {
	return c.storage.ListGames(ctx)
}

// DeleteGame removes a game from storage and stops hosting it. It waits for
// any in-flight operation on the game; later ones see ErrGameNotFound.
func (c *Controller) DeleteGame(ctx context.Context, id model.GameID) error {
	g, err := c.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer g.mu.Unlock()

	if err := c.storage.DeleteGame(ctx, id); err != nil {
		return err
	}
	g.deleted = true
	g.pending = nil
	c.mu.Lock()
	c.deletions++
	c.mu.Unlock()
	c.evict(id)
	c.logger.Info("game deleted", slog.String("game_id", string(id)))
	return nil
}

// Authenticate resolves a seat token to the seat it belongs to
func (c *Controller) Authenticate(ctx context.Context, id model.GameID, token string) (*model.Seat, error) {
	g, err := c.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	record := g.record
	g.mu.Unlock()
	return c.seats.Authenticate(record, token)
}

// ApplyMove plays a move for a seat
func (c *Controller) ApplyMove(ctx context.Context, id model.GameID, player model.PlayerID, pos model.Position) (*model.MoveOutcome, error) {
	g, err := c.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer g.mu.Unlock()

	outcome, err := g.engine.ApplyMove(player, pos)
	if err != nil {
		return nil, err
	}
	if err := c.commit(ctx, g); err != nil {
		return nil, err
	}
	if outcome.GameStatus.IsFinished() {
		c.logger.Info("game finished",
			slog.String("game_id", string(id)),
			slog.Int("winner", int(outcome.GameStatus.Winner)),
			slog.Bool("draw", outcome.GameStatus.Draw),
		)
	}
	return &outcome, nil
}

// Undo steps a game back one move
func (c *Controller) Undo(ctx context.Context, id model.GameID) (*model.GameSnapshot, error) {
	return c.step(ctx, id, (*engine.Engine).Undo)
}

// Redo steps a game forward one move
func (c *Controller) Redo(ctx context.Context, id model.GameID) (*model.GameSnapshot, error) {
	return c.step(ctx, id, (*engine.Engine).Redo)
}

func (c *Controller) step(ctx context.Context, id model.GameID, fn func(*engine.Engine) (model.GameSnapshot, error)) (*model.GameSnapshot, error) {
	g, err := c.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer g.mu.Unlock()

	snapshot, err := fn(g.engine)
	if err != nil {
		return nil, err
	}
	if err := c.commit(ctx, g); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Rematch discards the game's engine and starts again with the same
// configuration, seats and starting board. Seat tokens stay valid.
func (c *Controller) Rematch(ctx context.Context, id model.GameID) (*View, error) {
	g, err := c.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer g.mu.Unlock()

	eng, err := engine.New(g.record.Config, g.record.PlayerSpecs(), c.engineOptions(g.record.InitialBoard)...)
	if err != nil {
		return nil, err
	}
	g.record.Generation++
	g.pending = nil
	c.attach(g, eng)
	g.pending = append(g.pending, model.Event{
		Type:      model.EventGameRestarted,
		Timestamp: c.clock.Now(),
		GameID:    id,
		Payload: model.GameCreatedPayload{
			Config:   g.record.Config,
			Players:  eng.Players(),
			Snapshot: eng.Snapshot(),
		},
	})
	if err := c.commit(ctx, g); err != nil {
		return nil, err
	}

	c.logger.Info("game restarted",
		slog.String("game_id", string(id)),
		slog.Int("generation", g.record.Generation),
	)
	return c.view(g), nil
}

// History returns the recorded move line, including undone moves
func (c *Controller) History(ctx context.Context, id model.GameID) (*History, error) {
	g, err := c.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer g.mu.Unlock()
	return &History{Moves: g.engine.Moves(), Cursor: g.engine.Cursor()}, nil
}

// LegalMoves returns the positions a player may play now
func (c *Controller) LegalMoves(ctx context.Context, id model.GameID, player model.PlayerID) ([]model.Position, error) {
	g, err := c.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer g.mu.Unlock()
	if g.record.Seat(player) == nil {
		return nil, fmt.Errorf("%w: %d", model.ErrUnknownPlayer, player)
	}
	return g.engine.LegalMoves(player), nil
}

// view builds the external state. Callers must hold g.mu.
func (c *Controller) view(g *hostedGame) *View {
	v := &View{
		ID:         g.record.ID,
		Config:     g.record.Config,
		Players:    g.engine.Players(),
		Snapshot:   g.engine.Snapshot(),
		CellCounts: g.engine.CellCounts(),
		CanUndo:    g.engine.CanUndo(),
		CanRedo:    g.engine.CanRedo(),
		Generation: g.record.Generation,
		CreatedAt:  g.record.CreatedAt,
		UpdatedAt:  g.record.UpdatedAt,
	}
	for _, s := range g.record.Seats {
		v.Seats = append(v.Seats, SeatView{
			PlayerID:    s.PlayerID,
			Name:        s.Name,
			IsBot:       s.IsBot,
			BotStrategy: s.BotStrategy,
		})
	}
	return v
}

func (c *Controller) publish(id model.GameID, eventType model.EventType, payload any) {
	c.publisher.Publish(model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		GameID:    id,
		Payload:   payload,
	})
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, params CreateParams) (*CreatedGame, error)
	GetGame(ctx context.Context, id model.GameID) (*View, error)
	GetRecord(ctx context.Context, id model.GameID) (*model.GameRecord, error)
	ListGames(ctx context.Context) ([]*model.GameRecord, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	Authenticate(ctx context.Context, id model.GameID, token string) (*model.Seat, error)
	ApplyMove(ctx context.Context, id model.GameID, player model.PlayerID, pos model.Position) (*model.MoveOutcome, error)
	Undo(ctx context.Context, id model.GameID) (*model.GameSnapshot, error)
	Redo(ctx context.Context, id model.GameID) (*model.GameSnapshot, error)
	Rematch(ctx context.Context, id model.GameID) (*View, error)
	History(ctx context.Context, id model.GameID) (*History, error)
	LegalMoves(ctx context.Context, id model.GameID, player model.PlayerID) ([]model.Position, error)
}

var _ ControllerInterface = (*Controller)(nil)
