package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/history"
	"github.com/mcoot/chainreaction/internal/services/resolver"
	"github.com/mcoot/chainreaction/internal/services/rules"
	"github.com/mcoot/chainreaction/internal/services/turn"
)

// Engine owns the state of one game and applies moves to it.
//
// An Engine is not safe for concurrent use and is not reentrant: callers must
// serialise ApplyMove, Undo, Redo and Seek, and listeners must not call them.
// Subscribe and Unsubscribe may be called from inside a listener.
type Engine struct {
	config   model.GameConfig
	rules    *rules.Rules
	resolver *resolver.Resolver
	turns    *turn.Controller
	history  *history.Store
	logger   *slog.Logger

	board      *model.Board
	moveNumber int
	lastMove   *model.Move
	moves      []model.Move // moves[i] produced history entry i+1

	listeners map[SubscriptionID]Listener
	order     []SubscriptionID
	nextSubID SubscriptionID
}

// Option configures an Engine at construction
type Option func(*Engine) error

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithInitialBoard seeds the game with a pre-populated board. Every occupied
// cell must be owned by a seated player and sit below its critical mass.
func WithInitialBoard(board *model.Board) Option {
	return func(e *Engine) error {
		if board == nil {
			return nil
		}
		if err := board.Validate(); err != nil {
			return err
		}
		if board.Size != e.config.BoardSize {
			return fmt.Errorf("%w: board size %d does not match configured size %d", model.ErrInvalidBoard, board.Size, e.config.BoardSize)
		}
		for pos, cell := range board.All() {
			if cell.IsEmpty() {
				continue
			}
			if _, ok := e.turns.Player(cell.Owner); !ok {
				return fmt.Errorf("%w: cell %s owned by unknown player %d", model.ErrInvalidBoard, pos, cell.Owner)
			}
			// Nothing resolves a seeded cell, so it must start stable.
			if mass := e.rules.CriticalMass(pos); cell.Value >= mass {
				return fmt.Errorf("%w: cell %s holds %d tokens, critical mass is %d", model.ErrInvalidBoard, pos, cell.Value, mass)
			}
		}
		e.board = board.Clone()
		return nil
	}
}

// New creates an engine for a fresh game
func New(cfg model.GameConfig, players []model.PlayerSpec, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	turns, err := turn.New(cfg, players)
	if err != nil {
		return nil, err
	}

	r := rules.New(cfg)
	e := &Engine{
		config:    cfg,
		rules:     r,
		resolver:  resolver.New(r),
		turns:     turns,
		logger:    slog.New(slog.DiscardHandler),
		board:     model.NewBoard(cfg.BoardSize),
		listeners: make(map[SubscriptionID]Listener),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With(slog.String("component", "engine"))
	e.history = history.New(e.Snapshot())
	return e, nil
}

// Replay creates an engine and re-applies a recorded move line.
// The cursor ends at the last move; use Seek to restore an earlier position.
func Replay(cfg model.GameConfig, players []model.PlayerSpec, moves []model.Move, opts ...Option) (*Engine, error) {
	e, err := New(cfg, players, opts...)
	if err != nil {
		return nil, err
	}
	for i, m := range moves {
		if _, err := e.ApplyMove(m.Player, m.Position); err != nil {
			return nil, fmt.Errorf("replaying move %d by player %d at %s: %w", i+1, m.Player, m.Position, err)
		}
	}
	return e, nil
}

// ApplyMove places one token for player at pos and resolves the resulting
// cascade. On any error the committed state is unchanged.
func (e *Engine) ApplyMove(player model.PlayerID, pos model.Position) (model.MoveOutcome, error) {
	if err := e.validateMove(player, pos); err != nil {
		return model.MoveOutcome{}, err
	}

	working := e.board.Clone()
	cell := working.Cells[pos.Row][pos.Col]
	working.Cells[pos.Row][pos.Col] = model.Cell{Owner: player, Value: cell.Value + 1}

	var opts []resolver.Option
	if e.turns.OthersHaveMoved(player) {
		opts = append(opts, resolver.StopWhenSoleOwner())
	}
	result, err := e.resolver.Resolve(working, pos, opts...)
	if err != nil {
		e.logger.Error("move resolution failed",
			slog.Int("player", int(player)),
			slog.String("position", pos.String()),
			slog.Int("steps", result.Steps),
			slog.String("error", err.Error()))
		return model.MoveOutcome{}, err
	}

	e.board = working
	e.moveNumber++
	move := model.Move{Player: player, Position: pos, Sequence: e.moveNumber}
	e.lastMove = &move
	e.turns.RecordMove(player)
	eliminated := e.turns.RecomputeElimination(e.board)
	status := e.turns.CheckVictory(e.board, e.moveNumber)
	if !status.IsFinished() {
		e.turns.AdvanceTurn()
		status = e.turns.Status()
	}

	e.moves = append(e.moves[:e.history.Cursor()], move)
	e.history.Push(e.Snapshot())

	outcome := model.MoveOutcome{
		Move:             move,
		FinalBoard:       e.board.Clone(),
		ExplosionEvents:  result.Events,
		NewCurrentPlayer: e.turns.CurrentPlayer(),
		GameStatus:       status,
		Eliminated:       eliminated,
	}

	e.logger.Debug("move applied",
		slog.Int("player", int(player)),
		slog.String("position", pos.String()),
		slog.Int("move", e.moveNumber),
		slog.Int("explosions", len(result.Events)),
		slog.Bool("decided", result.Decided))
	if status.IsFinished() {
		e.logger.Info("game finished",
			slog.Int("winner", int(status.Winner)),
			slog.Bool("draw", status.Draw),
			slog.Int("moves", e.moveNumber))
	}

	e.notify(Change{Kind: ChangeMove, Outcome: &outcome, Snapshot: e.history.Current()})
	return outcome, nil
}

func (e *Engine) validateMove(player model.PlayerID, pos model.Position) error {
	if e.turns.Status().IsFinished() {
		return model.ErrGameAlreadyFinished
	}
	if _, ok := e.turns.Player(player); !ok {
		return fmt.Errorf("%w: %d", model.ErrUnknownPlayer, player)
	}
	if player != e.turns.CurrentPlayer() {
		return fmt.Errorf("%w: player %d to move", model.ErrNotYourTurn, e.turns.CurrentPlayer())
	}
	if !e.board.IsValidPosition(pos) {
		return fmt.Errorf("%w: %s on %dx%d board", model.ErrInvalidPosition, pos, e.board.Size, e.board.Size)
	}
	if !e.rules.IsLegalMove(e.board, pos, player) {
		return fmt.Errorf("%w: %s belongs to player %d", model.ErrCellNotOwnable, pos, e.board.Cells[pos.Row][pos.Col].Owner)
	}
	return nil
}

// Undo steps back to the previous snapshot
func (e *Engine) Undo() (model.GameSnapshot, error) {
	snapshot, err := e.history.Undo()
	if err != nil {
		return model.GameSnapshot{}, err
	}
	e.restore(snapshot)
	e.logger.Debug("move undone", slog.Int("move", e.moveNumber))
	e.notify(Change{Kind: ChangeUndo, Snapshot: snapshot.Clone()})
	return snapshot, nil
}

// Redo steps forward to the next snapshot
func (e *Engine) Redo() (model.GameSnapshot, error) {
	snapshot, err := e.history.Redo()
	if err != nil {
		return model.GameSnapshot{}, err
	}
	e.restore(snapshot)
	e.logger.Debug("move redone", slog.Int("move", e.moveNumber))
	e.notify(Change{Kind: ChangeRedo, Snapshot: snapshot.Clone()})
	return snapshot, nil
}

// Seek jumps to the history entry at cursor; 0 is the initial position
func (e *Engine) Seek(cursor int) (model.GameSnapshot, error) {
	snapshot, err := e.history.Seek(cursor)
	if err != nil {
		return model.GameSnapshot{}, err
	}
	e.restore(snapshot)
	e.notify(Change{Kind: ChangeSeek, Snapshot: snapshot.Clone()})
	return snapshot, nil
}

func (e *Engine) restore(snapshot model.GameSnapshot) {
	e.board = snapshot.Board.Clone()
	e.moveNumber = snapshot.MoveNumber
	e.lastMove = nil
	if snapshot.LastMove != nil {
		m := *snapshot.LastMove
		e.lastMove = &m
	}
	e.turns.Restore(snapshot)
}

// Snapshot captures the live state
func (e *Engine) Snapshot() model.GameSnapshot {
	snapshot := model.GameSnapshot{
		Board:          e.board.Clone(),
		CurrentPlayer:  e.turns.CurrentPlayer(),
		MoveNumber:     e.moveNumber,
		PlayerStatuses: e.turns.PlayerStatuses(),
		MovedPlayers:   e.turns.MovedPlayers(),
		Status:         e.turns.Status(),
	}
	if e.lastMove != nil {
		m := *e.lastMove
		snapshot.LastMove = &m
	}
	return snapshot
}

// LegalMoves returns every position player may play now, in row-major order
func (e *Engine) LegalMoves(player model.PlayerID) []model.Position {
	if e.turns.Status().IsFinished() || !e.turns.IsActive(player) {
		return nil
	}
	var out []model.Position
	for pos := range e.board.All() {
		if e.rules.IsLegalMove(e.board, pos, player) {
			out = append(out, pos)
		}
	}
	return out
}

// Board returns a copy of the live board
func (e *Engine) Board() *model.Board {
	return e.board.Clone()
}

// Config returns the game configuration
func (e *Engine) Config() model.GameConfig {
	return e.config
}

// CurrentPlayer returns the player to move
func (e *Engine) CurrentPlayer() model.PlayerID {
	return e.turns.CurrentPlayer()
}

// MoveNumber returns the number of moves leading to the live state
func (e *Engine) MoveNumber() int {
	return e.moveNumber
}

// Status returns the game status
func (e *Engine) Status() model.GameStatus {
	return e.turns.Status()
}

// Players returns the roster with current statuses
func (e *Engine) Players() []model.Player {
	return e.turns.Players()
}

// CellCounts returns the number of cells each player owns
func (e *Engine) CellCounts() map[model.PlayerID]int {
	return e.board.CellCounts()
}

// CanUndo reports whether Undo would succeed
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would succeed
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// Moves returns the recorded move line, including moves that have been undone
func (e *Engine) Moves() []model.Move {
	return slices.Clone(e.moves)
}

// Cursor returns how many moves of Moves are applied to the live state
func (e *Engine) Cursor() int {
	return e.history.Cursor()
}

// CriticalMass returns the capacity of the cell at pos
func (e *Engine) CriticalMass(pos model.Position) int {
	return e.rules.CriticalMass(pos)
}
