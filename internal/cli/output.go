package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mcoot/chainreaction/internal/api/response"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/bot"
	"github.com/mcoot/chainreaction/internal/services/game"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return NewOutputTo(format, os.Stdout)
}

// NewOutputTo creates a new Output formatter writing to w
func NewOutputTo(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *game.View:
		o.printGame(v)
	case response.CreateGameResponse:
		o.printCreated(v)
	case response.MoveResponse:
		o.printMove(v)
	case response.RematchResponse:
		o.printBotMoves(v.BotMoves)
		o.printGame(v.Game)
	case response.GameList:
		o.printGameList(v)
	case *game.History:
		o.printHistory(v)
	case response.LegalMoves:
		o.printLegalMoves(v)
	case response.PresetList:
		o.printPresetList(v)
	case *model.Preset:
		o.printPreset(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printCreated(c response.CreateGameResponse) {
	o.printGame(c.Game)
	if len(c.Tokens) > 0 {
		fmt.Fprintln(o.w, "\nSeat tokens (shown once):")
		seats := make([]string, 0, len(c.Tokens))
		for seat := range c.Tokens {
			seats = append(seats, seat)
		}
		slices.Sort(seats)
		for _, seat := range seats {
			fmt.Fprintf(o.w, "  %s: %s\n", seat, c.Tokens[seat])
		}
	}
	o.printBotMoves(c.BotMoves)
}

func (o *Output) printMove(m response.MoveResponse) {
	if m.Outcome != nil {
		fmt.Fprintf(o.w, "Player %d played %s", m.Outcome.Move.Player, m.Outcome.Move.Position)
		if n := len(m.Outcome.ExplosionEvents); n > 0 {
			fmt.Fprintf(o.w, ", %d explosions", n)
		}
		fmt.Fprintln(o.w)
		for _, id := range m.Outcome.Eliminated {
			fmt.Fprintf(o.w, "Player %d eliminated\n", id)
		}
	}
	o.printBotMoves(m.BotMoves)
	if m.Game != nil {
		fmt.Fprintln(o.w)
		o.printGame(m.Game)
	}
}

func (o *Output) printBotMoves(actions []bot.BotAction) {
	for _, a := range actions {
		if a.Type == bot.ActionMove {
			fmt.Fprintf(o.w, "Bot %d played %s\n", a.PlayerID, a.Position)
		}
	}
}

func (o *Output) printGame(g *game.View) {
	if g == nil {
		return
	}
	fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	fmt.Fprintf(o.w, "Board: %dx%d, %s", g.Config.BoardSize, g.Config.BoardSize, g.Config.VictoryCondition)
	if g.Config.MaxMoves > 0 {
		fmt.Fprintf(o.w, " (%d moves)", g.Config.MaxMoves)
	}
	fmt.Fprintln(o.w)
	fmt.Fprintf(o.w, "Move: %d\n", g.Snapshot.MoveNumber)
	o.printStatus(g.Snapshot)

	fmt.Fprintln(o.w, "Players:")
	for _, p := range g.Players {
		marker := " "
		if p.ID == g.Snapshot.CurrentPlayer && !g.Snapshot.Status.IsFinished() {
			marker = ">"
		}
		fmt.Fprintf(o.w, " %s %c %-12s %-7s %-10s cells: %d\n",
			marker, playerSymbol(p.ID), p.Name, p.Color, p.Status, g.CellCounts[p.ID])
	}

	fmt.Fprintln(o.w)
	printBoard(o.w, g.Snapshot.Board)
}

func (o *Output) printStatus(s model.GameSnapshot) {
	switch {
	case !s.Status.IsFinished():
		fmt.Fprintf(o.w, "To move: player %d\n", s.CurrentPlayer)
	case s.Status.Draw:
		fmt.Fprintln(o.w, "Result: draw")
	default:
		fmt.Fprintf(o.w, "Result: player %d wins\n", s.Status.Winner)
	}
}

func (o *Output) printGameList(l response.GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	for _, g := range l.Games {
		state := string(g.Status.State)
		if g.Status.IsFinished() && !g.Status.Draw {
			state = fmt.Sprintf("won by %d", g.Status.Winner)
		}
		fmt.Fprintf(o.w, "%s  %dx%d  moves: %-4d %-12s %s\n",
			g.ID, g.BoardSize, g.BoardSize, g.Moves, state, strings.Join(g.Players, ", "))
	}
}

func (o *Output) printHistory(h *game.History) {
	for i, m := range h.Moves {
		marker := " "
		if i >= h.Cursor {
			marker = "~" // Undone
		}
		fmt.Fprintf(o.w, "%s %3d. player %d %s\n", marker, m.Sequence, m.Player, m.Position)
	}
	fmt.Fprintf(o.w, "Cursor: %d of %d\n", h.Cursor, len(h.Moves))
}

func (o *Output) printLegalMoves(l response.LegalMoves) {
	parts := make([]string, len(l.Positions))
	for i, p := range l.Positions {
		parts[i] = p.String()
	}
	fmt.Fprintf(o.w, "Player %d has %d legal moves: %s\n", l.Player, len(l.Positions), strings.Join(parts, " "))
}

func (o *Output) printPresetList(l response.PresetList) {
	if len(l.Presets) == 0 {
		fmt.Fprintln(o.w, "No presets")
		return
	}
	for _, p := range l.Presets {
		fmt.Fprintf(o.w, "%-20s %dx%d  %d cells  %s\n", p.Name, p.Size, p.Size, len(p.Cells), p.Description)
	}
}

func (o *Output) printPreset(p *model.Preset) {
	fmt.Fprintf(o.w, "Preset: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(o.w, "%s\n", p.Description)
	}
	board, err := p.ToBoard()
	if err != nil {
		fmt.Fprintf(o.w, "Invalid board: %v\n", err)
		return
	}
	fmt.Fprintln(o.w)
	printBoard(o.w, board)
}

// playerSymbol renders seat 1 as A, seat 2 as B and so on
func playerSymbol(id model.PlayerID) rune {
	if id <= model.NoPlayer {
		return '.'
	}
	return rune('A' + int(id) - 1)
}

// printBoard draws the board with each occupied cell as <value><player symbol>
func printBoard(w io.Writer, b *model.Board) {
	if b == nil || b.Size == 0 {
		return
	}

	// Print column headers
	fmt.Fprint(w, "     ")
	for col := 0; col < b.Size; col++ {
		fmt.Fprintf(w, "%3d", col)
	}
	fmt.Fprintln(w)

	border := "    +" + strings.Repeat("---", b.Size) + "+"
	fmt.Fprintln(w, border)

	for row := 0; row < b.Size; row++ {
		fmt.Fprintf(w, "%3d |", row)
		for col := 0; col < b.Size; col++ {
			cell := b.Cells[row][col]
			if cell.IsEmpty() {
				fmt.Fprint(w, "  .")
			} else {
				fmt.Fprintf(w, " %d%c", cell.Value, playerSymbol(cell.Owner))
			}
		}
		fmt.Fprintln(w, "|")
	}

	fmt.Fprintln(w, border)
}
