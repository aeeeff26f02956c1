package cli

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/chainreaction/internal/dependencies/random"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/bot"
	"github.com/mcoot/chainreaction/internal/services/engine"
)

const localHelp = `Commands:
  <row> <col>   place a token
  undo | redo   step through history
  legal         list legal moves
  quit          leave the game`

// localOptions configures a game played without a server
type localOptions struct {
	config model.GameConfig
	bots   []int // Seats played by the random bot
}

func newLocalCmd() *cobra.Command {
	opts := localOptions{config: model.DefaultGameConfig()}
	var override int

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Play a game in this terminal without a server",
		Long: `Play a hot-seat game against the in-process engine.

Each line of input is a move "<row> <col>" for the player to move, or one of
undo, redo, legal and quit. Seats listed with --bot are played automatically.

` + localHelp,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil // No server client needed
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if override > 0 {
				opts.config.CriticalMassOverride = &override
			}
			strategy := bot.NewRandomStrategy(random.New())
			return runLocal(cmd.InOrStdin(), cmd.OutOrStdout(), opts, strategy)
		},
	}

	cmd.Flags().IntVar(&opts.config.BoardSize, "size", opts.config.BoardSize, "Board size")
	cmd.Flags().IntVar(&opts.config.MaxPlayers, "players", opts.config.MaxPlayers, "Number of players")
	cmd.Flags().StringVar((*string)(&opts.config.VictoryCondition), "victory", string(opts.config.VictoryCondition), "Victory condition: elimination, highest_control")
	cmd.Flags().IntVar(&opts.config.MaxMoves, "max-moves", 0, "Move limit for highest_control")
	cmd.Flags().IntVar(&override, "critical-mass", 0, "Critical mass for every cell (neighbour count if unset)")
	cmd.Flags().IntSliceVar(&opts.bots, "bot", nil, "Seat numbers played by a random bot")

	return cmd
}

// runLocal plays one game, reading commands from in until the game ends,
// quit is entered or input runs out
func runLocal(in io.Reader, out io.Writer, opts localOptions, strategy bot.Strategy) error {
	players := make([]model.PlayerSpec, opts.config.MaxPlayers)
	for i := range players {
		id := model.PlayerID(i + 1)
		players[i] = model.PlayerSpec{Name: model.DefaultPlayerName(id)}
		if slices.Contains(opts.bots, i+1) {
			players[i].IsBot = true
			players[i].BotStrategy = model.DefaultBotStrategy
		}
	}

	eng, err := engine.New(opts.config, players)
	if err != nil {
		return err
	}

	printLocal(out, eng)
	scanner := bufio.NewScanner(in)
	for !eng.Status().IsFinished() {
		if err := playLocalBots(out, eng, players, strategy); err != nil {
			return err
		}
		if eng.Status().IsFinished() {
			break
		}

		fmt.Fprintf(out, "player %d> ", eng.CurrentPlayer())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, localHelp)
			continue
		case "legal":
			fmt.Fprintf(out, "%v\n", eng.LegalMoves(eng.CurrentPlayer()))
			continue
		case "undo":
			_, err = eng.Undo()
		case "redo":
			_, err = eng.Redo()
		default:
			var pos model.Position
			pos, err = parsePosition(line)
			if err == nil {
				_, err = eng.ApplyMove(eng.CurrentPlayer(), pos)
			}
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printLocal(out, eng)
	}

	status := eng.Status()
	if status.Draw {
		fmt.Fprintln(out, "Game over: draw")
	} else {
		fmt.Fprintf(out, "Game over: player %d wins\n", status.Winner)
	}
	return nil
}

// playLocalBots moves for bot seats until a human is to move or the game ends
func playLocalBots(out io.Writer, eng *engine.Engine, players []model.PlayerSpec, strategy bot.Strategy) error {
	for !eng.Status().IsFinished() {
		current := eng.CurrentPlayer()
		if !players[current-1].IsBot {
			return nil
		}
		legal := eng.LegalMoves(current)
		if len(legal) == 0 {
			return fmt.Errorf("bot %d has no legal moves", current)
		}
		pos := strategy.ChooseMove(eng.Snapshot(), current, legal)
		if _, err := eng.ApplyMove(current, pos); err != nil {
			return err
		}
		fmt.Fprintf(out, "Bot %d played %s\n", current, pos)
		printLocal(out, eng)
	}
	return nil
}

func parsePosition(line string) (model.Position, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 2 {
		return model.Position{}, fmt.Errorf("expected <row> <col>, got %q", line)
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.Position{}, fmt.Errorf("invalid row: %w", err)
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return model.Position{}, fmt.Errorf("invalid col: %w", err)
	}
	return model.Position{Row: row, Col: col}, nil
}

func printLocal(out io.Writer, eng *engine.Engine) {
	fmt.Fprintln(out)
	printBoard(out, eng.Board())
	counts := eng.CellCounts()
	for _, p := range eng.Players() {
		fmt.Fprintf(out, "  %c %-10s %-10s cells: %d\n", playerSymbol(p.ID), p.Name, p.Status, counts[p.ID])
	}
}
