package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/chainreaction/internal/api/request"
	"github.com/mcoot/chainreaction/internal/api/response"
	"github.com/mcoot/chainreaction/internal/services/game"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Hosted game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameMoveCmd())
	cmd.AddCommand(newGameSeekCmd("undo", "Undo the last move"))
	cmd.AddCommand(newGameSeekCmd("redo", "Redo the last undone move"))
	cmd.AddCommand(newGameRematchCmd())
	cmd.AddCommand(newGameHistoryCmd())
	cmd.AddCommand(newGameLegalCmd())
	cmd.AddCommand(newGameDeleteCmd())

	return cmd
}

// parsePlayers turns --player values into seats; a "bot:" prefix makes a random bot
func parsePlayers(values []string) []request.PlayerRequest {
	players := make([]request.PlayerRequest, len(values))
	for i, v := range values {
		if name, ok := strings.CutPrefix(v, "bot:"); ok {
			players[i] = request.PlayerRequest{Name: name, Bot: true}
			continue
		}
		players[i] = request.PlayerRequest{Name: v}
	}
	return players
}

func newGameCreateCmd() *cobra.Command {
	var (
		req      request.CreateGameRequest
		players  []string
		override int
		saveSeat int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new hosted game",
		Long: `Create a new hosted game and print one seat token per human player.

Seats are listed in turn order with --player; prefix a name with "bot:"
to seat a bot. Without --player the server seats its default number of
unnamed human players.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Players = parsePlayers(players)
			if override > 0 {
				req.CriticalMassOverride = &override
			}

			var result response.CreateGameResponse
			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			if saveSeat > 0 {
				token, ok := result.Tokens[strconv.Itoa(saveSeat)]
				if !ok {
					return fmt.Errorf("no token issued for seat %d", saveSeat)
				}
				if err := cfg.SaveToken(token); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&req.BoardSize, "size", 0, "Board size (server default if unset)")
	cmd.Flags().IntVar(&req.MaxPlayers, "max-players", 0, "Number of seats")
	cmd.Flags().StringVar(&req.VictoryCondition, "victory", "", "Victory condition: elimination, highest_control")
	cmd.Flags().IntVar(&req.MaxMoves, "max-moves", 0, "Move limit for highest_control")
	cmd.Flags().IntVar(&override, "critical-mass", 0, "Critical mass for every cell (neighbour count if unset)")
	cmd.Flags().StringArrayVar(&players, "player", nil, `Seat name in turn order, "bot:<name>" for a bot (repeatable)`)
	cmd.Flags().StringVar(&req.Preset, "preset", "", "Start from a named board preset")
	cmd.Flags().IntVar(&saveSeat, "save-token", 0, "Save the token of this seat to the token file")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result game.View
			if err := client.Get(gamePath(args[0], ""), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(&result)
			return nil
		},
	}
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List hosted games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameList
			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <row> <col>",
		Short: "Place a token as the seat holding --token",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row: %w", err)
			}

			col, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid col: %w", err)
			}

			req := request.MoveRequest{Row: &row, Col: &col}
			var result response.MoveResponse
			if err := client.Post(gamePath(args[0], "/moves"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameSeekCmd(direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result game.View
			if err := client.Post(gamePath(args[0], "/"+direction), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(&result)
			return nil
		},
	}
}

func newGameRematchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rematch <id>",
		Short: "Restart the game with the same seats and settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RematchResponse
			if err := client.Post(gamePath(args[0], "/rematch"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the recorded moves, including undone ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result game.History
			if err := client.Get(gamePath(args[0], "/history"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(&result)
			return nil
		},
	}
}

func newGameLegalCmd() *cobra.Command {
	var player int

	cmd := &cobra.Command{
		Use:   "legal <id>",
		Short: "List legal moves (for the player to move unless --player is set)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := gamePath(args[0], "/legal-moves")
			if player > 0 {
				path += "?player=" + strconv.Itoa(player)
			}

			var result response.LegalMoves
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&player, "player", 0, "Player ID")

	return cmd
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a hosted game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(gamePath(args[0], "")); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Game deleted")
			return nil
		},
	}
}

func gamePath(id, suffix string) string {
	return "/api/v1/games/" + url.PathEscape(id) + suffix
}
