package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/chainreaction/internal/model"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Stream live events from a hosted game",
		Long: `Connect to the game's event stream and print events as they happen.

Events:
  connected        stream established
  game_created     game was created
  move_applied     a move was played, with its explosions
  history_changed  a move was undone or redone
  game_finished    the game was won or drawn
  game_restarted   a rematch began

With --token the stream is attributed to that seat; otherwise the client
watches as a spectator. Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cmd.OutOrStdout(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent is one event read off the stream
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(ctx context.Context, out io.Writer, gameID string, jsonOutput bool) error {
	// The stream router is mounted outside /api/v1
	streamURL := strings.TrimSuffix(cfg.ServerURL, "/") + "/games/" + url.PathEscape(gameID) + "/events"
	if cfg.Token != "" {
		streamURL += "?token=" + url.QueryEscape(cfg.Token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decodeRequestError(resp, body)
	}

	err = readSSE(resp.Body, func(ev SSEEvent) {
		if jsonOutput {
			data, _ := json.Marshal(ev)
			fmt.Fprintln(out, string(data))
			return
		}
		fmt.Fprintf(out, "[%s] %s\n", ev.Time.Format(time.TimeOnly), describeEvent(ev.Event, ev.Data))
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	if !jsonOutput {
		fmt.Fprintln(out, "Disconnected")
	}
	return nil
}

// readSSE calls emit for every complete event on r until r ends.
func readSSE(r io.Reader, emit func(SSEEvent)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var name string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case line == "":
			if name != "" {
				emit(SSEEvent{Time: time.Now(), Event: name, Data: strings.Join(data, "\n")})
			}
			name, data = "", nil
		}
	}
	return scanner.Err()
}

// describeEvent renders a one-line summary of a game event.
func describeEvent(name, data string) string {
	switch model.EventType(name) {
	case model.EventMoveApplied:
		var ev struct {
			Payload model.MoveOutcome `json:"payload"`
		}
		if json.Unmarshal([]byte(data), &ev) != nil {
			break
		}
		o := ev.Payload
		line := fmt.Sprintf("move: player %d at %s, %d explosions, player %d to move",
			o.Move.Player, o.Move.Position, len(o.ExplosionEvents), o.NewCurrentPlayer)
		for _, p := range o.Eliminated {
			line += fmt.Sprintf(", player %d eliminated", p)
		}
		return line
	case model.EventHistoryChanged:
		var ev struct {
			Payload model.HistoryChangedPayload `json:"payload"`
		}
		if json.Unmarshal([]byte(data), &ev) != nil {
			break
		}
		return fmt.Sprintf("%s: back to move %d, player %d to move",
			ev.Payload.Direction, ev.Payload.Snapshot.MoveNumber, ev.Payload.Snapshot.CurrentPlayer)
	case model.EventGameFinished:
		var ev struct {
			Payload model.GameFinishedPayload `json:"payload"`
		}
		if json.Unmarshal([]byte(data), &ev) != nil {
			break
		}
		if ev.Payload.Status.Draw {
			return "finished: draw"
		}
		return fmt.Sprintf("finished: player %d wins", ev.Payload.Status.Winner)
	case model.EventGameCreated, model.EventGameRestarted:
		var ev struct {
			Payload model.GameCreatedPayload `json:"payload"`
		}
		if json.Unmarshal([]byte(data), &ev) != nil {
			break
		}
		return fmt.Sprintf("%s: %dx%d board, %d players",
			name, ev.Payload.Config.BoardSize, ev.Payload.Config.BoardSize, len(ev.Payload.Players))
	}
	return name + ": " + strings.ReplaceAll(data, "\n", " ")
}
