package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/chainreaction/internal/api/response"
)

const healthPollInterval = 200 * time.Millisecond

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Check that the game server is up.

With --wait the check is retried until the server answers or the
duration elapses, which is useful right after starting a server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pollHealth(client, wait, healthPollInterval)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long")
	return cmd
}

// pollHealth retries transport failures until wait elapses. An error answer
// from the server is returned immediately.
func pollHealth(c *Client, wait, interval time.Duration) (response.Health, error) {
	deadline := time.Now().Add(wait)
	for {
		var result response.Health
		err := c.Get("/api/v1/health", &result)
		var reqErr *RequestError
		if err == nil || errors.As(err, &reqErr) || !time.Now().Before(deadline) {
			if err != nil && wait > 0 && reqErr == nil {
				return result, fmt.Errorf("server not healthy after %s: %w", wait, err)
			}
			return result, err
		}
		time.Sleep(interval)
	}
}
