package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/chainreaction/internal/services/seat"
)

const (
	envServer    = "CHAINREACTION_SERVER"
	envToken     = "CHAINREACTION_TOKEN"
	envTokenFile = "CHAINREACTION_TOKEN_FILE"

	defaultServerURL = "http://localhost:8080"
)

// Config holds CLI settings. Flags override the environment.
type Config struct {
	ServerURL string
	// Token is a seat token "<player>.<secret>" for the game being played.
	Token     string
	TokenFile string
	Output    string
}

func DefaultConfig() *Config {
	return &Config{
		ServerURL: envOr(envServer, defaultServerURL),
		Token:     os.Getenv(envToken),
		TokenFile: envOr(envTokenFile, defaultTokenFile()),
		Output:    "text",
	}
}

// LoadToken falls back to the token file when no token was given. A missing
// file is not an error; a file that does not hold a seat token is.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil
	}
	if _, err := seat.ParsePlayerID(token); err != nil {
		return fmt.Errorf("token file %s does not hold a seat token", c.TokenFile)
	}
	c.Token = token
	return nil
}

// SaveToken writes the seat token to the token file and uses it for the rest
// of the command.
func (c *Config) SaveToken(token string) error {
	if _, err := seat.ParsePlayerID(token); err != nil {
		return fmt.Errorf("not a seat token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600); err != nil {
		return err
	}
	c.Token = token
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".chainreaction", "token")
	}
	return filepath.Join(home, ".chainreaction", "token")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
