package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chainreaction/internal/model"
)

type ConfigSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigSuite) writeFile(contents string) string {
	path := filepath.Join(s.dir, "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load("")
	s.Require().NoError(err)

	s.Equal(8080, cfg.Server.Port)
	s.Equal(60*time.Second, cfg.Server.WriteTimeout)
	s.Equal(StorageTypeMemory, cfg.Storage.Type)
	s.Equal(7*24*time.Hour, cfg.Storage.Redis.GameTTL)
	s.Equal("chainreaction", cfg.Storage.Redis.KeyPrefix)
	s.Equal(4096, cfg.Seats.CacheSize)
	s.Equal("info", cfg.Logging.Level)
	s.Equal(model.DefaultGameConfig(), cfg.Game.Defaults())
}

func (s *ConfigSuite) TestLoadFile() {
	path := s.writeFile(`
server:
  port: 9090
  read_timeout: 5s
storage:
  type: redis
  redis:
    url: redis://cache:6379
    game_ttl: 1h
logging:
  level: debug
  format: text
game:
  board_size: 8
  max_players: 4
  victory_condition: highest_control
  max_moves: 40
  critical_mass_override: 3
presets:
  dir: /etc/chainreaction/presets
`)

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal(9090, cfg.Server.Port)
	s.Equal(5*time.Second, cfg.Server.ReadTimeout)
	s.Equal(StorageTypeRedis, cfg.Storage.Type)
	s.Equal("redis://cache:6379", cfg.Storage.Redis.URL)
	s.Equal(time.Hour, cfg.Storage.Redis.GameTTL)
	s.Equal(10, cfg.Storage.Redis.PoolSize)
	s.Equal("/etc/chainreaction/presets", cfg.Presets.Dir)

	game := cfg.Game.Defaults()
	s.Equal(8, game.BoardSize)
	s.Equal(4, game.MaxPlayers)
	s.Equal(model.VictoryHighestControl, game.VictoryCondition)
	s.Equal(40, game.MaxMoves)
	s.Require().NotNil(game.CriticalMassOverride)
	s.Equal(3, *game.CriticalMassOverride)
}

func (s *ConfigSuite) TestEnvOverridesFile() {
	path := s.writeFile("server:\n  port: 9090\n")
	s.T().Setenv("CHAINREACTION_SERVER_PORT", "7000")
	s.T().Setenv("CHAINREACTION_STORAGE_TYPE", "postgres")

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(7000, cfg.Server.Port)
	s.Equal(StorageTypePostgres, cfg.Storage.Type)
}

func (s *ConfigSuite) TestMissingFile() {
	_, err := Load(filepath.Join(s.dir, "missing.yaml"))
	s.Error(err)
}

func (s *ConfigSuite) TestInvalidStorageType() {
	s.T().Setenv("CHAINREACTION_STORAGE_TYPE", "sqlite")

	_, err := Load("")
	s.ErrorContains(err, "invalid storage type")
}

func (s *ConfigSuite) TestInvalidLogLevel() {
	s.T().Setenv("CHAINREACTION_LOGGING_LEVEL", "loud")

	_, err := Load("")
	s.ErrorIs(err, errUnknownLevel)
}

func (s *ConfigSuite) TestInvalidGameDefaults() {
	s.T().Setenv("CHAINREACTION_GAME_VICTORY_CONDITION", "highest_control")

	_, err := Load("")
	s.ErrorIs(err, model.ErrInvalidConfig)
}

func (s *ConfigSuite) TestNewLoggerRespectsLevel() {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	s.Empty(buf.String())

	logger.Warn("shown", slog.String("component", "test"))
	s.Contains(buf.String(), `"msg":"shown"`)
	s.Contains(buf.String(), `"component":"test"`)
}
