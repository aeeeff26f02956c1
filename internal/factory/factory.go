package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/chainreaction/internal/config"
	"github.com/mcoot/chainreaction/internal/dependencies/clock"
	"github.com/mcoot/chainreaction/internal/dependencies/ids"
	"github.com/mcoot/chainreaction/internal/dependencies/random"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/bot"
	"github.com/mcoot/chainreaction/internal/services/game"
	"github.com/mcoot/chainreaction/internal/services/preset"
	"github.com/mcoot/chainreaction/internal/services/seat"
	"github.com/mcoot/chainreaction/internal/storage"
	"github.com/mcoot/chainreaction/internal/storage/memory"
	pgstorage "github.com/mcoot/chainreaction/internal/storage/postgres"
	redisstorage "github.com/mcoot/chainreaction/internal/storage/redis"
	"github.com/mcoot/chainreaction/internal/web/sse"
	"github.com/mcoot/chainreaction/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageTypeMemory
	StorageTypeRedis    = config.StorageTypeRedis
	StorageTypePostgres = config.StorageTypePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Services
	SeatService    *seat.Service
	PresetService  *preset.Service
	GameController *game.Controller
	BotService     *bot.Service

	// Live streams
	HubManager *sse.HubManager
	WSHub      *ws.Hub
	WSHandler  *ws.Handler

	Logger *slog.Logger

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// GameDefaults apply to games created without explicit settings
	// If zero value, defaults to model.DefaultGameConfig()
	GameDefaults model.GameConfig
	// SeatConfig controls seat token hashing (optional)
	SeatConfig seat.Config
	// PresetDir is a directory of preset JSON files loaded at start-up (optional)
	PresetDir string
}

// FromConfig converts the loaded server configuration into factory settings
func FromConfig(cfg *config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.Config{
		URL:          cfg.Storage.Redis.URL,
		PoolSize:     cfg.Storage.Redis.PoolSize,
		MinIdleConns: cfg.Storage.Redis.MinIdleConns,
		DialTimeout:  cfg.Storage.Redis.DialTimeout,
		KeyPrefix:    cfg.Storage.Redis.KeyPrefix,
		GameTTL:      cfg.Storage.Redis.GameTTL,
	}
	pgCfg := pgstorage.Config{
		URL:      cfg.Storage.Postgres.URL,
		MaxConns: cfg.Storage.Postgres.MaxConns,
	}
	return Config{
		Logger:         logger,
		StorageType:    cfg.Storage.Type,
		RedisConfig:    &redisCfg,
		PostgresConfig: &pgCfg,
		GameDefaults:   cfg.Game.Defaults(),
		SeatConfig:     seat.Config{BcryptCost: cfg.Seats.BcryptCost, CacheSize: cfg.Seats.CacheSize},
		PresetDir:      cfg.Presets.Dir,
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, clock.New(), random.New(), ids.New(), cfg, logger)
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	if cfg.PresetDir != "" {
		n, err := app.PresetService.LoadDir(ctx, cfg.PresetDir)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("loading presets: %w", err)
		}
		logger.Info("presets loaded", slog.String("dir", cfg.PresetDir), slog.Int("count", n))
	}

	return app, nil
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, io.Closer, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil, nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, store, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		store, err := pgstorage.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	gen ids.Generator,
	cfg Config,
	logger *slog.Logger,
) *App {
	hubManager := sse.NewHubManager(logger)
	wsHub := ws.NewHub(logger)
	publisher := game.MultiPublisher{sse.NewBroadcaster(hubManager, logger), wsHub}

	seatService := seat.New(rnd, cfg.SeatConfig)
	presetService := preset.New(store, clk, logger)
	gameController := game.NewController(
		store, seatService, clk, gen, publisher,
		game.Config{Defaults: cfg.GameDefaults},
		logger,
	)
	botService := bot.NewService(gameController, map[string]bot.Strategy{
		model.BotStrategyRandom: bot.NewRandomStrategy(rnd),
	}, logger)
	wsHandler := ws.NewHandler(ws.HandlerConfig{
		Games:  gameController,
		Bots:   botService,
		Hub:    wsHub,
		Logger: logger,
	})

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		IDs:            gen,
		SeatService:    seatService,
		PresetService:  presetService,
		GameController: gameController,
		BotService:     botService,
		HubManager:     hubManager,
		WSHub:          wsHub,
		WSHandler:      wsHandler,
		Logger:         logger,
	}
}

// Close disconnects stream clients and releases the storage backend
func (a *App) Close() error {
	a.HubManager.CloseAll()
	a.WSHub.Close()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
