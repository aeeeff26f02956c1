package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/chainreaction/internal/api"
	"github.com/mcoot/chainreaction/internal/config"
	"github.com/mcoot/chainreaction/internal/factory"
	"github.com/mcoot/chainreaction/internal/web"
)

func main() {
	configPath := flag.String("config", os.Getenv("CHAINREACTION_CONFIG"), "Path to a YAML config file")
	flag.Parse()

	// Bootstrap logger until the configured one is available
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()

	app, err := factory.New(ctx, factory.FromConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:  logger,
		Games:   app.GameController,
		Presets: app.PresetService,
		Bots:    app.BotService,
	})

	streamRouter := web.NewRouter(web.RouterConfig{
		Logger:     logger,
		Games:      app.GameController,
		HubManager: app.HubManager,
		WSHandler:  app.WSHandler,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", streamRouter)

	server := api.NewServer(mux, api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	// Stream connections never finish on their own
	server.OnShutdown(app.HubManager.CloseAll)
	server.OnShutdown(app.WSHub.Close)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server configured",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
	)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
