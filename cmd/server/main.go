package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/holotable/holotable-server-go/internal/catalog"
	"github.com/holotable/holotable-server-go/internal/config"
	"github.com/holotable/holotable-server-go/internal/game"
	"github.com/holotable/holotable-server-go/internal/repository"
	"github.com/holotable/holotable-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting Holotable server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Load cards
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}
	lib, err := cat.Library()
	if err != nil {
		logger.Fatal("failed to build card library", zap.Error(err))
	}
	logger.Info("card catalog loaded",
		zap.Int("cards", len(lib.BlueprintIDs())),
		zap.Strings("decks", cat.DeckNames()),
	)

	// Initialize game manager
	gameMgr := game.NewManager(cfg.Engine.GameConfig(), lib, logger)
	recorder := game.NewReplayRecorder(logger, cfg.Server.ReplayDir)
	gameMgr.Observe(recorder.Track)
	logger.Info("game manager initialized",
		zap.String("replay_dir", cfg.Server.ReplayDir),
		zap.Bool("rollback_allowed", cfg.Engine.RollbackAllowed),
	)

	// Initialize database
	if cfg.Database.Enabled {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := repository.Migrate(ctx, db.Pool()); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		gameStore := repository.NewGameStore(db.Pool(), logger)
		gameMgr.Observe(gameStore.Track)
	} else {
		logger.Warn("database disabled; game results are not persisted")
	}

	wsServer := server.NewServer(cfg.Server.WebSocket, gameMgr, cat, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- wsServer.Run(ctx, cfg.Server.ShutdownTimeout)
	}()

	logger.Info("Holotable server initialized",
		zap.String("version", version),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
	)

	// Wait for termination signal
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		logger.Info("shutting down gracefully...")
		cancel()
		if err := <-errCh; err != nil {
			logger.Error("WebSocket server shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("WebSocket server error", zap.Error(err))
		}
	}

	logger.Info("Holotable server stopped",
		zap.Int("games", len(gameMgr.List())),
	)
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
