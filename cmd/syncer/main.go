package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"piracy_tracker/internal/config"
	"piracy_tracker/internal/publisher"
	"piracy_tracker/internal/scheduler"
	"piracy_tracker/internal/service"
	"piracy_tracker/internal/source/monitor"
	"piracy_tracker/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	// The monitoring source is read-only; its pool configuration lives
	// here, outside the engine.
	feedDB, err := sqlx.Connect("postgres", cfg.Monitoring.DSN())
	if err != nil {
		logger.Error("failed to connect to monitoring source", "error", err)
		os.Exit(1)
	}
	defer feedDB.Close()

	if err := feedDB.Ping(); err != nil {
		logger.Error("failed to ping monitoring source", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to monitoring source")

	localDB, err := sqlite.Open(cfg.LocalStore.Path)
	if err != nil {
		logger.Error("failed to open local store", "error", err, "path", cfg.LocalStore.Path)
		os.Exit(1)
	}
	defer localDB.Close()
	logger.Info("opened local store", "path", cfg.LocalStore.Path)

	// Publisher is optional: a nil publisher disables event publishing.
	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	// Initialize stores
	siteStore := sqlite.NewSiteStore(localDB)
	historyStore := sqlite.NewHistoryStore(localDB)
	timelineStore := sqlite.NewTimelineStore(localDB)
	osintStore := sqlite.NewOSINTStore(localDB)
	syncLogStore := sqlite.NewSyncLogStore(localDB)

	feedSource := monitor.New(feedDB, logger)

	syncService := service.NewSyncService(
		feedSource,
		siteStore,
		historyStore,
		timelineStore,
		osintStore,
		syncLogStore,
		pub,
		logger,
	)

	sched := scheduler.NewScheduler(syncService, cfg.Sync.Options(), cfg.Sync.Interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting piracy tracker syncer",
		"source", feedSource.Name(),
		"interval", cfg.Sync.Interval,
		"sync_all_flagged", cfg.Sync.SyncAllFlagged,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
