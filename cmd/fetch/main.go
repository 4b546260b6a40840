package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"game-market-tracker/internal/config"
	"game-market-tracker/internal/feed"
	"game-market-tracker/internal/storage/migrations"
	"game-market-tracker/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if cfg.Feed.URL == "" {
		logger.Error("feed.url is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	ingester := feed.NewIngester(
		feed.NewClient(cfg.Feed.URL, cfg.Feed.Timeout),
		postgres.NewItemStore(pool),
		postgres.NewPriceStore(pool),
		feed.IngesterOptions{BatchSize: cfg.Sync.BatchSize, Logger: logger},
	)

	result, err := ingester.Run(ctx)
	if err != nil {
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	if result.Skipped {
		logger.Info("nothing to do", "timestamp", result.Timestamp)
		return
	}
	logger.Info("ingest complete",
		"timestamp", result.Timestamp,
		"new_items", result.NewItems,
		"observations", result.Observations)
}
