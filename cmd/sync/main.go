package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"game-market-tracker/internal/config"
	"game-market-tracker/internal/storage/clickhouse"
	"game-market-tracker/internal/storage/migrations"
	"game-market-tracker/internal/storage/postgres"
	"game-market-tracker/internal/syncer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	interval := flag.Duration("interval", 0, "Run periodically at this interval (0 = single cycle)")
	initRaw := flag.Bool("init-raw", false, "Create the raw quote database and fixture tables first (local development)")
	flag.Parse()

	// Best effort; config values may reference env vars set here.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if *interval == 0 {
		*interval = cfg.Sync.Interval
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

	var conn *clickhouse.Conn
	if *initRaw {
		conn, err = migrations.RunClickhouseMigrations(ctx, cfg.Clickhouse.DSN)
	} else {
		conn, err = clickhouse.NewConn(ctx, cfg.Clickhouse.DSN)
	}
	if err != nil {
		logger.Error("connect clickhouse", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	engine := syncer.New(
		clickhouse.NewRawQuoteSource(conn),
		postgres.NewItemStore(pool),
		postgres.NewPriceStore(pool),
		syncer.Options{BatchSize: cfg.Sync.BatchSize, Logger: logger},
	)

	if *interval <= 0 {
		if err := runOnce(ctx, engine, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	logger.Info("starting periodic sync", "interval", *interval)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	// Run immediately, then on each tick.
	_ = runOnce(ctx, engine, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-ticker.C:
			_ = runOnce(ctx, engine, logger)
		}
	}
}

func runOnce(ctx context.Context, engine *syncer.Engine, logger *slog.Logger) error {
	start := time.Now()
	result, err := engine.Run(ctx)
	if err != nil {
		logger.Error("sync cycle failed", "error", err)
		return err
	}
	logger.Info("sync cycle complete",
		"cycle_id", result.CycleID,
		"items", result.Items,
		"new_items", result.NewItems,
		"observations", result.Observations,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
