// Command ingestd runs the ingestion daemon: it fetches meeting summary
// documents from every configured source URL, validates and normalizes
// them, and upserts the result into Postgres (spec §4, §5).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/config"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/coordinator"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/fetch"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/writer"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage/migrations"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if os.Getenv("LOG_FORMAT") == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		logger.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Info("ingestd starting", "version", version, "sources", len(cfg.SourceURLs), "dry_run", cfg.DryRun)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName+"-ingestd", version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	if cfg.ResolvedDatabaseURL() == "" {
		return fmt.Errorf("DATABASE_URL is required to run ingestd")
	}
	if len(cfg.SourceURLs) == 0 {
		logger.Warn("INGEST_SOURCE_URLS is empty; ingestd has nothing to ingest")
	}

	db, err := storage.New(ctx, cfg.ResolvedDatabaseURL(), storage.PoolConfig{
		MinConns: cfg.IngestMinConns,
		MaxConns: cfg.IngestMaxConns,
	}, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	fetcher := fetch.New(cfg.FetchTimeout)
	w := writer.New(db)

	progress := func(sourceURL string, processed, total int) {
		logger.Info("ingestion progress", "source_url", sourceURL, "processed", processed, "total", total)
	}
	coord := coordinator.New(db, fetcher, w, logger, cfg.DryRun, coordinator.WithProgress(progress))

	runOnce := func(ctx context.Context) {
		results := coord.Run(ctx, cfg.SourceURLs)
		for _, r := range results {
			logger.Info("ingestion run finished",
				"source_url", r.SourceURL,
				"run_id", r.RunID,
				"status", r.Status,
				"records_processed", r.RecordsProcessed,
				"records_failed", r.RecordsFailed,
				"duplicates_avoided", r.DuplicatesAvoided,
			)
		}
	}

	runOnce(ctx)

	if cfg.IngestInterval <= 0 {
		logger.Info("ingestd: INGEST_INTERVAL_SECONDS is 0, exiting after a single pass")
		return nil
	}

	ticker := time.NewTicker(cfg.IngestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("ingestd shutting down")
			return nil
		case <-ticker.C:
			runOnce(ctx)
		}
	}
}

func parseLogLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
