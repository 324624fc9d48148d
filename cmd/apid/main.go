// Command apid runs the read API: a read-only HTTP surface over the
// ingested meeting data plus alert acknowledgement (spec §6, §8).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/auth"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/config"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/server"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage/migrations"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

// tokenExpiration is how long issued JWTs remain valid. apid is both the
// sole issuer and sole verifier (internal/auth doc comment), so this value
// only needs to be internally consistent.
const tokenExpiration = 24 * time.Hour

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

	logger.Info("apid starting", "version", version, "addr", cfg.HTTPAddr, "auth_disabled", cfg.AuthDisabled)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName+"-apid", version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// A nil DB is not fatal: listing, KPI and export handlers degrade to
	// empty-but-200 responses rather than refusing to start (SPEC_FULL.md §2.3).
	var db *storage.DB
	if cfg.ResolvedDatabaseURL() != "" {
		db, err = storage.New(ctx, cfg.ResolvedDatabaseURL(), storage.PoolConfig{
			MinConns: cfg.APIMinConns,
			MaxConns: cfg.APIMaxConns,
		}, logger)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx, migrations.FS); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	} else {
		logger.Warn("DATABASE_URL is empty; apid is serving degraded empty responses")
	}

	var jwtMgr *auth.JWTManager
	if !cfg.AuthDisabled {
		jwtMgr, err = auth.NewJWTManager(cfg.JWTSigningKey, tokenExpiration)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	srv := server.New(server.ServerConfig{
		DB:                  db,
		JWTMgr:              jwtMgr,
		Logger:              logger,
		Addr:                cfg.HTTPAddr,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		ExportRowLimit:      cfg.ExportRowLimit,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		AuthDisabled:        cfg.AuthDisabled,
		AdminKeyHash:        cfg.AdminKeyHash,
		ReadOnlyHash:        cfg.ReadOnlyHash,
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if db != nil {
		g.Go(func() error {
			stalenessPollLoop(gCtx, db, logger, cfg.StalenessPollInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("apid shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != http.ErrServerClosed {
		return err
	}
	logger.Info("apid stopped")
	return nil
}

// stalenessPollLoop periodically checks how stale the materialized views
// are (SPEC_FULL.md §10.3). Refresh itself stays external to this service
// (spec §4 Non-goals); this loop only surfaces staleness via logs.
func stalenessPollLoop(ctx context.Context, db *storage.DB, logger *slog.Logger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lastRun, err := storage.MaterializedViewStaleness(ctx, db.Pool())
			if err != nil {
				logger.Warn("staleness poll: failed to read mv_ingestion_kpis", "error", err)
				continue
			}
			if lastRun == nil {
				logger.Warn("staleness poll: mv_ingestion_kpis has never been refreshed")
				continue
			}
			age := time.Since(*lastRun)
			if age > interval*2 {
				logger.Warn("materialized views appear stale", "last_refresh", lastRun, "age", age)
			}
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
