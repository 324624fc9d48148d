// Package storage provides the PostgreSQL storage layer for the ingestion
// pipeline and the read API: connection pooling, transactions, embedded
// migrations, and one upsert/query file per entity.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgxpool.Pool. Callers construct one DB per binary (cmd/ingestd
// and cmd/apid each size their own pool via PoolConfig) rather than sharing
// a process-global pool — see SPEC_FULL.md §9 on avoiding module-global state.
type DB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// PoolConfig configures pool sizing. The ingestion daemon and the read API
// use different bounds (spec §5: 1/5 for ingestion, 5/10 for the read API).
type PoolConfig struct {
	MinConns int32
	MaxConns int32
}

// New creates a new DB with a connection pool sized by cfg. dsn may point at
// a direct Postgres connection or at a transaction-mode pooler (e.g.
// PgBouncer/Supabase pooler); poolerDetected below adapts the query exec
// mode accordingly so no server-side prepared-statement cache is assumed.
func New(ctx context.Context, dsn string, cfg PoolConfig, logger *slog.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse DSN: %w", err)
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	if poolerDetected(dsn) {
		// Transaction-mode poolers (PgBouncer et al.) can hand the same
		// logical connection to different backend sessions between
		// statements, so server-side prepared statements must not be
		// cached across calls. Fall back to the simple query protocol.
		poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		logger.Info("storage: transaction pooler detected, disabling statement caching")
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping pool: %w", err)
	}

	return &DB{pool: pool, logger: logger}, nil
}

// poolerDetected reports whether dsn appears to point at a transaction-mode
// connection pooler: port 6543 (the Supabase/PgBouncer transaction-pooling
// convention) or a hostname containing "pooler" (spec §5).
func poolerDetected(dsn string) bool {
	u, err := url.Parse(dsn)
	if err != nil {
		return false
	}
	if u.Port() == "6543" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Hostname()), "pooler")
}

// Pool returns the underlying connection pool for use by other packages.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping checks connectivity to the database.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}
