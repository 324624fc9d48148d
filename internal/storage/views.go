package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

// GetKPIs reads the single-row mv_ingestion_kpis aggregate (spec §4.7). An
// empty store (no rows yet, e.g. before the view's first external refresh)
// returns the spec-mandated default {0, 0, 100.0, 0, nil}.
func GetKPIs(ctx context.Context, q Querier) (model.KPIs, error) {
	const sql = `
SELECT total_ingested, sources_count, success_rate, duplicates_avoided, last_run_timestamp
FROM mv_ingestion_kpis
LIMIT 1`
	var k model.KPIs
	err := q.QueryRow(ctx, sql).Scan(&k.TotalIngested, &k.SourcesCount, &k.SuccessRate,
		&k.DuplicatesAvoided, &k.LastRunTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.KPIs{SuccessRate: 100.0}, nil
	}
	if err != nil {
		return model.KPIs{}, fmt.Errorf("storage: get kpis: %w", err)
	}
	return k, nil
}

// MaterializedViewStaleness reads the last_run_timestamp tracked on
// mv_ingestion_kpis as a proxy for the view's own last refresh (SPEC_FULL.md
// §10.3); pg_matviews carries no refresh timestamp on stock Postgres, so the
// tracked column is the reliable source.
func MaterializedViewStaleness(ctx context.Context, q Querier) (*time.Time, error) {
	const sql = `SELECT last_run_timestamp FROM mv_ingestion_kpis LIMIT 1`
	var t *time.Time
	err := q.QueryRow(ctx, sql).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read materialized view staleness: %w", err)
	}
	return t, nil
}
