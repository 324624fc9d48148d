package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

// CreateRun opens a new ingestion_runs row with status running (spec §4.6
// step 1) and returns its generated id.
func CreateRun(ctx context.Context, q Querier, sourceURL string) (uuid.UUID, error) {
	id := uuid.New()
	const sql = `
INSERT INTO ingestion_runs (id, source_url, started_at, status, records_processed, records_failed, duplicates_avoided)
VALUES ($1, $2, now(), $3, 0, 0, 0)`
	if _, err := q.Exec(ctx, sql, id, sourceURL, model.RunStatusRunning); err != nil {
		return uuid.Nil, fmt.Errorf("storage: create run: %w", err)
	}
	return id, nil
}

// FinishRun closes an ingestion run with its final status and counters
// (spec §4.6 step 7).
func FinishRun(ctx context.Context, q Querier, id uuid.UUID, status model.RunStatus, processed, failed, duplicates int) error {
	const sql = `
UPDATE ingestion_runs
SET status = $2, finished_at = now(), records_processed = $3, records_failed = $4, duplicates_avoided = $5
WHERE id = $1`
	if _, err := q.Exec(ctx, sql, id, status, processed, failed, duplicates); err != nil {
		return fmt.Errorf("storage: finish run %s: %w", id, err)
	}
	return nil
}

// ListRuns returns the most recent ingestion runs, ordered started_at DESC
// (spec §4.7), capped at limit (caller enforces limit ≤ 1000 per spec §6).
func ListRuns(ctx context.Context, q Querier, limit int) ([]model.RunSummary, error) {
	const sql = `
SELECT id, started_at, finished_at, status, records_processed, records_failed, duplicates_avoided
FROM ingestion_runs
ORDER BY started_at DESC
LIMIT $1`
	rows, err := q.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var started time.Time
		var status string
		if err := rows.Scan(&r.ID, &started, &r.FinishedAt, &status, &r.RecordsProcessed,
			&r.RecordsFailed, &r.DuplicatesAvoided); err != nil {
			return nil, fmt.Errorf("storage: scan run: %w", err)
		}
		r.StartedAt = &started
		r.Status = &status
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate runs: %w", err)
	}
	return out, nil
}

// ListMonthlyAggregates reads the monthly materialized view (spec §4.7),
// capped at months (caller enforces months ≤ 60 per spec §6). The view is
// refreshed externally (SPEC_FULL.md §9.1 resolution 2) — this query never
// issues a REFRESH.
func ListMonthlyAggregates(ctx context.Context, q Querier, months int) ([]model.MonthlyAggregate, error) {
	const sql = `
SELECT month, records_ingested, records_with_warnings
FROM mv_ingestion_monthly
ORDER BY month DESC
LIMIT $1`
	rows, err := q.Query(ctx, sql, months)
	if err != nil {
		return nil, fmt.Errorf("storage: list monthly aggregates: %w", err)
	}
	defer rows.Close()

	var out []model.MonthlyAggregate
	for rows.Next() {
		var m model.MonthlyAggregate
		if err := rows.Scan(&m.Month, &m.RecordsIngested, &m.RecordsWithWarnings); err != nil {
			return nil, fmt.Errorf("storage: scan monthly aggregate: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate monthly aggregates: %w", err)
	}
	return out, nil
}
