package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

// InsertErrorLogEntry records one error-taxonomy entry (spec §7).
func InsertErrorLogEntry(ctx context.Context, q Querier, e model.ErrorLogEntry) error {
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	const sql = `
INSERT INTO error_log (id, "timestamp", source_url, error_type, message, ingestion_run_id)
VALUES ($1, now(), $2, $3, $4, $5)`
	if _, err := q.Exec(ctx, sql, id, e.SourceURL, e.ErrorType, e.Message, e.IngestionRunID); err != nil {
		return fmt.Errorf("storage: insert error log entry: %w", err)
	}
	return nil
}

// AlertFilter holds the query params GET /api/alerts accepts (spec §4.7, §6).
type AlertFilter struct {
	Hours        int
	ErrorType    *string
	Acknowledged *bool
	IsAdmin      bool
}

// ListAlerts returns recent error_log_view rows joined against
// alert_acknowledgments. Non-admin callers see only unacknowledged alerts by
// default (spec §4.7) unless Acknowledged is explicitly set.
func ListAlerts(ctx context.Context, q Querier, f AlertFilter) ([]model.Alert, error) {
	clauses := []string{fmt.Sprintf(`"timestamp" >= now() - interval '%d hours'`, f.Hours)}
	var args []any
	idx := 1

	if f.ErrorType != nil && *f.ErrorType != "" {
		clauses = append(clauses, fmt.Sprintf("error_type = $%d", idx))
		args = append(args, *f.ErrorType)
		idx++
	}

	ack := f.Acknowledged
	if ack == nil && !f.IsAdmin {
		unacked := false
		ack = &unacked
	}
	if ack != nil {
		clauses = append(clauses, fmt.Sprintf("acknowledged = $%d", idx))
		args = append(args, *ack)
		idx++
	}

	where := "WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}

	sql := fmt.Sprintf(`
SELECT id, "timestamp", source_url, error_type, message, ingestion_run_id,
       acknowledged, acknowledged_at, acknowledged_by
FROM error_log_view
%s
ORDER BY "timestamp" DESC`, where)

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.SourceURL, &a.ErrorType, &a.Message,
			&a.IngestionRunID, &a.Acknowledged, &a.AcknowledgedAt, &a.AcknowledgedBy); err != nil {
			return nil, fmt.Errorf("storage: scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate alerts: %w", err)
	}
	return out, nil
}

// AcknowledgeAlert upserts an acknowledgment row for alertID (spec §4.7,
// admin-only at the handler layer). Returns storage.ErrNotFound if alertID
// does not reference an existing error_log entry.
func AcknowledgeAlert(ctx context.Context, q Querier, alertID uuid.UUID, acknowledgedBy string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM error_log WHERE id = $1)`, alertID).Scan(&exists); err != nil {
		return fmt.Errorf("storage: check alert %s exists: %w", alertID, err)
	}
	if !exists {
		return fmt.Errorf("storage: alert %s: %w", alertID, ErrNotFound)
	}

	const sql = `
INSERT INTO alert_acknowledgments (alert_id, acknowledged_at, acknowledged_by)
VALUES ($1, now(), $2)
ON CONFLICT (alert_id) DO UPDATE SET
	acknowledged_at = now(),
	acknowledged_by = EXCLUDED.acknowledged_by`
	if _, err := q.Exec(ctx, sql, alertID, acknowledgedBy); err != nil {
		return fmt.Errorf("storage: acknowledge alert %s: %w", alertID, err)
	}
	return nil
}
