package storage

import (
	"context"
	"fmt"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

// UpsertAgendaItem inserts or updates an AgendaItem keyed by its deterministic
// or source-supplied UUID (spec §4.3, §4.4). order_index reflects the input
// array position (spec §3 invariant).
func UpsertAgendaItem(ctx context.Context, q Querier, a model.AgendaItem) error {
	const sql = `
INSERT INTO agenda_items (id, meeting_id, status, order_index, raw_json, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (id) DO UPDATE SET
	meeting_id = EXCLUDED.meeting_id,
	status = EXCLUDED.status,
	order_index = EXCLUDED.order_index,
	raw_json = EXCLUDED.raw_json,
	updated_at = now()`
	if _, err := q.Exec(ctx, sql, a.ID, a.MeetingID, a.Status, a.OrderIndex, a.RawJSON); err != nil {
		return fmt.Errorf("storage: upsert agenda item %s: %w", a.ID, err)
	}
	return nil
}
