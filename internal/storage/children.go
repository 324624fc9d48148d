package storage

import (
	"context"
	"fmt"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

// UpsertActionItem inserts or updates an ActionItem keyed by its
// deterministic or source-supplied UUID (spec §4.3, §4.4).
func UpsertActionItem(ctx context.Context, q Querier, a model.ActionItem) error {
	const sql = `
INSERT INTO action_items (id, agenda_item_id, text, assignee, due_date, status, raw_json, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (id) DO UPDATE SET
	agenda_item_id = EXCLUDED.agenda_item_id,
	text = EXCLUDED.text,
	assignee = EXCLUDED.assignee,
	due_date = EXCLUDED.due_date,
	status = EXCLUDED.status,
	raw_json = EXCLUDED.raw_json,
	updated_at = now()`
	if _, err := q.Exec(ctx, sql, a.ID, a.AgendaItemID, a.Text, a.Assignee, a.DueDate, a.Status, a.RawJSON); err != nil {
		return fmt.Errorf("storage: upsert action item %s: %w", a.ID, err)
	}
	return nil
}

// UpsertDecisionItem inserts or updates a DecisionItem keyed by its
// deterministic or source-supplied UUID (spec §4.3, §4.4).
func UpsertDecisionItem(ctx context.Context, q Querier, d model.DecisionItem) error {
	const sql = `
INSERT INTO decision_items (id, agenda_item_id, decision_text, rationale, effect_scope, raw_json, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (id) DO UPDATE SET
	agenda_item_id = EXCLUDED.agenda_item_id,
	decision_text = EXCLUDED.decision_text,
	rationale = EXCLUDED.rationale,
	effect_scope = EXCLUDED.effect_scope,
	raw_json = EXCLUDED.raw_json,
	updated_at = now()`
	if _, err := q.Exec(ctx, sql, d.ID, d.AgendaItemID, d.DecisionText, d.Rationale, d.EffectScope, d.RawJSON); err != nil {
		return fmt.Errorf("storage: upsert decision item %s: %w", d.ID, err)
	}
	return nil
}

// UpsertDiscussionPoint inserts or updates a DiscussionPoint keyed by its
// deterministic or source-supplied UUID (spec §4.3, §4.4).
func UpsertDiscussionPoint(ctx context.Context, q Querier, p model.DiscussionPoint) error {
	const sql = `
INSERT INTO discussion_points (id, agenda_item_id, point_text, raw_json, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
	agenda_item_id = EXCLUDED.agenda_item_id,
	point_text = EXCLUDED.point_text,
	raw_json = EXCLUDED.raw_json,
	updated_at = now()`
	if _, err := q.Exec(ctx, sql, p.ID, p.AgendaItemID, p.PointText, p.RawJSON); err != nil {
		return fmt.Errorf("storage: upsert discussion point %s: %w", p.ID, err)
	}
	return nil
}
