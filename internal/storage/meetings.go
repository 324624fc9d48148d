package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

// UpsertWorkgroup inserts or updates a Workgroup keyed by its client-supplied
// UUID (spec §4.4). On conflict, attributes other than created_at are
// overwritten and updated_at is bumped to the transaction timestamp.
func UpsertWorkgroup(ctx context.Context, q Querier, wg model.Workgroup) error {
	const sql = `
INSERT INTO workgroups (id, name, raw_json, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	raw_json = EXCLUDED.raw_json,
	updated_at = now()`
	if _, err := q.Exec(ctx, sql, wg.ID, wg.Name, wg.RawJSON); err != nil {
		return fmt.Errorf("storage: upsert workgroup %s: %w", wg.ID, err)
	}
	return nil
}

// UpsertMeeting inserts or updates a Meeting keyed by its deterministic or
// source-supplied UUID (spec §4.3, §4.4).
func UpsertMeeting(ctx context.Context, q Querier, m model.Meeting) error {
	const sql = `
INSERT INTO meetings (
	id, workgroup_id, date, type, host, documenter, attendees, purpose,
	video_links, working_docs, timestamped_video, tags, raw_json,
	validation_warnings_count, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
ON CONFLICT (id) DO UPDATE SET
	workgroup_id = EXCLUDED.workgroup_id,
	date = EXCLUDED.date,
	type = EXCLUDED.type,
	host = EXCLUDED.host,
	documenter = EXCLUDED.documenter,
	attendees = EXCLUDED.attendees,
	purpose = EXCLUDED.purpose,
	video_links = EXCLUDED.video_links,
	working_docs = EXCLUDED.working_docs,
	timestamped_video = EXCLUDED.timestamped_video,
	tags = EXCLUDED.tags,
	raw_json = EXCLUDED.raw_json,
	validation_warnings_count = EXCLUDED.validation_warnings_count,
	updated_at = now()`
	_, err := q.Exec(ctx, sql,
		m.ID, m.WorkgroupID, m.Date, m.Type, m.Host, m.Documenter, m.Attendees,
		m.Purpose, m.VideoLinks, m.WorkingDocs, m.TimestampedVideo, m.Tags,
		m.RawJSON, m.ValidationWarningsCount,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert meeting %s: %w", m.ID, err)
	}
	return nil
}

// MeetingExists reports whether a meeting row with id already exists, used
// by the writer to distinguish an insert from an identity collision so it
// can count the latter as duplicates_avoided (spec §4.5).
func MeetingExists(ctx context.Context, q Querier, id uuid.UUID) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM meetings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("storage: check meeting %s exists: %w", id, err)
	}
	return exists, nil
}

// UpsertSourceMeeting records which source URL and run most recently wrote a
// meeting (SPEC_FULL.md §3.1), in the same transaction as the meeting row.
func UpsertSourceMeeting(ctx context.Context, q Querier, sm model.SourceMeeting) error {
	const sql = `
INSERT INTO source_meetings (meeting_id, source_url, ingestion_run_id, recorded_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (meeting_id) DO UPDATE SET
	source_url = EXCLUDED.source_url,
	ingestion_run_id = EXCLUDED.ingestion_run_id,
	recorded_at = now()`
	if _, err := q.Exec(ctx, sql, sm.MeetingID, sm.SourceURL, sm.IngestionRunID); err != nil {
		return fmt.Errorf("storage: upsert source_meeting %s: %w", sm.MeetingID, err)
	}
	return nil
}

// MeetingFilter holds the query params GET /api/meetings accepts (spec §4.7, §6).
type MeetingFilter struct {
	Workgroup *string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    *string
	Page      int
	PageSize  int
}

// ListMeetingSummaries returns one page of meeting summaries from
// meeting_summary_view (spec §4.7), ordered ingested_at DESC NULLS LAST,
// meeting_date DESC NULLS LAST, along with the total matching row count.
func ListMeetingSummaries(ctx context.Context, q Querier, f MeetingFilter) ([]model.MeetingSummary, int, error) {
	where, args := meetingFilterClause(f)

	var total int
	countSQL := fmt.Sprintf(`SELECT count(*) FROM meeting_summary_view %s`, where)
	if err := q.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("storage: count meetings: %w", err)
	}

	limitIdx := len(args) + 1
	offsetIdx := len(args) + 2
	listSQL := fmt.Sprintf(`
SELECT id, source_id, source_name, workgroup, meeting_date, ingested_at,
       title, validation_warnings_count, has_missing_fields
FROM meeting_summary_view
%s
ORDER BY ingested_at DESC NULLS LAST, meeting_date DESC NULLS LAST
LIMIT $%d OFFSET $%d`, where, limitIdx, offsetIdx)

	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	rows, err := q.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("storage: list meetings: %w", err)
	}
	defer rows.Close()

	var out []model.MeetingSummary
	for rows.Next() {
		var s model.MeetingSummary
		if err := rows.Scan(&s.ID, &s.SourceID, &s.SourceName, &s.Workgroup,
			&s.MeetingDate, &s.IngestedAt, &s.Title, &s.ValidationWarningsCount,
			&s.HasMissingFields); err != nil {
			return nil, 0, fmt.Errorf("storage: scan meeting summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("storage: iterate meetings: %w", err)
	}
	return out, total, nil
}

// CountMatchingMeetings returns the total row count for f, ignoring Page and
// PageSize, used by the export handler to enforce the 10,000-row cap (spec §6)
// before writing any response bytes.
func CountMatchingMeetings(ctx context.Context, q Querier, f MeetingFilter) (int, error) {
	where, args := meetingFilterClause(f)
	var total int
	sql := fmt.Sprintf(`SELECT count(*) FROM meeting_summary_view %s`, where)
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("storage: count matching meetings: %w", err)
	}
	return total, nil
}

// ListExportRows returns every meeting summary matching f (no pagination),
// ordered the same way as ListMeetingSummaries, for use by the export handler
// once the row-count cap has been checked.
func ListExportRows(ctx context.Context, q Querier, f MeetingFilter) ([]model.ExportRow, error) {
	where, args := meetingFilterClause(f)
	sql := fmt.Sprintf(`
SELECT id, coalesce(source_name, ''), coalesce(workgroup, ''),
       coalesce(meeting_date::text, ''), coalesce(ingested_at::text, ''),
       coalesce(title, ''), validation_warnings_count, has_missing_fields
FROM meeting_summary_view
%s
ORDER BY ingested_at DESC NULLS LAST, meeting_date DESC NULLS LAST`, where)

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list export rows: %w", err)
	}
	defer rows.Close()

	var out []model.ExportRow
	for rows.Next() {
		var r model.ExportRow
		if err := rows.Scan(&r.ID, &r.SourceName, &r.Workgroup, &r.MeetingDate,
			&r.IngestedAt, &r.Title, &r.ValidationWarningsCount, &r.HasMissingFields); err != nil {
			return nil, fmt.Errorf("storage: scan export row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate export rows: %w", err)
	}
	return out, nil
}

// GetMeetingDetail returns the full detail view for one meeting (spec §4.7),
// or storage.ErrNotFound if it does not exist.
func GetMeetingDetail(ctx context.Context, q Querier, id uuid.UUID) (*model.MeetingDetail, error) {
	const sql = `
SELECT id, source_id, source_name, workgroup, meeting_date, ingested_at,
       title, validation_warnings_count, has_missing_fields,
       normalized_fields, missing_fields, provenance, raw_json_reference
FROM meeting_summary_view
WHERE id = $1`

	var d model.MeetingDetail
	err := q.QueryRow(ctx, sql, id).Scan(
		&d.ID, &d.SourceID, &d.SourceName, &d.Workgroup, &d.MeetingDate,
		&d.IngestedAt, &d.Title, &d.ValidationWarningsCount, &d.HasMissingFields,
		&d.NormalizedFields, &d.MissingFields, &d.Provenance, &d.RawJSONReference,
	)
	if err != nil {
		return nil, mapNotFound(err, fmt.Sprintf("meeting %s", id))
	}
	return &d, nil
}

func meetingFilterClause(f MeetingFilter) (string, []any) {
	var clauses []string
	var args []any
	idx := 1

	if f.Workgroup != nil && *f.Workgroup != "" {
		clauses = append(clauses, fmt.Sprintf("workgroup ILIKE $%d", idx))
		args = append(args, "%"+*f.Workgroup+"%")
		idx++
	}
	if f.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("meeting_date >= $%d", idx))
		args = append(args, *f.DateFrom)
		idx++
	}
	if f.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("meeting_date <= $%d", idx))
		args = append(args, *f.DateTo)
		idx++
	}
	if f.Search != nil && *f.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(workgroup ILIKE $%d OR title ILIKE $%d)", idx, idx))
		args = append(args, "%"+*f.Search+"%")
		idx++
	}
	if len(clauses) == 0 {
		return "", args
	}
	where := "WHERE "
	for i, c := range clauses {
		if i > 0 {
			where += " AND "
		}
		where += c
	}
	return where, args
}
