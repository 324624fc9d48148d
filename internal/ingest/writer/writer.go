// Package writer implements the per-meeting transactional materialization
// of spec §4.5: one atomic transaction per validated record, upserting the
// meeting and all its nested entities in document order.
package writer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/identity"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/validate"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage"
)

// Outcome reports what WriteMeeting did, for the coordinator's run
// accounting (spec §4.6).
type Outcome struct {
	MeetingID uuid.UUID
	Duplicate bool // true if this meeting id already existed (spec §4.5 "duplicates_avoided")
}

// Writer drives the transactional writes for validated records.
type Writer struct {
	db *storage.DB
}

// New constructs a Writer over db.
func New(db *storage.DB) *Writer {
	return &Writer{db: db}
}

// WriteMeeting implements spec §4.5 steps 1–6 for one validated record.
// Any failure rolls back the whole transaction; the meeting is never
// partially persisted (testable property 4).
func (w *Writer) WriteMeeting(ctx context.Context, runID uuid.UUID, sourceURL string, rec *validate.ParsedRecord) (Outcome, error) {
	if err := checkDepth(rec.RawJSON); err != nil {
		return Outcome{}, err
	}

	date, err := identity.ParseDate(rec.DateRaw)
	if err != nil {
		return Outcome{}, fmt.Errorf("writer: parse date: %w", err)
	}

	meetingID, err := identity.ResolveMeetingID(rec.SourceMeetingID, rec.WorkgroupID, date, rec.Host, rec.Purpose, len(rec.AgendaItems))
	if err != nil {
		return Outcome{}, fmt.Errorf("writer: resolve meeting id: %w", err)
	}

	tx, err := w.db.BeginTx(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("writer: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after a successful Commit

	existed, err := storage.MeetingExists(ctx, tx, meetingID)
	if err != nil {
		return Outcome{}, err
	}

	if err := storage.UpsertWorkgroup(ctx, tx, model.Workgroup{
		ID:      rec.WorkgroupID,
		Name:    rec.WorkgroupName,
		RawJSON: rec.RawJSON,
	}); err != nil {
		return Outcome{}, err
	}

	meeting := model.Meeting{
		ID:                      meetingID,
		WorkgroupID:             rec.WorkgroupID,
		Date:                    date,
		Type:                    rec.Type,
		Host:                    rec.Host,
		Documenter:              rec.Documenter,
		Attendees:               rec.Attendees,
		Purpose:                 rec.Purpose,
		VideoLinks:              rec.VideoLinks,
		WorkingDocs:             rec.WorkingDocs,
		TimestampedVideo:        rec.TimestampedVideo,
		Tags:                    rec.Tags,
		RawJSON:                 rec.RawJSON,
		ValidationWarningsCount: len(rec.Warnings),
	}
	if err := storage.UpsertMeeting(ctx, tx, meeting); err != nil {
		return Outcome{}, err
	}

	if sourceURL != "" {
		if err := storage.UpsertSourceMeeting(ctx, tx, model.SourceMeeting{
			MeetingID:      meetingID,
			SourceURL:      sourceURL,
			IngestionRunID: runID,
		}); err != nil {
			return Outcome{}, err
		}
	}

	for i, agenda := range rec.AgendaItems {
		agendaID, err := identity.ResolveAgendaItemID(agenda.SourceID, meetingID, i)
		if err != nil {
			return Outcome{}, fmt.Errorf("writer: resolve agenda item id: %w", err)
		}
		if err := storage.UpsertAgendaItem(ctx, tx, model.AgendaItem{
			ID:         agendaID,
			MeetingID:  meetingID,
			Status:     agenda.Status,
			OrderIndex: i,
			RawJSON:    agenda.RawJSON,
		}); err != nil {
			return Outcome{}, err
		}

		for j, ai := range agenda.ActionItems {
			id, err := identity.ResolveChildID(identity.ChildKindAction, ai.SourceID, agendaID, j)
			if err != nil {
				return Outcome{}, fmt.Errorf("writer: resolve action item id: %w", err)
			}
			if err := storage.UpsertActionItem(ctx, tx, model.ActionItem{
				ID:           id,
				AgendaItemID: agendaID,
				Text:         ai.Text,
				Assignee:     ai.Assignee,
				DueDate:      ai.DueDate,
				Status:       ai.Status,
				RawJSON:      ai.RawJSON,
			}); err != nil {
				return Outcome{}, err
			}
		}

		for j, di := range agenda.DecisionItems {
			id, err := identity.ResolveChildID(identity.ChildKindDecision, di.SourceID, agendaID, j)
			if err != nil {
				return Outcome{}, fmt.Errorf("writer: resolve decision item id: %w", err)
			}
			if err := storage.UpsertDecisionItem(ctx, tx, model.DecisionItem{
				ID:           id,
				AgendaItemID: agendaID,
				DecisionText: di.DecisionText,
				Rationale:    di.Rationale,
				EffectScope:  di.EffectScope,
				RawJSON:      di.RawJSON,
			}); err != nil {
				return Outcome{}, err
			}
		}

		for j, dp := range agenda.DiscussionPoints {
			id, err := identity.ResolveChildID(identity.ChildKindDiscussion, dp.SourceID, agendaID, j)
			if err != nil {
				return Outcome{}, fmt.Errorf("writer: resolve discussion point id: %w", err)
			}
			if err := storage.UpsertDiscussionPoint(ctx, tx, model.DiscussionPoint{
				ID:           id,
				AgendaItemID: agendaID,
				PointText:    dp.PointText,
				RawJSON:      dp.RawJSON,
			}); err != nil {
				return Outcome{}, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Outcome{}, fmt.Errorf("writer: commit: %w", err)
	}

	return Outcome{MeetingID: meetingID, Duplicate: existed}, nil
}
