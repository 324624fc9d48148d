// Package coordinator orchestrates ingestion across multiple source URLs
// (spec §4.6): one source at a time, run/error accounting, and isolation so
// a single record or source failure never aborts the rest.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/fetch"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/identity"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/validate"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/writer"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage"
)

// progressEvery matches spec §4.6 step 6: "Every 10 records (and at the
// end), emit a progress log".
const progressEvery = 10

// ProgressFunc receives per-source progress updates without coupling the
// coordinator to a specific logging backend (spec §9 design note).
type ProgressFunc func(sourceURL string, processed, total int)

// RunResult summarizes one source's ingestion run (spec §4.6, §3 IngestionRun).
type RunResult struct {
	SourceURL         string
	RunID             uuid.UUID
	Status            model.RunStatus
	RecordsProcessed  int
	RecordsFailed     int
	DuplicatesAvoided int
}

// Coordinator drives sequential per-source ingestion.
type Coordinator struct {
	db       *storage.DB
	fetcher  *fetch.Fetcher
	writer   *writer.Writer
	logger   *slog.Logger
	dryRun   bool
	progress ProgressFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithProgress installs a progress callback (spec §9 design note).
func WithProgress(fn ProgressFunc) Option {
	return func(c *Coordinator) { c.progress = fn }
}

// New constructs a Coordinator. dryRun mirrors spec §4.6's dry-run mode:
// validation and identity derivation run, but no store calls are made.
func New(db *storage.DB, fetcher *fetch.Fetcher, w *writer.Writer, logger *slog.Logger, dryRun bool, opts ...Option) *Coordinator {
	c := &Coordinator{db: db, fetcher: fetcher, writer: w, logger: logger, dryRun: dryRun}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run ingests every source URL in order (spec §5: one source at a time),
// returning one RunResult per source. A failure on one source never aborts
// the others.
func (c *Coordinator) Run(ctx context.Context, sourceURLs []string) []RunResult {
	results := make([]RunResult, 0, len(sourceURLs))
	for _, url := range sourceURLs {
		results = append(results, c.runSource(ctx, url))
	}
	return results
}

func (c *Coordinator) runSource(ctx context.Context, sourceURL string) RunResult {
	result := RunResult{SourceURL: sourceURL, Status: model.RunStatusRunning}

	var runID uuid.UUID
	if !c.dryRun && c.db != nil {
		id, err := storage.CreateRun(ctx, c.db.Pool(), sourceURL)
		if err != nil {
			c.logger.Error("coordinator: create run failed", "source_url", sourceURL, "error", err)
			return result
		}
		runID = id
	}
	result.RunID = runID

	finish := func(status model.RunStatus) RunResult {
		result.Status = status
		if !c.dryRun && c.db != nil {
			if err := storage.FinishRun(ctx, c.db.Pool(), runID, status, result.RecordsProcessed, result.RecordsFailed, result.DuplicatesAvoided); err != nil {
				c.logger.Error("coordinator: finish run failed", "source_url", sourceURL, "error", err)
			}
		}
		return result
	}

	records, err := c.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		c.logError(ctx, sourceURL, runID, "source_processing_failed", err)
		return finish(model.RunStatusFailed)
	}

	if err := validate.StructureGate(records); err != nil {
		c.logError(ctx, sourceURL, runID, "validation_error", err)
		return finish(model.RunStatusFailed)
	}

	if !c.dryRun && c.db != nil {
		if err := c.upsertWorkgroups(ctx, records); err != nil {
			c.logError(ctx, sourceURL, runID, "database_connection_error", err)
			return finish(model.RunStatusFailed)
		}
	}

	total := len(records)
	for i, raw := range records {
		rec, err := validate.ParseRecord(i, raw)
		if err != nil {
			result.RecordsFailed++
			c.logError(ctx, sourceURL, runID, "record_validation_error", err)
			c.reportProgress(sourceURL, i+1, total)
			continue
		}

		if c.dryRun {
			date, err := identity.ParseDate(rec.DateRaw)
			if err == nil {
				_, err = identity.ResolveMeetingID(rec.SourceMeetingID, rec.WorkgroupID, date, rec.Host, rec.Purpose, len(rec.AgendaItems))
			}
			if err != nil {
				result.RecordsFailed++
				c.logError(ctx, sourceURL, runID, "record_validation_error", err)
				c.reportProgress(sourceURL, i+1, total)
				continue
			}
			result.RecordsProcessed++
			c.reportProgress(sourceURL, i+1, total)
			continue
		}

		outcome, err := c.writer.WriteMeeting(ctx, runID, sourceURL, rec)
		if err != nil {
			result.RecordsFailed++
			c.logError(ctx, sourceURL, runID, classifyWriteError(err), err)
			c.reportProgress(sourceURL, i+1, total)
			continue
		}

		result.RecordsProcessed++
		if outcome.Duplicate {
			result.DuplicatesAvoided++
			c.logger.Info("coordinator: duplicate meeting id resolved, updating", "meeting_id", outcome.MeetingID)
		}
		c.reportProgress(sourceURL, i+1, total)
	}

	if result.RecordsFailed == 0 {
		return finish(model.RunStatusSucceeded)
	}
	return finish(model.RunStatusPartial)
}

func (c *Coordinator) upsertWorkgroups(ctx context.Context, records []map[string]any) error {
	seen := make(map[string]bool)
	tx, err := c.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("coordinator: begin workgroup tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, raw := range records {
		wgID, _ := raw["workgroup_id"].(string)
		wgName, _ := raw["workgroup"].(string)
		if wgID == "" || seen[wgID] {
			continue
		}
		seen[wgID] = true

		id, err := uuid.Parse(wgID)
		if err != nil {
			// Invalid workgroup_id is a record-level concern (handled again
			// during the record gate); skip it here rather than fail the
			// whole pre-materialization step.
			continue
		}
		rawJSON := rawFragment(raw)
		if err := storage.UpsertWorkgroup(ctx, tx, model.Workgroup{ID: id, Name: wgName, RawJSON: rawJSON}); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (c *Coordinator) logError(ctx context.Context, sourceURL string, runID uuid.UUID, errorType, errMsg any) {
	c.logger.Error("coordinator: "+fmt.Sprint(errorType), "source_url", sourceURL, "error", errMsg)
	if c.db == nil || c.dryRun {
		return
	}
	var runIDPtr *uuid.UUID
	if runID != uuid.Nil {
		runIDPtr = &runID
	}
	entry := model.ErrorLogEntry{
		SourceURL:      &sourceURL,
		ErrorType:      model.ErrorType(fmt.Sprint(errorType)),
		Message:        fmt.Sprint(errMsg),
		IngestionRunID: runIDPtr,
	}
	if err := storage.InsertErrorLogEntry(ctx, c.db.Pool(), entry); err != nil {
		c.logger.Error("coordinator: failed to persist error log entry", "error", err)
	}
}

func (c *Coordinator) reportProgress(sourceURL string, processed, total int) {
	if c.progress == nil {
		return
	}
	if processed%progressEvery == 0 || processed == total {
		c.progress(sourceURL, processed, total)
	}
}

// classifyWriteError assigns a write failure to one of the spec §7 record-
// level error taxonomy entries. Postgres errors are classified by SQLSTATE
// via storage.ClassifyError; the writer's own circular_reference error is
// matched by substring since it never reaches Postgres. Anything else is an
// uncaught record-level failure (unknown_error).
func classifyWriteError(err error) string {
	if kind := storage.ClassifyError(err); kind != "" {
		return kind
	}
	if contains(err.Error(), "circular_reference") {
		return "circular_reference"
	}
	return "unknown_error"
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func rawFragment(raw map[string]any) []byte {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return b
}
