package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage"
)

// HandleExport handles POST /api/exports (spec §6). Export is non-streaming:
// the matching row count is checked against exportRowLimit before any
// response bytes are written, so an over-cap request gets a clean 413
// instead of a truncated download.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var req model.ExportRequest
	if err := decodeJSON(w, r, h.maxRequestBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.Format != "csv" && req.Format != "json" {
		writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidInput, "format must be csv or json")
		return
	}

	f := storage.MeetingFilter{}
	f.Workgroup = req.Workgroup
	f.Search = req.Search
	if req.DateFrom != nil {
		t, err := time.Parse("2006-01-02", *req.DateFrom)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidInput, "date_from must be in YYYY-MM-DD format")
			return
		}
		f.DateFrom = &t
	}
	if req.DateTo != nil {
		t, err := time.Parse("2006-01-02", *req.DateTo)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidInput, "date_to must be in YYYY-MM-DD format")
			return
		}
		f.DateTo = &t
	}

	if h.db == nil {
		h.writeExportRows(w, r, req.Format, nil)
		return
	}

	total, err := storage.CountMatchingMeetings(r.Context(), h.db.Pool(), f)
	if err != nil {
		h.writeInternalError(w, r, "failed to count export rows", err)
		return
	}
	if total > h.exportRowLimit {
		writeError(w, r, http.StatusRequestEntityTooLarge, model.ErrCodePayloadTooLarge,
			fmt.Sprintf("export would return %d rows, exceeding the %d row limit; narrow your filters", total, h.exportRowLimit))
		return
	}

	rows, err := storage.ListExportRows(r.Context(), h.db.Pool(), f)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeExportRows(w, r, req.Format, nil)
			return
		}
		h.writeInternalError(w, r, "failed to list export rows", err)
		return
	}
	h.writeExportRows(w, r, req.Format, rows)
}

func (h *Handlers) writeExportRows(w http.ResponseWriter, r *http.Request, format string, rows []model.ExportRow) {
	filename := "meetings_export." + format

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			h.logger.Warn("failed to encode export json", "error", err, "request_id", RequestIDFromContext(r.Context()))
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.Write(model.ExportHeader()); err != nil {
		h.logger.Warn("failed to write export csv header", "error", err)
		return
	}
	for _, row := range rows {
		record := []string{
			row.ID, row.SourceName, row.Workgroup, row.MeetingDate, row.IngestedAt,
			row.Title, strconv.Itoa(row.ValidationWarningsCount), strconv.FormatBool(row.HasMissingFields),
		}
		if err := cw.Write(record); err != nil {
			h.logger.Warn("failed to write export csv row", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Warn("failed to flush export csv", "error", err)
	}
}
