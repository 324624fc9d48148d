package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage"
)

// decodeJSON decodes r's body into dest, rejecting bodies larger than
// maxBytes and bodies carrying unrecognized fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dest any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

// HandlersDeps holds the dependencies Handlers needs.
type HandlersDeps struct {
	// DB may be nil, in which case the listing, KPI and export handlers
	// degrade to an empty-but-200 response (SPEC_FULL.md §2.3) instead of
	// failing; GET /api/meetings/{id} returns 500 and alert acknowledgement 404.
	DB                  *storage.DB
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
	ExportRowLimit      int
}

// Handlers holds the HTTP handlers for the read API (spec §6).
type Handlers struct {
	db                  *storage.DB
	logger              *slog.Logger
	version             string
	maxRequestBodyBytes int64
	exportRowLimit      int
	startedAt           time.Time
}

// NewHandlers creates a new Handlers from its dependencies.
func NewHandlers(deps HandlersDeps) *Handlers {
	limit := deps.ExportRowLimit
	if limit <= 0 {
		limit = 10_000
	}
	maxBody := deps.MaxRequestBodyBytes
	if maxBody <= 0 {
		maxBody = 1 * 1024 * 1024
	}
	return &Handlers{
		db:                  deps.DB,
		logger:              deps.Logger,
		version:             deps.Version,
		maxRequestBodyBytes: maxBody,
		exportRowLimit:      limit,
		startedAt:           time.Now(),
	}
}

// HandleHealth handles GET /healthz. It never requires authentication
// (spec §6) and reports Postgres connectivity without failing the whole
// response if the ping fails.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := model.HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  int64(time.Since(h.startedAt).Seconds()),
	}

	switch {
	case h.db == nil:
		resp.Postgres = "unconfigured"
	default:
		if err := h.db.Ping(r.Context()); err != nil {
			resp.Postgres = "down"
			resp.Status = "degraded"
		} else {
			resp.Postgres = "up"
		}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// HandleKPIs handles GET /api/kpis (spec §4.7).
func (h *Handlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, r, http.StatusOK, model.KPIs{SuccessRate: 100.0})
		return
	}

	kpis, err := storage.GetKPIs(r.Context(), h.db.Pool())
	if err != nil {
		h.writeInternalError(w, r, "failed to load kpis", err)
		return
	}
	writeJSON(w, r, http.StatusOK, kpis)
}

// HandleListMeetings handles GET /api/meetings (spec §4.7, §6).
func (h *Handlers) HandleListMeetings(w http.ResponseWriter, r *http.Request) {
	f, err := parseMeetingFilter(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidInput, err.Error())
		return
	}

	if h.db == nil {
		writeJSON(w, r, http.StatusOK, model.PaginatedMeetings{
			Items: []model.MeetingSummary{}, Page: f.Page, PageSize: f.PageSize,
		})
		return
	}

	items, total, err := storage.ListMeetingSummaries(r.Context(), h.db.Pool(), f)
	if err != nil {
		h.writeInternalError(w, r, "failed to list meetings", err)
		return
	}
	if items == nil {
		items = []model.MeetingSummary{}
	}

	totalPages := 0
	if f.PageSize > 0 {
		totalPages = (total + f.PageSize - 1) / f.PageSize
	}

	writeJSON(w, r, http.StatusOK, model.PaginatedMeetings{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	})
}

// HandleGetMeeting handles GET /api/meetings/{id} (spec §4.7).
func (h *Handlers) HandleGetMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid meeting id")
		return
	}

	if h.db == nil {
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "database unavailable")
		return
	}

	detail, err := storage.GetMeetingDetail(r.Context(), h.db.Pool(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "meeting not found")
		return
	}
	if err != nil {
		h.writeInternalError(w, r, "failed to load meeting", err)
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

// HandleListRuns handles GET /api/runs (spec §4.7, §6: limit capped at 1000).
func (h *Handlers) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	if h.db == nil {
		writeJSON(w, r, http.StatusOK, []model.RunSummary{})
		return
	}

	runs, err := storage.ListRuns(r.Context(), h.db.Pool(), limit)
	if err != nil {
		h.writeInternalError(w, r, "failed to list runs", err)
		return
	}
	if runs == nil {
		runs = []model.RunSummary{}
	}
	writeJSON(w, r, http.StatusOK, runs)
}

// HandleMonthlyAggregates handles GET /api/runs/monthly (spec §4.7, §6: months
// capped at 60).
func (h *Handlers) HandleMonthlyAggregates(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 12)
	if months <= 0 {
		months = 12
	}
	if months > 60 {
		months = 60
	}

	if h.db == nil {
		writeJSON(w, r, http.StatusOK, []model.MonthlyAggregate{})
		return
	}

	agg, err := storage.ListMonthlyAggregates(r.Context(), h.db.Pool(), months)
	if err != nil {
		h.writeInternalError(w, r, "failed to list monthly aggregates", err)
		return
	}
	if agg == nil {
		agg = []model.MonthlyAggregate{}
	}
	writeJSON(w, r, http.StatusOK, agg)
}

// HandleListAlerts handles GET /api/alerts (spec §4.7). Non-admin callers
// see only unacknowledged alerts unless acknowledged is explicitly set.
func (h *Handlers) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hours := queryInt(r, "hours", 24)
	if hours <= 0 {
		hours = 24
	}

	f := storage.AlertFilter{Hours: hours}
	if et := q.Get("error_type"); et != "" {
		f.ErrorType = &et
	}
	if ackStr := q.Get("acknowledged"); ackStr != "" {
		ack, err := strconv.ParseBool(ackStr)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "acknowledged must be true or false")
			return
		}
		f.Acknowledged = &ack
	}
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		f.IsAdmin = claims.Role.CanAcknowledge()
	}

	if h.db == nil {
		writeJSON(w, r, http.StatusOK, []model.Alert{})
		return
	}

	alerts, err := storage.ListAlerts(r.Context(), h.db.Pool(), f)
	if err != nil {
		h.writeInternalError(w, r, "failed to list alerts", err)
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, r, http.StatusOK, alerts)
}

// HandleAcknowledgeAlert handles POST /api/alerts/{id}/acknowledge. Gated to
// admin callers by requireAdmin in the route table (spec §8).
func (h *Handlers) HandleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	alertID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid alert id")
		return
	}

	var req model.AcknowledgeAlertRequest
	if err := decodeJSON(w, r, h.maxRequestBodyBytes, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.AcknowledgedBy == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "acknowledged_by is required")
		return
	}

	if h.db == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "alert not found")
		return
	}

	if err := storage.AcknowledgeAlert(r.Context(), h.db.Pool(), alertID, req.AcknowledgedBy); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "alert not found")
			return
		}
		h.writeInternalError(w, r, "failed to acknowledge alert", err)
		return
	}

	writeJSON(w, r, http.StatusOK, model.AcknowledgeAlertResponse{
		Message:        "alert acknowledged",
		AcknowledgedBy: req.AcknowledgedBy,
	})
}

// parseMeetingFilter reads the GET /api/meetings query params into a
// storage.MeetingFilter, defaulting page=1, page_size=50 (spec §4.7, §6).
// page and page_size out of range are a 422 (spec §6), not silently clamped.
func parseMeetingFilter(r *http.Request) (storage.MeetingFilter, error) {
	q := r.URL.Query()
	f := storage.MeetingFilter{Page: 1, PageSize: 50}

	if wg := q.Get("workgroup"); wg != "" {
		f.Workgroup = &wg
	}
	if s := q.Get("search"); s != "" {
		f.Search = &s
	}
	if from := q.Get("date_from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return f, errors.New("date_from must be in YYYY-MM-DD format")
		}
		f.DateFrom = &t
	}
	if to := q.Get("date_to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return f, errors.New("date_to must be in YYYY-MM-DD format")
		}
		f.DateTo = &t
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, errors.New("page must be an integer >= 1")
		}
		f.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return f, errors.New("page_size must be an integer between 1 and 100")
		}
		f.PageSize = n
	}

	return f, nil
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
