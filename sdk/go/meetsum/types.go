package meetsum

import "time"

// KPIs mirrors the server's model.KPIs (spec §4.7).
type KPIs struct {
	TotalIngested     int        `json:"total_ingested"`
	SourcesCount      int        `json:"sources_count"`
	SuccessRate       float64    `json:"success_rate"`
	DuplicatesAvoided int        `json:"duplicates_avoided"`
	LastRunTimestamp  *time.Time `json:"last_run_timestamp"`
}

// MeetingSummary is one row of ListMeetings.
type MeetingSummary struct {
	ID                      string  `json:"id"`
	SourceID                *string `json:"source_id"`
	SourceName              *string `json:"source_name"`
	Workgroup               *string `json:"workgroup"`
	MeetingDate             *string `json:"meeting_date"`
	IngestedAt              *string `json:"ingested_at"`
	Title                   *string `json:"title"`
	ValidationWarningsCount int     `json:"validation_warnings_count"`
	HasMissingFields        bool    `json:"has_missing_fields"`
}

// ValidationWarningDetail describes one non-fatal record-gate normalization.
type ValidationWarningDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MeetingDetail is the response body of GetMeeting.
type MeetingDetail struct {
	MeetingSummary
	NormalizedFields   map[string]any            `json:"normalized_fields"`
	ValidationWarnings []ValidationWarningDetail `json:"validation_warnings"`
	MissingFields      []string                  `json:"missing_fields"`
	Provenance         map[string]any            `json:"provenance"`
	RawJSONReference   *string                   `json:"raw_json_reference"`
}

// PaginatedMeetings is the response envelope of ListMeetings.
type PaginatedMeetings struct {
	Items      []MeetingSummary `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// ListMeetingsOptions are the optional filters for ListMeetings.
type ListMeetingsOptions struct {
	Workgroup string
	DateFrom  string
	DateTo    string
	Search    string
	Page      int
	PageSize  int
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	ID                string     `json:"id"`
	StartedAt         *time.Time `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at"`
	Status            *string    `json:"status"`
	RecordsProcessed  int        `json:"records_processed"`
	RecordsFailed     int        `json:"records_failed"`
	DuplicatesAvoided int        `json:"duplicates_avoided"`
}

// MonthlyAggregate is one row of GetMonthly.
type MonthlyAggregate struct {
	Month               string `json:"month"`
	RecordsIngested     int    `json:"records_ingested"`
	RecordsWithWarnings int    `json:"records_with_warnings"`
}

// Alert is one row of ListAlerts.
type Alert struct {
	ID             string     `json:"id"`
	Timestamp      time.Time  `json:"timestamp"`
	SourceURL      *string    `json:"source_url"`
	ErrorType      string     `json:"error_type"`
	Message        string     `json:"message"`
	IngestionRunID *string    `json:"ingestion_run_id"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	AcknowledgedBy *string    `json:"acknowledged_by"`
}

// ListAlertsOptions are the optional filters for ListAlerts.
type ListAlertsOptions struct {
	Hours        int
	ErrorType    string
	Acknowledged *bool
}

// AcknowledgeAlertResponse is the response body of AcknowledgeAlert.
type AcknowledgeAlertResponse struct {
	Message        string `json:"message"`
	AcknowledgedBy string `json:"acknowledged_by"`
}

// HealthResponse is the response body of Health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Postgres string `json:"postgres"`
	Uptime   int64  `json:"uptime_seconds"`
}
