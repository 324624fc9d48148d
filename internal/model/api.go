// Package model holds the domain entities (Workgroup, Meeting, AgendaItem,
// and their children) and the HTTP request/response shapes served by the
// read API.
package model

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// privateIPRanges is the set of CIDR blocks considered non-public.
// Populated once at package init; used by ValidateSourceURI.
var privateIPRanges []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16", // link-local
		"::1/128",
		"fc00::/7",  // unique-local IPv6
		"fe80::/10", // link-local IPv6
	} {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			privateIPRanges = append(privateIPRanges, network)
		}
	}
}

// ValidateSourceURI reports whether a source URL is a safe, publicly-routable
// http/https URL. Rejects non-http(s) schemes, embedded credentials, and
// private/loopback addresses (SSRF surface for source_url values in
// INGEST_SOURCE_URLS). Neither the fetcher nor the coordinator calls it;
// configured URLs are fetched without this check.
func ValidateSourceURI(rawURI string) error {
	u, err := url.Parse(rawURI)
	if err != nil {
		return fmt.Errorf("invalid URI: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("source url must use http or https scheme (got %q)", u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("source url must not include credentials")
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("source url must include a host")
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("source url must not point to localhost")
	}
	if ip := net.ParseIP(host); ip != nil {
		for _, r := range privateIPRanges {
			if r.Contains(ip) {
				return fmt.Errorf("source url must not point to a private or loopback address")
			}
		}
	}
	return nil
}

// APIError is the standard error response envelope. Error responses keep a
// small envelope (unlike success bodies) since spec.md never documents a
// flat shape for them, only status codes (spec §6, §7).
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// HealthResponse is the response for GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Postgres string `json:"postgres"`
	Uptime   int64  `json:"uptime_seconds"`
}

// KPIs is the response body for GET /api/kpis (spec §4.7). An empty store
// returns {0, 0, 100.0, 0, nil}.
type KPIs struct {
	TotalIngested     int        `json:"total_ingested"`
	SourcesCount      int        `json:"sources_count"`
	SuccessRate       float64    `json:"success_rate"`
	DuplicatesAvoided int        `json:"duplicates_avoided"`
	LastRunTimestamp  *time.Time `json:"last_run_timestamp"`
}

// MeetingSummary is one row of GET /api/meetings (spec §4.7, §6).
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

// ValidationWarningDetail describes one non-fatal normalization applied
// during the record gate (SPEC_FULL.md §9.1 resolution 3).
type ValidationWarningDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MeetingDetail is the response body for GET /api/meetings/{id}.
type MeetingDetail struct {
	MeetingSummary
	NormalizedFields   map[string]any            `json:"normalized_fields"`
	ValidationWarnings []ValidationWarningDetail `json:"validation_warnings"`
	MissingFields      []string                  `json:"missing_fields"`
	Provenance         map[string]any            `json:"provenance"`
	RawJSONReference   *string                   `json:"raw_json_reference"`
}

// PaginatedMeetings is the response envelope for GET /api/meetings.
type PaginatedMeetings struct {
	Items      []MeetingSummary `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// RunSummary is one row of GET /api/runs.
type RunSummary struct {
	ID                string     `json:"id"`
	StartedAt         *time.Time `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at"`
	Status            *string    `json:"status"`
	RecordsProcessed  int        `json:"records_processed"`
	RecordsFailed     int        `json:"records_failed"`
	DuplicatesAvoided int        `json:"duplicates_avoided"`
}

// MonthlyAggregate is one row of GET /api/runs/monthly.
type MonthlyAggregate struct {
	Month               string `json:"month"`
	RecordsIngested     int    `json:"records_ingested"`
	RecordsWithWarnings int    `json:"records_with_warnings"`
}

// Alert is one row of GET /api/alerts.
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

// TokenRequest is the request body for POST /api/auth/token.
type TokenRequest struct {
	APIKey string `json:"api_key"`
}

// TokenResponse is the response body for POST /api/auth/token.
type TokenResponse struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AcknowledgeAlertRequest is the request body for POST /api/alerts/{id}/acknowledge.
type AcknowledgeAlertRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

// AcknowledgeAlertResponse is the response body for POST /api/alerts/{id}/acknowledge.
type AcknowledgeAlertResponse struct {
	Message        string `json:"message"`
	AcknowledgedBy string `json:"acknowledged_by"`
}

// ExportRequest is the request body for POST /api/exports.
type ExportRequest struct {
	Format    string  `json:"format"` // "csv" or "json"
	Workgroup *string `json:"workgroup,omitempty"`
	DateFrom  *string `json:"date_from,omitempty"`
	DateTo    *string `json:"date_to,omitempty"`
	Search    *string `json:"search,omitempty"`
}

// ExportRow is one row of the fixed-column-order export (spec §6).
type ExportRow struct {
	ID                      string
	SourceName              string
	Workgroup               string
	MeetingDate             string
	IngestedAt              string
	Title                   string
	ValidationWarningsCount int
	HasMissingFields        bool
}

// ExportHeader returns the fixed column order spec.md §6 mandates for exports.
func ExportHeader() []string {
	return []string{
		"id", "source_name", "workgroup", "meeting_date", "ingested_at",
		"title", "validation_warnings_count", "has_missing_fields",
	}
}
