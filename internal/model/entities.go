package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of an IngestionRun (spec §3).
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// ErrorType enumerates the error taxonomy of spec §7.
type ErrorType string

const (
	ErrorTypeHTTPError               ErrorType = "http_error"
	ErrorTypeTimeout                 ErrorType = "timeout"
	ErrorTypeTransportError          ErrorType = "transport_error"
	ErrorTypeJSONParseError          ErrorType = "json_parse_error"
	ErrorTypeShapeError               ErrorType = "shape_error"
	ErrorTypeValidationError          ErrorType = "validation_error"
	ErrorTypeRecordValidationError    ErrorType = "record_validation_error"
	ErrorTypeCircularReference        ErrorType = "circular_reference"
	ErrorTypeDatabaseConnectionError  ErrorType = "database_connection_error"
	ErrorTypeSQLSyntaxError           ErrorType = "sql_syntax_error"
	ErrorTypeUniqueViolation          ErrorType = "unique_violation"
	ErrorTypeUnknownError             ErrorType = "unknown_error"
)

// Workgroup is a client-supplied-UUID entity; one workgroup has many meetings
// (spec §3).
type Workgroup struct {
	ID        uuid.UUID
	Name      string
	RawJSON   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Meeting is keyed by a deterministic or source-supplied UUID (spec §4.3).
type Meeting struct {
	ID               uuid.UUID
	WorkgroupID      uuid.UUID
	Date             time.Time
	Type             *string
	Host             *string
	Documenter       *string
	Attendees        []string
	Purpose          *string
	VideoLinks       []string
	WorkingDocs      json.RawMessage
	TimestampedVideo json.RawMessage
	Tags             json.RawMessage
	RawJSON          json.RawMessage

	// ValidationWarningsCount is the count of non-fatal record-gate
	// normalizations applied while parsing this record (§9.1 resolution 3).
	ValidationWarningsCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgendaItem belongs to a Meeting; OrderIndex is the 0-based position within
// the meeting's agenda array (spec §3 invariant).
type AgendaItem struct {
	ID         uuid.UUID
	MeetingID  uuid.UUID
	Status     *string
	OrderIndex int
	RawJSON    json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ActionItem is a child of an AgendaItem.
type ActionItem struct {
	ID           uuid.UUID
	AgendaItemID uuid.UUID
	Text         string
	Assignee     *string
	DueDate      *string
	Status       *string
	RawJSON      json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DecisionItem is a child of an AgendaItem.
type DecisionItem struct {
	ID            uuid.UUID
	AgendaItemID  uuid.UUID
	DecisionText  string
	Rationale     *string
	EffectScope   *string
	RawJSON       json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DiscussionPoint is a child of an AgendaItem.
type DiscussionPoint struct {
	ID           uuid.UUID
	AgendaItemID uuid.UUID
	PointText    string
	RawJSON      json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IngestionRun tracks one invocation of the coordinator over one source
// (spec §3, GLOSSARY "Run").
type IngestionRun struct {
	ID                uuid.UUID
	SourceURL         string
	StartedAt         time.Time
	FinishedAt        *time.Time
	Status            RunStatus
	RecordsProcessed  int
	RecordsFailed     int
	DuplicatesAvoided int
}

// ErrorLogEntry is one row of the error taxonomy (spec §7).
type ErrorLogEntry struct {
	ID             uuid.UUID
	Timestamp      time.Time
	SourceURL      *string
	ErrorType      ErrorType
	Message        string
	IngestionRunID *uuid.UUID
}

// AlertAcknowledgment is keyed by alert_id (an ErrorLogEntry id), per spec §3.
type AlertAcknowledgment struct {
	AlertID        uuid.UUID
	AcknowledgedAt time.Time
	AcknowledgedBy string
}

// SourceMeeting is the supplemented join table from SPEC_FULL.md §3.1,
// tracking which source URL and run most recently wrote a given meeting so
// the read API can derive a display-friendly source_name without a new
// first-class "source" entity.
type SourceMeeting struct {
	MeetingID      uuid.UUID
	SourceURL      string
	IngestionRunID uuid.UUID
	RecordedAt     time.Time
}
