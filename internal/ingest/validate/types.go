// Package validate implements the two-phase validation pipeline of spec
// §4.2: a cheap structure gate over the whole document, then a per-record
// parse into a strict internal model with no reflection-based coercion.
package validate

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
)

// Warning is one non-fatal normalization applied while parsing a record,
// counted toward validation_warnings_count (SPEC_FULL.md §9.1 resolution 3).
type Warning struct {
	Field   string
	Message string
}

// ParsedActionItem is the strict internal model of one actionItems element.
type ParsedActionItem struct {
	SourceID string // raw "id" field, empty if absent
	Text     string
	Assignee *string
	DueDate  *string
	Status   *string
	RawJSON  json.RawMessage
}

// ParsedDecisionItem is the strict internal model of one decisionItems element.
type ParsedDecisionItem struct {
	SourceID     string
	DecisionText string
	Rationale    *string
	EffectScope  *string
	RawJSON      json.RawMessage
}

// ParsedDiscussionPoint is the strict internal model of one discussionPoints
// element, after resolving the string/object polymorphism (spec §4.2, §9
// "tagged variant" design note).
type ParsedDiscussionPoint struct {
	SourceID  string
	PointText string
	RawJSON   json.RawMessage
}

// ParsedAgendaItem is the strict internal model of one agendaItems element.
type ParsedAgendaItem struct {
	SourceID         string
	Status           *string
	ActionItems      []ParsedActionItem
	DecisionItems    []ParsedDecisionItem
	DiscussionPoints []ParsedDiscussionPoint
	RawJSON          json.RawMessage
}

// ParsedRecord is the strict internal model of one input document record
// (spec §4.2 record gate), carrying both normalized attributes and the
// original JSON fragment (spec §9 "pass the original bytes/object explicitly
// through the pipeline").
type ParsedRecord struct {
	Index int

	WorkgroupID   uuid.UUID
	WorkgroupName string

	SourceMeetingID string // raw "id" field at the record root, empty if absent
	DateRaw         string
	Host            *string
	Documenter      *string
	Attendees       []string
	Purpose         *string
	VideoLinks      []string
	WorkingDocs     json.RawMessage
	TimestampedVideo json.RawMessage
	Tags            json.RawMessage
	Type            *string

	AgendaItems []ParsedAgendaItem

	RawJSON  json.RawMessage
	Warnings []Warning
}

// RecordError is a record-level validation failure (spec §4.2, §7
// record_validation_error): the record is skipped but the source continues.
type RecordError struct {
	Index     int
	FieldPath string
	Err       error
}

func (e *RecordError) Error() string {
	return "validate: record " + strconv.Itoa(e.Index) + " field " + e.FieldPath + ": " + e.Err.Error()
}

func (e *RecordError) Unwrap() error { return e.Err }
