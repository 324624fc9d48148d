package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChildKind distinguishes the three agenda-item child entity kinds for
// namespace selection in ResolveChildID.
type ChildKind string

const (
	ChildKindAction     ChildKind = "action"
	ChildKindDecision   ChildKind = "decision"
	ChildKindDiscussion ChildKind = "discussion"
)

// ParseUUIDIfPresent parses raw as a UUID when non-empty, returning
// (uuid.Nil, false, nil) when raw is empty (absent) and (uuid.Nil, false,
// err) when raw is present but not a syntactically valid UUID — a
// record-level failure per spec §4.2 ("all nested ids, when present, must
// be UUID-parseable; invalid ids are a record-level failure").
func ParseUUIDIfPresent(raw string) (id uuid.UUID, present bool, err error) {
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err = uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("identity: %q is not a valid UUID: %w", raw, err)
	}
	return id, true, nil
}

// ResolveWorkgroupID parses the client-supplied workgroup_id. Workgroup
// identity is always taken verbatim from the source (spec §4.3).
func ResolveWorkgroupID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("identity: workgroup_id %q is not a valid UUID: %w", raw, err)
	}
	return id, nil
}

// ResolveMeetingID implements spec §4.3 and the §9.1 Open Question
// resolution: sourceID wins when present and a syntactically valid UUID;
// otherwise a UUIDv5 is derived over NSMeeting and a stable content key.
func ResolveMeetingID(sourceID string, workgroupID uuid.UUID, date time.Time, host, purpose *string, agendaCount int) (uuid.UUID, error) {
	if id, present, err := ParseUUIDIfPresent(sourceID); err != nil {
		return uuid.Nil, err
	} else if present {
		return id, nil
	}

	dateStr := date.Format("2006-01-02")
	hostStr := ""
	if host != nil {
		hostStr = *host
	}
	purposeStr := ""
	if purpose != nil {
		purposeStr = *purpose
	}

	hashInput := fmt.Sprintf("%s:%s:%s:%s:%d", workgroupID, dateStr, hostStr, purposeStr, agendaCount)
	sum := sha256.Sum256([]byte(hashInput))
	hash16 := hex.EncodeToString(sum[:])[:16]

	key := fmt.Sprintf("%s:%s:%s", workgroupID, dateStr, hash16)
	return uuid.NewSHA1(NSMeeting, []byte(key)), nil
}

// ResolveAgendaItemID implements spec §4.3: sourceID if present, else
// uuid5(NSAgenda, "{meeting_id}:agenda:{order_index}").
func ResolveAgendaItemID(sourceID string, meetingID uuid.UUID, orderIndex int) (uuid.UUID, error) {
	if id, present, err := ParseUUIDIfPresent(sourceID); err != nil {
		return uuid.Nil, err
	} else if present {
		return id, nil
	}
	key := fmt.Sprintf("%s:agenda:%d", meetingID, orderIndex)
	return uuid.NewSHA1(NSAgenda, []byte(key)), nil
}

// ResolveChildID implements spec §4.3 for ActionItem/DecisionItem/
// DiscussionPoint: sourceID if present, else
// uuid5(NS_CHILD_*, "{agenda_item_id}:{kind}:{child_order_index}").
func ResolveChildID(kind ChildKind, sourceID string, agendaItemID uuid.UUID, orderIndex int) (uuid.UUID, error) {
	if id, present, err := ParseUUIDIfPresent(sourceID); err != nil {
		return uuid.Nil, err
	} else if present {
		return id, nil
	}

	var ns uuid.UUID
	switch kind {
	case ChildKindAction:
		ns = NSChildAction
	case ChildKindDecision:
		ns = NSChildDecision
	case ChildKindDiscussion:
		ns = NSChildDiscussion
	default:
		return uuid.Nil, fmt.Errorf("identity: unknown child kind %q", kind)
	}
	key := fmt.Sprintf("%s:%s:%d", agendaItemID, kind, orderIndex)
	return uuid.NewSHA1(ns, []byte(key)), nil
}
