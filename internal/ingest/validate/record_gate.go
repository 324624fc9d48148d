package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/ingest/identity"
)

// ParseRecord runs the record gate (spec §4.2) over one raw document record,
// producing a ParsedRecord or a *RecordError. A record failure is logged by
// the caller with the record index and field path and the record is
// skipped; valid records continue (spec §4.2, testable property 6).
func ParseRecord(index int, raw map[string]any) (*ParsedRecord, error) {
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, &RecordError{Index: index, FieldPath: "$", Err: fmt.Errorf("re-marshal record: %w", err)}
	}

	p := &ParsedRecord{Index: index, RawJSON: rawJSON}

	workgroupIDRaw, _ := raw["workgroup_id"].(string)
	wgID, err := identity.ResolveWorkgroupID(workgroupIDRaw)
	if err != nil {
		return nil, &RecordError{Index: index, FieldPath: "workgroup_id", Err: err}
	}
	p.WorkgroupID = wgID

	workgroupName := strings.TrimSpace(asString(raw["workgroup"]))
	if workgroupName == "" {
		return nil, &RecordError{Index: index, FieldPath: "workgroup", Err: fmt.Errorf("workgroup must be non-empty")}
	}
	p.WorkgroupName = workgroupName

	if sourceID, ok := raw["id"].(string); ok {
		if _, _, err := identity.ParseUUIDIfPresent(sourceID); err != nil {
			return nil, &RecordError{Index: index, FieldPath: "id", Err: err}
		}
		p.SourceMeetingID = sourceID
	}

	meetingInfo, _ := raw["meetingInfo"].(map[string]any)
	if meetingInfo == nil {
		return nil, &RecordError{Index: index, FieldPath: "meetingInfo", Err: fmt.Errorf("meetingInfo is required")}
	}

	dateRaw, _ := meetingInfo["date"].(string)
	if strings.TrimSpace(dateRaw) == "" {
		return nil, &RecordError{Index: index, FieldPath: "meetingInfo.date", Err: fmt.Errorf("date is required")}
	}
	p.DateRaw = dateRaw

	p.Host = optionalTrimmedString(meetingInfo["host"])
	p.Documenter = optionalTrimmedString(meetingInfo["documenter"])
	p.Purpose = optionalTrimmedString(meetingInfo["purpose"])

	attendees, attendeesWarn := filterEmptyStrings(meetingInfo["attendees"])
	p.Attendees = attendees
	if attendeesWarn {
		p.Warnings = append(p.Warnings, Warning{Field: "meetingInfo.attendees", Message: "dropped empty-after-trim element"})
	}

	videoLinks, videoLinksWarn := filterEmptyStrings(meetingInfo["videoLinks"])
	p.VideoLinks = videoLinks
	if videoLinksWarn {
		p.Warnings = append(p.Warnings, Warning{Field: "meetingInfo.videoLinks", Message: "dropped empty-after-trim element"})
	}

	if wd, ok := meetingInfo["workingDocs"]; ok && wd != nil {
		p.WorkingDocs, _ = json.Marshal(wd)
	}
	if tv, ok := meetingInfo["timestampedVideo"]; ok && tv != nil {
		p.TimestampedVideo, _ = json.Marshal(tv)
	}
	if tags, ok := raw["tags"]; ok && tags != nil {
		p.Tags, _ = json.Marshal(tags)
	}
	if typ, ok := raw["type"].(string); ok {
		p.Type = &typ
	}

	agendaItemsRaw, ok := raw["agendaItems"].([]any)
	if !ok {
		// Absent or null normalizes to an empty sequence (spec §4.2).
		agendaItemsRaw = nil
	}

	for i, itemRaw := range agendaItemsRaw {
		item, ok := itemRaw.(map[string]any)
		if !ok {
			return nil, &RecordError{Index: index, FieldPath: fmt.Sprintf("agendaItems[%d]", i), Err: fmt.Errorf("agenda item must be an object")}
		}
		parsed, err := parseAgendaItem(item)
		if err != nil {
			return nil, &RecordError{Index: index, FieldPath: fmt.Sprintf("agendaItems[%d]", i), Err: err}
		}
		p.Warnings = append(p.Warnings, parsed.warnings...)
		p.AgendaItems = append(p.AgendaItems, parsed.item)
	}

	return p, nil
}

type parsedAgendaItemResult struct {
	item     ParsedAgendaItem
	warnings []Warning
}

func parseAgendaItem(item map[string]any) (parsedAgendaItemResult, error) {
	var result parsedAgendaItemResult

	rawJSON, err := json.Marshal(item)
	if err != nil {
		return result, fmt.Errorf("re-marshal agenda item: %w", err)
	}

	a := ParsedAgendaItem{RawJSON: rawJSON}
	if id, ok := item["id"].(string); ok {
		if _, _, err := identity.ParseUUIDIfPresent(id); err != nil {
			return result, fmt.Errorf("agendaItems.id: %w", err)
		}
		a.SourceID = id
	}
	a.Status = optionalTrimmedString(item["status"])

	actionItemsRaw, _ := item["actionItems"].([]any)
	for _, ai := range actionItemsRaw {
		obj, ok := ai.(map[string]any)
		if !ok {
			continue
		}
		text, ok := obj["text"].(string)
		text = strings.TrimSpace(text)
		if !ok || text == "" {
			// Silent filter: drop elements lacking a text field, count it
			// (spec §4.2).
			result.warnings = append(result.warnings, Warning{Field: "actionItems", Message: "dropped element missing text"})
			continue
		}
		raw, _ := json.Marshal(obj)
		sourceID, _ := obj["id"].(string)
		if _, _, err := identity.ParseUUIDIfPresent(sourceID); err != nil {
			return result, fmt.Errorf("actionItems.id: %w", err)
		}
		a.ActionItems = append(a.ActionItems, ParsedActionItem{
			SourceID: sourceID,
			Text:     text,
			Assignee: optionalTrimmedString(obj["assignee"]),
			DueDate:  optionalTrimmedString(obj["dueDate"]),
			Status:   optionalTrimmedString(obj["status"]),
			RawJSON:  raw,
		})
	}

	decisionItemsRaw, _ := item["decisionItems"].([]any)
	for _, di := range decisionItemsRaw {
		obj, ok := di.(map[string]any)
		if !ok {
			continue
		}
		decisionText := strings.TrimSpace(asString(obj["decision"]))
		if decisionText == "" {
			return result, fmt.Errorf("decisionItems: decision field is required and non-empty")
		}
		raw, _ := json.Marshal(obj)
		sourceID, _ := obj["id"].(string)
		if _, _, err := identity.ParseUUIDIfPresent(sourceID); err != nil {
			return result, fmt.Errorf("decisionItems.id: %w", err)
		}
		a.DecisionItems = append(a.DecisionItems, ParsedDecisionItem{
			SourceID:     sourceID,
			DecisionText: decisionText,
			Rationale:    optionalTrimmedString(obj["rationale"]),
			EffectScope:  optionalTrimmedString(obj["effectScope"]),
			RawJSON:      raw,
		})
	}

	discussionPointsRaw, _ := item["discussionPoints"].([]any)
	for _, dp := range discussionPointsRaw {
		text, coerced, err := normalizeDiscussionPoint(dp)
		if err != nil {
			return result, fmt.Errorf("discussionPoints: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return result, fmt.Errorf("discussionPoints: point text is required and non-empty")
		}
		if coerced {
			result.warnings = append(result.warnings, Warning{Field: "discussionPoints", Message: "applied string-coercion fallback"})
		}
		raw, _ := json.Marshal(dp)
		var sourceID string
		if obj, ok := dp.(map[string]any); ok {
			sourceID, _ = obj["id"].(string)
		}
		if _, _, err := identity.ParseUUIDIfPresent(sourceID); err != nil {
			return result, fmt.Errorf("discussionPoints.id: %w", err)
		}
		a.DiscussionPoints = append(a.DiscussionPoints, ParsedDiscussionPoint{
			SourceID:  sourceID,
			PointText: text,
			RawJSON:   raw,
		})
	}

	result.item = a
	return result, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func optionalTrimmedString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// filterEmptyStrings normalizes a possibly-null JSON array into a string
// slice, dropping empty-after-trim elements while preserving order (spec
// §4.2). warned reports whether any element was dropped.
func filterEmptyStrings(v any) (out []string, warned bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	for _, el := range arr {
		s, _ := el.(string)
		s = strings.TrimSpace(s)
		if s == "" {
			warned = true
			continue
		}
		out = append(out, s)
	}
	return out, warned
}
