package validate

import "fmt"

// requiredTopLevelFields are checked by StructureGate against the first
// record in the document (spec §4.2).
var requiredTopLevelFields = []string{"workgroup", "workgroup_id", "meetingInfo", "agendaItems", "tags", "type"}

// StructureGate performs the cheap, early-reject document-level check of
// spec §4.2. An empty array passes. Failure aborts the entire source with a
// validation_error (spec §7) but does not abort the run.
func StructureGate(records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}
	first := records[0]

	for _, field := range requiredTopLevelFields {
		if _, ok := first[field]; !ok {
			return fmt.Errorf("validate: structure gate: missing required top-level field %q", field)
		}
	}

	meetingInfo, ok := first["meetingInfo"].(map[string]any)
	if !ok {
		return fmt.Errorf("validate: structure gate: meetingInfo is not an object")
	}
	if _, ok := meetingInfo["date"]; !ok {
		return fmt.Errorf("validate: structure gate: meetingInfo.date is missing")
	}

	agendaItemsRaw, ok := first["agendaItems"].([]any)
	if !ok {
		return fmt.Errorf("validate: structure gate: agendaItems is not an array")
	}

	limit := len(agendaItemsRaw)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		item, ok := agendaItemsRaw[i].(map[string]any)
		if !ok {
			return fmt.Errorf("validate: structure gate: agendaItems[%d] is not an object", i)
		}
		for _, field := range []string{"actionItems", "decisionItems", "discussionPoints"} {
			v, present := item[field]
			if !present || v == nil {
				continue
			}
			if _, ok := v.([]any); !ok {
				return fmt.Errorf("validate: structure gate: agendaItems[%d].%s is not an array", i, field)
			}
		}
	}

	return nil
}
