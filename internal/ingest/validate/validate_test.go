package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecords(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	return records
}

func TestStructureGate_EmptyArrayPasses(t *testing.T) {
	assert.NoError(t, StructureGate(nil))
}

func TestStructureGate_MissingFieldsFails(t *testing.T) {
	records := decodeRecords(t, `[{"workgroup":"W"}]`)
	assert.Error(t, StructureGate(records))
}

func TestStructureGate_ValidPasses(t *testing.T) {
	records := decodeRecords(t, `[{
		"workgroup":"W","workgroup_id":"11111111-1111-1111-1111-111111111111",
		"meetingInfo":{"date":"2024-06-01"},"agendaItems":[],"tags":{},"type":"regular"
	}]`)
	assert.NoError(t, StructureGate(records))
}

func TestParseRecord_HappyPath(t *testing.T) {
	records := decodeRecords(t, `[{
		"workgroup":"W","workgroup_id":"11111111-1111-1111-1111-111111111111",
		"meetingInfo":{"date":"2024-06-01","host":"H"},
		"agendaItems":[{"actionItems":[{"text":"do x"}]}],
		"tags":{},"type":"regular"
	}]`)
	p, err := ParseRecord(0, records[0])
	require.NoError(t, err)
	assert.Equal(t, "W", p.WorkgroupName)
	require.Len(t, p.AgendaItems, 1)
	require.Len(t, p.AgendaItems[0].ActionItems, 1)
	assert.Equal(t, "do x", p.AgendaItems[0].ActionItems[0].Text)
	assert.Empty(t, p.Warnings)
}

func TestParseRecord_InvalidWorkgroupIDFails(t *testing.T) {
	records := decodeRecords(t, `[{
		"workgroup":"W","workgroup_id":"not-a-uuid",
		"meetingInfo":{"date":"2024-06-01"},"agendaItems":[],"tags":{},"type":"regular"
	}]`)
	_, err := ParseRecord(1, records[0])
	assert.Error(t, err)
}

func TestParseRecord_DiscussionPointPolymorphism(t *testing.T) {
	records := decodeRecords(t, `[{
		"workgroup":"W","workgroup_id":"11111111-1111-1111-1111-111111111111",
		"meetingInfo":{"date":"2024-06-01"},
		"agendaItems":[{"discussionPoints":["hello",{"point":"world"},{"point":"!"}]}],
		"tags":{},"type":"regular"
	}]`)
	p, err := ParseRecord(0, records[0])
	require.NoError(t, err)
	require.Len(t, p.AgendaItems[0].DiscussionPoints, 3)
	texts := []string{
		p.AgendaItems[0].DiscussionPoints[0].PointText,
		p.AgendaItems[0].DiscussionPoints[1].PointText,
		p.AgendaItems[0].DiscussionPoints[2].PointText,
	}
	assert.Equal(t, []string{"hello", "world", "!"}, texts)
}

func TestParseRecord_ActionItemMissingTextIsDroppedAndWarned(t *testing.T) {
	records := decodeRecords(t, `[{
		"workgroup":"W","workgroup_id":"11111111-1111-1111-1111-111111111111",
		"meetingInfo":{"date":"2024-06-01"},
		"agendaItems":[{"actionItems":[{"assignee":"bob"},{"text":"do x"}]}],
		"tags":{},"type":"regular"
	}]`)
	p, err := ParseRecord(0, records[0])
	require.NoError(t, err)
	require.Len(t, p.AgendaItems[0].ActionItems, 1)
	assert.Equal(t, "do x", p.AgendaItems[0].ActionItems[0].Text)
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, "actionItems", p.Warnings[0].Field)
}

func TestParseRecord_AttendeesDropsEmptyAfterTrim(t *testing.T) {
	records := decodeRecords(t, `[{
		"workgroup":"W","workgroup_id":"11111111-1111-1111-1111-111111111111",
		"meetingInfo":{"date":"2024-06-01","attendees":["Alice","  ","Bob"]},
		"agendaItems":[],"tags":{},"type":"regular"
	}]`)
	p, err := ParseRecord(0, records[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, p.Attendees)
	require.Len(t, p.Warnings, 1)
}

func TestParseRecord_AdditionalFieldsIgnored(t *testing.T) {
	records := decodeRecords(t, `[{
		"workgroup":"W","workgroup_id":"11111111-1111-1111-1111-111111111111",
		"meetingInfo":{"date":"2024-06-01","somethingNew":42},
		"agendaItems":[{"somethingElse":true}],
		"tags":{},"type":"regular","extra":"field"
	}]`)
	p, err := ParseRecord(0, records[0])
	require.NoError(t, err)
	assert.Equal(t, "W", p.WorkgroupName)
	assert.Len(t, p.AgendaItems, 1)
}
