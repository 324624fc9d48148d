package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMeetingID_SourceUUIDWins(t *testing.T) {
	wg := uuid.New()
	date, _ := ParseDate("2024-06-01")
	source := uuid.New().String()

	got, err := ResolveMeetingID(source, wg, date, nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, source, got.String())
}

func TestResolveMeetingID_DeterministicWhenDerived(t *testing.T) {
	wg := uuid.New()
	date, _ := ParseDate("2024-06-01")
	host := "H"

	id1, err := ResolveMeetingID("", wg, date, &host, nil, 1)
	require.NoError(t, err)
	id2, err := ResolveMeetingID("", wg, date, &host, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "identical inputs must converge to the same id")
}

func TestResolveMeetingID_DiffersOnHost(t *testing.T) {
	wg := uuid.New()
	date, _ := ParseDate("2024-06-01")
	hostA, hostB := "A", "B"

	idA, err := ResolveMeetingID("", wg, date, &hostA, nil, 1)
	require.NoError(t, err)
	idB, err := ResolveMeetingID("", wg, date, &hostB, nil, 1)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB, "distinct meetings sharing workgroup+date must receive distinct ids")
}

func TestResolveMeetingID_InvalidSourceUUIDIsError(t *testing.T) {
	wg := uuid.New()
	date, _ := ParseDate("2024-06-01")

	_, err := ResolveMeetingID("not-a-uuid", wg, date, nil, nil, 0)
	assert.Error(t, err)
}

func TestResolveAgendaItemID_DeterministicWhenDerived(t *testing.T) {
	meeting := uuid.New()
	id1, err := ResolveAgendaItemID("", meeting, 2)
	require.NoError(t, err)
	id2, err := ResolveAgendaItemID("", meeting, 2)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	id3, err := ResolveAgendaItemID("", meeting, 3)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestResolveChildID_DistinctAcrossKinds(t *testing.T) {
	agenda := uuid.New()
	action, err := ResolveChildID(ChildKindAction, "", agenda, 0)
	require.NoError(t, err)
	decision, err := ResolveChildID(ChildKindDecision, "", agenda, 0)
	require.NoError(t, err)
	discussion, err := ResolveChildID(ChildKindDiscussion, "", agenda, 0)
	require.NoError(t, err)

	assert.NotEqual(t, action, decision)
	assert.NotEqual(t, action, discussion)
	assert.NotEqual(t, decision, discussion)
}

func TestParseDate_Formats(t *testing.T) {
	cases := []string{
		"2024-06-01",
		"2024-06-01T10:00:00Z",
		"06/01/2024",
		"01-06-2024",
		"01/06/2024",
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			_, err := ParseDate(c)
			require.NoError(t, err)
		})
	}
}

func TestParseDate_RoundTrip(t *testing.T) {
	t1, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	reparsed, err := ParseDate(t1.Format(time.RFC3339))
	require.NoError(t, err)
	assert.True(t, t1.Equal(reparsed))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("not a date")
	assert.Error(t, err)
}
