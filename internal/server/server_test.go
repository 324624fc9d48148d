package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/auth"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/server"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/storage"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/testutil"
)

var (
	testContainer *testutil.TestContainer
	testDB        *storage.DB
	adminToken    string
	readOnlyToken string
	baseURL       string
)

const testSigningKey = "test-signing-key-at-least-this-long"

func TestMain(m *testing.M) {
	ctx := context.Background()
	testContainer = testutil.MustStartPostgres()

	var err error
	testDB, err = testContainer.NewTestDB(ctx, testutil.TestLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create test db: %v\n", err)
		os.Exit(1)
	}

	jwtMgr, err := auth.NewJWTManager(testSigningKey, time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create jwt manager: %v\n", err)
		os.Exit(1)
	}
	adminToken, _, err = jwtMgr.IssueToken(model.RoleAdmin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue admin token: %v\n", err)
		os.Exit(1)
	}
	readOnlyToken, _, err = jwtMgr.IssueToken(model.RoleReadOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue read_only token: %v\n", err)
		os.Exit(1)
	}

	srv := server.New(server.ServerConfig{
		DB:                  testDB,
		JWTMgr:              jwtMgr,
		Logger:              testutil.TestLogger(),
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        30 * time.Second,
		Version:             "test",
		MaxRequestBodyBytes: 1 * 1024 * 1024,
		ExportRowLimit:      10_000,
		CORSAllowedOrigins:  []string{"https://dashboard.example.com"},
	})

	testSrv := httptest.NewServer(srv.Handler())
	baseURL = testSrv.URL
	defer testSrv.Close()

	code := m.Run()

	testSrv.Close()
	testDB.Close()
	testContainer.Terminate()
	os.Exit(code)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func authedRequest(t *testing.T, method, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, baseURL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, dest))
}

// seedWorkgroupAndMeeting inserts a minimal workgroup/meeting pair directly
// through the storage layer, the way a writer.Writer would after a
// successful ingestion pass, so the read API has something to return.
func seedWorkgroupAndMeeting(t *testing.T, ctx context.Context, title string, date time.Time) (uuid.UUID, uuid.UUID) {
	t.Helper()

	wgID := uuid.New()
	err := storage.UpsertWorkgroup(ctx, testDB.Pool(), model.Workgroup{
		ID:   wgID,
		Name: "Engineering",
	})
	require.NoError(t, err)

	meetingID := uuid.New()
	err = storage.UpsertMeeting(ctx, testDB.Pool(), model.Meeting{
		ID:                      meetingID,
		WorkgroupID:             wgID,
		Date:                    date,
		RawJSON:                 json.RawMessage(fmt.Sprintf(`{"title":%q}`, title)),
		ValidationWarningsCount: 0,
	})
	require.NoError(t, err)

	return wgID, meetingID
}

func TestHealthEndpoint(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/healthz", "")
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health model.HealthResponse
	decodeBody(t, resp, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "up", health.Postgres)
}

func TestHealthEndpoint_NoAuthRequired(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/healthz", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/healthz", "")
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'self'")
}

func TestAuthMiddleware_RequiresToken(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/kpis", "")
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestKPIsEndpoint(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/kpis", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var kpis model.KPIs
	decodeBody(t, resp, &kpis)
	assert.GreaterOrEqual(t, kpis.SuccessRate, 0.0)
}

func TestListMeetings(t *testing.T) {
	ctx := context.Background()
	_, meetingID := seedWorkgroupAndMeeting(t, ctx, "Sprint planning", time.Now().UTC().Truncate(24*time.Hour))

	resp := authedRequest(t, http.MethodGet, "/api/meetings", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page model.PaginatedMeetings
	decodeBody(t, resp, &page)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.PageSize)

	var found bool
	for _, m := range page.Items {
		if m.ID == meetingID.String() {
			found = true
		}
	}
	assert.True(t, found, "expected seeded meeting %s in list", meetingID)
}

func TestListMeetings_RejectsOutOfRangePageSize(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/meetings?page_size=500", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListMeetings_RejectsZeroPage(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/meetings?page=0", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListMeetings_RejectsBadDate(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/meetings?date_from=not-a-date", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetMeeting(t *testing.T) {
	ctx := context.Background()
	_, meetingID := seedWorkgroupAndMeeting(t, ctx, "Retro", time.Now().UTC().Truncate(24*time.Hour))

	resp := authedRequest(t, http.MethodGet, "/api/meetings/"+meetingID.String(), readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail model.MeetingDetail
	decodeBody(t, resp, &detail)
	assert.Equal(t, meetingID.String(), detail.ID)
}

func TestGetMeeting_NotFound(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/meetings/"+uuid.New().String(), readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetMeeting_InvalidID(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/meetings/not-a-uuid", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	runID, err := storage.CreateRun(ctx, testDB.Pool(), "https://example.com/source-a.json")
	require.NoError(t, err)
	require.NoError(t, storage.FinishRun(ctx, testDB.Pool(), runID, model.RunStatusSucceeded, 3, 0, 0))

	resp := authedRequest(t, http.MethodGet, "/api/runs", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var runs []model.RunSummary
	decodeBody(t, resp, &runs)
	assert.NotEmpty(t, runs)
}

func TestListRuns_CapsLimit(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/runs?limit=5000", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMonthlyAggregates(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/runs/monthly", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var agg []model.MonthlyAggregate
	decodeBody(t, resp, &agg)
}

func TestListAlerts_ReadOnlySeesOnlyUnacknowledged(t *testing.T) {
	resp := authedRequest(t, http.MethodGet, "/api/alerts", readOnlyToken)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var alerts []model.Alert
	decodeBody(t, resp, &alerts)
	for _, a := range alerts {
		assert.False(t, a.Acknowledged)
	}
}

func TestAcknowledgeAlert_ForbiddenForReadOnly(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/alerts/"+uuid.New().String()+"/acknowledge", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+readOnlyToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAcknowledgeAlert_MissingBodyIsBadRequestForAdmin(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/alerts/"+uuid.New().String()+"/acknowledge", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	// No body was sent, so this is a 400 before storage is even consulted.
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExport_RejectsUnknownFormat(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/exports",
		jsonBody(t, model.ExportRequest{Format: "xml"}))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+readOnlyToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCORS_ReflectsAllowedOrigin(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/kpis", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+readOnlyToken)
	req.Header.Set("Origin", "https://dashboard.example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "https://dashboard.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_RejectsUnlistedOrigin(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/kpis", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+readOnlyToken)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestIssueToken_RejectsWithoutConfiguredHashes(t *testing.T) {
	// testSrv above never sets AdminKeyHash/ReadOnlyHash, so any api_key
	// is rejected without leaking which role(s) are configured.
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/auth/token",
		jsonBody(t, model.TokenRequest{APIKey: "whatever"}))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
