package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/appsec-portal/internal/api/handlers"
	"github.com/hugh/appsec-portal/internal/api/middleware"
	"github.com/hugh/appsec-portal/internal/auth"
	"github.com/hugh/appsec-portal/internal/reporting"
	"github.com/hugh/appsec-portal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReportTestRouter(t *testing.T) (*chi.Mux, *testutil.FakeAnalyzer, string) {
	t.Helper()

	tickets, _ := testutil.SetupStores(t)
	analyzer := &testutil.FakeAnalyzer{}
	jwtService := testutil.CreateTestJWTService()

	handler := handlers.NewReportHandler(tickets, analyzer)

	r := chi.NewRouter()
	r.Use(middleware.Auth(jwtService))
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/weekly", handler.Weekly)
		r.Get("/yearly", handler.Yearly)
		r.Get("/yearly/summary", handler.ExecutiveSummary)
	})

	token := testutil.GenerateTestToken(t, jwtService, auth.PortalManager)
	return r, analyzer, token
}

func TestReportHandler_Yearly(t *testing.T) {
	router, _, token := setupReportTestRouter(t)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/reports/yearly?year=2026", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var stats reporting.Stats
	testutil.ParseJSONResponse(t, rr, &stats)

	// All six seed tickets are dated 2026.
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Scheduled)
	assert.Equal(t, 3, stats.Expedited)

	assert.Equal(t, 7, stats.TotalFindings)
	assert.Equal(t, 3, stats.FindingsClosed)
	assert.Equal(t, 4, stats.FindingsOpen)
	assert.Equal(t, 43, stats.RemediationRate)
}

func TestReportHandler_Yearly_EmptyYear(t *testing.T) {
	router, _, token := setupReportTestRouter(t)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/reports/yearly?year=1999", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var stats reporting.Stats
	testutil.ParseJSONResponse(t, rr, &stats)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.RemediationRate)
}

func TestReportHandler_Weekly(t *testing.T) {
	router, _, token := setupReportTestRouter(t)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/reports/weekly", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var stats reporting.Stats
	testutil.ParseJSONResponse(t, rr, &stats)
	assert.GreaterOrEqual(t, stats.Total, 0)
}

func TestReportHandler_ExecutiveSummary(t *testing.T) {
	router, analyzer, token := setupReportTestRouter(t)
	analyzer.Exec = "Remediation is trending up."

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/reports/yearly/summary?year=2026", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Year    int             `json:"year"`
		Stats   reporting.Stats `json:"stats"`
		Summary string          `json:"summary"`
	}
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.Equal(t, 2026, resp.Year)
	assert.Equal(t, 6, resp.Stats.Total)
	assert.Equal(t, "Remediation is trending up.", resp.Summary)
}
