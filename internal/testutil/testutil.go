package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hugh/appsec-portal/internal/analysis"
	"github.com/hugh/appsec-portal/internal/auth"
	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/reporting"
	"github.com/hugh/appsec-portal/internal/store"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupStores creates ticket and team stores backed by an in-memory KV.
// Both start from the seed dataset.
func SetupStores(t *testing.T) (*store.TicketStore, *store.TeamStore) {
	t.Helper()
	kv := store.NewMemoryKV()
	logger := Logger()
	return store.NewTicketStore(kv, logger), store.NewTeamStore(kv, logger)
}

// FakeAnalyzer is a canned analysis service for tests. Zero value returns
// empty results and fallback text everywhere.
type FakeAnalyzer struct {
	Findings    []analysis.RawFinding
	FindingsErr error

	Verdicts    []analysis.RetestVerdict
	VerdictsErr error

	Summary string
	Risk    analysis.RiskAssessment
	Exec    string
}

func (f *FakeAnalyzer) ExtractFindings(ctx context.Context, file []byte, mimeType string) ([]analysis.RawFinding, error) {
	return f.Findings, f.FindingsErr
}

func (f *FakeAnalyzer) ExtractRetestVerdicts(ctx context.Context, file []byte, mimeType string) ([]analysis.RetestVerdict, error) {
	return f.Verdicts, f.VerdictsErr
}

func (f *FakeAnalyzer) SummarizeDiscussion(ctx context.Context, messages []models.ChatMessage) string {
	if len(messages) == 0 {
		return analysis.NoMessagesSummary
	}
	if f.Summary == "" {
		return analysis.SummaryUnavailable
	}
	return f.Summary
}

func (f *FakeAnalyzer) AnalyzeRisk(ctx context.Context, t models.Ticket) analysis.RiskAssessment {
	if f.Risk.Summary == "" {
		return analysis.RiskAssessment{Summary: analysis.RiskUnavailable, RecommendedTier: models.TierMedium}
	}
	return f.Risk
}

func (f *FakeAnalyzer) ExecutiveSummary(ctx context.Context, stats reporting.Stats) string {
	if f.Exec == "" {
		return analysis.ExecUnavailable
	}
	return f.Exec
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid session token for the given portal
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, portal string) string {
	t.Helper()

	token, err := jwtService.GenerateToken(portal, "")
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}
