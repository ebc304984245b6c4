// Package analysis is the port to the external document-analysis service
// that extracts structured findings from uploaded assessment reports.
package analysis

import (
	"context"

	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/reporting"
)

// RawFinding is one extracted vulnerability, before it is given an id and a
// deadline.
type RawFinding struct {
	Title       string          `json:"title"`
	Severity    models.Severity `json:"severity"`
	Impact      string          `json:"impact"`
	Observation string          `json:"observation"`
	AffectedURL string          `json:"affectedUrl,omitempty"`
	Remediation string          `json:"remediation"`
}

// RetestVerdict is the analyst conclusion for one finding in a retest
// report: Remediated when the fix is confirmed, Open when it persists.
type RetestVerdict struct {
	Title   string            `json:"title"`
	Status  models.VulnStatus `json:"status"`
	Comment string            `json:"comment,omitempty"`
}

// RiskAssessment is the advisory submission-time risk read.
type RiskAssessment struct {
	Summary         string         `json:"summary"`
	RecommendedTier models.AppTier `json:"recommendedTier"`
}

// Service is the analysis contract consumed by the ingestion pipeline.
// The extraction calls return an error only for the caller to degrade to
// "zero findings"; the advisory calls never fail, they return fallback
// text instead.
type Service interface {
	ExtractFindings(ctx context.Context, file []byte, mimeType string) ([]RawFinding, error)
	ExtractRetestVerdicts(ctx context.Context, file []byte, mimeType string) ([]RetestVerdict, error)
	SummarizeDiscussion(ctx context.Context, messages []models.ChatMessage) string
	AnalyzeRisk(ctx context.Context, t models.Ticket) RiskAssessment
	ExecutiveSummary(ctx context.Context, stats reporting.Stats) string
}

// Fallback strings for the advisory operations.
const (
	NoMessagesSummary  = "No messages to summarize."
	SummaryUnavailable = "Could not generate summary at this time."
	RiskUnavailable    = "Could not generate analysis at this time."
	ExecUnavailable    = "Error generating executive summary."
)
