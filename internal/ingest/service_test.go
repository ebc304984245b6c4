package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hugh/appsec-portal/internal/analysis"
	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/store"
	"github.com/hugh/appsec-portal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)

func setupService(t *testing.T, analyzer analysis.Service) (*Service, *store.TicketStore) {
	t.Helper()
	tickets, team := testutil.SetupStores(t)
	svc := NewService(tickets, team, analyzer, testutil.Logger())
	svc.now = func() time.Time { return testNow }
	return svc, tickets
}

func TestIngestFinalReport(t *testing.T) {
	analyzer := &testutil.FakeAnalyzer{
		Findings: []analysis.RawFinding{
			{Title: "Stored XSS in Comments", Severity: models.SeverityCritical, Impact: "Session theft", Remediation: "Encode output"},
			{Title: "Missing Security Headers", Severity: models.SeverityLow, Remediation: "Add CSP and HSTS"},
			{Title: "Odd Banner Disclosure", Severity: models.Severity("Unknown"), Remediation: "Strip server banner"},
		},
	}
	svc, _ := setupService(t, analyzer)

	// REQ-2026-00003 starts Pending with one existing finding.
	ticket, err := svc.IngestFinalReport(context.Background(), "REQ-2026-00003", "final.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, ticket.Status)
	require.NotNil(t, ticket.FinalReport)
	assert.Equal(t, "final.pdf", ticket.FinalReport.FileName)
	assert.Equal(t, "2026-08-31", ticket.FinalReport.UploadDate)

	require.Len(t, ticket.Vulnerabilities, 4)
	added := ticket.Vulnerabilities[1:]

	assert.NotEmpty(t, added[0].ID)
	assert.Equal(t, models.VulnOpen, added[0].Status)
	assert.Equal(t, "2026-09-07", added[0].DueDate)
	assert.Equal(t, "2026-11-29", added[1].DueDate)

	// Unrecognized severities are recorded as informational.
	assert.Equal(t, models.SeverityInfo, added[2].Severity)
	assert.Equal(t, "2026-11-29", added[2].DueDate)

	require.Len(t, ticket.Messages, 1)
	summary := ticket.Messages[0].Text
	assert.Contains(t, summary, "completed the application security assessment on Retail Partner API Hub")
	assert.Contains(t, summary, "Critical - 01")
	assert.Contains(t, summary, "- Stored XSS in Comments")
	assert.Contains(t, summary, "High - 00")
	// Info findings report under the Low bucket alongside the Low finding.
	assert.Contains(t, summary, "Low - 02")
	assert.Contains(t, summary, "appsecassessment@test.com")
	// Unassigned tickets are signed generically.
	assert.Contains(t, summary, "Regards,\nSecurity Analyst")
	assert.Equal(t, models.PartySecurity, ticket.Messages[0].Sender)
}

func TestIngestFinalReport_SignedByAssignedAnalyst(t *testing.T) {
	svc, _ := setupService(t, &testutil.FakeAnalyzer{})

	// REQ-2026-00002 is assigned to member 2 (Swati Rao).
	ticket, err := svc.IngestFinalReport(context.Background(), "REQ-2026-00002", "final.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.Len(t, ticket.Messages, 1)
	assert.Contains(t, ticket.Messages[0].Text, "Regards,\nSwati Rao")
}

func TestIngestFinalReport_AnalyzerFailureStillCompletes(t *testing.T) {
	analyzer := &testutil.FakeAnalyzer{FindingsErr: errors.New("model overloaded")}
	svc, _ := setupService(t, analyzer)

	ticket, err := svc.IngestFinalReport(context.Background(), "REQ-2026-00003", "final.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, ticket.Status)
	require.NotNil(t, ticket.FinalReport)
	// Only the pre-existing seed finding remains.
	assert.Len(t, ticket.Vulnerabilities, 1)

	require.Len(t, ticket.Messages, 1)
	assert.Contains(t, ticket.Messages[0].Text, "Critical - 00")
	assert.Contains(t, ticket.Messages[0].Text, "None identified.")
}

func TestIngestRetestReport_MatchesBySubstring(t *testing.T) {
	analyzer := &testutil.FakeAnalyzer{
		Verdicts: []analysis.RetestVerdict{
			// Shorter title than the finding's "SQL Injection in Tracking".
			{Title: "sql injection", Status: models.VulnRemediated, Comment: "Parameterized queries verified."},
		},
	}
	svc, _ := setupService(t, analyzer)

	ticket, err := svc.IngestRetestReport(context.Background(), "REQ-2026-00005", "retest.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	v := ticket.Vulnerabilities[0]
	assert.Equal(t, models.VulnRemediated, v.Status)
	require.Len(t, v.VendorFixComments, 1)
	assert.Equal(t, "[SYSTEM RETEST]: Parameterized queries verified.", v.VendorFixComments[0].Text)

	require.Len(t, ticket.RetestReports, 1)
	assert.Equal(t, "retest.pdf", ticket.RetestReports[0].FileName)
	assert.Equal(t, "2026-08-31", ticket.RetestReports[0].UploadDate)
}

func TestIngestRetestReport_FailedVerdictReopens(t *testing.T) {
	analyzer := &testutil.FakeAnalyzer{
		Verdicts: []analysis.RetestVerdict{
			{Title: "SQL Injection in Tracking module retest", Status: models.VulnOpen},
		},
	}
	svc, tickets := setupService(t, analyzer)
	ctx := context.Background()

	_, err := tickets.Update(ctx, "REQ-2026-00005", func(tk *models.Ticket) error {
		tk.Vulnerabilities[0].Status = models.VulnReadyForRetest
		return nil
	})
	require.NoError(t, err)

	ticket, err := svc.IngestRetestReport(ctx, "REQ-2026-00005", "retest.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	v := ticket.Vulnerabilities[0]
	assert.Equal(t, models.VulnOpen, v.Status)
	// No analyst comment, no history entry.
	assert.Empty(t, v.VendorFixComments)
}

func TestIngestRetestReport_UnmatchedFindingsUntouched(t *testing.T) {
	analyzer := &testutil.FakeAnalyzer{
		Verdicts: []analysis.RetestVerdict{
			{Title: "Completely Different Finding", Status: models.VulnRemediated},
		},
	}
	svc, _ := setupService(t, analyzer)

	ticket, err := svc.IngestRetestReport(context.Background(), "REQ-2026-00005", "retest.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, models.VulnOpen, ticket.Vulnerabilities[0].Status)
	// The report record is appended even when nothing matched.
	assert.Len(t, ticket.RetestReports, 1)
}

func TestIngestRetestReport_FirstVerdictWins(t *testing.T) {
	analyzer := &testutil.FakeAnalyzer{
		Verdicts: []analysis.RetestVerdict{
			{Title: "SQL Injection", Status: models.VulnOpen, Comment: "Still reproducible."},
			{Title: "SQL Injection in Tracking", Status: models.VulnRemediated, Comment: "Fixed."},
		},
	}
	svc, _ := setupService(t, analyzer)

	ticket, err := svc.IngestRetestReport(context.Background(), "REQ-2026-00005", "retest.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	v := ticket.Vulnerabilities[0]
	assert.Equal(t, models.VulnOpen, v.Status)
	require.Len(t, v.VendorFixComments, 1)
	assert.Contains(t, v.VendorFixComments[0].Text, "Still reproducible.")
}

func TestIngestRetestReport_AnalyzerFailureStillRecordsReport(t *testing.T) {
	analyzer := &testutil.FakeAnalyzer{VerdictsErr: errors.New("timeout")}
	svc, _ := setupService(t, analyzer)

	ticket, err := svc.IngestRetestReport(context.Background(), "REQ-2026-00005", "retest.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, models.VulnOpen, ticket.Vulnerabilities[0].Status)
	assert.Len(t, ticket.RetestReports, 1)
}

func TestAddFixComment(t *testing.T) {
	svc, _ := setupService(t, &testutil.FakeAnalyzer{})
	ctx := context.Background()

	ticket, err := svc.AddFixComment(ctx, "REQ-2026-00005", "v26-8", "  Patched in release 4.2.1  ")
	require.NoError(t, err)

	v := ticket.FindVulnerability("v26-8")
	require.NotNil(t, v)
	require.Len(t, v.VendorFixComments, 1)
	assert.Equal(t, "Patched in release 4.2.1", v.VendorFixComments[0].Text)
	assert.Equal(t, testNow.Format(time.RFC3339), v.VendorFixComments[0].Timestamp)

	_, err = svc.AddFixComment(ctx, "REQ-2026-00005", "v26-8", "   ")
	assert.ErrorIs(t, err, ErrEmptyComment)

	_, err = svc.AddFixComment(ctx, "REQ-2026-00005", "v-missing", "note")
	assert.ErrorIs(t, err, models.ErrVulnNotFound)
}
