// Package ingest merges externally-extracted assessment results into ticket
// state: final-report findings, retest verdicts and manual remediation
// notes. Every ingestion is a single atomic ticket update.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/appsec-portal/internal/analysis"
	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/sla"
	"github.com/hugh/appsec-portal/internal/store"
)

var ErrEmptyComment = errors.New("comment text is empty")

// defaultAnalyst signs completion summaries when the ticket is unassigned.
const defaultAnalyst = "Security Analyst"

type Service struct {
	tickets  *store.TicketStore
	team     *store.TeamStore
	analyzer analysis.Service
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(tickets *store.TicketStore, team *store.TeamStore, analyzer analysis.Service, logger *slog.Logger) *Service {
	return &Service{tickets: tickets, team: team, analyzer: analyzer, logger: logger, now: time.Now}
}

// IngestFinalReport extracts findings from an uploaded assessment report
// and applies the completion update in one write: new findings appended
// with fresh ids and severity-based deadlines, status moved to Completed,
// the report metadata stored, and one vendor-facing summary message. An
// analysis failure degrades to zero findings extracted; it never aborts
// the completion.
func (s *Service) IngestFinalReport(ctx context.Context, ticketID, fileName, mimeType string, file []byte) (models.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}

	raw, err := s.analyzer.ExtractFindings(ctx, file, mimeType)
	if err != nil {
		s.logger.Warn("report analysis failed, recording zero findings",
			"ticket_id", ticketID, "file", fileName, "error", err)
		raw = nil
	}

	now := s.now()
	vulns := make([]models.Vulnerability, 0, len(raw))
	for _, f := range raw {
		sev := f.Severity
		if !models.ValidSeverity(sev) {
			sev = models.SeverityInfo
		}
		vulns = append(vulns, models.Vulnerability{
			ID:          "v-" + uuid.NewString(),
			Title:       f.Title,
			Severity:    sev,
			Status:      models.VulnOpen,
			Impact:      f.Impact,
			Observation: f.Observation,
			AffectedURL: f.AffectedURL,
			Remediation: f.Remediation,
			DueDate:     sla.DueDate(sev, now),
		})
	}

	analyst := s.team.MemberName(ctx, ticket.AssignedTo, defaultAnalyst)
	summary := completionSummary(ticket.AppName, analyst, vulns)

	updated, err := s.tickets.Update(ctx, ticketID, func(t *models.Ticket) error {
		t.Vulnerabilities = append(t.Vulnerabilities, vulns...)
		t.Status = models.StatusCompleted
		t.FinalReport = &models.Report{FileName: fileName, UploadDate: now.Format(sla.DateLayout)}
		t.Messages = append(t.Messages, models.ChatMessage{
			ID:        "completion-" + uuid.NewString(),
			Sender:    models.PartySecurity,
			Text:      summary,
			Timestamp: now.Format(time.RFC3339),
		})
		return nil
	})
	if err != nil {
		return models.Ticket{}, err
	}

	s.logger.Info("final report ingested",
		"ticket_id", ticketID, "file", fileName, "findings", len(vulns))
	return updated, nil
}

// IngestRetestReport extracts retest verdicts and correlates them back to
// the ticket's findings by case-insensitive substring containment in either
// direction, first verdict in list order winning. Matched findings take the
// verdict status (Remediated confirms the fix, anything else forces Open)
// and, when the analyst commented, an immutable tagged comment. Unmatched
// findings are untouched. The report metadata is always appended.
func (s *Service) IngestRetestReport(ctx context.Context, ticketID, fileName, mimeType string, file []byte) (models.Ticket, error) {
	verdicts, err := s.analyzer.ExtractRetestVerdicts(ctx, file, mimeType)
	if err != nil {
		s.logger.Warn("retest analysis failed, recording zero verdicts",
			"ticket_id", ticketID, "file", fileName, "error", err)
		verdicts = nil
	}

	now := s.now()
	matched := 0
	updated, err := s.tickets.Update(ctx, ticketID, func(t *models.Ticket) error {
		for i := range t.Vulnerabilities {
			v := &t.Vulnerabilities[i]
			verdict, ok := matchVerdict(verdicts, v.Title)
			if !ok {
				continue
			}
			matched++
			if verdict.Status == models.VulnRemediated {
				v.Status = models.VulnRemediated
			} else {
				v.Status = models.VulnOpen
			}
			if verdict.Comment != "" {
				v.VendorFixComments = append(v.VendorFixComments, models.FixComment{
					Text:      fmt.Sprintf("%s %s", models.RetestCommentTag, verdict.Comment),
					Timestamp: now.Format(time.RFC3339),
				})
			}
		}
		t.RetestReports = append(t.RetestReports, models.Report{
			FileName:   fileName,
			UploadDate: now.Format(sla.DateLayout),
		})
		return nil
	})
	if err != nil {
		return models.Ticket{}, err
	}

	s.logger.Info("retest report ingested",
		"ticket_id", ticketID, "file", fileName, "verdicts", len(verdicts), "matched", matched)
	return updated, nil
}

// matchVerdict returns the first verdict whose title contains the finding
// title or is contained by it, ignoring case.
func matchVerdict(verdicts []analysis.RetestVerdict, title string) (analysis.RetestVerdict, bool) {
	lower := strings.ToLower(title)
	for _, verdict := range verdicts {
		vt := strings.ToLower(verdict.Title)
		if strings.Contains(vt, lower) || strings.Contains(lower, vt) {
			return verdict, true
		}
	}
	return analysis.RetestVerdict{}, false
}

// AddFixComment appends a vendor remediation note to a finding's history.
// Comments are trimmed, rejected when empty, and immutable once saved.
func (s *Service) AddFixComment(ctx context.Context, ticketID, vulnID, text string) (models.Ticket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Ticket{}, ErrEmptyComment
	}
	return s.tickets.Update(ctx, ticketID, func(t *models.Ticket) error {
		v := t.FindVulnerability(vulnID)
		if v == nil {
			return models.ErrVulnNotFound
		}
		v.VendorFixComments = append(v.VendorFixComments, models.FixComment{
			Text:      text,
			Timestamp: s.now().Format(time.RFC3339),
		})
		return nil
	})
}

// completionSummary builds the vendor-facing wrap-up message: findings
// grouped by severity with the remediation SLA policy and the signing
// analyst.
func completionSummary(appName, analyst string, vulns []models.Vulnerability) string {
	buckets := map[string][]string{}
	for _, v := range vulns {
		key := string(v.Severity)
		if v.Severity == models.SeverityInfo {
			key = string(models.SeverityLow)
		}
		buckets[key] = append(buckets[key], v.Title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi Team,\nWe've completed the application security assessment on %s.\n\n", appName)
	b.WriteString("Vulnerability Summary: -\n")
	for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
		titles := buckets[string(sev)]
		fmt.Fprintf(&b, "%s - %02d\n", sev, len(titles))
		if len(titles) == 0 {
			b.WriteString("None identified.\n")
		} else {
			for _, title := range titles {
				fmt.Fprintf(&b, "- %s\n", title)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Documentation has been attached to this assessment request. " +
		"Please note that high-risk vulnerabilities must be remediated, and the site must pass a retest " +
		"conducted by the assessment team before it is allowed to go live. The team will have 60 days after " +
		"the go-live date to address medium-risk issues and pass our retesting. Low risk vulnerabilities are " +
		"optional based on the project team's decision.\n\n")
	b.WriteString("To request a retest: After vulnerabilities have been remediated, please send an email to " +
		"our group inbox (appsecassessment@test.com), and include any additional information we may need " +
		"(Change of URL, credentials, etc.).\n\n")
	fmt.Fprintf(&b, "Regards,\n%s", analyst)
	return b.String()
}
