// Package lifecycle owns ticket creation and the status state machines for
// tickets and their findings.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/sla"
	"github.com/hugh/appsec-portal/internal/store"
	"github.com/hugh/appsec-portal/internal/tier"
)

var (
	ErrInvalidStatus     = errors.New("unknown ticket status")
	ErrInvalidTransition = errors.New("transition not permitted")
	ErrEmptyMessage      = errors.New("message text is empty")
)

type Service struct {
	tickets *store.TicketStore
	team    *store.TeamStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(tickets *store.TicketStore, team *store.TeamStore, logger *slog.Logger) *Service {
	return &Service{tickets: tickets, team: team, logger: logger, now: time.Now}
}

// CreateTicketInput carries the submission form payload.
type CreateTicketInput struct {
	AppName        string
	VendorEmail    string
	Region         models.Region
	TestURL        string
	ReadyDate      string
	Type           models.AssessmentType
	IsExpedited    bool
	Details        models.FormDetails
	Artifacts      []models.SubmissionFile
	AIRiskAnalysis string
}

// Create allocates the next request id for the current year and stores a
// new Pending ticket with the tier derived from its CIA ratings.
func (s *Service) Create(ctx context.Context, in CreateTicketInput) (models.Ticket, error) {
	existing, err := s.tickets.List(ctx)
	if err != nil {
		return models.Ticket{}, err
	}

	calculated, _ := tier.FromDetails(in.Details)
	in.Details.CalculatedTier = calculated

	t := models.Ticket{
		ID:              NextRequestID(existing, s.now().Year()),
		AppName:         in.AppName,
		VendorEmail:     in.VendorEmail,
		Region:          in.Region,
		TestURL:         in.TestURL,
		ReadyDate:       in.ReadyDate,
		Type:            in.Type,
		Tier:            calculated,
		IsExpedited:     in.IsExpedited,
		Details:         in.Details,
		Artifacts:       in.Artifacts,
		AIRiskAnalysis:  in.AIRiskAnalysis,
		Status:          models.StatusPending,
		Messages:        []models.ChatMessage{},
		Vulnerabilities: []models.Vulnerability{},
	}

	if err := s.tickets.Insert(ctx, t); err != nil {
		return models.Ticket{}, err
	}
	s.logger.Info("ticket created", "ticket_id", t.ID, "tier", t.Tier, "type", t.Type)
	return t, nil
}

// commitmentDays is the assessment turnaround promised to the vendor when
// work starts, by ticket tier, in business days.
func commitmentDays(t models.AppTier) int {
	switch t {
	case models.TierHigh:
		return 7
	case models.TierMedium:
		return 5
	default:
		return 3
	}
}

// SetStatus reassigns the ticket status. Any reassignment is accepted, with
// exactly one side effect: entering In Progress from a different state
// appends one system message announcing the tier's assessment window and
// flags the thread unread for the vendor. A no-op reassignment emits
// nothing.
func (s *Service) SetStatus(ctx context.Context, id string, status models.TicketStatus) (models.Ticket, error) {
	if !models.ValidTicketStatus(status) {
		return models.Ticket{}, ErrInvalidStatus
	}
	return s.tickets.Update(ctx, id, func(t *models.Ticket) error {
		if status == models.StatusInProgress && t.Status != models.StatusInProgress {
			text := fmt.Sprintf(
				"%s Since this is a %s tier application, you will get assessment result within %d business days.",
				models.SLACommitmentIntro, t.Tier, commitmentDays(t.Tier),
			)
			t.Messages = append(t.Messages, models.ChatMessage{
				ID:        "sla-notification-" + uuid.NewString(),
				Sender:    models.PartySecurity,
				Text:      text,
				Timestamp: s.now().Format(time.RFC3339),
			})
			t.UnreadFor = models.PartyVendor
		}
		t.Status = status
		return nil
	})
}

// Schedule sets the planned assessment date.
func (s *Service) Schedule(ctx context.Context, id, date string) (models.Ticket, error) {
	if date != "" {
		if _, err := time.Parse(sla.DateLayout, date); err != nil {
			return models.Ticket{}, fmt.Errorf("invalid schedule date %q: %w", date, err)
		}
	}
	return s.tickets.Update(ctx, id, func(t *models.Ticket) error {
		t.ScheduledDate = date
		return nil
	})
}

// Assign hands the ticket to a team member (empty id unassigns).
func (s *Service) Assign(ctx context.Context, id, memberID string) (models.Ticket, error) {
	if memberID != "" {
		members, err := s.team.Members(ctx)
		if err != nil {
			return models.Ticket{}, err
		}
		found := false
		for _, m := range members {
			if m.ID == memberID {
				found = true
				break
			}
		}
		if !found {
			return models.Ticket{}, store.ErrMemberNotFound
		}
	}
	return s.tickets.Update(ctx, id, func(t *models.Ticket) error {
		t.AssignedTo = memberID
		return nil
	})
}

// vulnTransitions is the permitted finding state machine: who may move a
// finding from one status to another. Anything absent is rejected.
var vulnTransitions = map[models.VulnStatus]map[models.VulnStatus]models.Party{
	models.VulnOpen: {
		models.VulnReadyForRetest: models.PartyVendor,
		models.VulnRemediated:     models.PartySecurity,
	},
	models.VulnReadyForRetest: {
		models.VulnRemediated: models.PartySecurity,
		models.VulnOpen:       models.PartySecurity,
	},
	models.VulnRemediated: {
		models.VulnOpen: models.PartySecurity,
	},
}

// TransitionVulnerability moves one finding through its state machine on
// behalf of actor. Undefined transitions fail without touching state.
func (s *Service) TransitionVulnerability(ctx context.Context, ticketID, vulnID string, to models.VulnStatus, actor models.Party) (models.Ticket, error) {
	updated, err := s.tickets.Update(ctx, ticketID, func(t *models.Ticket) error {
		v := t.FindVulnerability(vulnID)
		if v == nil {
			return models.ErrVulnNotFound
		}
		allowed, ok := vulnTransitions[v.Status][to]
		if !ok || allowed != actor {
			return fmt.Errorf("%w: %s -> %s as %s", ErrInvalidTransition, v.Status, to, actor)
		}
		v.Status = to
		return nil
	})
	if err != nil {
		return models.Ticket{}, err
	}

	// Informational notification only, no further state change.
	switch to {
	case models.VulnReadyForRetest:
		s.logger.Info("finding queued for retest", "ticket_id", ticketID, "vuln_id", vulnID)
	case models.VulnRemediated:
		s.logger.Info("finding closed", "ticket_id", ticketID, "vuln_id", vulnID)
	}
	return updated, nil
}

// AddMessage appends a user message to the discussion and flags the thread
// unread for the other party. Whitespace-only text is rejected unchanged.
func (s *Service) AddMessage(ctx context.Context, id string, sender models.Party, text string) (models.Ticket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Ticket{}, ErrEmptyMessage
	}
	return s.tickets.Update(ctx, id, func(t *models.Ticket) error {
		t.Messages = append(t.Messages, models.ChatMessage{
			ID:        uuid.NewString(),
			Sender:    sender,
			Text:      text,
			Timestamp: s.now().Format(time.RFC3339),
		})
		t.UnreadFor = sender.Other()
		return nil
	})
}

// MarkRead clears the unread flag when it points at the given party.
func (s *Service) MarkRead(ctx context.Context, id string, party models.Party) (models.Ticket, error) {
	return s.tickets.Update(ctx, id, func(t *models.Ticket) error {
		if t.UnreadFor != party {
			return store.ErrNoChange
		}
		t.UnreadFor = ""
		return nil
	})
}

// SweepSLA runs the deadline reminder pass for one ticket. Invoked whenever
// ticket state is loaded for viewing; idempotent because each finding's
// reminder flag gates emission, and all qualifying reminders land in a
// single state update.
func (s *Service) SweepSLA(ctx context.Context, id string) (models.Ticket, error) {
	return s.tickets.Update(ctx, id, func(t *models.Ticket) error {
		if !sla.Sweep(t, s.now()) {
			return store.ErrNoChange
		}
		return nil
	})
}
