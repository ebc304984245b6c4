package lifecycle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/store"
	"github.com/hugh/appsec-portal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *store.TicketStore) {
	t.Helper()
	tickets, team := testutil.SetupStores(t)
	svc := NewService(tickets, team, testutil.Logger())
	svc.now = func() time.Time { return testNow }
	return svc, tickets
}

func TestCreate(t *testing.T) {
	svc, tickets := setupService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, CreateTicketInput{
		AppName:   "Billing Portal",
		Region:    models.RegionEMEA,
		TestURL:   "https://billing.example.com",
		ReadyDate: "2026-09-15",
		Type:      models.TypeWeb,
		Details: models.FormDetails{
			ConfidentialityRating: "3",
			IntegrityRating:       "3",
			AvailabilityRating:    "2",
		},
	})
	require.NoError(t, err)

	// Seed data occupies REQ-2026-00001 through 00006.
	assert.Equal(t, "REQ-2026-00007", ticket.ID)
	assert.Equal(t, models.StatusPending, ticket.Status)
	assert.Equal(t, models.TierHigh, ticket.Tier)
	assert.Equal(t, models.TierHigh, ticket.Details.CalculatedTier)
	assert.Empty(t, ticket.Messages)
	assert.Empty(t, ticket.Vulnerabilities)

	stored, err := tickets.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.AppName, stored.AppName)

	// Collection order is newest first.
	all, err := tickets.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, all[0].ID)
}

func TestSetStatus_InProgressAnnouncesCommitment(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// REQ-2026-00003 is a Medium tier Pending ticket.
	ticket, err := svc.SetStatus(ctx, "REQ-2026-00003", models.StatusInProgress)
	require.NoError(t, err)

	assert.Equal(t, models.StatusInProgress, ticket.Status)
	require.Len(t, ticket.Messages, 1)

	msg := ticket.Messages[0]
	assert.Equal(t, models.PartySecurity, msg.Sender)
	assert.Equal(t, "Hi Team, Since this is a Medium tier application, you will get assessment result within 5 business days.", msg.Text)
	assert.Equal(t, models.PartyVendor, ticket.UnreadFor)
}

func TestSetStatus_CommitmentDaysByTier(t *testing.T) {
	tests := []struct {
		ticketID string
		tier     models.AppTier
		days     int
	}{
		{"REQ-2026-00005", models.TierHigh, 7},
		{"REQ-2026-00003", models.TierMedium, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			svc, _ := setupService(t)
			ticket, err := svc.SetStatus(context.Background(), tt.ticketID, models.StatusInProgress)
			require.NoError(t, err)
			require.Len(t, ticket.Messages, 1)
			assert.Contains(t, ticket.Messages[0].Text, fmt.Sprintf("%s tier application", tt.tier))
			assert.Contains(t, ticket.Messages[0].Text, fmt.Sprintf("within %d business days", tt.days))
		})
	}
}

func TestSetStatus_RepeatInProgressIsQuiet(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.SetStatus(ctx, "REQ-2026-00003", models.StatusInProgress)
	require.NoError(t, err)
	require.Len(t, first.Messages, 1)

	again, err := svc.SetStatus(ctx, "REQ-2026-00003", models.StatusInProgress)
	require.NoError(t, err)
	assert.Len(t, again.Messages, 1)
}

func TestSetStatus_OtherTransitionsAreSilent(t *testing.T) {
	svc, _ := setupService(t)

	ticket, err := svc.SetStatus(context.Background(), "REQ-2026-00003", models.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, ticket.Status)
	assert.Empty(t, ticket.Messages)
}

func TestSetStatus_UnknownStatus(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.SetStatus(context.Background(), "REQ-2026-00003", models.TicketStatus("Archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSchedule(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	ticket, err := svc.Schedule(ctx, "REQ-2026-00003", "2026-09-20")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-20", ticket.ScheduledDate)

	_, err = svc.Schedule(ctx, "REQ-2026-00003", "20/09/2026")
	assert.Error(t, err)

	// Clearing the date is allowed.
	ticket, err = svc.Schedule(ctx, "REQ-2026-00003", "")
	require.NoError(t, err)
	assert.Empty(t, ticket.ScheduledDate)
}

func TestAssign(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	ticket, err := svc.Assign(ctx, "REQ-2026-00003", "2")
	require.NoError(t, err)
	assert.Equal(t, "2", ticket.AssignedTo)

	_, err = svc.Assign(ctx, "REQ-2026-00003", "no-such-member")
	assert.ErrorIs(t, err, store.ErrMemberNotFound)

	ticket, err = svc.Assign(ctx, "REQ-2026-00003", "")
	require.NoError(t, err)
	assert.Empty(t, ticket.AssignedTo)
}

func TestTransitionVulnerability(t *testing.T) {
	tests := []struct {
		name    string
		from    models.VulnStatus
		to      models.VulnStatus
		actor   models.Party
		allowed bool
	}{
		{"vendor submits for retest", models.VulnOpen, models.VulnReadyForRetest, models.PartyVendor, true},
		{"security closes directly", models.VulnOpen, models.VulnRemediated, models.PartySecurity, true},
		{"security confirms retest", models.VulnReadyForRetest, models.VulnRemediated, models.PartySecurity, true},
		{"security fails retest", models.VulnReadyForRetest, models.VulnOpen, models.PartySecurity, true},
		{"security reopens closed finding", models.VulnRemediated, models.VulnOpen, models.PartySecurity, true},
		{"vendor cannot close", models.VulnOpen, models.VulnRemediated, models.PartyVendor, false},
		{"vendor cannot confirm retest", models.VulnReadyForRetest, models.VulnRemediated, models.PartyVendor, false},
		{"closed finding cannot queue for retest", models.VulnRemediated, models.VulnReadyForRetest, models.PartySecurity, false},
		{"no self transition", models.VulnOpen, models.VulnOpen, models.PartySecurity, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tickets := setupService(t)
			ctx := context.Background()

			// REQ-2026-00005 carries the single finding v26-8.
			_, err := tickets.Update(ctx, "REQ-2026-00005", func(tk *models.Ticket) error {
				tk.Vulnerabilities[0].Status = tt.from
				return nil
			})
			require.NoError(t, err)

			updated, err := svc.TransitionVulnerability(ctx, "REQ-2026-00005", "v26-8", tt.to, tt.actor)
			if !tt.allowed {
				require.ErrorIs(t, err, ErrInvalidTransition)
				current, getErr := tickets.Get(ctx, "REQ-2026-00005")
				require.NoError(t, getErr)
				assert.Equal(t, tt.from, current.Vulnerabilities[0].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Vulnerabilities[0].Status)
		})
	}
}

func TestTransitionVulnerability_UnknownFinding(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.TransitionVulnerability(context.Background(), "REQ-2026-00005", "v-missing", models.VulnRemediated, models.PartySecurity)
	assert.ErrorIs(t, err, models.ErrVulnNotFound)
}

func TestAddMessage(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	ticket, err := svc.AddMessage(ctx, "REQ-2026-00003", models.PartyVendor, "  When is the assessment starting?  ")
	require.NoError(t, err)
	require.Len(t, ticket.Messages, 1)

	msg := ticket.Messages[0]
	assert.Equal(t, "When is the assessment starting?", msg.Text)
	assert.Equal(t, models.PartyVendor, msg.Sender)
	assert.Equal(t, models.PartySecurity, ticket.UnreadFor)

	_, err = svc.AddMessage(ctx, "REQ-2026-00003", models.PartyVendor, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestMarkRead(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddMessage(ctx, "REQ-2026-00003", models.PartyVendor, "hello")
	require.NoError(t, err)

	// The vendor's own read does not clear a flag pointed at security.
	ticket, err := svc.MarkRead(ctx, "REQ-2026-00003", models.PartyVendor)
	require.NoError(t, err)
	assert.Equal(t, models.PartySecurity, ticket.UnreadFor)

	ticket, err = svc.MarkRead(ctx, "REQ-2026-00003", models.PartySecurity)
	require.NoError(t, err)
	assert.Empty(t, ticket.UnreadFor)
}

func TestSweepSLA(t *testing.T) {
	svc, tickets := setupService(t)
	ctx := context.Background()

	// v26-8 on REQ-2026-00005 is Open with deadline 2026-08-22, overdue
	// relative to the fixed clock.
	ticket, err := svc.SweepSLA(ctx, "REQ-2026-00005")
	require.NoError(t, err)
	require.Len(t, ticket.Messages, 1)
	assert.Contains(t, ticket.Messages[0].Text, models.SLAAlertMarker)
	assert.Contains(t, ticket.Messages[0].Text, "OVERDUE")
	assert.True(t, ticket.Vulnerabilities[0].SLAReminderSent)

	// Second sweep emits nothing and persists nothing new.
	again, err := svc.SweepSLA(ctx, "REQ-2026-00005")
	require.NoError(t, err)
	assert.Len(t, again.Messages, 1)

	stored, err := tickets.Get(ctx, "REQ-2026-00005")
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 1)
}
