// Package sla computes remediation deadlines for findings and emits
// one-time deadline reminders into the ticket discussion.
package sla

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/appsec-portal/internal/models"
)

// DateLayout is the calendar-date form used for deadlines.
const DateLayout = "2006-01-02"

// remediationDays is the severity-to-deadline policy, in calendar days.
var remediationDays = map[models.Severity]int{
	models.SeverityCritical: 7,
	models.SeverityHigh:     14,
	models.SeverityMedium:   60,
	models.SeverityLow:      90,
	models.SeverityInfo:     90,
}

// DueDate returns the remediation deadline for a finding created at "from".
// The result is a calendar date with no time-of-day component.
func DueDate(severity models.Severity, from time.Time) string {
	days, ok := remediationDays[severity]
	if !ok {
		days = 90
	}
	return from.AddDate(0, 0, days).Format(DateLayout)
}

type State string

const (
	StateNone     State = ""
	StateOverdue  State = "Overdue"
	StateDueToday State = "Due Today"
	StateDueSoon  State = "Due Soon"
	StateTracked  State = "Tracked"
)

// Info is the display classification of a finding's deadline.
type Info struct {
	State State
	Label string
	// Days is the whole calendar days until the deadline; negative when
	// overdue.
	Days int
}

// DaysUntil returns the whole calendar days between today (at midnight) and
// the due date. The second return is false when the date does not parse.
func DaysUntil(dueDate string, now time.Time) (int, bool) {
	due, err := time.ParseInLocation(DateLayout, dueDate, now.Location())
	if err != nil {
		return 0, false
	}
	today := midnight(now)
	return int(due.Sub(today).Hours() / 24), true
}

// Classify maps a finding's deadline and status to its SLA display state.
// Remediated findings and findings without a deadline are not tracked.
func Classify(dueDate string, status models.VulnStatus, now time.Time) Info {
	if dueDate == "" || status == models.VulnRemediated {
		return Info{State: StateNone}
	}
	diff, ok := DaysUntil(dueDate, now)
	if !ok {
		return Info{State: StateNone}
	}
	info := Info{Days: diff}
	switch {
	case diff < 0:
		info.State = StateOverdue
		info.Label = fmt.Sprintf("Overdue by %dd", -diff)
	case diff == 0:
		info.State = StateDueToday
		info.Label = "Due Today"
	case diff <= 3:
		info.State = StateDueSoon
		info.Label = fmt.Sprintf("Due in %dd", diff)
	default:
		info.State = StateTracked
		info.Label = fmt.Sprintf("Due in %dd", diff)
	}
	return info
}

// reminderWindowDays: a reminder fires when the deadline is within this many
// days, or already past.
const reminderWindowDays = 2

// Sweep emits the one-time reminder message for every Open finding whose
// deadline is due within two days or past, and marks the finding so the
// message is never duplicated. All qualifying reminders are appended in the
// same pass so the caller can persist one state update. Returns whether the
// ticket changed; running twice on unchanged state is a no-op.
func Sweep(t *models.Ticket, now time.Time) bool {
	changed := false
	for i := range t.Vulnerabilities {
		v := &t.Vulnerabilities[i]
		if v.Status != models.VulnOpen || v.DueDate == "" || v.SLAReminderSent {
			continue
		}
		diff, ok := DaysUntil(v.DueDate, now)
		if !ok || diff > reminderWindowDays {
			continue
		}
		text := fmt.Sprintf(
			"%s Finding %q is %s (Deadline: %s). Please provide a remediation update in this thread immediately.",
			models.SLAAlertMarker, v.Title, urgency(diff), v.DueDate,
		)
		t.Messages = append(t.Messages, models.ChatMessage{
			ID:        "sla-alert-" + uuid.NewString(),
			Sender:    models.PartySecurity,
			Text:      text,
			Timestamp: now.Format(time.RFC3339),
		})
		v.SLAReminderSent = true
		changed = true
	}
	return changed
}

func urgency(diffDays int) string {
	switch {
	case diffDays < 0:
		return "OVERDUE"
	case diffDays == 0:
		return "DUE TODAY"
	default:
		return fmt.Sprintf("DUE IN %d DAYS", diffDays)
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
