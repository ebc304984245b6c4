package models

import "errors"

// ErrVulnNotFound is returned when a finding id does not exist on a ticket.
var ErrVulnNotFound = errors.New("vulnerability not found")

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

type VulnStatus string

const (
	VulnOpen           VulnStatus = "Open"
	VulnReadyForRetest VulnStatus = "Ready for Retest"
	VulnRemediated     VulnStatus = "Remediated"
)

// Vulnerability is one finding within a ticket. The narrative fields and
// DueDate are fixed at creation; only Status, SLAReminderSent and the
// comment history mutate afterwards.
type Vulnerability struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Severity Severity   `json:"severity"`
	Status   VulnStatus `json:"status"`

	Impact      string `json:"impact,omitempty"`
	Observation string `json:"observation,omitempty"`
	AffectedURL string `json:"affectedUrl,omitempty"`
	Remediation string `json:"remediation,omitempty"`

	// DueDate is computed once from Severity at creation, never recomputed.
	DueDate string `json:"dueDate,omitempty"`
	// SLAReminderSent gates the one-time reminder message.
	SLAReminderSent bool `json:"slaReminderSent,omitempty"`

	// VendorFixComments is an immutable audit trail: append-only, no edits.
	VendorFixComments []FixComment `json:"vendorFixComments,omitempty"`
}

// FixComment is one entry in a finding's remediation history.
type FixComment struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
