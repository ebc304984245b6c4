package models

type AssessmentType string

const (
	TypeWeb     AssessmentType = "Web"
	TypeMobile  AssessmentType = "Mobile"
	TypeChatbot AssessmentType = "Chat-Bot"
	TypeAPI     AssessmentType = "API"
	TypeAI      AssessmentType = "AI Application"
)

type AppTier string

const (
	TierHigh   AppTier = "High"
	TierMedium AppTier = "Medium"
	TierLow    AppTier = "Low"
)

type Region string

const (
	RegionAPAC         Region = "APAC"
	RegionEMEA         Region = "EMEA"
	RegionGlobal       Region = "Global"
	RegionLatinAmerica Region = "Latin America"
	RegionNorthAmerica Region = "North America"
)

type TicketStatus string

const (
	StatusPending    TicketStatus = "Pending"
	StatusInReview   TicketStatus = "In Review"
	StatusScheduled  TicketStatus = "Scheduled"
	StatusInProgress TicketStatus = "In Progress"
	StatusCompleted  TicketStatus = "Completed"
	StatusRejected   TicketStatus = "Rejected"
)

// ValidTicketStatus reports whether s is one of the workflow states.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case StatusPending, StatusInReview, StatusScheduled, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Ticket is one vendor application's security-assessment request and its
// full lifecycle record. Dates with no time-of-day component (readyDate,
// scheduledDate, dueDate) are stored as YYYY-MM-DD strings.
type Ticket struct {
	ID          string         `json:"id"`
	AppName     string         `json:"appName"`
	VendorEmail string         `json:"vendorEmail,omitempty"`
	Region      Region         `json:"region"`
	TestURL     string         `json:"testUrl"`
	ReadyDate   string         `json:"readyDate"`
	Type        AssessmentType `json:"type"`
	Tier        AppTier        `json:"tier"`
	IsExpedited bool           `json:"isExpedited"`

	Details   FormDetails      `json:"details"`
	Artifacts []SubmissionFile `json:"artifacts,omitempty"`

	AIRiskAnalysis string       `json:"aiRiskAnalysis,omitempty"`
	ScheduledDate  string       `json:"scheduledDate,omitempty"`
	Status         TicketStatus `json:"status"`
	AssignedTo     string       `json:"assignedTo,omitempty"`

	// Messages is append-only: elements are never edited or removed.
	Messages  []ChatMessage `json:"messages"`
	UnreadFor Party         `json:"unreadFor,omitempty"`

	// Vulnerabilities only grows; element order is discovery order.
	Vulnerabilities []Vulnerability `json:"vulnerabilities,omitempty"`
	FinalReport     *Report         `json:"finalReport,omitempty"`
	RetestReports   []Report        `json:"retestReports,omitempty"`
}

// FindVulnerability returns a pointer into the ticket's slice, or nil.
func (t *Ticket) FindVulnerability(id string) *Vulnerability {
	for i := range t.Vulnerabilities {
		if t.Vulnerabilities[i].ID == id {
			return &t.Vulnerabilities[i]
		}
	}
	return nil
}

// SubmissionFile describes an uploaded artifact (APK, IPA, config export).
// Opaque to the workflow beyond its metadata.
type SubmissionFile struct {
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	UploadDate string `json:"uploadDate"`
	Size       string `json:"size,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Report is the metadata of an uploaded assessment report. A ticket holds at
// most one final report and an append-only list of retest reports.
type Report struct {
	FileName   string `json:"fileName"`
	UploadDate string `json:"uploadDate"`
	FileURL    string `json:"fileUrl,omitempty"`
}
