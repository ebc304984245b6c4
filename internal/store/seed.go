package store

import "github.com/hugh/appsec-portal/internal/models"

// SeedTickets is the built-in dataset used when the persisted collection is
// missing, empty or unreadable. Startup never fails on bad data.
func SeedTickets() []models.Ticket {
	base := models.FormDetails{
		Description:          "Enterprise application security assessment.",
		TargetAudienceRegion: "Global",
		Questionnaire: models.Questionnaire{
			HandlesPII:             true,
			InternetFacing:         true,
			ThirdPartyIntegrations: true,
			RequiresUserAuth:       true,
		},
		BusinessOwner:         "owner@example.com",
		ITProjectManager:      "pm@example.com",
		TechContact:           "dev@agency.example.com",
		GoLiveDate:            "2026-12-01",
		TestingDeadline:       "2026-11-15",
		BusinessCriticality:   "Class 2",
		ConfidentialityRating: "2",
		IntegrityRating:       "2",
		AvailabilityRating:    "2",
		CalculatedTier:        models.TierMedium,
		TechStack:             "Next.js, PostgreSQL",
		TestURLProvided:       "https://staging.example.com",
		AuthMechanisms:        "SSO",
		GeoCompliance:         "GDPR",
	}

	return []models.Ticket{
		{
			ID:          "REQ-2026-00001",
			AppName:     "Visionary Web 2026",
			VendorEmail: "owner@example.com",
			Region:      models.RegionNorthAmerica,
			TestURL:     "https://visionary.example.com",
			ReadyDate:   "2026-01-10",
			Type:        models.TypeWeb,
			Tier:        models.TierHigh,
			IsExpedited: true,
			Details:     base,
			Status:      models.StatusCompleted,
			AssignedTo:  "1",
			Messages:    []models.ChatMessage{},
			FinalReport: &models.Report{FileName: "Visionary_Final_Report.pdf", UploadDate: "2026-01-20"},
			Vulnerabilities: []models.Vulnerability{
				{
					ID:          "v26-1",
					Title:       "Reflected XSS in Profile",
					Severity:    models.SeverityHigh,
					Status:      models.VulnRemediated,
					Impact:      "Account hijacking via session theft",
					Observation: "User input in profile bio is not sanitized",
					Remediation: "Sanitize rendered output",
				},
				{
					ID:          "v26-2",
					Title:       "Weak Password Policy",
					Severity:    models.SeverityMedium,
					Status:      models.VulnRemediated,
					Impact:      "Brute force susceptibility",
					Observation: "Passwords only require 6 characters",
					Remediation: "Enforce 12+ chars with complexity",
				},
			},
		},
		{
			ID:          "REQ-2026-00002",
			AppName:     "Payments Mobile v2",
			VendorEmail: "owner@example.com",
			Region:      models.RegionGlobal,
			TestURL:     "Mobile Binary (iOS/Android)",
			ReadyDate:   "2026-02-15",
			Type:        models.TypeMobile,
			Tier:        models.TierHigh,
			Details:     base,
			Status:      models.StatusInProgress,
			AssignedTo:  "2",
			Messages:    []models.ChatMessage{},
			Vulnerabilities: []models.Vulnerability{
				{
					ID:          "v26-3",
					Title:       "Hardcoded API Keys",
					Severity:    models.SeverityCritical,
					Status:      models.VulnOpen,
					Impact:      "Total backend access",
					Observation: "Service keys found in binary strings",
					Remediation: "Use secure environment vaults",
					DueDate:     "2026-05-15",
				},
			},
		},
		{
			ID:          "REQ-2026-00003",
			AppName:     "Retail Partner API Hub",
			VendorEmail: "owner@example.com",
			Region:      models.RegionEMEA,
			TestURL:     "https://api-hub.retail.example.com",
			ReadyDate:   "2026-03-20",
			Type:        models.TypeAPI,
			Tier:        models.TierMedium,
			Details:     base,
			Status:      models.StatusPending,
			Messages:    []models.ChatMessage{},
			Vulnerabilities: []models.Vulnerability{
				{
					ID:          "v26-4",
					Title:       "Improper Authorization (IDOR)",
					Severity:    models.SeverityHigh,
					Status:      models.VulnOpen,
					Impact:      "Unauthorized data access",
					Observation: "User can access other orders by incrementing ID",
					Remediation: "Implement ownership checks for resources",
					DueDate:     "2026-06-20",
				},
			},
		},
		{
			ID:            "REQ-2026-00004",
			AppName:       "Marketing AI Predictor",
			VendorEmail:   "owner@example.com",
			Region:        models.RegionAPAC,
			TestURL:       "https://ai-predictor.example.com",
			ReadyDate:     "2026-04-05",
			Type:          models.TypeAI,
			Tier:          models.TierHigh,
			IsExpedited:   true,
			Details:       base,
			Status:        models.StatusScheduled,
			ScheduledDate: "2026-04-15",
			AssignedTo:    "3",
			Messages:      []models.ChatMessage{},
			Vulnerabilities: []models.Vulnerability{
				{
					ID:          "v26-5",
					Title:       "Prompt Injection Risk",
					Severity:    models.SeverityHigh,
					Status:      models.VulnOpen,
					Impact:      "Bypassing safety filters",
					Observation: "System prompt can be leaked via specific queries",
					Remediation: "Use robust system-level filtering",
					DueDate:     "2026-07-05",
				},
			},
		},
		{
			ID:          "REQ-2026-00005",
			AppName:     "Logistics Real-time API",
			VendorEmail: "owner@example.com",
			Region:      models.RegionGlobal,
			TestURL:     "https://logistics.example.com/api",
			ReadyDate:   "2026-07-22",
			Type:        models.TypeAPI,
			Tier:        models.TierHigh,
			IsExpedited: true,
			Details:     base,
			Status:      models.StatusPending,
			Messages:    []models.ChatMessage{},
			Vulnerabilities: []models.Vulnerability{
				{
					ID:          "v26-8",
					Title:       "SQL Injection in Tracking",
					Severity:    models.SeverityCritical,
					Status:      models.VulnOpen,
					Impact:      "Full database compromise",
					Observation: "Tracking ID is used directly in query",
					Remediation: "Use parameterized queries",
					DueDate:     "2026-08-22",
				},
			},
		},
		{
			ID:          "REQ-2026-00006",
			AppName:     "HR Support Bot 2026",
			VendorEmail: "owner@example.com",
			Region:      models.RegionLatinAmerica,
			TestURL:     "https://hr-bot.example.com",
			ReadyDate:   "2026-05-12",
			Type:        models.TypeChatbot,
			Tier:        models.TierLow,
			Details:     base,
			Status:      models.StatusCompleted,
			AssignedTo:  "4",
			Messages:    []models.ChatMessage{},
			FinalReport: &models.Report{FileName: "HR_Bot_Audit.pdf", UploadDate: "2026-05-25"},
			Vulnerabilities: []models.Vulnerability{
				{
					ID:          "v26-6",
					Title:       "Sensitive Data Logging",
					Severity:    models.SeverityMedium,
					Status:      models.VulnRemediated,
					Impact:      "Exposure of employee IDs",
					Observation: "Logs contain PII in plain text",
					Remediation: "Mask PII before logging",
				},
			},
		},
	}
}

// SeedTeam is the default analyst directory.
func SeedTeam() []models.TeamMember {
	return []models.TeamMember{
		{ID: "1", Name: "Sam Adler"},
		{ID: "2", Name: "Swati Rao"},
		{ID: "3", Name: "Katya Orlov"},
		{ID: "4", Name: "Bhumi Shah"},
		{ID: "5", Name: "Priya Nair"},
	}
}
