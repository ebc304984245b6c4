// Package reporting rolls ticket collections up into the dashboard and
// leadership report numbers. Pure read-side projection; nothing here
// mutates tickets.
package reporting

import (
	"math"
	"time"

	"github.com/hugh/appsec-portal/internal/models"
)

// Stats is one aggregate window over the ticket collection.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Scheduled  int `json:"scheduled"`
	Rejected   int `json:"rejected"`
	Expedited  int `json:"expedited"`

	TotalFindings  int `json:"totalFindings"`
	FindingsClosed int `json:"findingsClosed"`
	FindingsOpen   int `json:"findingsOpen"`
	// RemediationRate is round(closed/total*100); 0 when no findings.
	RemediationRate int `json:"remediationRate"`

	OpenBySeverity map[models.Severity]int `json:"openBySeverity"`
	OpenByRegion   map[models.Region]int   `json:"openByRegion"`
	ByAssignee     map[string]int          `json:"byAssignee,omitempty"`
}

// Weekly aggregates tickets whose ready date falls in the trailing 7 days.
func Weekly(tickets []models.Ticket, now time.Time) Stats {
	cutoff := now.AddDate(0, 0, -7)
	return aggregate(tickets, func(t models.Ticket) bool {
		ready, err := time.Parse("2006-01-02", t.ReadyDate)
		if err != nil {
			return false
		}
		return !ready.Before(cutoff)
	})
}

// Yearly aggregates tickets whose ready date falls in the calendar year.
func Yearly(tickets []models.Ticket, year int) Stats {
	return aggregate(tickets, func(t models.Ticket) bool {
		ready, err := time.Parse("2006-01-02", t.ReadyDate)
		if err != nil {
			return false
		}
		return ready.Year() == year
	})
}

func aggregate(tickets []models.Ticket, include func(models.Ticket) bool) Stats {
	stats := Stats{
		OpenBySeverity: map[models.Severity]int{},
		OpenByRegion:   map[models.Region]int{},
		ByAssignee:     map[string]int{},
	}

	for _, t := range tickets {
		if !include(t) {
			continue
		}
		stats.Total++
		switch t.Status {
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusScheduled:
			stats.Scheduled++
		case models.StatusRejected:
			stats.Rejected++
		}
		if t.IsExpedited {
			stats.Expedited++
		}
		if t.AssignedTo != "" {
			stats.ByAssignee[t.AssignedTo]++
		}

		for _, v := range t.Vulnerabilities {
			stats.TotalFindings++
			if v.Status == models.VulnRemediated {
				stats.FindingsClosed++
				continue
			}
			// Open and Ready for Retest both count as unresolved.
			stats.FindingsOpen++
			stats.OpenBySeverity[v.Severity]++
			stats.OpenByRegion[t.Region]++
		}
	}

	if stats.TotalFindings > 0 {
		rate := float64(stats.FindingsClosed) / float64(stats.TotalFindings) * 100
		stats.RemediationRate = int(math.Round(rate))
	}
	return stats
}
