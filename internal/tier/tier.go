// Package tier maps the CIA impact ratings from the intake form to a risk
// tier that drives assessment SLA windows.
package tier

import (
	"math"
	"strconv"

	"github.com/hugh/appsec-portal/internal/models"
)

// Score averages the three 1-3 ratings, rounded to 2 decimal places.
func Score(confidentiality, integrity, availability int) float64 {
	avg := float64(confidentiality+integrity+availability) / 3
	return math.Round(avg*100) / 100
}

// FromScore maps a CIA score to a tier.
func FromScore(score float64) models.AppTier {
	switch {
	case score >= 2.33:
		return models.TierHigh
	case score >= 1.67:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

// FromRatings computes the tier for three 1-3 ratings.
func FromRatings(confidentiality, integrity, availability int) models.AppTier {
	return FromScore(Score(confidentiality, integrity, availability))
}

// FromDetails reads the form's string ratings and returns the tier and
// score. Unparsable ratings count as 1, the form's lowest value.
func FromDetails(d models.FormDetails) (models.AppTier, float64) {
	s := Score(rating(d.ConfidentialityRating), rating(d.IntegrityRating), rating(d.AvailabilityRating))
	return FromScore(s), s
}

// Recalculate re-derives the tier from the ticket's CIA ratings and writes
// it back only when the mapped tier differs from the stored one. Returns
// whether anything changed.
func Recalculate(t *models.Ticket) bool {
	mapped, _ := FromDetails(t.Details)
	if mapped == t.Tier && mapped == t.Details.CalculatedTier {
		return false
	}
	t.Tier = mapped
	t.Details.CalculatedTier = mapped
	return true
}

func rating(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	if n > 3 {
		return 3
	}
	return n
}
