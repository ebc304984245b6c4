package lifecycle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hugh/appsec-portal/internal/models"
)

// NextRequestID allocates the next ticket id in the form REQ-<year>-<seq>,
// where seq is the highest existing sequence for the year prefix plus one,
// zero-padded to five digits. IDs from other years and malformed ids are
// ignored, so the sequence is monotonic per year and never reused.
func NextRequestID(existing []models.Ticket, year int) string {
	prefix := fmt.Sprintf("REQ-%d-", year)
	maxSeq := 0
	for _, t := range existing {
		if !strings.HasPrefix(t.ID, prefix) {
			continue
		}
		parts := strings.Split(t.ID, "-")
		if len(parts) != 3 {
			continue
		}
		seq, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%05d", prefix, maxSeq+1)
}
