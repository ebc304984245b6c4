package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hugh/appsec-portal/internal/analysis"
	"github.com/hugh/appsec-portal/internal/reporting"
	"github.com/hugh/appsec-portal/internal/store"
)

type ReportHandler struct {
	tickets  *store.TicketStore
	analyzer analysis.Service
}

func NewReportHandler(tickets *store.TicketStore, analyzer analysis.Service) *ReportHandler {
	return &ReportHandler{tickets: tickets, analyzer: analyzer}
}

// Weekly handles GET /api/v1/reports/weekly
func (h *ReportHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.tickets.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reporting.Weekly(tickets, time.Now()))
}

// Yearly handles GET /api/v1/reports/yearly?year=2026
func (h *ReportHandler) Yearly(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year <= 0 {
		year = time.Now().Year()
	}

	tickets, listErr := h.tickets.List(r.Context())
	if listErr != nil {
		writeStoreError(w, listErr)
		return
	}
	writeJSON(w, http.StatusOK, reporting.Yearly(tickets, year))
}

// ExecutiveSummary handles GET /api/v1/reports/yearly/summary?year=2026.
// Narrative wrapper around the yearly numbers for leadership.
func (h *ReportHandler) ExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year <= 0 {
		year = time.Now().Year()
	}

	tickets, listErr := h.tickets.List(r.Context())
	if listErr != nil {
		writeStoreError(w, listErr)
		return
	}

	stats := reporting.Yearly(tickets, year)
	summary := h.analyzer.ExecutiveSummary(r.Context(), stats)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":    year,
		"stats":   stats,
		"summary": summary,
	})
}
