package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/appsec-portal/internal/analysis"
	"github.com/hugh/appsec-portal/internal/api/dto"
	"github.com/hugh/appsec-portal/internal/lifecycle"
	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/store"
)

type TicketHandler struct {
	tickets   *store.TicketStore
	lifecycle *lifecycle.Service
	analyzer  analysis.Service
}

func NewTicketHandler(tickets *store.TicketStore, lc *lifecycle.Service, analyzer analysis.Service) *TicketHandler {
	return &TicketHandler{tickets: tickets, lifecycle: lc, analyzer: analyzer}
}

// CreateTicketRequest is the assessment submission form.
type CreateTicketRequest struct {
	AppName     string                  `json:"appName"`
	VendorEmail string                  `json:"vendorEmail,omitempty"`
	Region      string                  `json:"region"`
	TestURL     string                  `json:"testUrl"`
	ReadyDate   string                  `json:"readyDate"`
	Type        string                  `json:"type"`
	IsExpedited bool                    `json:"isExpedited"`
	Details     models.FormDetails      `json:"details"`
	Artifacts   []models.SubmissionFile `json:"artifacts,omitempty"`
}

var validRegions = map[string]bool{
	string(models.RegionAPAC): true, string(models.RegionEMEA): true,
	string(models.RegionGlobal): true, string(models.RegionLatinAmerica): true,
	string(models.RegionNorthAmerica): true,
}

var validTypes = map[string]bool{
	string(models.TypeWeb): true, string(models.TypeMobile): true,
	string(models.TypeChatbot): true, string(models.TypeAPI): true,
	string(models.TypeAI): true,
}

func (r CreateTicketRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if strings.TrimSpace(r.AppName) == "" {
		errors["appName"] = "Application name is required"
	}
	if !validRegions[r.Region] {
		errors["region"] = "Invalid region"
	}
	if !validTypes[r.Type] {
		errors["type"] = "Invalid assessment type"
	}
	if r.ReadyDate == "" {
		errors["readyDate"] = "Ready date is required"
	} else if _, err := time.Parse("2006-01-02", r.ReadyDate); err != nil {
		errors["readyDate"] = "Ready date must be YYYY-MM-DD"
	}
	return errors
}

// List handles GET /api/v1/tickets
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.tickets.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	status := r.URL.Query().Get("status")

	filtered := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if status != "" && string(t.Status) != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.ID), q) &&
			!strings.Contains(strings.ToLower(t.AppName), q) {
			continue
		}
		filtered = append(filtered, t)
	}

	writeJSON(w, http.StatusOK, filtered)
}

// Create handles POST /api/v1/tickets
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	in := lifecycle.CreateTicketInput{
		AppName:     req.AppName,
		VendorEmail: req.VendorEmail,
		Region:      models.Region(req.Region),
		TestURL:     req.TestURL,
		ReadyDate:   req.ReadyDate,
		Type:        models.AssessmentType(req.Type),
		IsExpedited: req.IsExpedited,
		Details:     req.Details,
		Artifacts:   req.Artifacts,
	}

	// Advisory only; submission goes through regardless of the outcome.
	risk := h.analyzer.AnalyzeRisk(r.Context(), models.Ticket{
		AppName: req.AppName,
		Region:  models.Region(req.Region),
		Type:    models.AssessmentType(req.Type),
		Details: req.Details,
	})
	in.AIRiskAnalysis = risk.Summary

	ticket, err := h.lifecycle.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ticket)
}

// Get handles GET /api/v1/tickets/:id. Loading a ticket for viewing also
// runs the deadline reminder sweep so overdue alerts surface on access.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ticket, err := h.lifecycle.SweepSLA(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// UpdateStatus handles PUT /api/v1/tickets/:id/status
func (h *TicketHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ticket, err := h.lifecycle.SetStatus(r.Context(), id, models.TicketStatus(req.Status))
	if err != nil {
		if errors.Is(err, lifecycle.ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unknown ticket status"})
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// Schedule handles PUT /api/v1/tickets/:id/schedule
func (h *TicketHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		ScheduledDate string `json:"scheduledDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ticket, err := h.lifecycle.Schedule(r.Context(), id, req.ScheduledDate)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Schedule date must be YYYY-MM-DD"})
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// Assign handles PUT /api/v1/tickets/:id/assign
func (h *TicketHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		MemberID string `json:"memberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ticket, err := h.lifecycle.Assign(r.Context(), id, req.MemberID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// AddMessage handles POST /api/v1/tickets/:id/messages
func (h *TicketHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ticket, err := h.lifecycle.AddMessage(r.Context(), id, requestParty(r), req.Text)
	if err != nil {
		if errors.Is(err, lifecycle.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Message text is required"})
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// MarkRead handles POST /api/v1/tickets/:id/read
func (h *TicketHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ticket, err := h.lifecycle.MarkRead(r.Context(), id, requestParty(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// Summarize handles GET /api/v1/tickets/:id/summary
func (h *TicketHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ticket, err := h.tickets.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	summary := h.analyzer.SummarizeDiscussion(r.Context(), ticket.Messages)
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
