package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/appsec-portal/internal/api/dto"
	"github.com/hugh/appsec-portal/internal/ingest"
	"github.com/hugh/appsec-portal/internal/lifecycle"
	"github.com/hugh/appsec-portal/internal/models"
)

type VulnerabilityHandler struct {
	lifecycle *lifecycle.Service
	ingest    *ingest.Service
}

func NewVulnerabilityHandler(lc *lifecycle.Service, ing *ingest.Service) *VulnerabilityHandler {
	return &VulnerabilityHandler{lifecycle: lc, ingest: ing}
}

// UpdateStatus handles PUT /api/v1/tickets/:id/vulnerabilities/:vulnId/status.
// The acting party comes from the session, so a vendor cannot perform
// security-side transitions.
func (h *VulnerabilityHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	vulnID := chi.URLParam(r, "vulnId")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ticket, err := h.lifecycle.TransitionVulnerability(
		r.Context(), ticketID, vulnID, models.VulnStatus(req.Status), requestParty(r))
	if err != nil {
		if errors.Is(err, lifecycle.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Transition not permitted"})
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// AddComment handles POST /api/v1/tickets/:id/vulnerabilities/:vulnId/comments
func (h *VulnerabilityHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	vulnID := chi.URLParam(r, "vulnId")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	ticket, err := h.ingest.AddFixComment(r.Context(), ticketID, vulnID, req.Text)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyComment) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Comment text is required"})
			return
		}
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}
