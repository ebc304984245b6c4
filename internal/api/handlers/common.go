package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hugh/appsec-portal/internal/api/dto"
	"github.com/hugh/appsec-portal/internal/api/middleware"
	"github.com/hugh/appsec-portal/internal/auth"
	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeStoreError maps store-level errors to HTTP responses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTicketNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Ticket not found"})
	case errors.Is(err, models.ErrVulnNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Vulnerability not found"})
	case errors.Is(err, store.ErrMemberNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Team member not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal error"})
	}
}

// requestParty resolves the acting side of the conversation from the
// session portal. Managers act with security privileges.
func requestParty(r *http.Request) models.Party {
	if middleware.GetPortal(r.Context()) == auth.PortalVendor {
		return models.PartyVendor
	}
	return models.PartySecurity
}
