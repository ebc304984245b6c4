package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/appsec-portal/internal/api/dto"
	"github.com/hugh/appsec-portal/internal/store"
)

type TeamHandler struct {
	team *store.TeamStore
}

func NewTeamHandler(team *store.TeamStore) *TeamHandler {
	return &TeamHandler{team: team}
}

// List handles GET /api/v1/team
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.team.Members(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// Add handles POST /api/v1/team
func (h *TeamHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Member name is required"})
		return
	}

	member, err := h.team.Add(r.Context(), req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// Remove handles DELETE /api/v1/team/:id
func (h *TeamHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.team.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Member removed"})
}
