package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hugh/appsec-portal/internal/api/dto"
	"github.com/hugh/appsec-portal/internal/auth"
)

type AuthHandler struct {
	jwtService *auth.JWTService
}

func NewAuthHandler(jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

// LoginRequest selects a portal. There are no credentials; the portal
// choice alone determines the session role.
type LoginRequest struct {
	Portal   string `json:"portal"`
	MemberID string `json:"memberId,omitempty"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !auth.ValidPortal(r.Portal) {
		errors["portal"] = "Portal must be vendor, security or manager"
	}
	return errors
}

type LoginResponse struct {
	Token  string `json:"token"`
	Portal string `json:"portal"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	token, err := h.jwtService.GenerateToken(req.Portal, req.MemberID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create session"})
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Portal: req.Portal})
}
