package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/appsec-portal/internal/api/handlers"
	"github.com/hugh/appsec-portal/internal/api/middleware"
	"github.com/hugh/appsec-portal/internal/auth"
	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTeamTestRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()

	_, team := testutil.SetupStores(t)
	jwtService := testutil.CreateTestJWTService()
	handler := handlers.NewTeamHandler(team)

	r := chi.NewRouter()
	r.Use(middleware.Auth(jwtService))
	r.Route("/api/v1/team", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Add)
		r.Delete("/{id}", handler.Remove)
	})

	token := testutil.GenerateTestToken(t, jwtService, auth.PortalSecurity)
	return r, token
}

func TestTeamHandler_List(t *testing.T) {
	router, token := setupTeamTestRouter(t)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/team/", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var members []models.TeamMember
	testutil.ParseJSONResponse(t, rr, &members)
	assert.Len(t, members, 5)
}

func TestTeamHandler_AddAndRemove(t *testing.T) {
	router, token := setupTeamTestRouter(t)

	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/team/",
		map[string]interface{}{"name": "Ana Duarte"}, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var member models.TeamMember
	testutil.ParseJSONResponse(t, rr, &member)
	assert.NotEmpty(t, member.ID)
	assert.Equal(t, "Ana Duarte", member.Name)

	req = testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/team/"+member.ID, nil, token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/team/"+member.ID, nil, token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTeamHandler_Add_EmptyName(t *testing.T) {
	router, token := setupTeamTestRouter(t)

	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/team/",
		map[string]interface{}{"name": "  "}, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
