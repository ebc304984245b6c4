package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hugh/appsec-portal/internal/auth"
)

type contextKey string

const (
	PortalKey   contextKey = "portal"
	MemberIDKey contextKey = "member_id"
)

// Auth validates the session token and stores the portal claims on the
// request context.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
			if token == "" {
				token = r.Header.Get("X-Auth-Token")
			}
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, PortalKey, claims.Portal)
			ctx = context.WithValue(ctx, MemberIDKey, claims.MemberID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePortal rejects requests whose session is not one of the given
// portals.
func RequirePortal(portals ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(portals))
	for _, p := range portals {
		allowed[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[GetPortal(r.Context())] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetPortal(ctx context.Context) string {
	if p, ok := ctx.Value(PortalKey).(string); ok {
		return p
	}
	return ""
}

func GetMemberID(ctx context.Context) string {
	if id, ok := ctx.Value(MemberIDKey).(string); ok {
		return id
	}
	return ""
}
