package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/hugh/appsec-portal/internal/analysis"
	"github.com/hugh/appsec-portal/internal/api/handlers"
	"github.com/hugh/appsec-portal/internal/api/middleware"
	"github.com/hugh/appsec-portal/internal/auth"
	"github.com/hugh/appsec-portal/internal/ingest"
	"github.com/hugh/appsec-portal/internal/lifecycle"
	"github.com/hugh/appsec-portal/internal/store"
	"github.com/redis/go-redis/v9"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	Redis          *redis.Client
	Tickets        *store.TicketStore
	Team           *store.TeamStore
	Lifecycle      *lifecycle.Service
	Ingest         *ingest.Service
	Analyzer       analysis.Service
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AsynqClient    *asynq.Client
	AllowedOrigins []string
	RateLimitReqs  int
	RateLimitSecs  int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.JWTService)
	ticketHandler := handlers.NewTicketHandler(cfg.Tickets, cfg.Lifecycle, cfg.Analyzer)
	vulnHandler := handlers.NewVulnerabilityHandler(cfg.Lifecycle, cfg.Ingest)
	ingestionHandler := handlers.NewIngestionHandler(cfg.Tickets, cfg.AsynqClient)
	reportHandler := handlers.NewReportHandler(cfg.Tickets, cfg.Analyzer)
	teamHandler := handlers.NewTeamHandler(cfg.Team)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", ticketHandler.List)
				r.Post("/", ticketHandler.Create)
				r.Get("/{id}", ticketHandler.Get)
				r.Post("/{id}/messages", ticketHandler.AddMessage)
				r.Post("/{id}/read", ticketHandler.MarkRead)
				r.Get("/{id}/summary", ticketHandler.Summarize)

				// Finding state changes are open to both sides; the
				// acting party is enforced by the transition table.
				r.Put("/{id}/vulnerabilities/{vulnId}/status", vulnHandler.UpdateStatus)
				r.Post("/{id}/vulnerabilities/{vulnId}/comments", vulnHandler.AddComment)

				// Workflow management is security-side only.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePortal(auth.PortalSecurity, auth.PortalManager))
					r.Put("/{id}/status", ticketHandler.UpdateStatus)
					r.Put("/{id}/schedule", ticketHandler.Schedule)
					r.Put("/{id}/assign", ticketHandler.Assign)
					r.Post("/{id}/reports/final", ingestionHandler.UploadFinalReport)
					r.Post("/{id}/reports/retest", ingestionHandler.UploadRetestReport)
					r.Get("/{id}/reports/status", ingestionHandler.Status)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePortal(auth.PortalSecurity, auth.PortalManager))

				r.Route("/reports", func(r chi.Router) {
					r.Get("/weekly", reportHandler.Weekly)
					r.Get("/yearly", reportHandler.Yearly)
					r.Get("/yearly/summary", reportHandler.ExecutiveSummary)
				})

				r.Route("/team", func(r chi.Router) {
					r.Get("/", teamHandler.List)
					r.Post("/", teamHandler.Add)
					r.Delete("/{id}", teamHandler.Remove)
				})
			})
		})
	})

	return &Router{r}
}
