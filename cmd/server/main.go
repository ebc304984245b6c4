package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugh/appsec-portal/internal/analysis"
	"github.com/hugh/appsec-portal/internal/api"
	"github.com/hugh/appsec-portal/internal/auth"
	"github.com/hugh/appsec-portal/internal/ingest"
	"github.com/hugh/appsec-portal/internal/lifecycle"
	"github.com/hugh/appsec-portal/internal/store"
	"github.com/hugh/appsec-portal/pkg/config"
	"github.com/hugh/appsec-portal/pkg/queue"
	"github.com/hugh/appsec-portal/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env, "server")
	slog.SetDefault(logger)

	logger.Info("starting appsec-portal server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	asynqClient := queue.NewClient(&cfg.Redis)

	kv := store.NewRedisKV(redisClient)
	tickets := store.NewTicketStore(kv, logger)
	team := store.NewTeamStore(kv, logger)

	analyzer := analysis.NewClient(cfg.Analyzer.BaseURL, cfg.Analyzer.APIKey, cfg.Analyzer.Timeout(), logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	lifecycleSvc := lifecycle.NewService(tickets, team, logger)
	ingestSvc := ingest.NewService(tickets, team, analyzer, logger)

	router := api.NewRouter(api.RouterConfig{
		Redis:         redisClient,
		Tickets:       tickets,
		Team:          team,
		Lifecycle:     lifecycleSvc,
		Ingest:        ingestSvc,
		Analyzer:      analyzer,
		Logger:        logger,
		JWTService:    jwtService,
		AsynqClient:   asynqClient,
		RateLimitReqs: cfg.RateLimit.Requests,
		RateLimitSecs: cfg.RateLimit.WindowSeconds,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	asynqClient.Close()
	redisClient.Close()

	logger.Info("server stopped")
}
