package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/appsec-portal/internal/analysis"
	"github.com/hugh/appsec-portal/internal/ingest"
	"github.com/hugh/appsec-portal/internal/store"
	"github.com/hugh/appsec-portal/internal/tasks"
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

	logger := util.NewLogger(cfg.Server.Env, "worker")
	slog.SetDefault(logger)

	logger.Info("starting appsec-portal worker")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	kv := store.NewRedisKV(redisClient)
	tickets := store.NewTicketStore(kv, logger)
	team := store.NewTeamStore(kv, logger)

	analyzer := analysis.NewClient(cfg.Analyzer.BaseURL, cfg.Analyzer.APIKey, cfg.Analyzer.Timeout(), logger)
	ingestSvc := ingest.NewService(tickets, team, analyzer, logger)

	srv := queue.NewServer(&cfg.Redis, 10)

	handler := tasks.NewHandler(ingestSvc, tickets, logger)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	<-ctx.Done()

	redisClient.Close()

	logger.Info("worker stopped")
}
