package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/shettyvedanth21/Factory-Copilot/internal/analytics"
	"github.com/shettyvedanth21/Factory-Copilot/internal/api"
	"github.com/shettyvedanth21/Factory-Copilot/internal/config"
	"github.com/shettyvedanth21/Factory-Copilot/internal/devices"
	"github.com/shettyvedanth21/Factory-Copilot/internal/remote"
	"github.com/shettyvedanth21/Factory-Copilot/internal/reports"
	"github.com/shettyvedanth21/Factory-Copilot/internal/rules"
	"github.com/shettyvedanth21/Factory-Copilot/internal/session"
	"github.com/shettyvedanth21/Factory-Copilot/internal/storage"
	"github.com/shettyvedanth21/Factory-Copilot/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfgPath := os.Getenv("CONSOLE_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("failed to connect to db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	analyticsClient := analytics.NewClient(remote.NewClient("analytics-engine", cfg.Services.Analytics))
	orchestrator := analytics.NewOrchestrator(analyticsClient, cfg.PollInterval())
	defer orchestrator.Stop()

	handler := &api.Handler{
		Log:          logger,
		Devices:      devices.NewReader(remote.NewClient("device-registry", cfg.Services.Device)),
		Telemetry:    telemetry.NewReader(remote.NewClient("telemetry-store", cfg.Services.Telemetry)),
		Registry:     rules.NewRegistry(remote.NewClient("rule-engine", cfg.Services.Rules)),
		Analytics:    analyticsClient,
		Orchestrator: orchestrator,
		Reports:      reports.NewClient(remote.NewClient("export-service", cfg.Services.Export)),
		Sessions:     session.NewStore(redisClient, cfg.SessionTTL()),
		Drafts:       storage.NewRepository(store),
		Timeout:      cfg.RequestTimeout,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(api.Metrics)
	r.Handle("/metrics", promhttp.Handler())

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("console listening", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("error", err.Error()))
	}
}
