package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Manan1014/ssas-go/internal/config"
	"github.com/Manan1014/ssas-go/internal/handler"
	"github.com/Manan1014/ssas-go/internal/infra/cache"
	"github.com/Manan1014/ssas-go/internal/infra/client"
	"github.com/Manan1014/ssas-go/internal/infra/memory"
	"github.com/Manan1014/ssas-go/internal/infra/observability"
	"github.com/Manan1014/ssas-go/internal/infra/postgres"
	"github.com/Manan1014/ssas-go/internal/infra/resilience"
	"github.com/Manan1014/ssas-go/internal/port"
	"github.com/Manan1014/ssas-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_postgres", cfg.UsePostgres),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "ssas")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	analyticsCache := cache.New[any](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("external-apis")

	// --- Store ---
	var store port.SalesStore
	if cfg.UsePostgres {
		logger.Info("using Postgres as data backend")
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := postgres.EnsureSchema(context.Background(), pool); err != nil {
			logger.Fatal("failed to ensure schema", zap.Error(err))
		}
		store = postgres.NewStore(pool, logger)
	} else {
		logger.Warn("using in-memory store, data will not survive restarts")
		store = memory.NewStore()
	}

	// --- AI insight client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var insightClient port.InsightGenerator
	if cfg.OpenAIAPIKey != "" {
		logger.Info("AI insight client enabled", zap.String("model", cfg.OpenAIModel))
		insightClient = client.NewInsightClient(
			httpClient,
			cfg.OpenAIBaseURL,
			cfg.OpenAIAPIKey,
			cfg.OpenAIModel,
			cb,
			resilienceCfg,
		)
	} else {
		logger.Warn("OPENAI_API_KEY not set, forecast responses use the placeholder insight")
	}

	// --- Services ---
	analyticsSvc := service.NewAnalyticsService(store, analyticsCache, metrics, logger)
	salesSvc := service.NewSalesService(store, analyticsSvc, metrics, logger)
	forecastSvc := service.NewForecastService(store, insightClient, metrics, logger)

	// --- Router ---
	origins := strings.Split(cfg.AllowedOrigins, ",")
	router := handler.NewRouter(salesSvc, analyticsSvc, forecastSvc, store, metrics, origins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
