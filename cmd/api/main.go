package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/m5cents/call-screening-backend/internal/api/rest"
	ws "github.com/m5cents/call-screening-backend/internal/api/websocket"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/cache"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/config"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/database"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/metrics"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/repository"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/telemetry"
	"github.com/m5cents/call-screening-backend/internal/service/callrouting"
	"github.com/m5cents/call-screening-backend/internal/service/classifier"
	"github.com/m5cents/call-screening-backend/internal/service/lookup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting call screening backend",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"port", cfg.Server.Port)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	otelProvider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "call-screening-backend",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   1.0,
	})
	if err != nil {
		return err
	}
	defer func() { _ = otelProvider.Shutdown(context.Background()) }()

	pool, err := database.NewPool(ctx, &cfg.Database, zapLogger)
	if err != nil {
		return err
	}
	defer pool.Close()

	contactRepo := repository.NewContactRepository(pool)
	blocklistRepo := repository.NewBlocklistRepository(pool)
	callLogRepo := repository.NewCallLogRepository(pool)

	healthChecks := map[string]rest.HealthCheck{
		"database": pool.Ping,
	}

	// Redis is optional: without it, lookups scan the repositories on every
	// call and rate limits are enforced per process.
	var matchCache *cache.RedisMatchCache
	var rateLimiter cache.RateLimiter
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cfg.Redis, zapLogger)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		matchCache = cache.NewRedisMatchCache(redisClient, cfg.Redis.MatchTTL, zapLogger)
		rateLimiter = cache.NewRedisRateLimiter(redisClient, zapLogger)
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	hub := ws.NewHub(zapLogger, ws.DefaultHubConfig())
	m := metrics.New(hub.ClientCount)

	var lookupCache lookup.MatchCache
	if matchCache != nil {
		lookupCache = matchCache
	}
	lookupSvc := lookup.NewService(contactRepo, blocklistRepo, lookupCache)

	clf := classifier.NewAnthropicClassifier(classifier.Config{
		APIKey:      cfg.Classifier.APIKey,
		BaseURL:     cfg.Classifier.BaseURL,
		Model:       cfg.Classifier.Model,
		MaxTokens:   cfg.Classifier.MaxTokens,
		Temperature: cfg.Classifier.Temperature,
		Timeout:     cfg.Classifier.Timeout,
	}, logger)

	engine := callrouting.NewEngine(
		lookupSvc,
		callLogRepo,
		clf,
		ws.NewHubNotifier(hub),
		m,
		callrouting.Config{DestinationNumber: cfg.Routing.DestinationNumber},
		logger,
	)

	var adminCache rest.MatchInvalidator
	if matchCache != nil {
		adminCache = matchCache
	}

	server := rest.NewServer(cfg, logger, rest.ServerDeps{
		Webhooks:     rest.NewWebhookHandler(engine, logger),
		Admin:        rest.NewAdminHandler(contactRepo, blocklistRepo, callLogRepo, adminCache, logger),
		Auth:         rest.NewAuthService(cfg.Security),
		WebSocket:    http.Handler(ws.Handler(hub)),
		Metrics:      m,
		RateLimiter:  rateLimiter,
		HealthChecks: healthChecks,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return server.Start(gctx)
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}
