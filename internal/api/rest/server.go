package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/m5cents/call-screening-backend/internal/infrastructure/cache"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/config"
	"github.com/m5cents/call-screening-backend/internal/infrastructure/metrics"
)

// ServerDeps carries the constructed handlers the server mounts.
type ServerDeps struct {
	Webhooks *WebhookHandler
	Admin    *AdminHandler
	Auth     *AuthService
	// WebSocket serves the dashboard push channel; may be nil.
	WebSocket http.Handler
	// Metrics may be nil, in which case /metrics is not mounted.
	Metrics *metrics.Metrics
	// RateLimiter may be nil; the server then uses an in-process limiter.
	RateLimiter cache.RateLimiter
	// HealthChecks keyed by dependency name.
	HealthChecks map[string]HealthCheck
}

// Server is the HTTP front of the service: public webhook routes for the
// telephony provider and an authenticated admin API for the dashboard.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer assembles the route table and middleware chains.
func NewServer(cfg *config.Config, logger *slog.Logger, deps ServerDeps) *Server {
	base := []Middleware{
		RecoveryMiddleware(logger),
		SecurityHeadersMiddleware(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(logger),
	}

	var limit Middleware
	if cfg.Security.RateLimit.Enabled {
		limit = RateLimitMiddleware(deps.RateLimiter, cfg.Security.RateLimit.RequestsPerMinute, logger)
	} else {
		limit = func(next http.Handler) http.Handler { return next }
	}

	publicChain := NewMiddlewareChain(append(base, limit)...)
	adminChain := NewMiddlewareChain(append(base, CORSMiddleware("*"), limit, deps.Auth.Middleware())...)
	loginChain := NewMiddlewareChain(append(base, CORSMiddleware("*"), limit)...)

	webhookMux := http.NewServeMux()
	deps.Webhooks.Register(webhookMux)
	if deps.Metrics != nil {
		// Webhook latency matters most; wrap the whole group.
		publicChain = NewMiddlewareChain(append([]Middleware{MetricsMiddleware(deps.Metrics, "webhooks")}, append(base, limit)...)...)
	}

	adminMux := http.NewServeMux()
	deps.Admin.Register(adminMux)

	root := http.NewServeMux()
	root.Handle("/api/v1/", adminChain.Then(adminMux))
	root.Handle("POST /auth/login", loginChain.Then(http.HandlerFunc(deps.Auth.LoginHandler)))
	root.Handle("GET /health", NewMiddlewareChain(base...).Then(HealthHandler(logger, deps.HealthChecks)))
	if deps.Metrics != nil {
		root.Handle("GET /metrics", deps.Metrics.Handler())
	}
	if deps.WebSocket != nil {
		root.Handle("GET /ws/calls", NewMiddlewareChain(base...).Then(deps.WebSocket))
	}
	root.Handle("/", publicChain.Then(webhookMux))

	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      root,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Handler exposes the assembled route table.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then drains connections within the
// configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
