package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"orthocode/internal/config"
	"orthocode/internal/gateway"
	_ "orthocode/internal/gateway/claude"
	_ "orthocode/internal/gateway/gemini"
	_ "orthocode/internal/gateway/openai"
	"orthocode/internal/handler"
	"orthocode/internal/logging"
	"orthocode/internal/port"
	"orthocode/internal/ratelimit"
	"orthocode/internal/router"
	"orthocode/internal/service"
	"orthocode/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("trace exporter shutdown failed")
		}
	}()

	// Initialize rate limiter
	limiter, err := ratelimit.NewFromConfig(&cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeIfCloser(logger, "rate limiter", limiter)

	// Initialize AI gateway; a missing key still boots so callers get CONFIG_ERROR.
	gw, err := gateway.New(&cfg.Gateway)
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		logger.Warn().Str("provider", cfg.Gateway.Provider).Msg("AI gateway API key not set; generate-codes will return CONFIG_ERROR")
		gw = nil
	case err != nil:
		return fmt.Errorf("failed to initialize AI gateway: %w", err)
	default:
		defer closeIfCloser(logger, "AI gateway", gw)
	}

	// Initialize services
	codingSvc := service.NewCodingService(limiter, gw, logger, otel.Tracer(telemetry.TracerName))

	// Initialize handlers
	pingers := map[string]handler.Pinger{}
	if p, ok := limiter.(handler.Pinger); ok {
		pingers["redis"] = p
	}
	codingH := handler.NewCodingHandler(codingSvc, cfg.Server.MaxBodyBytes)
	healthH := handler.NewHealthHandler(gw != nil, pingers)

	// Setup router
	r := router.Setup(logger, cfg.CORS.AllowedOrigins, codingH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Port).
			Str("provider", providerName(gw)).
			Str("rate_limit_backend", cfg.RateLimit.Backend).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func closeIfCloser(logger zerolog.Logger, name string, v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn().Err(err).Str("component", name).Msg("close failed")
	}
}

func providerName(gw port.AIGateway) string {
	if gw == nil {
		return "none"
	}
	return gw.Provider()
}
