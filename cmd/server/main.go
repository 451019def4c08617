// Command server starts the AI Interviewer HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	rediscache "github.com/ParthivReddyY/ai-interviewer/internal/adapter/cache/redis"
	httpserver "github.com/ParthivReddyY/ai-interviewer/internal/adapter/httpserver"
	"github.com/ParthivReddyY/ai-interviewer/internal/adapter/observability"
	"github.com/ParthivReddyY/ai-interviewer/internal/app"
	"github.com/ParthivReddyY/ai-interviewer/internal/config"
	"github.com/ParthivReddyY/ai-interviewer/internal/service/ratelimiter"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Redis is optional: without it resume profiles are not cached.
	rdb, err := app.OpenRedis(ctx, cfg)
	if err != nil {
		slog.Warn("redis unavailable, resume cache disabled", slog.Any("error", err))
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	gw, err := app.BuildGateway(ctx, cfg)
	if err != nil {
		slog.Error("completion gateway setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	credentials := 0
	if gw != nil {
		credentials = gw.Credentials()
	} else {
		slog.Warn("no LLM credentials configured; every generator serves fallback results")
	}
	slog.Info("completion gateway ready", slog.Int("credentials", credentials), slog.String("provider", cfg.LLMProvider))

	svcs, err := app.BuildServices(cfg, gw, rediscache.NewResumeCache(rdb, cfg.ResumeCacheTTL))
	if err != nil {
		slog.Error("service setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	srv := httpserver.NewServer(cfg, svcs.Questions, svcs.Evaluation, svcs.Summary, svcs.Resume,
		credentials, app.BuildRedisCheck(app.RedisReadiness(rdb)))
	var limiter ratelimiter.Limiter
	if rdb != nil {
		limiter = ratelimiter.NewRedisLimiter(rdb, ratelimiter.NewBucketConfigFromPerMinute(cfg.RateLimitPerMin))
	}
	handler := app.BuildRouter(cfg, srv, limiter)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
