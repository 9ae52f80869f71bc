// Command bridged runs the Pike13 → CRM webhook bridge service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sweatstack/bridge"
	"github.com/sweatstack/bridge/api"
	"github.com/sweatstack/bridge/endpoint"
	"github.com/sweatstack/bridge/envconfig"
	"github.com/sweatstack/bridge/observability"
	"github.com/sweatstack/bridge/ratelimit"
)

func main() {
	cfg, err := envconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observability.SetupTracing(ctx, cfg.Tracing)
	if err != nil {
		logger.Error("tracing setup failed", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	registry, err := endpoint.NewRegistry(cfg.EndpointURLs)
	if err != nil {
		logger.Error("endpoint registry invalid", "error", err)
		os.Exit(1)
	}
	logger.Info("endpoint registry loaded", "families", registry.Families())
	if cfg.Secret == "" {
		logger.Warn("PIKE13_WEBHOOK_SECRET unset, signature verification disabled")
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(promReg)

	b, err := bridge.New(
		bridge.WithRegistry(registry),
		bridge.WithSecret(cfg.Secret),
		bridge.WithLogger(logger),
		bridge.WithMaxAttempts(cfg.MaxAttempts),
		bridge.WithBaseDelay(cfg.BaseDelay),
		bridge.WithRequestTimeout(cfg.RequestTimeout),
		bridge.WithMetrics(metrics),
		bridge.WithTracer(observability.NewTracer()),
	)
	if err != nil {
		logger.Error("bridge init failed", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/", api.NewHandler(b, logger))
	mux.Handle("GET /metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "bridge:rl")
		logger.Info("rate limiting enabled (redis)",
			"per_minute", cfg.RateLimitPerMinute, "redis_addr", cfg.RedisAddr)
	} else {
		perSecond := cfg.RateLimitPerMinute / 60
		if perSecond < 1 {
			perSecond = 1
		}
		limiter = ratelimit.NewTokenBucket(perSecond)
		logger.Info("rate limiting enabled (in-memory)", "per_second", perSecond)
	}

	handler := api.Chain(mux,
		api.WithRequestID,
		api.WithAccessLog(logger),
		api.WithBodyLimit(cfg.RequestBodyLimit),
		api.WithRateLimit(limiter, logger, cfg.RateLimitFailOpen),
	)
	handler = otelhttp.NewHandler(handler, "bridge")

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
