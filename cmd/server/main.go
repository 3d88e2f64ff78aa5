package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hyeonlab/adlens/internal/api"
	"github.com/hyeonlab/adlens/internal/audit"
	"github.com/hyeonlab/adlens/internal/config"
	"github.com/hyeonlab/adlens/internal/db"
	"github.com/hyeonlab/adlens/internal/geoip"
	"github.com/hyeonlab/adlens/internal/ingest"
	"github.com/hyeonlab/adlens/internal/middleware"
	"github.com/hyeonlab/adlens/internal/narrative"
	"github.com/hyeonlab/adlens/internal/observability"
	"github.com/hyeonlab/adlens/internal/ratelimit"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	store, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	defer store.Close()

	metricsRegistry := observability.NewPrometheusRegistry()

	auditSvc, err := audit.InitClickHouse(cfg.ClickHouseDSN, cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime, metricsRegistry)
	if err != nil {
		return fmt.Errorf("failed to connect clickhouse: %w", err)
	}
	defer auditSvc.Close()

	// GeoIP only enriches audit events; a missing database is not fatal.
	var geoSvc *geoip.GeoIP
	if cfg.GeoIPDB != "" {
		geoSvc, err = geoip.Init(cfg.GeoIPDB)
		if err != nil {
			return fmt.Errorf("failed to load geoip db: %w", err)
		}
		defer func() { _ = geoSvc.Close() }()
	}

	rateLimiter := ratelimit.NewClientLimiter(ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
	}, metricsRegistry)

	var generator narrative.Generator
	if cfg.NarrativeEnabled {
		gen, err := narrative.NewBedrockGenerator(ctx, cfg.AWSRegion, cfg.BedrockModelID)
		if err != nil {
			return fmt.Errorf("init narrative generator: %w", err)
		}
		generator = gen
	}

	var collector *ingest.Collector
	if cfg.IngestEnabled && cfg.SocialAPIBaseURL != "" {
		collector = &ingest.Collector{
			Fetcher:  ingest.NewSocialClient(cfg.SocialAPIBaseURL, cfg.SocialAPIToken, cfg.SocialAPIPageSize),
			Store:    pg,
			Locks:    store,
			Audit:    auditSvc,
			Metrics:  metricsRegistry,
			Logger:   logger,
			Interval: cfg.IngestInterval,
			LockTTL:  cfg.IngestLockTTL,
			Lookback: cfg.IngestLookback,
		}
		go collector.Start(ctx)
		logger.Info("social fact collector running",
			zap.Duration("interval", cfg.IngestInterval),
			zap.Int("lookback_days", cfg.IngestLookback))
	}

	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(logger))
	srvDeps := api.NewServer(logger, pg, pg, store, auditSvc, geoSvc, metricsRegistry, rateLimiter, collector, generator, cfg)
	srvDeps.Routes(r)

	var handler http.Handler = r
	if cfg.TracingEnabled {
		handler = otelhttp.NewHandler(r, "http.server")
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Report server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
