package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyeonlab/adlens/internal/audit"
	"github.com/hyeonlab/adlens/internal/config"
	"github.com/hyeonlab/adlens/internal/db"
	"github.com/hyeonlab/adlens/internal/geoip"
	"github.com/hyeonlab/adlens/internal/ingest"
	"github.com/hyeonlab/adlens/internal/models"
	"github.com/hyeonlab/adlens/internal/narrative"
	"github.com/hyeonlab/adlens/internal/observability"
	"github.com/hyeonlab/adlens/internal/ratelimit"
	"github.com/hyeonlab/adlens/internal/report"
)

// FactReader is the fact store surface the report handlers read through.
type FactReader interface {
	QuerySocialFacts(ctx context.Context, f db.FactFilter) ([]models.FactRow, error)
	QuerySearchFacts(ctx context.Context, f db.FactFilter) ([]models.FactRow, error)
}

// SearchFactWriter receives rows parsed from CSV uploads.
type SearchFactWriter interface {
	UpsertSearchFacts(ctx context.Context, rows []models.FactRow) (int, error)
}

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger    *zap.Logger
	Facts     FactReader
	Writer    SearchFactWriter
	Store     *db.RedisStore
	Audit     audit.Recorder
	GeoIP     *geoip.GeoIP
	Metrics   observability.MetricsRegistry
	Limiter   *ratelimit.ClientLimiter
	Collector *ingest.Collector
	Narrative narrative.Generator
	Config    config.Config
	Converter report.Converter
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, facts FactReader, writer SearchFactWriter, store *db.RedisStore, rec audit.Recorder, geo *geoip.GeoIP, metrics observability.MetricsRegistry, limiter *ratelimit.ClientLimiter, collector *ingest.Collector, gen narrative.Generator, cfg config.Config) *Server {
	return &Server{
		Logger:    logger,
		Facts:     facts,
		Writer:    writer,
		Store:     store,
		Audit:     rec,
		GeoIP:     geo,
		Metrics:   metrics,
		Limiter:   limiter,
		Collector: collector,
		Narrative: gen,
		Config:    cfg,
		Converter: report.Converter{Rate: cfg.KRWPerUSD, Decimals: 0},
	}
}

// Routes registers every handler on the router. Report and ingest routes sit
// behind the shared-secret check and the per-client rate limit.
func (s *Server) Routes(r *mux.Router) {
	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.RequireSecret, s.RateLimit)
	api.HandleFunc("/reports/social", s.SocialReportHandler).Methods("GET")
	api.HandleFunc("/reports/search", s.SearchReportHandler).Methods("GET")
	api.HandleFunc("/reports/combined", s.CombinedReportHandler).Methods("GET")
	api.HandleFunc("/reports/compare", s.CompareReportHandler).Methods("GET")
	api.HandleFunc("/reports/narrative", s.NarrativeHandler).Methods("GET")
	api.HandleFunc("/uploads/search-csv", s.SearchCSVUploadHandler).Methods("POST")
	api.HandleFunc("/ingest/run", s.IngestRunHandler).Methods("POST")
}

// writeJSON encodes v with a 200 status unless code overrides it.
func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("encode response", zap.Error(err))
	}
}

// finish records the request metrics every handler emits on exit.
func (s *Server) finish(endpoint, method, status string, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, status)
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
