package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics.
// This replaces direct access to global Prometheus metrics with dependency injection.
type MetricsRegistry interface {
	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Report metrics
	IncrementReports(reportType string)
	RecordReportRowsScanned(rows int)

	// Ingestion metrics
	IncrementIngestRuns(source, status string)
	AddIngestRowsUpserted(source string, rows int)

	// Rate limiting metrics
	IncrementRateLimitRequests(clientID string)
	IncrementRateLimitHits(clientID string)

	// Narrative metrics
	IncrementNarrativeRequests(outcome string)
	RecordNarrativeLatency(duration time.Duration)

	// Audit sink metrics
	IncrementAuditWriteErrors()
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementReports(reportType string) {
	ReportCount.WithLabelValues(reportType).Inc()
}

func (r *PrometheusRegistry) RecordReportRowsScanned(rows int) {
	ReportRowsScanned.Observe(float64(rows))
}

func (r *PrometheusRegistry) IncrementIngestRuns(source, status string) {
	IngestRuns.WithLabelValues(source, status).Inc()
}

func (r *PrometheusRegistry) AddIngestRowsUpserted(source string, rows int) {
	IngestRowsUpserted.WithLabelValues(source).Add(float64(rows))
}

func (r *PrometheusRegistry) IncrementRateLimitRequests(clientID string) {
	RateLimitRequests.WithLabelValues(clientID).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(clientID string) {
	RateLimitHits.WithLabelValues(clientID).Inc()
}

func (r *PrometheusRegistry) IncrementNarrativeRequests(outcome string) {
	NarrativeRequests.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordNarrativeLatency(duration time.Duration) {
	NarrativeLatency.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementAuditWriteErrors() {
	AuditWriteErrors.Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing.
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry.
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementReports(reportType string)                                   {}
func (r *NoOpRegistry) RecordReportRowsScanned(rows int)                                     {}
func (r *NoOpRegistry) IncrementIngestRuns(source, status string)                            {}
func (r *NoOpRegistry) AddIngestRowsUpserted(source string, rows int)                        {}
func (r *NoOpRegistry) IncrementRateLimitRequests(clientID string)                           {}
func (r *NoOpRegistry) IncrementRateLimitHits(clientID string)                               {}
func (r *NoOpRegistry) IncrementNarrativeRequests(outcome string)                            {}
func (r *NoOpRegistry) RecordNarrativeLatency(duration time.Duration)                        {}
func (r *NoOpRegistry) IncrementAuditWriteErrors()                                           {}
