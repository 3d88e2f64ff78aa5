package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adlens_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adlens_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// reports built, labelled by report type (social/search/combined/compare)
	ReportCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adlens_reports_total",
			Help: "Total reports generated",
		},
		[]string{"type"},
	)

	// fact rows scanned into the aggregator per report
	ReportRowsScanned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adlens_report_rows_scanned",
			Help:    "Fact rows read per report request",
			Buckets: prometheus.ExponentialBuckets(10, 10, 6),
		},
	)

	// ingest runs labelled by source and outcome
	IngestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adlens_ingest_runs_total",
			Help: "Total ingestion runs",
		},
		[]string{"source", "status"},
	)

	// fact rows upserted per source
	IngestRowsUpserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adlens_ingest_rows_upserted_total",
			Help: "Total fact rows upserted by ingestion",
		},
		[]string{"source"},
	)

	// rate limit hits per client
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adlens_ratelimit_hits_total",
			Help: "Total rate limit hits per client",
		},
		[]string{"client_id"},
	)

	// rate limit requests per client
	RateLimitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adlens_ratelimit_requests_total",
			Help: "Total rate limit checks per client",
		},
		[]string{"client_id"},
	)

	// narrative generation requests labelled by outcome
	NarrativeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adlens_narrative_requests_total",
			Help: "Total AI narrative generation requests",
		},
		[]string{"outcome"},
	)

	// latency of narrative generation calls
	NarrativeLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adlens_narrative_duration_seconds",
			Help:    "Duration of narrative generation requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// errors writing usage events to the audit sink
	AuditWriteErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adlens_audit_write_errors_total",
			Help: "Total audit event write errors",
		},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		ReportCount,
		ReportRowsScanned,
		IngestRuns,
		IngestRowsUpserted,
		RateLimitHits,
		RateLimitRequests,
		NarrativeRequests,
		NarrativeLatency,
		AuditWriteErrors,
	)
}
