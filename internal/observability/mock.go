package observability

import "time"

// MockMetricsRegistry is a mock implementation of MetricsRegistry for testing.
type MockMetricsRegistry struct{}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (m *MockMetricsRegistry) IncrementReports(reportType string)                                   {}
func (m *MockMetricsRegistry) RecordReportRowsScanned(rows int)                                     {}
func (m *MockMetricsRegistry) IncrementIngestRuns(source, status string)                            {}
func (m *MockMetricsRegistry) AddIngestRowsUpserted(source string, rows int)                        {}
func (m *MockMetricsRegistry) IncrementRateLimitRequests(clientID string)                           {}
func (m *MockMetricsRegistry) IncrementRateLimitHits(clientID string)                               {}
func (m *MockMetricsRegistry) IncrementNarrativeRequests(outcome string)                            {}
func (m *MockMetricsRegistry) RecordNarrativeLatency(duration time.Duration)                        {}
func (m *MockMetricsRegistry) IncrementAuditWriteErrors()                                           {}
