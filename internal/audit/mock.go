package audit

import (
	"context"
	"sync"
	"time"
)

var _ Recorder = (*MockRecorder)(nil)

// MockRecorder is an in-memory Recorder for testing.
type MockRecorder struct {
	mu      sync.Mutex
	Reports []ReportEvent
	Ingests []IngestEvent
}

// IngestEvent captures a RecordIngest call.
type IngestEvent struct {
	Source string
	Status string
	Rows   int
	Took   time.Duration
}

// NewMockRecorder creates a new MockRecorder.
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

func (m *MockRecorder) RecordReport(ctx context.Context, ev ReportEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, ev)
	return nil
}

func (m *MockRecorder) RecordIngest(ctx context.Context, source, status string, rows int, took time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ingests = append(m.Ingests, IngestEvent{Source: source, Status: status, Rows: rows, Took: took})
	return nil
}
