package ratelimit

import (
	"testing"

	"github.com/hyeonlab/adlens/internal/observability"
)

func TestClientLimiter_PerClientBuckets(t *testing.T) {
	limiter := NewClientLimiter(Config{Capacity: 2, RefillRate: 1, Enabled: true}, &observability.MockMetricsRegistry{})

	// Exhaust client A's bucket
	if !limiter.Allow("client-a") || !limiter.Allow("client-a") {
		t.Fatal("client-a should have two tokens")
	}
	if limiter.Allow("client-a") {
		t.Error("client-a should be rate limited")
	}

	// Client B is unaffected
	if !limiter.Allow("client-b") {
		t.Error("client-b should not share client-a's bucket")
	}
}

func TestClientLimiter_Disabled(t *testing.T) {
	limiter := NewClientLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: false}, &observability.MockMetricsRegistry{})

	for i := 0; i < 10; i++ {
		if !limiter.Allow("client-a") {
			t.Fatal("disabled limiter must always allow")
		}
	}
}

func TestClientLimiter_Stats(t *testing.T) {
	limiter := NewClientLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: true}, &observability.MockMetricsRegistry{})

	limiter.Allow("client-a")
	limiter.Allow("client-a") // rate limited

	stats := limiter.Stats()
	s, ok := stats["client-a"]
	if !ok {
		t.Fatal("expected stats for client-a")
	}
	if s.Hits != 1 || s.Total != 2 {
		t.Errorf("got hits=%d total=%d, want 1/2", s.Hits, s.Total)
	}
	if s.HitRate != 0.5 {
		t.Errorf("got hit rate %f, want 0.5", s.HitRate)
	}
}
