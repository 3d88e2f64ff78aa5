package ratelimit

import (
	"fmt"
	"sync"

	"github.com/hyeonlab/adlens/internal/observability"
)

// ClientLimiter manages rate limiting for multiple API clients.
//
// Each client gets its own token bucket, created lazily on first access.
// The limiter integrates with an injected metrics registry to track rate
// limiting activity.
type ClientLimiter struct {
	buckets map[string]*TokenBucket       // Map of client ID to token bucket
	mu      sync.RWMutex                  // Protects the buckets map
	config  Config                        // Rate limiting configuration
	metrics observability.MetricsRegistry // Metrics registry for tracking rate limiting activity
}

// Config holds the configuration for rate limiting.
type Config struct {
	Capacity   int  // Token bucket capacity (burst allowance)
	RefillRate int  // Tokens added per second (sustained rate)
	Enabled    bool // Whether rate limiting is active
}

// NewClientLimiter creates a new per-client rate limiter with the given configuration.
func NewClientLimiter(config Config, metrics observability.MetricsRegistry) *ClientLimiter {
	return &ClientLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		metrics: metrics,
	}
}

// Allow checks if a request for the given client should be allowed.
//
// If rate limiting is disabled via config, this method always returns true.
// Token buckets are created automatically for new clients.
func (cl *ClientLimiter) Allow(clientID string) bool {
	if !cl.config.Enabled {
		return true
	}

	cl.metrics.IncrementRateLimitRequests(clientID)

	// Get or create token bucket for this client
	cl.mu.RLock()
	bucket, exists := cl.buckets[clientID]
	cl.mu.RUnlock()

	if !exists {
		// Double-checked locking pattern to avoid race conditions
		cl.mu.Lock()
		bucket, exists = cl.buckets[clientID]
		if !exists {
			bucket = NewTokenBucket(cl.config.Capacity, cl.config.RefillRate)
			cl.buckets[clientID] = bucket
		}
		cl.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed {
		cl.metrics.IncrementRateLimitHits(clientID)
	}

	return allowed
}

// Stats returns rate limiting statistics for all clients.
func (cl *ClientLimiter) Stats() map[string]ClientStats {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	stats := make(map[string]ClientStats)
	for clientID, bucket := range cl.buckets {
		hits, total := bucket.Stats()
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total)
		}
		stats[clientID] = ClientStats{
			ClientID: clientID,
			Hits:     hits,
			Total:    total,
			HitRate:  hitRate,
		}
	}

	return stats
}

// ClientStats contains rate limiting statistics for a single client.
type ClientStats struct {
	ClientID string  `json:"client_id"`
	Hits     int64   `json:"hits"`     // Number of rate limited requests
	Total    int64   `json:"total"`    // Total number of requests processed
	HitRate  float64 `json:"hit_rate"` // Fraction of requests rate limited (0.0-1.0)
}

// String returns a human-readable representation of the rate limit statistics.
func (cs ClientStats) String() string {
	return fmt.Sprintf("client %s: %d/%d hits (%.2f%%)",
		cs.ClientID, cs.Hits, cs.Total, cs.HitRate*100)
}
