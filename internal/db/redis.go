package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore wraps a redis client used for ingest coordination.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// AcquireIngestLock takes the per-source ingest lock so only one collector run
// touches a source at a time. It returns a release token, or ok=false when
// another run holds the lock.
func (r *RedisStore) AcquireIngestLock(source string, ttl time.Duration) (token string, ok bool, err error) {
	key := fmt.Sprintf("ingest:lock:%s", source)
	token = uuid.NewString()
	ok, err = r.Client.SetNX(r.Ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire ingest lock %s: %w", source, err)
	}
	return token, ok, nil
}

// ReleaseIngestLock drops the lock if the token still owns it. A stale token
// is a no-op: the lock expired and another run may hold it now.
func (r *RedisStore) ReleaseIngestLock(source, token string) error {
	key := fmt.Sprintf("ingest:lock:%s", source)
	val, err := r.Client.Get(r.Ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ingest lock %s: %w", source, err)
	}
	if val != token {
		return nil
	}
	return r.Client.Del(r.Ctx, key).Err()
}

// SetLastIngestRun records when a source was last collected successfully.
func (r *RedisStore) SetLastIngestRun(source string, at time.Time) error {
	key := fmt.Sprintf("ingest:lastrun:%s", source)
	return r.Client.Set(r.Ctx, key, at.UTC().Format(time.RFC3339), 0).Err()
}

// LastIngestRun returns the last successful collection time for a source,
// or the zero time when the source has never run.
func (r *RedisStore) LastIngestRun(source string) (time.Time, error) {
	key := fmt.Sprintf("ingest:lastrun:%s", source)
	val, err := r.Client.Get(r.Ctx, key).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read last ingest run %s: %w", source, err)
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last ingest run %s: %w", source, err)
	}
	return t, nil
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
