package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyeonlab/adlens/internal/audit"
	"github.com/hyeonlab/adlens/internal/models"
	"github.com/hyeonlab/adlens/internal/observability"
)

// Fetcher retrieves a window of fact rows for one client from a platform API.
type Fetcher interface {
	FetchWindow(ctx context.Context, clientID string, start, end time.Time) ([]models.FactRow, error)
}

// FactStore is the subset of the fact store the collector writes through.
type FactStore interface {
	UpsertSocialFacts(ctx context.Context, rows []models.FactRow) (int, error)
	DistinctClients(ctx context.Context) ([]string, error)
}

// LockStore coordinates collector runs across instances.
type LockStore interface {
	AcquireIngestLock(source string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseIngestLock(source, token string) error
	SetLastIngestRun(source string, at time.Time) error
}

// Collector periodically pulls paid-social insights and upserts them into the
// fact store. Only one collector instance runs per source at a time; the Redis
// lock arbitrates.
type Collector struct {
	Fetcher  Fetcher
	Store    FactStore
	Locks    LockStore
	Audit    audit.Recorder
	Metrics  observability.MetricsRegistry
	Logger   *zap.Logger
	Interval time.Duration
	LockTTL  time.Duration
	// Lookback is how many days before today each run re-fetches. Platforms
	// restate recent measures, so the window always overlaps prior runs and
	// the upsert keeps the store converged.
	Lookback int
	// Clients overrides client discovery; when empty the store's distinct
	// client list is used.
	Clients []string
}

// Start runs the collection loop until ctx is cancelled. An immediate run
// happens on startup, then one per interval.
func (c *Collector) Start(ctx context.Context) {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.runLocked(ctx)
	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("collector stopped")
			return
		case <-ticker.C:
			c.runLocked(ctx)
		}
	}
}

// runLocked wraps RunOnce with the distributed lock. A held lock means another
// instance is collecting; skipping is the correct outcome, not an error.
func (c *Collector) runLocked(ctx context.Context) {
	ttl := c.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	token, ok, err := c.Locks.AcquireIngestLock(string(models.SourcePaidSocial), ttl)
	if err != nil {
		c.Logger.Error("acquire ingest lock", zap.Error(err))
		return
	}
	if !ok {
		c.Logger.Info("ingest lock held elsewhere, skipping run")
		return
	}
	defer func() {
		if err := c.Locks.ReleaseIngestLock(string(models.SourcePaidSocial), token); err != nil {
			c.Logger.Error("release ingest lock", zap.Error(err))
		}
	}()

	end := time.Now().UTC().Truncate(24 * time.Hour)
	lookback := c.Lookback
	if lookback <= 0 {
		lookback = 3
	}
	start := end.AddDate(0, 0, -lookback)
	if _, err := c.RunOnce(ctx, start, end); err != nil {
		c.Logger.Error("ingest run failed", zap.Error(err))
	}
}

// RunOnce fetches and upserts the given window for every known client,
// returning the number of rows written. The caller owns locking.
func (c *Collector) RunOnce(ctx context.Context, start, end time.Time) (int, error) {
	began := time.Now()
	source := string(models.SourcePaidSocial)

	clients := c.Clients
	if len(clients) == 0 {
		var err error
		clients, err = c.Store.DistinctClients(ctx)
		if err != nil {
			c.recordRun(ctx, source, "error", 0, time.Since(began))
			return 0, fmt.Errorf("list clients: %w", err)
		}
	}

	total := 0
	for _, clientID := range clients {
		rows, err := c.Fetcher.FetchWindow(ctx, clientID, start, end)
		if err != nil {
			c.recordRun(ctx, source, "error", total, time.Since(began))
			return total, fmt.Errorf("fetch %s window: %w", clientID, err)
		}
		n, err := c.Store.UpsertSocialFacts(ctx, rows)
		total += n
		if err != nil {
			c.recordRun(ctx, source, "error", total, time.Since(began))
			return total, fmt.Errorf("upsert %s facts: %w", clientID, err)
		}
		c.Logger.Info("collected social facts",
			zap.String("client_id", clientID),
			zap.Int("rows", n),
			zap.Time("window_start", start),
			zap.Time("window_end", end))
	}

	if err := c.Locks.SetLastIngestRun(source, time.Now()); err != nil {
		c.Logger.Warn("record last ingest run", zap.Error(err))
	}
	c.recordRun(ctx, source, "ok", total, time.Since(began))
	return total, nil
}

func (c *Collector) recordRun(ctx context.Context, source, status string, rows int, took time.Duration) {
	if c.Metrics != nil {
		c.Metrics.IncrementIngestRuns(source, status)
		if rows > 0 {
			c.Metrics.AddIngestRowsUpserted(source, rows)
		}
	}
	if c.Audit != nil {
		if err := c.Audit.RecordIngest(ctx, source, status, rows, took); err != nil && !errors.Is(err, audit.ErrUnavailable) {
			c.Logger.Warn("record ingest audit event", zap.Error(err))
		}
	}
}
