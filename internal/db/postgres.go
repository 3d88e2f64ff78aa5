package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq" // postgres driver
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/hyeonlab/adlens/internal/models"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB

	// pageSize bounds each SELECT when reading fact windows. Callers always
	// receive the full window; reads page internally.
	pageSize int
}

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS social_ad_facts (
    client_id TEXT NOT NULL,
    date DATE NOT NULL,
    ad_id TEXT NOT NULL,
    ad_name TEXT NOT NULL DEFAULT '',
    campaign_id TEXT NOT NULL DEFAULT '',
    campaign_name TEXT NOT NULL DEFAULT '',
    platform TEXT NOT NULL DEFAULT '',
    device TEXT NOT NULL DEFAULT '',
    impressions BIGINT NOT NULL DEFAULT 0,
    clicks BIGINT NOT NULL DEFAULT 0,
    spend DOUBLE PRECISION NOT NULL DEFAULT 0,
    leads BIGINT NOT NULL DEFAULT 0,
    video_views BIGINT NOT NULL DEFAULT 0,
    avg_watch_time DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (client_id, date, ad_id, platform, device)
);

CREATE TABLE IF NOT EXISTS search_keyword_facts (
    client_id TEXT NOT NULL,
    date DATE NOT NULL,
    keyword TEXT NOT NULL,
    campaign_id TEXT NOT NULL DEFAULT '',
    campaign_name TEXT NOT NULL DEFAULT '',
    device TEXT NOT NULL DEFAULT '',
    impressions BIGINT NOT NULL DEFAULT 0,
    clicks BIGINT NOT NULL DEFAULT 0,
    spend DOUBLE PRECISION NOT NULL DEFAULT 0,
    leads BIGINT NOT NULL DEFAULT 0,
    avg_rank DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (client_id, date, keyword, device)
);

-- Report reads are windowed by client and date
CREATE INDEX IF NOT EXISTS idx_social_facts_client_date ON social_ad_facts (client_id, date);
CREATE INDEX IF NOT EXISTS idx_search_facts_client_date ON search_keyword_facts (client_id, date);
CREATE INDEX IF NOT EXISTS idx_social_facts_campaign ON social_ad_facts (client_id, campaign_id);
CREATE INDEX IF NOT EXISTS idx_search_facts_campaign ON search_keyword_facts (client_id, campaign_id);`

// InitPostgres opens and verifies a Postgres connection with pooling configured.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	// Register the otelsql wrapper for postgres
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	// Configure connection pooling for production use
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db, pageSize: defaultPageSize}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

const defaultPageSize = 5000

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	ctx := context.Background()
	if _, err := p.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertSocialFacts writes a batch of paid-social fact rows. Rows carrying the
// same natural key (client, date, ad, platform, device) replace the stored
// values, so repeated ingestion of the same window is idempotent.
func (p *Postgres) UpsertSocialFacts(ctx context.Context, rows []models.FactRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO social_ad_facts
		(client_id, date, ad_id, ad_name, campaign_id, campaign_name, platform, device,
		 impressions, clicks, spend, leads, video_views, avg_watch_time, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,NOW())
		ON CONFLICT (client_id, date, ad_id, platform, device) DO UPDATE SET
		 ad_name = EXCLUDED.ad_name,
		 campaign_id = EXCLUDED.campaign_id,
		 campaign_name = EXCLUDED.campaign_name,
		 impressions = EXCLUDED.impressions,
		 clicks = EXCLUDED.clicks,
		 spend = EXCLUDED.spend,
		 leads = EXCLUDED.leads,
		 video_views = EXCLUDED.video_views,
		 avg_watch_time = EXCLUDED.avg_watch_time,
		 updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("prepare social upsert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	count := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ClientID, r.Day(), r.AdID, r.AdName, r.CampaignID, r.CampaignName,
			r.Platform, r.Device, r.Impressions, r.Clicks, r.Spend, r.Leads, r.VideoViews, r.AvgWatchTime); err != nil {
			return count, fmt.Errorf("upsert social fact %s/%s: %w", r.AdID, r.Date.Format("2006-01-02"), err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("commit social upsert: %w", err)
	}
	return count, nil
}

// UpsertSearchFacts writes a batch of local-search keyword fact rows, keyed by
// (client, date, keyword, device).
func (p *Postgres) UpsertSearchFacts(ctx context.Context, rows []models.FactRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO search_keyword_facts
		(client_id, date, keyword, campaign_id, campaign_name, device,
		 impressions, clicks, spend, leads, avg_rank, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())
		ON CONFLICT (client_id, date, keyword, device) DO UPDATE SET
		 campaign_id = EXCLUDED.campaign_id,
		 campaign_name = EXCLUDED.campaign_name,
		 impressions = EXCLUDED.impressions,
		 clicks = EXCLUDED.clicks,
		 spend = EXCLUDED.spend,
		 leads = EXCLUDED.leads,
		 avg_rank = EXCLUDED.avg_rank,
		 updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("prepare search upsert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	count := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ClientID, r.Day(), r.Keyword, r.CampaignID, r.CampaignName,
			r.Device, r.Impressions, r.Clicks, r.Spend, r.Leads, r.AvgRank); err != nil {
			return count, fmt.Errorf("upsert search fact %q/%s: %w", r.Keyword, r.Date.Format("2006-01-02"), err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("commit search upsert: %w", err)
	}
	return count, nil
}

// FactFilter narrows a fact window read. Start and End are inclusive dates;
// empty dimension values match everything.
type FactFilter struct {
	ClientID   string
	Start      time.Time
	End        time.Time
	CampaignID string
	Platform   string
	Device     string
	Keyword    string
}

// QuerySocialFacts reads every paid-social row matching the filter, ordered by
// date then ad. The read pages internally so large windows never hold one
// oversized result set on the wire.
func (p *Postgres) QuerySocialFacts(ctx context.Context, f FactFilter) ([]models.FactRow, error) {
	base := `SELECT client_id, date, ad_id, ad_name, campaign_id, campaign_name, platform, device,
		impressions, clicks, spend, leads, video_views, avg_watch_time
		FROM social_ad_facts WHERE client_id = $1 AND date >= $2 AND date <= $3`
	args := []any{f.ClientID, f.Start, f.End}
	if f.CampaignID != "" {
		args = append(args, f.CampaignID)
		base += fmt.Sprintf(" AND campaign_id = $%d", len(args))
	}
	if f.Platform != "" {
		args = append(args, f.Platform)
		base += fmt.Sprintf(" AND platform = $%d", len(args))
	}
	if f.Device != "" {
		args = append(args, f.Device)
		base += fmt.Sprintf(" AND device = $%d", len(args))
	}
	base += " ORDER BY date, ad_id, platform, device"

	var out []models.FactRow
	err := p.pageQuery(ctx, base, args, func(rows *sql.Rows) error {
		var r models.FactRow
		if err := rows.Scan(&r.ClientID, &r.Date, &r.AdID, &r.AdName, &r.CampaignID, &r.CampaignName,
			&r.Platform, &r.Device, &r.Impressions, &r.Clicks, &r.Spend, &r.Leads, &r.VideoViews, &r.AvgWatchTime); err != nil {
			return err
		}
		r.Source = models.SourcePaidSocial
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query social facts: %w", err)
	}
	return out, nil
}

// QuerySearchFacts reads every local-search row matching the filter, ordered by
// date then keyword.
func (p *Postgres) QuerySearchFacts(ctx context.Context, f FactFilter) ([]models.FactRow, error) {
	base := `SELECT client_id, date, keyword, campaign_id, campaign_name, device,
		impressions, clicks, spend, leads, avg_rank
		FROM search_keyword_facts WHERE client_id = $1 AND date >= $2 AND date <= $3`
	args := []any{f.ClientID, f.Start, f.End}
	if f.CampaignID != "" {
		args = append(args, f.CampaignID)
		base += fmt.Sprintf(" AND campaign_id = $%d", len(args))
	}
	if f.Device != "" {
		args = append(args, f.Device)
		base += fmt.Sprintf(" AND device = $%d", len(args))
	}
	if f.Keyword != "" {
		args = append(args, f.Keyword)
		base += fmt.Sprintf(" AND keyword = $%d", len(args))
	}
	base += " ORDER BY date, keyword, device"

	var out []models.FactRow
	err := p.pageQuery(ctx, base, args, func(rows *sql.Rows) error {
		var r models.FactRow
		if err := rows.Scan(&r.ClientID, &r.Date, &r.Keyword, &r.CampaignID, &r.CampaignName,
			&r.Device, &r.Impressions, &r.Clicks, &r.Spend, &r.Leads, &r.AvgRank); err != nil {
			return err
		}
		r.Source = models.SourceLocalSearch
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query search facts: %w", err)
	}
	return out, nil
}

// pageQuery runs base repeatedly with LIMIT/OFFSET until a short page signals
// the end of the window.
func (p *Postgres) pageQuery(ctx context.Context, base string, args []any, scan func(*sql.Rows) error) error {
	size := p.pageSize
	if size <= 0 {
		size = defaultPageSize
	}
	limitIdx := len(args) + 1
	offsetIdx := len(args) + 2
	q := base + fmt.Sprintf(" LIMIT $%d OFFSET $%d", limitIdx, offsetIdx)

	for offset := 0; ; offset += size {
		pageArgs := append(append([]any{}, args...), size, offset)
		rows, err := p.DB.QueryContext(ctx, q, pageArgs...)
		if err != nil {
			return err
		}
		n := 0
		for rows.Next() {
			if err := scan(rows); err != nil {
				_ = rows.Close()
				return err
			}
			n++
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		_ = rows.Close()
		if n < size {
			return nil
		}
	}
}

// DistinctClients lists every client that has facts in either table.
func (p *Postgres) DistinctClients(ctx context.Context) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT client_id FROM social_ad_facts
		UNION SELECT client_id FROM search_keyword_facts ORDER BY client_id`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
