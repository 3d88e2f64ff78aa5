package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/hyeonlab/adlens/internal/observability"
	"github.com/hyeonlab/adlens/internal/requestmeta"
)

// Recorder defines the interface for report audit operations. Implementations
// should handle cases where underlying storage is unavailable by returning
// ErrUnavailable.
type Recorder interface {
	// RecordReport records that a report was generated for a client.
	RecordReport(ctx context.Context, ev ReportEvent) error
	// RecordIngest records the outcome of an ingestion run.
	RecordIngest(ctx context.Context, source, status string, rows int, took time.Duration) error
}

// Audit wraps a ClickHouse connection holding the report audit trail.
type Audit struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

// ReportEvent mirrors a row in the report_events table.
type ReportEvent struct {
	Timestamp   time.Time        `json:"timestamp"`
	RequestID   string           `json:"request_id"`
	ClientID    string           `json:"client_id"`
	ReportType  string           `json:"report_type"`
	Views       string           `json:"views"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	RowsScanned int64            `json:"rows_scanned"`
	DurationMS  float64          `json:"duration_ms"`
	Caller      requestmeta.Meta `json:"caller"`
}

// ErrUnavailable is returned when the audit DB is not configured.
var ErrUnavailable = fmt.Errorf("audit unavailable")

// InitClickHouse connects to ClickHouse and ensures the audit tables exist.
func InitClickHouse(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration, metrics observability.MetricsRegistry) (*Audit, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	create := `CREATE TABLE IF NOT EXISTS report_events (
       timestamp    DateTime,
       request_id   String,
       client_id    String,
       report_type  String,
       views        String,
       start_date   Date,
       end_date     Date,
       rows_scanned Int64,
       duration_ms  Float64,
       device_type  Nullable(String),
       browser      Nullable(String),
       is_bot       UInt8,
       ip           Nullable(String),
       country      Nullable(String)
   ) ENGINE=MergeTree() ORDER BY (client_id, timestamp)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create report_events: %w", err)
	}

	createIngest := `CREATE TABLE IF NOT EXISTS ingest_events (
       timestamp   DateTime,
       source      String,
       status      String,
       rows        Int64,
       duration_ms Float64
   ) ENGINE=MergeTree() ORDER BY (source, timestamp)`
	if _, err := db.ExecContext(context.Background(), createIngest); err != nil {
		return nil, fmt.Errorf("clickhouse create ingest_events: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Audit{DB: db, Metrics: metrics}, nil
}

// RecordReport inserts a single report event row. Failures are counted but the
// report itself already succeeded, so callers typically log and move on.
func (a *Audit) RecordReport(ctx context.Context, ev ReportEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	var dt, browser, ip, country sql.NullString
	if ev.Caller.DeviceType != "" {
		dt = sql.NullString{String: ev.Caller.DeviceType, Valid: true}
	}
	if ev.Caller.Browser != "" {
		browser = sql.NullString{String: ev.Caller.Browser, Valid: true}
	}
	if ev.Caller.IP != "" {
		ip = sql.NullString{String: ev.Caller.IP, Valid: true}
	}
	if ev.Caller.Country != "" {
		country = sql.NullString{String: ev.Caller.Country, Valid: true}
	}
	var bot uint8
	if ev.Caller.IsBot {
		bot = 1
	}

	stmt := `INSERT INTO report_events (timestamp, request_id, client_id, report_type, views, start_date, end_date, rows_scanned, duration_ms, device_type, browser, is_bot, ip, country) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt, ts, ev.RequestID, ev.ClientID, ev.ReportType, ev.Views, ev.StartDate, ev.EndDate, ev.RowsScanned, ev.DurationMS, dt, browser, bot, ip, country); err != nil {
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("report_type", ev.ReportType))
		if a.Metrics != nil {
			a.Metrics.IncrementAuditWriteErrors()
		}
		return fmt.Errorf("insert report event: %w", err)
	}
	return nil
}

// RecordIngest inserts a single ingest event row.
func (a *Audit) RecordIngest(ctx context.Context, source, status string, rows int, took time.Duration) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	stmt := `INSERT INTO ingest_events (timestamp, source, status, rows, duration_ms) VALUES (?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt, time.Now(), source, status, int64(rows), float64(took.Milliseconds())); err != nil {
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("source", source))
		if a.Metrics != nil {
			a.Metrics.IncrementAuditWriteErrors()
		}
		return fmt.Errorf("insert ingest event: %w", err)
	}
	return nil
}

// ReportEventsByClient returns recent report events for a client ordered by
// timestamp descending.
func (a *Audit) ReportEventsByClient(ctx context.Context, clientID string, limit int) ([]ReportEvent, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT timestamp, request_id, client_id, report_type, views, start_date, end_date, rows_scanned, duration_ms, device_type, browser, is_bot, ip, country FROM report_events WHERE client_id=? ORDER BY timestamp DESC LIMIT ?`
	rows, err := a.DB.QueryContext(ctx, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query report events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var events []ReportEvent
	for rows.Next() {
		var ev ReportEvent
		var dt, browser, ip, country sql.NullString
		var bot uint8
		if err := rows.Scan(&ev.Timestamp, &ev.RequestID, &ev.ClientID, &ev.ReportType, &ev.Views, &ev.StartDate, &ev.EndDate, &ev.RowsScanned, &ev.DurationMS, &dt, &browser, &bot, &ip, &country); err != nil {
			return nil, fmt.Errorf("scan report event: %w", err)
		}
		ev.Caller = requestmeta.Meta{
			DeviceType: dt.String,
			Browser:    browser.String,
			IsBot:      bot == 1,
			IP:         ip.String,
			Country:    country.String,
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return events, nil
}

// Close terminates the ClickHouse connection.
func (a *Audit) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}
