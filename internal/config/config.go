package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string

	RedisAddr     string
	ClickHouseDSN string
	PostgresDSN   string
	GeoIPDB       string

	// Reporting configuration
	KRWPerUSD       float64
	DefaultViewDays int

	// Ingestion configuration
	IngestEnabled     bool
	IngestInterval    time.Duration
	IngestLockTTL     time.Duration
	IngestLookback    int
	SocialAPIBaseURL  string
	SocialAPIToken    string
	SocialAPIPageSize int

	// API auth and rate limiting
	APISecret           string
	RateLimitEnabled    bool
	RateLimitCapacity   int
	RateLimitRefillRate int

	// AI narrative configuration
	NarrativeEnabled bool
	BedrockModelID   string
	AWSRegion        string
	NarrativeTimeout time.Duration

	// Database connection pooling configuration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// ClickHouse connection pooling configuration
	CHMaxOpenConns    int
	CHMaxIdleConns    int
	CHConnMaxLifetime time.Duration
	CHConnMaxIdleTime time.Duration

	// Tracing configuration
	TracingEnabled    bool
	TempoEndpoint     string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8787")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 10*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 30*time.Second)
	cfg.ServiceName = getenv("SERVICE_NAME", "adlens")

	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default?async_insert=1&wait_for_async_insert=1")
	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")
	cfg.GeoIPDB = getenv("GEOIP_DB", "")

	// Local-search spend is stored in KRW; paid-social spend converts at this rate
	// when the two sources are merged.
	cfg.KRWPerUSD = envFloat("KRW_PER_USD", 1350)
	cfg.DefaultViewDays = envInt("DEFAULT_VIEW_DAYS", 30)

	cfg.IngestEnabled = envBool("INGEST_ENABLED", true)
	cfg.IngestInterval = envDuration("INGEST_INTERVAL", time.Hour)
	cfg.IngestLockTTL = envDuration("INGEST_LOCK_TTL", 10*time.Minute)
	cfg.IngestLookback = envInt("INGEST_LOOKBACK_DAYS", 3)
	cfg.SocialAPIBaseURL = getenv("SOCIAL_API_BASE_URL", "")
	cfg.SocialAPIToken = getenv("SOCIAL_API_TOKEN", "")
	cfg.SocialAPIPageSize = envInt("SOCIAL_API_PAGE_SIZE", 500)

	cfg.APISecret = getenv("API_SECRET", "")
	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimitCapacity = envInt("RATE_LIMIT_CAPACITY", 100)
	cfg.RateLimitRefillRate = envInt("RATE_LIMIT_REFILL_RATE", 10)

	cfg.NarrativeEnabled = envBool("NARRATIVE_ENABLED", false)
	cfg.BedrockModelID = getenv("BEDROCK_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0")
	cfg.AWSRegion = getenv("AWS_REGION", "us-east-1")
	cfg.NarrativeTimeout = envDuration("NARRATIVE_TIMEOUT", 20*time.Second)

	// Database connection pooling configuration
	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)

	// ClickHouse connection pooling configuration
	cfg.CHMaxOpenConns = envInt("CH_MAX_OPEN_CONNS", 50)
	cfg.CHMaxIdleConns = envInt("CH_MAX_IDLE_CONNS", 10)
	cfg.CHConnMaxLifetime = envDuration("CH_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.CHConnMaxIdleTime = envDuration("CH_CONN_MAX_IDLE_TIME", 1*time.Minute)

	// Tracing configuration
	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TempoEndpoint = getenv("TEMPO_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable, returning def when unset or
// invalid.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

// envFloat parses a float environment variable, returning def when unset or
// invalid.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
