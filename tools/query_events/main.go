package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/hyeonlab/adlens/internal/audit"
	"github.com/hyeonlab/adlens/internal/config"
	"github.com/hyeonlab/adlens/internal/observability"
)

func main() {
	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var clientID string
	var dsn string
	var limit int
	flag.StringVar(&clientID, "client", "", "client ID")
	flag.StringVar(&dsn, "dsn", "", "ClickHouse DSN")
	flag.IntVar(&limit, "limit", 50, "max events to return")
	flag.Parse()

	if clientID == "" {
		fmt.Fprintln(os.Stderr, "client required")
		os.Exit(1)
	}
	cfg := config.Load()
	if dsn == "" {
		dsn = cfg.ClickHouseDSN
	}

	a, err := audit.InitClickHouse(dsn, cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime, observability.NewNoOpRegistry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect clickhouse: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	events, err := a.ReportEventsByClient(context.Background(), clientID, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query events: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		fmt.Fprintf(os.Stderr, "encode events: %v\n", err)
		os.Exit(1)
	}
}
