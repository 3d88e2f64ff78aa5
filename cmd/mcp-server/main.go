package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/hyeonlab/adlens/internal/config"
	"github.com/hyeonlab/adlens/internal/db"
	"github.com/hyeonlab/adlens/internal/models"
	"github.com/hyeonlab/adlens/internal/observability"
	"github.com/hyeonlab/adlens/internal/report"
)

// GetPerformanceSummaryInput selects a client, source and date window.
type GetPerformanceSummaryInput struct {
	ClientID  string `json:"client_id"`
	Source    string `json:"source"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type GetPerformanceSummaryOutput struct {
	Source  string         `json:"source"`
	Summary report.Summary `json:"summary"`
}

type GetTopEntitiesInput struct {
	ClientID  string `json:"client_id"`
	Source    string `json:"source"`
	Dimension string `json:"dimension,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Limit     int    `json:"limit,omitempty"`
}

type GetTopEntitiesOutput struct {
	Dimension string                `json:"dimension"`
	Entities  []report.EntityBucket `json:"entities"`
}

type CompareSourcesInput struct {
	ClientID  string `json:"client_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type CompareSourcesOutput struct {
	SourceA string                 `json:"source_a"`
	SourceB string                 `json:"source_b"`
	Rows    []report.ComparisonRow `json:"rows"`
}

// ReportServer holds the dependencies the MCP tools read through.
type ReportServer struct {
	pg        *db.Postgres
	converter report.Converter
	logger    *zap.Logger
}

func parseWindow(clientID, start, end string) (db.FactFilter, error) {
	if clientID == "" {
		return db.FactFilter{}, fmt.Errorf("client_id is required")
	}
	from, err := time.ParseInLocation("2006-01-02", start, time.UTC)
	if err != nil {
		return db.FactFilter{}, fmt.Errorf("invalid start_date %q", start)
	}
	to, err := time.ParseInLocation("2006-01-02", end, time.UTC)
	if err != nil {
		return db.FactFilter{}, fmt.Errorf("invalid end_date %q", end)
	}
	if to.Before(from) {
		return db.FactFilter{}, fmt.Errorf("end_date precedes start_date")
	}
	return db.FactFilter{ClientID: clientID, Start: from, End: to}, nil
}

func (s *ReportServer) queryFacts(ctx context.Context, source string, filter db.FactFilter) ([]models.FactRow, report.Schema, error) {
	switch models.Source(source) {
	case models.SourcePaidSocial:
		rows, err := s.pg.QuerySocialFacts(ctx, filter)
		return rows, report.PaidSocialSchema(), err
	case models.SourceLocalSearch:
		rows, err := s.pg.QuerySearchFacts(ctx, filter)
		return rows, report.LocalSearchSchema(), err
	default:
		return nil, report.Schema{}, fmt.Errorf("unknown source %q", source)
	}
}

// GetPerformanceSummary implements the get_performance_summary tool.
func (s *ReportServer) GetPerformanceSummary(ctx context.Context, req *mcp.CallToolRequest, input GetPerformanceSummaryInput) (*mcp.CallToolResult, GetPerformanceSummaryOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter, err := parseWindow(input.ClientID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, GetPerformanceSummaryOutput{}, err
	}
	rows, schema, err := s.queryFacts(ctx, input.Source, filter)
	if err != nil {
		return nil, GetPerformanceSummaryOutput{}, err
	}

	s.logger.Info("performance summary requested",
		zap.String("client_id", input.ClientID),
		zap.String("source", input.Source),
		zap.Int("rows", len(rows)))

	return nil, GetPerformanceSummaryOutput{
		Source:  input.Source,
		Summary: schema.Summarize(rows),
	}, nil
}

// GetTopEntities implements the get_top_entities tool.
func (s *ReportServer) GetTopEntities(ctx context.Context, req *mcp.CallToolRequest, input GetTopEntitiesInput) (*mcp.CallToolResult, GetTopEntitiesOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter, err := parseWindow(input.ClientID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, GetTopEntitiesOutput{}, err
	}
	rows, schema, err := s.queryFacts(ctx, input.Source, filter)
	if err != nil {
		return nil, GetTopEntitiesOutput{}, err
	}

	dim := report.ByCampaign
	if models.Source(input.Source) == models.SourceLocalSearch {
		dim = report.ByKeyword
	}
	switch input.Dimension {
	case "":
	case "ad":
		dim = report.ByAd
	case "campaign":
		dim = report.ByCampaign
	case "keyword":
		dim = report.ByKeyword
	default:
		return nil, GetTopEntitiesOutput{}, fmt.Errorf("unknown dimension %q", input.Dimension)
	}

	entities := schema.FoldEntities(rows, dim)
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(entities) > limit {
		entities = entities[:limit]
	}

	return nil, GetTopEntitiesOutput{Dimension: dim.String(), Entities: entities}, nil
}

// CompareSources implements the compare_sources tool. Paid-social spend is
// converted to KRW so both sides land in the same currency.
func (s *ReportServer) CompareSources(ctx context.Context, req *mcp.CallToolRequest, input CompareSourcesInput) (*mcp.CallToolResult, CompareSourcesOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter, err := parseWindow(input.ClientID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, CompareSourcesOutput{}, err
	}

	social, err := s.pg.QuerySocialFacts(ctx, filter)
	if err != nil {
		return nil, CompareSourcesOutput{}, err
	}
	search, err := s.pg.QuerySearchFacts(ctx, filter)
	if err != nil {
		return nil, CompareSourcesOutput{}, err
	}

	a := report.PaidSocialSchema().Summarize(social)
	b := report.LocalSearchSchema().Summarize(search)
	rows := report.Compare(
		report.CompareTotals{Spend: s.converter.Convert(a.Spend), Impressions: a.Impressions, Clicks: a.Clicks},
		report.CompareTotals{Spend: b.Spend, Impressions: b.Impressions, Clicks: b.Clicks},
	)

	return nil, CompareSourcesOutput{
		SourceA: string(models.SourcePaidSocial),
		SourceB: string(models.SourceLocalSearch),
		Rows:    rows,
	}, nil
}

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService("adlens-mcp")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()
	logger.Info("Connected to PostgreSQL")

	reportServer := &ReportServer{
		pg:        pg,
		converter: report.Converter{Rate: cfg.KRWPerUSD, Decimals: 0},
		logger:    logger,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "adlens",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_performance_summary",
		Description: "Get overall-period KPI totals and ratios for one client and ad source",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"client_id": map[string]interface{}{
					"type":        "string",
					"description": "Client account to report on",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"paid_social", "local_search"},
					"description": "Ad source to summarize",
				},
				"start_date": map[string]interface{}{
					"type":        "string",
					"format":      "date",
					"description": "First date of the window (YYYY-MM-DD)",
				},
				"end_date": map[string]interface{}{
					"type":        "string",
					"format":      "date",
					"description": "Last date of the window (YYYY-MM-DD)",
				},
			},
			"required": []string{"client_id", "source", "start_date", "end_date"},
		},
	}, reportServer.GetPerformanceSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_top_entities",
		Description: "Rank ads, campaigns or keywords by spend for one client and window",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"client_id": map[string]interface{}{
					"type":        "string",
					"description": "Client account to report on",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"paid_social", "local_search"},
					"description": "Ad source to rank entities from",
				},
				"dimension": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"ad", "campaign", "keyword"},
					"description": "Entity dimension (optional, defaults per source)",
				},
				"start_date": map[string]interface{}{
					"type":        "string",
					"format":      "date",
					"description": "First date of the window (YYYY-MM-DD)",
				},
				"end_date": map[string]interface{}{
					"type":        "string",
					"format":      "date",
					"description": "Last date of the window (YYYY-MM-DD)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"description": "Maximum entities to return (optional, defaults to 10)",
				},
			},
			"required": []string{"client_id", "source", "start_date", "end_date"},
		},
	}, reportServer.GetTopEntities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_sources",
		Description: "Compare paid-social and local-search totals side by side with spend normalized to KRW",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"client_id": map[string]interface{}{
					"type":        "string",
					"description": "Client account to report on",
				},
				"start_date": map[string]interface{}{
					"type":        "string",
					"format":      "date",
					"description": "First date of the window (YYYY-MM-DD)",
				},
				"end_date": map[string]interface{}{
					"type":        "string",
					"format":      "date",
					"description": "Last date of the window (YYYY-MM-DD)",
				},
			},
			"required": []string{"client_id", "start_date", "end_date"},
		},
	}, reportServer.CompareSources)

	stdioTransport := &mcp.StdioTransport{}

	var logBuffer bytes.Buffer
	loggingTransport := &mcp.LoggingTransport{
		Transport: stdioTransport,
		Writer:    &logBuffer,
	}

	logger.Info("MCP Server running via stdio")

	if err := server.Run(context.Background(), loggingTransport); err != nil {
		logger.Fatal("Server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}
