package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyeonlab/adlens/internal/audit"
	"github.com/hyeonlab/adlens/internal/db"
	"github.com/hyeonlab/adlens/internal/middleware"
	"github.com/hyeonlab/adlens/internal/models"
	"github.com/hyeonlab/adlens/internal/narrative"
	"github.com/hyeonlab/adlens/internal/report"
	"github.com/hyeonlab/adlens/internal/requestmeta"
)

// reportQuery is the parsed request surface shared by every report handler.
type reportQuery struct {
	ClientID string
	From     time.Time
	To       time.Time
	Views    report.View
	RawViews string
	Filter   db.FactFilter
}

// parseReportQuery validates the common query params. from/to default to the
// configured trailing window ending today.
func (s *Server) parseReportQuery(r *http.Request) (reportQuery, error) {
	q := r.URL.Query()

	rq := reportQuery{ClientID: q.Get("client_id"), RawViews: q.Get("view")}
	if rq.ClientID == "" {
		return rq, fmt.Errorf("client_id is required")
	}

	days := s.Config.DefaultViewDays
	if days <= 0 {
		days = 30
	}
	rq.To = time.Now().UTC().Truncate(24 * time.Hour)
	rq.From = rq.To.AddDate(0, 0, -(days - 1))

	if raw := q.Get("from"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return rq, fmt.Errorf("invalid from date %q", raw)
		}
		rq.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return rq, fmt.Errorf("invalid to date %q", raw)
		}
		rq.To = t
	}
	if rq.To.Before(rq.From) {
		return rq, fmt.Errorf("to date precedes from date")
	}

	views, err := report.ParseViews(rq.RawViews)
	if err != nil {
		return rq, err
	}
	rq.Views = views

	rq.Filter = db.FactFilter{
		ClientID:   rq.ClientID,
		Start:      rq.From,
		End:        rq.To,
		CampaignID: q.Get("campaign_id"),
		Platform:   q.Get("platform"),
		Device:     q.Get("device"),
		Keyword:    q.Get("keyword"),
	}
	return rq, nil
}

// entityDim maps the dim query param to a fold dimension, with a per-source
// default.
func entityDim(r *http.Request, def report.EntityDim) (report.EntityDim, error) {
	switch r.URL.Query().Get("dim") {
	case "":
		return def, nil
	case "ad":
		return report.ByAd, nil
	case "campaign":
		return report.ByCampaign, nil
	case "keyword":
		return report.ByKeyword, nil
	default:
		return def, fmt.Errorf("unknown dim %q", r.URL.Query().Get("dim"))
	}
}

// SocialReportHandler serves GET /api/reports/social.
func (s *Server) SocialReportHandler(w http.ResponseWriter, r *http.Request) {
	s.sourceReport(w, r, "reports_social", models.SourcePaidSocial)
}

// SearchReportHandler serves GET /api/reports/search.
func (s *Server) SearchReportHandler(w http.ResponseWriter, r *http.Request) {
	s.sourceReport(w, r, "reports_search", models.SourceLocalSearch)
}

// sourceReport is the shared single-source report flow: parse, read the fact
// window, fold, audit.
func (s *Server) sourceReport(w http.ResponseWriter, r *http.Request, endpoint string, source models.Source) {
	start := time.Now()
	log := middleware.LoggerFromRequest(r, s.Logger)

	rq, err := s.parseReportQuery(r)
	if err != nil {
		s.finish(endpoint, "GET", "400", start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		rows   []models.FactRow
		schema report.Schema
		dim    report.EntityDim
	)
	if source == models.SourcePaidSocial {
		schema = report.PaidSocialSchema()
		dim, err = entityDim(r, report.ByAd)
	} else {
		schema = report.LocalSearchSchema()
		dim, err = entityDim(r, report.ByKeyword)
	}
	if err != nil {
		s.finish(endpoint, "GET", "400", start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if source == models.SourcePaidSocial {
		rows, err = s.Facts.QuerySocialFacts(r.Context(), rq.Filter)
	} else {
		rows, err = s.Facts.QuerySearchFacts(r.Context(), rq.Filter)
	}
	if err != nil {
		log.Error("report query failed", zap.Error(err), zap.String("client_id", rq.ClientID))
		s.finish(endpoint, "GET", "500", start)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	res, err := report.Build(schema, rows, rq.Views, dim)
	if err != nil {
		log.Error("aggregation failed", zap.Error(err), zap.String("client_id", rq.ClientID))
		s.finish(endpoint, "GET", "500", start)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Metrics.IncrementReports(string(source))
	s.Metrics.RecordReportRowsScanned(len(rows))
	s.recordAudit(r, rq, string(source), len(rows), start)
	s.finish(endpoint, "GET", "200", start)
	s.writeJSON(w, http.StatusOK, res)
}

// combinedResponse is the merged two-source report payload.
type combinedResponse struct {
	Daily   []report.MergedDaily   `json:"daily"`
	Summary report.CombinedSummary `json:"summary"`
}

// CombinedReportHandler serves GET /api/reports/combined: both sources folded
// daily, joined on date, with spend normalized to KRW.
func (s *Server) CombinedReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "reports_combined"
	log := middleware.LoggerFromRequest(r, s.Logger)

	rq, err := s.parseReportQuery(r)
	if err != nil {
		s.finish(endpoint, "GET", "400", start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	social, search, err := s.readBoth(r.Context(), rq)
	if err != nil {
		log.Error("report query failed", zap.Error(err), zap.String("client_id", rq.ClientID))
		s.finish(endpoint, "GET", "500", start)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	merged := report.MergeDaily(
		report.PaidSocialSchema().FoldDaily(social),
		report.LocalSearchSchema().FoldDaily(search),
		s.Converter,
	)
	if merged == nil {
		merged = []report.MergedDaily{}
	}
	resp := combinedResponse{Daily: merged, Summary: report.SummarizeMerged(merged)}

	rowsScanned := len(social) + len(search)
	s.Metrics.IncrementReports("combined")
	s.Metrics.RecordReportRowsScanned(rowsScanned)
	s.recordAudit(r, rq, "combined", rowsScanned, start)
	s.finish(endpoint, "GET", "200", start)
	s.writeJSON(w, http.StatusOK, resp)
}

// compareResponse labels the fixed comparison rows with the source order.
type compareResponse struct {
	SourceA string                 `json:"source_a"`
	SourceB string                 `json:"source_b"`
	Rows    []report.ComparisonRow `json:"rows"`
}

// CompareReportHandler serves GET /api/reports/compare: paid-social (A)
// against local-search (B) over the same window, spend in KRW on both sides.
func (s *Server) CompareReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "reports_compare"
	log := middleware.LoggerFromRequest(r, s.Logger)

	rq, err := s.parseReportQuery(r)
	if err != nil {
		s.finish(endpoint, "GET", "400", start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	social, search, err := s.readBoth(r.Context(), rq)
	if err != nil {
		log.Error("report query failed", zap.Error(err), zap.String("client_id", rq.ClientID))
		s.finish(endpoint, "GET", "500", start)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	a := report.PaidSocialSchema().Summarize(social)
	b := report.LocalSearchSchema().Summarize(search)
	rows := report.Compare(
		report.CompareTotals{Spend: s.Converter.Convert(a.Spend), Impressions: a.Impressions, Clicks: a.Clicks},
		report.CompareTotals{Spend: b.Spend, Impressions: b.Impressions, Clicks: b.Clicks},
	)

	rowsScanned := len(social) + len(search)
	s.Metrics.IncrementReports("compare")
	s.Metrics.RecordReportRowsScanned(rowsScanned)
	s.recordAudit(r, rq, "compare", rowsScanned, start)
	s.finish(endpoint, "GET", "200", start)
	s.writeJSON(w, http.StatusOK, compareResponse{
		SourceA: string(models.SourcePaidSocial),
		SourceB: string(models.SourceLocalSearch),
		Rows:    rows,
	})
}

// narrativeResponse wraps the generated prose with the serialized numbers it
// was generated from, so the dashboard can show both.
type narrativeResponse struct {
	Narrative  string `json:"narrative"`
	Serialized string `json:"serialized"`
}

// NarrativeHandler serves GET /api/reports/narrative. Generation is optional
// infrastructure; an unconfigured generator is a 503, not a crash.
func (s *Server) NarrativeHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "reports_narrative"
	log := middleware.LoggerFromRequest(r, s.Logger)

	if s.Narrative == nil {
		s.finish(endpoint, "GET", "503", start)
		http.Error(w, "narrative generation not configured", http.StatusServiceUnavailable)
		return
	}

	rq, err := s.parseReportQuery(r)
	if err != nil {
		s.finish(endpoint, "GET", "400", start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	source := models.SourcePaidSocial
	schema := report.PaidSocialSchema()
	dimDefault := report.ByCampaign
	if r.URL.Query().Get("source") == string(models.SourceLocalSearch) {
		source = models.SourceLocalSearch
		schema = report.LocalSearchSchema()
		dimDefault = report.ByKeyword
	}
	dim, err := entityDim(r, dimDefault)
	if err != nil {
		s.finish(endpoint, "GET", "400", start)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var rows []models.FactRow
	if source == models.SourcePaidSocial {
		rows, err = s.Facts.QuerySocialFacts(r.Context(), rq.Filter)
	} else {
		rows, err = s.Facts.QuerySearchFacts(r.Context(), rq.Filter)
	}
	if err != nil {
		log.Error("report query failed", zap.Error(err), zap.String("client_id", rq.ClientID))
		s.finish(endpoint, "GET", "500", start)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	res, err := report.Build(schema, rows, report.ViewWeekly|report.ViewEntity|report.ViewSummary, dim)
	if err != nil {
		s.finish(endpoint, "GET", "500", start)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	topN := 5
	if raw := r.URL.Query().Get("top"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			topN = n
		}
	}
	serialized := narrative.Serialize(narrative.Input{
		ClientID:  rq.ClientID,
		Source:    string(source),
		Summary:   res.Summary,
		Weekly:    res.Weekly,
		Entities:  res.Entities,
		TopN:      topN,
		EntityDim: dim.String(),
	})

	genCtx := r.Context()
	if s.Config.NarrativeTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(genCtx, s.Config.NarrativeTimeout)
		defer cancel()
	}
	genStart := time.Now()
	text, err := s.Narrative.Generate(genCtx, serialized)
	s.Metrics.RecordNarrativeLatency(time.Since(genStart))
	if err != nil {
		s.Metrics.IncrementNarrativeRequests("error")
		log.Error("narrative generation failed", zap.Error(err), zap.String("client_id", rq.ClientID))
		s.finish(endpoint, "GET", "502", start)
		http.Error(w, "narrative generation failed", http.StatusBadGateway)
		return
	}
	s.Metrics.IncrementNarrativeRequests("ok")

	s.recordAudit(r, rq, "narrative", len(rows), start)
	s.finish(endpoint, "GET", "200", start)
	s.writeJSON(w, http.StatusOK, narrativeResponse{Narrative: text, Serialized: serialized})
}

// readBoth fetches the window from both fact tables. Source-specific filter
// fields only constrain their own table.
func (s *Server) readBoth(ctx context.Context, rq reportQuery) (social, search []models.FactRow, err error) {
	socialFilter := rq.Filter
	socialFilter.Keyword = ""
	social, err = s.Facts.QuerySocialFacts(ctx, socialFilter)
	if err != nil {
		return nil, nil, err
	}
	searchFilter := rq.Filter
	searchFilter.Platform = ""
	search, err = s.Facts.QuerySearchFacts(ctx, searchFilter)
	if err != nil {
		return nil, nil, err
	}
	return social, search, nil
}

// recordAudit writes the report event trail. Audit failures never fail the
// report that already succeeded.
func (s *Server) recordAudit(r *http.Request, rq reportQuery, reportType string, rowsScanned int, start time.Time) {
	if s.Audit == nil {
		return
	}
	ev := audit.ReportEvent{
		RequestID:   uuid.NewString(),
		ClientID:    rq.ClientID,
		ReportType:  reportType,
		Views:       rq.RawViews,
		StartDate:   rq.From,
		EndDate:     rq.To,
		RowsScanned: int64(rowsScanned),
		DurationMS:  float64(time.Since(start).Microseconds()) / 1000,
		Caller:      requestmeta.FromRequest(r, s.GeoIP),
	}
	if err := s.Audit.RecordReport(r.Context(), ev); err != nil && !errors.Is(err, audit.ErrUnavailable) {
		s.Logger.Warn("record report audit event", zap.Error(err))
	}
}
