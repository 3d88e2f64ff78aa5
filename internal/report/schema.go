// Package report implements the aggregation core of the dashboard: it folds
// immutable daily fact rows into daily, weekly, monthly and entity-level
// buckets with derived ratios, merges the two ad sources into one unified
// series, and reduces full row sets into headline KPI summaries.
//
// Every derived ratio is computed from a bucket's own accumulated totals,
// never by averaging child buckets' ratios. The single exception is the
// average keyword rank, which is an unweighted mean of per-row rank values at
// every level; that matches the behavior the source platform reports and is
// kept intentionally.
package report

import (
	"github.com/hyeonlab/adlens/internal/models"
)

// CostBasis selects the denominator of the cost ratio a schema derives.
type CostBasis int

const (
	// CostPerClick derives CPC = spend / clicks.
	CostPerClick CostBasis = iota
	// CostPerLead derives CPL = spend / leads.
	CostPerLead
)

// Schema configures the rollup fold for one fact source: which measures are
// tracked, which cost ratio is derived, and how currency amounts are rounded
// when buckets are emitted. Each call site configures a schema instead of
// reimplementing the fold.
type Schema struct {
	Source           models.Source
	Cost             CostBasis
	TrackVideo       bool
	TrackRank        bool
	CurrencyDecimals int
}

// PaidSocialSchema returns the measure schema for the paid-social platform:
// lead-based cost ratio, video watch-time tracking, USD amounts with two
// decimal places.
func PaidSocialSchema() Schema {
	return Schema{
		Source:           models.SourcePaidSocial,
		Cost:             CostPerLead,
		TrackVideo:       true,
		CurrencyDecimals: 2,
	}
}

// LocalSearchSchema returns the measure schema for the local-search platform:
// click-based cost ratio, keyword rank tracking, zero-decimal KRW amounts.
func LocalSearchSchema() Schema {
	return Schema{
		Source:           models.SourceLocalSearch,
		Cost:             CostPerClick,
		TrackRank:        true,
		CurrencyDecimals: 0,
	}
}

// Measures holds the additive totals accumulated into every bucket.
type Measures struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Spend       float64 `json:"spend"`
	Leads       int64   `json:"leads"`
	VideoViews  int64   `json:"video_views"`
}

// Derived holds the ratios computed from a bucket's totals after
// accumulation is complete. Values are rounded for display when the bucket
// is emitted.
type Derived struct {
	CTR          float64 `json:"ctr"`            // percentage, clicks/impressions*100
	CPC          float64 `json:"cpc"`            // spend/clicks
	CPL          float64 `json:"cpl"`            // spend/leads
	AvgWatchTime float64 `json:"avg_watch_time"` // view-weighted seconds
	AvgRank      float64 `json:"avg_rank"`       // unweighted mean of per-row ranks
}

// accum is the full-precision accumulator behind every bucket. Buckets keep
// their accumulator so coarser folds re-sum raw measures instead of per-day
// ratios.
type accum struct {
	Measures
	watchTimeWeighted float64 // Σ video_views_i × avg_watch_time_i
	rankSum           float64 // Σ per-row avg_rank
	rankRows          int64   // row count contributing to rankSum
}

func (a *accum) addRow(row models.FactRow, s Schema) {
	a.Impressions += row.Impressions
	a.Clicks += row.Clicks
	a.Spend += row.Spend
	a.Leads += row.Leads
	if s.TrackVideo {
		a.VideoViews += row.VideoViews
		a.watchTimeWeighted += float64(row.VideoViews) * row.AvgWatchTime
	}
	if s.TrackRank {
		a.rankSum += row.AvgRank
		a.rankRows++
	}
}

func (a *accum) merge(b accum) {
	a.Impressions += b.Impressions
	a.Clicks += b.Clicks
	a.Spend += b.Spend
	a.Leads += b.Leads
	a.VideoViews += b.VideoViews
	a.watchTimeWeighted += b.watchTimeWeighted
	a.rankSum += b.rankSum
	a.rankRows += b.rankRows
}

// derive computes the schema's ratios from accumulated totals. Zero
// denominators resolve to 0 by policy, never NaN or Inf.
func (s Schema) derive(a accum) Derived {
	var d Derived
	if a.Impressions > 0 {
		d.CTR = float64(a.Clicks) / float64(a.Impressions) * 100
	}
	if a.Clicks > 0 {
		d.CPC = a.Spend / float64(a.Clicks)
	}
	if s.Cost == CostPerLead && a.Leads > 0 {
		d.CPL = a.Spend / float64(a.Leads)
	}
	if s.TrackVideo && a.VideoViews > 0 {
		d.AvgWatchTime = a.watchTimeWeighted / float64(a.VideoViews)
	}
	if s.TrackRank && a.rankRows > 0 {
		d.AvgRank = a.rankSum / float64(a.rankRows)
	}
	return d
}

// rounded returns the display form of a derived set: two decimals for CTR,
// one for rank, currency precision for cost ratios.
func (s Schema) rounded(d Derived) Derived {
	return Derived{
		CTR:          round2(d.CTR),
		CPC:          roundTo(d.CPC, s.CurrencyDecimals),
		CPL:          roundTo(d.CPL, s.CurrencyDecimals),
		AvgWatchTime: round1(d.AvgWatchTime),
		AvgRank:      round1(d.AvgRank),
	}
}

// roundedMeasures rounds the spend total at the schema's currency precision
// for emission.
func (s Schema) roundedMeasures(m Measures) Measures {
	m.Spend = roundTo(m.Spend, s.CurrencyDecimals)
	return m
}
