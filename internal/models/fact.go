// Package models defines the fact-row data model shared by ingestion,
// the fact store and the report engine.
package models

import (
	"fmt"
	"time"
)

// Source identifies which ad platform a fact row came from.
type Source string

const (
	// SourcePaidSocial is the paid-social ad platform. Spend is in USD.
	SourcePaidSocial Source = "paid_social"
	// SourceLocalSearch is the local-search keyword ad platform. Spend is in KRW.
	SourceLocalSearch Source = "local_search"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourcePaidSocial || s == SourceLocalSearch
}

// FactRow is one immutable daily observation for one entity. Rows are written
// once by ingestion and never mutated by the report engine.
//
// Dimensional attributes are source-specific: paid-social rows carry the
// ad/campaign/platform/device fields, local-search rows carry Keyword.
// Measures are always well-formed non-negative numbers; null or malformed
// values are coerced to zero at the ingestion boundary before a row is built.
type FactRow struct {
	ClientID string    `json:"client_id"`
	Date     time.Time `json:"date"` // calendar date, normalized to midnight UTC
	Source   Source    `json:"source"`

	// Paid-social dimensions.
	AdID         string `json:"ad_id,omitempty"`
	AdName       string `json:"ad_name,omitempty"`
	CampaignID   string `json:"campaign_id,omitempty"`
	CampaignName string `json:"campaign_name,omitempty"`
	Platform     string `json:"platform,omitempty"`
	Device       string `json:"device,omitempty"`

	// Local-search dimension.
	Keyword string `json:"keyword,omitempty"`

	// Measures. Spend is in the source-native currency.
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
	Spend        float64 `json:"spend"`
	Leads        int64   `json:"leads,omitempty"`         // paid-social only
	VideoViews   int64   `json:"video_views,omitempty"`   // paid-social only
	AvgWatchTime float64 `json:"avg_watch_time,omitempty"` // seconds, paid-social only
	AvgRank      float64 `json:"avg_rank,omitempty"`       // local-search only, 1.0 = top
}

// Day returns the row's date truncated to midnight UTC.
func (f FactRow) Day() time.Time {
	return time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
}

// EntityKey returns the natural grouping key for entity-level rollups:
// the keyword for local-search rows, the ad ID for paid-social rows.
func (f FactRow) EntityKey() string {
	if f.Source == SourceLocalSearch {
		return f.Keyword
	}
	return f.AdID
}

// Validate checks precondition invariants on a fact row. Negative measures
// indicate an upstream data-quality bug and are surfaced as an error rather
// than clamped.
func (f FactRow) Validate() error {
	if f.ClientID == "" {
		return fmt.Errorf("fact row: missing client_id")
	}
	if !f.Source.Valid() {
		return fmt.Errorf("fact row: unknown source %q", f.Source)
	}
	if f.Date.IsZero() {
		return fmt.Errorf("fact row: missing date")
	}
	if f.Impressions < 0 || f.Clicks < 0 || f.Leads < 0 || f.VideoViews < 0 {
		return fmt.Errorf("fact row %s/%s: negative count measure", f.ClientID, f.Day().Format("2006-01-02"))
	}
	if f.Spend < 0 || f.AvgWatchTime < 0 || f.AvgRank < 0 {
		return fmt.Errorf("fact row %s/%s: negative decimal measure", f.ClientID, f.Day().Format("2006-01-02"))
	}
	switch f.Source {
	case SourcePaidSocial:
		if f.AdID == "" {
			return fmt.Errorf("fact row: paid-social row missing ad_id")
		}
	case SourceLocalSearch:
		if f.Keyword == "" {
			return fmt.Errorf("fact row: local-search row missing keyword")
		}
	}
	return nil
}
