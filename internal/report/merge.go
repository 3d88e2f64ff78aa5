package report

import (
	"sort"
	"time"
)

// MergedDaily carries one date's raw measures from both sources plus combined
// totals with spend normalized to KRW. Dates present in only one source are
// zero-filled on the other side, never dropped.
type MergedDaily struct {
	Date             time.Time `json:"date"`
	Social           Measures  `json:"social"` // spend in USD
	Search           Measures  `json:"search"` // spend in KRW
	TotalSpend       float64   `json:"total_spend"` // KRW, social spend converted
	TotalImpressions int64     `json:"total_impressions"`
	TotalClicks      int64     `json:"total_clicks"`
}

// CombinedSummary is the unified KPI reduction over a merged daily series.
type CombinedSummary struct {
	TotalSpend       float64   `json:"total_spend"` // KRW
	TotalImpressions int64     `json:"total_impressions"`
	TotalClicks      int64     `json:"total_clicks"`
	CTR              float64   `json:"ctr"`
	DataDays         int       `json:"data_days"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

// MergeDaily joins two independently aggregated daily sequences on date. The
// output covers the union of both date sets in ascending order; the merge is
// total and commutative over raw measures.
func MergeDaily(social, search []DailyBucket, conv Converter) []MergedDaily {
	socialByDate := make(map[time.Time]DailyBucket, len(social))
	for _, b := range social {
		socialByDate[b.Date] = b
	}
	searchByDate := make(map[time.Time]DailyBucket, len(search))
	for _, b := range search {
		searchByDate[b.Date] = b
	}

	dateSet := make(map[time.Time]struct{}, len(socialByDate)+len(searchByDate))
	for d := range socialByDate {
		dateSet[d] = struct{}{}
	}
	for d := range searchByDate {
		dateSet[d] = struct{}{}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	merged := make([]MergedDaily, 0, len(dates))
	for _, d := range dates {
		so := socialByDate[d].Measures // zero-valued when absent
		se := searchByDate[d].Measures
		merged = append(merged, MergedDaily{
			Date:             d,
			Social:           so,
			Search:           se,
			TotalSpend:       conv.Convert(so.Spend) + se.Spend,
			TotalImpressions: so.Impressions + se.Impressions,
			TotalClicks:      so.Clicks + se.Clicks,
		})
	}
	return merged
}

// SummarizeMerged reduces a merged daily series into the unified headline
// KPIs. CTR is derived once from the combined totals.
func SummarizeMerged(merged []MergedDaily) CombinedSummary {
	var s CombinedSummary
	for _, m := range merged {
		s.TotalSpend += m.TotalSpend
		s.TotalImpressions += m.TotalImpressions
		s.TotalClicks += m.TotalClicks
	}
	if len(merged) > 0 {
		s.DataDays = len(merged)
		s.StartDate = merged[0].Date
		s.EndDate = merged[len(merged)-1].Date
	}
	if s.TotalImpressions > 0 {
		s.CTR = round2(float64(s.TotalClicks) / float64(s.TotalImpressions) * 100)
	}
	return s
}
