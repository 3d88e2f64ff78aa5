// Package narrative turns report summaries into short prose for the dashboard.
// The aggregator knows nothing about prompt formats; this package owns the
// serialization of numbers into model input.
package narrative

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyeonlab/adlens/internal/report"
)

// Input is the flattened, prompt-ready view of one report.
type Input struct {
	ClientID  string
	Source    string
	Summary   report.Summary
	Weekly    []report.WeeklyBucket
	Entities  []report.EntityBucket
	TopN      int
	EntityDim string
}

// Serialize renders the report numbers as plain labeled lines. Plain text
// keeps the prompt model-agnostic and trivially inspectable in logs.
func Serialize(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "client: %s\n", in.ClientID)
	fmt.Fprintf(&b, "source: %s\n", in.Source)
	s := in.Summary
	if !s.StartDate.IsZero() {
		fmt.Fprintf(&b, "period: %s to %s (%d days with data)\n",
			s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"), s.DataDays)
	}
	fmt.Fprintf(&b, "totals: impressions=%d clicks=%d spend=%.2f leads=%d\n",
		s.Impressions, s.Clicks, s.Spend, s.Leads)
	fmt.Fprintf(&b, "ratios: ctr=%.2f%% cpc=%.2f cpl=%.2f\n", s.CTR, s.CPC, s.CPL)
	fmt.Fprintf(&b, "active %ss: %d\n", in.EntityDim, s.UniqueEntities)

	if len(in.Weekly) > 0 {
		b.WriteString("weekly trend:\n")
		for _, w := range in.Weekly {
			fmt.Fprintf(&b, "  %s: impressions=%d clicks=%d spend=%.2f (spend change %+.2f%%)\n",
				w.Label, w.Impressions, w.Clicks, w.Spend, w.SpendChange)
		}
	}

	top := topBySpend(in.Entities, in.TopN)
	if len(top) > 0 {
		fmt.Fprintf(&b, "top %ss by spend:\n", in.EntityDim)
		for i, e := range top {
			name := e.Name
			if name == "" {
				name = e.Key
			}
			fmt.Fprintf(&b, "  %d. %s: spend=%.2f clicks=%d ctr=%.2f%%\n", i+1, name, e.Spend, e.Clicks, e.CTR)
		}
	}

	return b.String()
}

// topBySpend returns the n highest-spending entities. The fold already orders
// by spend, but re-sorting keeps callers free to pass any slice.
func topBySpend(entities []report.EntityBucket, n int) []report.EntityBucket {
	if n <= 0 {
		n = 5
	}
	out := make([]report.EntityBucket, len(entities))
	copy(out, entities)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Spend > out[j].Spend })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
