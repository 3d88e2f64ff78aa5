package report

import (
	"time"

	"github.com/hyeonlab/adlens/internal/models"
)

// Summary is the single overall-period reduction of a filtered row set. It
// backs both the headline KPI cards and the grand-total row appended to
// period tables, so both always agree.
type Summary struct {
	Measures
	Derived
	UniqueEntities int       `json:"unique_entities"` // distinct entity keys seen
	DataDays       int       `json:"data_days"`       // distinct dates with ≥1 row
	StartDate      time.Time `json:"start_date"`      // zero when no data
	EndDate        time.Time `json:"end_date"`        // zero when no data
}

// Summarize reduces the full fact row set to grand totals with ratios derived
// once from those totals. An empty input yields all-zero totals with an empty
// date range; callers decide how to render the no-data state.
func (s Schema) Summarize(rows []models.FactRow) Summary {
	var a accum
	entities := make(map[string]struct{})
	days := make(map[time.Time]struct{})

	var first, last time.Time
	for _, row := range rows {
		a.addRow(row, s)
		if key := row.EntityKey(); key != "" {
			entities[key] = struct{}{}
		}
		day := row.Day()
		days[day] = struct{}{}
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}

	return Summary{
		Measures:       s.roundedMeasures(a.Measures),
		Derived:        s.rounded(s.derive(a)),
		UniqueEntities: len(entities),
		DataDays:       len(days),
		StartDate:      first,
		EndDate:        last,
	}
}
