package report

import (
	"fmt"
	"strings"

	"github.com/hyeonlab/adlens/internal/models"
)

// View selects which granularities a report request populates. Unselected
// arrays are returned empty rather than omitted so the response shape is
// stable for dashboard clients.
type View uint8

const (
	ViewDaily View = 1 << iota
	ViewWeekly
	ViewMonthly
	ViewEntity
	ViewSummary

	// ViewAll populates every granularity.
	ViewAll = ViewDaily | ViewWeekly | ViewMonthly | ViewEntity | ViewSummary
)

// ParseViews parses a comma-separated view list ("daily,weekly,summary").
// An empty string selects every view.
func ParseViews(raw string) (View, error) {
	if raw == "" {
		return ViewAll, nil
	}
	var v View
	for _, name := range strings.Split(raw, ",") {
		switch strings.TrimSpace(name) {
		case "daily":
			v |= ViewDaily
		case "weekly":
			v |= ViewWeekly
		case "monthly":
			v |= ViewMonthly
		case "entity":
			v |= ViewEntity
		case "summary":
			v |= ViewSummary
		default:
			return 0, fmt.Errorf("unknown view %q", name)
		}
	}
	return v, nil
}

// Result is the full aggregation output for one source. Unpopulated arrays
// are empty, never nil.
type Result struct {
	Daily    []DailyBucket   `json:"daily"`
	Weekly   []WeeklyBucket  `json:"weekly"`
	Monthly  []MonthlyBucket `json:"monthly"`
	Entities []EntityBucket  `json:"entities"`
	Summary  Summary         `json:"summary"`
}

// Build runs the rollup pipeline over a filtered fact row set. Rows are
// validated first: a negative measure is a precondition violation surfaced to
// the caller, not silently clamped. Weekly and monthly folds always run off
// the daily fold so totals are conserved at every granularity.
func Build(s Schema, rows []models.FactRow, views View, dim EntityDim) (Result, error) {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return Result{}, fmt.Errorf("aggregate: %w", err)
		}
	}

	res := Result{
		Daily:    []DailyBucket{},
		Weekly:   []WeeklyBucket{},
		Monthly:  []MonthlyBucket{},
		Entities: []EntityBucket{},
	}

	needDaily := views&(ViewDaily|ViewWeekly|ViewMonthly) != 0
	var daily []DailyBucket
	if needDaily {
		daily = s.FoldDaily(rows)
	}
	if views&ViewDaily != 0 {
		res.Daily = daily
	}

	needWeekly := views&(ViewWeekly|ViewMonthly) != 0
	var weekly []WeeklyBucket
	if needWeekly {
		weekly = s.FoldWeekly(daily)
	}
	if views&ViewWeekly != 0 {
		res.Weekly = weekly
	}
	if views&ViewMonthly != 0 {
		res.Monthly = s.FoldMonthly(daily, weekly)
	}
	if views&ViewEntity != 0 {
		res.Entities = s.FoldEntities(rows, dim)
	}
	if views&ViewSummary != 0 {
		res.Summary = s.Summarize(rows)
	}
	return res, nil
}
