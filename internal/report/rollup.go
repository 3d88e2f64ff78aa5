package report

import (
	"sort"
	"time"

	"github.com/hyeonlab/adlens/internal/models"
)

// DailyBucket aggregates all fact rows for one calendar date.
type DailyBucket struct {
	Date time.Time `json:"date"`
	Measures
	Derived

	acc accum
}

// WeeklyBucket aggregates daily buckets for one Monday-start week. Change
// fields are percentages relative to the immediately preceding week in the
// sequence; the first week and any week whose predecessor had a zero base
// report 0.
type WeeklyBucket struct {
	Label     string    `json:"week"`
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
	Measures
	Derived
	ImpressionsChange float64 `json:"impressions_change"`
	ClicksChange      float64 `json:"clicks_change"`
	SpendChange       float64 `json:"spend_change"`
	LeadsChange       float64 `json:"leads_change"`

	acc accum
}

// MonthlyBucket aggregates daily buckets for one calendar month. Weeks lists
// the weekly buckets whose start or end falls inside the month, for
// drill-down display; a week spanning a month boundary appears under both
// months on purpose.
type MonthlyBucket struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Measures
	Derived
	ImpressionsChange float64        `json:"impressions_change"`
	ClicksChange      float64        `json:"clicks_change"`
	SpendChange       float64        `json:"spend_change"`
	LeadsChange       float64        `json:"leads_change"`
	Weeks             []WeeklyBucket `json:"weeks"`

	acc accum
}

// FoldDaily groups fact rows by calendar date and accumulates the schema's
// measures, deriving ratios once per date after accumulation. The input must
// already be filtered to one client and one source. Empty input yields an
// empty sequence, not a single zero bucket. Output is sorted by date so
// repeated runs over the same rows produce identical results.
func (s Schema) FoldDaily(rows []models.FactRow) []DailyBucket {
	byDate := make(map[time.Time]*accum)
	for _, row := range rows {
		day := row.Day()
		a, ok := byDate[day]
		if !ok {
			a = &accum{}
			byDate[day] = a
		}
		a.addRow(row, s)
	}

	buckets := make([]DailyBucket, 0, len(byDate))
	for day, a := range byDate {
		buckets = append(buckets, DailyBucket{
			Date:     day,
			Measures: s.roundedMeasures(a.Measures),
			Derived:  s.rounded(s.derive(*a)),
			acc:      *a,
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date.Before(buckets[j].Date) })
	return buckets
}

// FoldWeekly groups daily buckets by week label, re-sums the underlying raw
// measures and re-derives ratios at week granularity. The result is sorted by
// week start date with change percentages filled in.
func (s Schema) FoldWeekly(daily []DailyBucket) []WeeklyBucket {
	type weekAcc struct {
		start time.Time
		end   time.Time
		acc   accum
	}
	byWeek := make(map[string]*weekAcc)
	for _, d := range daily {
		label := WeekLabel(d.Date)
		w, ok := byWeek[label]
		if !ok {
			w = &weekAcc{start: WeekStart(d.Date), end: WeekEnd(d.Date)}
			byWeek[label] = w
		}
		w.acc.merge(d.acc)
	}

	weeks := make([]WeeklyBucket, 0, len(byWeek))
	for label, w := range byWeek {
		weeks = append(weeks, WeeklyBucket{
			Label:     label,
			WeekStart: w.start,
			WeekEnd:   w.end,
			Measures:  s.roundedMeasures(w.acc.Measures),
			Derived:   s.rounded(s.derive(w.acc)),
			acc:       w.acc,
		})
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekStart.Before(weeks[j].WeekStart) })

	for i := range weeks {
		if i == 0 {
			continue
		}
		prev, curr := weeks[i-1].acc, weeks[i].acc
		weeks[i].ImpressionsChange = changePercent(float64(curr.Impressions), float64(prev.Impressions))
		weeks[i].ClicksChange = changePercent(float64(curr.Clicks), float64(prev.Clicks))
		weeks[i].SpendChange = changePercent(curr.Spend, prev.Spend)
		weeks[i].LeadsChange = changePercent(float64(curr.Leads), float64(prev.Leads))
	}
	return weeks
}

// FoldMonthly groups daily buckets by calendar month, re-derives ratios at
// month granularity and attaches the weekly buckets overlapping each month.
func (s Schema) FoldMonthly(daily []DailyBucket, weekly []WeeklyBucket) []MonthlyBucket {
	type monthAcc struct {
		label string
		acc   accum
	}
	byMonth := make(map[string]*monthAcc)
	for _, d := range daily {
		key := MonthBucket(d.Date)
		m, ok := byMonth[key]
		if !ok {
			m = &monthAcc{label: MonthLabel(d.Date)}
			byMonth[key] = m
		}
		m.acc.merge(d.acc)
	}

	months := make([]MonthlyBucket, 0, len(byMonth))
	for key, m := range byMonth {
		mb := MonthlyBucket{
			Month:    key,
			Label:    m.label,
			Measures: s.roundedMeasures(m.acc.Measures),
			Derived:  s.rounded(s.derive(m.acc)),
			Weeks:    []WeeklyBucket{},
			acc:      m.acc,
		}
		for _, w := range weekly {
			if MonthBucket(w.WeekStart) == key || MonthBucket(w.WeekEnd) == key {
				mb.Weeks = append(mb.Weeks, w)
			}
		}
		months = append(months, mb)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	for i := range months {
		if i == 0 {
			continue
		}
		prev, curr := months[i-1].acc, months[i].acc
		months[i].ImpressionsChange = changePercent(float64(curr.Impressions), float64(prev.Impressions))
		months[i].ClicksChange = changePercent(float64(curr.Clicks), float64(prev.Clicks))
		months[i].SpendChange = changePercent(curr.Spend, prev.Spend)
		months[i].LeadsChange = changePercent(float64(curr.Leads), float64(prev.Leads))
	}
	return months
}

// changePercent computes (curr-prev)/prev*100 rounded to two decimals. A zero
// base resolves to 0 rather than an unbounded percentage; this under-reports
// new-activity-from-zero on purpose.
func changePercent(curr, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return round2((curr - prev) / prev * 100)
}
