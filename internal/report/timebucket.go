package report

import (
	"fmt"
	"time"
)

// WeekLabel returns the week bucket key for a date, formatted "{year}-W{02d}".
// The week number is ceil((dayOfYear + jan1Weekday + 1) / 7) with the weekday
// measured Sunday=0. This is an approximation of ISO-8601 week numbering
// without the cross-year week-1 correction; the label is a grouping key, and
// both halves of a year-boundary week grouping consistently is what matters.
func WeekLabel(d time.Time) string {
	jan1 := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	dayOfYear := d.YearDay()
	week := (dayOfYear + int(jan1.Weekday()) + 1 + 6) / 7
	return fmt.Sprintf("%d-W%02d", d.Year(), week)
}

// WeekStart returns the Monday on or before d, at midnight UTC.
func WeekStart(d time.Time) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}

// WeekEnd returns the Sunday ending the week containing d, at midnight UTC.
func WeekEnd(d time.Time) time.Time {
	return WeekStart(d).AddDate(0, 0, 6)
}

// MonthBucket returns the month bucket key for a date, formatted "{year}-{02d}".
func MonthBucket(d time.Time) string {
	return fmt.Sprintf("%d-%02d", d.Year(), int(d.Month()))
}

// MonthLabel returns the display label for a month. Presentation text, not a
// parsed key.
func MonthLabel(d time.Time) string {
	return fmt.Sprintf("%d-%d", d.Year(), int(d.Month()))
}
