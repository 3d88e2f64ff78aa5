package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart_AlwaysMonday(t *testing.T) {
	// Walk a full year including the leap day.
	d := date(2024, time.January, 1)
	for d.Year() == 2024 {
		start := WeekStart(d)
		assert.Equal(t, time.Monday, start.Weekday(), "weekStart(%s)", d.Format("2006-01-02"))
		assert.False(t, start.After(d), "weekStart must not be after the date")
		d = d.AddDate(0, 0, 1)
	}
}

func TestWeekEnd_SixDaysAfterStart(t *testing.T) {
	d := date(2024, time.March, 1)
	for i := 0; i < 60; i++ {
		start, end := WeekStart(d), WeekEnd(d)
		assert.Equal(t, start.AddDate(0, 0, 6), end)
		assert.Equal(t, start, WeekStart(end), "weekStart(weekEnd(d)) == weekStart(d)")
		d = d.AddDate(0, 0, 1)
	}
}

func TestWeekStart_SundayMapsBackSixDays(t *testing.T) {
	sunday := date(2024, time.March, 10)
	assert.Equal(t, time.Sunday, sunday.Weekday())
	assert.Equal(t, date(2024, time.March, 4), WeekStart(sunday))

	monday := date(2024, time.March, 4)
	assert.Equal(t, monday, WeekStart(monday), "Monday maps back 0 days")
}

func TestWeekLabel_Format(t *testing.T) {
	// 2024-01-01 is a Monday; Jan 1 weekday = 1 (Monday), dayOfYear = 1,
	// so week = ceil((1+1+1)/7) = 1.
	assert.Equal(t, "2024-W01", WeekLabel(date(2024, time.January, 1)))
	assert.Equal(t, "2024-W11", WeekLabel(date(2024, time.March, 11)))
}

func TestWeekLabel_SameWeekSameLabel(t *testing.T) {
	// Every day of the week of 2024-03-04 shares a label, Monday through Sunday.
	want := WeekLabel(date(2024, time.March, 4))
	for i := 0; i < 7; i++ {
		assert.Equal(t, want, WeekLabel(date(2024, time.March, 4+i)))
	}
	assert.NotEqual(t, want, WeekLabel(date(2024, time.March, 11)))
}

func TestMonthBucket(t *testing.T) {
	assert.Equal(t, "2024-03", MonthBucket(date(2024, time.March, 15)))
	assert.Equal(t, "2024-12", MonthBucket(date(2024, time.December, 1)))
	assert.Equal(t, "2024-3", MonthLabel(date(2024, time.March, 15)))
}
