package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hyeonlab/adlens/internal/models"
)

func TestSummarize_Empty(t *testing.T) {
	s := PaidSocialSchema().Summarize(nil)
	assert.Equal(t, int64(0), s.Impressions)
	assert.Equal(t, 0, s.UniqueEntities)
	assert.Equal(t, 0, s.DataDays)
	assert.True(t, s.StartDate.IsZero())
	assert.True(t, s.EndDate.IsZero())
	assert.Equal(t, float64(0), s.CTR)
}

func TestSummarize_RatiosFromTotals(t *testing.T) {
	// Two days with very different CTRs: 50% and ~0.1%. The summary CTR must
	// come from the totals (11/2000), not the mean of per-day CTRs (~25%).
	rows := []models.FactRow{
		socialRow(date(2024, time.March, 4), 20, 10, 5),
		socialRow(date(2024, time.March, 5), 1980, 1, 5),
	}
	s := PaidSocialSchema().Summarize(rows)
	assert.Equal(t, 0.55, s.CTR)
}

func TestSummarize_UniqueEntitiesAndDataDays(t *testing.T) {
	r1 := socialRow(date(2024, time.March, 4), 10, 1, 1)
	r2 := socialRow(date(2024, time.March, 4), 10, 1, 1)
	r2.AdID = "ad-2"
	r3 := socialRow(date(2024, time.March, 8), 10, 1, 1)

	s := PaidSocialSchema().Summarize([]models.FactRow{r1, r2, r3})
	assert.Equal(t, 2, s.UniqueEntities)
	assert.Equal(t, 2, s.DataDays, "gaps do not count as data days")
	assert.Equal(t, date(2024, time.March, 4), s.StartDate)
	assert.Equal(t, date(2024, time.March, 8), s.EndDate)
}
