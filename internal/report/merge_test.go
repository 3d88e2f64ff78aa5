package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/adlens/internal/models"
)

func TestMergeDaily_Totality(t *testing.T) {
	// Source A covers 01-01..03, source B covers 01-02..04; the merge must
	// cover exactly 01-01..04 with zero-fill on the missing sides.
	social := PaidSocialSchema().FoldDaily([]models.FactRow{
		socialRow(date(2024, time.January, 1), 100, 10, 10),
		socialRow(date(2024, time.January, 2), 100, 10, 10),
		socialRow(date(2024, time.January, 3), 100, 10, 10),
	})
	search := LocalSearchSchema().FoldDaily([]models.FactRow{
		keywordRow(date(2024, time.January, 2), "pilates", 50, 5, 5000),
		keywordRow(date(2024, time.January, 3), "pilates", 50, 5, 5000),
		keywordRow(date(2024, time.January, 4), "pilates", 50, 5, 5000),
	})

	conv := Converter{Rate: 1300}
	merged := MergeDaily(social, search, conv)
	require.Len(t, merged, 4)

	assert.Equal(t, date(2024, time.January, 1), merged[0].Date)
	assert.Equal(t, Measures{}, merged[0].Search, "B=0 on 01-01")
	assert.Equal(t, int64(100), merged[0].TotalImpressions)

	assert.Equal(t, date(2024, time.January, 4), merged[3].Date)
	assert.Equal(t, Measures{}, merged[3].Social, "A=0 on 01-04")
	assert.Equal(t, int64(50), merged[3].TotalImpressions)
}

func TestMergeDaily_CurrencyNormalizedTotalSpend(t *testing.T) {
	social := PaidSocialSchema().FoldDaily([]models.FactRow{
		socialRow(date(2024, time.January, 2), 100, 10, 10), // $10
	})
	search := LocalSearchSchema().FoldDaily([]models.FactRow{
		keywordRow(date(2024, time.January, 2), "pilates", 50, 5, 5000), // ₩5000
	})

	merged := MergeDaily(social, search, Converter{Rate: 1300})
	require.Len(t, merged, 1)
	assert.InDelta(t, 18000, merged[0].TotalSpend, 1e-9) // 10×1300 + 5000
}

func TestMergeDaily_Commutative(t *testing.T) {
	social := PaidSocialSchema().FoldDaily([]models.FactRow{
		socialRow(date(2024, time.January, 1), 100, 10, 10),
	})
	search := LocalSearchSchema().FoldDaily([]models.FactRow{
		keywordRow(date(2024, time.January, 2), "pilates", 50, 5, 5000),
	})

	ab := MergeDaily(social, search, Converter{Rate: 1})
	ba := MergeDaily(search, social, Converter{Rate: 1})
	require.Len(t, ab, 2)
	require.Len(t, ba, 2)
	for i := range ab {
		assert.Equal(t, ab[i].Date, ba[i].Date)
		assert.Equal(t, ab[i].TotalImpressions, ba[i].TotalImpressions)
		assert.Equal(t, ab[i].TotalClicks, ba[i].TotalClicks)
	}
}

func TestSummarizeMerged(t *testing.T) {
	social := PaidSocialSchema().FoldDaily([]models.FactRow{
		socialRow(date(2024, time.January, 1), 100, 10, 10),
		socialRow(date(2024, time.January, 3), 100, 10, 10),
	})
	merged := MergeDaily(social, nil, Converter{Rate: 1000})

	s := SummarizeMerged(merged)
	assert.Equal(t, int64(200), s.TotalImpressions)
	assert.Equal(t, int64(20), s.TotalClicks)
	assert.InDelta(t, 20000, s.TotalSpend, 1e-9)
	assert.Equal(t, 10.0, s.CTR)
	assert.Equal(t, 2, s.DataDays)
	assert.Equal(t, date(2024, time.January, 1), s.StartDate)
	assert.Equal(t, date(2024, time.January, 3), s.EndDate)
}

func TestSummarizeMerged_Empty(t *testing.T) {
	s := SummarizeMerged(nil)
	assert.Equal(t, CombinedSummary{}, s)
}
