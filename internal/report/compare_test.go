package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_FixedOrder(t *testing.T) {
	rows := Compare(CompareTotals{}, CompareTotals{})
	require.Len(t, rows, 5)
	order := []string{"spend", "impressions", "clicks", "ctr", "cpc"}
	for i, want := range order {
		assert.Equal(t, want, rows[i].Metric)
	}
}

func TestCompare_Differences(t *testing.T) {
	a := CompareTotals{Spend: 130000, Impressions: 1000, Clicks: 100}
	b := CompareTotals{Spend: 65000, Impressions: 2000, Clicks: 50}

	rows := Compare(a, b)

	spend := rows[0]
	assert.Equal(t, 130000.0, spend.ValueA)
	assert.Equal(t, 65000.0, spend.Difference)
	assert.Equal(t, 100.0, spend.DifferencePercent)

	ctr := rows[3]
	assert.Equal(t, 10.0, ctr.ValueA)  // 100/1000×100
	assert.Equal(t, 2.5, ctr.ValueB)   // 50/2000×100
	assert.Equal(t, 7.5, ctr.Difference)
	assert.Equal(t, 300.0, ctr.DifferencePercent)

	cpc := rows[4]
	assert.Equal(t, 1300.0, cpc.ValueA)
	assert.Equal(t, 1300.0, cpc.ValueB)
	assert.Equal(t, 0.0, cpc.DifferencePercent)
}

func TestCompare_ZeroBValueGivesZeroPercent(t *testing.T) {
	a := CompareTotals{Spend: 1000, Impressions: 100, Clicks: 10}
	rows := Compare(a, CompareTotals{})
	for _, row := range rows {
		assert.Equal(t, float64(0), row.DifferencePercent, "metric %s", row.Metric)
	}
}
