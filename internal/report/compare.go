package report

// CompareTotals is one source's currency-normalized totals fed into the
// comparison builder. Spend must already be converted to the common unit.
type CompareTotals struct {
	Spend       float64
	Impressions int64
	Clicks      int64
}

// ComparisonRow reports one metric's values for both sources along with the
// absolute and percentage difference of A over B.
type ComparisonRow struct {
	Metric            string  `json:"metric"`
	ValueA            float64 `json:"value_a"`
	ValueB            float64 `json:"value_b"`
	Difference        float64 `json:"difference"`
	DifferencePercent float64 `json:"difference_percent"`
}

// Compare builds the fixed metric comparison between two sources' totals:
// spend, impressions, clicks, CTR and CPC, in that display order. A zero B
// value resolves the percentage difference to 0.
func Compare(a, b CompareTotals) []ComparisonRow {
	ctr := func(t CompareTotals) float64 {
		if t.Impressions == 0 {
			return 0
		}
		return float64(t.Clicks) / float64(t.Impressions) * 100
	}
	cpc := func(t CompareTotals) float64 {
		if t.Clicks == 0 {
			return 0
		}
		return t.Spend / float64(t.Clicks)
	}

	metrics := []struct {
		name     string
		a, b     float64
		decimals int
	}{
		{"spend", a.Spend, b.Spend, 0},
		{"impressions", float64(a.Impressions), float64(b.Impressions), 0},
		{"clicks", float64(a.Clicks), float64(b.Clicks), 0},
		{"ctr", ctr(a), ctr(b), 2},
		{"cpc", cpc(a), cpc(b), 0},
	}

	rows := make([]ComparisonRow, 0, len(metrics))
	for _, m := range metrics {
		row := ComparisonRow{
			Metric:     m.name,
			ValueA:     roundTo(m.a, m.decimals),
			ValueB:     roundTo(m.b, m.decimals),
			Difference: roundTo(m.a-m.b, m.decimals),
		}
		if m.b != 0 {
			row.DifferencePercent = round2((m.a - m.b) / m.b * 100)
		}
		rows = append(rows, row)
	}
	return rows
}
