package narrative

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hyeonlab/adlens/internal/report"
)

func sampleInput() Input {
	return Input{
		ClientID:  "acme",
		Source:    "paid_social",
		EntityDim: "campaign",
		TopN:      2,
		Summary: report.Summary{
			Measures:       report.Measures{Impressions: 10000, Clicks: 250, Spend: 540.5, Leads: 12},
			Derived:        report.Derived{CTR: 2.5, CPC: 2.16, CPL: 45.04},
			UniqueEntities: 3,
			DataDays:       14,
			StartDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:        time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		Entities: []report.EntityBucket{
			{Key: "c1", Name: "Brand", Measures: report.Measures{Spend: 300, Clicks: 150}, Derived: report.Derived{CTR: 3.0}},
			{Key: "c2", Name: "Promo", Measures: report.Measures{Spend: 200, Clicks: 80}},
			{Key: "c3", Name: "Retarget", Measures: report.Measures{Spend: 40.5, Clicks: 20}},
		},
	}
}

func TestSerializeContainsKPIs(t *testing.T) {
	got := Serialize(sampleInput())

	assert.Contains(t, got, "client: acme")
	assert.Contains(t, got, "period: 2024-03-01 to 2024-03-14 (14 days with data)")
	assert.Contains(t, got, "impressions=10000")
	assert.Contains(t, got, "ctr=2.50%")
	assert.Contains(t, got, "active campaigns: 3")
}

func TestSerializeTopNOrdering(t *testing.T) {
	got := Serialize(sampleInput())

	assert.Contains(t, got, "1. Brand")
	assert.Contains(t, got, "2. Promo")
	assert.NotContains(t, got, "Retarget", "entities beyond top-N are omitted")
	assert.Less(t, strings.Index(got, "Brand"), strings.Index(got, "Promo"))
}

func TestSerializeEmptySummary(t *testing.T) {
	got := Serialize(Input{ClientID: "acme", Source: "local_search", EntityDim: "keyword"})

	assert.Contains(t, got, "totals: impressions=0")
	assert.NotContains(t, got, "period:", "zero date range omits the period line")
	assert.NotContains(t, got, "top keywords")
}

func TestTopBySpendDoesNotMutateInput(t *testing.T) {
	in := sampleInput()
	entities := []report.EntityBucket{in.Entities[2], in.Entities[0], in.Entities[1]}
	first := entities[0].Key

	_ = topBySpend(entities, 2)
	assert.Equal(t, first, entities[0].Key)
}
