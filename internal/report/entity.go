package report

import (
	"sort"
	"time"

	"github.com/hyeonlab/adlens/internal/models"
)

// EntityDim selects the non-temporal grouping dimension for entity rollups.
type EntityDim int

const (
	// ByAd groups paid-social rows by ad ID.
	ByAd EntityDim = iota
	// ByCampaign groups paid-social rows by campaign ID.
	ByCampaign
	// ByKeyword groups local-search rows by keyword.
	ByKeyword
)

// String returns the dimension name used in responses and audit events.
func (d EntityDim) String() string {
	switch d {
	case ByCampaign:
		return "campaign"
	case ByKeyword:
		return "keyword"
	default:
		return "ad"
	}
}

// EntityBucket aggregates all fact rows for one campaign, ad or keyword over
// the queried range. Entities with no contributing rows are absent from the
// list entirely, never present as zero rows.
type EntityBucket struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Measures
	Derived
	DaysCount int       `json:"days_count"` // distinct dates contributing
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
}

// FoldEntities groups fact rows by the selected dimension, accumulating
// measures and tracking the distinct contributing dates per entity. The
// result is sorted by spend descending (key ascending on ties) so top-N
// selection and repeated runs are deterministic.
func (s Schema) FoldEntities(rows []models.FactRow, dim EntityDim) []EntityBucket {
	type entityAcc struct {
		name string
		acc  accum
		days map[time.Time]struct{}
	}

	byKey := make(map[string]*entityAcc)
	for _, row := range rows {
		key, name := entityKeyName(row, dim)
		if key == "" {
			continue
		}
		e, ok := byKey[key]
		if !ok {
			e = &entityAcc{name: name, days: make(map[time.Time]struct{})}
			byKey[key] = e
		}
		e.acc.addRow(row, s)
		e.days[row.Day()] = struct{}{}
	}

	buckets := make([]EntityBucket, 0, len(byKey))
	for key, e := range byKey {
		b := EntityBucket{
			Key:       key,
			Name:      e.name,
			Measures:  s.roundedMeasures(e.acc.Measures),
			Derived:   s.rounded(s.derive(e.acc)),
			DaysCount: len(e.days),
		}
		for day := range e.days {
			if b.FirstDate.IsZero() || day.Before(b.FirstDate) {
				b.FirstDate = day
			}
			if day.After(b.LastDate) {
				b.LastDate = day
			}
		}
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Spend != buckets[j].Spend {
			return buckets[i].Spend > buckets[j].Spend
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

func entityKeyName(row models.FactRow, dim EntityDim) (key, name string) {
	switch dim {
	case ByCampaign:
		return row.CampaignID, row.CampaignName
	case ByKeyword:
		return row.Keyword, row.Keyword
	default:
		return row.AdID, row.AdName
	}
}
