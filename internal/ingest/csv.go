package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyeonlab/adlens/internal/models"
)

// columnAliases maps the header variants seen in local-search platform exports
// to canonical column names. Exports arrive with either English or Korean
// headers depending on the account locale.
var columnAliases = map[string]string{
	"date":          "date",
	"날짜":            "date",
	"keyword":       "keyword",
	"키워드":           "keyword",
	"campaign":      "campaign_name",
	"campaign name": "campaign_name",
	"캠페인":           "campaign_name",
	"campaign id":   "campaign_id",
	"device":        "device",
	"디바이스":          "device",
	"impressions":   "impressions",
	"노출수":           "impressions",
	"clicks":        "clicks",
	"클릭수":           "clicks",
	"cost":          "spend",
	"spend":         "spend",
	"총비용":           "spend",
	"conversions":   "leads",
	"leads":         "leads",
	"전환수":           "leads",
	"avg rank":      "avg_rank",
	"avg_rank":      "avg_rank",
	"평균노출순위":        "avg_rank",
}

// ParseSearchCSV reads a local-search keyword export and produces fact rows
// for the client. Columns are matched by header alias so exports from
// differently-configured accounts load without remapping. Rows missing a date
// or keyword are rejected; malformed numeric cells coerce to 0.
func ParseSearchCSV(r io.Reader, clientID string) ([]models.FactRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := columnAliases[key]; ok {
			cols[canonical] = i
		}
	}
	if _, ok := cols["date"]; !ok {
		return nil, fmt.Errorf("csv missing date column")
	}
	if _, ok := cols["keyword"]; !ok {
		return nil, fmt.Errorf("csv missing keyword column")
	}

	cell := func(rec []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	var rows []models.FactRow
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		rawDate := cell(rec, "date")
		date, err := parseCSVDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		keyword := cell(rec, "keyword")
		if keyword == "" {
			return nil, fmt.Errorf("csv line %d: empty keyword", line)
		}

		rows = append(rows, models.FactRow{
			ClientID:     clientID,
			Date:         date,
			Source:       models.SourceLocalSearch,
			Keyword:      keyword,
			CampaignID:   cell(rec, "campaign_id"),
			CampaignName: cell(rec, "campaign_name"),
			Device:       cell(rec, "device"),
			Impressions:  coerceInt(cell(rec, "impressions")),
			Clicks:       coerceInt(cell(rec, "clicks")),
			Spend:        coerceFloat(strings.ReplaceAll(cell(rec, "spend"), ",", "")),
			Leads:        coerceInt(cell(rec, "leads")),
			AvgRank:      coerceFloat(cell(rec, "avg_rank")),
		})
	}
	return rows, nil
}

// parseCSVDate accepts the two date layouts the platform exports use.
func parseCSVDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006.01.02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
