package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/adlens/internal/models"
)

func TestParseSearchCSV(t *testing.T) {
	input := "Date,Keyword,Campaign,Device,Impressions,Clicks,Cost,Conversions,Avg Rank\n" +
		"2024-03-04,plumber near me,Local,mobile,120,9,\"12,400\",2,1.6\n" +
		"2024-03-05,emergency plumber,Local,desktop,80,3,8100,0,2.3\n"

	rows, err := ParseSearchCSV(strings.NewReader(input), "acme")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, "acme", r.ClientID)
	assert.Equal(t, models.SourceLocalSearch, r.Source)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), r.Date)
	assert.Equal(t, "plumber near me", r.Keyword)
	assert.Equal(t, "Local", r.CampaignName)
	assert.Equal(t, int64(120), r.Impressions)
	assert.Equal(t, int64(9), r.Clicks)
	assert.Equal(t, 12400.0, r.Spend, "thousands separator strips before parsing")
	assert.Equal(t, int64(2), r.Leads)
	assert.Equal(t, 1.6, r.AvgRank)
}

func TestParseSearchCSVKoreanHeaders(t *testing.T) {
	input := "\ufeff날짜,키워드,노출수,클릭수,총비용,전환수,평균노출순위\n" +
		"2024.03.04,강남 미용실,500,40,60000,5,1.2\n"

	rows, err := ParseSearchCSV(strings.NewReader(input), "acme")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "강남 미용실", rows[0].Keyword)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, 60000.0, rows[0].Spend)
}

func TestParseSearchCSVMalformedMeasuresCoerce(t *testing.T) {
	input := "date,keyword,impressions,clicks,cost\n" +
		"2024-03-04,kw,n/a,,-\n"

	rows, err := ParseSearchCSV(strings.NewReader(input), "acme")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Impressions)
	assert.Zero(t, rows[0].Clicks)
	assert.Zero(t, rows[0].Spend)
}

func TestParseSearchCSVMissingColumns(t *testing.T) {
	_, err := ParseSearchCSV(strings.NewReader("keyword,impressions\nkw,10\n"), "acme")
	assert.Error(t, err)

	_, err = ParseSearchCSV(strings.NewReader("date,impressions\n2024-03-04,10\n"), "acme")
	assert.Error(t, err)
}

func TestParseSearchCSVBadDate(t *testing.T) {
	_, err := ParseSearchCSV(strings.NewReader("date,keyword\n03/04/2024,kw\n"), "acme")
	assert.Error(t, err)
}
