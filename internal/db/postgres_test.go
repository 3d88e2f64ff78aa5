package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/adlens/internal/models"
)

func setupTestPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &Postgres{DB: conn, pageSize: 2}, mock
}

func socialColumns() []string {
	return []string{"client_id", "date", "ad_id", "ad_name", "campaign_id", "campaign_name",
		"platform", "device", "impressions", "clicks", "spend", "leads", "video_views", "avg_watch_time"}
}

func TestUpsertSocialFacts(t *testing.T) {
	pg, mock := setupTestPostgres(t)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO social_ad_facts")
	mock.ExpectExec("INSERT INTO social_ad_facts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO social_ad_facts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := []models.FactRow{
		{ClientID: "acme", Date: day, Source: models.SourcePaidSocial, AdID: "ad-1", Impressions: 100, Clicks: 5, Spend: 12.5},
		{ClientID: "acme", Date: day, Source: models.SourcePaidSocial, AdID: "ad-2", Impressions: 50, Clicks: 1, Spend: 3},
	}
	n, err := pg.UpsertSocialFacts(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSocialFactsEmpty(t *testing.T) {
	pg, mock := setupTestPostgres(t)
	n, err := pg.UpsertSocialFacts(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuerySocialFactsPaged(t *testing.T) {
	pg, mock := setupTestPostgres(t)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	// pageSize is 2: a full first page forces a second fetch, which comes back short.
	first := sqlmock.NewRows(socialColumns()).
		AddRow("acme", day, "ad-1", "Spring", "c1", "Brand", "instagram", "mobile", 100, 5, 12.5, 1, 40, 6.5).
		AddRow("acme", day, "ad-2", "Summer", "c1", "Brand", "facebook", "desktop", 50, 1, 3.0, 0, 10, 2.0)
	second := sqlmock.NewRows(socialColumns()).
		AddRow("acme", day.AddDate(0, 0, 1), "ad-1", "Spring", "c1", "Brand", "instagram", "mobile", 80, 4, 10.0, 1, 30, 5.0)

	mock.ExpectQuery("SELECT (.+) FROM social_ad_facts").
		WithArgs("acme", day, day.AddDate(0, 0, 1), 2, 0).
		WillReturnRows(first)
	mock.ExpectQuery("SELECT (.+) FROM social_ad_facts").
		WithArgs("acme", day, day.AddDate(0, 0, 1), 2, 2).
		WillReturnRows(second)

	got, err := pg.QuerySocialFacts(context.Background(), FactFilter{
		ClientID: "acme",
		Start:    day,
		End:      day.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.SourcePaidSocial, got[0].Source)
	assert.Equal(t, "ad-2", got[1].AdID)
	assert.Equal(t, int64(80), got[2].Impressions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuerySocialFactsFilterArgs(t *testing.T) {
	pg, mock := setupTestPostgres(t)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM social_ad_facts").
		WithArgs("acme", day, day, "c9", "instagram", 2, 0).
		WillReturnRows(sqlmock.NewRows(socialColumns()))

	got, err := pg.QuerySocialFacts(context.Background(), FactFilter{
		ClientID:   "acme",
		Start:      day,
		End:        day,
		CampaignID: "c9",
		Platform:   "instagram",
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuerySearchFacts(t *testing.T) {
	pg, mock := setupTestPostgres(t)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	cols := []string{"client_id", "date", "keyword", "campaign_id", "campaign_name", "device",
		"impressions", "clicks", "spend", "leads", "avg_rank"}
	mock.ExpectQuery("SELECT (.+) FROM search_keyword_facts").
		WithArgs("acme", day, day, 2, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("acme", day, "plumber near me", "c2", "Local", "mobile", 40, 8, 24000.0, 2, 1.8))

	got, err := pg.QuerySearchFacts(context.Background(), FactFilter{ClientID: "acme", Start: day, End: day})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.SourceLocalSearch, got[0].Source)
	assert.Equal(t, "plumber near me", got[0].Keyword)
	assert.Equal(t, 1.8, got[0].AvgRank)
	assert.NoError(t, mock.ExpectationsWereMet())
}
