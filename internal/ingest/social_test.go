package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlab/adlens/internal/models"
)

func TestFetchWindowPaginates(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		page := map[string]any{}
		if r.URL.Query().Get("page") == "2" {
			page["data"] = []map[string]string{
				{"date_start": "2024-03-05", "ad_id": "ad-2", "impressions": "50", "clicks": "2", "spend": "3.25"},
			}
		} else {
			page["data"] = []map[string]string{
				{"date_start": "2024-03-04", "ad_id": "ad-1", "impressions": "100", "clicks": "5", "spend": "12.5", "video_views": "40", "video_avg_time_watched": "6.5"},
			}
			page["paging"] = map[string]string{"next": srv.URL + "/insights?page=2"}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	c := NewSocialClient(srv.URL, "test-token", 500)
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rows, err := c.FetchWindow(context.Background(), "acme", start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.SourcePaidSocial, rows[0].Source)
	assert.Equal(t, "ad-1", rows[0].AdID)
	assert.Equal(t, int64(100), rows[0].Impressions)
	assert.Equal(t, 6.5, rows[0].AvgWatchTime)
	assert.Equal(t, "ad-2", rows[1].AdID)
	assert.Equal(t, 3.25, rows[1].Spend)
}

func TestFetchWindowCoercesMissingMeasures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"date_start":"2024-03-04","ad_id":"ad-1","impressions":"not-a-number"}]}`)
	}))
	defer srv.Close()

	c := NewSocialClient(srv.URL, "", 500)
	rows, err := c.FetchWindow(context.Background(), "acme", time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Impressions)
	assert.Zero(t, rows[0].Clicks)
	assert.Zero(t, rows[0].Spend)
}

func TestFetchWindowAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewSocialClient(srv.URL, "", 500)
	_, err := c.FetchWindow(context.Background(), "acme", time.Now(), time.Now())
	assert.Error(t, err)
}

func TestFetchWindowUnconfigured(t *testing.T) {
	c := NewSocialClient("", "", 0)
	_, err := c.FetchWindow(context.Background(), "acme", time.Now(), time.Now())
	assert.Error(t, err)
}
