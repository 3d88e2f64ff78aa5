// Package ingest pulls fact rows from the ad platforms into the fact store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hyeonlab/adlens/internal/models"
)

// SocialClient fetches daily ad insights from the paid-social platform API.
type SocialClient struct {
	BaseURL  string
	Token    string
	PageSize int
	HTTP     *http.Client
}

// NewSocialClient builds a client for the paid-social insights API.
func NewSocialClient(baseURL, token string, pageSize int) *SocialClient {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &SocialClient{
		BaseURL:  baseURL,
		Token:    token,
		PageSize: pageSize,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// insightRow is the platform's wire shape. Measures come back as strings or
// may be absent entirely; both coerce to 0.
type insightRow struct {
	Date         string `json:"date_start"`
	AdID         string `json:"ad_id"`
	AdName       string `json:"ad_name"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Platform     string `json:"publisher_platform"`
	Device       string `json:"device_platform"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks"`
	Spend        string `json:"spend"`
	Leads        string `json:"leads"`
	VideoViews   string `json:"video_views"`
	AvgWatchTime string `json:"video_avg_time_watched"`
}

type insightPage struct {
	Data   []insightRow `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// FetchWindow retrieves every insight row for the client between start and end
// (inclusive dates), following pagination until the platform reports no next
// page.
func (c *SocialClient) FetchWindow(ctx context.Context, clientID string, start, end time.Time) ([]models.FactRow, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("social api not configured")
	}

	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("time_range_since", start.Format("2006-01-02"))
	q.Set("time_range_until", end.Format("2006-01-02"))
	q.Set("limit", strconv.Itoa(c.PageSize))
	next := c.BaseURL + "/insights?" + q.Encode()

	var rows []models.FactRow
	for next != "" {
		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, ir := range page.Data {
			row, err := ir.toFactRow(clientID)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		next = page.Paging.Next
	}
	return rows, nil
}

func (c *SocialClient) fetchPage(ctx context.Context, rawURL string) (*insightPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build insights request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch insights: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("insights api status %d", resp.StatusCode)
	}
	var page insightPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode insights page: %w", err)
	}
	return &page, nil
}

func (ir insightRow) toFactRow(clientID string) (models.FactRow, error) {
	date, err := time.ParseInLocation("2006-01-02", ir.Date, time.UTC)
	if err != nil {
		return models.FactRow{}, fmt.Errorf("parse insight date %q: %w", ir.Date, err)
	}
	return models.FactRow{
		ClientID:     clientID,
		Date:         date,
		Source:       models.SourcePaidSocial,
		AdID:         ir.AdID,
		AdName:       ir.AdName,
		CampaignID:   ir.CampaignID,
		CampaignName: ir.CampaignName,
		Platform:     ir.Platform,
		Device:       ir.Device,
		Impressions:  coerceInt(ir.Impressions),
		Clicks:       coerceInt(ir.Clicks),
		Spend:        coerceFloat(ir.Spend),
		Leads:        coerceInt(ir.Leads),
		VideoViews:   coerceInt(ir.VideoViews),
		AvgWatchTime: coerceFloat(ir.AvgWatchTime),
	}, nil
}

// coerceInt turns absent or malformed numeric cells into 0. Upstream platforms
// omit measures freely; the aggregator expects well-formed numbers.
func coerceInt(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func coerceFloat(s string) float64 {
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}
