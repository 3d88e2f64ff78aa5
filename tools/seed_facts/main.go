package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hyeonlab/adlens/internal/config"
	"github.com/hyeonlab/adlens/internal/db"
	"github.com/hyeonlab/adlens/internal/models"
	"github.com/hyeonlab/adlens/internal/observability"
)

var (
	clientID  = flag.String("client", "demo", "client account id")
	days      = flag.Int("days", 60, "days of history ending today")
	adCount   = flag.Int("ads", 6, "paid-social ads per campaign")
	campaigns = flag.Int("campaigns", 3, "paid-social campaigns")
	keywords  = flag.Int("keywords", 12, "local-search keywords")
	seed      = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
)

var platforms = []string{"facebook", "instagram"}
var devices = []string{"mobile", "desktop"}

var keywordPool = []string{
	"강남 피부과", "강남 피부과 추천", "압구정 피부과", "여드름 치료",
	"레이저 토닝", "보톡스 가격", "필러 잘하는 곳", "리프팅 시술",
	"피부과 상담", "기미 제거", "모공 축소", "흉터 치료",
	"점 제거 비용", "피부 관리", "울쎄라 후기", "스킨부스터",
}

func main() {
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	r := rand.New(rand.NewSource(*seed))
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(*days - 1))

	social := socialFacts(r, start, end)
	n, err := pg.UpsertSocialFacts(context.Background(), social)
	if err != nil {
		logger.Fatal("upsert social facts", zap.Error(err))
	}
	logger.Info("seeded social facts", zap.Int("rows", n))

	search := searchFacts(r, start, end)
	n, err = pg.UpsertSearchFacts(context.Background(), search)
	if err != nil {
		logger.Fatal("upsert search facts", zap.Error(err))
	}
	logger.Info("seeded search facts", zap.Int("rows", n),
		zap.String("client_id", *clientID),
		zap.Time("start", start),
		zap.Time("end", end))
}

// socialFacts generates one row per ad, platform and device per day. Measures
// follow rough funnel ratios so derived metrics land in plausible ranges.
func socialFacts(r *rand.Rand, start, end time.Time) []models.FactRow {
	var rows []models.FactRow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for c := 0; c < *campaigns; c++ {
			campaign := fmt.Sprintf("camp-%03d", c+1)
			for a := 0; a < *adCount; a++ {
				for _, platform := range platforms {
					for _, device := range devices {
						impressions := int64(200 + r.Intn(4000))
						clicks := int64(float64(impressions) * (0.005 + r.Float64()*0.04))
						views := int64(float64(impressions) * (0.1 + r.Float64()*0.3))
						rows = append(rows, models.FactRow{
							ClientID:     *clientID,
							Date:         d,
							Source:       models.SourcePaidSocial,
							AdID:         fmt.Sprintf("%s-ad-%02d", campaign, a+1),
							AdName:       fmt.Sprintf("Creative %02d", a+1),
							CampaignID:   campaign,
							CampaignName: fmt.Sprintf("Campaign %03d", c+1),
							Platform:     platform,
							Device:       device,
							Impressions:  impressions,
							Clicks:       clicks,
							Spend:        float64(clicks) * (0.3 + r.Float64()*1.2),
							Leads:        int64(float64(clicks) * r.Float64() * 0.2),
							VideoViews:   views,
							AvgWatchTime: 2 + r.Float64()*12,
						})
					}
				}
			}
		}
	}
	return rows
}

// searchFacts generates one row per keyword and device per day with KRW spend.
func searchFacts(r *rand.Rand, start, end time.Time) []models.FactRow {
	pool := keywordPool
	if *keywords < len(pool) {
		pool = pool[:*keywords]
	}
	var rows []models.FactRow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for _, kw := range pool {
			for _, device := range devices {
				impressions := int64(50 + r.Intn(800))
				clicks := int64(float64(impressions) * (0.01 + r.Float64()*0.08))
				rows = append(rows, models.FactRow{
					ClientID:    *clientID,
					Date:        d,
					Source:      models.SourceLocalSearch,
					Keyword:     kw,
					CampaignID:  "search-001",
					Device:      device,
					Impressions: impressions,
					Clicks:      clicks,
					Spend:       float64(clicks) * float64(300+r.Intn(1500)),
					Leads:       int64(float64(clicks) * r.Float64() * 0.15),
					AvgRank:     1 + r.Float64()*4,
				})
			}
		}
	}
	return rows
}
