// Package analytics aggregates click data into the admin dashboard.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowerssaints/storefront/models"
)

const (
	DefaultWindowDays = 30
	MaxWindowDays     = 365
	topProductsLimit  = 5
	dayLayout         = "2006-01-02"
)

// ClickStats is the read side of click storage.
type ClickStats interface {
	CountClicks(from, to *time.Time) (int64, error)
	ClickTimes(from, to time.Time) ([]time.Time, error)
	TopProducts(from time.Time, limit int) ([]models.ProductClicks, error)
}

type DayPoint struct {
	Date    string  `json:"date"`
	Clicks  int64   `json:"clicks"`
	Revenue float64 `json:"revenue"`
}

type TopProduct struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Clicks    int64  `json:"clicks"`
}

type Dashboard struct {
	WindowDays       int          `json:"windowDays"`
	TotalClicks      int64        `json:"totalClicks"`
	RecentClicks     int64        `json:"recentClicks"`
	PreviousClicks   int64        `json:"previousClicks"`
	ClickGrowth      float64      `json:"clickGrowth"`
	EstimatedRevenue float64      `json:"estimatedRevenue"`
	RevenueGrowth    float64      `json:"revenueGrowth"`
	Chart            []DayPoint   `json:"chart"`
	TopProducts      []TopProduct `json:"topProducts"`
}

type Service struct {
	clicks          ClickStats
	revenuePerClick decimal.Decimal
}

func NewService(clicks ClickStats, revenuePerClick float64) *Service {
	return &Service{clicks: clicks, revenuePerClick: decimal.NewFromFloat(revenuePerClick)}
}

// Growth is the percentage change from previous to current. It is 0 when
// there is no previous value to compare against.
func Growth(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func (s *Service) revenue(clicks int64) decimal.Decimal {
	return s.revenuePerClick.Mul(decimal.NewFromInt(clicks))
}

// Dashboard compares [now-window, now) with the window before it.
func (s *Service) Dashboard(ctx context.Context, now time.Time, days int) (*Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now = now.UTC()
	window := time.Duration(days) * 24 * time.Hour
	recentFrom := now.Add(-window)
	previousFrom := recentFrom.Add(-window)

	total, err := s.clicks.CountClicks(nil, nil)
	if err != nil {
		return nil, err
	}
	recent, err := s.clicks.CountClicks(&recentFrom, &now)
	if err != nil {
		return nil, err
	}
	previous, err := s.clicks.CountClicks(&previousFrom, &recentFrom)
	if err != nil {
		return nil, err
	}
	times, err := s.clicks.ClickTimes(recentFrom, now)
	if err != nil {
		return nil, err
	}
	top, err := s.clicks.TopProducts(recentFrom, topProductsLimit)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		WindowDays:       days,
		TotalClicks:      total,
		RecentClicks:     recent,
		PreviousClicks:   previous,
		ClickGrowth:      Growth(recent, previous),
		EstimatedRevenue: s.revenue(recent).InexactFloat64(),
		// Revenue is a constant multiple of clicks, so growth matches.
		RevenueGrowth: Growth(recent, previous),
		Chart:         s.buckets(recentFrom, now, times),
		TopProducts:   make([]TopProduct, len(top)),
	}
	for i, p := range top {
		d.TopProducts[i] = TopProduct{ProductID: p.ProductID, Title: p.Title, Clicks: p.Clicks}
	}
	return d, nil
}

// buckets counts times per UTC day. Every calendar day the window touches
// gets a point, including days without clicks.
func (s *Service) buckets(from, to time.Time, times []time.Time) []DayPoint {
	counts := make(map[string]int64, len(times))
	for _, t := range times {
		counts[t.UTC().Format(dayLayout)]++
	}

	first := truncateDay(from)
	last := truncateDay(to.Add(-time.Nanosecond))
	var points []DayPoint
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		points = append(points, DayPoint{
			Date:    key,
			Clicks:  counts[key],
			Revenue: s.revenue(counts[key]).InexactFloat64(),
		})
	}
	return points
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
