package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClicksRepository struct {
	db *gorm.DB
}

// ProductClicks is a per-product click count.
type ProductClicks struct {
	ProductID string
	Title     string
	Clicks    int64
}

func NewClicksRepository(db *gorm.DB) *ClicksRepository {
	return &ClicksRepository{db: db}
}

// CreateClick appends a click record.
func (r *ClicksRepository) CreateClick(click *ClickTracking) error {
	if err := r.db.Omit(clause.Associations).Create(click).Error; err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

// CountClicks counts clicks in [from, to). A nil bound leaves that side open.
func (r *ClicksRepository) CountClicks(from, to *time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&ClickTracking{})
	if from != nil {
		query = query.Where("clicked_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("clicked_at < ?", *to)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// ClickTimes returns the timestamp of every click in [from, to), oldest first.
func (r *ClicksRepository) ClickTimes(from, to time.Time) ([]time.Time, error) {
	var rows []ClickTracking
	if err := r.db.
		Select("clicked_at").
		Where("clicked_at >= ? AND clicked_at < ?", from, to).
		Order("clicked_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load click times: %w", err)
	}
	times := make([]time.Time, len(rows))
	for i, row := range rows {
		times[i] = row.ClickedAt
	}
	return times, nil
}

// TopProducts returns the most clicked products since from.
func (r *ClicksRepository) TopProducts(from time.Time, limit int) ([]ProductClicks, error) {
	var top []ProductClicks
	if err := r.db.Model(&ClickTracking{}).
		Select("click_tracking.product_id AS product_id, products.title AS title, COUNT(*) AS clicks").
		Joins("JOIN products ON products.id = click_tracking.product_id").
		Where("click_tracking.clicked_at >= ?", from).
		Group("click_tracking.product_id, products.title").
		Order("clicks DESC").
		Limit(limit).
		Scan(&top).Error; err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}
	return top, nil
}
