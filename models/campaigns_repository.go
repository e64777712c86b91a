package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CampaignsRepository struct {
	db *gorm.DB
}

func NewCampaignsRepository(db *gorm.DB) *CampaignsRepository {
	return &CampaignsRepository{db: db}
}

func (r *CampaignsRepository) Create(campaign *MarketingCampaign) error {
	if err := r.db.Omit(clause.Associations).Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// List returns the campaign history, newest first, with the sending user.
func (r *CampaignsRepository) List() ([]MarketingCampaign, error) {
	var campaigns []MarketingCampaign
	if err := r.db.
		Preload("SentBy").
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}
