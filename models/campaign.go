package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MarketingCampaign is the audit record of one admin-triggered newsletter send.
type MarketingCampaign struct {
	ID         string         `gorm:"type:uuid;primaryKey"`
	Subject    string         `gorm:"not null"`
	Content    string         `gorm:"type:text;not null"`
	SentTo     int            `gorm:"not null"`
	ProductIDs pq.StringArray `gorm:"type:text[]"`
	SentByID   string         `gorm:"type:uuid;not null;index"`
	SentBy     User           `gorm:"foreignKey:SentByID"`
	CreatedAt  time.Time
}

func (c *MarketingCampaign) TableName() string {
	return "marketing_campaigns"
}

func (c *MarketingCampaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
