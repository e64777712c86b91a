package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClickTracking is a single outbound click on a product's affiliate link.
// Rows are append-only: nothing in the application updates or deletes them.
type ClickTracking struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	ProductID string    `gorm:"type:uuid;not null;index"`
	Product   Product   `gorm:"foreignKey:ProductID"`
	IPAddress string    `gorm:"type:varchar(64)"`
	UserAgent string    `gorm:"type:text"`
	ClickedAt time.Time `gorm:"not null;index"`
}

func (c *ClickTracking) TableName() string {
	return "click_tracking"
}

func (c *ClickTracking) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ClickedAt.IsZero() {
		c.ClickedAt = time.Now().UTC()
	}
	return nil
}
