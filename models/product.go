package models

import (
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents an Amazon-linked product in the catalog.
// Every product belongs to exactly one category.
type Product struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Image       string
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AmazonLink  string          `gorm:"type:text;not null"`
	AffiliateID string          `gorm:"not null"`
	CategoryID  string          `gorm:"type:uuid;not null;index"`
	Category    Category        `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AffiliateURL returns the marketing link with the affiliate tag applied.
// An existing tag parameter is replaced; other query parameters are kept.
func (p *Product) AffiliateURL() string {
	u, err := url.Parse(p.AmazonLink)
	if err != nil {
		return p.AmazonLink
	}
	if p.AffiliateID == "" {
		return u.String()
	}
	q := u.Query()
	q.Set("tag", p.AffiliateID)
	u.RawQuery = q.Encode()
	return u.String()
}
