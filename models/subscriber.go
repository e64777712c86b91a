package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriberStatus string

const (
	SubscriberActive       SubscriberStatus = "active"
	SubscriberUnsubscribed SubscriberStatus = "unsubscribed"
)

// NewsletterSubscriber is an email address on the newsletter list.
type NewsletterSubscriber struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	Name      string
	Status    SubscriberStatus `gorm:"type:varchar(20);not null;default:active;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}

func (s *NewsletterSubscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
