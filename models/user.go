package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a dashboard account. Only users with IsAdmin may manage the catalog
// and send campaigns.
type User struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string
	PasswordHash string `gorm:"not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
