package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrSubscriberNotFound is returned when no subscriber has the given email.
var ErrSubscriberNotFound = errors.New("subscriber not found")

type SubscribersRepository struct {
	db *gorm.DB
}

func NewSubscribersRepository(db *gorm.DB) *SubscribersRepository {
	return &SubscribersRepository{db: db}
}

func (r *SubscribersRepository) GetByEmail(email string) (*NewsletterSubscriber, error) {
	var subscriber NewsletterSubscriber
	if err := r.db.Where("email = ?", email).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriberNotFound
		}
		return nil, err
	}
	return &subscriber, nil
}

func (r *SubscribersRepository) Create(subscriber *NewsletterSubscriber) error {
	if err := r.db.Create(subscriber).Error; err != nil {
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	return nil
}

func (r *SubscribersRepository) SetStatus(email string, status SubscriberStatus) error {
	res := r.db.Model(&NewsletterSubscriber{}).
		Where("email = ?", email).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update subscriber status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func (r *SubscribersRepository) ListActive() ([]NewsletterSubscriber, error) {
	var subscribers []NewsletterSubscriber
	if err := r.db.
		Where("status = ?", SubscriberActive).
		Order("created_at ASC").
		Find(&subscribers).Error; err != nil {
		return nil, err
	}
	return subscribers, nil
}

func (r *SubscribersRepository) CountByStatus(status SubscriberStatus) (int64, error) {
	var count int64
	if err := r.db.Model(&NewsletterSubscriber{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
