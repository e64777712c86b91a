package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a user lookup matches nothing.
var ErrUserNotFound = errors.New("user not found")

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func (r *UsersRepository) GetByEmail(email string) (*User, error) {
	return r.first("email = ?", email)
}

func (r *UsersRepository) GetByID(id string) (*User, error) {
	return r.first("id = ?", id)
}

func (r *UsersRepository) Create(user *User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UsersRepository) first(query string, arg interface{}) (*User, error) {
	var user User
	if err := r.db.Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
