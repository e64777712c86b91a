package auth

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/flowerssaints/storefront/models"
)

// MinPasswordLength applies to accounts created from the CLI.
const MinPasswordLength = 8

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// NewAdmin builds an admin account with a bcrypt password hash. It does not
// store it.
func NewAdmin(email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		IsAdmin:      true,
	}, nil
}
