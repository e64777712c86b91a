// Package auth issues and checks admin session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/flowerssaints/storefront/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRevokedToken       = errors.New("token has been revoked")
)

const revokedPrefix = "blacklist:"

// Claims is the JWT payload. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

type UserFinder interface {
	GetByEmail(email string) (*models.User, error)
}

// Service signs HS256 tokens and tracks revoked token ids in Redis.
type Service struct {
	users  UserFinder
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewService returns a token service. Without a Redis client logout cannot
// revoke tokens; they stay valid until they expire.
func NewService(users UserFinder, secret string, ttl time.Duration, rdb *redis.Client) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		rdb:    rdb,
		now:    time.Now,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Login checks the credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Claims, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := &Claims{
		Email: user.Email,
		Admin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}
	return token, claims, nil
}

// Parse verifies the signature, expiry and revocation state of raw.
func (s *Service) Parse(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if s.rdb != nil && claims.ID != "" {
		n, err := s.rdb.Exists(ctx, revokedPrefix+claims.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("checking revocation: %w", err)
		}
		if n > 0 {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}

// Revoke blacklists the token id until the token would have expired anyway.
func (s *Service) Revoke(ctx context.Context, claims *Claims) error {
	if s.rdb == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedPrefix+claims.ID, 1, remaining).Err(); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}
