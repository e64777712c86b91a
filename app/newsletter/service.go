// Package newsletter manages the subscriber list.
package newsletter

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/email"
	"github.com/flowerssaints/storefront/app/logging"
	"github.com/flowerssaints/storefront/models"
)

var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrAlreadySubscribed = errors.New("email already subscribed")
)

type SubscriberStore interface {
	GetByEmail(email string) (*models.NewsletterSubscriber, error)
	Create(subscriber *models.NewsletterSubscriber) error
	SetStatus(email string, status models.SubscriberStatus) error
}

// Mailer sends one templated email.
type Mailer interface {
	Send(ctx context.Context, to string, data email.Data) error
}

// TaskRunner runs work after the request has been answered.
type TaskRunner interface {
	Go(name string, fn func(ctx context.Context) error)
}

type Service struct {
	store  SubscriberStore
	mailer Mailer
	tasks  TaskRunner
	log    logrus.FieldLogger
}

func NewService(store SubscriberStore, mailer Mailer, tasks TaskRunner, log logrus.FieldLogger) *Service {
	return &Service{store: store, mailer: mailer, tasks: tasks, log: log}
}

// NormalizeEmail trims and lowercases addr and checks it is a bare address.
func NormalizeEmail(addr string) (string, error) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || !strings.Contains(addr[strings.LastIndex(addr, "@"):], ".") {
		return "", ErrInvalidEmail
	}
	return addr, nil
}

// Subscribe adds addr to the list and schedules the welcome email. Any
// existing record, unsubscribed or not, is rejected.
func (s *Service) Subscribe(ctx context.Context, addr, name string) (*models.NewsletterSubscriber, error) {
	addr, err := NormalizeEmail(addr)
	if err != nil {
		return nil, err
	}

	_, err = s.store.GetByEmail(addr)
	switch {
	case err == nil:
		return nil, ErrAlreadySubscribed
	case !errors.Is(err, models.ErrSubscriberNotFound):
		return nil, err
	}

	subscriber := &models.NewsletterSubscriber{
		Email:  addr,
		Name:   strings.TrimSpace(name),
		Status: models.SubscriberActive,
	}
	if err := s.store.Create(subscriber); err != nil {
		// A concurrent request may have won the unique index.
		if _, lookupErr := s.store.GetByEmail(addr); lookupErr == nil {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	s.log.WithField("email", logging.RedactEmail(addr)).Info("newsletter subscription created")

	welcome := email.WelcomeData{Name: subscriber.Name}
	s.tasks.Go("welcome-email", func(ctx context.Context) error {
		return s.mailer.Send(ctx, addr, welcome)
	})
	return subscriber, nil
}

// Unsubscribe marks addr as unsubscribed. The record is kept.
func (s *Service) Unsubscribe(ctx context.Context, addr string) error {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if err := s.store.SetStatus(addr, models.SubscriberUnsubscribed); err != nil {
		return err
	}
	s.log.WithField("email", logging.RedactEmail(addr)).Info("newsletter subscription cancelled")
	return nil
}
