package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribersRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscribersRepository(db)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, repo.Create(&NewsletterSubscriber{Email: email, Status: SubscriberActive}))
	}

	t.Run("Unique email", func(t *testing.T) {
		err := repo.Create(&NewsletterSubscriber{Email: "a@example.com", Status: SubscriberActive})
		assert.Error(t, err)
	})

	t.Run("Get by email", func(t *testing.T) {
		s, err := repo.GetByEmail("b@example.com")
		require.NoError(t, err)
		assert.Equal(t, SubscriberActive, s.Status)

		_, err = repo.GetByEmail("nobody@example.com")
		assert.ErrorIs(t, err, ErrSubscriberNotFound)
	})

	t.Run("Set status", func(t *testing.T) {
		require.NoError(t, repo.SetStatus("c@example.com", SubscriberUnsubscribed))
		assert.ErrorIs(t, repo.SetStatus("nobody@example.com", SubscriberUnsubscribed), ErrSubscriberNotFound)

		active, err := repo.ListActive()
		require.NoError(t, err)
		assert.Len(t, active, 2)

		count, err := repo.CountByStatus(SubscriberUnsubscribed)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestUsersRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsersRepository(db)

	user := &User{Email: "admin@example.com", Name: "Admin", PasswordHash: "hash", IsAdmin: true}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail("admin@example.com")
	require.NoError(t, err)
	assert.True(t, byEmail.IsAdmin)

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", byID.Name)

	_, err = repo.GetByEmail("missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
