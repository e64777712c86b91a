package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAdmin(t *testing.T) {
	t.Run("normalizes and hashes", func(t *testing.T) {
		u, err := NewAdmin("  Owner@Shop.Test ", " Owner ", "correct horse")

		require.NoError(t, err)
		assert.Equal(t, "owner@shop.test", u.Email)
		assert.Equal(t, "Owner", u.Name)
		assert.True(t, u.IsAdmin)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))
	})

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{name: "bad email", email: "not-an-email", password: "long enough", want: ErrInvalidEmail},
		{name: "display name form", email: "Owner <owner@shop.test>", password: "long enough", want: ErrInvalidEmail},
		{name: "short password", email: "owner@shop.test", password: "short", want: ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdmin(tt.email, "", tt.password)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}
