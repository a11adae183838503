package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatedesk/estate-service/internal/auth"
	"github.com/estatedesk/estate-service/internal/domain"
)

func TestTokenManager(t *testing.T) {
	t.Run("Should round-trip the user id and role", func(t *testing.T) {
		tm := auth.NewTokenManager("secret", 60)

		token, expiresAt, err := tm.GenerateToken("user-1", domain.UserRoleAgent)
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))

		claims, err := tm.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, domain.UserRoleAgent, claims.Role)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		token, _, err := auth.NewTokenManager("secret-a", 60).GenerateToken("user-1", domain.UserRoleAdmin)
		require.NoError(t, err)

		_, err = auth.NewTokenManager("secret-b", 60).ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("Should reject a garbage token", func(t *testing.T) {
		_, err := auth.NewTokenManager("secret", 60).ParseToken("not-a-jwt")
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Run("Should verify the original password only", func(t *testing.T) {
		hash, err := auth.HashPassword("hunter2", 4)
		require.NoError(t, err)

		assert.NoError(t, auth.ComparePassword(hash, "hunter2"))
		assert.Error(t, auth.ComparePassword(hash, "hunter3"))
	})

	t.Run("Should produce a stable token digest", func(t *testing.T) {
		assert.Equal(t, auth.HashToken("abc"), auth.HashToken("abc"))
		assert.NotEqual(t, auth.HashToken("abc"), auth.HashToken("abd"))
	})
}
