package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken("storekeeper-7", "M. Rojas", []string{"storekeeper"})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "storekeeper-7", user.UserID)
	assert.Equal(t, "M. Rojas", user.Name)
	assert.Equal(t, []string{"storekeeper"}, user.Roles)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewTokenService(DefaultJWTConfig("test-secret"))

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService(DefaultJWTConfig("other-secret"))
		token, _, err := other.GenerateAccessToken("u1", "", nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		cfg := DefaultJWTConfig("test-secret")
		cfg.AccessTokenTTL = -time.Minute
		token, _, err := NewTokenService(cfg).GenerateAccessToken("u1", "", nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		cfg := DefaultJWTConfig("test-secret")
		cfg.Issuer = "someone-else"
		token, _, err := NewTokenService(cfg).GenerateAccessToken("u1", "", nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, _, err := svc.GenerateAccessToken("", "", nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.EqualError(t, err, "token has no subject")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}
