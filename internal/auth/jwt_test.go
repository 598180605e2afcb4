package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret")

	token, err := manager.GenerateAccessJWT("user-1", time.Minute)
	require.NoError(t, err)

	userID, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestAccessTokenExpired(t *testing.T) {
	manager := NewJWTManager("test-secret")

	token, err := manager.GenerateAccessJWT("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret")
	other := NewJWTManager("other-secret")

	token, err := manager.GenerateAccessJWT("user-1", time.Minute)
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshTokenBoundToHashToken(t *testing.T) {
	manager := NewJWTManager("test-secret")

	token, err := manager.GenerateRefreshJWT("user-1", "hash-token-v1", time.Hour)
	require.NoError(t, err)

	require.NoError(t, manager.ValidateRefreshToken(token, "hash-token-v1"))

	// Rotating the stored hash token must invalidate older refresh tokens.
	err = manager.ValidateRefreshToken(token, "hash-token-v2")
	assert.ErrorIs(t, err, ErrInvalidJWTRefreshToken)
}

func TestExtractUserIDFromRefreshToken(t *testing.T) {
	manager := NewJWTManager("test-secret")

	token, err := manager.GenerateRefreshJWT("user-1", "hash-token-v1", time.Hour)
	require.NoError(t, err)

	userID, err := manager.ExtractUserIDFromRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}
