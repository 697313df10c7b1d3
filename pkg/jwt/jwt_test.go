package jwt

import (
	"testing"
	"time"

	"mediconnect/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(secret string, access time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        secret,
		AccessExpiry:  access,
		RefreshExpiry: time.Hour,
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestService("secret", time.Minute)
	userID := uuid.New()

	token, err := svc.GenerateRefreshToken(userID, "doc@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.Signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "doc@example.com", claims.Email)
	assert.Equal(t, RefreshToken, claims.TokenType)
	assert.Equal(t, token.ID, claims.TokenID)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, err := newTestService("one", time.Minute).GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = newTestService("two", time.Minute).ValidateToken(token.Signed)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := newTestService("secret", -time.Minute)
	token, err := svc.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token.Signed)
	assert.Error(t, err)
}

func TestTokenKey(t *testing.T) {
	userID := uuid.MustParse("8d7a1f2e-3b4c-4d5e-8f90-1a2b3c4d5e6f")

	assert.Equal(t, "access_token:8d7a1f2e-3b4c-4d5e-8f90-1a2b3c4d5e6f:abc", TokenKey(AccessToken, userID, "abc"))
	assert.Equal(t, "refresh_token:*:abc", TokenPattern(RefreshToken, nil, "abc"))
	assert.Equal(t, "access_token:8d7a1f2e-3b4c-4d5e-8f90-1a2b3c4d5e6f:*", TokenPattern(AccessToken, &userID, ""))
}
