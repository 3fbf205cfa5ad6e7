package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken(userID, "user@mail.com", "professional", "secret", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@mail.com", claims.Email)
	assert.Equal(t, "professional", claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "a@b.com", "enduser", "secret", time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "a@b.com", "enduser", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateRefreshToken(userID, "refresh-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestRefreshToken_NotValidAsAccessToken(t *testing.T) {
	token, err := GenerateRefreshToken(uuid.New(), "refresh-secret", time.Hour)
	require.NoError(t, err)

	// Другой секрет - refresh не должен проходить как access
	_, err = ValidateToken(token, "access-secret")
	require.Error(t, err)
}
