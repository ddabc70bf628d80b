package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-for-jwt")

	token, err := GenerateToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "birthdaybook", claims.Issuer)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-for-jwt")

	token, err := GenerateToken("alice")
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-different-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateToken("alice")
	assert.Error(t, err)
}

func TestTokenDurationFollowsConfiguredExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "")
	d, err := TokenDuration()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)

	t.Setenv("JWT_EXPIRY", "45m")
	d, err = TokenDuration()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, d)

	t.Setenv("JWT_EXPIRY", "not-a-duration")
	_, err = TokenDuration()
	assert.Error(t, err)
}

func TestExpiredTokenDetected(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-for-jwt")
	t.Setenv("JWT_EXPIRY", "-1h")

	token, err := GenerateToken("alice")
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
