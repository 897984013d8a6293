package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPasscode(t *testing.T) {
	t.Setenv("RIDER_PASSCODE", "trail-secret")

	service, err := NewService()
	require.NoError(t, err)

	assert.True(t, service.CheckPasscode("trail-secret"))
	assert.False(t, service.CheckPasscode("wrong"))
	assert.False(t, service.CheckPasscode(""))
}

func TestDefaultPasscode(t *testing.T) {
	t.Setenv("RIDER_PASSCODE", "")

	service, err := NewService()
	require.NoError(t, err)

	assert.True(t, service.CheckPasscode("shocktracker"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	service, err := NewService()
	require.NoError(t, err)

	token, err := service.GenerateToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.NoError(t, service.ValidateToken(token))
	assert.NoError(t, service.ValidateToken("Bearer "+token), "bearer prefix tolerated")
}

func TestValidateToken_Invalid(t *testing.T) {
	service, err := NewService()
	require.NoError(t, err)

	assert.ErrorIs(t, service.ValidateToken("not-a-token"), ErrInvalidToken)
	assert.ErrorIs(t, service.ValidateToken(""), ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	first, err := NewService()
	require.NoError(t, err)

	token, err := first.GenerateToken()
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-two")
	second, err := NewService()
	require.NoError(t, err)

	assert.ErrorIs(t, second.ValidateToken(token), ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "-1h")

	service, err := NewService()
	require.NoError(t, err)

	token, err := service.GenerateToken()
	require.NoError(t, err)

	assert.ErrorIs(t, service.ValidateToken(token), ErrExpiredToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	service, err := NewService()
	require.NoError(t, err)

	token, extractErr := service.ExtractTokenFromHeader("Bearer abc123")
	assert.NoError(t, extractErr)
	assert.Equal(t, "abc123", token)

	for _, header := range []string{"", "abc123", "Basic abc123", "Bearer ", "Bearer a b"} {
		_, extractErr = service.ExtractTokenFromHeader(header)
		assert.ErrorIs(t, extractErr, ErrInvalidToken, "header %q", header)
	}
}
