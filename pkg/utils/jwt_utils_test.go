package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	token, err := m.GenerateAccessToken(7, "owner@store.tn", "owner")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "owner", claims.Role)
}

func TestTokenManager_RefreshIsNotAccess(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	refresh, err := m.GenerateRefreshToken(7)
	require.NoError(t, err)

	_, err = m.ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("a", time.Minute, time.Hour).GenerateAccessToken(1, "x", "worker")
	require.NoError(t, err)

	_, err = NewTokenManager("b", time.Minute, time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("s", -time.Minute, time.Hour)
	token, err := m.GenerateAccessToken(1, "x", "worker")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
