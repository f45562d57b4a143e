package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, exp, err := m.Generate("user-1", "jane@example.com", "buyer", ScopeSession, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, "buyer", claims.Role)
	require.Equal(t, ScopeSession, claims.Scope)
	require.NotEmpty(t, claims.ID)
}

func TestTokenManagerRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Generate("user-1", "jane@example.com", "buyer", ScopeSession, time.Hour)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	require.Error(t, err)
}

func TestTokenManagerRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("one").Generate("u", "e@example.com", "seller", ScopeSession, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("two").Validate(token)
	require.Error(t, err)
}
