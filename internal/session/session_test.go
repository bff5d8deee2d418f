// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrs-dev/nrs-webapp/internal/config"
	"github.com/nrs-dev/nrs-webapp/internal/crypt"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(config.SessionConfig{
		CookieName: "session_token",
		MaxAge:     3600,
		HashKey:    []byte("0123456789abcdef0123456789abcdef"),
	}, false)
}

func TestIssueAndValidate(t *testing.T) {
	m := testManager(t)

	cookie, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, "session_token", cookie.Name)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)

	userID, err := m.Validate(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidate_Garbage(t *testing.T) {
	m := testManager(t)

	_, err := m.Validate("definitely-not-a-cookie")

	assert.ErrorIs(t, err, crypt.ErrInvalidTokenFormat)
}

func TestValidate_WrongKey(t *testing.T) {
	m := testManager(t)
	other := NewManager(config.SessionConfig{
		CookieName: "session_token",
		MaxAge:     3600,
		HashKey:    []byte("fedcba9876543210fedcba9876543210"),
	}, false)

	cookie, err := other.Issue("user-1")
	require.NoError(t, err)

	_, err = m.Validate(cookie.Value)
	assert.ErrorIs(t, err, crypt.ErrInvalidTokenFormat)
}

func TestValidate_Expired(t *testing.T) {
	m := testManager(t)

	cookie, err := m.Issue("user-1")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = m.Validate(cookie.Value)
	assert.ErrorIs(t, err, crypt.ErrTokenExpired)
}

func TestClear(t *testing.T) {
	m := testManager(t)

	cookie := m.Clear()

	assert.Equal(t, "session_token", cookie.Name)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.Empty(t, cookie.Value)
}
