// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T) *CookieCodec {
	t.Helper()
	return NewCookieCodec(
		[]byte("0123456789abcdef0123456789abcdef"),
		[]byte("fedcba9876543210fedcba9876543210"),
		false,
	)
}

func TestFlowState_RoundTrip(t *testing.T) {
	c := testCodec(t)

	fs := FlowState{Provider: "google", State: "state-1", Nonce: "nonce-1", Verifier: "verifier-1"}

	cookie, err := c.EncodeFlowState(fs)
	require.NoError(t, err)
	assert.Equal(t, FlowStateCookie, cookie.Name)
	assert.Equal(t, "/auth/oauth", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.NotContains(t, cookie.Value, "verifier-1")

	decoded, err := c.DecodeFlowState(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, fs, decoded)
}

func TestFlowState_Tampered(t *testing.T) {
	c := testCodec(t)

	_, err := c.DecodeFlowState("garbage")

	assert.ErrorIs(t, err, ErrAuthFlowStateCookieNotFound)
}

func TestTempTokens_RoundTrip(t *testing.T) {
	c := testCodec(t)

	tt := TempTokens{
		Provider:      "github",
		Subject:       "12345",
		Email:         "user@example.com",
		EmailVerified: true,
		Name:          "User",
		AccessToken:   "gho_secret",
	}

	cookie, err := c.EncodeTempTokens(tt)
	require.NoError(t, err)
	assert.Equal(t, TempTokensCookie, cookie.Name)
	assert.NotContains(t, cookie.Value, "gho_secret")

	decoded, err := c.DecodeTempTokens(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, tt, decoded)
}

func TestTempTokens_WrongCookieKind(t *testing.T) {
	c := testCodec(t)

	cookie, err := c.EncodeFlowState(FlowState{Provider: "google", State: "s"})
	require.NoError(t, err)

	_, err = c.DecodeTempTokens(cookie.Value)
	assert.ErrorIs(t, err, ErrTempTokenCookieNotFound)
}

func TestClearCookies(t *testing.T) {
	c := testCodec(t)

	assert.Equal(t, -1, c.ClearFlowState().MaxAge)
	assert.Equal(t, -1, c.ClearTempTokens().MaxAge)
}
