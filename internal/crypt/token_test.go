// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package crypt_test

import (
	"encoding/base64"
	"testing"

	"github.com/nrs-dev/nrs-webapp/internal/crypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	token, err := crypt.GenerateToken()
	require.NoError(t, err)

	plaintext := token.String()
	assert.Len(t, plaintext, 43) // 32 bytes, base64url without padding
	assert.NotContains(t, plaintext, "=")

	parsed, err := crypt.ParseToken(plaintext)
	require.NoError(t, err)
	assert.Equal(t, token, parsed)
}

func TestParseToken_Invalid(t *testing.T) {
	cases := []string{
		"",
		"short",
		"not base64!!",
		base64.RawURLEncoding.EncodeToString(make([]byte, 16)),
		base64.RawURLEncoding.EncodeToString(make([]byte, 33)),
	}
	for _, s := range cases {
		_, err := crypt.ParseToken(s)
		assert.ErrorIs(t, err, crypt.ErrInvalidTokenFormat, s)
	}
}

func TestTokenHasher(t *testing.T) {
	token, err := crypt.GenerateToken()
	require.NoError(t, err)

	h := crypt.NewTokenHasher([]byte("token-secret"))

	hash := h.Hash(token)
	assert.Equal(t, hash, h.Hash(token))
	assert.NotEqual(t, hash, token.String())

	other := crypt.NewTokenHasher([]byte("other-secret"))
	assert.NotEqual(t, hash, other.Hash(token))
}
