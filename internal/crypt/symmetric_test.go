// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package crypt_test

import (
	"testing"

	"github.com/nrs-dev/nrs-webapp/internal/crypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_RoundTrip(t *testing.T) {
	c, err := crypt.NewCipher(make([]byte, 32))
	require.NoError(t, err)

	encrypted, err := c.EncryptString("gho_access_token")
	require.NoError(t, err)
	assert.NotEqual(t, "gho_access_token", encrypted)

	decrypted, err := c.DecryptString(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "gho_access_token", decrypted)
}

func TestCipher_UniqueNonce(t *testing.T) {
	c, err := crypt.NewCipher(make([]byte, 32))
	require.NoError(t, err)

	first, err := c.EncryptString("secret")
	require.NoError(t, err)
	second, err := c.EncryptString("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCipher_Tampered(t *testing.T) {
	c, err := crypt.NewCipher(make([]byte, 32))
	require.NoError(t, err)

	_, err = c.DecryptString("not base64")
	assert.ErrorIs(t, err, crypt.ErrCiphertextInvalid)

	_, err = c.DecryptString("c2hvcnQ=")
	assert.ErrorIs(t, err, crypt.ErrCiphertextInvalid)
}

func TestNewCipher_BadKey(t *testing.T) {
	_, err := crypt.NewCipher(make([]byte, 5))
	assert.Error(t, err)
}
