// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package crypt_test

import (
	"strings"
	"testing"

	"github.com/nrs-dev/nrs-webapp/internal/crypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := crypt.NewPasswordHasher([]byte("test-pepper"))

	encoded, err := h.Hash("Sup3rSecret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := h.Verify("Sup3rSecret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("WrongPassword1", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	h := crypt.NewPasswordHasher([]byte("test-pepper"))

	first, err := h.Hash("Sup3rSecret")
	require.NoError(t, err)
	second, err := h.Hash("Sup3rSecret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify_PepperMismatch(t *testing.T) {
	h1 := crypt.NewPasswordHasher([]byte("pepper-one"))
	h2 := crypt.NewPasswordHasher([]byte("pepper-two"))

	encoded, err := h1.Hash("Sup3rSecret")
	require.NoError(t, err)

	ok, err := h2.Verify("Sup3rSecret", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	h := crypt.NewPasswordHasher([]byte("test-pepper"))

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	}
	for _, encoded := range cases {
		_, err := h.Verify("Sup3rSecret", encoded)
		assert.ErrorIs(t, err, crypt.ErrInvalidHashFormat, encoded)
	}
}

func TestDummyHash(t *testing.T) {
	h := crypt.NewPasswordHasher([]byte("test-pepper"))

	dummy := h.DummyHash()
	assert.Equal(t, dummy, h.DummyHash())

	ok, err := h.Verify("anything", dummy)
	require.NoError(t, err)
	assert.False(t, ok)
}
