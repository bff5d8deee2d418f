// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package crypt implements the credential primitives: peppered argon2id
// password hashing, single-use tokens with keyed hashing, and symmetric
// encryption for provider tokens at rest.
package crypt

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidHashFormat = errors.New("invalid password hash format")

// argon2id parameters following the RFC 9106 low-memory recommendation.
const (
	argonMemory  uint32 = 19456
	argonTime    uint32 = 2
	argonThreads uint8  = 1
	saltLength          = 16
	keyLength    uint32 = 32
)

// PasswordHasher hashes passwords with argon2id. Every password is keyed
// with a server-wide pepper before hashing, so a leaked database alone is
// not enough to mount an offline attack.
type PasswordHasher struct {
	pepper []byte
	dummy  func() string
}

func NewPasswordHasher(pepper []byte) *PasswordHasher {
	h := &PasswordHasher{pepper: pepper}
	h.dummy = sync.OnceValue(func() string {
		encoded, err := h.Hash("dummy-password-for-timing")
		if err != nil {
			panic(err)
		}
		return encoded
	})
	return h
}

// Hash hashes a password with a fresh random salt and returns the PHC
// encoded form, e.g. "$argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>".
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey(h.prehash(password), salt, argonTime, argonMemory, argonThreads, keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return encoded, nil
}

// Verify checks a password against a PHC encoded hash. A mismatch is not an
// error; only a malformed hash is.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	memory, time, threads, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey(h.prehash(password), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

// DummyHash returns a memoized hash of a fixed password. Login verifies
// against it when no user is found, keeping the response time independent of
// account existence.
func (h *PasswordHasher) DummyHash() string {
	return h.dummy()
}

// prehash keys the password with the pepper. argon2 itself has no secret
// parameter, so the pepper is applied as an HMAC pre-hash.
func (h *PasswordHasher) prehash(password string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

func decodeHash(encoded string) (memory, time uint32, threads uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, ErrInvalidHashFormat
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return 0, 0, 0, nil, nil, ErrInvalidHashFormat
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, ErrInvalidHashFormat
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, ErrInvalidHashFormat
	}

	return memory, time, threads, salt, key, nil
}
