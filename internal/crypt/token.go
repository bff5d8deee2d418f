// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package crypt

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// TokenLength is the number of random bytes in a one-time token.
const TokenLength = 32

var (
	ErrInvalidTokenFormat = errors.New("invalid token format")
	ErrTokenExpired       = errors.New("token expired")
)

// Token is a single-use credential handed to the user by mail. The plaintext
// form travels in a link; only its keyed hash is ever stored.
type Token [TokenLength]byte

// GenerateToken creates a token from cryptographically random bytes.
func GenerateToken() (Token, error) {
	var t Token
	if _, err := rand.Read(t[:]); err != nil {
		return Token{}, fmt.Errorf("generating token: %w", err)
	}
	return t, nil
}

// ParseToken decodes the plaintext form of a token. It rejects anything that
// is not exactly TokenLength bytes of unpadded URL-safe base64.
func ParseToken(s string) (Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(raw) != TokenLength {
		return Token{}, ErrInvalidTokenFormat
	}
	var t Token
	copy(t[:], raw)
	return t, nil
}

// String returns the plaintext form, URL-safe base64 without padding.
func (t Token) String() string {
	return base64.RawURLEncoding.EncodeToString(t[:])
}

// TokenHasher computes the storable hash of a token, keyed with the server
// token secret so stolen database rows cannot be replayed as tokens.
type TokenHasher struct {
	secret []byte
}

func NewTokenHasher(secret []byte) TokenHasher {
	return TokenHasher{secret: secret}
}

// Hash returns the HMAC-SHA256 of the token, standard base64 encoded.
func (h TokenHasher) Hash(t Token) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(t[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
