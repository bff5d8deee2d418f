// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package session issues and validates the session cookie. The token is a
// small JSON payload {sub, expires_at} protected by the securecookie layer;
// there is no server-side session store. Logout only deletes the cookie, so
// a token that leaks stays valid until its expiry.
package session

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/nrs-dev/nrs-webapp/internal/config"
	"github.com/nrs-dev/nrs-webapp/internal/crypt"
)

// Token is the decoded session payload.
type Token struct {
	UserID    string `json:"sub"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expired reports whether the token expiry lies in the past.
func (t Token) Expired(now time.Time) bool {
	return now.Unix() >= t.ExpiresAt
}

// Manager encodes session tokens into a signed cookie and back.
type Manager struct {
	sc         *securecookie.SecureCookie
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

// NewManager creates a session manager. BlockKey may be nil, in which case
// the cookie is signed but not encrypted.
func NewManager(cfg config.SessionConfig, secure bool) *Manager {
	sc := securecookie.New(cfg.HashKey, cfg.BlockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(cfg.MaxAge)

	return &Manager{
		sc:         sc,
		cookieName: cfg.CookieName,
		maxAge:     time.Duration(cfg.MaxAge) * time.Second,
		secure:     secure,
		now:        time.Now,
	}
}

// Issue creates a session cookie for the given user.
func (m *Manager) Issue(userID string) (*http.Cookie, error) {
	token := Token{
		UserID:    userID,
		ExpiresAt: m.now().Add(m.maxAge).Unix(),
	}

	encoded, err := m.sc.Encode(m.cookieName, token)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Validate decodes and checks a session cookie value and returns the user
// ID. An undecodable value fails with crypt.ErrInvalidTokenFormat, a
// decodable but stale one with crypt.ErrTokenExpired.
func (m *Manager) Validate(value string) (string, error) {
	var token Token
	if err := m.sc.Decode(m.cookieName, value, &token); err != nil {
		return "", crypt.ErrInvalidTokenFormat
	}
	if token.Expired(m.now()) {
		return "", crypt.ErrTokenExpired
	}
	return token.UserID, nil
}

// Clear returns an expired cookie that removes the session from the browser.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieName returns the configured session cookie name.
func (m *Manager) CookieName() string {
	return m.cookieName
}
