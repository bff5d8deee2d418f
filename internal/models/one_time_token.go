// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// Token purposes. A purpose scopes a one-time token to a single flow, so a
// password reset token can never confirm an email address.
const (
	PurposeEmailVerification = "EMAIL_VERIFICATION"
	PurposePasswordReset     = "PASSWORD_RESET"
)

// OneTimeToken is the stored form of a single-use token. Only the HMAC of
// the plaintext token is persisted.
type OneTimeToken struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Purpose   string     `db:"purpose"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RequestIP *string    `db:"request_ip"`
	UserAgent *string    `db:"user_agent"`
	CreatedAt time.Time  `db:"created_at"`
	UsedAt    *time.Time `db:"used_at"`
}
