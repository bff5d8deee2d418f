// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// OAuthLink connects a local user to an identity at an external provider.
// Provider tokens are encrypted before storage; a link is soft-deleted by
// setting RevokedAt.
type OAuthLink struct {
	ID                   string     `db:"id"`
	UserID               string     `db:"user_id"`
	Provider             string     `db:"provider"`
	ProviderUserID       string     `db:"provider_user_id"`
	AccessToken          string     `db:"access_token"`
	RefreshToken         *string    `db:"refresh_token"`
	AccessTokenExpiresAt *time.Time `db:"access_token_expires_at"`
	CreatedAt            time.Time  `db:"created_at"`
	RevokedAt            *time.Time `db:"revoked_at"`
}
