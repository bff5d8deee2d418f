// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vinovest/sqlx"

	"github.com/nrs-dev/nrs-webapp/internal/models"
)

// CreateOAuthLink inserts a new provider link. A second unrevoked link for
// the same provider identity is reported as ErrDuplicate.
func (r *Repository) CreateOAuthLink(ctx context.Context, link *models.OAuthLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	link.CreatedAt = time.Now().UTC()

	query := r.q.Rebind(`INSERT INTO app_user_oauth_link (id, user_id, provider, provider_user_id, access_token, refresh_token, access_token_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.q.ExecContext(ctx, query,
		link.ID, link.UserID, link.Provider, link.ProviderUserID,
		link.AccessToken, link.RefreshToken, link.AccessTokenExpiresAt, link.CreatedAt)
	return wrapError(err)
}

// RefreshOAuthLink looks up the unrevoked link for a provider identity and
// refreshes its stored tokens in the same statement. A missing refresh token
// keeps the previously stored one, since some providers only issue it on the
// first consent. Returns ErrNotFound when no active link exists.
func (r *Repository) RefreshOAuthLink(ctx context.Context, provider, providerUserID, accessToken string, refreshToken *string, expiresAt *time.Time) (*models.OAuthLink, error) {
	var link models.OAuthLink
	query := r.q.Rebind(`UPDATE app_user_oauth_link SET
			access_token = ?,
			refresh_token = COALESCE(?, refresh_token),
			access_token_expires_at = ?
		WHERE provider = ? AND provider_user_id = ? AND revoked_at IS NULL
		RETURNING *`)
	if err := sqlx.GetContext(ctx, r.q, &link, query,
		accessToken, refreshToken, expiresAt, provider, providerUserID); err != nil {
		return nil, wrapError(err)
	}
	return &link, nil
}

// RevokeOAuthLink soft-deletes a user's link to a provider.
func (r *Repository) RevokeOAuthLink(ctx context.Context, userID, provider string) error {
	query := r.q.Rebind(`UPDATE app_user_oauth_link SET revoked_at = ?
		WHERE user_id = ? AND provider = ? AND revoked_at IS NULL`)
	res, err := r.q.ExecContext(ctx, query, time.Now().UTC(), userID, provider)
	if err != nil {
		return wrapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOAuthLinks returns a user's unrevoked provider links.
func (r *Repository) ListOAuthLinks(ctx context.Context, userID string) ([]models.OAuthLink, error) {
	var links []models.OAuthLink
	query := r.q.Rebind(`SELECT * FROM app_user_oauth_link
		WHERE user_id = ? AND revoked_at IS NULL ORDER BY created_at`)
	if err := sqlx.SelectContext(ctx, r.q, &links, query, userID); err != nil {
		return nil, wrapError(err)
	}
	return links, nil
}
