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

// UpsertOneTimeToken stores a token, rotating any unused token for the same
// user and purpose in place. The conflict target is the partial unique index
// on (user_id, purpose) WHERE used_at IS NULL, so consumed tokens are kept
// as an audit trail while a resend simply replaces the pending one.
func (r *Repository) UpsertOneTimeToken(ctx context.Context, token *models.OneTimeToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.CreatedAt = time.Now().UTC()

	query := r.q.Rebind(`INSERT INTO user_one_time_token (id, user_id, purpose, token_hash, expires_at, request_ip, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, purpose) WHERE used_at IS NULL DO UPDATE SET
			token_hash = excluded.token_hash,
			expires_at = excluded.expires_at,
			request_ip = excluded.request_ip,
			user_agent = excluded.user_agent,
			created_at = excluded.created_at`)
	_, err := r.q.ExecContext(ctx, query,
		token.ID, token.UserID, token.Purpose, token.TokenHash, token.ExpiresAt,
		token.RequestIP, token.UserAgent, token.CreatedAt)
	return wrapError(err)
}

// ConsumeOneTimeToken atomically marks a token as used and returns the owning
// user ID. A single conditional UPDATE guards hash, purpose, expiry and
// reuse at once; any non-match surfaces as ErrNotFound, deliberately not
// saying which condition failed.
func (r *Repository) ConsumeOneTimeToken(ctx context.Context, tokenHash, purpose string) (string, error) {
	now := time.Now().UTC()

	var userID string
	query := r.q.Rebind(`UPDATE user_one_time_token SET used_at = ?
		WHERE token_hash = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?
		RETURNING user_id`)
	if err := sqlx.GetContext(ctx, r.q, &userID, query, now, tokenHash, purpose, now); err != nil {
		return "", wrapError(err)
	}
	return userID, nil
}

// GetActiveOneTimeToken retrieves the unused token for a user and purpose.
func (r *Repository) GetActiveOneTimeToken(ctx context.Context, userID, purpose string) (*models.OneTimeToken, error) {
	var token models.OneTimeToken
	query := r.q.Rebind(`SELECT * FROM user_one_time_token
		WHERE user_id = ? AND purpose = ? AND used_at IS NULL`)
	if err := sqlx.GetContext(ctx, r.q, &token, query, userID, purpose); err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// DeleteExpiredOneTimeTokens removes tokens past their expiry that were
// never used.
func (r *Repository) DeleteExpiredOneTimeTokens(ctx context.Context) (int64, error) {
	query := r.q.Rebind(`DELETE FROM user_one_time_token WHERE used_at IS NULL AND expires_at <= ?`)
	res, err := r.q.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, wrapError(err)
	}
	return res.RowsAffected()
}
