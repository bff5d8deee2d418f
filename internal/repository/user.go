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

// CreateUser inserts a new user. ID and timestamps are filled in if unset.
// A username or email collision is reported as ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := r.q.Rebind(`INSERT INTO app_user (id, username, email, password_hash, email_verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.q.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.EmailVerifiedAt, user.CreatedAt, user.UpdatedAt)
	return wrapError(err)
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := r.q.Rebind(`SELECT * FROM app_user WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.q, &user, query, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := r.q.Rebind(`SELECT * FROM app_user WHERE username = ?`)
	if err := sqlx.GetContext(ctx, r.q, &user, query, username); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.q.Rebind(`SELECT * FROM app_user WHERE email = ?`)
	if err := sqlx.GetContext(ctx, r.q, &user, query, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// MarkEmailVerified records the verification time for a user. Verifying an
// already verified user is a no-op.
func (r *Repository) MarkEmailVerified(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	query := r.q.Rebind(`UPDATE app_user SET email_verified_at = ?, updated_at = ?
		WHERE id = ? AND email_verified_at IS NULL`)
	_, err := r.q.ExecContext(ctx, query, now, now, userID)
	return wrapError(err)
}

// UpdateUserPassword replaces a user's password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	query := r.q.Rebind(`UPDATE app_user SET password_hash = ?, updated_at = ? WHERE id = ?`)
	res, err := r.q.ExecContext(ctx, query, passwordHash, time.Now().UTC(), userID)
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
