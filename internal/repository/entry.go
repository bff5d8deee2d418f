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

// CreateEntry inserts a new media entry.
func (r *Repository) CreateEntry(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	query := r.q.Rebind(`INSERT INTO entry (id, title, kind, score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.q.ExecContext(ctx, query,
		entry.ID, entry.Title, entry.Kind, entry.Score, entry.CreatedAt, entry.UpdatedAt)
	return wrapError(err)
}

// GetEntryByID retrieves an entry by ID.
func (r *Repository) GetEntryByID(ctx context.Context, id string) (*models.Entry, error) {
	var entry models.Entry
	query := r.q.Rebind(`SELECT * FROM entry WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.q, &entry, query, id); err != nil {
		return nil, wrapError(err)
	}
	return &entry, nil
}

// ListEntries returns all entries, newest first.
func (r *Repository) ListEntries(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	query := `SELECT * FROM entry ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, r.q, &entries, query); err != nil {
		return nil, wrapError(err)
	}
	return entries, nil
}

// UpdateEntryScore sets the score of an entry.
func (r *Repository) UpdateEntryScore(ctx context.Context, id string, score *float64) error {
	query := r.q.Rebind(`UPDATE entry SET score = ?, updated_at = ? WHERE id = ?`)
	res, err := r.q.ExecContext(ctx, query, score, time.Now().UTC(), id)
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

// DeleteEntry removes an entry.
func (r *Repository) DeleteEntry(ctx context.Context, id string) error {
	query := r.q.Rebind(`DELETE FROM entry WHERE id = ?`)
	res, err := r.q.ExecContext(ctx, query, id)
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
