// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrs-dev/nrs-webapp/internal/models"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
	"github.com/nrs-dev/nrs-webapp/internal/testutil"
)

func TestCreateEntry(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	entry := &models.Entry{Title: "Frieren", Kind: models.EntryKindAnime}

	err := repo.CreateEntry(ctx, entry)

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NotZero(t, entry.CreatedAt)
}

func TestListEntries_NewestFirst(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateEntry(ctx, &models.Entry{Title: "First", Kind: models.EntryKindGame}))
	require.NoError(t, repo.CreateEntry(ctx, &models.Entry{Title: "Second", Kind: models.EntryKindManga}))

	entries, err := repo.ListEntries(ctx)

	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestUpdateEntryScore(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	entry := &models.Entry{Title: "Frieren", Kind: models.EntryKindAnime}
	require.NoError(t, repo.CreateEntry(ctx, entry))

	score := 9.5
	err := repo.UpdateEntryScore(ctx, entry.ID, &score)
	require.NoError(t, err)

	updated, err := repo.GetEntryByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Score)
	assert.InDelta(t, 9.5, *updated.Score, 0.001)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	err := repo.DeleteEntry(ctx, "missing-id")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}
