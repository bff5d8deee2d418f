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

func TestCreateOAuthLink(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "testuser")
	link := &models.OAuthLink{
		UserID:         user.ID,
		Provider:       "github",
		ProviderUserID: "12345",
		AccessToken:    "encrypted-access",
	}

	err := repo.CreateOAuthLink(ctx, link)

	require.NoError(t, err)
	assert.NotEmpty(t, link.ID)
}

func TestCreateOAuthLink_DuplicateIdentity(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "testuser")
	other := testutil.NewTestUser(t, repo, "otheruser")

	require.NoError(t, repo.CreateOAuthLink(ctx, &models.OAuthLink{
		UserID: user.ID, Provider: "github", ProviderUserID: "12345", AccessToken: "enc",
	}))

	err := repo.CreateOAuthLink(ctx, &models.OAuthLink{
		UserID: other.ID, Provider: "github", ProviderUserID: "12345", AccessToken: "enc",
	})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestRefreshOAuthLink(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "testuser")
	refresh := "encrypted-refresh"
	require.NoError(t, repo.CreateOAuthLink(ctx, &models.OAuthLink{
		UserID: user.ID, Provider: "github", ProviderUserID: "12345",
		AccessToken: "old-access", RefreshToken: &refresh,
	}))

	link, err := repo.RefreshOAuthLink(ctx, "github", "12345", "new-access", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, user.ID, link.UserID)
	assert.Equal(t, "new-access", link.AccessToken)
	// nil refresh token keeps the stored one
	require.NotNil(t, link.RefreshToken)
	assert.Equal(t, "encrypted-refresh", *link.RefreshToken)
}

func TestRefreshOAuthLink_Unknown(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.RefreshOAuthLink(ctx, "github", "nobody", "access", nil, nil)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRevokeOAuthLink(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "testuser")
	require.NoError(t, repo.CreateOAuthLink(ctx, &models.OAuthLink{
		UserID: user.ID, Provider: "github", ProviderUserID: "12345", AccessToken: "enc",
	}))

	err := repo.RevokeOAuthLink(ctx, user.ID, "github")
	require.NoError(t, err)

	// Revoked links are invisible to callback lookups
	_, err = repo.RefreshOAuthLink(ctx, "github", "12345", "access", nil, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// A new link for the same identity may be created afterwards
	err = repo.CreateOAuthLink(ctx, &models.OAuthLink{
		UserID: user.ID, Provider: "github", ProviderUserID: "12345", AccessToken: "enc",
	})
	assert.NoError(t, err)
}

func TestListOAuthLinks(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "testuser")
	require.NoError(t, repo.CreateOAuthLink(ctx, &models.OAuthLink{
		UserID: user.ID, Provider: "github", ProviderUserID: "12345", AccessToken: "enc",
	}))
	require.NoError(t, repo.CreateOAuthLink(ctx, &models.OAuthLink{
		UserID: user.ID, Provider: "google", ProviderUserID: "sub-1", AccessToken: "enc",
	}))
	require.NoError(t, repo.RevokeOAuthLink(ctx, user.ID, "github"))

	links, err := repo.ListOAuthLinks(ctx, user.ID)

	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "google", links[0].Provider)
}
