// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGitHubAPI(t *testing.T, userBody, emailsBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userBody))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, _ *http.Request) {
		if emailsBody == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(emailsBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubIdentity_PrefersVerifiedEmail(t *testing.T) {
	srv := newGitHubAPI(t,
		`{"id": 12345, "login": "octocat", "name": "Octo Cat", "email": "", "avatar_url": "https://example.com/a.png"}`,
		`[{"email": "primary@example.com", "primary": true, "verified": false},
		  {"email": "verified@example.com", "primary": false, "verified": true}]`,
	)

	g := NewGitHub("id", "secret", "http://localhost/cb")
	g.apiBase = srv.URL

	identity, err := g.Identity(context.Background(), &oauth2.Token{AccessToken: "gho_test"}, "")

	require.NoError(t, err)
	assert.Equal(t, "github", identity.Provider)
	assert.Equal(t, "12345", identity.Subject)
	assert.Equal(t, "verified@example.com", identity.Email)
	assert.True(t, identity.EmailVerified)
	assert.Equal(t, "Octo Cat", identity.Name)
}

func TestGitHubIdentity_FallsBackToPrimary(t *testing.T) {
	srv := newGitHubAPI(t,
		`{"id": 12345, "login": "octocat"}`,
		`[{"email": "first@example.com", "primary": false, "verified": false},
		  {"email": "primary@example.com", "primary": true, "verified": false}]`,
	)

	g := NewGitHub("id", "secret", "http://localhost/cb")
	g.apiBase = srv.URL

	identity, err := g.Identity(context.Background(), &oauth2.Token{AccessToken: "gho_test"}, "")

	require.NoError(t, err)
	assert.Equal(t, "primary@example.com", identity.Email)
	assert.False(t, identity.EmailVerified)
	// Name falls back to the login
	assert.Equal(t, "octocat", identity.Name)
}

func TestGitHubIdentity_EmailsEndpointUnavailable(t *testing.T) {
	srv := newGitHubAPI(t,
		`{"id": 12345, "login": "octocat", "email": "profile@example.com"}`,
		"",
	)

	g := NewGitHub("id", "secret", "http://localhost/cb")
	g.apiBase = srv.URL

	identity, err := g.Identity(context.Background(), &oauth2.Token{AccessToken: "gho_test"}, "")

	require.NoError(t, err)
	assert.Equal(t, "profile@example.com", identity.Email)
	assert.False(t, identity.EmailVerified)
}

func TestGitHubIdentity_NoEmailAnywhere(t *testing.T) {
	srv := newGitHubAPI(t,
		`{"id": 12345, "login": "octocat"}`,
		`[]`,
	)

	g := NewGitHub("id", "secret", "http://localhost/cb")
	g.apiBase = srv.URL

	_, err := g.Identity(context.Background(), &oauth2.Token{AccessToken: "gho_test"}, "")

	assert.ErrorIs(t, err, ErrInvalidIdTokenClaims)
}

func TestGitHubAuthCodeURL(t *testing.T) {
	g := NewGitHub("client-id", "secret", "http://localhost/cb")

	url := g.AuthCodeURL("the-state", "ignored-nonce", oauth2.GenerateVerifier())

	assert.Contains(t, url, "github.com/login/oauth/authorize")
	assert.Contains(t, url, "state=the-state")
	assert.Contains(t, url, "code_challenge=")
	assert.Contains(t, url, "code_challenge_method=S256")
	assert.NotContains(t, url, "nonce")
}
