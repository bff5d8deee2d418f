// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package oauth implements the federated login flows: Google via OIDC and
// GitHub via plain OAuth2, both with PKCE. The flow state (CSRF state,
// nonce, PKCE verifier) and the pending registration tokens travel in
// securecookie-protected cookies scoped to /auth/oauth.
package oauth

import (
	"context"

	"golang.org/x/oauth2"
)

// Identity is the normalized view of a user at an external provider.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// Provider abstracts one external identity provider.
type Provider interface {
	// Name is the registry key, e.g. "google".
	Name() string
	// AuthCodeURL builds the authorization redirect. Providers without
	// nonce support ignore it.
	AuthCodeURL(state, nonce, verifier string) string
	// Exchange redeems the authorization code, presenting the PKCE
	// verifier.
	Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	// Identity resolves the provider identity behind an exchanged token.
	// OIDC providers verify the ID token and compare the nonce.
	Identity(ctx context.Context, token *oauth2.Token, nonce string) (*Identity, error)
}
