// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/nrs-dev/nrs-webapp/internal/crypt"
	"github.com/nrs-dev/nrs-webapp/internal/models"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
)

// Manager drives the authorize/callback/register flow on top of the
// provider registry. Provider tokens are encrypted before they reach the
// database.
type Manager struct {
	registry *Registry
	repo     *repository.Repository
	cipher   *crypt.Cipher
	cookies  *CookieCodec
}

func NewManager(registry *Registry, repo *repository.Repository, cipher *crypt.Cipher, cookies *CookieCodec) *Manager {
	return &Manager{registry: registry, repo: repo, cipher: cipher, cookies: cookies}
}

// Cookies exposes the flow cookie codec for the HTTP layer.
func (m *Manager) Cookies() *CookieCodec {
	return m.cookies
}

// Providers lists the configured provider names.
func (m *Manager) Providers() []string {
	return m.registry.Names()
}

// Begin starts the flow for a provider: fresh CSRF state, nonce and PKCE
// verifier go into the flow-state cookie, and the caller redirects the
// browser to the returned URL.
func (m *Manager) Begin(providerName string) (string, *http.Cookie, error) {
	p, err := m.registry.Get(providerName)
	if err != nil {
		return "", nil, err
	}

	state, err := crypt.GenerateToken()
	if err != nil {
		return "", nil, err
	}
	nonce, err := crypt.GenerateToken()
	if err != nil {
		return "", nil, err
	}
	verifier := oauth2.GenerateVerifier()

	cookie, err := m.cookies.EncodeFlowState(FlowState{
		Provider: providerName,
		State:    state.String(),
		Nonce:    nonce.String(),
		Verifier: verifier,
	})
	if err != nil {
		return "", nil, err
	}

	return p.AuthCodeURL(state.String(), nonce.String(), verifier), cookie, nil
}

// CallbackResult is the outcome of a provider callback. Exactly one of
// UserID and Pending is set: a known link logs the user in, an unknown
// identity moves on to registration.
type CallbackResult struct {
	UserID  string
	Pending *TempTokens
}

// Callback completes the provider round trip: CSRF state check, code
// exchange, identity resolution, then the atomic link lookup that also
// refreshes the stored tokens.
func (m *Manager) Callback(ctx context.Context, providerName, code, state, flowStateValue string) (*CallbackResult, error) {
	fs, err := m.cookies.DecodeFlowState(flowStateValue)
	if err != nil {
		return nil, err
	}
	if fs.Provider != providerName {
		return nil, ErrCsrfStateMismatch
	}
	if subtle.ConstantTimeCompare([]byte(fs.State), []byte(state)) != 1 {
		return nil, ErrCsrfStateMismatch
	}

	p, err := m.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	token, err := p.Exchange(ctx, code, fs.Verifier)
	if err != nil {
		return nil, err
	}

	identity, err := p.Identity(ctx, token, fs.Nonce)
	if err != nil {
		return nil, err
	}

	encAccess, err := m.cipher.EncryptString(token.AccessToken)
	if err != nil {
		return nil, err
	}
	var encRefresh *string
	if token.RefreshToken != "" {
		enc, err := m.cipher.EncryptString(token.RefreshToken)
		if err != nil {
			return nil, err
		}
		encRefresh = &enc
	}
	var tokenExpiry *time.Time
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		tokenExpiry = &expiry
	}

	link, err := m.repo.RefreshOAuthLink(ctx, identity.Provider, identity.Subject, encAccess, encRefresh, tokenExpiry)
	switch {
	case err == nil:
		slog.Info("oauth_login_success", "provider", identity.Provider, "user_id", link.UserID)
		return &CallbackResult{UserID: link.UserID}, nil
	case errors.Is(err, repository.ErrNotFound):
		pending := &TempTokens{
			Provider:      identity.Provider,
			Subject:       identity.Subject,
			Email:         identity.Email,
			EmailVerified: identity.EmailVerified,
			Name:          identity.Name,
			AccessToken:   token.AccessToken,
			RefreshToken:  token.RefreshToken,
		}
		if tokenExpiry != nil {
			pending.TokenExpiry = tokenExpiry.Unix()
		}
		return &CallbackResult{Pending: pending}, nil
	default:
		return nil, fmt.Errorf("looking up oauth link: %w", err)
	}
}

// Register creates a local account for a pending provider identity and
// links it, all in one transaction. The submitted email must match the one
// the provider asserted; the account starts verified only when the provider
// vouched for the address.
func (m *Manager) Register(ctx context.Context, tt TempTokens, username, email string) (*models.User, error) {
	if !strings.EqualFold(strings.TrimSpace(email), tt.Email) {
		return nil, ErrEmailMismatch
	}

	encAccess, err := m.cipher.EncryptString(tt.AccessToken)
	if err != nil {
		return nil, err
	}
	var encRefresh *string
	if tt.RefreshToken != "" {
		enc, err := m.cipher.EncryptString(tt.RefreshToken)
		if err != nil {
			return nil, err
		}
		encRefresh = &enc
	}
	var tokenExpiry *time.Time
	if tt.TokenExpiry != 0 {
		expiry := time.Unix(tt.TokenExpiry, 0).UTC()
		tokenExpiry = &expiry
	}

	user := &models.User{
		Username: username,
		Email:    tt.Email,
	}
	if tt.EmailVerified {
		now := time.Now().UTC()
		user.EmailVerifiedAt = &now
	}

	err = m.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.CreateOAuthLink(ctx, &models.OAuthLink{
			UserID:               user.ID,
			Provider:             tt.Provider,
			ProviderUserID:       tt.Subject,
			AccessToken:          encAccess,
			RefreshToken:         encRefresh,
			AccessTokenExpiresAt: tokenExpiry,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("oauth_register_success", "provider", tt.Provider, "user_id", user.ID)
	return user, nil
}
