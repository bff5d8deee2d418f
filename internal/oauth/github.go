// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIBase = "https://api.github.com"

// GitHub authenticates users through GitHub's plain OAuth2 endpoints. There
// is no ID token; the identity comes from the REST API.
type GitHub struct {
	cfg     *oauth2.Config
	apiBase string
}

func NewGitHub(clientID, clientSecret, redirectURL string) *GitHub {
	return &GitHub{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"user:email", "read:user"},
		},
		apiBase: githubAPIBase,
	}
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) AuthCodeURL(state, _, verifier string) string {
	return g.cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

func (g *GitHub) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	token, err := g.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return token, nil
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *GitHub) Identity(ctx context.Context, token *oauth2.Token, _ string) (*Identity, error) {
	client := g.cfg.Client(ctx, token)

	var user githubUser
	if err := g.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	identity := &Identity{
		Provider:  g.Name(),
		Subject:   strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		Name:      name,
		AvatarURL: user.AvatarURL,
	}

	// The public profile email is often empty or unverified; the emails
	// endpoint is authoritative. Preference order: verified, then primary,
	// then listing order.
	var emails []githubEmail
	if err := g.getJSON(ctx, client, "/user/emails", &emails); err == nil {
		if chosen, ok := chooseEmail(emails); ok {
			identity.Email = chosen.Email
			identity.EmailVerified = chosen.Verified
		}
	}

	if identity.Email == "" {
		return nil, fmt.Errorf("%w: no email on github account", ErrInvalidIdTokenClaims)
	}

	return identity, nil
}

func chooseEmail(emails []githubEmail) (githubEmail, bool) {
	if len(emails) == 0 {
		return githubEmail{}, false
	}
	for _, e := range emails {
		if e.Verified {
			return e, true
		}
	}
	for _, e := range emails {
		if e.Primary {
			return e, true
		}
	}
	return emails[0], true
}

func (g *GitHub) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github api %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api %s: unexpected status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
