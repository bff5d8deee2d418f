// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package oauth

import (
	"context"
	"fmt"
	"sort"

	"github.com/nrs-dev/nrs-webapp/internal/config"
)

// Registry holds the configured providers keyed by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds providers from configuration. A provider with both
// credentials empty is skipped; one with only one of them set fails with
// ErrOAuth2InvalidConfiguration. Google discovery runs at startup.
func NewRegistry(ctx context.Context, cfg config.OAuthConfig, baseURL string) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider)}

	if err := checkCredentials("google", cfg.Google); err != nil {
		return nil, err
	}
	if cfg.Google.ClientID != "" {
		google, err := NewGoogle(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret, callbackURL(baseURL, "google"))
		if err != nil {
			return nil, err
		}
		r.providers[google.Name()] = google
	}

	if err := checkCredentials("github", cfg.GitHub); err != nil {
		return nil, err
	}
	if cfg.GitHub.ClientID != "" {
		github := NewGitHub(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, callbackURL(baseURL, "github"))
		r.providers[github.Name()] = github
	}

	return r, nil
}

func checkCredentials(name string, cfg config.OAuthProviderConfig) error {
	if (cfg.ClientID == "") != (cfg.ClientSecret == "") {
		return fmt.Errorf("%w: %s needs both client id and secret", ErrOAuth2InvalidConfiguration, name)
	}
	return nil
}

func callbackURL(baseURL, provider string) string {
	return baseURL + "/auth/oauth/callback/" + provider
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// Names lists the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
