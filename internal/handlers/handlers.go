// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nrs-dev/nrs-webapp/internal/middleware"
	"github.com/nrs-dev/nrs-webapp/internal/oauth"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
	"github.com/nrs-dev/nrs-webapp/internal/services/auth"
	"github.com/nrs-dev/nrs-webapp/internal/session"
	"github.com/nrs-dev/nrs-webapp/internal/views"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo     *repository.Repository
	sessions *session.Manager
	auth     *auth.Service
	oauth    *oauth.Manager
}

// New creates a new Handlers instance.
func New(repo *repository.Repository, sessions *session.Manager, authSvc *auth.Service, oauthMgr *oauth.Manager) *Handlers {
	return &Handlers{
		repo:     repo,
		sessions: sessions,
		auth:     authSvc,
		oauth:    oauthMgr,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the home page.
func (h *Handlers) Home(c echo.Context) error {
	return Render(c, http.StatusOK, views.Home(middleware.CurrentUser(c)))
}
