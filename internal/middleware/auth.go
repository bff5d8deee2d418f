// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package middleware holds the application middleware built on echo.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nrs-dev/nrs-webapp/internal/htmx"
	"github.com/nrs-dev/nrs-webapp/internal/models"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
	"github.com/nrs-dev/nrs-webapp/internal/session"
)

const currentUserKey = "current_user"

// LoadUser resolves the session cookie into the current user. An invalid or
// expired cookie is cleared and the request continues anonymously; session
// tokens are not revocable, so a deleted account simply fails the lookup.
func LoadUser(sessions *session.Manager, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessions.CookieName())
			if err != nil {
				return next(c)
			}

			userID, err := sessions.Validate(cookie.Value)
			if err != nil {
				c.SetCookie(sessions.Clear())
				return next(c)
			}

			user, err := repo.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				c.SetCookie(sessions.Clear())
				return next(c)
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user loaded by LoadUser, or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(currentUserKey).(*models.User)
	return user
}

// RequireAuth redirects anonymous requests to the login page. htmx requests
// get an HX-Redirect instead of a plain 303 so the browser follows it.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) != nil {
				return next(c)
			}
			if htmx.ParseRequest(c.Request()).IsHtmx {
				c.Response().Header().Set(htmx.HeaderRedirect, "/auth/login")
				return c.NoContent(http.StatusOK)
			}
			return c.Redirect(http.StatusSeeOther, "/auth/login")
		}
	}
}
