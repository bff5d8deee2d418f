// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nrs-dev/nrs-webapp/internal/crypt"
	"github.com/nrs-dev/nrs-webapp/internal/htmx"
	"github.com/nrs-dev/nrs-webapp/internal/oauth"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
	"github.com/nrs-dev/nrs-webapp/internal/services/auth"
	"github.com/nrs-dev/nrs-webapp/internal/views"
)

// ErrorHandler is the central echo error handler. It maps the error
// taxonomy of the services onto HTTP statuses and renders either a full
// error page or an htmx toast fragment.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := classify(err)

	if code >= http.StatusInternalServerError {
		slog.Error("request_failed", "error", err, "path", c.Path())
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)

	var renderErr error
	if htmx.ParseRequest(c.Request()).IsHtmx {
		c.Response().Header().Set(htmx.HeaderReswap, "none")
		renderErr = Render(c, code, views.Toast(message))
	} else {
		renderErr = Render(c, code, views.ErrorPage(code, message, requestID))
	}
	if renderErr != nil {
		slog.Error("error_page_render_failed", "error", renderErr)
	}
}

func classify(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			message = s
		}
		return httpErr.Code, message
	}

	switch {
	case errors.Is(err, crypt.ErrInvalidTokenFormat),
		errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, "This link is invalid or has expired."
	case errors.Is(err, auth.ErrTooManyRequests):
		return http.StatusTooManyRequests, "Too many requests. Please wait a minute and try again."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password."
	case errors.Is(err, oauth.ErrProviderNotFound):
		return http.StatusNotFound, "Unknown sign-in provider."
	case errors.Is(err, oauth.ErrCsrfStateMismatch),
		errors.Is(err, oauth.ErrAuthFlowStateCookieNotFound),
		errors.Is(err, oauth.ErrTempTokenCookieNotFound),
		errors.Is(err, oauth.ErrNonceMissing):
		return http.StatusBadRequest, "The sign-in flow expired or was tampered with. Please start over."
	case errors.Is(err, oauth.ErrEmailMismatch):
		return http.StatusBadRequest, "The email address must match the one your provider reported."
	case errors.Is(err, oauth.ErrTokenExchange),
		errors.Is(err, oauth.ErrInvalidIdTokenType),
		errors.Is(err, oauth.ErrInvalidIdTokenClaims),
		errors.Is(err, oauth.ErrOidcDiscovery):
		return http.StatusBadGateway, "The sign-in provider did not respond as expected. Please try again."
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Not found."
	}

	return http.StatusInternalServerError, "Something went wrong. Please try again later."
}
