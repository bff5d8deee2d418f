// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nrs-dev/nrs-webapp/internal/oauth"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
	"github.com/nrs-dev/nrs-webapp/internal/views"
)

type oauthRegisterForm struct {
	Username string `form:"username" validate:"required,username"`
	Email    string `form:"email" validate:"required,email,max=100"`
}

// OAuthAuthorize starts the flow for a provider and redirects the browser
// to the provider's consent screen.
func (h *Handlers) OAuthAuthorize(c echo.Context) error {
	redirectURL, cookie, err := h.oauth.Begin(c.Param("provider"))
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, redirectURL)
}

// OAuthCallback finishes the provider round trip. A known identity gets a
// session; an unknown one gets the registration form with the provider
// tokens parked in an encrypted cookie.
func (h *Handlers) OAuthCallback(c echo.Context) error {
	provider := c.Param("provider")

	if errParam := c.QueryParam("error"); errParam != "" {
		return echo.NewHTTPError(http.StatusBadRequest, "provider reported: "+errParam)
	}

	flowCookie, err := c.Cookie(oauth.FlowStateCookie)
	if err != nil {
		return oauth.ErrAuthFlowStateCookieNotFound
	}

	result, err := h.oauth.Callback(c.Request().Context(), provider, c.QueryParam("code"), c.QueryParam("state"), flowCookie.Value)
	c.SetCookie(h.oauth.Cookies().ClearFlowState())
	if err != nil {
		return err
	}

	if result.UserID != "" {
		cookie, err := h.sessions.Issue(result.UserID)
		if err != nil {
			return err
		}
		c.SetCookie(cookie)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	ttCookie, err := h.oauth.Cookies().EncodeTempTokens(*result.Pending)
	if err != nil {
		return err
	}
	c.SetCookie(ttCookie)
	return Render(c, http.StatusOK, views.OAuthRegister(csrfToken(c),
		result.Pending.Provider, result.Pending.Name, result.Pending.Email, ""))
}

// OAuthRegister creates the local account for a pending provider identity.
func (h *Handlers) OAuthRegister(c echo.Context) error {
	cookie, err := c.Cookie(oauth.TempTokensCookie)
	if err != nil {
		return oauth.ErrTempTokenCookieNotFound
	}
	tt, err := h.oauth.Cookies().DecodeTempTokens(cookie.Value)
	if err != nil {
		return err
	}

	var form oauthRegisterForm
	if err := c.Bind(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.OAuthRegister(csrfToken(c), tt.Provider, tt.Name, tt.Email,
			"Please check your input."))
	}
	if err := c.Validate(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.OAuthRegister(csrfToken(c), tt.Provider, tt.Name, tt.Email,
			"Username must be 3-20 characters (letters, digits, _ or -)."))
	}

	user, err := h.oauth.Register(c.Request().Context(), tt, form.Username, form.Email)
	switch {
	case errors.Is(err, oauth.ErrEmailMismatch):
		return Render(c, http.StatusBadRequest, views.OAuthRegister(csrfToken(c), tt.Provider, tt.Name, tt.Email,
			"The email address must match the one your provider reported."))
	case errors.Is(err, repository.ErrDuplicate):
		return Render(c, http.StatusConflict, views.OAuthRegister(csrfToken(c), tt.Provider, tt.Name, tt.Email,
			"Email or username is already in use."))
	case err != nil:
		return err
	}

	c.SetCookie(h.oauth.Cookies().ClearTempTokens())

	sessionCookie, err := h.sessions.Issue(user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(sessionCookie)
	return c.Redirect(http.StatusSeeOther, "/")
}
