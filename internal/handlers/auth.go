// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/nrs-dev/nrs-webapp/internal/services/auth"
	"github.com/nrs-dev/nrs-webapp/internal/views"
)

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Username string `form:"username" validate:"required,username"`
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,password"`
}

type resendForm struct {
	Username string `form:"username" validate:"required"`
}

type forgotPassForm struct {
	Email string `form:"email" validate:"required,email,max=100"`
}

type resetPassForm struct {
	Token    string `form:"token" validate:"required"`
	Password string `form:"password" validate:"required,password"`
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c echo.Context) error {
	return Render(c, http.StatusOK, views.Login(csrfToken(c), "", h.oauth.Providers()))
}

// Login handles the login form submit.
func (h *Handlers) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.Login(csrfToken(c), "Please fill in username and password.", h.oauth.Providers()))
	}
	if err := c.Validate(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.Login(csrfToken(c), "Please fill in username and password.", h.oauth.Providers()))
	}

	user, err := h.auth.Login(c.Request().Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Render(c, http.StatusUnauthorized, views.Login(csrfToken(c), "Invalid username or password.", h.oauth.Providers()))
	case errors.Is(err, auth.ErrEmailNotVerified):
		// The password was right, so rotate the token and mail a fresh link
		// before sending the user to the confirm page.
		if rerr := h.auth.ResendVerification(c.Request().Context(), user.Username, requestMeta(c)); rerr != nil && !errors.Is(rerr, auth.ErrTooManyRequests) {
			return rerr
		}
		return c.Redirect(http.StatusSeeOther, "/auth/confirmmail?username="+url.QueryEscape(user.Username))
	case err != nil:
		return err
	}

	cookie, err := h.sessions.Issue(user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logoff clears the session cookie. The token itself stays valid until it
// expires; there is no server side session state.
func (h *Handlers) Logoff(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.Redirect(http.StatusSeeOther, "/")
}

// RegisterPage renders the registration form.
func (h *Handlers) RegisterPage(c echo.Context) error {
	return Render(c, http.StatusOK, views.Register(csrfToken(c), ""))
}

// Register handles the registration form submit.
func (h *Handlers) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.Register(csrfToken(c), "Please check your input."))
	}
	if err := c.Validate(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.Register(csrfToken(c),
			"Username must be 3-20 characters (letters, digits, _ or -), the password 8-50 characters with a lower case letter, an upper case letter and a digit."))
	}

	user, err := h.auth.Register(c.Request().Context(), form.Username, form.Email, form.Password, requestMeta(c))
	if errors.Is(err, auth.ErrEmailOrUsernameAlreadyExists) {
		return Render(c, http.StatusConflict, views.Register(csrfToken(c), "Email or username is already in use."))
	}
	if err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/auth/confirmmail?username="+url.QueryEscape(user.Username))
}

// ConfirmMailPage tells the user to check their inbox.
func (h *Handlers) ConfirmMailPage(c echo.Context) error {
	return Render(c, http.StatusOK, views.ConfirmMailPending(csrfToken(c), c.QueryParam("username")))
}

// ConfirmMailResend rotates the verification token and sends a new mail.
func (h *Handlers) ConfirmMailResend(c echo.Context) error {
	var form resendForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing username")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	if err := h.auth.ResendVerification(c.Request().Context(), form.Username, requestMeta(c)); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/auth/confirmmail?username="+url.QueryEscape(form.Username))
}

// ConfirmMailConfirm consumes the verification token from the mail link.
func (h *Handlers) ConfirmMailConfirm(c echo.Context) error {
	if err := h.auth.ConfirmEmail(c.Request().Context(), c.QueryParam("token")); err != nil {
		return err
	}
	return Render(c, http.StatusOK, views.ConfirmMailDone())
}

// ForgotPassPage renders the reset request form.
func (h *Handlers) ForgotPassPage(c echo.Context) error {
	return Render(c, http.StatusOK, views.ForgotPass(csrfToken(c), ""))
}

// ForgotPassRequest issues the reset token and mails the link. The response
// is the same whether the address exists or not.
func (h *Handlers) ForgotPassRequest(c echo.Context) error {
	var form forgotPassForm
	if err := c.Bind(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.ForgotPass(csrfToken(c), "Please enter a valid email address."))
	}
	if err := c.Validate(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.ForgotPass(csrfToken(c), "Please enter a valid email address."))
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), form.Email, requestMeta(c)); err != nil {
		return err
	}
	return Render(c, http.StatusOK, views.ForgotPassSent())
}

// ResetPassPage renders the new-password form from the mail link.
func (h *Handlers) ResetPassPage(c echo.Context) error {
	return Render(c, http.StatusOK, views.ResetPass(csrfToken(c), c.QueryParam("token"), ""))
}

// ResetPassSubmit consumes the reset token and sets the new password.
func (h *Handlers) ResetPassSubmit(c echo.Context) error {
	var form resetPassForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing token or password")
	}
	if err := c.Validate(&form); err != nil {
		return Render(c, http.StatusBadRequest, views.ResetPass(csrfToken(c), form.Token,
			"Password must be 8-50 characters with a lower case letter, an upper case letter and a digit."))
	}

	if err := h.auth.ResetPassword(c.Request().Context(), form.Token, form.Password); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}
