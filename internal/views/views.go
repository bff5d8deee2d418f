// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package views renders the HTML pages. Components are hand-written templ
// components so they compose with the echo render helpers.
package views

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/nrs-dev/nrs-webapp/internal/models"
)

func page(title string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s | nrs</title>
<link rel="stylesheet" href="/static/app.css">
<script src="https://unpkg.com/htmx.org@2.0.4" defer></script>
</head>
<body>
<main class="container">
`, html.EscapeString(title))
		if err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err = io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}

func writeError(w io.Writer, msg string) error {
	if msg == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, `<p class="error" role="alert">%s</p>`+"\n", html.EscapeString(msg))
	return err
}

func csrfField(w io.Writer, token string) error {
	_, err := fmt.Fprintf(w, `<input type="hidden" name="csrf_token" value="%s">`+"\n", html.EscapeString(token))
	return err
}

// Home renders the landing page. A nil user renders the anonymous variant.
func Home(user *models.User) templ.Component {
	return page("Home", func(w io.Writer) error {
		if user == nil {
			_, err := io.WriteString(w, `<h1>nrs</h1>
<p>Track and rate the things you watch, read and play.</p>
<nav>
<a href="/auth/login">Log in</a>
<a href="/auth/register">Register</a>
</nav>
`)
			return err
		}
		_, err := fmt.Fprintf(w, `<h1>Welcome back, %s</h1>
<nav>
<a href="/entries">Your entries</a>
<form method="post" action="/auth/logoff" class="inline">
<button type="submit">Log off</button>
</form>
</nav>
`, html.EscapeString(user.Username))
		return err
	})
}

// Login renders the login form, with provider buttons for every configured
// OAuth provider.
func Login(csrf, errMsg string, providers []string) templ.Component {
	return page("Log in", func(w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>Log in</h1>\n"); err != nil {
			return err
		}
		if err := writeError(w, errMsg); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<form method="post" action="/auth/login">`+"\n"); err != nil {
			return err
		}
		if err := csrfField(w, csrf); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<label>Username <input type="text" name="username" required autofocus></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Log in</button>
</form>
<p><a href="/auth/forgotpass">Forgot your password?</a></p>
<p>No account yet? <a href="/auth/register">Register</a></p>
`); err != nil {
			return err
		}
		for _, p := range providers {
			if _, err := fmt.Fprintf(w, `<a class="provider" href="/auth/oauth/authorize/%s">Continue with %s</a>`+"\n",
				html.EscapeString(p), html.EscapeString(providerLabel(p))); err != nil {
				return err
			}
		}
		return nil
	})
}

func providerLabel(name string) string {
	switch name {
	case "google":
		return "Google"
	case "github":
		return "GitHub"
	}
	return name
}

// Register renders the local registration form.
func Register(csrf, errMsg string) templ.Component {
	return page("Register", func(w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>Register</h1>\n"); err != nil {
			return err
		}
		if err := writeError(w, errMsg); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<form method="post" action="/auth/register">`+"\n"); err != nil {
			return err
		}
		if err := csrfField(w, csrf); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<label>Username <input type="text" name="username" required minlength="3" maxlength="20"></label>
<label>Email <input type="email" name="email" required maxlength="100"></label>
<label>Password <input type="password" name="password" required minlength="8" maxlength="50"></label>
<button type="submit">Create account</button>
</form>
<p>Already have an account? <a href="/auth/login">Log in</a></p>
`)
		return err
	})
}

// ConfirmMailPending asks the user to check their inbox and offers a resend.
func ConfirmMailPending(csrf, username string) templ.Component {
	return page("Confirm your email", func(w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Confirm your email</h1>
<p>We sent a confirmation link to your email address. The link expires after
24 hours.</p>
`); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<form method="post" action="/auth/confirmmail">`+"\n"); err != nil {
			return err
		}
		if err := csrfField(w, csrf); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `<input type="hidden" name="username" value="%s">
<button type="submit">Resend confirmation mail</button>
</form>
`, html.EscapeString(username))
		return err
	})
}

// ConfirmMailDone tells the user the address is confirmed.
func ConfirmMailDone() templ.Component {
	return page("Email confirmed", func(w io.Writer) error {
		_, err := io.WriteString(w, `<h1>Email confirmed</h1>
<p>Your email address is confirmed. You can <a href="/auth/login">log in</a> now.</p>
`)
		return err
	})
}

// ForgotPass renders the reset request form.
func ForgotPass(csrf, errMsg string) templ.Component {
	return page("Forgot password", func(w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>Forgot password</h1>\n"); err != nil {
			return err
		}
		if err := writeError(w, errMsg); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<form method="post" action="/auth/forgotpass">`+"\n"); err != nil {
			return err
		}
		if err := csrfField(w, csrf); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<label>Email <input type="email" name="email" required maxlength="100"></label>
<button type="submit">Send reset link</button>
</form>
`)
		return err
	})
}

// ForgotPassSent is shown after a reset request, known address or not.
func ForgotPassSent() templ.Component {
	return page("Check your inbox", func(w io.Writer) error {
		_, err := io.WriteString(w, `<h1>Check your inbox</h1>
<p>If an account exists for that address, a reset link is on its way. The
link expires after one hour.</p>
`)
		return err
	})
}

// ResetPass renders the new-password form for a reset token.
func ResetPass(csrf, token, errMsg string) templ.Component {
	return page("Reset password", func(w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>Reset password</h1>\n"); err != nil {
			return err
		}
		if err := writeError(w, errMsg); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<form method="post" action="/auth/forgotpass/reset">`+"\n"); err != nil {
			return err
		}
		if err := csrfField(w, csrf); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `<input type="hidden" name="token" value="%s">
<label>New password <input type="password" name="password" required minlength="8" maxlength="50"></label>
<button type="submit">Set new password</button>
</form>
`, html.EscapeString(token))
		return err
	})
}

// OAuthRegister renders the registration form for a pending provider
// identity. The email field is prefilled and must match what the provider
// asserted.
func OAuthRegister(csrf, provider, name, email, errMsg string) templ.Component {
	return page("Complete registration", func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<h1>Complete registration</h1>
<p>You signed in with %s as %s. Pick a username to finish creating your
account.</p>
`, html.EscapeString(provider), html.EscapeString(name)); err != nil {
			return err
		}
		if err := writeError(w, errMsg); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<form method="post" action="/auth/oauth/register">`+"\n"); err != nil {
			return err
		}
		if err := csrfField(w, csrf); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `<label>Username <input type="text" name="username" required minlength="3" maxlength="20"></label>
<label>Email <input type="email" name="email" value="%s" required maxlength="100"></label>
<button type="submit">Create account</button>
</form>
`, html.EscapeString(email))
		return err
	})
}

// Entries renders the entry list. The add form only shows for a signed-in
// user; the list itself is public.
func Entries(csrf string, canAdd bool, entries []models.Entry) templ.Component {
	return page("Entries", func(w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>Entries</h1>\n"); err != nil {
			return err
		}
		if canAdd {
			if _, err := io.WriteString(w, `<form method="post" action="/entries">`+"\n"); err != nil {
				return err
			}
			if err := csrfField(w, csrf); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `<label>Title <input type="text" name="title" required maxlength="200"></label>
<label>Kind <select name="kind">
<option>ANIME</option><option>MANGA</option><option>GAME</option><option>MUSIC</option><option>OTHER</option>
</select></label>
<button type="submit">Add</button>
</form>
`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<ul class=\"entries\">\n"); err != nil {
			return err
		}
		for _, e := range entries {
			score := "unrated"
			if e.Score != nil {
				score = fmt.Sprintf("%.1f", *e.Score)
			}
			if _, err := fmt.Fprintf(w, `<li>%s <small>%s</small> <span class="score">%s</span></li>`+"\n",
				html.EscapeString(e.Title), html.EscapeString(e.Kind), score); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n")
		return err
	})
}

// ErrorPage renders a full error page with the request id for support.
func ErrorPage(code int, message, requestID string) templ.Component {
	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}
	return page(title, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>%d %s</h1>
<p>%s</p>
<p><small>Request ID: %s</small></p>
<p><a href="/">Back to the start page</a></p>
`, code, html.EscapeString(title), html.EscapeString(message), html.EscapeString(requestID))
		return err
	})
}

// Toast renders an error fragment for htmx requests.
func Toast(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="toast toast-error" role="alert">%s</div>`, html.EscapeString(message))
		return err
	})
}
