// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package email delivers the account mails (verification and password
// reset). Delivery failures never fail the request that triggered them.
package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/nrs-dev/nrs-webapp/internal/config"
	"github.com/nrs-dev/nrs-webapp/internal/crypt"
)

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer when a host is configured and the
// log-only fallback otherwise. The fallback keeps local development working
// without an SMTP server.
func NewMailer(cfg *config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		slog.Warn("smtp host not configured, mails will only be logged")
		return &LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer sends mail via SMTP using go-mail.
type SMTPMailer struct {
	cfg *config.SMTPConfig
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if m.cfg.FromName != "" {
		if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(m.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}

	if m.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS on 465, STARTTLS otherwise.
		if m.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// LogMailer writes mails to the log instead of sending them.
type LogMailer struct{}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	slog.Info("mail_logged", "to", to, "subject", subject)
	slog.Debug("mail_body", "body", body)
	return nil
}

// Service renders and sends the account mails.
type Service struct {
	mailer  Mailer
	baseURL string
}

func NewService(mailer Mailer, baseURL string) *Service {
	return &Service{
		mailer:  mailer,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// SendVerificationMail sends the email verification link for a fresh or
// rotated token.
func (s *Service) SendVerificationMail(ctx context.Context, to, username string, token crypt.Token) error {
	link := fmt.Sprintf("%s/auth/confirmmail/confirm?token=%s", s.baseURL, token.String())

	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>please confirm your email address by clicking the link below:</p>
<p><a href="%s">Confirm email address</a></p>
<p>If you did not create an account, you can ignore this mail.</p>`,
		html.EscapeString(username), link,
	)

	return s.mailer.Send(ctx, to, "Please verify your email address", body)
}

// SendPasswordResetMail sends the password reset link.
func (s *Service) SendPasswordResetMail(ctx context.Context, to, username string, token crypt.Token) error {
	link := fmt.Sprintf("%s/auth/forgotpass/reset?token=%s", s.baseURL, token.String())

	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>a password reset was requested for your account. You can choose a new
password via the link below:</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request a reset, you can ignore this mail.</p>`,
		html.EscapeString(username), link,
	)

	return s.mailer.Send(ctx, to, "Password reset request", body)
}
