// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package auth implements local account flows: registration, login, email
// verification and password reset.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nrs-dev/nrs-webapp/internal/config"
	"github.com/nrs-dev/nrs-webapp/internal/crypt"
	"github.com/nrs-dev/nrs-webapp/internal/models"
	"github.com/nrs-dev/nrs-webapp/internal/ratelimit"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
	"github.com/nrs-dev/nrs-webapp/internal/services/email"
)

var (
	ErrInvalidCredentials           = errors.New("invalid credentials")
	ErrEmailNotVerified             = errors.New("email not verified")
	ErrEmailOrUsernameAlreadyExists = errors.New("email or username already exists")
	ErrInvalidOrExpiredToken        = errors.New("invalid or expired token")
	ErrTooManyRequests              = errors.New("too many requests")
)

const mailTimeout = 30 * time.Second

type Service struct {
	repo      *repository.Repository
	passwords *crypt.PasswordHasher
	tokens    crypt.TokenHasher
	mail      *email.Service

	// One resend per minute per username, five reset requests per minute
	// per email address.
	verifyLimiter *ratelimit.Keyed
	resetLimiter  *ratelimit.Keyed

	verifyExpiry time.Duration
	resetExpiry  time.Duration
}

func NewService(repo *repository.Repository, passwords *crypt.PasswordHasher, tokens crypt.TokenHasher, mail *email.Service, cfg config.AuthConfig) *Service {
	return &Service{
		repo:          repo,
		passwords:     passwords,
		tokens:        tokens,
		mail:          mail,
		verifyLimiter: ratelimit.PerMinute(1),
		resetLimiter:  ratelimit.PerMinute(5),
		verifyExpiry:  time.Duration(cfg.EmailVerificationExpiry) * time.Second,
		resetExpiry:   time.Duration(cfg.PasswordResetExpiry) * time.Second,
	}
}

// RequestMeta is the client metadata recorded alongside issued tokens.
type RequestMeta struct {
	IP        string
	UserAgent string
}

func (m RequestMeta) ipPtr() *string {
	if m.IP == "" {
		return nil
	}
	return &m.IP
}

func (m RequestMeta) uaPtr() *string {
	if m.UserAgent == "" {
		return nil
	}
	return &m.UserAgent
}

// Register creates a local account and issues the email verification token.
// The verification mail goes out in the background.
func (s *Service) Register(ctx context.Context, username, emailAddr, password string, meta RequestMeta) (*models.User, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: &hash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailOrUsernameAlreadyExists
		}
		return nil, err
	}

	slog.Info("register_success", "user_id", user.ID, "username", maskName(username))

	// A failed token upsert is recoverable via resend.
	if err := s.issueVerification(ctx, user, meta); err != nil {
		slog.Error("verification_token_failed", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// Login checks the credentials for a username. An unknown username still
// pays the full argon2 verification cost against a throwaway hash, so the
// response time does not reveal whether the account exists.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		_, _ = s.passwords.Verify(password, s.passwords.DummyHash())
		slog.Warn("login_failed", "username", maskName(username), "reason", "unknown_user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// Accounts created via an OAuth provider have no local password.
	if user.PasswordHash == nil {
		_, _ = s.passwords.Verify(password, s.passwords.DummyHash())
		slog.Warn("login_failed", "username", maskName(username), "reason", "no_password")
		return nil, ErrInvalidCredentials
	}

	ok, err := s.passwords.Verify(password, *user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Warn("login_failed", "username", maskName(username), "reason", "wrong_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified() {
		return user, ErrEmailNotVerified
	}

	slog.Info("login_success", "user_id", user.ID)
	return user, nil
}

// ResendVerification rotates the verification token for a username and
// mails the new link. Unknown usernames are not revealed to the caller.
func (s *Service) ResendVerification(ctx context.Context, username string, meta RequestMeta) error {
	if !s.verifyLimiter.Allow(strings.ToLower(username)) {
		return ErrTooManyRequests
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("verification_resend_unknown_user", "username", maskName(username))
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsVerified() {
		return nil
	}

	return s.issueVerification(ctx, user, meta)
}

// ConfirmEmail consumes a verification token and marks the owning account
// as verified, in one transaction.
func (s *Service) ConfirmEmail(ctx context.Context, plaintext string) error {
	token, err := crypt.ParseToken(plaintext)
	if err != nil {
		return err
	}
	hash := s.tokens.Hash(token)

	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		userID, err := tx.ConsumeOneTimeToken(ctx, hash, models.PurposeEmailVerification)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		if err != nil {
			return err
		}
		if err := tx.MarkEmailVerified(ctx, userID); err != nil {
			return err
		}
		slog.Info("email_confirmed", "user_id", userID)
		return nil
	})
}

// RequestPasswordReset issues a reset token for an email address and mails
// the link. The call reports success for unknown addresses as well.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string, meta RequestMeta) error {
	if !s.resetLimiter.Allow(strings.ToLower(emailAddr)) {
		return ErrTooManyRequests
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Info("password_reset_unknown_email", "email", maskEmail(emailAddr))
		return nil
	}
	if err != nil {
		return err
	}

	token, err := crypt.GenerateToken()
	if err != nil {
		return err
	}
	if err := s.storeToken(ctx, user.ID, models.PurposePasswordReset, token, s.resetExpiry, meta); err != nil {
		return err
	}

	s.sendAsync("password_reset", user.Email, func(ctx context.Context) error {
		return s.mail.SendPasswordResetMail(ctx, user.Email, user.Username, token)
	})
	return nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *Service) ResetPassword(ctx context.Context, plaintext, newPassword string) error {
	token, err := crypt.ParseToken(plaintext)
	if err != nil {
		return err
	}
	hash := s.tokens.Hash(token)

	newHash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		userID, err := tx.ConsumeOneTimeToken(ctx, hash, models.PurposePasswordReset)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		if err != nil {
			return err
		}
		if err := tx.UpdateUserPassword(ctx, userID, newHash); err != nil {
			return err
		}
		slog.Info("password_reset_success", "user_id", userID)
		return nil
	})
}

func (s *Service) issueVerification(ctx context.Context, user *models.User, meta RequestMeta) error {
	token, err := crypt.GenerateToken()
	if err != nil {
		return err
	}
	if err := s.storeToken(ctx, user.ID, models.PurposeEmailVerification, token, s.verifyExpiry, meta); err != nil {
		return err
	}

	s.sendAsync("verification", user.Email, func(ctx context.Context) error {
		return s.mail.SendVerificationMail(ctx, user.Email, user.Username, token)
	})
	return nil
}

// storeToken persists the hash of a fresh token. The upsert replaces any
// active token for the same user and purpose, so older links stop working.
func (s *Service) storeToken(ctx context.Context, userID, purpose string, token crypt.Token, expiry time.Duration, meta RequestMeta) error {
	return s.repo.UpsertOneTimeToken(ctx, &models.OneTimeToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: s.tokens.Hash(token),
		ExpiresAt: time.Now().UTC().Add(expiry),
		RequestIP: meta.ipPtr(),
		UserAgent: meta.uaPtr(),
	})
}

// sendAsync delivers a mail in the background. The originating request does
// not wait for SMTP; failures are only logged.
func (s *Service) sendAsync(kind, to string, send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			slog.Error("mail_send_failed", "kind", kind, "to", maskEmail(to), "error", err)
		}
	}()
}

func maskName(s string) string {
	if len(s) <= 2 {
		return "***"
	}
	return s[:2] + "***"
}

func maskEmail(s string) string {
	at := strings.Index(s, "@")
	if at <= 2 {
		return "***"
	}
	return s[:2] + "***" + s[at:]
}
