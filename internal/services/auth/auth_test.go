// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrs-dev/nrs-webapp/internal/config"
	"github.com/nrs-dev/nrs-webapp/internal/crypt"
	"github.com/nrs-dev/nrs-webapp/internal/models"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
	"github.com/nrs-dev/nrs-webapp/internal/services/auth"
	"github.com/nrs-dev/nrs-webapp/internal/services/email"
	"github.com/nrs-dev/nrs-webapp/internal/testutil"
)

type chanMailer struct {
	bodies chan string
}

func (m *chanMailer) Send(_ context.Context, _, _, body string) error {
	m.bodies <- body
	return nil
}

var tokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_-]+)`)

// waitToken blocks until a mail arrives and extracts the token from its link.
func waitToken(t *testing.T, m *chanMailer) string {
	t.Helper()
	select {
	case body := <-m.bodies:
		match := tokenPattern.FindStringSubmatch(body)
		require.NotNil(t, match, "mail body contains no token link")
		return match[1]
	case <-time.After(5 * time.Second):
		t.Fatal("no mail received")
		return ""
	}
}

func newTestService(t *testing.T) (*auth.Service, *repository.Repository, *chanMailer) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	mailer := &chanMailer{bodies: make(chan string, 8)}
	svc := auth.NewService(
		repo,
		crypt.NewPasswordHasher([]byte("test-pepper")),
		crypt.NewTokenHasher([]byte("test-token-secret")),
		email.NewService(mailer, "http://localhost:3621"),
		config.AuthConfig{EmailVerificationExpiry: 86400, PasswordResetExpiry: 3600},
	)
	return svc, repo, mailer
}

func TestRegisterConfirmLogin(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "Password1", auth.RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.False(t, user.IsVerified())

	// Unverified accounts cannot log in yet.
	_, err = svc.Login(ctx, "alice", "Password1")
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	token := waitToken(t, mailer)
	require.NoError(t, svc.ConfirmEmail(ctx, token))

	got, err := svc.Login(ctx, "alice", "Password1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified())
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Password1", auth.RequestMeta{})
	require.NoError(t, err)
	waitToken(t, mailer)

	_, err = svc.Register(ctx, "alice", "other@example.com", "Password1", auth.RequestMeta{})
	assert.ErrorIs(t, err, auth.ErrEmailOrUsernameAlreadyExists)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "Password1", auth.RequestMeta{})
	assert.ErrorIs(t, err, auth.ErrEmailOrUsernameAlreadyExists)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody", "Password1")

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Password1", auth.RequestMeta{})
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, waitToken(t, mailer)))

	_, err = svc.Login(ctx, "alice", "WrongPassword1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_AccountWithoutPassword(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	// Provider-created accounts have no local password.
	user := &models.User{Username: "oauth-user", Email: "oauth@example.com"}
	require.NoError(t, repo.CreateUser(ctx, user))

	_, err := svc.Login(ctx, "oauth-user", "anything")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestResendVerification_RotatesToken(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "Password1", auth.RequestMeta{})
	require.NoError(t, err)
	waitToken(t, mailer)

	first, err := repo.GetActiveOneTimeToken(ctx, user.ID, models.PurposeEmailVerification)
	require.NoError(t, err)

	require.NoError(t, svc.ResendVerification(ctx, "alice", auth.RequestMeta{}))
	token := waitToken(t, mailer)

	second, err := repo.GetActiveOneTimeToken(ctx, user.ID, models.PurposeEmailVerification)
	require.NoError(t, err)
	assert.NotEqual(t, first.TokenHash, second.TokenHash)

	// The rotated token still confirms the account.
	require.NoError(t, svc.ConfirmEmail(ctx, token))
}

func TestResendVerification_RateLimited(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Password1", auth.RequestMeta{})
	require.NoError(t, err)
	waitToken(t, mailer)

	require.NoError(t, svc.ResendVerification(ctx, "alice", auth.RequestMeta{}))
	waitToken(t, mailer)

	err = svc.ResendVerification(ctx, "alice", auth.RequestMeta{})
	assert.ErrorIs(t, err, auth.ErrTooManyRequests)
}

func TestResendVerification_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Unknown usernames are not revealed.
	assert.NoError(t, svc.ResendVerification(context.Background(), "nobody", auth.RequestMeta{}))
}

func TestConfirmEmail_MalformedToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.ConfirmEmail(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, crypt.ErrInvalidTokenFormat)
}

func TestConfirmEmail_UnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	token, err := crypt.GenerateToken()
	require.NoError(t, err)

	err = svc.ConfirmEmail(context.Background(), token.String())
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
}

func TestConfirmEmail_SingleUse(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Password1", auth.RequestMeta{})
	require.NoError(t, err)
	token := waitToken(t, mailer)

	require.NoError(t, svc.ConfirmEmail(ctx, token))

	err = svc.ConfirmEmail(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Password1", auth.RequestMeta{})
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, waitToken(t, mailer)))

	require.NoError(t, svc.RequestPasswordReset(ctx, "alice@example.com", auth.RequestMeta{}))
	token := waitToken(t, mailer)

	require.NoError(t, svc.ResetPassword(ctx, token, "NewPassword1"))

	_, err = svc.Login(ctx, "alice", "Password1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice", "NewPassword1")
	assert.NoError(t, err)
}

func TestResetPassword_SingleUse(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "Password1", auth.RequestMeta{})
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, waitToken(t, mailer)))

	require.NoError(t, svc.RequestPasswordReset(ctx, "alice@example.com", auth.RequestMeta{}))
	token := waitToken(t, mailer)

	require.NoError(t, svc.ResetPassword(ctx, token, "NewPassword1"))

	err = svc.ResetPassword(ctx, token, "AnotherPassword1")
	assert.ErrorIs(t, err, auth.ErrInvalidOrExpiredToken)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	svc, _, mailer := newTestService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com", auth.RequestMeta{}))

	select {
	case <-mailer.bodies:
		t.Fatal("no mail expected for unknown email")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRequestPasswordReset_RateLimited(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.com", auth.RequestMeta{}))
	}

	err := svc.RequestPasswordReset(ctx, "nobody@example.com", auth.RequestMeta{})
	assert.ErrorIs(t, err, auth.ErrTooManyRequests)
}
