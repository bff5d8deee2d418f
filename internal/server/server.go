// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package server wires configuration, storage and services into the echo
// application and runs it.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"github.com/nrs-dev/nrs-webapp/internal/config"
	"github.com/nrs-dev/nrs-webapp/internal/crypt"
	"github.com/nrs-dev/nrs-webapp/internal/database"
	"github.com/nrs-dev/nrs-webapp/internal/handlers"
	appmw "github.com/nrs-dev/nrs-webapp/internal/middleware"
	"github.com/nrs-dev/nrs-webapp/internal/oauth"
	"github.com/nrs-dev/nrs-webapp/internal/repository"
	"github.com/nrs-dev/nrs-webapp/internal/services/auth"
	"github.com/nrs-dev/nrs-webapp/internal/services/email"
	"github.com/nrs-dev/nrs-webapp/internal/session"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Ephemeral dev keys when none are configured. Sessions and pending
	// mail tokens do not survive a restart in that case.
	if len(cfg.Session.HashKey) == 0 {
		slog.Warn("SERVICE_COOKIE_KEY not set, using an ephemeral signing key")
		cfg.Session.HashKey = securecookie.GenerateRandomKey(32)
	}
	if len(cfg.Session.BlockKey) == 0 {
		slog.Warn("SERVICE_COOKIE_BLOCK_KEY not set, using an ephemeral encryption key")
		cfg.Session.BlockKey = securecookie.GenerateRandomKey(32)
	}

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	repo := repository.New(db)
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")

	// Crypto primitives
	passwords := crypt.NewPasswordHasher(cfg.Auth.PasswordPepper)
	tokens := crypt.NewTokenHasher(cfg.Auth.TokenSecret)
	cipher, err := crypt.NewCipher(cfg.Session.BlockKey)
	if err != nil {
		return fmt.Errorf("cookie block key must be 16, 24 or 32 bytes: %w", err)
	}

	// Services
	sessions := session.NewManager(cfg.Session, secure)
	mailSvc := email.NewService(email.NewMailer(&cfg.SMTP), cfg.Server.BaseURL)
	authSvc := auth.NewService(repo, passwords, tokens, mailSvc, cfg.Auth)

	registry, err := oauth.NewRegistry(ctx, cfg.OAuth, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("configuring oauth providers: %w", err)
	}
	codec := oauth.NewCookieCodec(cfg.Session.HashKey, cfg.Session.BlockKey, secure)
	oauthMgr := oauth.NewManager(registry, repo, cipher, codec)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewFormValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, cfg)
	e.Use(appmw.LoadUser(sessions, repo))

	setupRoutes(e, handlers.New(repo, sessions, authSvc, oauthMgr))

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers) {
	// Static files
	e.Static("/static", "static")

	e.GET("/health", h.Health)
	e.GET("/", h.Home)

	authGroup := e.Group("/auth")
	authGroup.GET("/login", h.LoginPage)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logoff", h.Logoff)
	authGroup.GET("/register", h.RegisterPage)
	authGroup.POST("/register", h.Register)
	authGroup.GET("/confirmmail", h.ConfirmMailPage)
	authGroup.POST("/confirmmail", h.ConfirmMailResend)
	authGroup.GET("/confirmmail/confirm", h.ConfirmMailConfirm)
	authGroup.GET("/forgotpass", h.ForgotPassPage)
	authGroup.POST("/forgotpass", h.ForgotPassRequest)
	authGroup.GET("/forgotpass/reset", h.ResetPassPage)
	authGroup.POST("/forgotpass/reset", h.ResetPassSubmit)
	authGroup.GET("/oauth/authorize/:provider", h.OAuthAuthorize)
	authGroup.GET("/oauth/callback/:provider", h.OAuthCallback)
	authGroup.POST("/oauth/register", h.OAuthRegister)

	entries := e.Group("/entries")
	entries.GET("", h.Entries)
	entries.POST("", h.EntryCreate, appmw.RequireAuth())
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP to HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeSelfSigned, TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
