// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package oauth

import "errors"

var (
	ErrProviderNotFound            = errors.New("oauth provider not found")
	ErrOidcDiscovery               = errors.New("oidc discovery failed")
	ErrOAuth2InvalidConfiguration  = errors.New("oauth2 configuration invalid")
	ErrTokenExchange               = errors.New("token exchange failed")
	ErrAuthFlowStateCookieNotFound = errors.New("auth flow state cookie not found")
	ErrCsrfStateMismatch           = errors.New("csrf state mismatch")
	ErrInvalidIdTokenType          = errors.New("invalid id token type")
	ErrInvalidIdTokenClaims        = errors.New("invalid id token claims")
	ErrEmailMismatch               = errors.New("email mismatch")
	ErrNonceMissing                = errors.New("nonce missing")
	ErrTempTokenCookieNotFound     = errors.New("temp token cookie not found")
)
