// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package oauth

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	// FlowStateCookie carries the CSRF state, nonce and PKCE verifier
	// between the authorize redirect and the callback.
	FlowStateCookie = "auth-flow-state"
	// TempTokensCookie carries the provider identity and tokens between the
	// callback and the oauth registration submit.
	TempTokensCookie = "temp-tokens"

	cookiePath = "/auth/oauth"
	flowTTL    = 10 * time.Minute
)

// FlowState is the per-flow secret material set before redirecting to the
// provider.
type FlowState struct {
	Provider string `json:"provider"`
	State    string `json:"state"`
	Nonce    string `json:"nonce"`
	Verifier string `json:"verifier"`
}

// TempTokens is the pending registration payload for a provider identity
// that has no local account yet. It never leaves the cookie unencrypted.
type TempTokens struct {
	Provider      string `json:"provider"`
	Subject       string `json:"subject"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	TokenExpiry   int64  `json:"token_expiry,omitempty"`
}

// CookieCodec encodes the OAuth flow cookies. Both cookies are signed and
// encrypted; a block key is mandatory here because TempTokens contains
// provider access tokens.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	secure bool
}

func NewCookieCodec(hashKey, blockKey []byte, secure bool) *CookieCodec {
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(flowTTL.Seconds()))
	return &CookieCodec{sc: sc, secure: secure}
}

// EncodeFlowState returns the flow-state cookie for fs.
func (c *CookieCodec) EncodeFlowState(fs FlowState) (*http.Cookie, error) {
	encoded, err := c.sc.Encode(FlowStateCookie, fs)
	if err != nil {
		return nil, err
	}
	return c.cookie(FlowStateCookie, encoded, int(flowTTL.Seconds())), nil
}

// DecodeFlowState decodes a flow-state cookie value. Any decode failure is
// reported as ErrAuthFlowStateCookieNotFound; a tampered cookie and a
// missing one are handled the same way.
func (c *CookieCodec) DecodeFlowState(value string) (FlowState, error) {
	var fs FlowState
	if err := c.sc.Decode(FlowStateCookie, value, &fs); err != nil {
		return FlowState{}, ErrAuthFlowStateCookieNotFound
	}
	return fs, nil
}

// EncodeTempTokens returns the temp-tokens cookie for tt.
func (c *CookieCodec) EncodeTempTokens(tt TempTokens) (*http.Cookie, error) {
	encoded, err := c.sc.Encode(TempTokensCookie, tt)
	if err != nil {
		return nil, err
	}
	return c.cookie(TempTokensCookie, encoded, int(flowTTL.Seconds())), nil
}

// DecodeTempTokens decodes a temp-tokens cookie value. Decode failures are
// reported as ErrTempTokenCookieNotFound.
func (c *CookieCodec) DecodeTempTokens(value string) (TempTokens, error) {
	var tt TempTokens
	if err := c.sc.Decode(TempTokensCookie, value, &tt); err != nil {
		return TempTokens{}, ErrTempTokenCookieNotFound
	}
	return tt, nil
}

// ClearFlowState returns a cookie deleting the flow state.
func (c *CookieCodec) ClearFlowState() *http.Cookie {
	return c.cookie(FlowStateCookie, "", -1)
}

// ClearTempTokens returns a cookie deleting the pending registration.
func (c *CookieCodec) ClearTempTokens() *http.Cookie {
	return c.cookie(TempTokensCookie, "", -1)
}

func (c *CookieCodec) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
