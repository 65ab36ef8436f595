package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	ggoogle "golang.org/x/oauth2/google"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
	"github.com/raincoat98/bookmarkle-bridge/internal/security"
)

type GoogleOAuth struct {
	cfg      *oauth2.Config
	stateKey []byte
}

func NewGoogle(clientID, clientSecret, redirectURI, stateSecret string) *GoogleOAuth {
	return &GoogleOAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				"openid", "email", "profile",
			},
			Endpoint: ggoogle.Endpoint,
		},
		stateKey: []byte(stateSecret),
	}
}

// HMAC(state) for CSRF protection. The raw part carries the relay clientID
// so the callback knows which session-changed channel to publish on.
func (g *GoogleOAuth) MakeState(clientID string) (string, error) {
	nonce, err := security.NewNonce()
	if err != nil {
		return "", err
	}
	raw := clientID + ":" + nonce
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	sig := mac.Sum(nil)
	return raw + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// VerifyState checks the HMAC and returns the embedded clientID.
func (g *GoogleOAuth) VerifyState(got string) (string, bool) {
	i := strings.IndexByte(got, '.')
	if i < 0 {
		return "", false
	}
	raw := got[:i]
	sigb, err := base64.RawURLEncoding.DecodeString(got[i+1:])
	if err != nil {
		return "", false
	}
	mac := hmac.New(sha256.New, g.stateKey)
	mac.Write([]byte(raw))
	if !hmac.Equal(mac.Sum(nil), sigb) {
		return "", false
	}
	j := strings.IndexByte(raw, ':')
	if j < 0 {
		return "", false
	}
	return raw[:j], true
}

// StartSignIn builds the interactive sign-in URL for the given relay
// client. The returned state must round-trip through the provider.
func (g *GoogleOAuth) StartSignIn(clientID string) (authURL, state string, err error) {
	state, err = g.MakeState(clientID)
	if err != nil {
		return "", "", err
	}
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), state, nil
}

// ExchangeAndVerify exchanges the authorization code and extracts the
// principal from the id_token claims. Verification is field-level (iss,
// aud, email/sub presence); signature verification is delegated to the
// TLS-protected token endpoint exchange.
func (g *GoogleOAuth) ExchangeAndVerify(ctx context.Context, code string) (*domain.Principal, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("no id_token")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("parse id_token: %w", err)
	}
	iss, _ := claims["iss"].(string)
	aud, _ := claims["aud"].(string)
	email, _ := claims["email"].(string)
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	if iss != "https://accounts.google.com" && iss != "accounts.google.com" {
		return nil, errors.New("bad iss")
	}
	if aud != g.cfg.ClientID {
		return nil, errors.New("bad aud")
	}
	if email == "" || sub == "" {
		return nil, errors.New("missing email/sub")
	}

	return &domain.Principal{
		ID:          sub,
		Email:       email,
		DisplayName: name,
		AvatarURL:   picture,
	}, nil
}
