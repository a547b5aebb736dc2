package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// StateCookie holds the OAuth state between the redirect and the callback.
const StateCookie = "oauth_state"

var ErrNoIDToken = errors.New("no id_token in token response")

// GoogleIdentity is the verified identity returned by a sign-in.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

// GoogleProvider drives the authorization-code flow.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (GoogleIdentity, error)
}

type oidcProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider discovers Google's OIDC configuration. It performs a
// network request.
func NewGoogleProvider(ctx context.Context, clientID, clientSecret, redirectURL string) (GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return &oidcProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (p *oidcProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *oidcProvider) Exchange(ctx context.Context, code string) (GoogleIdentity, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("code exchange: %w", err)
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return GoogleIdentity{}, ErrNoIDToken
	}
	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("verify id token: %w", err)
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return GoogleIdentity{}, fmt.Errorf("id token claims: %w", err)
	}
	return GoogleIdentity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// NewState returns a random OAuth state value.
func NewState() string {
	return uuid.NewString()
}
