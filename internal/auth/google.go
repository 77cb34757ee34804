package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"sharetome/internal/config"
	"sharetome/internal/model"
)

const googleIssuer = "https://accounts.google.com"

// Google signs users in with Google's OpenID Connect provider.
type Google struct {
	oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogle discovers Google's OIDC endpoints and keys.
func NewGoogle(ctx context.Context, client config.OAuthClient, publicURL string) (*Google, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("discover google oidc: %w", err)
	}
	return newGoogle(client, publicURL, provider.Endpoint(), provider.Verifier(&oidc.Config{ClientID: client.ClientID})), nil
}

func newGoogle(client config.OAuthClient, publicURL string, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *Google {
	return &Google{
		Config: oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  CallbackURL(publicURL, "google"),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: verifier,
	}
}

func (g *Google) ID() string   { return "google" }
func (g *Google) Name() string { return "Google" }
func (g *Google) Type() string { return TypeOAuth }

func (g *Google) AuthCodeURL(state string) string {
	return g.Config.AuthCodeURL(state)
}

// Identify exchanges code for tokens and reads the identity from the verified ID token.
func (g *Google) Identify(ctx context.Context, code string) (model.Identity, error) {
	tok, err := g.Exchange(ctx, code)
	if err != nil {
		return model.Identity{}, fmt.Errorf("google token exchange: %w", err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return model.Identity{}, errors.New("google token response has no id_token")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return model.Identity{}, fmt.Errorf("verify google id token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return model.Identity{}, fmt.Errorf("google id token claims: %w", err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return model.Identity{}, ErrNoEmail
	}
	return model.Identity{Email: strings.ToLower(claims.Email), Name: claims.Name, Provider: g.ID()}, nil
}
