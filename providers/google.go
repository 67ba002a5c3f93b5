package providers

import (
	"context"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	GoogleName          = "google"
	DefaultGoogleIssuer = "https://accounts.google.com"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	// Issuer defaults to DefaultGoogleIssuer.
	Issuer     string
	HTTPClient *http.Client
}

// Google logs users in with Google OpenID Connect. The username is the
// verified email address.
type Google struct {
	cfg GoogleConfig

	mu       sync.RWMutex
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

var _ Provider = (*Google)(nil)

func NewGoogle(cfg GoogleConfig) *Google {
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultGoogleIssuer
	}
	return &Google{cfg: cfg}
}

func (g *Google) Name() string {
	return GoogleName
}

func (g *Google) AuthCodeURL(ctx context.Context, state, redirectURL string) (string, error) {
	cfg, _, err := g.oauthConfig(ctx, redirectURL)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state), nil
}

func (g *Google) Exchange(ctx context.Context, code, redirectURL string) (User, error) {
	ctx = g.clientContext(ctx)

	cfg, verifier, err := g.oauthConfig(ctx, redirectURL)
	if err != nil {
		return User{}, err
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return User{}, errors.Wrap(err, "google token exchange failed")
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return User{}, errors.New("no id_token in google token response")
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return User{}, errors.Wrap(err, "failed to verify google id token")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return User{}, errors.Wrap(err, "failed to parse google id token claims")
	}
	if claims.Email == "" || !claims.EmailVerified {
		return User{}, errors.New("google account has no verified email")
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	return User{Username: claims.Email, Name: name, AvatarURL: claims.Picture}, nil
}

func (g *Google) clientContext(ctx context.Context) context.Context {
	if g.cfg.HTTPClient == nil {
		return ctx
	}
	return oidc.ClientContext(withClient(ctx, g.cfg.HTTPClient), g.cfg.HTTPClient)
}

// oauthConfig discovers the issuer on first use and caches the result.
func (g *Google) oauthConfig(ctx context.Context, redirectURL string) (oauth2.Config, *oidc.IDTokenVerifier, error) {
	g.mu.RLock()
	provider, verifier := g.provider, g.verifier
	g.mu.RUnlock()

	if provider == nil {
		g.mu.Lock()
		if g.provider == nil {
			p, err := oidc.NewProvider(g.clientContext(ctx), g.cfg.Issuer)
			if err != nil {
				g.mu.Unlock()
				return oauth2.Config{}, nil, errors.Wrap(err, "failed to discover google oidc provider")
			}
			g.provider = p
			g.verifier = p.Verifier(&oidc.Config{ClientID: g.cfg.ClientID})
		}
		provider, verifier = g.provider, g.verifier
		g.mu.Unlock()
	}

	return oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  redirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}, verifier, nil
}
