// Package providers wraps the OAuth identity providers users can log in with.
package providers

import (
	"context"
	"net/http"
	"sort"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// User is the identity a provider vouches for after a code exchange.
type User struct {
	Username  string
	Name      string
	AvatarURL string
}

type Provider interface {
	Name() string
	// AuthCodeURL is where the browser is sent to start a login.
	AuthCodeURL(ctx context.Context, state, redirectURL string) (string, error)
	// Exchange trades an authorization code for the user's identity.
	Exchange(ctx context.Context, code, redirectURL string) (User, error)
}

// Registry looks providers up by name.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrUnknownProvider, "%q", name)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func withClient(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}
