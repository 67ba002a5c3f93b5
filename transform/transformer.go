// Package transform resolves a URL to an HTTP response, rewriting or
// converting content from sources it recognises (GitHub, YouTube) and falling
// back to a plain fetch for everything else.
package transform

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/pkg/errors"
)

// Transformer fetches and converts the content behind a URL.
type Transformer interface {
	// Name identifies the transformer in logs and metrics
	Name() string

	// ShouldTransform reports whether this transformer handles u
	ShouldTransform(u *url.URL) bool

	// FetchData performs the network call for u
	FetchData(ctx context.Context, u *url.URL) (*http.Response, error)

	// TransformResponse converts a fetched response
	TransformResponse(ctx context.Context, resp *http.Response) (*http.Response, error)

	// Process runs the full fetch and transform for u
	Process(ctx context.Context, u *url.URL) (*http.Response, error)
}

// ParseURL parses an absolute http(s) URL.
func ParseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidURL, "empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrInvalidURL, "%v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Wrapf(apperrors.ErrInvalidURL, "unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidURL, "missing host")
	}
	return u, nil
}

func cloneURL(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
