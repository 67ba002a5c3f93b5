package transform

import (
	"context"
	"net/http"
	"net/url"
)

// Default fetches a URL unchanged and returns the upstream response as is.
type Default struct {
	fetcher *Fetcher
}

var _ Transformer = (*Default)(nil)

func NewDefault(fetcher *Fetcher) *Default {
	return &Default{fetcher: fetcher}
}

func (d *Default) Name() string {
	return "default"
}

func (d *Default) ShouldTransform(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// TransformURL is the identity.
func (d *Default) TransformURL(u *url.URL) *url.URL {
	return cloneURL(u)
}

func (d *Default) FetchData(ctx context.Context, u *url.URL) (*http.Response, error) {
	return d.fetcher.Get(ctx, u)
}

// TransformResponse is the identity.
func (d *Default) TransformResponse(_ context.Context, resp *http.Response) (*http.Response, error) {
	return resp, nil
}

func (d *Default) Process(ctx context.Context, u *url.URL) (*http.Response, error) {
	resp, err := d.FetchData(ctx, d.TransformURL(u))
	if err != nil {
		return nil, err
	}
	return d.TransformResponse(ctx, resp)
}
