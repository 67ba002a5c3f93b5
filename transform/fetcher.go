package transform

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// UserAgent is sent with every upstream fetch.
const UserAgent = "chatcraft.org"

// Fetcher performs the plain GET shared by all transformers.
type Fetcher struct {
	client *http.Client
}

// NewFetcher wraps client. A nil client means http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Get fetches u with the fixed ChatCraft headers.
func (f *Fetcher) Get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", u.Redacted())
	}
	return resp, nil
}
