package transform

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	rawGitHubHost   = "raw.githubusercontent.com"
	rawGistHost     = "gist.githubusercontent.com"
	patchDiffHost   = "patch-diff.githubusercontent.com"
	gitHubHost      = "github.com"
	gitHubGistHost  = "gist.github.com"
	gitHubWWWPrefix = "www."
)

// GitHub rewrites github.com page URLs to the raw content behind them:
// blob views to raw files, gists to their raw text and pull requests to
// their patch.
type GitHub struct {
	fetcher *Fetcher
}

var _ Transformer = (*GitHub)(nil)

func NewGitHub(fetcher *Fetcher) *GitHub {
	return &GitHub{fetcher: fetcher}
}

func (g *GitHub) Name() string {
	return "github"
}

func (g *GitHub) ShouldTransform(u *url.URL) bool {
	switch gitHubHostname(u) {
	case gitHubHost, gitHubGistHost:
		return true
	}
	return false
}

// TransformURL maps a GitHub page URL to its raw equivalent. URLs it does not
// recognise are returned unchanged.
func (g *GitHub) TransformURL(u *url.URL) *url.URL {
	segs := pathSegments(u.Path)

	switch gitHubHostname(u) {
	case gitHubGistHost:
		switch len(segs) {
		case 1:
			return rawURL(rawGistHost, segs[0], "raw")
		case 2:
			return rawURL(rawGistHost, segs[0], segs[1], "raw")
		}

	case gitHubHost:
		if len(segs) >= 5 && segs[2] == "blob" {
			parts := append([]string{segs[0], segs[1]}, segs[3:]...)
			return rawURL(rawGitHubHost, parts...)
		}
		if len(segs) >= 4 && segs[2] == "pull" {
			if _, err := strconv.Atoi(segs[3]); err == nil {
				return rawURL(patchDiffHost, "raw", segs[0], segs[1], "pull", segs[3]+".patch")
			}
		}
	}

	return cloneURL(u)
}

func (g *GitHub) FetchData(ctx context.Context, u *url.URL) (*http.Response, error) {
	return g.fetcher.Get(ctx, u)
}

func (g *GitHub) TransformResponse(_ context.Context, resp *http.Response) (*http.Response, error) {
	return resp, nil
}

func (g *GitHub) Process(ctx context.Context, u *url.URL) (*http.Response, error) {
	resp, err := g.FetchData(ctx, g.TransformURL(u))
	if err != nil {
		return nil, err
	}
	return g.TransformResponse(ctx, resp)
}

func gitHubHostname(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), gitHubWWWPrefix)
}

func pathSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func rawURL(host string, segs ...string) *url.URL {
	return &url.URL{
		Scheme: "https",
		Host:   host,
		Path:   "/" + strings.Join(segs, "/"),
	}
}
