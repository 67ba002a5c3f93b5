package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	GitHubName          = "github"
	DefaultGitHubAPIURL = "https://api.github.com"
)

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	// Endpoint defaults to github.com.
	Endpoint oauth2.Endpoint
	// APIURL defaults to DefaultGitHubAPIURL.
	APIURL     string
	HTTPClient *http.Client
}

// GitHub logs users in with a GitHub OAuth app. The redirect URL registered
// on the app is used, so none is sent.
type GitHub struct {
	config oauth2.Config
	apiURL string
	client *http.Client
}

var _ Provider = (*GitHub)(nil)

func NewGitHub(cfg GitHubConfig) *GitHub {
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint = github.Endpoint
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultGitHubAPIURL
	}
	return &GitHub{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"read:user"},
		},
		apiURL: strings.TrimSuffix(cfg.APIURL, "/"),
		client: cfg.HTTPClient,
	}
}

func (g *GitHub) Name() string {
	return GitHubName
}

func (g *GitHub) AuthCodeURL(_ context.Context, state, _ string) (string, error) {
	return g.config.AuthCodeURL(state), nil
}

func (g *GitHub) Exchange(ctx context.Context, code, _ string) (User, error) {
	ctx = withClient(ctx, g.client)

	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return User{}, errors.Wrap(err, "github token exchange failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"/user", nil)
	if err != nil {
		return User{}, errors.Wrap(err, "failed to create github user request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "chatcraft.org")

	resp, err := g.config.Client(ctx, tok).Do(req)
	if err != nil {
		return User{}, errors.Wrap(err, "github user request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, errors.Errorf("github user request returned %d", resp.StatusCode)
	}

	var gh struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return User{}, errors.Wrap(err, "failed to decode github user")
	}
	if gh.Login == "" {
		return User{}, errors.New("github user has no login")
	}

	name := gh.Name
	if name == "" {
		name = gh.Login
	}
	return User{Username: gh.Login, Name: name, AvatarURL: gh.AvatarURL}, nil
}
