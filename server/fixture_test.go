package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/chatcraft-server/internal/config"
	"github.com/jrsteele09/chatcraft-server/internal/metrics"
	"github.com/jrsteele09/chatcraft-server/providers"
	"github.com/jrsteele09/chatcraft-server/server"
	"github.com/jrsteele09/chatcraft-server/sessions"
	"github.com/jrsteele09/chatcraft-server/share"
	"github.com/jrsteele09/chatcraft-server/token"
	"github.com/jrsteele09/chatcraft-server/transform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin   = "https://chatcraft.test"
	testSecret   = "test-secret"
	testClientID = "gh-client"
)

var prodCookies = sessions.NewCookieConfig(false)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type fakeProvider struct {
	name string
	user providers.User
	err  error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(_ context.Context, state, _ string) (string, error) {
	return "https://provider.test/authorize?state=" + state, nil
}

func (p *fakeProvider) Exchange(context.Context, string, string) (providers.User, error) {
	return p.user, p.err
}

type fixtureConfig struct {
	env      map[string]string
	upstream roundTripFunc
	provider providers.Provider
}

type fixture struct {
	srv    *server.Server
	tokens *token.Service
	shares *share.MemoryStore
}

func newFixture(t *testing.T, cfg fixtureConfig) *fixture {
	t.Helper()

	env := map[string]string{
		"JWT_SECRET":            testSecret,
		"APP_ORIGIN":            testOrigin,
		"ENVIRONMENT":           "production",
		"CLIENT_ID":             testClientID,
		"PROXY_RATE_PER_MINUTE": "0",
		"ALLOWED_ORIGINS":       "http://localhost:5173",
	}
	for k, v := range cfg.env {
		env[k] = v
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	upstream := cfg.upstream
	if upstream == nil {
		upstream = func(r *http.Request) (*http.Response, error) {
			return textResponse(r, http.StatusOK, "text/plain", "upstream"), nil
		}
	}
	fetcher := transform.NewFetcher(&http.Client{Transport: upstream})

	provider := cfg.provider
	if provider == nil {
		provider = providers.NewGitHub(providers.GitHubConfig{ClientID: testClientID})
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	tokens := token.NewService()
	shares := share.NewMemoryStore()

	srv, err := server.New(config.New(), server.Deps{
		Tokens:    tokens,
		Providers: providers.NewRegistry(provider),
		Pipeline: transform.NewPipeline(
			transform.NewDefault(fetcher),
			[]transform.Transformer{transform.NewGitHub(fetcher)},
			transform.WithMetrics(collector),
		),
		Shares:         shares,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(reg),
	})
	require.NoError(t, err)

	return &fixture{srv: srv, tokens: tokens, shares: shares}
}

func (f *fixture) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, r)
	return rec
}

// accessCookie returns a valid access token cookie for user.
func (f *fixture) accessCookie(t *testing.T, user string) *http.Cookie {
	t.Helper()
	raw, err := f.tokens.CreateToken(testOrigin, user, token.Claims{token.ClaimRole: token.RoleAPI}, testSecret)
	require.NoError(t, err)
	return &http.Cookie{Name: prodCookies.Name(sessions.AccessToken), Value: raw}
}

func (f *fixture) idCookie(t *testing.T, origin, user string) *http.Cookie {
	t.Helper()
	raw, err := f.tokens.CreateToken(origin, user, token.Claims{token.ClaimUsername: user}, testSecret)
	require.NoError(t, err)
	return &http.Cookie{Name: prodCookies.Name(sessions.IDToken), Value: raw}
}

func textResponse(r *http.Request, status int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}
}

// cookieValue extracts the value from a raw Set-Cookie header.
func cookieValue(header string) string {
	pair := strings.SplitN(header, ";", 2)[0]
	return strings.SplitN(pair, "=", 2)[1]
}
