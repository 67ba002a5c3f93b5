package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/chatcraft-server/server"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	f := newFixture(t, fixtureConfig{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = f.do(req)
	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestCorsPreflight(t *testing.T) {
	f := newFixture(t, fixtureConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/share/alice/chat1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := f.do(req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")

	req = httptest.NewRequest(http.MethodOptions, "/api/share/alice/chat1", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = f.do(req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverMiddleware(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		t.Run(env, func(t *testing.T) {
			f := newFixture(t, fixtureConfig{env: map[string]string{"ENVIRONMENT": env}})
			f.srv.RegisterRouteFunc("GET /api/panic", server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
				panic("kaboom")
			}, f.srv.APIMiddleware()...))

			rec := f.do(httptest.NewRequest(http.MethodGet, "/api/panic", nil))
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			if env == "production" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				require.Equal(t, "internal error", body["message"])
				require.NotContains(t, rec.Body.String(), "kaboom")
			} else {
				require.Contains(t, rec.Body.String(), "kaboom")
				require.Contains(t, rec.Body.String(), "goroutine")
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, fixtureConfig{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
