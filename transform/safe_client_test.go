package transform_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/jrsteele09/chatcraft-server/transform"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	blocked := []string{
		"http://127.0.0.1/",
		"http://10.1.2.3/",
		"http://192.168.0.10:8080/",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/",
		"http://localhost:8788/api/share",
		"http://metadata.google.internal/",
	}
	for _, raw := range blocked {
		require.ErrorIs(t, transform.ValidateURL(mustParse(t, raw)), apperrors.ErrInvalidURL, raw)
	}

	allowed := []string{
		"https://example.com/",
		"https://8.8.8.8/",
		"https://github.com/o/r",
	}
	for _, raw := range allowed {
		require.NoError(t, transform.ValidateURL(mustParse(t, raw)), raw)
	}
}

func TestSafeClient_RefusesLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fetcher := transform.NewFetcher(transform.NewSafeClient(2 * time.Second))
	_, err := fetcher.Get(context.Background(), mustParse(t, srv.URL))
	require.Error(t, err)
}
