package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/chatcraft-server/internal/config"
	"github.com/jrsteele09/chatcraft-server/share"
	"github.com/jrsteele09/chatcraft-server/share/redisstore"
	"github.com/stretchr/testify/require"
)

func TestOpenShareStore(t *testing.T) {
	ctx := context.Background()
	c := config.New()

	t.Run("memory", func(t *testing.T) {
		t.Setenv("SHARE_BACKEND", "memory")
		store, closeFn, err := openShareStore(ctx, c)
		require.NoError(t, err)
		require.IsType(t, &share.MemoryStore{}, store)
		require.NoError(t, closeFn())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		t.Setenv("SHARE_BACKEND", "redis")
		t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")

		store, closeFn, err := openShareStore(ctx, c)
		require.NoError(t, err)
		require.IsType(t, &redisstore.Store{}, store)
		require.NoError(t, closeFn())
	})

	t.Run("unknown", func(t *testing.T) {
		t.Setenv("SHARE_BACKEND", "s3")
		_, _, err := openShareStore(ctx, c)
		require.Error(t, err)
	})
}

func TestLoginProviders(t *testing.T) {
	c := config.New()

	t.Setenv("GOOGLE_CLIENT_ID", "")
	require.Len(t, loginProviders(c), 1)

	t.Setenv("GOOGLE_CLIENT_ID", "google-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "google-secret")
	names := []string{}
	for _, p := range loginProviders(c) {
		names = append(names, p.Name())
	}
	require.Equal(t, []string{"github", "google"}, names)
}
