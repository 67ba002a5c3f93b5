// Package sharetest holds the contract tests every share.Store must pass.
package sharetest

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/jrsteele09/chatcraft-server/share"
	"github.com/stretchr/testify/require"
)

// RunStoreSuite exercises the Store contract against a backend.
func RunStoreSuite(t *testing.T, s share.Store) {
	t.Helper()
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Get(ctx, "alice", "missing")
	require.ErrorIs(t, err, share.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "alice", "missing"), share.ErrNotFound)

	infos, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, infos)

	require.NoError(t, s.Put(ctx, "alice", "first", share.Object{
		ContentType: "application/json",
		Data:        []byte(`{"n":1}`),
		Uploaded:    t0,
	}))
	require.NoError(t, s.Put(ctx, "alice", "second", share.Object{
		ContentType: "application/json",
		Data:        []byte(`{"n":22}`),
		Uploaded:    t0.Add(time.Minute),
	}))
	require.NoError(t, s.Put(ctx, "bob", "first", share.Object{
		ContentType: "application/json",
		Data:        []byte(`{}`),
		Uploaded:    t0,
	}))

	obj, err := s.Get(ctx, "alice", "first")
	require.NoError(t, err)
	require.Equal(t, "application/json", obj.ContentType)
	require.Equal(t, `{"n":1}`, string(obj.Data))
	require.True(t, t0.Equal(obj.Uploaded))

	infos, err = s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "second", infos[0].ID)
	require.Equal(t, 8, infos[0].Size)
	require.Equal(t, "first", infos[1].ID)

	// Overwrite replaces the body
	require.NoError(t, s.Put(ctx, "alice", "first", share.Object{
		ContentType: "application/json",
		Data:        []byte(`{"n":3}`),
		Uploaded:    t0.Add(2 * time.Minute),
	}))
	obj, err = s.Get(ctx, "alice", "first")
	require.NoError(t, err)
	require.Equal(t, `{"n":3}`, string(obj.Data))

	require.NoError(t, s.Delete(ctx, "alice", "first"))
	_, err = s.Get(ctx, "alice", "first")
	require.ErrorIs(t, err, share.ErrNotFound)

	// Other users are untouched
	_, err = s.Get(ctx, "bob", "first")
	require.NoError(t, err)

	require.ErrorIs(t, s.Put(ctx, "alice", "../etc", share.Object{}), apperrors.ErrInvalidRequest)
}
