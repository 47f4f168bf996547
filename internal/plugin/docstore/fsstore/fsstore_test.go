package fsstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "users/u1/parts/p1/profile.md", "# Part\n"))

	text, ok, err := s.Get(ctx, "users/u1/parts/p1/profile.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "# Part\n", text)

	exists, err := s.Exists(ctx, "users/u1/parts/p1/profile.md")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestGetMissingIsNotAnError(t *testing.T) {
	s := newStore(t)
	text, ok, err := s.Get(context.Background(), "users/u1/overview.md")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, text)
}

func TestListByPrefix(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "users/u1/parts/p1/profile.md", "a\n"))
	require.NoError(t, s.Put(ctx, "users/u1/parts/p2/profile.md", "b\n"))
	require.NoError(t, s.Put(ctx, "users/u2/overview.md", "c\n"))

	paths, err := s.List(ctx, "users/u1/")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"users/u1/parts/p1/profile.md",
		"users/u1/parts/p2/profile.md",
	}, paths)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "users/u1/overview.md", "x\n"))
	require.NoError(t, s.Delete(ctx, "users/u1/overview.md"))
	require.NoError(t, s.Delete(ctx, "users/u1/overview.md"))

	ok, err := s.Exists(ctx, "users/u1/overview.md")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPathTraversalRejected(t *testing.T) {
	s := newStore(t)
	err := s.Put(context.Background(), "../outside.md", "x\n")
	require.Error(t, err)
}
