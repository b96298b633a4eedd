package registry_test

import (
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/lodis/internal/codec"
	"github.com/edirooss/lodis/internal/registry"
	"github.com/edirooss/lodis/internal/store/badgerstore"
)

func openTestStore(t *testing.T) *badgerstore.Store {
	t.Helper()
	s, err := badgerstore.Open(badgerstore.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTrack_IsIdempotent(t *testing.T) {
	s := openTestStore(t)
	r := registry.Open(s)
	now := time.Unix(1000, 0)

	require.NoError(t, r.Track(codec.TypeList, []byte("orders"), now))
	require.NoError(t, r.Track(codec.TypeList, []byte("orders"), now.Add(time.Hour)))

	entries, err := r.List(codec.TypeList)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, now.Unix(), entries[0].Created.Unix())
}

func TestList_FiltersByType(t *testing.T) {
	s := openTestStore(t)
	r := registry.Open(s)
	now := time.Unix(1000, 0)

	require.NoError(t, r.Track(codec.TypeList, []byte("a"), now))
	require.NoError(t, r.Track(codec.TypeMap, []byte("b"), now))

	lists, err := r.List(codec.TypeList)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.Equal(t, []byte("a"), lists[0].Name)

	maps, err := r.List(codec.TypeMap)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	require.Equal(t, []byte("b"), maps[0].Name)
}

func TestUntrack(t *testing.T) {
	s := openTestStore(t)
	r := registry.Open(s)
	now := time.Unix(1000, 0)

	require.NoError(t, r.Track(codec.TypeList, []byte("orders"), now))
	require.NoError(t, r.Untrack(codec.TypeList, []byte("orders")))

	entries, err := r.List(codec.TypeList)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestGlob(t *testing.T) {
	s := openTestStore(t)
	r := registry.Open(s)
	now := time.Unix(1000, 0)

	require.NoError(t, r.Track(codec.TypeList, []byte("orders:2026"), now))
	require.NoError(t, r.Track(codec.TypeList, []byte("orders:2025"), now))
	require.NoError(t, r.Track(codec.TypeList, []byte("sessions"), now))

	matches, err := r.Glob(codec.TypeList, "orders:*", path.Match)
	require.NoError(t, err)
	require.Len(t, matches, 2)
}
