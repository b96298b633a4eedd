package collkey_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/lodis/internal/codec"
	"github.com/edirooss/lodis/internal/collkey"
	"github.com/edirooss/lodis/internal/hmap"
	"github.com/edirooss/lodis/internal/store/badgerstore"
)

func openTestStore(t *testing.T) *badgerstore.Store {
	t.Helper()
	s, err := badgerstore.Open(badgerstore.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNextPrefix_IncrementsTrailingHash(t *testing.T) {
	p := codec.Prefix(codec.TypeMap, []byte("x"))
	next := collkey.NextPrefix(p[:])
	require.Equal(t, p[0], next[0], "type flag is left untouched")
	require.NotEqual(t, p[1:], next[1:])
}

func TestRemove_OnlyPurgesOwnCollection(t *testing.T) {
	s := openTestStore(t)
	target := hmap.Open(s, []byte("target"))
	other := hmap.Open(s, []byte("other"))

	require.NoError(t, target.Set([]byte("k"), []byte("v")))
	require.NoError(t, other.Set([]byte("k"), []byte("v")))

	require.NoError(t, target.Remove())

	n, err := target.Len()
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = other.Len()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestRemove_EmptyCollectionIsNoop(t *testing.T) {
	s := openTestStore(t)
	empty := hmap.Open(s, []byte("nothing-here"))
	require.NoError(t, empty.Remove())
}
