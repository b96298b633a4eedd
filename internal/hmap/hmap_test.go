package hmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

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

func TestMap_SetGetExists(t *testing.T) {
	s := openTestStore(t)
	m := hmap.Open(s, []byte("mymap"))

	require.NoError(t, m.Set([]byte("k1"), []byte("v1")))

	ok, err := m.Exists([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)

	v, ok, err := m.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), v)

	n, err := m.Len()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestMap_SetOverwriteDoesNotBumpLength(t *testing.T) {
	s := openTestStore(t)
	m := hmap.Open(s, []byte("mymap"))

	require.NoError(t, m.Set([]byte("k1"), []byte("v1")))
	require.NoError(t, m.Set([]byte("k1"), []byte("v2")))

	n, err := m.Len()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	v, ok, err := m.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), v)
}

func TestMap_Setnx(t *testing.T) {
	s := openTestStore(t)
	m := hmap.Open(s, []byte("mymap"))

	ok, err := m.Setnx([]byte("k1"), []byte("v1"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Setnx([]byte("k1"), []byte("v2"))
	require.NoError(t, err)
	require.False(t, ok)

	v, _, err := m.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)
}

func TestMap_Increase(t *testing.T) {
	s := openTestStore(t)
	m := hmap.Open(s, []byte("mymap"))

	n, err := m.Increase([]byte("counter"), 5)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)

	n, err = m.Increase([]byte("counter"), -2)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestMap_IncreaseNotNumeric(t *testing.T) {
	s := openTestStore(t)
	m := hmap.Open(s, []byte("mymap"))
	require.NoError(t, m.Set([]byte("k1"), []byte("not-a-number")))

	_, err := m.Increase([]byte("k1"), 1)
	require.Error(t, err)
}

func TestMap_Delete(t *testing.T) {
	s := openTestStore(t)
	m := hmap.Open(s, []byte("mymap"))
	require.NoError(t, m.Set([]byte("k1"), []byte("v1")))

	ok, err := m.Delete([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Delete([]byte("k1"))
	require.NoError(t, err)
	require.False(t, ok)

	n, err := m.Len()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMap_MsetMget(t *testing.T) {
	s := openTestStore(t)
	m := hmap.Open(s, []byte("mymap"))

	require.NoError(t, m.Mset([][2][]byte{
		{[]byte("a"), []byte("1")},
		{[]byte("b"), []byte("2")},
	}))

	vals, err := m.Mget([][]byte{[]byte("a"), []byte("b"), []byte("missing")})
	require.NoError(t, err)
	require.Equal(t, []byte("1"), vals[0])
	require.Equal(t, []byte("2"), vals[1])
	require.Nil(t, vals[2])
}

func TestMap_AllAndRemove(t *testing.T) {
	s := openTestStore(t)
	m := hmap.Open(s, []byte("mymap"))
	require.NoError(t, m.Set([]byte("a"), []byte("1")))
	require.NoError(t, m.Set([]byte("b"), []byte("2")))

	pairs, err := m.All()
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	require.NoError(t, m.Remove())

	n, err := m.Len()
	require.NoError(t, err)
	require.Zero(t, n)
}
