package arraymap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/lodis/internal/arraymap"
	"github.com/edirooss/lodis/internal/hmap"
	"github.com/edirooss/lodis/internal/list"
	"github.com/edirooss/lodis/internal/store/badgerstore"
)

func openTestStore(t *testing.T) *badgerstore.Store {
	t.Helper()
	s, err := badgerstore.Open(badgerstore.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestArrayMap_PushAndGet(t *testing.T) {
	s := openTestStore(t)
	a := arraymap.Open(s, []byte("mine"))

	require.NoError(t, a.Push([]byte("k1"), []byte("v1")))
	require.NoError(t, a.Push([]byte("k2"), []byte("v2")))

	v, ok, err := a.Get([]byte("k1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), v)

	n, err := a.Len()
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestArrayMap_PushExistingOverwritesInPlace(t *testing.T) {
	s := openTestStore(t)
	a := arraymap.Open(s, []byte("mine"))

	require.NoError(t, a.Push([]byte("k1"), []byte("v1")))
	require.NoError(t, a.Push([]byte("k2"), []byte("v2")))
	require.NoError(t, a.Push([]byte("k1"), []byte("v1-updated")))

	n, err := a.Len()
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	all, err := a.All()
	require.NoError(t, err)
	require.Equal(t, []byte("k1"), all[0][0])
	require.Equal(t, []byte("v1-updated"), all[0][1])
	require.Equal(t, []byte("k2"), all[1][0])
}

func TestArrayMap_Pushnx(t *testing.T) {
	s := openTestStore(t)
	a := arraymap.Open(s, []byte("mine"))

	ok, err := a.Pushnx([]byte("k1"), []byte("v1"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.Pushnx([]byte("k1"), []byte("v2"))
	require.NoError(t, err)
	require.False(t, ok)

	v, _, err := a.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)
}

func TestArrayMap_Increase(t *testing.T) {
	s := openTestStore(t)
	a := arraymap.Open(s, []byte("mine"))

	n, err := a.Increase([]byte("counter"), 3)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	n, err = a.Increase([]byte("counter"), 4)
	require.NoError(t, err)
	require.EqualValues(t, 7, n)
}

func TestArrayMap_DeleteInteriorRepairsBijection(t *testing.T) {
	s := openTestStore(t)
	a := arraymap.Open(s, []byte("mine"))

	require.NoError(t, a.Push([]byte("k1"), []byte("v1")))
	require.NoError(t, a.Push([]byte("k2"), []byte("v2")))
	require.NoError(t, a.Push([]byte("k3"), []byte("v3")))
	require.NoError(t, a.Push([]byte("k4"), []byte("v4")))

	// k1 is the head element; deleting the interior k2 forces the
	// List's swap-delete to move k1 into k2's old slot, so k1's Map
	// pointer must be repaired to the new position.
	v, ok, err := a.Delete([]byte("k2"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), v)

	// Every surviving key must still resolve to its correct value
	// after the repair.
	for _, want := range [][2]string{{"k1", "v1"}, {"k3", "v3"}, {"k4", "v4"}} {
		v, ok, err := a.Get([]byte(want[0]))
		require.NoError(t, err)
		require.True(t, ok, "key %s should still exist", want[0])
		require.Equal(t, []byte(want[1]), v)
	}

	n, err := a.Len()
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	ok, err = a.Exists([]byte("k2"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArrayMap_PopAndPopLeft(t *testing.T) {
	s := openTestStore(t)
	a := arraymap.Open(s, []byte("mine"))
	require.NoError(t, a.Push([]byte("k1"), []byte("v1")))
	require.NoError(t, a.Push([]byte("k2"), []byte("v2")))

	k, v, ok, err := a.PopLeft()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("k1"), k)
	require.Equal(t, []byte("v1"), v)

	k, v, ok, err = a.Pop()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("k2"), k)
	require.Equal(t, []byte("v2"), v)

	n, err := a.Len()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestArrayMap_RangeOrder(t *testing.T) {
	s := openTestStore(t)
	a := arraymap.Open(s, []byte("mine"))
	require.NoError(t, a.Push([]byte("k1"), []byte("v1")))
	require.NoError(t, a.Push([]byte("k2"), []byte("v2")))
	require.NoError(t, a.Push([]byte("k3"), []byte("v3")))

	pairs, err := a.Range(0, -1, false)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	require.Equal(t, []byte("k1"), pairs[0][0])
	require.Equal(t, []byte("k3"), pairs[2][0])
}

func TestArrayMap_DoesNotCollideWithSameNamedListOrMap(t *testing.T) {
	s := openTestStore(t)

	a := arraymap.Open(s, []byte("foo"))
	require.NoError(t, a.Push([]byte("k1"), []byte("v1")))

	l := list.Open(s, []byte("foo"))
	n, err := l.Len()
	require.NoError(t, err)
	require.Zero(t, n, "standalone List named foo must be unaffected by arraymap foo")

	m := hmap.Open(s, []byte("foo"))
	n, err = m.Len()
	require.NoError(t, err)
	require.Zero(t, n, "standalone Map named foo must be unaffected by arraymap foo")
}

func TestArrayMap_Remove(t *testing.T) {
	s := openTestStore(t)
	a := arraymap.Open(s, []byte("mine"))
	require.NoError(t, a.Push([]byte("k1"), []byte("v1")))

	require.NoError(t, a.Remove())

	n, err := a.Len()
	require.NoError(t, err)
	require.Zero(t, n)
}
