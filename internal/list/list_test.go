package list_test

import (
	"testing"

	"github.com/stretchr/testify/require"

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

func TestList_PushAndRange(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))

	_, err := l.Push([]byte("a"), []byte("b"), []byte("c"))
	require.NoError(t, err)

	n, err := l.Len()
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	all, err := l.All()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, all)
}

func TestList_PushLeft(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))

	_, err := l.PushLeft([]byte("a"))
	require.NoError(t, err)
	_, err = l.PushLeft([]byte("b"))
	require.NoError(t, err)

	all, err := l.All()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("b"), []byte("a")}, all)
}

func TestList_NegativeIndex(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))
	_, err := l.Push([]byte("a"), []byte("b"), []byte("c"))
	require.NoError(t, err)

	v, ok, err := l.Index(-1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("c"), v)
}

func TestList_PopAndPopLeft(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))
	_, err := l.Push([]byte("a"), []byte("b"), []byte("c"))
	require.NoError(t, err)

	v, ok, err := l.Pop()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("c"), v)

	v, ok, err = l.PopLeft()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("a"), v)

	n, err := l.Len()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestList_DeleteInteriorSwapsHead(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))
	_, err := l.Push([]byte("a"), []byte("b"), []byte("c"), []byte("d"))
	require.NoError(t, err)

	// Delete the interior element "b" (relative index 1).
	v, ok, err := l.Delete(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("b"), v)

	n, err := l.Len()
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	all, err := l.All()
	require.NoError(t, err)
	require.ElementsMatch(t, [][]byte{[]byte("a"), []byte("c"), []byte("d")}, all)
}

func TestList_EmptyAfterDrain(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))
	_, err := l.Push([]byte("solo"))
	require.NoError(t, err)

	_, ok, err := l.Pop()
	require.NoError(t, err)
	require.True(t, ok)

	n, err := l.Len()
	require.NoError(t, err)
	require.Zero(t, n)

	_, ok, err = l.Pop()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestList_SetByAbsIndexOutOfRange(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))
	idxs, err := l.Push([]byte("a"), []byte("b"))
	require.NoError(t, err)

	err = l.SetByAbsIndex(idxs[len(idxs)-1]+5, []byte("nope"))
	require.Error(t, err)
}

func TestList_EmptyListCursorDefaults(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))

	idxs, err := l.PushLeft([]byte("solo"))
	require.NoError(t, err)
	require.Equal(t, []uint32{0xFFFFFFFF}, idxs)
}

func TestList_PushLeftThenPushWraps(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))

	_, err := l.PushLeft([]byte("a"))
	require.NoError(t, err)
	_, err = l.Push([]byte("b"))
	require.NoError(t, err)

	head, tail, length, err := l.Bounds()
	require.NoError(t, err)
	require.EqualValues(t, 0xFFFFFFFE, head)
	require.EqualValues(t, 1, tail)
	require.EqualValues(t, 2, length)

	all, err := l.All()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b")}, all)
}

func TestList_Remove(t *testing.T) {
	s := openTestStore(t)
	l := list.Open(s, []byte("mylist"))
	_, err := l.Push([]byte("a"), []byte("b"))
	require.NoError(t, err)

	require.NoError(t, l.Remove())

	n, err := l.Len()
	require.NoError(t, err)
	require.Zero(t, n)
}
