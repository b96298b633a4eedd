package frame_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/lodis/internal/lodiserr"
	"github.com/edirooss/lodis/pkg/frame"
)

func TestParseParams_RoundTrip(t *testing.T) {
	w := frame.NewPayload()
	w.WriteFrame([]byte("hello"))
	w.WriteFrame([]byte(""))
	w.WriteFrame([]byte("world"))

	params, err := frame.ParseParams(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("hello"), []byte(""), []byte("world")}, params)
}

func TestParseParams_TruncatedLength(t *testing.T) {
	_, err := frame.ParseParams([]byte{0, 0, 1})
	require.ErrorIs(t, err, lodiserr.ErrParseFrame)
}

func TestParseParams_LengthRunsPastBody(t *testing.T) {
	_, err := frame.ParseParams([]byte{0, 0, 0, 10, 'a', 'b'})
	require.ErrorIs(t, err, lodiserr.ErrParseFrame)
}

func TestParseParams_Empty(t *testing.T) {
	params, err := frame.ParseParams(nil)
	require.NoError(t, err)
	require.Empty(t, params)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, frame.StatusOK, frame.StatusFor(nil))
	require.NotEqual(t, frame.StatusOK, frame.StatusFor(lodiserr.ErrOutOfRange))
	require.NotEqual(t, frame.StatusFor(lodiserr.ErrOutOfRange), frame.StatusFor(lodiserr.ErrNotNumeric))
}

func TestWriteMaybe(t *testing.T) {
	w := frame.NewPayload()
	w.WriteMaybe([]byte("v"), true)
	require.Equal(t, []byte{1, 0, 0, 0, 1, 'v'}, w.Bytes())

	w2 := frame.NewPayload()
	w2.WriteMaybe(nil, false)
	require.Equal(t, []byte{0}, w2.Bytes())
}

func TestWritePairs(t *testing.T) {
	w := frame.NewPayload()
	w.WritePairs([][2][]byte{{[]byte("k"), []byte("v")}})

	require.Equal(t, []byte{
		0, 0, 0, 1, // pair count
		0, 0, 0, 1, 'k', // key frame
		0, 0, 0, 1, 'v', // value frame
	}, w.Bytes())
}
