package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/lodis/internal/codec"
)

func TestU32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 42, 0xffffffff} {
		b := codec.U32ToBytes(v)
		require.Len(t, b, 4)
		got, err := codec.BytesToU32(b)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestBytesToU32_ShapeMismatch(t *testing.T) {
	_, err := codec.BytesToU32([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestU64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 42, 0xffffffffffffffff} {
		b := codec.U64ToBytes(v)
		require.Len(t, b, 8)
		got, err := codec.BytesToU64(b)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 123456789, -987654321} {
		b := codec.FormatDecimal(v)
		got, ok := codec.ParseDecimal(b)
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}

func TestParseDecimal_Invalid(t *testing.T) {
	_, ok := codec.ParseDecimal([]byte("not-a-number"))
	require.False(t, ok)
}
