package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/lodis/internal/codec"
)

func TestPrefix_IsStableAndDistinguishesType(t *testing.T) {
	p1 := codec.Prefix(codec.TypeList, []byte("same-name"))
	p2 := codec.Prefix(codec.TypeMap, []byte("same-name"))

	require.Len(t, p1, codec.PrefixLen)
	require.NotEqual(t, p1, p2, "type flag must distinguish otherwise-identical names")
	require.Equal(t, p1, codec.Prefix(codec.TypeList, []byte("same-name")))
}

func TestNameHash_DifferentNamesDiffer(t *testing.T) {
	require.NotEqual(t, codec.NameHash([]byte("a")), codec.NameHash([]byte("b")))
}

func TestKeyHash_DifferentKeysDiffer(t *testing.T) {
	require.NotEqual(t, codec.KeyHash([]byte("a")), codec.KeyHash([]byte("b")))
}
