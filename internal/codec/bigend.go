// Package codec provides the fixed-width byte encodings and digests shared
// by every collection engine: big-endian integers for stored keys/values,
// ASCII-decimal for numeric string values, and the 64-bit digests used to
// derive collection prefixes and ArrayMap key hashes.
package codec

import (
	"encoding/binary"
	"strconv"

	"github.com/edirooss/lodis/internal/lodiserr"
)

// U32ToBytes returns the big-endian representation of u.
func U32ToBytes(u uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, u)
	return b
}

// BytesToU32 decodes a big-endian uint32. b must be exactly 4 bytes.
func BytesToU32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, lodiserr.ErrShapeMismatch
	}
	return binary.BigEndian.Uint32(b), nil
}

// U64ToBytes returns the big-endian representation of u.
func U64ToBytes(u uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, u)
	return b
}

// BytesToU64 decodes a big-endian uint64. b must be exactly 8 bytes.
func BytesToU64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, lodiserr.ErrShapeMismatch
	}
	return binary.BigEndian.Uint64(b), nil
}

// ParseDecimal parses b as an ASCII signed decimal integer, the encoding
// used by Map.increase and ArrayMap.increase for numeric string values.
func ParseDecimal(b []byte) (int64, bool) {
	v, err := strconv.ParseInt(string(b), 10, 64)
	return v, err == nil
}

// FormatDecimal renders v as ASCII decimal, the inverse of ParseDecimal.
func FormatDecimal(v int64) []byte {
	return []byte(strconv.FormatInt(v, 10))
}
