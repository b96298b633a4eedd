package codec

import "github.com/cespare/xxhash/v2"

// Type flags for the three collections this repository implements. 4 and 5
// are reserved (Set, String in the original design) to keep the flag space
// compatible with internal/registry's type tag even though neither
// collection exists here.
const (
	TypeList     byte = 1
	TypeMap      byte = 2
	TypeArrayMap byte = 3

	PrefixLen = 9 // type_flag:1 || name_hash:8
)

// NameHash returns the 64-bit digest used to derive a collection's prefix
// from its name.
func NameHash(name []byte) uint64 {
	return xxhash.Sum64(name)
}

// KeyHash returns the 64-bit digest ArrayMap uses to identify a user key
// inside its List/Map encodings.
func KeyHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// Prefix builds the 9-byte collection prefix for the given type flag and
// name.
func Prefix(typeFlag byte, name []byte) [PrefixLen]byte {
	var p [PrefixLen]byte
	p[0] = typeFlag
	copy(p[1:], U64ToBytes(NameHash(name)))
	return p
}
