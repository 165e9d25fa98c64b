// Package hash derives the fixed-width group IDs stored in archive index
// entries.
package hash

import "github.com/cespare/xxhash/v2"

// GroupID computes the xxHash64 of a group key, e.g. a connection label such
// as "12_34". The root group uses the empty key.
func GroupID(key string) uint64 {
	return xxhash.Sum64String(key)
}
