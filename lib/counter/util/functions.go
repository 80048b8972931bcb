package util

import (
	"crypto/rand"
	"encoding/binary"
	"github.com/segmentio/fasthash/fnv1a"
	"time"
)

// --------------------------------------------------------------------------
// General Utility Functions
// --------------------------------------------------------------------------

// GenerateSeed creates a random seed for internal hash distribution
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// fall back to the clock, only if the system entropy source fails
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// HashString generates a FNV-1a hash value for a string mixed with a seed.
// Different seeds yield independent key distributions for the same input.
func HashString(s string, seed uint64) uint64 {
	return fnv1a.AddString64(fnv1a.Init64^seed, s)
}

// ShardIndex maps a hash to a position in a table of n shards.
// The low bits of FNV-1a are weaker than the high ones, so the hash is shifted
// right by 7 bits before taking the modulo.
func ShardIndex(hash uint64, n int) int {
	return int((hash >> 7) % uint64(n))
}
