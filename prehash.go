package intsketch

import (
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// PreHash folds an arbitrary byte key into the key universe [0, 2^61-1).
//
// Use it when keys are not already uint64s below the Mersenne prime:
// strings, URLs, serialized IDs. The 64-bit xxHash3 value is reduced with
// the same Mersenne folding the 4-wise hash uses, so the result is accepted
// by every structure in the package.
//
// Pre-hashing replaces exact keys with 61-bit fingerprints: distinct inputs
// collide with probability ~2^-61, which is below the error the randomized
// structures already carry, but ChainedTable.Query answers are then
// per-fingerprint, not per-original-key.
func PreHash(key []byte) uint64 {
	return foldMersenne(xxh3.Hash(key))
}

// PreHashString is PreHash for strings without a []byte conversion.
func PreHashString(key string) uint64 {
	return foldMersenne(xxhash.Sum64String(key))
}

// foldMersenne reduces a 64-bit value into [0, p) for p = 2^61 - 1.
func foldMersenne(v uint64) uint64 {
	v = (v >> mersenneQ) + (v & MersennePrime)
	if v >= MersennePrime {
		v -= MersennePrime
	}
	return v
}
