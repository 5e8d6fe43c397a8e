// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// FastRange32 maps a 64-bit hash uniformly to [0, n) returning uint32.
// Uses the "fastrange" technique: multiply and take high bits.
// This is the standard way to map hashes to ranges without modulo bias.
func FastRange32(hash uint64, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	hi, _ := bits.Mul64(hash, uint64(n))
	return uint32(hi)
}

// IsPow2 reports whether n is a power of two. Zero is not a power of two.
func IsPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// NextPow2 returns the smallest power of two >= n. NextPow2(0) is 1.
// Panics if n exceeds 2^63, the largest uint64 power of two.
func NextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	if n > 1<<63 {
		panic("bits: NextPow2 overflow")
	}
	return 1 << (64 - uint(bits.LeadingZeros64(n-1)))
}

// Log2 returns floor(log2(n)). Panics if n is zero.
func Log2(n uint64) uint {
	if n == 0 {
		panic("bits: Log2 of zero")
	}
	return uint(63 - bits.LeadingZeros64(n))
}
