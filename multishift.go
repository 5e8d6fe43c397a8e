package intsketch

import "fmt"

// keyBits is the fixed key width w. Every hash in this package maps w-bit
// keys; table geometry is expressed as a bit count l with 0 < l <= keyBits,
// and the multiply-shift amount is keyBits - l.
const keyBits = 64

// MultiplyShiftHash is a 2-universal hash from 64-bit keys to l-bit indices:
//
//	h(x) = ((a*x + b) mod 2^64) >> (64 - l)
//
// with a odd. For x != y and random (a, b), Pr[h(x) = h(y)] <= 2/2^l.
// It is a plain value: immutable, freely copyable, and a pure function of
// its input.
type MultiplyShiftHash struct {
	bits uint
	a    uint64
	b    uint64
}

// NewMultiplyShiftHash draws a random hash with range [0, 2^bits).
// Panics if bits > 64. bits == 0 is the degenerate single-slot range that a
// one-bucket table needs: every key maps to index 0. The multiplier is
// always odd; 2-universality of multiply-shift requires it.
func NewMultiplyShiftHash(src Source, bits uint) MultiplyShiftHash {
	if bits > keyBits {
		panic(fmt.Sprintf("intsketch: multiply-shift range bits %d exceeds %d", bits, keyBits))
	}
	return MultiplyShiftHash{
		bits: bits,
		a:    oddUint64(src),
		b:    fullUint64(src),
	}
}

// Hash maps x into [0, 2^l). Arithmetic wraps mod 2^64 by construction.
// For l == 0 the shift count is the full word width, which Go defines to
// yield 0, so the degenerate range needs no special case.
func (h MultiplyShiftHash) Hash(x uint64) uint64 {
	return (h.a*x + h.b) >> (keyBits - h.bits)
}

// Bits returns l, the log2 of the hash range.
func (h MultiplyShiftHash) Bits() uint {
	return h.bits
}
