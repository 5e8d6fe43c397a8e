package intsketch

import (
	"fmt"
	"math/bits"
)

// MersennePrime is p = 2^61 - 1, the field modulus for FourWiseHash. It
// exceeds every key the sketching structures accept: FourWiseHash inputs
// must be strictly below it. PreHash folds arbitrary byte keys into [0, p).
const MersennePrime uint64 = 1<<61 - 1

// mersenneQ is the exponent q with p = 2^q - 1.
const mersenneQ = 61

// maxFourWiseBits bounds l so that 2^l <= p/2: the index is taken from bit 1
// upward of a value uniform on [0, p), and the top bit of the range must
// still be unbiased.
const maxFourWiseBits = mersenneQ - 2

// FourWiseHash is a 4-wise independent hash from keys in [0, 2^61-1) to an
// l-bit index and a +/-1 sign. It evaluates a uniformly random degree-3
// polynomial over GF(p) with p = 2^61 - 1:
//
//	k(x) = ((a*x + b)*x + c)*x + d  mod p
//
// and splits k into index ((k >> 1) masked to l bits) and sign (low bit).
// Any four distinct keys produce jointly independent outputs, which is what
// makes NormSketch.Estimate unbiased with bounded variance. Immutable value.
type FourWiseHash struct {
	bits uint
	mask uint64
	a    uint64
	b    uint64
	c    uint64
	d    uint64
}

// NewFourWiseHash draws a random hash with index range [0, 2^bits).
// Panics if bits > 59. bits == 0 is the degenerate single-counter range:
// every key maps to index 0, leaving only the sign. Coefficients are
// uniform on [1, p); keeping zero out of every coefficient keeps the
// polynomial at full degree.
func NewFourWiseHash(src Source, bits uint) FourWiseHash {
	if bits > maxFourWiseBits {
		panic(fmt.Sprintf("intsketch: four-wise range bits %d exceeds %d", bits, maxFourWiseBits))
	}
	return FourWiseHash{
		bits: bits,
		mask: 1<<bits - 1,
		a:    uint64InRange(src, 1, MersennePrime),
		b:    uint64InRange(src, 1, MersennePrime),
		c:    uint64InRange(src, 1, MersennePrime),
		d:    uint64InRange(src, 1, MersennePrime),
	}
}

// Hash maps x to (index, sign) with index in [0, 2^l) and sign in {-1, +1}.
// Panics if x >= MersennePrime: keys outside the field break 4-wise
// independence silently, so the precondition is enforced.
func (h FourWiseHash) Hash(x uint64) (idx uint64, sign int64) {
	if x >= MersennePrime {
		panic(fmt.Sprintf("intsketch: four-wise key %#x not below 2^61-1", x))
	}
	k := mulAddModMersenne(h.a, x, h.b)
	k = mulAddModMersenne(k, x, h.c)
	k = mulAddModMersenne(k, x, h.d)
	return (k >> 1) & h.mask, 2*int64(k&1) - 1
}

// Bits returns l, the log2 of the index range.
func (h FourWiseHash) Bits() uint {
	return h.bits
}

// mulAddModMersenne computes (a*x + b) mod p for a, x, b < p without a
// divide. The 128-bit product hi*2^64 + lo reduces using 2^64 = 8 mod p:
//
//	hi*2^64 + lo = hi*8 + (lo >> 61) + (lo & p)  (mod p)
//
// Each right-hand term is below 2^61, so the sum (plus b) fits in 63 bits;
// one more fold and a conditional subtract land it in [0, p).
func mulAddModMersenne(a, x, b uint64) uint64 {
	hi, lo := bits.Mul64(a, x)
	s := hi<<3 | lo>>mersenneQ
	s += lo & MersennePrime
	s += b
	s = (s >> mersenneQ) + (s & MersennePrime)
	if s >= MersennePrime {
		s -= MersennePrime
	}
	return s
}
