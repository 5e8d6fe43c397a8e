package intsketch

// Source supplies the randomness for hash parameter draws. It is the only
// thing the library ever asks of its caller's RNG, and it is satisfied by
// *math/rand/v2.Rand, so a seeded PCG gives fully reproducible structures:
//
//	rng := rand.New(rand.NewPCG(seed1, seed2))
//	h := intsketch.NewMultiplyShiftHash(rng, 20)
//
// Uint64N must return a uniform value in [0, n). The library never calls it
// with n == 0.
type Source interface {
	Uint64N(n uint64) uint64
}

// uint64InRange draws a uniform value from the closed-open range [lo, hi).
func uint64InRange(src Source, lo, hi uint64) uint64 {
	if lo >= hi {
		panic("intsketch: empty draw range")
	}
	return lo + src.Uint64N(hi-lo)
}

// fullUint64 draws a uniform 64-bit integer. Source only exposes half-open
// ranges, so the top 63 bits and the low bit come from separate draws.
func fullUint64(src Source) uint64 {
	return src.Uint64N(1<<63)<<1 | src.Uint64N(2)
}

// oddUint64 draws a uniform odd 64-bit integer.
func oddUint64(src Source) uint64 {
	return src.Uint64N(1<<63)<<1 | 1
}
