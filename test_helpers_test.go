package intsketch

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a PCG seeded from the test name, so every test is
// deterministic yet no two tests share a stream.
func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// distinctKeys generates n distinct pseudo-random keys below 2^61-1, valid
// for every structure in the package.
func distinctKeys(rng *rand.Rand, n int) []uint64 {
	seen := make(map[uint64]struct{}, n)
	keys := make([]uint64, 0, n)
	for len(keys) < n {
		k := rng.Uint64N(MersennePrime)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// constantSource is a degenerate Source whose draws never vary. It makes
// every hash redraw return the same parameters, so retry loops can be
// driven to their caps.
type constantSource struct {
	v uint64
}

func (s constantSource) Uint64N(n uint64) uint64 {
	return s.v % n
}
