package intsketch

import (
	"fmt"

	intbits "github.com/probdata/intsketch/internal/bits"
)

// NormSketch is a single-row Count-Sketch estimator of the second frequency
// moment F2 = sum over keys of aggregated-value squared. Each update routes
// through one 4-wise independent hash to a counter index and a +/-1 sign;
// 4-wise independence cancels the cross-terms of Estimate in expectation,
// making it unbiased with variance shrinking in the counter count r.
//
// The sketch is linear in its update stream: updates commute, coalesce
// additively per key, and two sketches drawn from the same hash can be
// summed with Merge.
type NormSketch struct {
	counters []int64
	hash     FourWiseHash
}

// NewNormSketch creates an empty sketch with r counters and a freshly drawn
// hash. r must be a power of two. Keys passed to Update must be below
// 2^61 - 1 (see FourWiseHash); route byte keys through PreHash.
func NewNormSketch(src Source, r int) *NormSketch {
	if r <= 0 || !intbits.IsPow2(uint64(r)) {
		panic(fmt.Sprintf("intsketch: sketch counter count %d is not a power of two", r))
	}
	return &NormSketch{
		counters: make([]int64, r),
		hash:     NewFourWiseHash(src, intbits.Log2(uint64(r))),
	}
}

// Update folds (key, delta) into the sketch. Allocation-free.
func (s *NormSketch) Update(key uint64, delta int64) {
	idx, sign := s.hash.Hash(key)
	s.counters[idx] += sign * delta
}

// Estimate returns the current F2 estimate, the sum of squared counters.
func (s *NormSketch) Estimate() int64 {
	var est int64
	for _, c := range s.counters {
		est += c * c
	}
	return est
}

// Merge adds other's counters into s. The result is the sketch of the
// concatenated update streams, but only when both sketches share the same
// hash; merging sketches with independently drawn hashes is meaningless, so
// mismatched hash parameters panic.
func (s *NormSketch) Merge(other *NormSketch) {
	if s.hash != other.hash {
		panic("intsketch: merging sketches with different hash parameters")
	}
	for i, c := range other.counters {
		s.counters[i] += c
	}
}

// Clone returns an independent copy sharing the hash parameters, suitable
// as a Merge target.
func (s *NormSketch) Clone() *NormSketch {
	c := &NormSketch{
		counters: make([]int64, len(s.counters)),
		hash:     s.hash,
	}
	copy(c.counters, s.counters)
	return c
}
