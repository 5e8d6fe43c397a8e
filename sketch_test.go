package intsketch

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormSketchCounterCountMustBePow2(t *testing.T) {
	rng := newTestRNG(t)
	assert.Panics(t, func() { NewNormSketch(rng, 0) })
	assert.Panics(t, func() { NewNormSketch(rng, 100) })
	assert.NotPanics(t, func() { NewNormSketch(rng, 1) })
	assert.NotPanics(t, func() { NewNormSketch(rng, 2) })
}

// A one-counter sketch is the smallest legal width. With a single key the
// sign squares away and the estimate is exact.
func TestNormSketchSingleCounter(t *testing.T) {
	rng := newTestRNG(t)
	s := NewNormSketch(rng, 1)
	s.Update(42, 3)
	s.Update(42, 4)
	assert.Equal(t, int64(49), s.Estimate())

	s.Update(42, -7)
	assert.Equal(t, int64(0), s.Estimate())
}

func TestNormSketchEmptyEstimate(t *testing.T) {
	rng := newTestRNG(t)
	s := NewNormSketch(rng, 128)
	assert.Equal(t, int64(0), s.Estimate())
}

// Coalescing updates per key must leave bit-identical counters: the sketch
// is linear in its update stream.
func TestNormSketchLinearity(t *testing.T) {
	rng := newTestRNG(t)
	split := NewNormSketch(rng, 128)
	whole := split.Clone()

	updates := []struct {
		key uint64
		d1  int64
		d2  int64
	}{
		{0, 3, 4},
		{17, -5, 5},
		{1 << 50, 1000, -1},
		{999, -7, -8},
	}
	for _, u := range updates {
		split.Update(u.key, u.d1)
		split.Update(u.key, u.d2)
		whole.Update(u.key, u.d1+u.d2)
	}
	require.Equal(t, whole.counters, split.counters)
}

func TestNormSketchOrderIndependence(t *testing.T) {
	rng := newTestRNG(t)
	forward := NewNormSketch(rng, 64)
	backward := forward.Clone()

	keys := distinctKeys(rng, 500)
	for i, k := range keys {
		forward.Update(k, int64(i)-250)
	}
	for i := len(keys) - 1; i >= 0; i-- {
		backward.Update(keys[i], int64(i)-250)
	}
	require.Equal(t, forward.counters, backward.counters)
	assert.Equal(t, forward.Estimate(), backward.Estimate())
}

func TestNormSketchMerge(t *testing.T) {
	rng := newTestRNG(t)
	full := NewNormSketch(rng, 64)
	first := full.Clone()
	second := full.Clone()

	keys := distinctKeys(rng, 300)
	for i, k := range keys {
		d := int64(i%17) - 8
		full.Update(k, d)
		if i%2 == 0 {
			first.Update(k, d)
		} else {
			second.Update(k, d)
		}
	}
	first.Merge(second)
	require.Equal(t, full.counters, first.counters)
}

func TestNormSketchMergeRejectsForeignHash(t *testing.T) {
	rng := newTestRNG(t)
	a := NewNormSketch(rng, 64)
	b := NewNormSketch(rng, 64)
	assert.Panics(t, func() { a.Merge(b) })
}

// The estimator is unbiased: over many independently drawn hashes on the
// same aggregated stream, the mean estimate converges on the true F2. The
// tolerance is four empirical standard errors, loose enough to be stable
// while catching a systematically biased sign or index extraction.
func TestNormSketchUnbiased(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical test in short mode")
	}
	rng := newTestRNG(t)
	const (
		trials  = 1000
		r       = 128
		numKeys = 8
		value   = 125_000
	)
	trueF2 := float64(numKeys) * float64(value) * float64(value)

	estimates := make([]float64, trials)
	for i := range estimates {
		s := NewNormSketch(rng, r)
		for k := uint64(0); k < numKeys; k++ {
			s.Update(k, value)
		}
		estimates[i] = float64(s.Estimate())
	}

	var mean float64
	for _, e := range estimates {
		mean += e
	}
	mean /= trials
	var variance float64
	for _, e := range estimates {
		variance += (e - mean) * (e - mean)
	}
	variance /= trials - 1
	stderr := math.Sqrt(variance / trials)

	if diff := math.Abs(mean - trueF2); diff > 4*stderr {
		t.Fatalf("mean estimate %.4g vs true %.4g: off by %.4g > 4 stderr (%.4g)",
			mean, trueF2, diff, 4*stderr)
	}
}

// One million updates cycling over 8 keys: every key aggregates to 125000,
// so the true F2 is 8 * 125000^2 = 1.25e11. With 8 keys in 128 counters a
// sketch is exact unless two keys share a counter, and a single shared pair
// shifts the estimate by exactly 25%; the median over 7 sketches lands
// within 30% unless most sketches take two or more collisions at once.
func TestNormSketchCyclicStreamMedian(t *testing.T) {
	rng := newTestRNG(t)
	const (
		trials = 7
		r      = 128
		n      = 1_000_000
	)
	const trueF2 = 125_000_000_000

	estimates := make([]int64, trials)
	for i := range estimates {
		s := NewNormSketch(rng, r)
		for j := 0; j < n; j++ {
			s.Update(uint64(j%8), 1)
		}
		estimates[i] = s.Estimate()
	}
	sort.Slice(estimates, func(i, j int) bool { return estimates[i] < estimates[j] })
	median := estimates[trials/2]

	lo := int64(float64(trueF2) * 0.7)
	hi := int64(float64(trueF2) * 1.3)
	if median < lo || median > hi {
		t.Fatalf("median estimate %d outside [%d, %d] around true %d", median, lo, hi, trueF2)
	}
}

// The sketch's estimate on a collision-free assignment equals the exact
// norm a ChainedTable computes from the same stream.
func TestNormSketchMatchesChainedTableWhenWide(t *testing.T) {
	rng := newTestRNG(t)
	table := NewChainedTable(rng, 8)
	// A wide sketch: 4 keys in 2^16 counters collide with probability
	// about 1 in 5000 per pair, so equality holds for essentially every
	// drawn hash. The fixed per-test RNG makes the outcome reproducible.
	sketch := NewNormSketch(rng, 1<<16)
	for i := 0; i < 10_000; i++ {
		k := uint64(i % 4)
		table.Insert(k, 1)
		sketch.Update(k, 1)
	}
	assert.Equal(t, table.Norm(), sketch.Estimate())
}

func BenchmarkNormSketchUpdate(b *testing.B) {
	rng := rand.New(rand.NewPCG(testSeed1, testSeed2))
	s := NewNormSketch(rng, 128)
	keys := make([]uint64, 1024)
	for i := range keys {
		keys[i] = rng.Uint64N(MersennePrime)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Update(keys[i&1023], 1)
	}
}

func BenchmarkNormSketchEstimate(b *testing.B) {
	rng := rand.New(rand.NewPCG(testSeed1, testSeed2))
	s := NewNormSketch(rng, 1<<12)
	for i := 0; i < 1<<14; i++ {
		s.Update(rng.Uint64N(MersennePrime), 1)
	}
	b.ResetTimer()
	var sink int64
	for i := 0; i < b.N; i++ {
		sink = s.Estimate()
	}
	_ = sink
}
