package intsketch

import (
	"fmt"

	intbits "github.com/probdata/intsketch/internal/bits"
)

// chainEntry is one aggregated key inside a bucket.
type chainEntry struct {
	key uint64
	val int64
}

// ChainedTable is a hashing-with-chaining dictionary that aggregates values
// additively per key: inserting (k, d1) then (k, d2) stores k once with
// value d1+d2. Buckets are plain owned slices; any collision rate is
// tolerated, it only lengthens chains. The bucket count is fixed at
// construction.
type ChainedTable struct {
	buckets [][]chainEntry
	hash    MultiplyShiftHash
	keys    int
}

// NewChainedTable creates an empty table with m buckets and a freshly drawn
// bucket hash. m must be a power of two; the hash range is exactly the
// bucket array.
func NewChainedTable(src Source, m int) *ChainedTable {
	if m <= 0 || !intbits.IsPow2(uint64(m)) {
		panic(fmt.Sprintf("intsketch: chained table bucket count %d is not a power of two", m))
	}
	return &ChainedTable{
		buckets: make([][]chainEntry, m),
		hash:    NewMultiplyShiftHash(src, intbits.Log2(uint64(m))),
	}
}

// Insert adds delta to the value aggregated for key, creating the entry if
// the key is new. Expected O(1 + load factor).
func (t *ChainedTable) Insert(key uint64, delta int64) {
	b := t.hash.Hash(key)
	bucket := t.buckets[b]
	for i := range bucket {
		if bucket[i].key == key {
			bucket[i].val += delta
			return
		}
	}
	t.buckets[b] = append(bucket, chainEntry{key: key, val: delta})
	t.keys++
}

// Query returns the aggregated value for key and whether the key is present.
// It never mutates the table.
func (t *ChainedTable) Query(key uint64) (int64, bool) {
	for _, e := range t.buckets[t.hash.Hash(key)] {
		if e.key == key {
			return e.val, true
		}
	}
	return 0, false
}

// Norm returns the exact second frequency moment of the aggregated values,
// sum over keys of value squared. This is the ground truth NormSketch
// estimates.
func (t *ChainedTable) Norm() int64 {
	var norm int64
	for _, bucket := range t.buckets {
		for _, e := range bucket {
			norm += e.val * e.val
		}
	}
	return norm
}

// Len returns the number of distinct keys stored.
func (t *ChainedTable) Len() int {
	return t.keys
}

// LongestChain returns the maximum bucket occupancy, a diagnostic for how
// evenly the bucket hash spread the keys.
func (t *ChainedTable) LongestChain() int {
	longest := 0
	for _, bucket := range t.buckets {
		if len(bucket) > longest {
			longest = len(bucket)
		}
	}
	return longest
}
