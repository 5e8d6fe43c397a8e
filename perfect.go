package intsketch

import (
	"fmt"
	"slices"

	interrors "github.com/probdata/intsketch/errors"
	intbits "github.com/probdata/intsketch/internal/bits"
)

const (
	// fksExpansion is the constant c in the FKS geometry: the outer table
	// has 4*c*N slots and bucket i gets 2*c*ci^2 slots. c = 2 keeps the
	// outer collision budget Pr[sum ci^2 > m] <= 1/2 with room to spare.
	fksExpansion = 2

	// maxOuterAttempts and maxInnerAttempts cap the hash redraw loops.
	// Each attempt fails with probability at most 1/2, so a cap breach
	// means the Source is broken, not unlucky.
	maxOuterAttempts = 64
	maxInnerAttempts = 64
)

// subTable is one second-level table: a densely indexed slot array with a
// fresh multiply-shift hash that is collision-free on the bucket's keys.
// The occupied bitmap distinguishes empty slots from a stored key, so every
// uint64 (including 0) is a valid member.
type subTable struct {
	hash     MultiplyShiftHash
	slots    []uint64
	occupied []uint64
}

func (st *subTable) has(slot uint64) bool {
	return st.occupied[slot>>6]&(1<<(slot&63)) != 0
}

func (st *subTable) set(slot uint64) {
	st.occupied[slot>>6] |= 1 << (slot & 63)
}

// PerfectSet is a static set of distinct uint64 keys with O(1) worst-case
// membership queries, built with the Fredman-Komlos-Szemeredi two-level
// scheme: an outer multiply-shift hash splits the keys into buckets, and
// each bucket gets a quadratically sized sub-table with its own hash,
// redrawn until it is collision-free on the bucket.
//
// The set is immutable after construction. Contains never allocates and is
// safe for any number of concurrent readers.
type PerfectSet struct {
	outer  MultiplyShiftHash
	tables []subTable
	n      int
}

// NewPerfectSet builds a set from a batch of distinct keys. Total space is
// O(len(keys)) expected; construction is expected O(len(keys)) with O(1)
// expected hash redraws.
//
// Returns errors.ErrDuplicateKey if the input repeats a key, and
// errors.ErrRetryLimit if a redraw cap is exhausted (a degenerate Source).
func NewPerfectSet(src Source, keys []uint64) (*PerfectSet, error) {
	if len(keys) == 0 {
		return &PerfectSet{}, nil
	}

	m := intbits.NextPow2(4 * fksExpansion * uint64(len(keys)))
	outerBits := intbits.Log2(m)

	for attempt := 0; attempt < maxOuterAttempts; attempt++ {
		outer := NewMultiplyShiftHash(src, outerBits)

		buckets := make([][]uint64, m)
		for _, k := range keys {
			b := outer.Hash(k)
			buckets[b] = append(buckets[b], k)
		}

		// Collision budget: sum of squared occupancies must fit in the
		// outer table, or the whole distribution is redrawn.
		var budget uint64
		for _, bucket := range buckets {
			budget += uint64(len(bucket)) * uint64(len(bucket))
		}
		if budget > m {
			continue
		}

		tables := make([]subTable, m)
		for i, bucket := range buckets {
			if len(bucket) == 0 {
				continue
			}
			st, err := buildSubTable(src, bucket)
			if err != nil {
				return nil, err
			}
			tables[i] = st
		}
		return &PerfectSet{outer: outer, tables: tables, n: len(keys)}, nil
	}

	// An input dominated by one repeated key inflates the collision budget
	// past m on every draw. Rule that out before blaming the Source.
	if dup, ok := findDuplicate(keys); ok {
		return nil, fmt.Errorf("key %#x: %w", dup, interrors.ErrDuplicateKey)
	}
	return nil, fmt.Errorf("outer table after %d attempts: %w", maxOuterAttempts, interrors.ErrRetryLimit)
}

// findDuplicate reports a key that appears more than once. Only called on
// the outer failure path, so the sort cost is off the happy path.
func findDuplicate(keys []uint64) (uint64, bool) {
	sorted := append([]uint64(nil), keys...)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return sorted[i], true
		}
	}
	return 0, false
}

// buildSubTable places a bucket's keys into 2*c*ci^2 slots (rounded up to a
// power of two), redrawing the inner hash on any slot collision between
// distinct keys. A collision between equal keys is reported as a duplicate:
// it can never be resolved by redrawing.
func buildSubTable(src Source, bucket []uint64) (subTable, error) {
	size := intbits.NextPow2(2 * fksExpansion * uint64(len(bucket)) * uint64(len(bucket)))

attempts:
	for attempt := 0; attempt < maxInnerAttempts; attempt++ {
		st := subTable{
			hash:     NewMultiplyShiftHash(src, intbits.Log2(size)),
			slots:    make([]uint64, size),
			occupied: make([]uint64, (size+63)/64),
		}
		for _, k := range bucket {
			j := st.hash.Hash(k)
			if st.has(j) {
				if st.slots[j] == k {
					return subTable{}, fmt.Errorf("key %#x: %w", k, interrors.ErrDuplicateKey)
				}
				continue attempts
			}
			st.slots[j] = k
			st.set(j)
		}
		return st, nil
	}
	return subTable{}, fmt.Errorf("sub-table of %d keys after %d attempts: %w",
		len(bucket), maxInnerAttempts, interrors.ErrRetryLimit)
}

// Contains reports whether key is in the set. Two hash evaluations and one
// comparison; no scanning, no loops, no allocation.
func (s *PerfectSet) Contains(key uint64) bool {
	if len(s.tables) == 0 {
		return false
	}
	st := &s.tables[s.outer.Hash(key)]
	if len(st.slots) == 0 {
		return false
	}
	j := st.hash.Hash(key)
	return st.has(j) && st.slots[j] == key
}

// Len returns the number of keys the set was built from.
func (s *PerfectSet) Len() int {
	return s.n
}
