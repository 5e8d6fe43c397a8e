// Package intsketch implements randomized hashing data structures over
// fixed-width integer keys: a chained hash table with additive value
// aggregation, a static two-level perfect-hash set (FKS), and a single-row
// Count-Sketch estimator of the second frequency moment.
//
// All three are built on the same hashing kernel: a 2-universal
// multiply-shift hash and a 4-wise independent degree-3 polynomial hash over
// the Mersenne prime 2^61 - 1. Keys are uint64 throughout; the polynomial
// hash (and therefore NormSketch) requires keys strictly below 2^61 - 1.
// PreHash folds arbitrary byte keys into that range.
//
// # Basic Usage
//
// Exact second moment with a chained table:
//
//	rng := rand.New(rand.NewPCG(1, 2))
//	table := intsketch.NewChainedTable(rng, 1<<16)
//	for _, u := range updates {
//	    table.Insert(u.Key, u.Delta)
//	}
//	fmt.Printf("Norm: %d\n", table.Norm())
//
// Static membership:
//
//	set, err := intsketch.NewPerfectSet(rng, keys)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ok := set.Contains(42)
//
// Approximate second moment in r counters:
//
//	sketch := intsketch.NewNormSketch(rng, 128)
//	for _, u := range updates {
//	    sketch.Update(u.Key, u.Delta)
//	}
//	est := sketch.Estimate()
//
// # Randomness
//
// Every constructor takes a Source, the one-method interface satisfied by
// *math/rand/v2.Rand. Seed it for reproducible hash parameters; the library
// never constructs its own RNG.
//
// # Package Structure
//
//   - Hashing kernel: rng.go (Source), multishift.go (MultiplyShiftHash),
//     fourwise.go (FourWiseHash)
//   - Structures: chained.go (ChainedTable), perfect.go (PerfectSet),
//     sketch.go (NormSketch)
//   - Key ingestion: prehash.go (PreHash, PreHashString)
//   - Errors: errors/ (sentinel values for construction failures)
//   - Primitives: internal/bits (power-of-two geometry, FastRange32)
package intsketch
