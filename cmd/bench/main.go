// Bench drives the intsketch structures over synthetic update streams and
// prints per-size timings, matching the shape of the experiments the
// library's constructions come from.
//
// Usage:
//
//	go run ./cmd/bench -structure all -sizes 12,14,16,18,20
//	go run ./cmd/bench -structure sketch -sizes 20 -r 128 -trials 7
//	go run ./cmd/bench -structure fks -sizes 16 -keyfile /tmp/keys.bin
//
// Flags:
//
//	-structure  hwc, fks, sketch, or all (default: all)
//	-sizes      comma-separated exponents k; each run uses n = 2^k keys
//	-r          sketch counter count (default: 128)
//	-trials     independent sketches per run; the median is reported (default: 7)
//	-seed       RNG seed for keys and hash draws (default: 1)
//	-keyfile    persist generated keys and mmap them back for the query phase
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/unsafeslice"
	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/probdata/intsketch"
	intbits "github.com/probdata/intsketch/internal/bits"
)

func main() {
	structure := flag.String("structure", "all", "structure to benchmark: hwc, fks, sketch, or all")
	sizesFlag := flag.String("sizes", "12,14,16,18,20", "comma-separated size exponents k (n = 2^k)")
	rFlag := flag.Int("r", 128, "sketch counter count (power of two)")
	trialsFlag := flag.Int("trials", 7, "independent sketch trials; median reported")
	seedFlag := flag.Uint64("seed", 1, "RNG seed")
	keyfile := flag.String("keyfile", "", "persist keys here and mmap them for the query phase")
	flag.Parse()

	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -sizes: %v\n", err)
		os.Exit(1)
	}

	for _, k := range sizes {
		n := 1 << k
		keys := generateKeys(*seedFlag, n)

		queryKeys := keys
		cleanup := func() {}
		if *keyfile != "" {
			m, done, err := mmapKeys(*keyfile, keys)
			if err != nil {
				fmt.Fprintf(os.Stderr, "keyfile: %v\n", err)
				os.Exit(1)
			}
			queryKeys, cleanup = m, done
		}

		switch *structure {
		case "hwc":
			runHwC(*seedFlag, k, keys, queryKeys)
		case "fks":
			runFKS(*seedFlag, k, keys, queryKeys)
		case "sketch":
			runSketch(*seedFlag, k, keys, *rFlag, *trialsFlag)
		case "all":
			runHwC(*seedFlag, k, keys, queryKeys)
			runFKS(*seedFlag, k, keys, queryKeys)
			runSketch(*seedFlag, k, keys, *rFlag, *trialsFlag)
		default:
			fmt.Fprintf(os.Stderr, "unknown -structure %q\n", *structure)
			os.Exit(1)
		}
		cleanup()
	}
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		k, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if k < 1 || k > 30 {
			return nil, fmt.Errorf("exponent %d outside [1, 30]", k)
		}
		sizes = append(sizes, k)
	}
	return sizes, nil
}

// generateKeys produces n distinct keys below 2^61-1 by murmur3-hashing a
// seeded counter, so streams are reproducible without storing inputs.
func generateKeys(seed uint64, n int) []uint64 {
	keys := make([]uint64, 0, n)
	seen := make(map[uint64]struct{}, n)
	var buf [8]byte
	for i := uint64(0); len(keys) < n; i++ {
		binary.LittleEndian.PutUint64(buf[:], seed^i)
		k := murmur3.Sum64(buf[:]) % intsketch.MersennePrime
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// mmapKeys writes keys to path with an xxhash64 footer, then maps the file
// back and returns its body viewed as a []uint64. The returned cleanup
// unmaps and removes the file.
func mmapKeys(path string, keys []uint64) ([]uint64, func(), error) {
	body := make([]byte, 8*len(keys))
	for i, k := range keys {
		binary.LittleEndian.PutUint64(body[8*i:], k)
	}
	var footer [8]byte
	binary.LittleEndian.PutUint64(footer[:], xxhash.Sum64(body))
	if err := os.WriteFile(path, append(body, footer[:]...), 0o644); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	fadviseSequential(int(f.Fd()), 0, int64(len(m)))

	data, sum := m[:len(m)-8], m[len(m)-8:]
	if xxhash.Sum64(data) != binary.LittleEndian.Uint64(sum) {
		m.Unmap()
		f.Close()
		return nil, nil, fmt.Errorf("%s: checksum mismatch", path)
	}
	cleanup := func() {
		m.Unmap()
		f.Close()
		os.Remove(path)
	}
	return unsafeslice.Uint64SliceFromByteSlice(data), cleanup, nil
}

func runHwC(seed uint64, k int, keys, queryKeys []uint64) {
	rng := rand.New(rand.NewPCG(seed, uint64(k)))
	table := intsketch.NewChainedTable(rng, len(keys))

	start := time.Now()
	for _, key := range keys {
		table.Insert(key, 1)
	}
	fmt.Printf("HwC update with n = 2^%d: %v\n", k, time.Since(start))

	start = time.Now()
	found := 0
	for _, key := range queryKeys {
		if _, ok := table.Query(key); ok {
			found++
		}
	}
	fmt.Printf("HwC query with n = 2^%d: %v (%d found)\n", k, time.Since(start), found)
	fmt.Printf("Longest chain: %d\n", table.LongestChain())
	fmt.Printf("Norm: %d\n", table.Norm())
}

func runFKS(seed uint64, k int, keys, queryKeys []uint64) {
	rng := rand.New(rand.NewPCG(seed, uint64(k)))

	start := time.Now()
	set, err := intsketch.NewPerfectSet(rng, keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FKS build failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("FKS build with n = 2^%d: %v\n", k, time.Since(start))

	start = time.Now()
	found := 0
	for _, key := range queryKeys {
		if set.Contains(key) {
			found++
		}
	}
	fmt.Printf("FKS query with n = 2^%d: %v (%d found)\n", k, time.Since(start), found)

	// Probes remixed from the member keys, almost all outside the set.
	misses := 0
	for _, key := range queryKeys {
		probe := uint64(intbits.FastRange32(key*0x9E3779B97F4A7C15, 1<<30))
		if !set.Contains(probe) {
			misses++
		}
	}
	fmt.Printf("FKS negative probes with n = 2^%d: %d/%d rejected\n", k, misses, len(queryKeys))
}

func runSketch(seed uint64, k int, keys []uint64, r, trials int) {
	start := time.Now()
	estimates := make([]int64, trials)

	var g errgroup.Group
	for t := 0; t < trials; t++ {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(t)<<32|uint64(k)))
			sketch := intsketch.NewNormSketch(rng, r)
			for _, key := range keys {
				sketch.Update(key, 1)
			}
			estimates[t] = sketch.Estimate()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "sketch trials: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sketch update with n = 2^%d: %v (%d trials, r = %d)\n", k, time.Since(start), trials, r)

	sort.Slice(estimates, func(i, j int) bool { return estimates[i] < estimates[j] })
	fmt.Printf("Sketch estimate (median of %d): %d\n", trials, estimates[trials/2])
}
