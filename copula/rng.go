// SPDX-License-Identifier: MIT

// RNG utilities for the copula sampler.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. The Joint keeps its base source
//     behind a mutex and hands every Sample call its own derived stream.
package copula

import (
	"math/rand"
	"time"
)

// defaultRNGSeed is the fixed "zero" seed used when callers pass seed==0.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ defaultRNGSeed; otherwise the seed is used verbatim.
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// unseededRNG returns a source seeded from the wall clock.
func unseededRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// deriveSeed mixes a parent seed and a stream identifier with the
// SplitMix64 finalizer, so consecutive stream ids give unrelated seeds.
func deriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// deriveRNG creates an independent stream from base and stream.
// base.Int63() is consumed once, so reusing a stream id still yields a new child.
func deriveRNG(base *rand.Rand, stream uint64) *rand.Rand {
	return rand.New(rand.NewSource(deriveSeed(base.Int63(), stream)))
}
