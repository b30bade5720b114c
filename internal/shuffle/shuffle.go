// Package shuffle produces uniform random permutations with a pluggable
// random source.
package shuffle

import (
	crand "crypto/rand"
	mrand "math/rand/v2"
)

// Rand is the subset of *rand.Rand the shuffle needs.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a ChaCha8-backed source seeded from crypto/rand.
func NewRand() *mrand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return mrand.New(mrand.NewChaCha8(seed))
}

// NewSeeded returns a deterministic source for tests and replays.
func NewSeeded(seed uint64) *mrand.Rand {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle returns a Fisher-Yates permutation of s. The input is not modified.
func Shuffle[T any](r Rand, s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Pick returns a uniformly chosen index in [0, n). n must be positive.
func Pick(r Rand, n int) int {
	return r.IntN(n)
}
