package combat

import "math/rand/v2"

// RNG is the randomness source used by combat. Production code uses the
// process-wide generator; tests inject a seeded one for determinism.
type RNG interface {
	// IntN returns a uniform int in [0, n). n must be > 0.
	IntN(n int) int
	// Float64 returns a uniform float64 in [0.0, 1.0).
	Float64() float64
}

// processRNG delegates to math/rand/v2's top-level functions, which are
// safe for concurrent use across sessions.
type processRNG struct{}

func (processRNG) IntN(n int) int   { return rand.IntN(n) }
func (processRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG returns the shared process randomness source.
func DefaultRNG() RNG {
	return processRNG{}
}

// SeededRNG returns a deterministic source for tests.
func SeededRNG(seed uint64) RNG {
	return rand.New(rand.NewPCG(seed, seed))
}
