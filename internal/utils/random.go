package utils

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"time"
)

// Random is the single seeded pseudo-random source for a bank instance.
// Account numbers are drawn from it, so two runs with the same seed open
// accounts with the same IDs in the same order.
type Random struct {
	rng  *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRandom creates a new Random instance with the given seed.
// If seed is 0, a cryptographically random seed is generated.
func NewRandom(seed int64) *Random {
	var actualSeed uint64
	if seed == 0 {
		actualSeed = generateRandomSeed()
	} else {
		actualSeed = uint64(seed)
	}

	return &Random{
		rng:  rand.New(rand.NewPCG(actualSeed, actualSeed^0xDEADBEEF)),
		seed: actualSeed,
	}
}

// generateRandomSeed creates a cryptographically random seed
func generateRandomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// Fallback to time-based seed if crypto/rand fails
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Seed returns the seed used to initialize this RNG
func (r *Random) Seed() uint64 {
	return r.seed
}

// IntN returns a pseudo-random int in [0, n)
func (r *Random) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// IntRange returns a pseudo-random int in [min, max]
func (r *Random) IntRange(min, max int) int {
	if min >= max {
		return min
	}
	return min + r.IntN(max-min+1)
}

// UniqueIntRange draws an int in [min, max] for which taken reports false.
// It tries up to attempts random draws, then probes linearly (with wrap)
// from one more random start so the call always terminates. ok is false
// only when every value in the range is taken.
func (r *Random) UniqueIntRange(min, max, attempts int, taken func(int) bool) (v int, ok bool) {
	if min > max {
		return 0, false
	}
	for i := 0; i < attempts; i++ {
		v = r.IntRange(min, max)
		if !taken(v) {
			return v, true
		}
	}

	span := max - min + 1
	start := r.IntN(span)
	for i := 0; i < span; i++ {
		v = min + (start+i)%span
		if !taken(v) {
			return v, true
		}
	}
	return 0, false
}
