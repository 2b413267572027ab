// Package random provides the single explicitly seeded random source that
// every generation step draws from. Two sources created from the same seed
// produce the same stream, which makes a whole generation run reproducible.
package random

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Source is a seeded pseudo-random stream. It satisfies rand.Source and
// io.Reader so it can also drive third-party generators and UUID creation.
// A Source is not safe for concurrent use.
type Source struct {
	seed   uint64
	chacha *rand.ChaCha8
	r      *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed uint64) *Source {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	key := sha256.Sum256(buf[:])
	chacha := rand.NewChaCha8(key)
	return &Source{
		seed:   seed,
		chacha: chacha,
		r:      rand.New(chacha),
	}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Derive returns an independent child source. The child seed is drawn from
// s, so deriving children in a fixed order is itself deterministic.
func (s *Source) Derive() *Source {
	return New(s.r.Uint64())
}

func (s *Source) Uint64() uint64 {
	return s.chacha.Uint64()
}

// Read fills p with pseudo-random bytes. It never fails.
func (s *Source) Read(p []byte) (int, error) {
	return s.chacha.Read(p)
}

// Float64 returns a value in [0.0, 1.0).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// IntN returns a value in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	return s.r.IntN(n)
}

// IntRange returns a value in [lo, hi], both ends inclusive.
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

// Bernoulli reports true with probability p.
func (s *Source) Bernoulli(p float64) bool {
	return s.r.Float64() < p
}

// UUID returns a version 4 UUID whose random bits come from the stream.
func (s *Source) UUID() string {
	id, err := uuid.NewRandomFromReader(s)
	if err != nil {
		// Read never fails, so neither does uuid generation.
		panic(err)
	}
	return id.String()
}

// Choice returns a uniformly chosen element of items. It panics on an
// empty slice.
func Choice[T any](s *Source, items []T) T {
	return items[s.IntN(len(items))]
}

// Sample returns k distinct elements of items in random order. If k exceeds
// len(items) all elements are returned shuffled. items is not modified.
func Sample[T any](s *Source, items []T, k int) []T {
	pool := make([]T, len(items))
	copy(pool, items)
	k = min(k, len(pool))
	if k <= 0 {
		return []T{}
	}
	for i := 0; i < k; i++ {
		j := i + s.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
