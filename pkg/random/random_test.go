package random

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.Equal(t, a.UUID(), b.UUID())
	assert.Equal(t, a.Float64(), b.Float64())
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	assert.NotEqual(t, a.Uint64(), b.Uint64())
}

func TestDeriveIsDeterministic(t *testing.T) {
	a := New(7).Derive()
	b := New(7).Derive()
	assert.Equal(t, a.Seed(), b.Seed())
	assert.Equal(t, a.IntN(1000), b.IntN(1000))
}

func TestUUIDIsVersion4(t *testing.T) {
	s := New(3)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		id, err := uuid.Parse(s.UUID())
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), id.Version())
		_, dup := seen[id.String()]
		require.False(t, dup)
		seen[id.String()] = struct{}{}
	}
}

func TestIntRangeInclusive(t *testing.T) {
	s := New(9)
	hits := make(map[int]int)
	for i := 0; i < 2000; i++ {
		v := s.IntRange(1, 5)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 5)
		hits[v]++
	}
	assert.Len(t, hits, 5)
	assert.Equal(t, 4, s.IntRange(4, 4))
}

func TestSampleWithoutReplacement(t *testing.T) {
	s := New(11)
	items := []string{"a", "b", "c", "d"}

	for k := 0; k <= 6; k++ {
		got := Sample(s, items, k)
		assert.Len(t, got, min(k, len(items)))
		seen := make(map[string]struct{})
		for _, v := range got {
			_, dup := seen[v]
			require.False(t, dup, "sample reused %q", v)
			seen[v] = struct{}{}
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
}

func TestChoiceCoversAllItems(t *testing.T) {
	s := New(5)
	items := []int{10, 20, 30}
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		seen[Choice(s, items)] = true
	}
	assert.Len(t, seen, 3)
}
