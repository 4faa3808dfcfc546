package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceIsDeterministic(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.NextUint(), b.NextUint(), "draw %d diverged", i)
	}
}

func TestZeroSeedRebias(t *testing.T) {
	r := New(0)
	assert.Equal(t, uint32(0x9e3779b9), r.State())

	r.Reseed(0)
	assert.Equal(t, uint32(0x9e3779b9), r.State())

	r.SetState(0)
	assert.Equal(t, uint32(0x9e3779b9), r.State())
}

func TestKnownSequence(t *testing.T) {
	// First draws from seed 1, fixed by the xorshift32 recurrence.
	r := New(1)
	first := r.NextUint()
	assert.Equal(t, uint32(270369), first)
}

func TestSetStateRoundTrip(t *testing.T) {
	r := New(777)
	r.NextUint()
	r.NextUint()

	saved := r.State()
	want := []uint32{r.NextUint(), r.NextUint(), r.NextUint()}

	r.SetState(saved)
	for i, w := range want {
		assert.Equal(t, w, r.NextUint(), "draw %d after restore", i)
	}
}

func TestNextFloatBounds(t *testing.T) {
	r := New(42)
	for i := 0; i < 100000; i++ {
		v := r.NextFloat()
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestNextIntDistribution(t *testing.T) {
	r := New(9)
	const n = 10
	const draws = 10_000_000
	sum := 0.0
	for i := 0; i < draws; i++ {
		v := r.NextInt(n)
		require.Less(t, v, n)
		require.GreaterOrEqual(t, v, 0)
		sum += float64(v)
	}
	mean := sum / draws
	// Mean of uniform [0,9] is 4.5.
	assert.InDelta(t, 4.5, mean, 0.01)
}

func TestNextIntDegenerate(t *testing.T) {
	r := New(5)
	assert.Equal(t, 0, r.NextInt(0))
	assert.Equal(t, 0, r.NextInt(-3))
	assert.Equal(t, 0, r.NextInt(1))
}

func TestRangeInt(t *testing.T) {
	r := New(31)
	for i := 0; i < 1000; i++ {
		v := r.RangeInt(3, 7)
		require.GreaterOrEqual(t, v, 3)
		require.LessOrEqual(t, v, 7)
	}
	assert.Equal(t, 4, r.RangeInt(4, 4))
	assert.Equal(t, 4, r.RangeInt(4, 2))
}

func TestChanceExtremes(t *testing.T) {
	r := New(77)
	for i := 0; i < 100; i++ {
		assert.False(t, r.Chance(0))
	}
	hits := 0
	for i := 0; i < 1000; i++ {
		if r.Chance(0.5) {
			hits++
		}
	}
	assert.Greater(t, hits, 400)
	assert.Less(t, hits, 600)
}

func TestHashIsStableAndPositionKeyed(t *testing.T) {
	a := Hash(1, 3, 4)
	b := Hash(1, 3, 4)
	assert.Equal(t, a, b)
	assert.NotEqual(t, Hash(1, 3, 4), Hash(1, 4, 3))
	assert.NotEqual(t, Hash(1, 3, 4), Hash(2, 3, 4))
	assert.GreaterOrEqual(t, a, 0.0)
	assert.LessOrEqual(t, a, 1.0)
}
