package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridIndexing(t *testing.T) {
	g, err := NewGrid(10, 6, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, g.Index(0, 0))
	assert.Equal(t, 10, g.Index(0, 1))
	assert.Equal(t, 23, g.Index(3, 2))

	assert.True(t, g.InBounds(9, 5))
	assert.False(t, g.InBounds(10, 5))
	assert.False(t, g.InBounds(-1, 0))
	assert.False(t, g.InBounds(0, 6))
}

func TestNewGridRejectsBadDimensions(t *testing.T) {
	_, err := NewGrid(0, 5, 1)
	assert.Error(t, err)
	_, err = NewGrid(5, -1, 1)
	assert.Error(t, err)
}

func TestBiomePredicates(t *testing.T) {
	assert.True(t, BiomeDeepWater.IsWater())
	assert.False(t, BiomeDeepWater.IsLand())
	assert.False(t, BiomeLava.IsLand())
	assert.True(t, BiomeGrassland.IsLand())
	assert.True(t, BiomeMountain.IsRocky())
	assert.True(t, BiomeScorched.IsRocky())
	assert.False(t, BiomeGrassland.IsRocky())
	assert.True(t, BiomeSwamp.IsClayLike())
	assert.True(t, BiomeBeach.IsClayLike())
	assert.True(t, BiomeJungle.IsForestLike())
	assert.False(t, BiomeDesert.IsForestLike())
}

func TestRockyRatio(t *testing.T) {
	g, err := NewGrid(10, 10, 1)
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		g.Tiles[i] = byte(BiomeRock)
	}
	assert.InDelta(t, 0.25, g.RockyRatio(), 1e-9)
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Width = 32
	cfg.Height = 32
	cfg.Seed = 77

	a := Generate(cfg)
	b := Generate(cfg)
	assert.Equal(t, a.Tiles, b.Tiles)
	assert.Equal(t, a.Fertility, b.Fertility)
	assert.Equal(t, a.Hazard, b.Hazard)

	cfg.Seed = 78
	c := Generate(cfg)
	assert.NotEqual(t, a.Tiles, c.Tiles, "different seeds diverge")
}

func TestGenerateHasLandAndWater(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 5
	g := Generate(cfg)

	counts := g.BiomeCounts()
	land := 0
	water := 0
	for b, c := range counts {
		if b.IsWater() {
			water += c
		} else if b.IsLand() {
			land += c
		}
	}
	assert.Greater(t, land, 0)
	assert.Greater(t, water, 0, "continental shaping leaves an ocean border")
}

func TestStateRoundTrip(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Width = 16
	cfg.Height = 16
	cfg.Seed = 9
	g := Generate(cfg)
	g.Tick = 123

	restored, err := HydrateState(g.ExportState())
	require.NoError(t, err)
	assert.Equal(t, g, restored)
}

func TestHydrateRejectsMismatchedLengths(t *testing.T) {
	st := State{Width: 4, Height: 4, Tiles: make([]int, 15)}
	_, err := HydrateState(st)
	assert.Error(t, err)
}

func TestNearWater(t *testing.T) {
	g, err := NewGrid(5, 5, 1)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = byte(BiomeGrassland)
	}
	g.Tiles[g.Index(2, 1)] = byte(BiomeShallowWater)

	assert.True(t, g.NearWater(2, 2))
	assert.True(t, g.NearWater(1, 1))
	assert.False(t, g.NearWater(4, 4))
}
