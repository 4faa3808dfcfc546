package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/materials"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	g, err := world.NewGrid(8, 8, 42)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = byte(world.BiomeGrassland)
		g.Fertility[i] = 160
		g.Humidity[i] = 160
		g.Temperature[i] = 140
	}
	mats, err := materials.GenerateCatalog(g)
	require.NoError(t, err)
	catalog, err := items.GenerateCatalog(42, mats)
	require.NoError(t, err)
	sys, err := civ.NewSystem(civ.Deps{Grid: g, Materials: mats, Items: catalog}, civ.DefaultConfig())
	require.NoError(t, err)

	stats := func(tick uint64) []civ.SpeciesStat {
		return []civ.SpeciesStat{{
			SpeciesID: "sp-a", Population: 30, Intelligence: 0.5,
			Vitality: 0.7, IsIntelligent: true, Stability: 0.7,
		}}
	}
	return New(sys, stats)
}

func TestStepAdvancesTick(t *testing.T) {
	e := testEngine(t)
	e.Step()
	assert.Equal(t, uint64(1), e.Tick)
	assert.Equal(t, uint64(1), e.System.Tick())
}

func TestRunTicks(t *testing.T) {
	e := testEngine(t)
	var observed []uint64
	e.OnTick = func(tick uint64) { observed = append(observed, tick) }
	e.RunTicks(5)

	assert.Equal(t, uint64(5), e.Tick)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, observed)
	assert.Equal(t, 1, e.System.FactionCount(), "species stats flow through the step")
}
