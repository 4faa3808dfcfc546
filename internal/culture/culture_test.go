package culture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

func paramsInRange(t *testing.T, p *Params) {
	t.Helper()
	for name, v := range map[string]float64{
		"collectivism": p.Collectivism, "aggression": p.Aggression,
		"spirituality": p.Spirituality, "curiosity": p.Curiosity,
		"tradition": p.Tradition, "trade_affinity": p.TradeAffinity,
		"taboo_hazard": p.TabooHazard, "hierarchy": p.HierarchyLevel,
		"adaptation": p.EnvironmentalAdaptation, "tech": p.TechOrientation,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}
}

func TestParamsStayBounded(t *testing.T) {
	p := &Params{}
	extreme := Pressures{
		ClimateStress: 5, Scarcity: 1, ExternalPressure: 1,
		DisasterPressure: 1, WarPressure: 1, TerritoryClaimRatio: 1,
	}
	for i := 0; i < 500; i++ {
		UpdateParams(p, extreme)
		paramsInRange(t, p)
	}
}

func TestSmoothingIsGradual(t *testing.T) {
	p := &Params{Aggression: 0.1}
	UpdateParams(p, Pressures{WarPressure: 1, ExternalPressure: 1})
	assert.Greater(t, p.Aggression, 0.1)
	assert.Less(t, p.Aggression, 0.2, "one update moves at most alpha of the gap")
}

func TestStrategyPriorityOrder(t *testing.T) {
	cases := []struct {
		name string
		p    Params
		pr   Pressures
		want Strategy
	}{
		{"offensive wins first", Params{Aggression: 0.7, Collectivism: 0.8, Curiosity: 0.8}, Pressures{WarPressure: 0.7, DisasterPressure: 0.7, Scarcity: 0.6}, StrategyOffensive},
		{"migration before defensive", Params{Aggression: 0.2, Collectivism: 0.8}, Pressures{DisasterPressure: 0.6, Scarcity: 0.5}, StrategyMigration},
		{"defensive", Params{Collectivism: 0.7, Aggression: 0.3}, Pressures{}, StrategyDefensive},
		{"nomadic", Params{Curiosity: 0.7, Aggression: 0.5}, Pressures{Scarcity: 0.6}, StrategyNomadic},
		{"balanced fallback", Params{}, Pressures{}, StrategyBalanced},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SelectStrategy(&tc.p, tc.pr), tc.name)
	}
}

func TestLiteracyAdvancesOneStep(t *testing.T) {
	assert.Equal(t, 1, AdvanceLiteracy(0, 0.5), "desired floor(0.5*6)=3 still advances one step")
	assert.Equal(t, 2, AdvanceLiteracy(1, 0.5))
	assert.Equal(t, 3, AdvanceLiteracy(3, 0.5), "no advance when desired not above current")
	assert.Equal(t, 5, AdvanceLiteracy(5, 1), "capped at 5")
}

func TestSymbolCountGrowsWithLiteracy(t *testing.T) {
	assert.Equal(t, 4, TargetSymbolCount(0))
	assert.Equal(t, 19, TargetSymbolCount(5))
}

func TestClimateSampleAveraging(t *testing.T) {
	g, err := world.NewGrid(16, 16, 1)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Fertility[i] = 255
		g.Hazard[i] = 0
		g.Humidity[i] = 128
		g.Temperature[i] = 128
	}
	s := SampleClimate(g, 8, 8)
	assert.InDelta(t, 1.0, s.Fertility, 0.01)
	assert.InDelta(t, 0.0, s.Hazard, 0.01)
	assert.InDelta(t, 0.5, s.Humidity, 0.02)
}

func TestRelocationRequiresDistance(t *testing.T) {
	g, err := world.NewGrid(16, 16, 1)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = byte(world.BiomeGrassland)
		g.Fertility[i] = 100
	}
	// A clearly better tile far from home.
	g.Fertility[g.Index(14, 14)] = 255

	x, y, ok := RelocationCandidate(g, [][2]int{{14, 14}, {3, 3}}, 2, 2)
	assert.True(t, ok)
	assert.Equal(t, 14, x)
	assert.Equal(t, 14, y)

	// Candidates near home never trigger a move.
	_, _, ok = RelocationCandidate(g, [][2]int{{3, 3}}, 2, 2)
	assert.False(t, ok)
}

func TestShouldRelocateGates(t *testing.T) {
	assert.False(t, ShouldRelocate(100, 0, Pressures{DisasterPressure: 1}), "cooldown not elapsed")
	assert.True(t, ShouldRelocate(1000, 0, Pressures{DisasterPressure: 0.7}))
	assert.True(t, ShouldRelocate(1000, 0, Pressures{TerritoryClaimRatio: 0.1}))
	assert.False(t, ShouldRelocate(1000, 0, Pressures{DisasterPressure: 0.5, TerritoryClaimRatio: 0.5}))
}

func TestEthnicityEmergenceGates(t *testing.T) {
	sys := NewEthnicitySystem()
	base := EmergenceInput{
		FactionID:         "f1",
		DominantSpeciesID: "sp-a",
		DominantCount:     20,
		FactionAgeTicks:   400,
		Stress:            0.9,
		Params:            &Params{Aggression: 0.9, TradeAffinity: 0.1, Collectivism: 0.9, Curiosity: 0.1},
	}
	for i := 0; i < 20; i++ {
		base.MemberHomeDistances = append(base.MemberHomeDistances, 30)
	}

	// Too few members: never emerges.
	small := base
	small.DominantCount = 10
	r := rng.New(1)
	for i := 0; i < 200; i++ {
		eth, _ := sys.TryEmerge(small, 500, r)
		assert.Nil(t, eth)
	}

	// Too young: never emerges.
	young := base
	young.FactionAgeTicks = 100
	for i := 0; i < 200; i++ {
		eth, _ := sys.TryEmerge(young, 500, r)
		assert.Nil(t, eth)
	}

	// Divergent and mature: emerges eventually (probability ≤ 0.08).
	var emerged *Ethnicity
	var group int
	for i := 0; i < 2000 && emerged == nil; i++ {
		emerged, group = sys.TryEmerge(base, 500, r)
	}
	require.NotNil(t, emerged)
	assert.Equal(t, "sp-a", emerged.SpeciesID)
	assert.Equal(t, "f1", emerged.FactionID)
	assert.LessOrEqual(t, len(emerged.CulturalTraits), 5)
	assert.GreaterOrEqual(t, group, 4)
	assert.LessOrEqual(t, group, 18)
}

func TestReligionEmergenceGates(t *testing.T) {
	sys := NewReligionSystem()
	r := rng.New(2)
	in := ReligionInput{
		SpeciesID:         "sp-a",
		Spirituality:      0.7,
		SignificantEvents: 2,
		Members:           20,
		FactionAgeTicks:   300,
		Params:            &Params{Spirituality: 0.7, Tradition: 0.5},
	}

	low := in
	low.Spirituality = 0.5
	assert.Nil(t, sys.TryEmerge(low, 100, r))

	rel := sys.TryEmerge(in, 100, r)
	require.NotNil(t, rel)
	assert.GreaterOrEqual(t, len(rel.CoreBeliefs), 1)
	assert.LessOrEqual(t, len(rel.CoreBeliefs), 4)
	assert.Equal(t, "sp-a", rel.SpeciesID)
}

func TestReligionReuseSameSpecies(t *testing.T) {
	sys := NewReligionSystem()
	r := rng.New(3)
	in := ReligionInput{
		SpeciesID: "sp-a", Spirituality: 0.9, SignificantEvents: 1,
		Members: 20, FactionAgeTicks: 300, Params: &Params{},
	}
	first := sys.TryEmerge(in, 100, r)
	require.NotNil(t, first)

	reused := 0
	for i := 0; i < 100; i++ {
		rel := sys.TryEmerge(in, 200, r)
		if rel != nil && rel.ID == first.ID {
			reused++
		}
	}
	assert.Greater(t, reused, 20, "existing same-species religion is reused with probability 0.46")
}

func TestMarkSacredIsIdempotent(t *testing.T) {
	rel := &Religion{ID: "religion-1", SpeciesID: "sp-a"}
	rel.MarkSacred("sp-a")
	rel.MarkSacred("sp-b")
	rel.MarkSacred("sp-a")
	assert.Equal(t, []string{"sp-a", "sp-b"}, rel.SacredSpeciesIDs)
}

func TestIdentityLevelTarget(t *testing.T) {
	in := IdentityInput{Population: 140, Literacy: 5, TerritoryTiles: 240, Collectivism: 1}
	level := 0.0
	for i := 0; i < 2000; i++ {
		level = UpdateIdentityLevel(level, in)
	}
	assert.InDelta(t, 1.0, level, 0.02, "full inputs converge to the full target")
	assert.LessOrEqual(t, level, 1.0)
}

func TestIdentitySymbolFloor(t *testing.T) {
	_, ok := PickIdentitySymbol(0.2, 0)
	assert.False(t, ok)
	sym, ok := PickIdentitySymbol(0.3, 1)
	assert.True(t, ok)
	assert.NotEmpty(t, sym)
}

func TestNameEmergenceGate(t *testing.T) {
	ready := NameEmergenceInput{Population: 18, Literacy: 1, TerritoryTiles: 24, IdentityLevel: 0.25}
	assert.True(t, ShouldRequestName(ready))

	named := ready
	named.HasName = true
	assert.False(t, ShouldRequestName(named))

	small := ready
	small.Population = 17
	assert.False(t, ShouldRequestName(small))
}
