package territory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiddenPCOfficial/biotica/internal/structures"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

func flatGrid(t *testing.T, w, h int) *world.Grid {
	t.Helper()
	g, err := world.NewGrid(w, h, 1)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = byte(world.BiomeGrassland)
	}
	return g
}

func TestVersionIncrementsEveryStep(t *testing.T) {
	g := flatGrid(t, 8, 8)
	sys := NewSystem(8, 8)
	require.Equal(t, uint64(0), sys.Version())
	for i := 1; i <= 5; i++ {
		sys.Step(g, nil)
		assert.Equal(t, uint64(i), sys.Version())
	}
}

func TestHomeBlobClaimsGround(t *testing.T) {
	g := flatGrid(t, 16, 16)
	sys := NewSystem(16, 16)
	sys.Step(g, []FactionInput{{ID: "f1", HomeX: 8, HomeY: 8}})

	marker := sys.Marker("f1")
	require.Equal(t, uint16(1), marker)
	assert.Equal(t, marker, sys.OwnerMap()[8*16+8], "home tile owned")
	assert.Greater(t, sys.ClaimedCount("f1"), 0)
}

func TestOwnerMapMatchesClaims(t *testing.T) {
	g := flatGrid(t, 16, 16)
	sys := NewSystem(16, 16)
	inputs := []FactionInput{
		{ID: "f1", HomeX: 3, HomeY: 3},
		{ID: "f2", HomeX: 12, HomeY: 12},
	}
	for i := 0; i < 6; i++ {
		sys.Step(g, inputs)
	}

	// claimedCount(f) equals the number of set claim flags, and a claimed
	// tile is always owned by that faction's marker.
	for _, id := range []string{"f1", "f2"} {
		claimed := sys.ClaimedTiles(id)
		marker := sys.Marker(id)
		count := 0
		for i, c := range claimed {
			if c == 1 {
				count++
				assert.Equal(t, marker, sys.OwnerMap()[i], "claimed tile %d owned by someone else", i)
			}
		}
		assert.Equal(t, count, sys.ClaimedCount(id))
	}
}

func TestBordersBetweenFactions(t *testing.T) {
	g := flatGrid(t, 20, 20)
	sys := NewSystem(20, 20)
	inputs := []FactionInput{
		{ID: "f1", HomeX: 5, HomeY: 10},
		{ID: "f2", HomeX: 14, HomeY: 10},
	}
	for i := 0; i < 8; i++ {
		sys.Step(g, inputs)
	}

	borders := 0
	for _, b := range sys.BorderMap() {
		if b == 1 {
			borders++
		}
	}
	assert.Greater(t, borders, 0, "two adjacent territories produce borders")
}

func TestStructureAndAgentStamps(t *testing.T) {
	g := flatGrid(t, 16, 16)
	sys := NewSystem(16, 16)
	sys.Step(g, []FactionInput{{
		ID: "f1", HomeX: 2, HomeY: 2,
		Structures: []*structures.Structure{{Type: structures.TypeTemple, X: 12, Y: 12, Completed: true}},
		Agents:     []AgentStamp{{X: 8, Y: 8, Role: "Leader", Energy: 80}},
	}})

	infl := sys.Influence("f1")
	require.NotNil(t, infl)
	assert.Greater(t, infl[12*16+12], float32(0), "temple projects influence")
	assert.Greater(t, infl[8*16+8], float32(0), "agent projects influence")
}

func TestDecayErasesAbandonedInfluence(t *testing.T) {
	g := flatGrid(t, 12, 12)
	sys := NewSystem(12, 12)
	sys.Step(g, []FactionInput{{ID: "f1", HomeX: 6, HomeY: 6}})
	start := sys.Influence("f1")[6*12+6]

	// The faction stops contributing entirely.
	for i := 0; i < 200; i++ {
		sys.Step(g, nil)
	}
	assert.Less(t, sys.Influence("f1")[6*12+6], start*0.05)
}

func TestBuildSummaryBounded(t *testing.T) {
	g := flatGrid(t, 16, 16)
	sys := NewSystem(16, 16)
	for i := 0; i < 4; i++ {
		sys.Step(g, []FactionInput{{ID: "f1", HomeX: 8, HomeY: 8}})
	}
	cells := sys.BuildSummary(1, 10)
	assert.LessOrEqual(t, len(cells), 10)
	assert.NotEmpty(t, cells)
}

func TestStateRoundTrip(t *testing.T) {
	g := flatGrid(t, 10, 10)
	sys := NewSystem(10, 10)
	for i := 0; i < 5; i++ {
		sys.Step(g, []FactionInput{
			{ID: "f1", HomeX: 2, HomeY: 2},
			{ID: "f2", HomeX: 7, HomeY: 7},
		})
	}

	exported := sys.ExportState()
	restored := NewSystem(10, 10)
	require.NoError(t, restored.HydrateState(exported))
	assert.Equal(t, exported, restored.ExportState())

	// A step after restore behaves like a step on the original.
	sys.Step(g, nil)
	restored.Step(g, nil)
	assert.Equal(t, sys.ExportState(), restored.ExportState())
}

func TestHydrateRejectsCorruptState(t *testing.T) {
	sys := NewSystem(10, 10)
	err := sys.HydrateState(State{Width: 4, Height: 4, OwnerMap: make([]uint16, 3)})
	assert.Error(t, err)
}
