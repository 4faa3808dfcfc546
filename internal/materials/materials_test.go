package materials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiddenPCOfficial/biotica/internal/world"
)

func fillGrid(t *testing.T, width, height int, b world.Biome) *world.Grid {
	t.Helper()
	g, err := world.NewGrid(width, height, 1)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = byte(b)
	}
	return g
}

func TestEmptyCatalogRefused(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.Error(t, err)
}

func TestDuplicateIDsDropped(t *testing.T) {
	c, err := NewCatalog([]Material{
		{ID: "wood", Hardness: 0.3},
		{ID: "wood", Hardness: 0.9},
		{ID: "stone"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	m, ok := c.Get("wood")
	require.True(t, ok)
	assert.Equal(t, 0.3, m.Hardness, "first entry wins")
}

func TestCatalogSortedByID(t *testing.T) {
	c, err := NewCatalog([]Material{{ID: "zinc"}, {ID: "ash"}, {ID: "mud"}})
	require.NoError(t, err)
	all := c.All()
	assert.Equal(t, "ash", all[0].ID)
	assert.Equal(t, "mud", all[1].ID)
	assert.Equal(t, "zinc", all[2].ID)
}

func TestBaseSetAlwaysPresent(t *testing.T) {
	g := fillGrid(t, 8, 8, world.BiomeGrassland)
	c, err := GenerateCatalog(g)
	require.NoError(t, err)
	for _, id := range []string{"wood", "stone", "clay", "charcoal"} {
		assert.True(t, c.Has(id), "missing base material %s", id)
	}
}

func TestIronRequiresRockyRatio(t *testing.T) {
	g := fillGrid(t, 10, 10, world.BiomeGrassland)
	c, err := GenerateCatalog(g)
	require.NoError(t, err)
	assert.False(t, c.Has("iron_ore"))
	assert.False(t, c.Has("iron_ingot"))

	// Push the rocky ratio to exactly the 4% threshold.
	for i := 0; i < 4; i++ {
		g.Tiles[i] = byte(world.BiomeMountain)
	}
	c, err = GenerateCatalog(g)
	require.NoError(t, err)
	assert.True(t, c.Has("iron_ore"))
	assert.True(t, c.Has("iron_ingot"))
}

func TestObsidianOnLavaWorlds(t *testing.T) {
	g := fillGrid(t, 6, 6, world.BiomeGrassland)
	c, err := GenerateCatalog(g)
	require.NoError(t, err)
	assert.False(t, c.Has("obsidian"))

	g.Tiles[0] = byte(world.BiomeLava)
	c, err = GenerateCatalog(g)
	require.NoError(t, err)
	assert.True(t, c.Has("obsidian"))
}

func TestSandOnBeachOrDesert(t *testing.T) {
	g := fillGrid(t, 6, 6, world.BiomeDesert)
	c, err := GenerateCatalog(g)
	require.NoError(t, err)
	assert.True(t, c.Has("sand"))
}

func TestAllowedBiomesFallBackToGrassland(t *testing.T) {
	// A pure desert world has no clay-like biomes; clay falls back.
	g := fillGrid(t, 6, 6, world.BiomeDesert)
	c, err := GenerateCatalog(g)
	require.NoError(t, err)
	clay, ok := c.Get("clay")
	require.True(t, ok)
	assert.Equal(t, []world.Biome{world.BiomeGrassland}, clay.AllowedBiomes)
}
