package materials

import (
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// archetype describes a material template before the world profile filters it.
type archetype struct {
	Material
	biomes []world.Biome // Archetype habitat; intersected with present biomes
}

// IronThreshold is the rocky-tile ratio below which iron never enters the
// catalog.
const IronThreshold = 0.04

// GenerateCatalog builds the material catalog from the grid's biome profile.
// Always emits wood, stone, clay and charcoal; iron only on sufficiently
// rocky worlds; sand on beach/desert worlds; obsidian where lava or scorched
// ground exists.
func GenerateCatalog(g *world.Grid) (*Catalog, error) {
	present := g.PresentBiomes()
	rocky := g.RockyRatio()

	base := []archetype{
		{
			Material: Material{ID: "wood", Category: CategoryRaw, Hardness: 0.3, HeatResistance: 0.1, HazardResistance: 0.2, Rarity: 0.1},
			biomes:   []world.Biome{world.BiomeForest, world.BiomeJungle, world.BiomeTaiga, world.BiomeSavanna, world.BiomeSwamp, world.BiomeGrassland},
		},
		{
			Material: Material{ID: "stone", Category: CategoryRaw, Hardness: 0.7, HeatResistance: 0.6, LavaResistance: 0.2, HazardResistance: 0.5, Rarity: 0.15},
			biomes:   []world.Biome{world.BiomeHills, world.BiomeMountain, world.BiomeRock, world.BiomeScorched, world.BiomeGrassland},
		},
		{
			Material: Material{ID: "clay", Category: CategoryRaw, Hardness: 0.2, HeatResistance: 0.4, HazardResistance: 0.1, Rarity: 0.2},
			biomes:   []world.Biome{world.BiomeSwamp, world.BiomeBeach, world.BiomeShallowWater},
		},
		{
			Material: Material{ID: "charcoal", Category: CategoryProcessed, Hardness: 0.25, HeatResistance: 0.8, HazardResistance: 0.2, Rarity: 0.3},
			biomes:   []world.Biome{world.BiomeForest, world.BiomeJungle, world.BiomeGrassland},
		},
	}

	if rocky >= IronThreshold {
		base = append(base,
			archetype{
				Material: Material{ID: "iron_ore", Category: CategoryRaw, Hardness: 0.85, HeatResistance: 0.7, LavaResistance: 0.3, HazardResistance: 0.6, Rarity: 0.55},
				biomes:   []world.Biome{world.BiomeHills, world.BiomeMountain, world.BiomeRock},
			},
			archetype{
				Material: Material{ID: "iron_ingot", Category: CategoryProcessed, Hardness: 0.95, HeatResistance: 0.85, LavaResistance: 0.4, HazardResistance: 0.8, Rarity: 0.7},
				biomes:   []world.Biome{world.BiomeHills, world.BiomeMountain, world.BiomeRock},
			},
		)
	}

	if present[world.BiomeBeach] || present[world.BiomeDesert] {
		base = append(base, archetype{
			Material: Material{ID: "sand", Category: CategoryRaw, Hardness: 0.1, HeatResistance: 0.5, HazardResistance: 0.05, Rarity: 0.1},
			biomes:   []world.Biome{world.BiomeBeach, world.BiomeDesert},
		})
	}

	if present[world.BiomeLava] || present[world.BiomeScorched] {
		base = append(base, archetype{
			Material: Material{ID: "obsidian", Category: CategoryRaw, Hardness: 0.9, HeatResistance: 0.95, LavaResistance: 0.9, HazardResistance: 0.7, Rarity: 0.8},
			biomes:   []world.Biome{world.BiomeLava, world.BiomeScorched},
		})
	}

	entries := make([]Material, 0, len(base))
	for _, a := range base {
		m := a.Material
		m.AllowedBiomes = intersectBiomes(a.biomes, present)
		entries = append(entries, m)
	}
	return NewCatalog(entries)
}

// intersectBiomes keeps the archetype biomes present in the world, falling
// back to grassland when the intersection is empty.
func intersectBiomes(want []world.Biome, present map[world.Biome]bool) []world.Biome {
	out := make([]world.Biome, 0, len(want))
	for _, b := range want {
		if present[b] {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		out = append(out, world.BiomeGrassland)
	}
	return out
}
