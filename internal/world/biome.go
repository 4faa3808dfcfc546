// Package world provides the row-major tile grid the simulation reads, the
// biome taxonomy, and the noise-based generator that produces the initial
// terrain artifact.
package world

// Biome enumerates tile types. Values are part of the serialized format and
// must not be reordered.
type Biome uint8

const (
	BiomeDeepWater Biome = iota
	BiomeShallowWater
	BiomeBeach
	BiomeGrassland
	BiomeForest
	BiomeJungle
	BiomeTaiga
	BiomeSwamp
	BiomeDesert
	BiomeSavanna
	BiomeHills
	BiomeMountain
	BiomeRock
	BiomeLava
	BiomeScorched
)

// NumBiomes is the total number of biome values.
const NumBiomes = 15

var biomeNames = [NumBiomes]string{
	"deep_water", "shallow_water", "beach", "grassland", "forest",
	"jungle", "taiga", "swamp", "desert", "savanna",
	"hills", "mountain", "rock", "lava", "scorched",
}

// Name returns the stable string name of the biome.
func (b Biome) Name() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return "unknown"
}

// IsWater reports whether the biome is a water tile.
func (b Biome) IsWater() bool {
	return b == BiomeDeepWater || b == BiomeShallowWater
}

// IsLand reports whether creatures and structures can exist on the biome.
func (b Biome) IsLand() bool {
	return !b.IsWater() && b != BiomeLava
}

// IsRocky reports whether the biome counts toward the rocky-tile ratio used
// by the material catalog and vein placement.
func (b Biome) IsRocky() bool {
	switch b {
	case BiomeHills, BiomeMountain, BiomeRock, BiomeScorched:
		return true
	}
	return false
}

// IsElevated reports whether the biome satisfies watch-tower placement.
func (b Biome) IsElevated() bool { return b.IsRocky() }

// IsClayLike reports whether clay patches can appear on the biome.
func (b Biome) IsClayLike() bool {
	return b == BiomeSwamp || b == BiomeBeach
}

// IsForestLike reports the forest-type biomes that carry tree nodes.
// Forest/jungle are the dense class; taiga/savanna/swamp the sparse class.
// Grassland is not forest-like, though tree nodes are also placed on it.
func (b Biome) IsForestLike() bool {
	switch b {
	case BiomeForest, BiomeJungle, BiomeTaiga, BiomeSavanna, BiomeSwamp:
		return true
	}
	return false
}
