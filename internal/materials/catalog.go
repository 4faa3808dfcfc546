// Package materials provides the immutable material catalog derived from the
// world's biome profile at startup.
package materials

import (
	"fmt"
	"sort"

	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// Category separates naturally occurring materials from refined ones.
type Category string

const (
	CategoryRaw       Category = "raw"
	CategoryProcessed Category = "processed"
)

// Material is one immutable catalog entry.
type Material struct {
	ID               string        `json:"id"`
	Category         Category      `json:"category"`
	Hardness         float64       `json:"hardness"`
	HeatResistance   float64       `json:"heat_resistance"`
	LavaResistance   float64       `json:"lava_resistance"`
	HazardResistance float64       `json:"hazard_resistance"`
	Rarity           float64       `json:"rarity"` // 0 common .. 1 rare
	AllowedBiomes    []world.Biome `json:"allowed_biomes"`
}

// Catalog is a frozen, id-sorted list of materials.
type Catalog struct {
	entries []Material
	byID    map[string]int
}

// NewCatalog freezes a list of materials. Duplicate ids are dropped (first
// wins); an empty result is a configuration error.
func NewCatalog(entries []Material) (*Catalog, error) {
	byID := make(map[string]int)
	kept := make([]Material, 0, len(entries))
	for _, m := range entries {
		if _, dup := byID[m.ID]; dup {
			continue
		}
		byID[m.ID] = len(kept)
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("material catalog must contain at least one material")
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })
	byID = make(map[string]int, len(kept))
	for i, m := range kept {
		byID[m.ID] = i
	}
	return &Catalog{entries: kept, byID: byID}, nil
}

// Get returns the material with the given id.
func (c *Catalog) Get(id string) (Material, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Material{}, false
	}
	return c.entries[i], true
}

// Has reports whether the catalog contains the id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns a copy of the entries in id order.
func (c *Catalog) All() []Material {
	out := make([]Material, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of materials.
func (c *Catalog) Len() int { return len(c.entries) }
