package world

import "fmt"

// Grid holds the complete tile state as parallel row-major fields indexed by
// y*Width+x. The civilization layer reads all fields and mutates only
// Fertility (foraging); world genesis may rewrite the climate fields once at
// startup.
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Seed   uint32 `json:"seed"`
	Tick   uint64 `json:"tick"`

	Tiles        []byte `json:"tiles"`         // Biome values 0..14
	Temperature  []byte `json:"temperature"`   // 0..255
	Humidity     []byte `json:"humidity"`      // 0..255
	Fertility    []byte `json:"fertility"`     // 0..255
	Hazard       []byte `json:"hazard"`        // 0..255
	PlantBiomass []byte `json:"plant_biomass"` // 0..255
}

// NewGrid creates an empty grid with all fields allocated.
func NewGrid(width, height int, seed uint32) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	n := width * height
	return &Grid{
		Width:        width,
		Height:       height,
		Seed:         seed,
		Tiles:        make([]byte, n),
		Temperature:  make([]byte, n),
		Humidity:     make([]byte, n),
		Fertility:    make([]byte, n),
		Hazard:       make([]byte, n),
		PlantBiomass: make([]byte, n),
	}, nil
}

// Index converts coordinates to the row-major field index.
func (g *Grid) Index(x, y int) int { return y*g.Width + x }

// InBounds reports whether (x,y) is inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// BiomeAt returns the biome at (x,y). Out of bounds returns deep water.
func (g *Grid) BiomeAt(x, y int) Biome {
	if !g.InBounds(x, y) {
		return BiomeDeepWater
	}
	return Biome(g.Tiles[g.Index(x, y)])
}

// FertilityAt returns normalized fertility in [0,1].
func (g *Grid) FertilityAt(x, y int) float64 {
	if !g.InBounds(x, y) {
		return 0
	}
	return float64(g.Fertility[g.Index(x, y)]) / 255
}

// HazardAt returns normalized hazard in [0,1].
func (g *Grid) HazardAt(x, y int) float64 {
	if !g.InBounds(x, y) {
		return 0
	}
	return float64(g.Hazard[g.Index(x, y)]) / 255
}

// HumidityAt returns normalized humidity in [0,1].
func (g *Grid) HumidityAt(x, y int) float64 {
	if !g.InBounds(x, y) {
		return 0
	}
	return float64(g.Humidity[g.Index(x, y)]) / 255
}

// TemperatureAt returns normalized temperature in [0,1].
func (g *Grid) TemperatureAt(x, y int) float64 {
	if !g.InBounds(x, y) {
		return 0
	}
	return float64(g.Temperature[g.Index(x, y)]) / 255
}

// IsHabitable reports whether an agent may stand on (x,y).
func (g *Grid) IsHabitable(x, y int) bool {
	return g.InBounds(x, y) && g.BiomeAt(x, y).IsLand()
}

// NearWater reports whether any 4-neighbor of (x,y) is a water tile.
func (g *Grid) NearWater(x, y int) bool {
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if g.InBounds(x+d[0], y+d[1]) && g.BiomeAt(x+d[0], y+d[1]).IsWater() {
			return true
		}
	}
	return false
}

// BiomeCounts tallies tiles per biome.
func (g *Grid) BiomeCounts() map[Biome]int {
	counts := make(map[Biome]int)
	for _, t := range g.Tiles {
		counts[Biome(t)]++
	}
	return counts
}

// RockyRatio returns the fraction of tiles that are rocky.
func (g *Grid) RockyRatio() float64 {
	if len(g.Tiles) == 0 {
		return 0
	}
	rocky := 0
	for _, t := range g.Tiles {
		if Biome(t).IsRocky() {
			rocky++
		}
	}
	return float64(rocky) / float64(len(g.Tiles))
}

// HasBiome reports whether at least one tile of the biome is present.
func (g *Grid) HasBiome(b Biome) bool {
	for _, t := range g.Tiles {
		if Biome(t) == b {
			return true
		}
	}
	return false
}

// PresentBiomes returns the set of biomes present in the grid.
func (g *Grid) PresentBiomes() map[Biome]bool {
	present := make(map[Biome]bool)
	for _, t := range g.Tiles {
		present[Biome(t)] = true
	}
	return present
}

// State is the plain-data export of a grid.
type State struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Seed         uint32 `json:"seed"`
	Tick         uint64 `json:"tick"`
	Tiles        []int  `json:"tiles"`
	Temperature  []int  `json:"temperature"`
	Humidity     []int  `json:"humidity"`
	Fertility    []int  `json:"fertility"`
	Hazard       []int  `json:"hazard"`
	PlantBiomass []int  `json:"plant_biomass"`
}

// ExportState returns a deep plain-data copy of the grid.
func (g *Grid) ExportState() State {
	return State{
		Width:        g.Width,
		Height:       g.Height,
		Seed:         g.Seed,
		Tick:         g.Tick,
		Tiles:        bytesToInts(g.Tiles),
		Temperature:  bytesToInts(g.Temperature),
		Humidity:     bytesToInts(g.Humidity),
		Fertility:    bytesToInts(g.Fertility),
		Hazard:       bytesToInts(g.Hazard),
		PlantBiomass: bytesToInts(g.PlantBiomass),
	}
}

// HydrateState restores a grid from exported state. The state must describe
// a consistent grid; a corrupt layout is refused.
func HydrateState(st State) (*Grid, error) {
	n := st.Width * st.Height
	if st.Width <= 0 || st.Height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", st.Width, st.Height)
	}
	for name, field := range map[string][]int{
		"tiles": st.Tiles, "temperature": st.Temperature, "humidity": st.Humidity,
		"fertility": st.Fertility, "hazard": st.Hazard, "plant_biomass": st.PlantBiomass,
	} {
		if len(field) != n {
			return nil, fmt.Errorf("grid field %s has %d entries, want %d", name, len(field), n)
		}
	}
	g, err := NewGrid(st.Width, st.Height, st.Seed)
	if err != nil {
		return nil, err
	}
	g.Tick = st.Tick
	intsToBytes(st.Tiles, g.Tiles)
	intsToBytes(st.Temperature, g.Temperature)
	intsToBytes(st.Humidity, g.Humidity)
	intsToBytes(st.Fertility, g.Fertility)
	intsToBytes(st.Hazard, g.Hazard)
	intsToBytes(st.PlantBiomass, g.PlantBiomass)
	return g, nil
}

func bytesToInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func intsToBytes(src []int, dst []byte) {
	for i, v := range src {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		dst[i] = byte(v)
	}
}
