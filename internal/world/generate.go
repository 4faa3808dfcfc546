// World generation using layered simplex noise. Produces the terrain input
// artifact the engine consumes: biome per tile plus climate byte fields.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Width       int
	Height      int
	Seed        uint32
	SeaLevel    float64 // Elevation threshold for water
	MountainLvl float64 // Elevation threshold for mountains
	LavaChance  float64 // Fraction of scorched peaks that become lava
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:       96,
		Height:      96,
		Seed:        1,
		SeaLevel:    0.30,
		MountainLvl: 0.74,
		LavaChance:  0.12,
	}
}

// Generate creates a grid with terrain and climate fields derived from
// layered noise. The same seed always yields the same grid.
func Generate(cfg GenConfig) *Grid {
	g, err := NewGrid(cfg.Width, cfg.Height, cfg.Seed)
	if err != nil {
		panic(err) // config validated by the caller; dimensions from DefaultGenConfig are sane
	}

	elevNoise := opensimplex.NewNormalized(int64(cfg.Seed))
	rainNoise := opensimplex.NewNormalized(int64(cfg.Seed) + 1)
	tempNoise := opensimplex.NewNormalized(int64(cfg.Seed) + 2)
	hazNoise := opensimplex.NewNormalized(int64(cfg.Seed) + 3)

	halfW := float64(cfg.Width) / 2
	halfH := float64(cfg.Height) / 2

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx, fy := float64(x), float64(y)

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.035, 0.5)
			rain := octaveNoise(rainNoise, fx, fy, 3, 0.025, 0.5)
			temp := octaveNoise(tempNoise, fx, fy, 3, 0.02, 0.5)
			haz := octaveNoise(hazNoise, fx, fy, 2, 0.05, 0.5)

			// Continental shaping: ocean border at the edges.
			dx := (fx - halfW) / halfW
			dy := (fy - halfH) / halfH
			dist := math.Sqrt(dx*dx + dy*dy)
			falloff := 1.0 - math.Pow(dist, 3.2)
			if falloff < 0 {
				falloff = 0
			}
			elev *= falloff

			// Latitude gradient: colder toward the top and on peaks.
			temp = temp*0.55 + (1.0-math.Abs(dy))*0.35 + (1.0-elev)*0.10

			biome := deriveBiome(elev, rain, temp, haz, cfg)

			i := g.Index(x, y)
			g.Tiles[i] = byte(biome)
			g.Temperature[i] = clampByte(temp * 255)
			g.Humidity[i] = clampByte(rain * 255)
			g.Hazard[i] = hazardFor(biome, haz)
			g.Fertility[i] = fertilityFor(biome, rain, temp)
			g.PlantBiomass[i] = biomassFor(biome, rain)
		}
	}

	return g
}

func deriveBiome(elev, rain, temp, haz float64, cfg GenConfig) Biome {
	switch {
	case elev < cfg.SeaLevel*0.7:
		return BiomeDeepWater
	case elev < cfg.SeaLevel:
		return BiomeShallowWater
	case elev < cfg.SeaLevel+0.035:
		return BiomeBeach
	case elev > cfg.MountainLvl:
		if temp > 0.8 && haz > 1.0-cfg.LavaChance {
			return BiomeLava
		}
		if haz > 0.8 {
			return BiomeScorched
		}
		if elev > cfg.MountainLvl+0.1 {
			return BiomeMountain
		}
		return BiomeRock
	case elev > cfg.MountainLvl-0.12:
		return BiomeHills
	case temp < 0.28:
		return BiomeTaiga
	case rain < 0.22 && temp > 0.55:
		return BiomeDesert
	case rain > 0.72 && temp > 0.6:
		return BiomeJungle
	case rain > 0.7:
		return BiomeSwamp
	case rain > 0.45:
		return BiomeForest
	case temp > 0.62 && rain < 0.4:
		return BiomeSavanna
	default:
		return BiomeGrassland
	}
}

func hazardFor(b Biome, haz float64) byte {
	base := haz * 0.3
	switch b {
	case BiomeLava:
		base = 0.9 + haz*0.1
	case BiomeScorched:
		base = 0.6 + haz*0.3
	case BiomeMountain:
		base = 0.35 + haz*0.3
	case BiomeSwamp, BiomeDesert:
		base = 0.25 + haz*0.25
	}
	return clampByte(base * 255)
}

func fertilityFor(b Biome, rain, temp float64) byte {
	var f float64
	switch b {
	case BiomeGrassland:
		f = 0.55 + rain*0.35
	case BiomeForest, BiomeJungle:
		f = 0.45 + rain*0.35
	case BiomeSwamp:
		f = 0.4 + rain*0.2
	case BiomeSavanna, BiomeTaiga:
		f = 0.3 + rain*0.2
	case BiomeBeach, BiomeHills:
		f = 0.2 + rain*0.15
	case BiomeDesert, BiomeRock:
		f = 0.05 + rain*0.1
	default:
		f = 0
	}
	return clampByte(f * 255)
}

func biomassFor(b Biome, rain float64) byte {
	var f float64
	switch b {
	case BiomeJungle:
		f = 0.75 + rain*0.25
	case BiomeForest:
		f = 0.6 + rain*0.3
	case BiomeTaiga, BiomeSwamp:
		f = 0.45 + rain*0.25
	case BiomeGrassland, BiomeSavanna:
		f = 0.35 + rain*0.25
	case BiomeBeach, BiomeHills:
		f = 0.15
	default:
		f = 0
	}
	return clampByte(f * 255)
}

// octaveNoise sums several noise octaves with decreasing amplitude.
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, freq, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}
	return total / maxValue
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
