package genesis

import (
	"log/slog"

	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// WorldParams are the initial world parameters derived from the chosen
// genome.
type WorldParams struct {
	Genome                Genome  `json:"genome"`
	TreeDensityMultiplier float64 `json:"tree_density_multiplier"`
	PlantGrowthRate       float64 `json:"plant_growth_rate"`
	HazardRecoveryRate    float64 `json:"hazard_recovery_rate"`
	PredatorEnableTick    int     `json:"predator_enable_tick"`
	EventRate             float64 `json:"event_rate"`
	ClimateVariance       float64 `json:"climate_variance"`
}

// DefaultWorldParams returns the parameters used when the tuner is disabled.
func DefaultWorldParams() WorldParams {
	return WorldParams{
		TreeDensityMultiplier: 1.0,
		PlantGrowthRate:       0.5,
		HazardRecoveryRate:    0.3,
		PredatorEnableTick:    180,
		EventRate:             0.3,
		ClimateVariance:       0.4,
	}
}

// WorldGenesis orchestrates the tuner and maps the winning genome onto the
// grid and the engine parameters.
type WorldGenesis struct {
	cfg TunerConfig
}

// NewWorldGenesis prepares a genesis run.
func NewWorldGenesis(cfg TunerConfig) *WorldGenesis {
	return &WorldGenesis{cfg: cfg}
}

// Run executes the tuner (when enabled) and returns the derived world
// parameters. With the tuner disabled the defaults come back unchanged.
func (wg *WorldGenesis) Run(seed uint32) (WorldParams, error) {
	if !wg.cfg.Enabled {
		return DefaultWorldParams(), nil
	}
	tuner, err := NewEvoTuner(wg.cfg, seed)
	if err != nil {
		return WorldParams{}, err
	}
	_, best := tuner.Run()
	slog.Info("world genesis complete",
		"survival", best.Scores[ObjSurvival],
		"biodiversity", best.Scores[ObjBiodiversity],
		"stability", best.Scores[ObjStability],
	)
	return ParamsFromGenome(best.Genome), nil
}

// ParamsFromGenome maps a genome into world parameters.
func ParamsFromGenome(g Genome) WorldParams {
	return WorldParams{
		Genome:                g,
		TreeDensityMultiplier: g[GeneTreeDensity],
		PlantGrowthRate:       g[GenePlantBaseGrowth],
		HazardRecoveryRate:    g[GeneRecoveryRate],
		PredatorEnableTick:    int(g[GenePredatorEnableTick]),
		EventRate:             g[GeneEventRate],
		ClimateVariance:       g[GeneClimateVariance],
	}
}

// Apply writes the genome's climate bias into the grid fields. This is the
// only moment the engine mutates temperature, humidity or hazard.
func (p WorldParams) Apply(g *world.Grid) {
	// Climate variance widens the temperature/humidity spread around their
	// midpoints; recovery rate softens hazard.
	spread := 0.85 + p.ClimateVariance*0.3
	hazardScale := 1.0 - p.HazardRecoveryRate*0.25
	for i := range g.Tiles {
		g.Temperature[i] = rescaleByte(g.Temperature[i], spread)
		g.Humidity[i] = rescaleByte(g.Humidity[i], spread)
		g.Hazard[i] = byte(float64(g.Hazard[i]) * hazardScale)
	}
}

// rescaleByte stretches a byte value around 128 by the given factor.
func rescaleByte(v byte, factor float64) byte {
	f := 128 + (float64(v)-128)*factor
	if f < 0 {
		f = 0
	}
	if f > 255 {
		f = 255
	}
	return byte(f)
}
