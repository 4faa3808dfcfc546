// Package genesis provides the evolutionary world tuner: a compact headless
// ecosystem model, a multi-objective NSGA-II optimizer over its genomes, and
// the mapping of the chosen genome into initial world parameters.
package genesis

import "github.com/HiddenPCOfficial/biotica/internal/rng"

// Gene indices into a Genome.
const (
	GenePlantBaseGrowth = iota
	GenePlantDecay
	GeneHerbivoreMetabolism
	GeneScavengerEfficiency
	GenePredatorPressure
	GenePredatorEnableTick
	GeneEventRate
	GeneClimateVariance
	GeneRecoveryRate
	GeneTreeDensity
	NumGenes
)

// Genome is one candidate parameter vector.
type Genome [NumGenes]float64

// geneSpec bounds one gene.
type geneSpec struct {
	name     string
	min, max float64
	integer  bool
}

var geneSpecs = [NumGenes]geneSpec{
	{name: "plant_base_growth", min: 0.1, max: 1.2},
	{name: "plant_decay", min: 0.02, max: 0.6},
	{name: "herbivore_metabolism", min: 0.1, max: 1.0},
	{name: "scavenger_efficiency", min: 0.05, max: 0.8},
	{name: "predator_pressure", min: 0.05, max: 0.9},
	{name: "predator_enable_tick", min: 0, max: 600, integer: true},
	{name: "event_rate", min: 0, max: 1},
	{name: "climate_variance", min: 0, max: 1},
	{name: "recovery_rate", min: 0.05, max: 0.9},
	{name: "tree_density", min: 0.6, max: 2.1},
}

// GeneName returns the stable gene name for an index.
func GeneName(i int) string {
	if i < 0 || i >= NumGenes {
		return "unknown"
	}
	return geneSpecs[i].name
}

// RandomGenome samples a genome uniformly inside the gene bounds.
func RandomGenome(r *rng.Rng) Genome {
	var g Genome
	for i := range g {
		g[i] = r.RangeFloat(geneSpecs[i].min, geneSpecs[i].max)
		if geneSpecs[i].integer {
			g[i] = float64(int(g[i]))
		}
	}
	return g
}

// ClampGene forces a value into its gene bounds, rounding integer genes.
func ClampGene(i int, v float64) float64 {
	spec := geneSpecs[i]
	if v < spec.min {
		v = spec.min
	}
	if v > spec.max {
		v = spec.max
	}
	if spec.integer {
		v = float64(int(v + 0.5))
	}
	return v
}

// Span returns the range width of a gene.
func Span(i int) float64 { return geneSpecs[i].max - geneSpecs[i].min }
