package genesis

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

// TunerConfig controls one evolutionary search.
type TunerConfig struct {
	Enabled         bool             `json:"enabled" yaml:"enabled"`
	PopulationSize  int              `json:"population_size" yaml:"populationSize"` // 8..64
	Generations     int              `json:"generations" yaml:"generations"`        // 2..12
	SimTicks        int              `json:"sim_ticks" yaml:"simTicks"`             // 240..20000
	ValidationSeeds int              `json:"validation_seeds" yaml:"validationSeeds"` // 1..8
	MutationRate    float64          `json:"mutation_rate" yaml:"mutationRate"`
	CrossoverRate   float64          `json:"crossover_rate" yaml:"crossoverRate"`
	Weights         ObjectiveWeights `json:"objective_weights" yaml:"objectiveWeights"`
	Constraints     Constraints      `json:"constraints" yaml:"constraints"`
}

// DefaultTunerConfig returns a tuned-down default search.
func DefaultTunerConfig() TunerConfig {
	return TunerConfig{
		Enabled:         true,
		PopulationSize:  24,
		Generations:     6,
		SimTicks:        1200,
		ValidationSeeds: 3,
		MutationRate:    0.2,
		CrossoverRate:   0.8,
		Weights:         DefaultObjectiveWeights(),
		Constraints:     Constraints{MinSurvival: 0.3, MinBiodiversity: 0.2, MinResourceBalance: 0.2},
	}
}

// Validate checks the configured ranges.
func (c TunerConfig) Validate() error {
	if c.PopulationSize < 8 || c.PopulationSize > 64 {
		return fmt.Errorf("tuner population size %d outside [8,64]", c.PopulationSize)
	}
	if c.Generations < 2 || c.Generations > 12 {
		return fmt.Errorf("tuner generations %d outside [2,12]", c.Generations)
	}
	if c.SimTicks < 240 || c.SimTicks > 20000 {
		return fmt.Errorf("tuner sim ticks %d outside [240,20000]", c.SimTicks)
	}
	if c.ValidationSeeds < 1 || c.ValidationSeeds > 8 {
		return fmt.Errorf("tuner validation seeds %d outside [1,8]", c.ValidationSeeds)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("tuner mutation rate %v outside [0,1]", c.MutationRate)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("tuner crossover rate %v outside [0,1]", c.CrossoverRate)
	}
	return nil
}

// Candidate is one genome with its evaluated objectives and NSGA-II
// bookkeeping.
type Candidate struct {
	Genome   Genome  `json:"genome"`
	Scores   Scores  `json:"scores"`
	Rank     int     `json:"rank"`
	Crowding float64 `json:"crowding"`
}

// EvoTuner runs the NSGA-II search over headless evaluations.
type EvoTuner struct {
	cfg      TunerConfig
	rng      *rng.Rng
	baseSeed uint32
}

// NewEvoTuner validates the config and prepares a search.
func NewEvoTuner(cfg TunerConfig, seed uint32) (*EvoTuner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &EvoTuner{cfg: cfg, rng: rng.New(seed ^ 0x65766f74), baseSeed: seed}, nil
}

// Run executes the full search and returns the final population plus the
// selected best candidate.
func (t *EvoTuner) Run() ([]Candidate, Candidate) {
	pop := make([]Candidate, t.cfg.PopulationSize)
	for i := range pop {
		pop[i] = Candidate{Genome: RandomGenome(t.rng)}
	}
	t.evaluate(pop)

	for gen := 0; gen < t.cfg.Generations; gen++ {
		fronts := FastNonDominatedSort(pop)
		for _, front := range fronts {
			AssignCrowding(pop, front)
		}

		offspring := t.makeOffspring(pop, gen)
		t.evaluate(offspring)

		combined := append(append([]Candidate(nil), pop...), offspring...)
		pop = t.selectElite(combined)

		best := t.Best(pop)
		slog.Debug("tuner generation complete",
			"generation", gen,
			"best_weighted", fmt.Sprintf("%.4f", WeightedScore(best.Scores, t.cfg.Weights, t.cfg.Constraints)),
		)
	}

	// Final ranking pass so callers see consistent metadata.
	fronts := FastNonDominatedSort(pop)
	for _, front := range fronts {
		AssignCrowding(pop, front)
	}
	return pop, t.Best(pop)
}

// evaluate scores every candidate on the mixed validation seeds and averages.
func (t *EvoTuner) evaluate(pop []Candidate) {
	for i := range pop {
		var sum Scores
		for s := 0; s < t.cfg.ValidationSeeds; s++ {
			seed := t.baseSeed ^ (1000003 * uint32(s+1))
			sim := NewHeadlessSimulator(pop[i].Genome, t.cfg.SimTicks)
			scores := EvaluateObjectives(sim.Run(seed))
			for k := 0; k < NumObjectives; k++ {
				sum[k] += scores[k]
			}
		}
		for k := 0; k < NumObjectives; k++ {
			sum[k] /= float64(t.cfg.ValidationSeeds)
		}
		pop[i].Scores = sum
	}
}

// FastNonDominatedSort assigns ranks and returns the fronts as index lists.
func FastNonDominatedSort(pop []Candidate) [][]int {
	n := len(pop)
	dominatedBy := make([][]int, n)
	domCount := make([]int, n)

	var fronts [][]int
	var first []int
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if Dominates(pop[i].Scores, pop[j].Scores) {
				dominatedBy[i] = append(dominatedBy[i], j)
			} else if Dominates(pop[j].Scores, pop[i].Scores) {
				domCount[i]++
			}
		}
		if domCount[i] == 0 {
			pop[i].Rank = 0
			first = append(first, i)
		}
	}
	fronts = append(fronts, first)

	for len(fronts[len(fronts)-1]) > 0 {
		var next []int
		for _, i := range fronts[len(fronts)-1] {
			for _, j := range dominatedBy[i] {
				domCount[j]--
				if domCount[j] == 0 {
					pop[j].Rank = len(fronts)
					next = append(next, j)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		fronts = append(fronts, next)
	}
	return fronts
}

// AssignCrowding computes the crowding distance for one front. Boundary
// candidates get infinity; interior ones accumulate normalized gaps.
func AssignCrowding(pop []Candidate, front []int) {
	for _, i := range front {
		pop[i].Crowding = 0
	}
	if len(front) <= 2 {
		for _, i := range front {
			pop[i].Crowding = math.Inf(1)
		}
		return
	}
	for obj := 0; obj < NumObjectives; obj++ {
		sorted := append([]int(nil), front...)
		sort.SliceStable(sorted, func(a, b int) bool {
			return pop[sorted[a]].Scores[obj] < pop[sorted[b]].Scores[obj]
		})
		lo := pop[sorted[0]].Scores[obj]
		hi := pop[sorted[len(sorted)-1]].Scores[obj]
		pop[sorted[0]].Crowding = math.Inf(1)
		pop[sorted[len(sorted)-1]].Crowding = math.Inf(1)
		if hi == lo {
			continue
		}
		for k := 1; k < len(sorted)-1; k++ {
			prev := pop[sorted[k-1]].Scores[obj]
			next := pop[sorted[k+1]].Scores[obj]
			pop[sorted[k]].Crowding += (next - prev) / (hi - lo)
		}
	}
}

// selectElite fills the next population front-by-front; the last partial
// front is taken in descending crowding order.
func (t *EvoTuner) selectElite(combined []Candidate) []Candidate {
	fronts := FastNonDominatedSort(combined)
	for _, front := range fronts {
		AssignCrowding(combined, front)
	}

	out := make([]Candidate, 0, t.cfg.PopulationSize)
	for _, front := range fronts {
		if len(out)+len(front) <= t.cfg.PopulationSize {
			for _, i := range front {
				out = append(out, combined[i])
			}
			continue
		}
		sorted := append([]int(nil), front...)
		sort.SliceStable(sorted, func(a, b int) bool {
			return combined[sorted[a]].Crowding > combined[sorted[b]].Crowding
		})
		for _, i := range sorted {
			if len(out) >= t.cfg.PopulationSize {
				break
			}
			out = append(out, combined[i])
		}
		break
	}
	return out
}

// tournament picks the better of two random candidates: lower rank first,
// then higher crowding, then higher weighted score.
func (t *EvoTuner) tournament(pop []Candidate) Candidate {
	a := pop[t.rng.NextInt(len(pop))]
	b := pop[t.rng.NextInt(len(pop))]
	if a.Rank != b.Rank {
		if a.Rank < b.Rank {
			return a
		}
		return b
	}
	if a.Crowding != b.Crowding {
		if a.Crowding > b.Crowding {
			return a
		}
		return b
	}
	wa := WeightedScore(a.Scores, t.cfg.Weights, t.cfg.Constraints)
	wb := WeightedScore(b.Scores, t.cfg.Weights, t.cfg.Constraints)
	if wa >= wb {
		return a
	}
	return b
}

// makeOffspring produces a full offspring generation via tournament
// selection, blend crossover, and generation-annealed mutation.
func (t *EvoTuner) makeOffspring(pop []Candidate, generation int) []Candidate {
	progress := 0.0
	if t.cfg.Generations > 1 {
		progress = float64(generation) / float64(t.cfg.Generations-1)
	}
	mutationRate := interpolate(t.cfg.MutationRate*1.35, t.cfg.MutationRate*0.65, progress)
	scale := interpolate(0.24, 0.06, progress)

	out := make([]Candidate, 0, len(pop))
	for len(out) < len(pop) {
		parentA := t.tournament(pop)
		parentB := t.tournament(pop)

		child := parentA.Genome
		if t.rng.Chance(t.cfg.CrossoverRate) {
			alpha := t.rng.NextFloat()
			for i := range child {
				child[i] = parentA.Genome[i]*alpha + parentB.Genome[i]*(1-alpha)
			}
		}

		for i := range child {
			if t.rng.Chance(mutationRate) {
				perturb := (t.rng.NextFloat() + t.rng.NextFloat() - 1) * Span(i) * scale
				child[i] += perturb
			}
			child[i] = ClampGene(i, child[i])
		}

		out = append(out, Candidate{Genome: child})
	}
	return out
}

// Best returns the candidate with the highest penalized weighted score.
func (t *EvoTuner) Best(pop []Candidate) Candidate {
	best := pop[0]
	bestScore := WeightedScore(best.Scores, t.cfg.Weights, t.cfg.Constraints)
	for _, c := range pop[1:] {
		score := WeightedScore(c.Scores, t.cfg.Weights, t.cfg.Constraints)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

func interpolate(from, to, progress float64) float64 {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return from + (to-from)*progress
}
