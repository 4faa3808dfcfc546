package culture

import (
	"math"

	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// Interval is the tick modulus for culture updates.
const Interval = 60

// smoothingAlpha is the per-update approach rate toward target parameters.
const smoothingAlpha = 0.045

// LiteracyInterval is the tick modulus for literacy advancement checks.
const LiteracyInterval = 180

// RelocationCooldown is the minimum ticks between capital moves.
const RelocationCooldown = 900

// ClimateSample is the mean local climate around a faction's home.
type ClimateSample struct {
	Fertility   float64
	Hazard      float64
	Humidity    float64
	Temperature float64
}

// SampleClimate averages the climate fields in a radius-5 square around
// (cx, cy).
func SampleClimate(g *world.Grid, cx, cy int) ClimateSample {
	var s ClimateSample
	count := 0
	for dy := -5; dy <= 5; dy++ {
		for dx := -5; dx <= 5; dx++ {
			x, y := cx+dx, cy+dy
			if !g.InBounds(x, y) {
				continue
			}
			s.Fertility += g.FertilityAt(x, y)
			s.Hazard += g.HazardAt(x, y)
			s.Humidity += g.HumidityAt(x, y)
			s.Temperature += g.TemperatureAt(x, y)
			count++
		}
	}
	if count > 0 {
		f := float64(count)
		s.Fertility /= f
		s.Hazard /= f
		s.Humidity /= f
		s.Temperature /= f
	}
	return s
}

// Pressures are the inputs to one culture update.
type Pressures struct {
	ClimateStress       float64
	Scarcity            float64
	ExternalPressure    float64
	DisasterPressure    float64
	WarPressure         float64
	TerritoryClaimRatio float64
}

// ClimateStress derives the climate pressure term from a sample.
func (c ClimateSample) ClimateStress() float64 {
	return math.Abs(c.Temperature-0.56)*0.7 + math.Abs(c.Humidity-0.58)*0.52 + c.Hazard*0.88
}

// UpdateParams computes affine targets from the pressures and smooths every
// parameter toward them. All parameters stay in [0,1].
func UpdateParams(p *Params, pr Pressures) {
	targets := Params{
		Aggression:              0.12 + pr.WarPressure*0.52 + pr.ExternalPressure*0.34 - p.TradeAffinity*0.2,
		Collectivism:            0.3 + pr.ClimateStress*0.3 + pr.Scarcity*0.24 + pr.DisasterPressure*0.2,
		Spirituality:            0.18 + pr.DisasterPressure*0.4 + pr.ClimateStress*0.22,
		Curiosity:               0.34 + (1-pr.Scarcity)*0.2 - pr.WarPressure*0.14 + pr.TerritoryClaimRatio*0.1,
		Tradition:               0.25 + pr.TerritoryClaimRatio*0.26 - pr.DisasterPressure*0.12,
		TradeAffinity:           0.28 + (1-pr.WarPressure)*0.3 - pr.Scarcity*0.14,
		TabooHazard:             0.2 + pr.ClimateStress*0.5 + pr.DisasterPressure*0.2,
		HierarchyLevel:          0.22 + pr.WarPressure*0.3 + pr.TerritoryClaimRatio*0.2,
		EnvironmentalAdaptation: 0.3 + pr.ClimateStress*0.36 + pr.Scarcity*0.18,
		TechOrientation:         0.24 + pr.Scarcity*0.22 + pr.ExternalPressure*0.18,
	}
	targets.Clamp()

	smooth := func(cur, target float64) float64 {
		return cur + smoothingAlpha*(target-cur)
	}
	p.Aggression = smooth(p.Aggression, targets.Aggression)
	p.Collectivism = smooth(p.Collectivism, targets.Collectivism)
	p.Spirituality = smooth(p.Spirituality, targets.Spirituality)
	p.Curiosity = smooth(p.Curiosity, targets.Curiosity)
	p.Tradition = smooth(p.Tradition, targets.Tradition)
	p.TradeAffinity = smooth(p.TradeAffinity, targets.TradeAffinity)
	p.TabooHazard = smooth(p.TabooHazard, targets.TabooHazard)
	p.HierarchyLevel = smooth(p.HierarchyLevel, targets.HierarchyLevel)
	p.EnvironmentalAdaptation = smooth(p.EnvironmentalAdaptation, targets.EnvironmentalAdaptation)
	p.TechOrientation = smooth(p.TechOrientation, targets.TechOrientation)
	p.Clamp()
}

// SelectStrategy picks the adaptation strategy by priority order.
func SelectStrategy(p *Params, pr Pressures) Strategy {
	switch {
	case pr.WarPressure > 0.62 && p.Aggression > 0.58:
		return StrategyOffensive
	case pr.DisasterPressure > 0.56 && pr.Scarcity > 0.46:
		return StrategyMigration
	case p.Collectivism > 0.62 && p.Aggression < 0.45:
		return StrategyDefensive
	case p.Curiosity > 0.62 && pr.Scarcity > 0.54:
		return StrategyNomadic
	default:
		return StrategyBalanced
	}
}

// SelectPractices derives the dominant practices from the parameters.
func SelectPractices(p *Params) []Practice {
	var out []Practice
	if p.Spirituality > 0.5 {
		out = append(out, PracticeRitualBurial)
	}
	if p.Collectivism > 0.55 {
		out = append(out, PracticeSeasonFeast)
	}
	if p.Aggression > 0.5 || p.HierarchyLevel > 0.55 {
		out = append(out, PracticeBorderMarking)
	}
	if p.Tradition > 0.5 {
		out = append(out, PracticeOralChronicle)
	}
	if p.TechOrientation > 0.55 {
		out = append(out, PracticeToolVeneration)
	}
	if p.TabooHazard > 0.6 {
		out = append(out, PracticeWaterRite)
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// AdvanceLiteracy raises literacy by one step when the desired level exceeds
// the current one. Capped at 5; runs on the literacy interval.
func AdvanceLiteracy(current int, literacySignal float64) int {
	desired := int(math.Floor(literacySignal * 6))
	if desired > current && current < 5 {
		return current + 1
	}
	return current
}

// TargetSymbolCount is the symbol-set size a literacy level grows toward.
func TargetSymbolCount(literacy int) int {
	return 4 + literacy*3
}

// DeriveState promotes tribes as population and hierarchy grow.
func DeriveState(population int, p *Params, literacy int) FactionState {
	switch {
	case population >= 80 && literacy >= 3 && p.HierarchyLevel > 0.5:
		return StateState
	case population >= 35 && p.HierarchyLevel > 0.3:
		return StateSociety
	default:
		return StateTribe
	}
}

// RelocationCandidate scores member positions for a capital move and returns
// the best tile. Relocation only happens when the winner is at least five
// Manhattan steps from the current home.
func RelocationCandidate(g *world.Grid, positions [][2]int, homeX, homeY int) (int, int, bool) {
	bestX, bestY := homeX, homeY
	bestScore := -1e9
	for _, pos := range positions {
		x, y := pos[0], pos[1]
		if !g.IsHabitable(x, y) {
			continue
		}
		score := g.FertilityAt(x, y)*0.55 + g.HumidityAt(x, y)*0.18 - g.HazardAt(x, y)*0.9
		if score > bestScore {
			bestScore = score
			bestX, bestY = x, y
		}
	}
	dist := abs(bestX-homeX) + abs(bestY-homeY)
	return bestX, bestY, dist >= 5
}

// ShouldRelocate gates capital relocation on cooldown and pressure.
func ShouldRelocate(tick, lastShiftTick uint64, pr Pressures) bool {
	if tick-lastShiftTick < RelocationCooldown {
		return false
	}
	return pr.DisasterPressure > 0.66 || pr.TerritoryClaimRatio < 0.16
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
