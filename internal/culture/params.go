// Package culture provides the smoothed culture parameter model, adaptation
// strategies, and the emergence of ethnicities, symbolic identity and
// religions.
package culture

// Params are the ten culture parameters of a faction, each in [0,1].
type Params struct {
	Collectivism            float64 `json:"collectivism"`
	Aggression              float64 `json:"aggression"`
	Spirituality            float64 `json:"spirituality"`
	Curiosity               float64 `json:"curiosity"`
	Tradition               float64 `json:"tradition"`
	TradeAffinity           float64 `json:"trade_affinity"`
	TabooHazard             float64 `json:"taboo_hazard"`
	HierarchyLevel          float64 `json:"hierarchy_level"`
	EnvironmentalAdaptation float64 `json:"environmental_adaptation"`
	TechOrientation         float64 `json:"tech_orientation"`
}

// Clamp forces every parameter into [0,1].
func (p *Params) Clamp() {
	for _, f := range []*float64{
		&p.Collectivism, &p.Aggression, &p.Spirituality, &p.Curiosity,
		&p.Tradition, &p.TradeAffinity, &p.TabooHazard, &p.HierarchyLevel,
		&p.EnvironmentalAdaptation, &p.TechOrientation,
	} {
		if *f < 0 {
			*f = 0
		}
		if *f > 1 {
			*f = 1
		}
	}
}

// Strategy is a faction's adaptation posture.
type Strategy string

const (
	StrategyDefensive Strategy = "defensive"
	StrategyOffensive Strategy = "offensive"
	StrategyBalanced  Strategy = "balanced"
	StrategyMigration Strategy = "migration"
	StrategyNomadic   Strategy = "nomadic"
)

// FactionState is the maturity stage of a faction.
type FactionState string

const (
	StateTribe   FactionState = "tribe"
	StateSociety FactionState = "society"
	StateState   FactionState = "state"
)

// Practice names a dominant cultural practice.
type Practice string

const (
	PracticeRitualBurial   Practice = "ritual-burial"
	PracticeSeasonFeast    Practice = "season-feast"
	PracticeBorderMarking  Practice = "border-marking"
	PracticeOralChronicle  Practice = "oral-chronicle"
	PracticeToolVeneration Practice = "tool-veneration"
	PracticeWaterRite      Practice = "water-rite"
)
