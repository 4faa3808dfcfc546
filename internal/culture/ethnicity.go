package culture

import (
	"fmt"
	"math"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

// EthnicityInterval is the tick modulus for emergence checks.
const EthnicityInterval = 45

// Ethnicity is an emergent sub-population identity, always bound to one
// species.
type Ethnicity struct {
	ID             string   `json:"id"`
	SpeciesID      string   `json:"species_id"`
	FactionID      string   `json:"faction_id"`
	Symbol         string   `json:"symbol"`
	CulturalTraits []string `json:"cultural_traits"` // At most 5
	CreatedAtTick  uint64   `json:"created_at_tick"`
}

var ethnicitySymbols = []string{
	"river-mark", "sun-wheel", "twin-peak", "ash-spiral", "reed-knot",
	"stone-eye", "red-antler", "salt-line", "moon-arc", "ember-hand",
}

var ethnicityTraits = []string{
	"highland-dialect", "braided-cords", "ochre-face-paint", "long-march-songs",
	"river-crossing-rites", "clay-bead-trade", "night-watch-custom",
	"shared-hearth-law", "bone-flute-craft", "wind-reading",
}

// EmergenceInput is everything the emergence check reads from a faction.
type EmergenceInput struct {
	FactionID         string
	DominantSpeciesID string
	DominantCount     int
	FactionAgeTicks   uint64
	Stress            float64
	Params            *Params
	// Distance of each dominant-species member from home, member order.
	MemberHomeDistances []float64
	ExistingEthnicities int
}

// EthnicitySystem owns all emerged ethnicities.
type EthnicitySystem struct {
	ethnicities []*Ethnicity
	byID        map[string]*Ethnicity
	nextID      uint64
}

// NewEthnicitySystem creates an empty registry.
func NewEthnicitySystem() *EthnicitySystem {
	return &EthnicitySystem{byID: make(map[string]*Ethnicity), nextID: 1}
}

// All returns the ethnicities in creation order.
func (s *EthnicitySystem) All() []*Ethnicity { return s.ethnicities }

// Get returns the ethnicity with the given id.
func (s *EthnicitySystem) Get(id string) (*Ethnicity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// minimum thresholds for ethnicity emergence.
const (
	emergeMinMembers  = 14
	emergeMinAge      = 220
	emergeMinRemote   = 4
	emergeDivergence  = 0.58
)

// TryEmerge evaluates one faction for ethnic divergence. On emergence it
// returns the new ethnicity and the target member count to convert.
func (s *EthnicitySystem) TryEmerge(in EmergenceInput, tick uint64, r *rng.Rng) (*Ethnicity, int) {
	if in.DominantCount < emergeMinMembers || in.FactionAgeTicks < emergeMinAge {
		return nil, 0
	}

	remoteFloor := 8.0 + 2.0*float64(in.ExistingEthnicities)
	remote := 0
	sumDist := 0.0
	for _, d := range in.MemberHomeDistances {
		sumDist += d
		if d >= remoteFloor {
			remote++
		}
	}
	if remote < emergeMinRemote {
		return nil, 0
	}
	avgDist := 0.0
	if len(in.MemberHomeDistances) > 0 {
		avgDist = sumDist / float64(len(in.MemberHomeDistances))
	}

	p := in.Params
	divergence := math.Abs(p.Aggression-p.TradeAffinity)*0.34 +
		math.Abs(p.Collectivism-p.Curiosity)*0.28 +
		in.Stress*0.24 + avgDist/35*0.34
	if divergence > 1 {
		divergence = 1
	}
	if divergence < 0 {
		divergence = 0
	}
	if divergence < emergeDivergence {
		return nil, 0
	}

	prob := 0.015 + divergence*0.05
	if prob < 0.01 {
		prob = 0.01
	}
	if prob > 0.08 {
		prob = 0.08
	}
	if !r.Chance(prob) {
		return nil, 0
	}

	groupSize := int(math.Floor(float64(remote) * 0.45))
	if groupSize < 4 {
		groupSize = 4
	}
	if groupSize > 18 {
		groupSize = 18
	}

	traitCount := 2 + r.NextInt(4) // 2..5
	traits := make([]string, 0, traitCount)
	used := make(map[int]bool)
	for len(traits) < traitCount {
		i := r.NextInt(len(ethnicityTraits))
		if used[i] {
			continue
		}
		used[i] = true
		traits = append(traits, ethnicityTraits[i])
	}

	e := &Ethnicity{
		ID:             fmt.Sprintf("ethnicity-%d", s.nextID),
		SpeciesID:      in.DominantSpeciesID,
		FactionID:      in.FactionID,
		Symbol:         ethnicitySymbols[r.NextInt(len(ethnicitySymbols))],
		CulturalTraits: traits,
		CreatedAtTick:  tick,
	}
	s.nextID++
	s.ethnicities = append(s.ethnicities, e)
	s.byID[e.ID] = e
	return e, groupSize
}

// ExportState returns a deep copy of all ethnicities.
func (s *EthnicitySystem) ExportState() ([]Ethnicity, uint64) {
	out := make([]Ethnicity, 0, len(s.ethnicities))
	for _, e := range s.ethnicities {
		cp := *e
		cp.CulturalTraits = append([]string(nil), e.CulturalTraits...)
		out = append(out, cp)
	}
	return out, s.nextID
}

// HydrateState restores the registry.
func (s *EthnicitySystem) HydrateState(list []Ethnicity, nextID uint64) {
	s.ethnicities = nil
	s.byID = make(map[string]*Ethnicity, len(list))
	for i := range list {
		cp := list[i]
		cp.CulturalTraits = append([]string(nil), list[i].CulturalTraits...)
		s.ethnicities = append(s.ethnicities, &cp)
		s.byID[cp.ID] = &cp
	}
	s.nextID = nextID
	if s.nextID == 0 {
		s.nextID = 1
	}
}
