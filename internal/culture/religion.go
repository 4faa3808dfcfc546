package culture

import (
	"fmt"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

// Religion is an emergent belief system bound to a species.
type Religion struct {
	ID               string   `json:"id"`
	SpeciesID        string   `json:"species_id"`
	EthnicityID      string   `json:"ethnicity_id,omitempty"`
	CoreBeliefs      []string `json:"core_beliefs"` // At most 5
	SacredSpeciesIDs []string `json:"sacred_species_ids"`
	CreatedAtTick    uint64   `json:"created_at_tick"`
}

// beliefPool is the fixed catalog core beliefs are drawn from.
var beliefPool = []string{
	"ancestral-memory", "storm-cycle", "harvest-oath", "guardianship",
	"sky-order", "river-duty", "kin-duty", "land-stewardship",
	"warden-rite", "survival-order",
}

// religion emergence gates.
const (
	religionMinSpirituality = 0.62
	religionMinMembers      = 16
	religionMinAge          = 160
	religionReuseChance     = 0.46
)

// ReligionInput is everything the emergence check reads from a faction.
type ReligionInput struct {
	SpeciesID         string
	EthnicityID       string
	Spirituality      float64
	SignificantEvents int
	Members           int
	FactionAgeTicks   uint64
	Params            *Params
}

// ReligionSystem owns all emerged religions.
type ReligionSystem struct {
	religions []*Religion
	byID      map[string]*Religion
	nextID    uint64
}

// NewReligionSystem creates an empty registry.
func NewReligionSystem() *ReligionSystem {
	return &ReligionSystem{byID: make(map[string]*Religion), nextID: 1}
}

// All returns the religions in creation order.
func (s *ReligionSystem) All() []*Religion { return s.religions }

// Get returns the religion with the given id.
func (s *ReligionSystem) Get(id string) (*Religion, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// TryEmerge evaluates a faction for religion emergence. With the reuse
// probability an existing same-species religion is adopted instead of
// founding a new one.
func (s *ReligionSystem) TryEmerge(in ReligionInput, tick uint64, r *rng.Rng) *Religion {
	if in.Spirituality < religionMinSpirituality ||
		in.SignificantEvents <= 0 ||
		in.Members < religionMinMembers ||
		in.FactionAgeTicks < religionMinAge {
		return nil
	}

	if r.Chance(religionReuseChance) {
		for _, existing := range s.religions {
			if existing.SpeciesID == in.SpeciesID {
				return existing
			}
		}
	}

	beliefs := selectBeliefs(in.Params, r)
	rel := &Religion{
		ID:            fmt.Sprintf("religion-%d", s.nextID),
		SpeciesID:     in.SpeciesID,
		EthnicityID:   in.EthnicityID,
		CoreBeliefs:   beliefs,
		CreatedAtTick: tick,
	}
	s.nextID++
	s.religions = append(s.religions, rel)
	s.byID[rel.ID] = rel
	return rel
}

// selectBeliefs weights the pool by culture parameters and draws 1–4.
func selectBeliefs(p *Params, r *rng.Rng) []string {
	weights := map[string]float64{
		"ancestral-memory": 0.2 + p.Tradition*0.6,
		"storm-cycle":      0.2 + p.EnvironmentalAdaptation*0.5,
		"harvest-oath":     0.2 + p.Collectivism*0.5,
		"guardianship":     0.2 + p.Aggression*0.4,
		"sky-order":        0.2 + p.Spirituality*0.6,
		"river-duty":       0.2 + p.TabooHazard*0.4,
		"kin-duty":         0.2 + p.Collectivism*0.4,
		"land-stewardship": 0.2 + p.EnvironmentalAdaptation*0.4,
		"warden-rite":      0.2 + p.HierarchyLevel*0.5,
		"survival-order":   0.2 + p.TabooHazard*0.5,
	}

	count := 1 + r.NextInt(4) // 1..4
	chosen := make([]string, 0, count)
	used := make(map[string]bool)
	for len(chosen) < count {
		best := ""
		bestScore := -1.0
		for _, b := range beliefPool {
			if used[b] {
				continue
			}
			score := weights[b] * r.NextFloat()
			if score > bestScore {
				bestScore = score
				best = b
			}
		}
		if best == "" {
			break
		}
		used[best] = true
		chosen = append(chosen, best)
	}
	return chosen
}

// MarkSacred records a sacred species on a religion, once.
func (rel *Religion) MarkSacred(speciesID string) {
	for _, id := range rel.SacredSpeciesIDs {
		if id == speciesID {
			return
		}
	}
	rel.SacredSpeciesIDs = append(rel.SacredSpeciesIDs, speciesID)
}

// ExportState returns a deep copy of all religions.
func (s *ReligionSystem) ExportState() ([]Religion, uint64) {
	out := make([]Religion, 0, len(s.religions))
	for _, rel := range s.religions {
		cp := *rel
		cp.CoreBeliefs = append([]string(nil), rel.CoreBeliefs...)
		cp.SacredSpeciesIDs = append([]string(nil), rel.SacredSpeciesIDs...)
		out = append(out, cp)
	}
	return out, s.nextID
}

// HydrateState restores the registry.
func (s *ReligionSystem) HydrateState(list []Religion, nextID uint64) {
	s.religions = nil
	s.byID = make(map[string]*Religion, len(list))
	for i := range list {
		cp := list[i]
		cp.CoreBeliefs = append([]string(nil), list[i].CoreBeliefs...)
		cp.SacredSpeciesIDs = append([]string(nil), list[i].SacredSpeciesIDs...)
		s.religions = append(s.religions, &cp)
		s.byID[cp.ID] = &cp
	}
	s.nextID = nextID
	if s.nextID == 0 {
		s.nextID = 1
	}
}
