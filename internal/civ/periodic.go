package civ

import (
	"fmt"
	"math"

	"github.com/HiddenPCOfficial/biotica/internal/culture"
	"github.com/HiddenPCOfficial/biotica/internal/narrative"
	"github.com/HiddenPCOfficial/biotica/internal/territory"
)

// stepRelations runs the diplomatic pass over every unordered faction pair.
func (s *System) stepRelations() {
	for i := 0; i < len(s.factions); i++ {
		for j := i + 1; j < len(s.factions); j++ {
			s.updatePair(s.factions[i], s.factions[j])
		}
	}
}

// updatePair drifts trust/tension toward their rest points, checks the war
// signal, and reconciles statuses.
func (s *System) updatePair(a, b *Faction) {
	ra := a.RelationWith(b.ID)
	rb := b.RelationWith(a.ID)

	for _, r := range []*Relation{ra, rb} {
		r.Trust += (0.5 - r.Trust) * 0.02
		r.Tension += (0.28 - r.Tension) * 0.02
	}

	warSignal := a.Culture.Aggression*0.55 + a.Stress*0.25 + ra.Tension*0.2
	if warSignal > 0.66 && s.rng.Chance(0.09) {
		for _, r := range []*Relation{ra, rb} {
			r.Status = RelationHostile
			r.Trust -= 0.06
			r.Tension += 0.08
		}
		a.SignificantEvents++
		b.SignificantEvents++
		s.addTimeline("war", a.ID, fmt.Sprintf("hostility breaks out between %s and %s", a.ID, b.ID))
	}

	for _, r := range []*Relation{ra, rb} {
		switch {
		case r.Status == RelationHostile && r.Tension < 0.32 && r.Trust > 0.44:
			r.Status = RelationNeutral
		case r.Status == RelationTrade && r.Trust > 0.66 && r.Tension < 0.28:
			r.Status = RelationAlly
		}
	}

	key := pairKey(a.ID, b.ID)
	s.relHistory[key] = appendBounded(s.relHistory[key], RelationPoint{
		Tick:    s.tick,
		Status:  ra.Status,
		Trust:   ra.Trust,
		Tension: ra.Tension,
	}, relSeriesCap)
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// stepCulture updates culture parameters, strategy, literacy, state, and
// possible capital relocation per faction.
func (s *System) stepCulture() {
	for _, f := range s.factions {
		sample := culture.SampleClimate(s.grid, f.HomeX, f.HomeY)

		claimRatio := 0.0
		if n := s.grid.Width * s.grid.Height; n > 0 {
			claimRatio = float64(s.territory.ClaimedCount(f.ID)) / float64(n)
		}
		scarcity := clamp01(1 - f.Stockpile.Food/float64(20+len(f.Members)*2))
		war := 0.0
		external := 0.0
		for _, rel := range f.Relations {
			if rel.Status == RelationHostile {
				war += 0.4
			}
			external += rel.Tension * 0.2
		}
		disaster := 0.0
		for _, id := range f.Members {
			if a := s.agentIndex[id]; a != nil {
				disaster += a.HazardStress
			}
		}
		if len(f.Members) > 0 {
			disaster /= float64(len(f.Members))
		}

		pr := culture.Pressures{
			ClimateStress:       sample.ClimateStress(),
			Scarcity:            scarcity,
			ExternalPressure:    clamp01(external),
			DisasterPressure:    clamp01(disaster),
			WarPressure:         clamp01(war),
			TerritoryClaimRatio: claimRatio,
		}

		culture.UpdateParams(&f.Culture, pr)
		f.Strategy = culture.SelectStrategy(&f.Culture, pr)
		f.DominantPractices = culture.SelectPractices(&f.Culture)
		f.State = culture.DeriveState(len(f.Members), &f.Culture, f.Literacy())
		f.Stress = clamp01(f.Stress + 0.1*(pr.ClimateStress*0.4+pr.WarPressure*0.4+scarcity*0.2-f.Stress))

		if s.tick > 0 && s.tick%culture.LiteracyInterval == 0 {
			signal := f.Culture.TechOrientation*0.4 + f.Culture.Tradition*0.3 + f.CulturalIdentityLevel*0.3
			next := culture.AdvanceLiteracy(f.Literacy(), signal)
			if next > f.Writing.LiteracyLevel {
				f.Writing.LiteracyLevel = next
				s.addTimeline("literacy", f.ID, fmt.Sprintf("script knowledge reaches level %d", next))
			}
			for len(f.Writing.SymbolSet) < culture.TargetSymbolCount(f.Literacy()) {
				f.Writing.SymbolSet = append(f.Writing.SymbolSet, fmt.Sprintf("glyph-%d", len(f.Writing.SymbolSet)+1))
			}
		}

		if culture.ShouldRelocate(s.tick, f.LastCultureShiftTick, pr) {
			positions := make([][2]int, 0, len(f.Members))
			for _, id := range f.Members {
				if a := s.agentIndex[id]; a != nil {
					positions = append(positions, [2]int{a.X, a.Y})
				}
			}
			if x, y, ok := culture.RelocationCandidate(s.grid, positions, f.HomeX, f.HomeY); ok {
				f.HomeX, f.HomeY = x, y
				f.LastCultureShiftTick = s.tick
				s.addTimeline("migration", f.ID, fmt.Sprintf("the settlement center moves to (%d,%d)", x, y))
			}
		}
	}
}

// stepTerritory runs the influence/ownership update.
func (s *System) stepTerritory() {
	inputs := make([]territory.FactionInput, 0, len(s.factions))
	for _, f := range s.factions {
		in := territory.FactionInput{
			ID:    f.ID,
			HomeX: f.HomeX,
			HomeY: f.HomeY,
		}
		for _, st := range s.structures.Structures() {
			if st.FactionID == f.ID {
				in.Structures = append(in.Structures, st)
			}
		}
		for _, id := range f.Members {
			if a := s.agentIndex[id]; a != nil && a.Alive {
				in.Agents = append(in.Agents, territory.AgentStamp{
					X: a.X, Y: a.Y, Role: a.Role, Energy: a.Energy,
				})
			}
		}
		inputs = append(inputs, in)
	}
	s.territory.Step(s.grid, inputs)
}

// stepEthnicities checks every faction for ethnic divergence.
func (s *System) stepEthnicities() {
	for _, f := range s.factions {
		counts := make(map[string]int)
		var dominant string
		for _, id := range f.Members {
			if a := s.agentIndex[id]; a != nil {
				counts[a.SpeciesID]++
				if dominant == "" || counts[a.SpeciesID] > counts[dominant] {
					dominant = a.SpeciesID
				}
			}
		}
		if dominant == "" {
			continue
		}
		f.DominantSpeciesID = dominant

		var distances []float64
		var remoteIDs []string
		for _, id := range f.Members {
			a := s.agentIndex[id]
			if a == nil || a.SpeciesID != dominant {
				continue
			}
			d := math.Sqrt(float64(distSq(a.X, a.Y, f.HomeX, f.HomeY)))
			distances = append(distances, d)
			if d >= 8+2*float64(len(f.EthnicityIDs)) {
				remoteIDs = append(remoteIDs, id)
			}
		}

		eth, groupSize := s.ethnicities.TryEmerge(culture.EmergenceInput{
			FactionID:           f.ID,
			DominantSpeciesID:   dominant,
			DominantCount:       counts[dominant],
			FactionAgeTicks:     s.tick - f.FoundedAtTick,
			Stress:              f.Stress,
			Params:              &f.Culture,
			MemberHomeDistances: distances,
			ExistingEthnicities: len(f.EthnicityIDs),
		}, s.tick, s.rng)
		if eth == nil {
			continue
		}

		assigned := 0
		for _, id := range remoteIDs {
			if assigned >= groupSize {
				break
			}
			if a := s.agentIndex[id]; a != nil {
				a.EthnicityID = eth.ID
				assigned++
			}
		}
		f.AddEthnicity(eth.ID)
		s.addTimeline("identity", f.ID, fmt.Sprintf("an ethnicity bearing the %s emerges", eth.Symbol))
		s.enqueueIdentityRequest(f)
	}
}

// stepIdentity updates identity levels, symbols, religion emergence, and
// naming triggers.
func (s *System) stepIdentity() {
	for idx, f := range s.factions {
		f.CulturalIdentityLevel = culture.UpdateIdentityLevel(f.CulturalIdentityLevel, culture.IdentityInput{
			Population:     len(f.Members),
			Literacy:       f.Literacy(),
			TerritoryTiles: s.territory.ClaimedCount(f.ID),
			Collectivism:   f.Culture.Collectivism,
		})
		if f.IdentitySymbol == "" {
			if sym, ok := culture.PickIdentitySymbol(f.CulturalIdentityLevel, idx); ok {
				f.IdentitySymbol = sym
				s.addTimeline("identity", f.ID, fmt.Sprintf("the faction adopts the %s as its mark", sym))
			}
		}

		if f.ReligionID == "" {
			rel := s.religions.TryEmerge(culture.ReligionInput{
				SpeciesID:         f.DominantSpeciesID,
				EthnicityID:       f.EthnicityID,
				Spirituality:      f.Culture.Spirituality,
				SignificantEvents: f.SignificantEvents,
				Members:           len(f.Members),
				FactionAgeTicks:   s.tick - f.FoundedAtTick,
				Params:            &f.Culture,
			}, s.tick, s.rng)
			if rel != nil {
				f.ReligionID = rel.ID
				rel.MarkSacred(f.DominantSpeciesID)
				s.addTimeline("religion", f.ID, fmt.Sprintf("beliefs of %s take hold", rel.CoreBeliefs[0]))
				s.enqueueIdentityRequest(f)
			}
		}

		if culture.ShouldRequestName(culture.NameEmergenceInput{
			Population:     len(f.Members),
			Literacy:       f.Literacy(),
			TerritoryTiles: s.territory.ClaimedCount(f.ID),
			IdentityLevel:  f.CulturalIdentityLevel,
			HasName:        f.Name != "",
		}) {
			s.enqueueIdentityRequest(f)
		}
	}
}

// enqueueIdentityRequest asks the narrative collaborator to name a faction.
// The deterministic id deduplicates repeats. The worldSummary payload is
// filled by the knowledge bridge from its projection before the call.
func (s *System) enqueueIdentityRequest(f *Faction) {
	s.queue.Enqueue(narrative.Request{
		ID:           fmt.Sprintf("identity-%s", f.ID),
		Kind:         narrative.KindFactionIdentity,
		FactionID:    f.ID,
		Payload:      map[string]any{},
		EnqueuedTick: s.tick,
	})
}

// validateEntityLinks prunes dangling references between entities.
func (s *System) validateEntityLinks() {
	for _, f := range s.factions {
		kept := f.Members[:0]
		for _, id := range f.Members {
			if _, ok := s.agentIndex[id]; ok {
				kept = append(kept, id)
			}
		}
		f.Members = kept

		if f.EthnicityID != "" {
			if _, ok := s.ethnicities.Get(f.EthnicityID); !ok {
				f.EthnicityID = ""
			}
		}
		keptEth := f.EthnicityIDs[:0]
		for _, id := range f.EthnicityIDs {
			if _, ok := s.ethnicities.Get(id); ok {
				keptEth = append(keptEth, id)
			}
		}
		f.EthnicityIDs = keptEth
		if f.ReligionID != "" {
			if _, ok := s.religions.Get(f.ReligionID); !ok {
				f.ReligionID = ""
			}
		}
	}
	for _, a := range s.agents {
		if a.EthnicityID != "" {
			if _, ok := s.ethnicities.Get(a.EthnicityID); !ok {
				a.EthnicityID = ""
			}
		}
	}
}

// sampleMetrics appends one metric point.
func (s *System) sampleMetrics() {
	population := 0
	for _, a := range s.agents {
		if a.Alive {
			population++
		}
	}
	totalFood := 0.0
	avgStress := 0.0
	territoryTiles := 0
	for _, f := range s.factions {
		totalFood += f.Stockpile.Food
		avgStress += f.Stress
		territoryTiles += s.territory.ClaimedCount(f.ID)
	}
	if len(s.factions) > 0 {
		avgStress /= float64(len(s.factions))
	}
	s.metrics = appendBounded(s.metrics, MetricPoint{
		Tick:        s.tick,
		Population:  population,
		Factions:    len(s.factions),
		TotalFood:   totalFood,
		AvgStress:   avgStress,
		Territory:   territoryTiles,
		Notes:       len(s.notes),
		GroundItems: len(s.groundItems),
	}, metricsCap)
}

// enqueueChronicles asks for a chronicle when a faction is overdue. The
// recentLogs payload is filled by the knowledge bridge from its projection,
// so the tool router stays the single read surface for collaborators.
func (s *System) enqueueChronicles() {
	for _, f := range s.factions {
		if s.tick-f.LastChronicleTick < s.cfg.ChronicleInterval {
			continue
		}
		if s.queue.Enqueue(narrative.Request{
			ID:           fmt.Sprintf("chronicle-%s-%d", f.ID, s.tick/s.cfg.ChronicleInterval),
			Kind:         narrative.KindChronicle,
			FactionID:    f.ID,
			Payload:      map[string]any{},
			EnqueuedTick: s.tick,
		}) {
			f.LastChronicleTick = s.tick
		}
	}
}

// applyNarrativeResponses folds delivered collaborator answers back into the
// state. Responses for removed entities are dropped silently.
func (s *System) applyNarrativeResponses() {
	for _, resp := range s.queue.CollectResponses() {
		switch resp.Kind {
		case narrative.KindFactionIdentity:
			f := s.factionIndex[resp.FactionID]
			if f == nil || resp.Identity == nil {
				continue
			}
			if f.Name == "" {
				f.Name = resp.Identity.Name
			}
			if f.Motto == "" {
				f.Motto = resp.Identity.Motto
			}
			if f.ReligionID != "" && f.ReligionName == "" {
				f.ReligionName = resp.Identity.Religion
			}
			if len(f.CoreLaws) == 0 {
				laws := resp.Identity.CoreLaws
				if len(laws) > 4 {
					laws = laws[:4]
				}
				f.CoreLaws = laws
			}
			s.addTimeline("identity", f.ID, fmt.Sprintf("the faction takes the name %s", f.Name))
		case narrative.KindDialogue:
			for i := range s.dialogues {
				if s.dialogues[i].ID == resp.DialogueID && resp.Dialogue != nil {
					s.dialogues[i].Gloss = resp.Dialogue.Gloss
					s.dialogues[i].Tone = resp.Dialogue.Tone
					break
				}
			}
		case narrative.KindChronicle:
			if resp.Chronicle == "" {
				continue
			}
			if _, ok := s.factionIndex[resp.FactionID]; !ok {
				continue
			}
			s.addTimeline("law", resp.FactionID, resp.Chronicle)
		}
	}
}

// RelationSeries returns the sampled relation history for a faction pair,
// trimmed to the exposure cap.
func (s *System) RelationSeries(a, b string) []RelationPoint {
	series := s.relHistory[pairKey(a, b)]
	if len(series) > 180 {
		series = series[len(series)-180:]
	}
	out := make([]RelationPoint, len(series))
	copy(out, series)
	return out
}
