package civ

import (
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/territory"
)

// Snapshot types are defensive copies; mutating them never touches core
// state.

// WorldSummary is the per-tick aggregate view.
type WorldSummary struct {
	Tick           uint64  `json:"tick"`
	AvgTemperature float64 `json:"avg_temperature"`
	AvgHumidity    float64 `json:"avg_humidity"`
	AvgFertility   float64 `json:"avg_fertility"`
	AvgHazard      float64 `json:"avg_hazard"`
	BiomassTotal   float64 `json:"biomass_total"`
	Biodiversity   int     `json:"biodiversity"`
	Population     int     `json:"population"`
	FactionCount   int     `json:"faction_count"`
}

// summaryStride samples the grid every N cells for the climate means.
const summaryStride = 1024

// BuildWorldSummary computes the aggregate view.
func (s *System) BuildWorldSummary() WorldSummary {
	sum := WorldSummary{Tick: s.tick, FactionCount: len(s.factions)}

	n := len(s.grid.Tiles)
	stride := summaryStride
	if stride >= n {
		stride = 1
	}
	samples := 0
	for i := 0; i < n; i += stride {
		sum.AvgTemperature += float64(s.grid.Temperature[i]) / 255
		sum.AvgHumidity += float64(s.grid.Humidity[i]) / 255
		sum.AvgFertility += float64(s.grid.Fertility[i]) / 255
		sum.AvgHazard += float64(s.grid.Hazard[i]) / 255
		samples++
	}
	if samples > 0 {
		f := float64(samples)
		sum.AvgTemperature /= f
		sum.AvgHumidity /= f
		sum.AvgFertility /= f
		sum.AvgHazard /= f
	}
	for _, b := range s.grid.PlantBiomass {
		sum.BiomassTotal += float64(b) / 255
	}
	species := make(map[string]bool)
	for _, a := range s.agents {
		if a.Alive {
			sum.Population++
			species[a.SpeciesID] = true
		}
	}
	sum.Biodiversity = len(species)
	return sum
}

// FactionSummary is the exposed view of one faction.
type FactionSummary struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name,omitempty"`
	Motto                 string   `json:"motto,omitempty"`
	SpeciesID             string   `json:"species_id"`
	EthnicityIDs          []string `json:"ethnicity_ids"`
	ReligionID            string   `json:"religion_id,omitempty"`
	Strategy              string   `json:"strategy"`
	State                 string   `json:"state"`
	Members               int      `json:"members"`
	TechLevel             float64  `json:"tech_level"`
	Literacy              int      `json:"literacy"`
	HomeX                 int      `json:"home_x"`
	HomeY                 int      `json:"home_y"`
	Stress                float64  `json:"stress"`
	IdentityLevel         float64  `json:"identity_level"`
	IdentitySymbol        string   `json:"identity_symbol,omitempty"`
	TerritoryTiles        int      `json:"territory_tiles"`
	GrammarLevel          int      `json:"grammar_level"`
	StockpileFood         float64  `json:"stockpile_food"`
	StockpileWood         float64  `json:"stockpile_wood"`
	StockpileStone        float64  `json:"stockpile_stone"`
	StockpileOre          float64  `json:"stockpile_ore"`
	SignificantEvents     int      `json:"significant_events"`
	FoundedAtTick         uint64   `json:"founded_at_tick"`
}

// FactionSummaries returns copies of every faction's exposed view.
func (s *System) FactionSummaries() []FactionSummary {
	out := make([]FactionSummary, 0, len(s.factions))
	for _, f := range s.factions {
		out = append(out, FactionSummary{
			ID:                f.ID,
			Name:              f.Name,
			Motto:             f.Motto,
			SpeciesID:         f.DominantSpeciesID,
			EthnicityIDs:      append([]string(nil), f.EthnicityIDs...),
			ReligionID:        f.ReligionID,
			Strategy:          string(f.Strategy),
			State:             string(f.State),
			Members:           len(f.Members),
			TechLevel:         f.TechLevel,
			Literacy:          f.Literacy(),
			HomeX:             f.HomeX,
			HomeY:             f.HomeY,
			Stress:            f.Stress,
			IdentityLevel:     f.CulturalIdentityLevel,
			IdentitySymbol:    f.IdentitySymbol,
			TerritoryTiles:    s.territory.ClaimedCount(f.ID),
			GrammarLevel:      f.Comm.GrammarLevel,
			StockpileFood:     f.Stockpile.Food,
			StockpileWood:     f.Stockpile.Wood,
			StockpileStone:    f.Stockpile.Stone,
			StockpileOre:      f.Stockpile.Ore,
			SignificantEvents: f.SignificantEvents,
			FoundedAtTick:     f.FoundedAtTick,
		})
	}
	return out
}

// MemberSummary is the exposed view of one agent.
type MemberSummary struct {
	ID           string   `json:"id"`
	SpeciesID    string   `json:"species_id"`
	FactionID    string   `json:"faction_id"`
	EthnicityID  string   `json:"ethnicity_id,omitempty"`
	Role         string   `json:"role"`
	X            int      `json:"x"`
	Y            int      `json:"y"`
	Energy       float64  `json:"energy"`
	Hydration    float64  `json:"hydration"`
	Age          int      `json:"age"`
	Intent       string   `json:"intent"`
	Goal         string   `json:"goal"`
	Tone         string   `json:"tone"`
	ReasonCodes  []string `json:"reason_codes"`
	CarryWeight  float64  `json:"carry_weight"`
	EquippedItem string   `json:"equipped_item,omitempty"`
}

// MemberSummaries returns copies of a faction's member views.
func (s *System) MemberSummaries(factionID string) []MemberSummary {
	f := s.factionIndex[factionID]
	if f == nil {
		return nil
	}
	out := make([]MemberSummary, 0, len(f.Members))
	for _, id := range f.Members {
		a := s.agentIndex[id]
		if a == nil {
			continue
		}
		out = append(out, MemberSummary{
			ID:           a.ID,
			SpeciesID:    a.SpeciesID,
			FactionID:    a.FactionID,
			EthnicityID:  a.EthnicityID,
			Role:         a.Role,
			X:            a.X,
			Y:            a.Y,
			Energy:       a.Energy,
			Hydration:    a.Hydration,
			Age:          a.Age,
			Intent:       string(a.CurrentIntent),
			Goal:         string(a.CurrentGoal),
			Tone:         string(a.Mental.EmotionalTone),
			ReasonCodes:  append([]string(nil), a.Mental.LastReasonCodes...),
			CarryWeight:  a.CurrentCarryWeight,
			EquippedItem: a.EquippedItemID,
		})
	}
	return out
}

// Timeline returns a copy of the timeline ring buffer.
func (s *System) Timeline() []TimelineEntry {
	out := make([]TimelineEntry, len(s.timeline))
	copy(out, s.timeline)
	return out
}

// Dialogues returns a copy of the recorded dialogues.
func (s *System) Dialogues() []Dialogue {
	out := make([]Dialogue, len(s.dialogues))
	copy(out, s.dialogues)
	return out
}

// Metrics returns a copy of the sampled metric series.
func (s *System) Metrics() []MetricPoint {
	out := make([]MetricPoint, len(s.metrics))
	copy(out, s.metrics)
	return out
}

// GroundItems returns copies of the ground stacks.
func (s *System) GroundItems() []GroundItemStack {
	out := make([]GroundItemStack, 0, len(s.groundItems))
	for _, g := range s.groundItems {
		out = append(out, *g)
	}
	return out
}

// Notes returns a copy of the written notes.
func (s *System) Notes() []Note {
	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// TerritoryOverlay samples the territory maps for display.
func (s *System) TerritoryOverlay(stride, maxCells int) []territory.OverlayCell {
	return s.territory.BuildSummary(stride, maxCells)
}

// RecipeView is one recipe with its per-faction availability flags.
type RecipeView struct {
	Recipe   items.Recipe `json:"recipe"`
	Unlocked bool         `json:"unlocked"`
	CanCraft bool         `json:"can_craft"`
}

// ItemsSnapshot is the item-economy view for one faction.
type ItemsSnapshot struct {
	Catalog          []items.Item  `json:"catalog"`
	Recipes          []RecipeView  `json:"recipes"`
	FactionInventory []items.Stack `json:"faction_inventory"`
	GroundItems      []GroundItemStack `json:"ground_items"`
}

// BuildItemsSnapshot assembles the item view for a faction.
func (s *System) BuildItemsSnapshot(factionID string) ItemsSnapshot {
	snap := ItemsSnapshot{Catalog: s.itemCatalog.Items(), GroundItems: s.GroundItems()}
	f := s.factionIndex[factionID]
	if f == nil {
		return snap
	}
	snap.FactionInventory = f.Inventory.Stacks()
	for _, r := range s.itemCatalog.Recipes() {
		unlocked := s.crafting.Unlocked(f.ID, f.TechLevel, r)
		canCraft := unlocked
		if unlocked {
			for _, req := range r.RequiredItems {
				if !f.Inventory.Has(req.ItemID, req.Quantity) {
					canCraft = false
					break
				}
			}
		}
		snap.Recipes = append(snap.Recipes, RecipeView{Recipe: r, Unlocked: unlocked, CanCraft: canCraft})
	}
	return snap
}

// Agents returns the live agents in insertion order (copies).
func (s *System) Agents() []Agent {
	out := make([]Agent, 0, len(s.agents))
	for _, a := range s.agents {
		cp := *a
		cp.Inventory = nil
		cp.ProposedPlan = nil
		cp.ActivePlan = nil
		out = append(out, cp)
	}
	return out
}

// FactionCount returns the number of extant factions.
func (s *System) FactionCount() int { return len(s.factions) }

// AgentCount returns the number of live agents.
func (s *System) AgentCount() int { return len(s.agents) }

// GetFactionSummary returns the view of one faction.
func (s *System) GetFactionSummary(id string) (FactionSummary, bool) {
	for _, sum := range s.FactionSummaries() {
		if sum.ID == id {
			return sum, true
		}
	}
	return FactionSummary{}, false
}

// SpeciesStats returns the latest species snapshots in their input order.
func (s *System) SpeciesStats() []SpeciesStat {
	out := make([]SpeciesStat, 0, len(s.speciesOrder))
	for _, id := range s.speciesOrder {
		out = append(out, s.speciesStats[id])
	}
	return out
}

// MentalLogs returns a copy of the recorded plan refreshes.
func (s *System) MentalLogs() []MentalLog {
	out := make([]MentalLog, len(s.mentalLogs))
	copy(out, s.mentalLogs)
	return out
}
