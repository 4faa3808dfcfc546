package civ

import (
	"fmt"

	"github.com/HiddenPCOfficial/biotica/internal/cognition"
	"github.com/HiddenPCOfficial/biotica/internal/culture"
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/language"
)

// AgentState is the plain-data export of one agent.
type AgentState struct {
	Agent     Agent           `json:"agent"`
	Inventory []items.Stack   `json:"inventory"`
	Plan      *cognition.Plan `json:"plan,omitempty"`
}

// FactionState is the plain-data export of one faction.
type FactionState struct {
	Faction     Faction        `json:"faction"`
	Inventory   []items.Stack  `json:"inventory"`
	Comm        language.State `json:"communication"`
	Discovered  []int          `json:"discovered"`
	Fertility   []int          `json:"fertility_model"`
	HazardModel []int          `json:"hazard_model"`
}

// State is the plain-data export of the whole orchestrator.
type State struct {
	Tick     uint64 `json:"tick"`
	RngState uint32 `json:"rng_state"`

	Agents   []AgentState   `json:"agents"`
	Factions []FactionState `json:"factions"`

	GroundItems []GroundItemStack          `json:"ground_items"`
	Notes       []Note                     `json:"notes"`
	Timeline    []TimelineEntry            `json:"timeline"`
	Dialogues   []Dialogue                 `json:"dialogues"`
	Metrics     []MetricPoint              `json:"metrics"`
	MentalLogs  []MentalLog                `json:"mental_logs"`
	RelHistory  map[string][]RelationPoint `json:"relation_history"`

	Ethnicities     []culture.Ethnicity `json:"ethnicities"`
	NextEthnicityID uint64              `json:"next_ethnicity_id"`
	Religions       []culture.Religion  `json:"religions"`
	NextReligionID  uint64              `json:"next_religion_id"`

	Crafting  []items.CraftState        `json:"crafting"`
	Cooldowns []cognition.CooldownState `json:"cooldowns"`

	NextAgentID    uint64 `json:"next_agent_id"`
	NextFactionID  uint64 `json:"next_faction_id"`
	NextDialogueID uint64 `json:"next_dialogue_id"`
	NextNoteID     uint64 `json:"next_note_id"`
	NextGroundID   uint64 `json:"next_ground_id"`
	NextEntryID    uint64 `json:"next_entry_id"`
}

// ExportState returns a deep plain-data copy of all mutable civ state. The
// intent/goal reward tables are transient and intentionally not persisted.
func (s *System) ExportState() State {
	st := State{
		Tick:           s.tick,
		RngState:       s.rng.State(),
		RelHistory:     make(map[string][]RelationPoint, len(s.relHistory)),
		NextAgentID:    s.nextAgentID,
		NextFactionID:  s.nextFactionID,
		NextDialogueID: s.nextDialogueID,
		NextNoteID:     s.nextNoteID,
		NextGroundID:   s.nextGroundID,
		NextEntryID:    s.nextEntryID,
	}

	for _, a := range s.agents {
		cp := *a
		cp.Inventory = nil
		as := AgentState{Agent: cp}
		if a.Inventory != nil {
			as.Inventory = a.Inventory.ExportState()
		}
		if a.ActivePlan != nil {
			planCopy := *a.ActivePlan
			planCopy.Steps = append([]cognition.PlanStep(nil), a.ActivePlan.Steps...)
			as.Plan = &planCopy
		}
		as.Agent.ProposedPlan = nil
		as.Agent.ActivePlan = nil
		st.Agents = append(st.Agents, as)
	}

	for _, f := range s.factions {
		cp := *f
		cp.Inventory = nil
		cp.Comm = nil
		cp.Knowledge = KnowledgeMap{}
		cp.Members = append([]string(nil), f.Members...)
		cp.EthnicityIDs = append([]string(nil), f.EthnicityIDs...)
		cp.CoreLaws = append([]string(nil), f.CoreLaws...)
		cp.DominantPractices = append([]culture.Practice(nil), f.DominantPractices...)
		cp.Writing.SymbolSet = append([]string(nil), f.Writing.SymbolSet...)
		cp.Writing.WritingArtifacts = append([]string(nil), f.Writing.WritingArtifacts...)
		cp.Relations = make(map[string]*Relation, len(f.Relations))
		for id, r := range f.Relations {
			rc := *r
			cp.Relations[id] = &rc
		}
		st.Factions = append(st.Factions, FactionState{
			Faction:     cp,
			Inventory:   f.Inventory.ExportState(),
			Comm:        f.Comm.ExportState(),
			Discovered:  bytesToInts(f.Knowledge.Discovered),
			Fertility:   bytesToInts(f.Knowledge.FertilityModel),
			HazardModel: bytesToInts(f.Knowledge.HazardModel),
		})
	}

	for _, g := range s.groundItems {
		st.GroundItems = append(st.GroundItems, *g)
	}
	st.Notes = append([]Note(nil), s.notes...)
	st.Timeline = append([]TimelineEntry(nil), s.timeline...)
	st.Dialogues = append([]Dialogue(nil), s.dialogues...)
	st.Metrics = append([]MetricPoint(nil), s.metrics...)
	st.MentalLogs = append([]MentalLog(nil), s.mentalLogs...)
	for k, v := range s.relHistory {
		st.RelHistory[k] = append([]RelationPoint(nil), v...)
	}

	st.Ethnicities, st.NextEthnicityID = s.ethnicities.ExportState()
	st.Religions, st.NextReligionID = s.religions.ExportState()
	st.Crafting = s.crafting.ExportState()
	st.Cooldowns = s.cooldowns.ExportState()

	return st
}

// HydrateState replaces all mutable civ state from an export. A corrupt
// snapshot is refused without touching the current state.
func (s *System) HydrateState(st State) error {
	n := s.grid.Width * s.grid.Height
	for _, fs := range st.Factions {
		if len(fs.Discovered) != n || len(fs.Fertility) != n || len(fs.HazardModel) != n {
			return fmt.Errorf("faction %s knowledge fields do not match the grid", fs.Faction.ID)
		}
	}
	for _, as := range st.Agents {
		if !s.grid.InBounds(as.Agent.X, as.Agent.Y) {
			return fmt.Errorf("agent %s position (%d,%d) out of bounds", as.Agent.ID, as.Agent.X, as.Agent.Y)
		}
	}

	s.tick = st.Tick
	s.rng.SetState(st.RngState)

	s.agents = nil
	s.agentIndex = make(map[string]*Agent, len(st.Agents))
	s.tileAgents = make(map[int][]string)
	for _, as := range st.Agents {
		a := as.Agent
		a.Inventory = items.HydrateInventory(as.Inventory)
		if as.Plan != nil {
			planCopy := *as.Plan
			planCopy.Steps = append([]cognition.PlanStep(nil), as.Plan.Steps...)
			a.ActivePlan = &planCopy
		}
		a.RecomputeCarryWeight(s.itemCatalog)
		ap := a
		s.agents = append(s.agents, &ap)
		s.agentIndex[ap.ID] = &ap
		s.addToTile(&ap)
	}

	s.factions = nil
	s.factionIndex = make(map[string]*Faction, len(st.Factions))
	for _, fs := range st.Factions {
		f := fs.Faction
		f.Inventory = items.HydrateInventory(fs.Inventory)
		f.Comm = language.HydrateState(fs.Comm)
		f.Knowledge = KnowledgeMap{
			Discovered:     make([]byte, n),
			FertilityModel: make([]byte, n),
			HazardModel:    make([]byte, n),
		}
		intsToBytes(fs.Discovered, f.Knowledge.Discovered)
		intsToBytes(fs.Fertility, f.Knowledge.FertilityModel)
		intsToBytes(fs.HazardModel, f.Knowledge.HazardModel)
		if f.Relations == nil {
			f.Relations = make(map[string]*Relation)
		}
		fp := f
		s.factions = append(s.factions, &fp)
		s.factionIndex[fp.ID] = &fp
	}

	s.groundItems = nil
	s.groundIndex = make(map[string]*GroundItemStack, len(st.GroundItems))
	for _, g := range st.GroundItems {
		if g.Quantity <= 0 {
			continue
		}
		gp := g
		s.groundItems = append(s.groundItems, &gp)
		s.groundIndex[groundKey(gp.ItemID, gp.X, gp.Y, gp.NaturalSpawn)] = &gp
	}

	s.notes = append([]Note(nil), st.Notes...)
	s.timeline = append([]TimelineEntry(nil), st.Timeline...)
	s.dialogues = append([]Dialogue(nil), st.Dialogues...)
	s.metrics = append([]MetricPoint(nil), st.Metrics...)
	s.mentalLogs = append([]MentalLog(nil), st.MentalLogs...)
	s.relHistory = make(map[string][]RelationPoint, len(st.RelHistory))
	for k, v := range st.RelHistory {
		s.relHistory[k] = append([]RelationPoint(nil), v...)
	}

	s.ethnicities.HydrateState(st.Ethnicities, st.NextEthnicityID)
	s.religions.HydrateState(st.Religions, st.NextReligionID)
	s.crafting.HydrateState(st.Crafting)
	s.cooldowns.HydrateState(st.Cooldowns)

	s.nextAgentID = nonZero(st.NextAgentID)
	s.nextFactionID = nonZero(st.NextFactionID)
	s.nextDialogueID = nonZero(st.NextDialogueID)
	s.nextNoteID = nonZero(st.NextNoteID)
	s.nextGroundID = nonZero(st.NextGroundID)
	s.nextEntryID = nonZero(st.NextEntryID)

	return nil
}

func nonZero(v uint64) uint64 {
	if v == 0 {
		return 1
	}
	return v
}

func bytesToInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func intsToBytes(src []int, dst []byte) {
	for i, v := range src {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		dst[i] = byte(v)
	}
}
