package civ

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/HiddenPCOfficial/biotica/internal/cognition"
	"github.com/HiddenPCOfficial/biotica/internal/culture"
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/language"
	"github.com/HiddenPCOfficial/biotica/internal/materials"
	"github.com/HiddenPCOfficial/biotica/internal/narrative"
	"github.com/HiddenPCOfficial/biotica/internal/resources"
	"github.com/HiddenPCOfficial/biotica/internal/rng"
	"github.com/HiddenPCOfficial/biotica/internal/structures"
	"github.com/HiddenPCOfficial/biotica/internal/territory"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// SpeciesStat is the per-tick snapshot of one creature species handed in by
// the ecology layer.
type SpeciesStat struct {
	SpeciesID        string  `json:"species_id"`
	CommonName       string  `json:"common_name,omitempty"`
	Name             string  `json:"name,omitempty"`
	Population       int     `json:"population"`
	Intelligence     float64 `json:"intelligence"`
	Vitality         float64 `json:"vitality"`
	EventPressure    float64 `json:"event_pressure"`
	IsIntelligent    bool    `json:"is_intelligent,omitempty"`
	LanguageLevel    float64 `json:"language_level,omitempty"`
	SocialComplexity float64 `json:"social_complexity,omitempty"`
	Stability        float64 `json:"stability"`
}

// Config holds the per-component knobs of the orchestrator.
type Config struct {
	GroundItemSpawnInterval uint64 `json:"ground_item_spawn_interval" yaml:"groundItemSpawnInterval"`
	GroundItemDecayAge      uint64 `json:"ground_item_decay_age" yaml:"groundItemDecayAge"`
	GroundItemDecayInterval uint64 `json:"ground_item_decay_interval" yaml:"groundItemDecayInterval"`
	FactionCap              int    `json:"faction_cap" yaml:"factionCap"`
	MetricsInterval         uint64 `json:"metrics_interval" yaml:"metricsInterval"`
	CultureInterval         uint64 `json:"culture_interval" yaml:"cultureInterval"`
	TerritoryInterval       uint64 `json:"territory_interval" yaml:"territoryInterval"`
	IdentityInterval        uint64 `json:"identity_interval" yaml:"identityInterval"`
	EthnicityInterval       uint64 `json:"ethnicity_interval" yaml:"ethnicityInterval"`
	RelationsInterval       uint64 `json:"relations_interval" yaml:"relationsInterval"`
	LinkValidationInterval  uint64 `json:"link_validation_interval" yaml:"linkValidationInterval"`
	ChronicleInterval       uint64 `json:"chronicle_interval" yaml:"chronicleInterval"`
	TechWindow              uint64 `json:"tech_window" yaml:"techWindow"`
}

// DefaultConfig returns the standard intervals.
func DefaultConfig() Config {
	return Config{
		GroundItemSpawnInterval: 24,
		GroundItemDecayAge:      2600,
		GroundItemDecayInterval: 90,
		FactionCap:              8,
		MetricsInterval:         10,
		CultureInterval:         culture.Interval,
		TerritoryInterval:       12,
		IdentityInterval:        culture.IdentityInterval,
		EthnicityInterval:       culture.EthnicityInterval,
		RelationsInterval:       30,
		LinkValidationInterval:  40,
		ChronicleInterval:       2000,
		TechWindow:              600,
	}
}

// Validate rejects nonsensical knob values before any state is built.
func (c Config) Validate() error {
	if c.FactionCap <= 0 {
		return fmt.Errorf("faction cap must be positive, got %d", c.FactionCap)
	}
	for name, v := range map[string]uint64{
		"ground item spawn interval": c.GroundItemSpawnInterval,
		"ground item decay interval": c.GroundItemDecayInterval,
		"metrics interval":           c.MetricsInterval,
		"culture interval":           c.CultureInterval,
		"territory interval":         c.TerritoryInterval,
		"identity interval":          c.IdentityInterval,
		"ethnicity interval":         c.EthnicityInterval,
		"relations interval":         c.RelationsInterval,
		"link validation interval":   c.LinkValidationInterval,
		"chronicle interval":         c.ChronicleInterval,
	} {
		if v == 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

// System owns all mutable civilization state. External readers get snapshot
// copies only.
type System struct {
	grid        *world.Grid
	mats        *materials.Catalog
	itemCatalog *items.Catalog
	crafting    *items.CraftingEvolution
	resources   *resources.System
	structures  *structures.System
	territory   *territory.System
	intention   *cognition.IntentionSystem
	plans       *cognition.PlanSystem
	decisions   *cognition.DecisionSystem
	cooldowns   *cognition.CooldownManager
	ethnicities *culture.EthnicitySystem
	religions   *culture.ReligionSystem
	queue       *narrative.Queue
	rng         *rng.Rng
	cfg         Config

	agents     []*Agent
	agentIndex map[string]*Agent
	tileAgents map[int][]string

	factions     []*Faction
	factionIndex map[string]*Faction

	groundItems []*GroundItemStack
	groundIndex map[string]*GroundItemStack

	notes      []Note
	timeline   []TimelineEntry
	dialogues  []Dialogue
	metrics    []MetricPoint
	mentalLogs []MentalLog
	relHistory map[string][]RelationPoint

	speciesStats map[string]SpeciesStat
	speciesOrder []string

	tick uint64

	nextAgentID    uint64
	nextFactionID  uint64
	nextDialogueID uint64
	nextNoteID     uint64
	nextGroundID   uint64
	nextEntryID    uint64
}

// Deps bundles the immutable collaborators of a System.
type Deps struct {
	Grid        *world.Grid
	Materials   *materials.Catalog
	Items       *items.Catalog
	Resources   *resources.System
	Structures  *structures.System
	Territory   *territory.System
	Queue       *narrative.Queue
}

// NewSystem wires the orchestrator. The rng is owned by the system and seeded
// from the grid seed.
func NewSystem(deps Deps, cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Grid == nil || deps.Materials == nil || deps.Items == nil {
		return nil, fmt.Errorf("civ system requires grid and catalogs")
	}
	if deps.Resources == nil {
		deps.Resources = resources.NewSystem(deps.Grid, deps.Materials, resources.Config{TreeDensityMultiplier: 1})
	}
	if deps.Structures == nil {
		deps.Structures = structures.NewSystem(deps.Grid.Width)
	}
	if deps.Territory == nil {
		deps.Territory = territory.NewSystem(deps.Grid.Width, deps.Grid.Height)
	}
	if deps.Queue == nil {
		deps.Queue = narrative.NewQueue(256)
	}
	return &System{
		grid:         deps.Grid,
		mats:         deps.Materials,
		itemCatalog:  deps.Items,
		crafting:     items.NewCraftingEvolution(deps.Items),
		resources:    deps.Resources,
		structures:   deps.Structures,
		territory:    deps.Territory,
		intention:    cognition.NewIntentionSystem(),
		plans:        cognition.NewPlanSystem(),
		decisions:    cognition.NewDecisionSystem(),
		cooldowns:    cognition.NewCooldownManager(),
		ethnicities:  culture.NewEthnicitySystem(),
		religions:    culture.NewReligionSystem(),
		queue:        deps.Queue,
		rng:          rng.New(deps.Grid.Seed ^ 0x63697673),
		cfg:          cfg,
		agentIndex:   make(map[string]*Agent),
		tileAgents:   make(map[int][]string),
		factionIndex: make(map[string]*Faction),
		groundIndex:  make(map[string]*GroundItemStack),
		relHistory:   make(map[string][]RelationPoint),
		speciesStats: make(map[string]SpeciesStat),
		nextAgentID:  1,
		nextFactionID: 1,
		nextDialogueID: 1,
		nextNoteID:   1,
		nextGroundID: 1,
		nextEntryID:  1,
	}, nil
}

// Tick returns the last processed tick.
func (s *System) Tick() uint64 { return s.tick }

// Queue returns the narrative request queue.
func (s *System) Queue() *narrative.Queue { return s.queue }

// Territory returns the territory system for read-only use.
func (s *System) Territory() *territory.System { return s.territory }

// Resources returns the resource node system for read-only use.
func (s *System) Resources() *resources.System { return s.resources }

// Structures returns the structure system for read-only use.
func (s *System) Structures() *structures.System { return s.structures }

// Rng exposes the generator state for determinism checks.
func (s *System) Rng() *rng.Rng { return s.rng }

// Step advances the civilization by one tick. The ordering inside this
// method is part of the observable contract.
func (s *System) Step(tick uint64, stats []SpeciesStat) {
	s.tick = tick
	s.grid.Tick = tick

	// 0. Apply narrative responses delivered since the last tick.
	s.applyNarrativeResponses()

	// 1. Refresh species statistics.
	s.speciesOrder = s.speciesOrder[:0]
	for _, st := range stats {
		s.speciesStats[st.SpeciesID] = st
		s.speciesOrder = append(s.speciesOrder, st.SpeciesID)
	}

	// 2. Civilization foundations.
	s.tryFoundations()

	// 3. Per-faction upkeep.
	for _, f := range s.factions {
		s.factionUpkeep(f)
	}

	// 4. Per-agent pass in insertion order. Newborns appended during the
	// pass are not processed until the next tick.
	count := len(s.agents)
	for i := 0; i < count; i++ {
		a := s.agents[i]
		if a.Alive {
			s.agentTick(a)
		}
	}
	s.reapDead()

	// 5. Building work.
	builders := 0
	for _, a := range s.agents {
		if a.Alive && a.Role == RoleBuilder {
			builders++
		}
	}
	for _, id := range s.structures.Step(tick, 8+builders) {
		st, _ := s.structures.Get(id)
		if st != nil {
			s.addTimeline("building", st.FactionID, fmt.Sprintf("%s completed at (%d,%d)", st.Type, st.X, st.Y))
		}
	}

	// Node regeneration rides the tick with a small budget.
	s.resources.Regenerate(32)

	// 6. Periodic subsystems on fixed moduli.
	if tick%s.cfg.RelationsInterval == 0 {
		s.stepRelations()
	}
	if tick%s.cfg.CultureInterval == 0 {
		s.stepCulture()
	}
	if tick%s.cfg.TerritoryInterval == 0 {
		s.stepTerritory()
	}
	if tick%s.cfg.EthnicityInterval == 0 {
		s.stepEthnicities()
	}
	if tick%s.cfg.IdentityInterval == 0 {
		s.stepIdentity()
	}
	if tick%s.cfg.LinkValidationInterval == 0 {
		s.validateEntityLinks()
	}
	if tick%s.cfg.MetricsInterval == 0 {
		s.sampleMetrics()
	}

	// 7. Narrative triggers.
	s.enqueueChronicles()
}

// tryFoundations spawns new factions for qualifying species.
func (s *System) tryFoundations() {
	if len(s.factions) >= s.cfg.FactionCap {
		return
	}
	for _, speciesID := range s.speciesOrder {
		st := s.speciesStats[speciesID]
		if st.Population < 24 || st.Intelligence < 0.42 || st.Stability < 0.53 {
			continue
		}
		if !(st.IsIntelligent || st.LanguageLevel >= 0.22 || st.SocialComplexity >= 0.24) {
			continue
		}
		if s.speciesHasFaction(speciesID) {
			continue
		}
		if len(s.factions) >= s.cfg.FactionCap {
			return
		}
		s.foundFaction(st)
	}
}

func (s *System) speciesHasFaction(speciesID string) bool {
	for _, f := range s.factions {
		if f.FoundingSpeciesID == speciesID {
			return true
		}
	}
	return false
}

// foundFaction places a new faction on a fertile, low-hazard tile.
func (s *System) foundFaction(st SpeciesStat) {
	homeX, homeY, ok := s.findFoundingTile()
	if !ok {
		return
	}

	id := fmt.Sprintf("faction-%d", s.nextFactionID)
	s.nextFactionID++

	f := &Faction{
		ID:                id,
		FoundingSpeciesID: st.SpeciesID,
		DominantSpeciesID: st.SpeciesID,
		Culture: culture.Params{
			Collectivism: 0.4, Aggression: 0.25, Spirituality: 0.3,
			Curiosity: 0.45, Tradition: 0.3, TradeAffinity: 0.35,
			TabooHazard: 0.3, HierarchyLevel: 0.25,
			EnvironmentalAdaptation: 0.35, TechOrientation: 0.3,
		},
		Strategy:  culture.StrategyBalanced,
		State:     culture.StateTribe,
		TechLevel: 1 + st.Intelligence*1.5,
		HomeX:     homeX,
		HomeY:     homeY,
		Relations: make(map[string]*Relation),
		Knowledge: KnowledgeMap{
			Discovered:     make([]byte, s.grid.Width*s.grid.Height),
			FertilityModel: make([]byte, s.grid.Width*s.grid.Height),
			HazardModel:    make([]byte, s.grid.Width*s.grid.Height),
		},
		Stockpile:     Stockpile{Food: 20, Wood: 10, Stone: 4},
		Inventory:     items.NewInventory(),
		Comm:          language.NewCommunication(s.grid.Seed, s.rng),
		FoundedAtTick: s.tick,
	}
	s.factions = append(s.factions, f)
	s.factionIndex[id] = f

	members := int(math.Floor(float64(st.Population) * 0.18))
	if members < 8 {
		members = 8
	}
	if members > 18 {
		members = 18
	}
	for i := 0; i < members; i++ {
		role := Roles[i%len(Roles)]
		if i == 0 {
			role = RoleLeader
		}
		s.spawnAgent(f, st.SpeciesID, role, homeX, homeY, 0)
	}

	// The founding faction has seen its stockpiled basics.
	for _, itemID := range []string{"wood", "stone", "berries", "fiber"} {
		s.crafting.Observe(id, itemID)
	}

	s.addTimeline("foundation", id, fmt.Sprintf("a %s civilization takes root at (%d,%d)", st.SpeciesID, homeX, homeY))
	slog.Info("faction founded", "faction", id, "species", st.SpeciesID, "members", members, "home_x", homeX, "home_y", homeY)
}

// findFoundingTile samples up to 120 tiles for fertile, safe ground.
func (s *System) findFoundingTile() (int, int, bool) {
	for try := 0; try < 120; try++ {
		x := s.rng.NextInt(s.grid.Width)
		y := s.rng.NextInt(s.grid.Height)
		if !s.grid.IsHabitable(x, y) {
			continue
		}
		i := s.grid.Index(x, y)
		if s.grid.Fertility[i] > 85 && s.grid.Hazard[i] < 70 {
			return x, y, true
		}
	}
	return 0, 0, false
}

// spawnAgent creates one agent and registers it in all indices.
func (s *System) spawnAgent(f *Faction, speciesID, role string, x, y int, generation int) *Agent {
	id := fmt.Sprintf("agent-%d", s.nextAgentID)
	s.nextAgentID++

	a := &Agent{
		ID:             id,
		SpeciesID:      speciesID,
		CivilizationID: f.ID,
		FactionID:      f.ID,
		X:              x,
		Y:              y,
		Energy:         120,
		Hydration:      70,
		Generation:     generation,
		Role:           role,
		Traits: Traits{
			Intelligence: s.rng.RangeFloat(0.2, 0.9),
			Sociability:  s.rng.RangeFloat(0.1, 0.9),
			Spirituality: s.rng.RangeFloat(0.1, 0.8),
			Bravery:      s.rng.RangeFloat(0.1, 0.9),
			Diligence:    s.rng.RangeFloat(0.2, 0.9),
		},
		Inventory: items.NewInventory(),
		Vitality:  1,
		Mental: MentalState{
			LoyaltyToFaction: 0.7,
			EmotionalTone:    cognition.ToneCalm,
		},
		BornTick: s.tick,
		Alive:    true,
	}
	a.MaxCarryWeight = 28 + a.Traits.Diligence*22

	s.agents = append(s.agents, a)
	s.agentIndex[id] = a
	s.addToTile(a)
	f.AddMember(id)
	return a
}

// addToTile registers an agent in the spatial index.
func (s *System) addToTile(a *Agent) {
	i := s.grid.Index(a.X, a.Y)
	s.tileAgents[i] = append(s.tileAgents[i], a.ID)
}

// removeFromTile removes an agent from the spatial index.
func (s *System) removeFromTile(a *Agent) {
	i := s.grid.Index(a.X, a.Y)
	list := s.tileAgents[i]
	for k, id := range list {
		if id == a.ID {
			s.tileAgents[i] = append(list[:k], list[k+1:]...)
			break
		}
	}
	if len(s.tileAgents[i]) == 0 {
		delete(s.tileAgents, i)
	}
}

// addTimeline appends a timeline entry with a deterministic id.
func (s *System) addTimeline(category, factionID, description string) {
	entry := TimelineEntry{
		ID:          fmt.Sprintf("entry-%d", s.nextEntryID),
		Tick:        s.tick,
		Category:    category,
		FactionID:   factionID,
		Description: description,
	}
	s.nextEntryID++
	s.timeline = appendBounded(s.timeline, entry, timelineCap)
}
