package civ

import (
	"github.com/HiddenPCOfficial/biotica/internal/culture"
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/language"
)

// Relation status values.
const (
	RelationNeutral = "neutral"
	RelationAlly    = "ally"
	RelationTrade   = "trade"
	RelationHostile = "hostile"
)

// Relation is one side of a diplomatic pair.
type Relation struct {
	Status    string  `json:"status"`
	Trust     float64 `json:"trust"`
	Tension   float64 `json:"tension"`
	Intensity float64 `json:"intensity"` // Contact intensity, 0..1
}

// Stockpile holds a faction's bulk materials.
type Stockpile struct {
	Food  float64 `json:"food"`
	Wood  float64 `json:"wood"`
	Stone float64 `json:"stone"`
	Ore   float64 `json:"ore"`
}

// Writing is a faction's script state.
type Writing struct {
	LiteracyLevel    int      `json:"literacy_level"` // 0..5
	SymbolSet        []string `json:"symbol_set"`
	WritingArtifacts []string `json:"writing_artifacts"` // Note ids
}

// KnowledgeMap holds the faction's discovered-world models as byte fields.
type KnowledgeMap struct {
	Discovered     []byte `json:"discovered"`
	FertilityModel []byte `json:"fertility_model"`
	HazardModel    []byte `json:"hazard_model"`
}

// Faction is one civilization.
type Faction struct {
	ID                string `json:"id"`
	Name              string `json:"name,omitempty"`
	Motto             string `json:"motto,omitempty"`
	CoreLaws          []string `json:"core_laws,omitempty"`
	FoundingSpeciesID string `json:"founding_species_id"`
	DominantSpeciesID string `json:"dominant_species_id"`
	EthnicityID       string `json:"ethnicity_id,omitempty"`
	EthnicityIDs      []string `json:"ethnicity_ids"`
	ReligionID        string `json:"religion_id,omitempty"`
	ReligionName      string `json:"religion_name,omitempty"`

	Culture           culture.Params       `json:"culture_params"`
	Strategy          culture.Strategy     `json:"adaptation_strategy"`
	DominantPractices []culture.Practice   `json:"dominant_practices"`
	State             culture.FactionState `json:"state"`

	TechLevel float64 `json:"tech_level"` // 1..12
	Writing   Writing `json:"writing"`

	HomeX int `json:"home_x"`
	HomeY int `json:"home_y"`

	Members   []string             `json:"members"` // Agent ids in insertion order
	Relations map[string]*Relation `json:"relations"`

	Knowledge KnowledgeMap     `json:"knowledge_map"`
	Stockpile Stockpile        `json:"stockpile"`
	Inventory *items.Inventory `json:"-"`

	Stress float64 `json:"stress"` // 0..1

	Comm *language.Communication `json:"communication"`

	CulturalIdentityLevel float64 `json:"cultural_identity_level"`
	IdentitySymbol        string  `json:"identity_symbol,omitempty"`
	SignificantEvents     int     `json:"significant_events"`

	FoundedAtTick        uint64 `json:"founded_at_tick"`
	LastDialogueTick     uint64 `json:"last_dialogue_tick"`
	LastChronicleTick    uint64 `json:"last_chronicle_tick"`
	LastCultureShiftTick uint64 `json:"last_culture_shift_tick"`
}

// Literacy is the faction's script proficiency, 0..5.
func (f *Faction) Literacy() int { return f.Writing.LiteracyLevel }

// RelationWith returns (creating if needed) the relation toward another
// faction.
func (f *Faction) RelationWith(otherID string) *Relation {
	r, ok := f.Relations[otherID]
	if !ok {
		r = &Relation{Status: RelationNeutral, Trust: 0.5, Tension: 0.28, Intensity: 0.2}
		f.Relations[otherID] = r
	}
	return r
}

// stockpileField maps the build-material ids onto stockpile fields.
func (f *Faction) stockpileField(id string) *float64 {
	switch id {
	case "food":
		return &f.Stockpile.Food
	case "wood":
		return &f.Stockpile.Wood
	case "stone":
		return &f.Stockpile.Stone
	case "ore", "iron_ore":
		return &f.Stockpile.Ore
	}
	return nil
}

// CountMaterial implements structures.MaterialStore over the stockpile.
func (f *Faction) CountMaterial(id string) int {
	if p := f.stockpileField(id); p != nil {
		return int(*p)
	}
	return f.Inventory.Count(id)
}

// ConsumeMaterial implements structures.MaterialStore; all-or-nothing.
func (f *Faction) ConsumeMaterial(id string, qty int) bool {
	if p := f.stockpileField(id); p != nil {
		if int(*p) < qty {
			return false
		}
		*p -= float64(qty)
		return true
	}
	return f.Inventory.Remove(id, qty) == qty
}

// CreditMaterial adds harvested material to the right store.
func (f *Faction) CreditMaterial(id string, qty int) {
	if p := f.stockpileField(id); p != nil {
		*p += float64(qty)
		return
	}
	f.Inventory.Add(id, qty)
}

// AddMember appends an agent id once.
func (f *Faction) AddMember(agentID string) {
	for _, id := range f.Members {
		if id == agentID {
			return
		}
	}
	f.Members = append(f.Members, agentID)
}

// RemoveMember deletes an agent id preserving order.
func (f *Faction) RemoveMember(agentID string) {
	for i, id := range f.Members {
		if id == agentID {
			f.Members = append(f.Members[:i], f.Members[i+1:]...)
			return
		}
	}
}

// AddEthnicity records an ethnicity id once, setting the primary ethnicity
// only if none is set.
func (f *Faction) AddEthnicity(ethnicityID string) {
	for _, id := range f.EthnicityIDs {
		if id == ethnicityID {
			return
		}
	}
	f.EthnicityIDs = append(f.EthnicityIDs, ethnicityID)
	if f.EthnicityID == "" {
		f.EthnicityID = ethnicityID
	}
}
