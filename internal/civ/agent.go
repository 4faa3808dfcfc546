// Package civ is the civilization orchestrator: it owns all mutable agent and
// faction state and advances it one deterministic tick at a time.
package civ

import (
	"github.com/HiddenPCOfficial/biotica/internal/cognition"
	"github.com/HiddenPCOfficial/biotica/internal/items"
)

// Agent roles.
const (
	RoleScout   = "Scout"
	RoleFarmer  = "Farmer"
	RoleBuilder = "Builder"
	RoleLeader  = "Leader"
	RoleScribe  = "Scribe"
	RoleGuard   = "Guard"
	RoleTrader  = "Trader"
	RoleElder   = "Elder"
)

// Roles lists every role in stable order.
var Roles = []string{
	RoleScout, RoleFarmer, RoleBuilder, RoleLeader,
	RoleScribe, RoleGuard, RoleTrader, RoleElder,
}

// Traits are an agent's innate dispositions, each in [0,1].
type Traits struct {
	Intelligence float64 `json:"intelligence"`
	Sociability  float64 `json:"sociability"`
	Spirituality float64 `json:"spirituality"`
	Bravery      float64 `json:"bravery"`
	Diligence    float64 `json:"diligence"`
}

// EquipmentSlots holds the equipped item per slot.
type EquipmentSlots struct {
	MainHand string `json:"main_hand,omitempty"`
	OffHand  string `json:"off_hand,omitempty"`
	Body     string `json:"body,omitempty"`
	Utility  string `json:"utility,omitempty"`
}

// MentalState is the agent's inner bookkeeping surfaced to observers.
type MentalState struct {
	StressLevel      float64        `json:"stress_level"`
	LoyaltyToFaction float64        `json:"loyalty_to_faction"`
	LastReasonCodes  []string       `json:"last_reason_codes"`
	EmotionalTone    cognition.Tone `json:"emotional_tone"`
}

// Agent is one creature participating in a civilization.
type Agent struct {
	ID             string `json:"id"`
	SpeciesID      string `json:"species_id"`
	CivilizationID string `json:"civilization_id"`
	EthnicityID    string `json:"ethnicity_id,omitempty"`
	FactionID      string `json:"faction_id"`

	X int `json:"x"`
	Y int `json:"y"`

	Energy     float64 `json:"energy"`
	Hydration  float64 `json:"hydration"` // 0..100
	Age        int     `json:"age"`
	Generation int     `json:"generation"`

	Role   string `json:"role"`
	Traits Traits `json:"traits"`

	Inventory          *items.Inventory `json:"-"`
	Equipment          EquipmentSlots   `json:"equipment_slots"`
	EquippedItemID     string           `json:"equipped_item_id,omitempty"`
	MaxCarryWeight     float64          `json:"max_carry_weight"`
	CurrentCarryWeight float64          `json:"current_carry_weight"`

	CurrentIntent cognition.Intent `json:"current_intent"`
	CurrentGoal   cognition.Goal   `json:"current_goal"`
	GoalTargetX   int              `json:"goal_target_x"`
	GoalTargetY   int              `json:"goal_target_y"`
	ProposedPlan  *cognition.Plan  `json:"proposed_plan,omitempty"`
	ActivePlan    *cognition.Plan  `json:"active_plan,omitempty"`

	Mental MentalState `json:"mental_state"`

	Vitality     float64 `json:"vitality"`
	Hunger       float64 `json:"hunger"`
	HazardStress float64 `json:"hazard_stress"`

	LastDecisionTick uint64 `json:"last_decision_tick"`
	LastTalkTick     uint64 `json:"last_talk_tick"`
	BornTick         uint64 `json:"born_tick"`
	Alive            bool   `json:"alive"`
}

// WaterNeed derives the agent's water pressure from hydration.
func (a *Agent) WaterNeed() float64 {
	n := 1 - a.Hydration/100
	if n < 0 {
		n = 0
	}
	if n > 1 {
		n = 1
	}
	return n
}

// PutItem inserts up to qty units, refusing what would exceed the carry
// limit. Returns how many units were actually stored. The carry-weight
// invariant (CurrentCarryWeight = Σ unit weight × quantity) holds on exit.
func (a *Agent) PutItem(catalog *items.Catalog, itemID string, qty int) int {
	if qty <= 0 {
		return 0
	}
	unit := catalog.UnitWeight(itemID)
	stored := qty
	if unit > 0 {
		room := a.MaxCarryWeight - a.CurrentCarryWeight
		fit := int(room / unit)
		if fit < stored {
			stored = fit
		}
	}
	if stored <= 0 {
		return 0
	}
	a.Inventory.Add(itemID, stored)
	a.CurrentCarryWeight += unit * float64(stored)
	return stored
}

// TakeItem removes up to qty units and returns how many were removed,
// keeping the carry weight in sync.
func (a *Agent) TakeItem(catalog *items.Catalog, itemID string, qty int) int {
	removed := a.Inventory.Remove(itemID, qty)
	if removed > 0 {
		a.CurrentCarryWeight -= catalog.UnitWeight(itemID) * float64(removed)
		if a.CurrentCarryWeight < 0 {
			a.CurrentCarryWeight = 0
		}
	}
	return removed
}

// RecomputeCarryWeight rebuilds the cached weight from the inventory.
func (a *Agent) RecomputeCarryWeight(catalog *items.Catalog) {
	a.CurrentCarryWeight = a.Inventory.TotalWeight(catalog)
}

// ToolTags collects the tool tags of the equipped main-hand item.
func (a *Agent) ToolTags(catalog *items.Catalog) []string {
	if a.Equipment.MainHand == "" {
		return nil
	}
	it, ok := catalog.Get(a.Equipment.MainHand)
	if !ok {
		return nil
	}
	return it.ToolTags
}

// InventoryRichness is a 0..1 measure of how loaded the agent is.
func (a *Agent) InventoryRichness() float64 {
	if a.MaxCarryWeight <= 0 {
		return 0
	}
	r := a.CurrentCarryWeight / a.MaxCarryWeight
	if r > 1 {
		r = 1
	}
	return r
}
