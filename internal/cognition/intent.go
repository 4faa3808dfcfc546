// Package cognition implements the two-layer agent mind: strategic intents
// resolved into plans, a per-tick tactical decision fallback, cooldown
// bookkeeping, and plan-bound dialogue lines.
package cognition

// Intent is an agent's strategic disposition.
type Intent string

const (
	IntentExplore         Intent = "explore"
	IntentGather          Intent = "gather"
	IntentFarm            Intent = "farm"
	IntentBuild           Intent = "build"
	IntentFortify         Intent = "fortify"
	IntentMigrate         Intent = "migrate"
	IntentTrade           Intent = "trade"
	IntentDefend          Intent = "defend"
	IntentInvent          Intent = "invent"
	IntentWrite           Intent = "write"
	IntentNegotiate       Intent = "negotiate"
	IntentExpandTerritory Intent = "expand_territory"
	IntentDomesticate     Intent = "domesticate_species"
	IntentHunt            Intent = "hunt"
)

// Intents lists every intent in stable order.
var Intents = []Intent{
	IntentExplore, IntentGather, IntentFarm, IntentBuild, IntentFortify,
	IntentMigrate, IntentTrade, IntentDefend, IntentInvent, IntentWrite,
	IntentNegotiate, IntentExpandTerritory, IntentDomesticate, IntentHunt,
}

// Goal is the per-tick tactical action an agent performs.
type Goal string

const (
	GoalExplore   Goal = "Explore"
	GoalGather    Goal = "Gather"
	GoalBuild     Goal = "Build"
	GoalFarm      Goal = "Farm"
	GoalDefend    Goal = "Defend"
	GoalTrade     Goal = "Trade"
	GoalTalk      Goal = "Talk"
	GoalWorship   Goal = "Worship"
	GoalPickItem  Goal = "PickItem"
	GoalUseItem   Goal = "UseItem"
	GoalCraftItem Goal = "CraftItem"
	GoalEquipItem Goal = "EquipItem"
	GoalWrite     Goal = "Write"
)

// Goals lists every goal in stable order.
var Goals = []Goal{
	GoalExplore, GoalGather, GoalBuild, GoalFarm, GoalDefend, GoalTrade,
	GoalTalk, GoalWorship, GoalPickItem, GoalUseItem, GoalCraftItem,
	GoalEquipItem, GoalWrite,
}

// Tone is the emotional register derived from perception.
type Tone string

const (
	ToneCalm    Tone = "calm"
	ToneFocused Tone = "focused"
	ToneUrgent  Tone = "urgent"
	ToneAlarmed Tone = "alarmed"
)

// Perception is the agent's view of itself and its surroundings for one
// decision, all values normalized.
type Perception struct {
	Hunger            float64
	WaterNeed         float64
	Hazard            float64
	Fertility         float64
	Humidity          float64
	NearResourceNode  bool
	NearGroundItem    bool
	InventoryRichness float64
	CanBuild          bool
	CanCraft          bool
	CanTalk           bool
	HasTradePartner   bool
	HasUsableItem     bool
	HasEquipableItem  bool
	Literacy          int
}

// CultureView is the slice of faction culture the mind reads.
type CultureView struct {
	Collectivism  float64
	Aggression    float64
	Spirituality  float64
	Curiosity     float64
	Tradition     float64
	TradeAffinity float64
}

// DeriveTone maps perception to the emotional register.
func DeriveTone(p Perception) Tone {
	switch {
	case p.Hazard >= 0.64:
		return ToneAlarmed
	case p.Hunger >= 0.7 || p.WaterNeed >= 0.72:
		return ToneUrgent
	case p.Fertility > 0.35 && p.InventoryRichness > 0.3:
		return ToneFocused
	default:
		return ToneCalm
	}
}

// NeedReasonCodes produces the deterministic needs-based reason codes.
func NeedReasonCodes(p Perception) []string {
	var codes []string
	if p.Hunger > 0.55 {
		codes = append(codes, "SEEK_FOOD")
	}
	if p.WaterNeed > 0.55 {
		codes = append(codes, "SEEK_WATER")
	}
	if p.Hazard > 0.42 {
		codes = append(codes, "AVOID_HAZARD")
	}
	return codes
}

// intentReasonCodes names the intent-specific code appended after the
// needs-based ones.
var intentReasonCodes = map[Intent]string{
	IntentExplore:         "SCOUT_UNKNOWN",
	IntentGather:          "STOCK_FOOD",
	IntentFarm:            "TEND_LAND",
	IntentBuild:           "RAISE_STRUCTURE",
	IntentFortify:         "HOLD_BORDER",
	IntentMigrate:         "SEEK_BETTER_LAND",
	IntentTrade:           "SEEK_EXCHANGE",
	IntentDefend:          "GUARD_KIN",
	IntentInvent:          "TRY_NEW_CRAFT",
	IntentWrite:           "RECORD_KNOWLEDGE",
	IntentNegotiate:       "SEEK_ACCORD",
	IntentExpandTerritory: "PUSH_FRONTIER",
	IntentDomesticate:     "TAME_BEAST",
	IntentHunt:            "CHASE_PREY",
}
