package cognition

import "sort"

// cooldownBase holds the base cooldown duration per intent, in ticks.
var cooldownBase = map[Intent]float64{
	IntentExplore:         18,
	IntentGather:          14,
	IntentHunt:            20,
	IntentBuild:           48,
	IntentFortify:         62,
	IntentMigrate:         120,
	IntentFarm:            34,
	IntentTrade:           30,
	IntentDefend:          38,
	IntentInvent:          44,
	IntentWrite:           54,
	IntentNegotiate:       34,
	IntentExpandTerritory: 80,
	IntentDomesticate:     72,
}

// CooldownManager tracks per-agent per-intent "available at" ticks so the
// intent scorer can penalize recently used dispositions.
type CooldownManager struct {
	until map[string]map[Intent]uint64
}

// NewCooldownManager creates an empty cooldown table.
func NewCooldownManager() *CooldownManager {
	return &CooldownManager{until: make(map[string]map[Intent]uint64)}
}

// MarkUsed starts the cooldown for an intent. Intensity scales the base
// duration within [0.35, 2.5]; the result is never under 3 ticks.
func (m *CooldownManager) MarkUsed(agentID string, intent Intent, tick uint64, intensity float64) {
	base := cooldownBase[intent]
	if intensity < 0.35 {
		intensity = 0.35
	}
	if intensity > 2.5 {
		intensity = 2.5
	}
	dur := base * intensity
	if dur < 3 {
		dur = 3
	}
	byIntent, ok := m.until[agentID]
	if !ok {
		byIntent = make(map[Intent]uint64)
		m.until[agentID] = byIntent
	}
	byIntent[intent] = tick + uint64(dur)
}

// GetPenalty returns the remaining cooldown fraction in [0,1].
func (m *CooldownManager) GetPenalty(agentID string, intent Intent, tick uint64) float64 {
	byIntent, ok := m.until[agentID]
	if !ok {
		return 0
	}
	until, ok := byIntent[intent]
	if !ok || tick >= until {
		return 0
	}
	base := cooldownBase[intent]
	if base <= 0 {
		return 0
	}
	p := float64(until-tick) / base
	if p > 1 {
		p = 1
	}
	return p
}

// Release removes all cooldowns for an agent (on death).
func (m *CooldownManager) Release(agentID string) {
	delete(m.until, agentID)
}

// CooldownState is the plain-data export for one agent.
type CooldownState struct {
	AgentID string            `json:"agent_id"`
	Until   map[string]uint64 `json:"until"`
}

// ExportState returns a deep copy of all cooldowns, sorted by agent id.
func (m *CooldownManager) ExportState() []CooldownState {
	ids := make([]string, 0, len(m.until))
	for id := range m.until {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]CooldownState, 0, len(ids))
	for _, id := range ids {
		until := make(map[string]uint64, len(m.until[id]))
		for intent, t := range m.until[id] {
			until[string(intent)] = t
		}
		out = append(out, CooldownState{AgentID: id, Until: until})
	}
	return out
}

// HydrateState restores the cooldown table.
func (m *CooldownManager) HydrateState(states []CooldownState) {
	m.until = make(map[string]map[Intent]uint64, len(states))
	for _, st := range states {
		byIntent := make(map[Intent]uint64, len(st.Until))
		for intent, t := range st.Until {
			byIntent[Intent(intent)] = t
		}
		m.until[st.AgentID] = byIntent
	}
}
