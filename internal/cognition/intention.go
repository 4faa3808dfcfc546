package cognition

import (
	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

// rlLearningRate and bounds for the per-agent reward tables.
const (
	rlLearningRate = 0.07
	rlMin          = -1.4
	rlMax          = 1.4
)

// cooldownWeight is how hard a running cooldown suppresses an intent.
const cooldownWeight = 1.18

// roleIntentBias gives each role its standing dispositions.
var roleIntentBias = map[string]map[Intent]float64{
	"Scout":  {IntentExplore: 0.34, IntentHunt: 0.14, IntentExpandTerritory: 0.1},
	"Farmer": {IntentFarm: 0.36, IntentGather: 0.2},
	"Builder": {IntentBuild: 0.38, IntentFortify: 0.16},
	"Leader": {IntentNegotiate: 0.22, IntentExpandTerritory: 0.18, IntentDefend: 0.1},
	"Scribe": {IntentWrite: 0.4, IntentInvent: 0.14},
	"Guard":  {IntentDefend: 0.36, IntentFortify: 0.18},
	"Trader": {IntentTrade: 0.4, IntentNegotiate: 0.16},
	"Elder":  {IntentWrite: 0.16, IntentNegotiate: 0.14, IntentDomesticate: 0.1},
}

// IntentChoice is the outcome of one intent selection.
type IntentChoice struct {
	Intent      Intent
	Score       float64
	ReasonCodes []string
	Tone        Tone
}

// IntentionSystem scores the fourteen intents per agent and maintains the
// per-agent reinforcement tables.
type IntentionSystem struct {
	rl map[string]map[Intent]float64
}

// NewIntentionSystem creates an empty intention scorer.
func NewIntentionSystem() *IntentionSystem {
	return &IntentionSystem{rl: make(map[string]map[Intent]float64)}
}

func (s *IntentionSystem) table(agentID string) map[Intent]float64 {
	t, ok := s.rl[agentID]
	if !ok {
		t = make(map[Intent]float64)
		s.rl[agentID] = t
	}
	return t
}

// ApplyReward folds an action outcome into the agent's intent table.
func (s *IntentionSystem) ApplyReward(agentID string, intent Intent, reward float64) {
	t := s.table(agentID)
	v := t[intent] + rlLearningRate*reward
	if v < rlMin {
		v = rlMin
	}
	if v > rlMax {
		v = rlMax
	}
	t[intent] = v
}

// Release drops the table for a dead agent.
func (s *IntentionSystem) Release(agentID string) {
	delete(s.rl, agentID)
}

// featureScore computes the perception-driven term for one intent.
func featureScore(intent Intent, p Perception) float64 {
	score := 0.0
	switch intent {
	case IntentGather, IntentHunt, IntentFarm:
		score += p.Hunger * 1.35
	}
	switch intent {
	case IntentExplore:
		score += (1 - p.Fertility) * 0.3
		if !p.NearResourceNode {
			score += 0.12
		}
	case IntentGather:
		score += p.Fertility * 0.4
		if p.NearResourceNode {
			score += 0.28
		}
	case IntentFarm:
		score += p.Fertility * 0.55
		if p.Fertility < 0.2 {
			score -= 0.4
		}
	case IntentBuild:
		score += p.InventoryRichness * 0.35
		if !p.CanBuild {
			score -= 0.62
		}
	case IntentFortify:
		score += p.Hazard * 0.3
		if !p.CanBuild {
			score -= 0.3
		}
	case IntentMigrate:
		score += p.WaterNeed*0.82 + (1-p.Humidity)*0.44 + p.Hazard*0.25
	case IntentTrade:
		score += p.InventoryRichness * 0.5
		if !p.HasTradePartner {
			score -= 0.55
		}
	case IntentDefend:
		score += p.Hazard * 0.45
	case IntentInvent:
		score += p.InventoryRichness * 0.4
		if !p.CanCraft {
			score -= 0.45
		}
	case IntentWrite:
		if p.Literacy < 2 {
			score -= 0.9
		} else {
			score += float64(p.Literacy) * 0.1
		}
	case IntentNegotiate:
		if !p.HasTradePartner {
			score -= 0.4
		}
	case IntentExpandTerritory:
		score += (1 - p.Hazard) * 0.24
	case IntentDomesticate:
		score += p.Fertility * 0.18
	case IntentHunt:
		score += (1 - p.Fertility) * 0.22
	}
	return score
}

// cultureScore computes the faction-culture term for one intent.
func cultureScore(intent Intent, cv CultureView) float64 {
	switch intent {
	case IntentExplore:
		return cv.Curiosity * 0.4
	case IntentGather, IntentFarm:
		return cv.Collectivism * 0.2
	case IntentBuild:
		return cv.Collectivism*0.22 + cv.Tradition*0.1
	case IntentFortify, IntentDefend:
		return cv.Aggression * 0.3
	case IntentMigrate:
		return cv.Curiosity * 0.18
	case IntentTrade, IntentNegotiate:
		return cv.TradeAffinity * 0.42
	case IntentInvent:
		return cv.Curiosity * 0.35
	case IntentWrite:
		return cv.Tradition*0.2 + cv.Spirituality*0.15
	case IntentExpandTerritory:
		return cv.Aggression*0.28 + cv.Collectivism*0.1
	case IntentDomesticate:
		return cv.Tradition * 0.16
	case IntentHunt:
		return cv.Aggression * 0.24
	}
	return 0
}

// SelectIntent scores every intent and returns the argmax along with the
// deterministic reason codes and emotional tone.
func (s *IntentionSystem) SelectIntent(agentID, role string, p Perception, cv CultureView, cd *CooldownManager, tick uint64, r *rng.Rng) IntentChoice {
	t := s.table(agentID)
	roleBias := roleIntentBias[role]

	best := Intents[0]
	bestScore := -1e9
	for _, intent := range Intents {
		score := 0.08
		score += roleBias[intent]
		score += t[intent]
		score += featureScore(intent, p)
		score += cultureScore(intent, cv)
		score -= cooldownWeight * cd.GetPenalty(agentID, intent, tick)
		score += r.RangeFloat(-0.02, 0.02)
		if score > bestScore {
			bestScore = score
			best = intent
		}
	}

	codes := NeedReasonCodes(p)
	codes = append(codes, intentReasonCodes[best])

	return IntentChoice{
		Intent:      best,
		Score:       bestScore,
		ReasonCodes: codes,
		Tone:        DeriveTone(p),
	}
}
