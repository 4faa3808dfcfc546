package cognition

import (
	"github.com/HiddenPCOfficial/biotica/internal/rng"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// decisionInterval is the minimum ticks between fallback goal refreshes.
const decisionInterval = 3

// roleGoalBias gives each role its base tactical preferences.
var roleGoalBias = map[string]map[Goal]float64{
	"Scout":  {GoalExplore: 0.3, GoalPickItem: 0.1},
	"Farmer": {GoalFarm: 0.32, GoalGather: 0.2},
	"Builder": {GoalBuild: 0.34, GoalGather: 0.12},
	"Leader": {GoalTalk: 0.18, GoalDefend: 0.12, GoalWrite: 0.1},
	"Scribe": {GoalWrite: 0.36, GoalTalk: 0.1},
	"Guard":  {GoalDefend: 0.34},
	"Trader": {GoalTrade: 0.36, GoalTalk: 0.12},
	"Elder":  {GoalWorship: 0.26, GoalTalk: 0.14},
}

// viabilityPenalty suppresses goals that are currently impossible.
const viabilityPenalty = 0.85

// goalScanRadius returns the target scan radius per goal.
func goalScanRadius(goal Goal) int {
	switch goal {
	case GoalExplore, GoalTrade:
		return 4
	case GoalBuild, GoalCraftItem, GoalWrite:
		return 3
	case GoalPickItem:
		return 2
	default:
		return 1
	}
}

// GoalChoice is the outcome of a fallback decision.
type GoalChoice struct {
	Goal    Goal
	TargetX int
	TargetY int
}

// DecisionSystem provides the per-tick tactical goal when no plan step
// applies, with per-agent learned goal biases.
type DecisionSystem struct {
	goalBias map[string]map[Goal]float64
	lastPick map[string]uint64
	lastGoal map[string]GoalChoice
}

// NewDecisionSystem creates an empty decision table.
func NewDecisionSystem() *DecisionSystem {
	return &DecisionSystem{
		goalBias: make(map[string]map[Goal]float64),
		lastPick: make(map[string]uint64),
		lastGoal: make(map[string]GoalChoice),
	}
}

func (d *DecisionSystem) bias(agentID string) map[Goal]float64 {
	t, ok := d.goalBias[agentID]
	if !ok {
		t = make(map[Goal]float64)
		d.goalBias[agentID] = t
	}
	return t
}

// ApplyReward folds an outcome into the agent's goal bias table.
func (d *DecisionSystem) ApplyReward(agentID string, goal Goal, reward float64) {
	t := d.bias(agentID)
	v := t[goal] + rlLearningRate*reward
	if v < rlMin {
		v = rlMin
	}
	if v > rlMax {
		v = rlMax
	}
	t[goal] = v
}

// Release drops all state for a dead agent.
func (d *DecisionSystem) Release(agentID string) {
	delete(d.goalBias, agentID)
	delete(d.lastPick, agentID)
	delete(d.lastGoal, agentID)
}

// goalFeature computes the perception-driven term per goal.
func goalFeature(goal Goal, p Perception) float64 {
	switch goal {
	case GoalExplore:
		return (1-p.Fertility)*0.2 + 0.05
	case GoalGather:
		s := p.Hunger * 1.1
		if p.NearResourceNode {
			s += 0.3
		}
		return s
	case GoalFarm:
		return p.Hunger*0.8 + p.Fertility*0.4
	case GoalBuild:
		return p.InventoryRichness * 0.4
	case GoalDefend:
		return p.Hazard * 0.5
	case GoalTrade:
		return p.InventoryRichness * 0.4
	case GoalTalk:
		return 0.12
	case GoalWorship:
		return 0.06
	case GoalPickItem:
		if p.NearGroundItem {
			return 0.55
		}
		return 0
	case GoalUseItem:
		if p.HasUsableItem {
			return p.Hunger*0.7 + 0.1
		}
		return 0
	case GoalCraftItem:
		return p.InventoryRichness * 0.5
	case GoalEquipItem:
		if p.HasEquipableItem {
			return 0.3
		}
		return 0
	case GoalWrite:
		return float64(p.Literacy) * 0.12
	}
	return 0
}

// Viability flags goals that cannot succeed this tick.
type Viability struct {
	CanTalk    bool
	CanTrade   bool
	CanBuild   bool
	CanCraft   bool
	CanWrite   bool
	CanPickUp  bool
	CanUseItem bool
	CanEquip   bool
}

func viable(goal Goal, v Viability) bool {
	switch goal {
	case GoalTalk:
		return v.CanTalk
	case GoalTrade:
		return v.CanTrade
	case GoalBuild:
		return v.CanBuild
	case GoalCraftItem:
		return v.CanCraft
	case GoalWrite:
		return v.CanWrite
	case GoalPickItem:
		return v.CanPickUp
	case GoalUseItem:
		return v.CanUseItem
	case GoalEquipItem:
		return v.CanEquip
	}
	return true
}

// SelectGoal picks the fallback goal and target. Refreshes at most every
// three ticks; in between the previous choice is returned.
func (d *DecisionSystem) SelectGoal(agentID, role string, p Perception, v Viability, g *world.Grid, x, y int, tick uint64, r *rng.Rng) GoalChoice {
	if last, ok := d.lastPick[agentID]; ok && tick-last < decisionInterval {
		if prev, ok := d.lastGoal[agentID]; ok {
			return prev
		}
	}

	bias := d.bias(agentID)
	roleBias := roleGoalBias[role]

	best := GoalExplore
	bestScore := -1e9
	for _, goal := range Goals {
		score := 0.05
		score += roleBias[goal]
		score += bias[goal]
		score += goalFeature(goal, p)
		if !viable(goal, v) {
			score -= viabilityPenalty
		}
		score += r.RangeFloat(-0.02, 0.02)
		if score > bestScore {
			bestScore = score
			best = goal
		}
	}

	tx, ty := d.pickTarget(best, g, x, y, r)
	choice := GoalChoice{Goal: best, TargetX: tx, TargetY: ty}
	d.lastPick[agentID] = tick
	d.lastGoal[agentID] = choice
	return choice
}

// pickTarget scans tiles around the agent with a goal-dependent radius.
func (d *DecisionSystem) pickTarget(goal Goal, g *world.Grid, x, y int, r *rng.Rng) (int, int) {
	radius := goalScanRadius(goal)
	bestX, bestY := x, y
	bestScore := -1e9
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			tx, ty := x+dx, y+dy
			if !g.IsHabitable(tx, ty) {
				continue
			}
			score := scoreTile(goal, g, tx, ty) + r.RangeFloat(0, 0.04)
			if score > bestScore {
				bestScore = score
				bestX, bestY = tx, ty
			}
		}
	}
	return bestX, bestY
}

// scoreTile rates one tile for one goal.
func scoreTile(goal Goal, g *world.Grid, x, y int) float64 {
	fert := g.FertilityAt(x, y)
	haz := g.HazardAt(x, y)
	switch goal {
	case GoalGather, GoalFarm:
		return fert*1.1 - haz*0.8
	case GoalExplore:
		return (1-fert)*0.3 - haz*0.4
	case GoalBuild, GoalCraftItem, GoalWrite:
		return (1-haz)*0.9 + fert*0.2
	case GoalDefend:
		return (1 - haz) * 0.6
	default:
		return fert*0.3 - haz*0.5
	}
}
