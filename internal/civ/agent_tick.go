package civ

import (
	"fmt"

	"github.com/HiddenPCOfficial/biotica/internal/cognition"
)

// per-tick energy drain and death bounds.
const (
	energyUpkeep  = 0.22
	maxAge        = 820
	reproduceProb = 0.002
)

// agentTick runs the full per-agent pass in the mandated order.
func (s *System) agentTick(a *Agent) {
	f := s.factionIndex[a.FactionID]
	if f == nil {
		return
	}

	a.Age++
	a.Energy -= energyUpkeep
	a.Hunger = clamp01(1 - a.Energy/120)

	s.revealKnowledge(f, a.X, a.Y)

	p := s.perceive(a, f)

	if s.shouldRefreshPlan(a, p) {
		s.refreshPlan(a, f, p)
	}

	moved := s.moveAgent(a)

	s.applyClimate(a, moved)

	goal, tx, ty := s.currentGoal(a, f, p)
	a.CurrentGoal = goal
	a.GoalTargetX, a.GoalTargetY = tx, ty
	outcome := s.resolveGoal(a, f, goal, tx, ty)

	if a.ActivePlan.Active() {
		a.ActivePlan.TickStep(a.X, a.Y, outcome.Success)
		if !a.ActivePlan.Active() {
			a.ActivePlan = nil
		}
	}
	s.intention.ApplyReward(a.ID, a.CurrentIntent, outcome.Reward)
	s.decisions.ApplyReward(a.ID, goal, outcome.Reward)

	s.updateMentalState(a, p)

	s.tryReproduce(a, f)

	if a.Energy <= 0 || a.Age > maxAge {
		s.killAgent(a, f)
	}
}

// revealKnowledge copies a 2-radius neighborhood of the world into the
// faction's knowledge fields.
func (s *System) revealKnowledge(f *Faction, cx, cy int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			x, y := cx+dx, cy+dy
			if !s.grid.InBounds(x, y) {
				continue
			}
			i := s.grid.Index(x, y)
			f.Knowledge.Discovered[i] = 1
			f.Knowledge.FertilityModel[i] = s.grid.Fertility[i]
			f.Knowledge.HazardModel[i] = s.grid.Hazard[i]
		}
	}
}

// perceive builds the agent's view of itself and its tile.
func (s *System) perceive(a *Agent, f *Faction) cognition.Perception {
	nearNode := s.resources.NodeAt(a.X, a.Y) != nil
	if !nearNode {
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			if s.resources.NodeAt(a.X+d[0], a.Y+d[1]) != nil {
				nearNode = true
				break
			}
		}
	}
	return cognition.Perception{
		Hunger:            a.Hunger,
		WaterNeed:         a.WaterNeed(),
		Hazard:            s.grid.HazardAt(a.X, a.Y),
		Fertility:         s.grid.FertilityAt(a.X, a.Y),
		Humidity:          s.grid.HumidityAt(a.X, a.Y),
		NearResourceNode:  nearNode,
		NearGroundItem:    s.groundStackNear(a.X, a.Y) != nil,
		InventoryRichness: a.InventoryRichness(),
		CanBuild:          f.CountMaterial("wood") >= 3,
		CanCraft:          a.Inventory.Len() > 0 || f.Inventory.Len() > 0,
		CanTalk:           s.findTalkPartner(a) != nil,
		HasTradePartner:   len(s.factions) >= 2,
		HasUsableItem:     s.pickBestUsable(a) != "",
		HasEquipableItem:  s.bestEquipable(a, f) != "",
		Literacy:          f.Literacy(),
	}
}

// shouldRefreshPlan decides whether the agent re-plans this tick.
func (s *System) shouldRefreshPlan(a *Agent, p cognition.Perception) bool {
	if !a.ActivePlan.Active() {
		return true
	}
	if s.tick-a.LastDecisionTick >= 12 {
		return true
	}
	if p.Hunger > 0.72 && !isFoodIntent(a.CurrentIntent) {
		return true
	}
	if p.WaterNeed > 0.72 && a.CurrentIntent != cognition.IntentMigrate {
		return true
	}
	return false
}

func isFoodIntent(intent cognition.Intent) bool {
	switch intent {
	case cognition.IntentGather, cognition.IntentFarm, cognition.IntentHunt:
		return true
	}
	return false
}

// refreshPlan selects a new intent, builds its plan, and logs the decision.
func (s *System) refreshPlan(a *Agent, f *Faction, p cognition.Perception) {
	cv := cognition.CultureView{
		Collectivism:  f.Culture.Collectivism,
		Aggression:    f.Culture.Aggression,
		Spirituality:  f.Culture.Spirituality,
		Curiosity:     f.Culture.Curiosity,
		Tradition:     f.Culture.Tradition,
		TradeAffinity: f.Culture.TradeAffinity,
	}
	choice := s.intention.SelectIntent(a.ID, a.Role, p, cv, s.cooldowns, s.tick, s.rng)
	a.CurrentIntent = choice.Intent

	plan := s.plans.BuildPlan(choice.Intent, s.grid, cognition.BuildContext{
		X: a.X, Y: a.Y, HomeX: f.HomeX, HomeY: f.HomeY,
		HasTradeHub: len(s.factions) >= 2,
	}, s.tick, s.rng)
	a.ProposedPlan = plan
	a.ActivePlan = plan
	a.LastDecisionTick = s.tick

	intensity := 0.5 + p.Hunger*0.5 + p.Hazard*0.5
	s.cooldowns.MarkUsed(a.ID, choice.Intent, s.tick, intensity)

	a.Mental.LastReasonCodes = choice.ReasonCodes
	a.Mental.EmotionalTone = choice.Tone
	s.mentalLogs = appendBounded(s.mentalLogs, MentalLog{
		Tick:        s.tick,
		AgentID:     a.ID,
		Intent:      string(choice.Intent),
		ReasonCodes: choice.ReasonCodes,
		Tone:        string(choice.Tone),
	}, metricsCap)
}

// moveAgent advances one step toward the active plan step target through the
// 8-neighborhood, filtered by habitability. Returns whether the agent moved.
func (s *System) moveAgent(a *Agent) bool {
	step := a.ActivePlan.Step()
	if step == nil {
		return false
	}
	if a.X == step.TargetX && a.Y == step.TargetY {
		return false
	}

	bestX, bestY := a.X, a.Y
	bestDist := distSq(a.X, a.Y, step.TargetX, step.TargetY)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := a.X+dx, a.Y+dy
			if !s.grid.IsHabitable(nx, ny) {
				continue
			}
			d := distSq(nx, ny, step.TargetX, step.TargetY)
			if d < bestDist {
				bestDist = d
				bestX, bestY = nx, ny
			}
		}
	}
	if bestX == a.X && bestY == a.Y {
		return false
	}
	s.removeFromTile(a)
	a.X, a.Y = bestX, bestY
	s.addToTile(a)
	return true
}

func distSq(x1, y1, x2, y2 int) int {
	dx, dy := x2-x1, y2-y1
	return dx*dx + dy*dy
}

// applyClimate updates hydration and the derived energy cost.
func (s *System) applyClimate(a *Agent, moved bool) {
	humidity := s.grid.HumidityAt(a.X, a.Y)
	temp := s.grid.TemperatureAt(a.X, a.Y)
	hazard := s.grid.HazardAt(a.X, a.Y)
	nearWater := 0.0
	if s.grid.NearWater(a.X, a.Y) {
		nearWater = 1
	}
	movedCost := 0.0
	if moved {
		movedCost = 0.28
	}
	a.Hydration += humidity*1.7 + nearWater*4.2 - (0.95 + temp*1.2 + hazard*0.8 + movedCost)
	if a.Hydration < 0 {
		a.Hydration = 0
	}
	if a.Hydration > 100 {
		a.Hydration = 100
	}
	a.Energy -= a.WaterNeed() * 1.5
	a.HazardStress = hazard
}

// currentGoal picks the tactical goal: the active plan step's goal when one
// exists, otherwise the decision-system fallback.
func (s *System) currentGoal(a *Agent, f *Faction, p cognition.Perception) (cognition.Goal, int, int) {
	if step := a.ActivePlan.Step(); step != nil {
		return step.Goal, step.TargetX, step.TargetY
	}
	v := cognition.Viability{
		CanTalk:    p.CanTalk,
		CanTrade:   p.HasTradePartner,
		CanBuild:   p.CanBuild,
		CanCraft:   p.CanCraft,
		CanWrite:   p.Literacy >= 2 && (a.Role == RoleScribe || a.Role == RoleLeader),
		CanPickUp:  p.NearGroundItem,
		CanUseItem: p.HasUsableItem,
		CanEquip:   p.HasEquipableItem,
	}
	choice := s.decisions.SelectGoal(a.ID, a.Role, p, v, s.grid, a.X, a.Y, s.tick, s.rng)
	return choice.Goal, choice.TargetX, choice.TargetY
}

// updateMentalState refreshes tone, stress and loyalty after the action.
func (s *System) updateMentalState(a *Agent, p cognition.Perception) {
	a.Mental.EmotionalTone = cognition.DeriveTone(cognition.Perception{
		Hunger:            a.Hunger,
		WaterNeed:         a.WaterNeed(),
		Hazard:            a.HazardStress,
		Fertility:         p.Fertility,
		InventoryRichness: a.InventoryRichness(),
	})
	target := a.HazardStress*0.5 + a.Hunger*0.3 + a.WaterNeed()*0.2
	a.Mental.StressLevel += 0.1 * (target - a.Mental.StressLevel)
	a.Mental.LoyaltyToFaction += 0.01 * (0.7 - a.Mental.StressLevel - a.Mental.LoyaltyToFaction)
	a.Mental.LoyaltyToFaction = clamp01(a.Mental.LoyaltyToFaction)
	a.Vitality = clamp01(1 - a.Hunger*0.4 - a.WaterNeed()*0.3 - a.Mental.StressLevel*0.2)
}

// tryReproduce spawns a child on a habitable neighbor tile.
func (s *System) tryReproduce(a *Agent, f *Faction) {
	if len(f.Members) > 120 || a.Hydration < 42 || a.Energy <= 115 || a.Age <= 90 {
		return
	}
	if !s.rng.Chance(reproduceProb + reproduceProb*f.Culture.Collectivism) {
		return
	}
	for _, d := range [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		nx, ny := a.X+d[0], a.Y+d[1]
		if s.grid.IsHabitable(nx, ny) {
			role := Roles[s.rng.NextInt(len(Roles))]
			child := s.spawnAgent(f, a.SpeciesID, role, nx, ny, a.Generation+1)
			child.EthnicityID = a.EthnicityID
			a.Energy -= 18
			s.addTimeline("birth", f.ID, fmt.Sprintf("%s is born to %s", child.ID, a.ID))
			return
		}
	}
}

// killAgent drops inventory to the ground, releases all per-agent state and
// removes the agent from the indices.
func (s *System) killAgent(a *Agent, f *Faction) {
	a.Alive = false
	for _, stack := range a.Inventory.Stacks() {
		drop := 1 + s.rng.NextInt(6)
		if drop > stack.Quantity {
			drop = stack.Quantity
		}
		s.dropItem(stack.ItemID, drop, a.X, a.Y, false)
	}
	a.Inventory = nil
	a.Equipment = EquipmentSlots{}
	a.EquippedItemID = ""
	a.CurrentCarryWeight = 0

	s.removeFromTile(a)
	delete(s.agentIndex, a.ID)
	f.RemoveMember(a.ID)
	s.cooldowns.Release(a.ID)
	s.intention.ApplyReward(a.ID, a.CurrentIntent, -1)
	s.intention.Release(a.ID)
	s.decisions.Release(a.ID)

	s.addTimeline("death", f.ID, fmt.Sprintf("%s dies at (%d,%d)", a.ID, a.X, a.Y))
}

// reapDead compacts the agent vector after the pass.
func (s *System) reapDead() {
	alive := s.agents[:0]
	for _, a := range s.agents {
		if a.Alive {
			alive = append(alive, a)
		}
	}
	s.agents = alive
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
