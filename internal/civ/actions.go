package civ

import (
	"fmt"

	"github.com/HiddenPCOfficial/biotica/internal/cognition"
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/language"
	"github.com/HiddenPCOfficial/biotica/internal/narrative"
	"github.com/HiddenPCOfficial/biotica/internal/structures"
)

// Outcome is the result of resolving one goal for one tick.
type Outcome struct {
	Success  bool
	Progress int
	Reward   float64
}

// resolveGoal performs the agent's tactical action and returns its outcome.
// The per-goal success conditions, side effects and rewards follow a fixed
// table.
func (s *System) resolveGoal(a *Agent, f *Faction, goal cognition.Goal, tx, ty int) Outcome {
	switch goal {
	case cognition.GoalGather:
		return s.doGather(a, f)
	case cognition.GoalFarm:
		return s.doFarm(a)
	case cognition.GoalBuild:
		return s.doBuild(a, f)
	case cognition.GoalPickItem:
		return s.doPickItem(a, f)
	case cognition.GoalUseItem:
		return s.doUseItem(a)
	case cognition.GoalCraftItem:
		return s.doCraftItem(a, f)
	case cognition.GoalEquipItem:
		return s.doEquipItem(a, f)
	case cognition.GoalTalk:
		return s.doTalk(a, f)
	case cognition.GoalTrade:
		return s.doTrade(a, f)
	case cognition.GoalDefend:
		a.Mental.StressLevel *= 0.97
		return Outcome{Success: true, Progress: 1, Reward: 0.06}
	case cognition.GoalWrite:
		return s.doWrite(a, f)
	case cognition.GoalWorship:
		f.Stress -= 0.01
		if f.Stress < 0 {
			f.Stress = 0
		}
		return Outcome{Success: true, Progress: 1, Reward: 0.02}
	default: // Explore and movement-only goals succeed by walking.
		return Outcome{Success: true, Progress: 1, Reward: 0.02}
	}
}

// doGather forages the tile or harvests a node when one is present.
func (s *System) doGather(a *Agent, f *Faction) Outcome {
	if node := s.resources.NodeAt(a.X, a.Y); node != nil {
		res := s.resources.HarvestAt(a.X, a.Y, a.ToolTags(s.itemCatalog), 1+a.Traits.Diligence)
		if !res.OK {
			return Outcome{Success: false}
		}
		stored := a.PutItem(s.itemCatalog, res.MaterialID, res.HarvestedAmount)
		if rest := res.HarvestedAmount - stored; rest > 0 {
			f.CreditMaterial(res.MaterialID, rest)
		}
		s.crafting.Observe(f.ID, res.MaterialID)
		return Outcome{Success: true, Progress: 2, Reward: 0.12}
	}

	// Foraging: passable tile yields energy and decrements fertility.
	if !s.grid.IsHabitable(a.X, a.Y) {
		return Outcome{Success: false}
	}
	i := s.grid.Index(a.X, a.Y)
	fert := s.grid.FertilityAt(a.X, a.Y)
	gain := 1.5 + fert*1.8
	a.Energy += gain
	if s.grid.Fertility[i] > 0 {
		s.grid.Fertility[i]--
	}
	f.Stockpile.Food += gain * 0.5
	return Outcome{Success: true, Progress: 1, Reward: 0.04}
}

// doFarm works fertile ground for energy.
func (s *System) doFarm(a *Agent) Outcome {
	fert := s.grid.FertilityAt(a.X, a.Y)
	if fert <= 0 {
		return Outcome{Success: false}
	}
	a.Energy += 2.1 + 2.2/3.5*fert
	return Outcome{Success: true, Progress: 2, Reward: 0.11}
}

// doBuild occasionally commits a build request at the plan target.
func (s *System) doBuild(a *Agent, f *Faction) Outcome {
	if !s.rng.Chance(0.22) {
		return Outcome{Success: false}
	}
	blueprint := structures.BlueprintHut
	if step := a.ActivePlan.Step(); step != nil && step.Blueprint != "" {
		blueprint = step.Blueprint
	}
	res := s.structures.RequestBuild(s.grid, f.ID, blueprint, a.GoalTargetX, a.GoalTargetY, f, s.tick)
	if !res.OK {
		return Outcome{Success: false}
	}
	s.addTimeline("building", f.ID, fmt.Sprintf("%s begins a %s at (%d,%d)", a.ID, blueprint, a.GoalTargetX, a.GoalTargetY))
	return Outcome{Success: true, Progress: 2, Reward: 0.14}
}

// doPickItem transfers a nearby ground stack into the inventory, clamped by
// carry weight; the remainder goes to the faction.
func (s *System) doPickItem(a *Agent, f *Faction) Outcome {
	stack := s.groundStackNear(a.X, a.Y)
	if stack == nil {
		return Outcome{Success: false}
	}
	itemID := stack.ItemID
	qty := s.takeGround(stack, stack.Quantity)
	stored := a.PutItem(s.itemCatalog, itemID, qty)
	if rest := qty - stored; rest > 0 {
		f.Inventory.Add(itemID, rest)
	}
	s.crafting.Observe(f.ID, itemID)
	return Outcome{Success: true, Progress: 1, Reward: 0.07}
}

// pickBestUsable returns the most useful consumable or equipable held item.
func (s *System) pickBestUsable(a *Agent) string {
	if a.Inventory == nil {
		return ""
	}
	bestID := ""
	bestScore := 0.0
	for _, stack := range a.Inventory.Stacks() {
		it, ok := s.itemCatalog.Get(stack.ItemID)
		if !ok {
			continue
		}
		score := 0.0
		switch it.Category {
		case items.CategoryFood:
			score = it.Base.Nutrition * (0.5 + a.Hunger)
		case items.CategoryTool, items.CategoryWeapon:
			if a.Equipment.MainHand == "" {
				score = it.Base.Damage + it.Base.Durability*0.05
			}
		}
		if score > bestScore {
			bestScore = score
			bestID = stack.ItemID
		}
	}
	return bestID
}

// doUseItem consumes food or equips a held tool.
func (s *System) doUseItem(a *Agent) Outcome {
	itemID := s.pickBestUsable(a)
	if itemID == "" {
		return Outcome{Success: false}
	}
	it, _ := s.itemCatalog.Get(itemID)
	switch it.Category {
	case items.CategoryFood:
		if a.TakeItem(s.itemCatalog, itemID, 1) == 1 {
			a.Energy += it.Base.Nutrition
			a.Hydration += it.Base.Nutrition * 0.3
			if a.Hydration > 100 {
				a.Hydration = 100
			}
		}
	case items.CategoryTool, items.CategoryWeapon:
		a.Equipment.MainHand = itemID
		a.EquippedItemID = itemID
	}
	return Outcome{Success: true, Progress: 1, Reward: 0.05}
}

// doCraftItem runs the faction crafting progression on the agent's own
// inventory, falling back to the faction pool.
func (s *System) doCraftItem(a *Agent, f *Faction) Outcome {
	inv := a.Inventory
	res := s.crafting.AttemptCraft(f.ID, f.TechLevel, inv, s.rng, s.tick)
	if !res.OK && res.Reason == items.ReasonInsufficientItems {
		inv = f.Inventory
		res = s.crafting.AttemptCraft(f.ID, f.TechLevel, inv, s.rng, s.tick)
	}
	if !res.OK {
		return Outcome{Success: false}
	}
	if inv == a.Inventory {
		// AttemptCraft already inserted; reconcile against the carry limit.
		a.RecomputeCarryWeight(s.itemCatalog)
		for a.CurrentCarryWeight > a.MaxCarryWeight {
			if a.TakeItem(s.itemCatalog, res.ItemID, 1) == 0 {
				break
			}
			f.Inventory.Add(res.ItemID, 1)
		}
	}
	it, _ := s.itemCatalog.Get(res.ItemID)
	if (it.Category == items.CategoryTool || it.Category == items.CategoryWeapon) && a.Equipment.MainHand == "" && a.Inventory.Count(res.ItemID) > 0 {
		a.Equipment.MainHand = res.ItemID
		a.EquippedItemID = res.ItemID
	}
	return Outcome{Success: true, Progress: 2, Reward: 0.12}
}

// bestEquipable finds the strongest tool or weapon in the agent's or the
// faction's inventory.
func (s *System) bestEquipable(a *Agent, f *Faction) string {
	bestID := ""
	bestScore := 0.0
	consider := func(inv *items.Inventory) {
		if inv == nil {
			return
		}
		for _, stack := range inv.Stacks() {
			it, ok := s.itemCatalog.Get(stack.ItemID)
			if !ok {
				continue
			}
			if it.Category != items.CategoryTool && it.Category != items.CategoryWeapon {
				continue
			}
			score := it.Base.Damage + it.Base.Durability*0.05
			if score > bestScore && stack.ItemID != a.Equipment.MainHand {
				bestScore = score
				bestID = stack.ItemID
			}
		}
	}
	consider(a.Inventory)
	consider(f.Inventory)
	return bestID
}

// doEquipItem equips the best available tool, pulling one unit from the
// faction pool when needed.
func (s *System) doEquipItem(a *Agent, f *Faction) Outcome {
	itemID := s.bestEquipable(a, f)
	if itemID == "" {
		return Outcome{Success: false}
	}
	if a.Inventory.Count(itemID) == 0 {
		if f.Inventory.Remove(itemID, 1) != 1 {
			return Outcome{Success: false}
		}
		if a.PutItem(s.itemCatalog, itemID, 1) == 0 {
			f.Inventory.Add(itemID, 1)
			return Outcome{Success: false}
		}
	}
	a.Equipment.MainHand = itemID
	a.EquippedItemID = itemID
	return Outcome{Success: true, Progress: 1, Reward: 0.04}
}

// findTalkPartner returns a same-faction agent within three tiles.
func (s *System) findTalkPartner(a *Agent) *Agent {
	for dy := -3; dy <= 3; dy++ {
		for dx := -3; dx <= 3; dx++ {
			x, y := a.X+dx, a.Y+dy
			if !s.grid.InBounds(x, y) {
				continue
			}
			for _, id := range s.tileAgents[s.grid.Index(x, y)] {
				if id == a.ID {
					continue
				}
				other := s.agentIndex[id]
				if other != nil && other.Alive && other.FactionID == a.FactionID {
					return other
				}
			}
		}
	}
	return nil
}

// doTalk records a dialogue and enqueues its narrative gloss.
func (s *System) doTalk(a *Agent, f *Faction) Outcome {
	partner := s.findTalkPartner(a)
	if partner == nil {
		return Outcome{Success: false}
	}

	line := cognition.BindDialogue(a.CurrentIntent, f.Comm, s.grid.BiomeAt(a.GoalTargetX, a.GoalTargetY).Name(), s.rng)
	d := Dialogue{
		ID:            fmt.Sprintf("dialogue-%d", s.nextDialogueID),
		Tick:          s.tick,
		FactionID:     f.ID,
		SpeakerAID:    a.ID,
		SpeakerBID:    partner.ID,
		Tokens:        line.Tokens,
		Gloss:         line.FallbackGloss,
		ActionContext: string(a.CurrentIntent),
	}
	s.nextDialogueID++
	s.dialogues = appendBounded(s.dialogues, d, dialogueCap)
	a.LastTalkTick = s.tick
	f.LastDialogueTick = s.tick

	lexicon := make(map[string]any, len(f.Comm.Lexicon))
	for _, c := range language.Concepts {
		lexicon[string(c)] = f.Comm.Token(c)
	}
	var recentUtterances []string
	for i := len(s.dialogues) - 1; i >= 0 && len(recentUtterances) < 5; i-- {
		if s.dialogues[i].FactionID == f.ID {
			recentUtterances = append(recentUtterances, s.dialogues[i].Tokens)
		}
	}
	s.queue.Enqueue(narrative.Request{
		ID:         fmt.Sprintf("dialogue-%s", d.ID),
		Kind:       narrative.KindDialogue,
		FactionID:  f.ID,
		DialogueID: d.ID,
		Payload: map[string]any{
			"dialogueId":    d.ID,
			"speakerAName":  a.ID,
			"speakerBName":  partner.ID,
			"contextSummary": fmt.Sprintf("faction %s, tick %d", f.ID, s.tick),
			"actionContext": d.ActionContext,
			"utteranceTokens": d.Tokens,
			"recentFactionUtterances": recentUtterances,
			"communication": map[string]any{
				"grammarLevel": f.Comm.GrammarLevel,
				"lexicon":      lexicon,
			},
		},
		EnqueuedTick: s.tick,
	})
	return Outcome{Success: true, Progress: 1, Reward: 0.08}
}

// doTrade exchanges food for stone with the most trusted other faction.
func (s *System) doTrade(a *Agent, f *Faction) Outcome {
	if len(s.factions) < 2 {
		return Outcome{Success: false}
	}
	var partner *Faction
	bestTrust := -1.0
	for _, other := range s.factions {
		if other.ID == f.ID {
			continue
		}
		rel := f.RelationWith(other.ID)
		if rel.Status == RelationHostile {
			continue
		}
		if rel.Trust > bestTrust {
			bestTrust = rel.Trust
			partner = other
		}
	}
	if partner == nil {
		return Outcome{Success: false}
	}

	// Food flows from whichever side can spare four units, this faction
	// first; two stone come back.
	if f.Stockpile.Food >= 4 && partner.Stockpile.Stone >= 2 {
		f.Stockpile.Food -= 4
		partner.Stockpile.Food += 4
		partner.Stockpile.Stone -= 2
		f.Stockpile.Stone += 2
	} else if partner.Stockpile.Food >= 4 && f.Stockpile.Stone >= 2 {
		partner.Stockpile.Food -= 4
		f.Stockpile.Food += 4
		f.Stockpile.Stone -= 2
		partner.Stockpile.Stone += 2
	} else {
		return Outcome{Success: false}
	}

	// Best spare item crosses as a gift.
	if gift := s.bestEquipable(a, f); gift != "" && f.Inventory.Count(gift) > 0 {
		f.Inventory.Remove(gift, 1)
		partner.Inventory.Add(gift, 1)
		s.crafting.Observe(partner.ID, gift)
	}

	rel := f.RelationWith(partner.ID)
	back := partner.RelationWith(f.ID)
	rel.Status = RelationTrade
	back.Status = RelationTrade
	rel.Intensity = clamp01(rel.Intensity + 0.1)
	back.Intensity = clamp01(back.Intensity + 0.1)

	language.Borrow(f.Comm, partner.Comm, rel.Intensity, s.tick, s.rng)

	return Outcome{Success: true, Progress: 2, Reward: 0.08}
}

// doWrite produces a Note with tokenized content.
func (s *System) doWrite(a *Agent, f *Faction) Outcome {
	if f.Literacy() < 2 {
		return Outcome{Success: false}
	}
	if a.Role != RoleScribe && a.Role != RoleLeader {
		return Outcome{Success: false}
	}
	if !s.rng.Chance(0.06 + 0.02*float64(f.Literacy())) {
		return Outcome{Success: false}
	}

	content := f.Comm.Compose([]language.Concept{
		language.ConceptLaw, language.ConceptEarth, language.ConceptFood,
	}, s.rng)
	note := Note{
		ID:            fmt.Sprintf("note-%d", s.nextNoteID),
		AuthorID:      a.ID,
		FactionID:     f.ID,
		CreatedAtTick: s.tick,
		TokenContent:  content,
		X:             a.X,
		Y:             a.Y,
	}
	s.nextNoteID++
	s.notes = appendBounded(s.notes, note, notesCap)
	f.Writing.WritingArtifacts = append(f.Writing.WritingArtifacts, note.ID)
	return Outcome{Success: true, Progress: 2, Reward: 0.13}
}
