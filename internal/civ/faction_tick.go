package civ

import (
	"fmt"

	"github.com/HiddenPCOfficial/biotica/internal/language"
)

// factionUpkeep runs the per-faction portion of a tick: language evolution,
// crafting progression, and ground-item churn.
func (s *System) factionUpkeep(f *Faction) {
	population := len(f.Members)

	if s.tick > 0 && s.tick%language.GrammarInterval == 0 {
		f.Comm.UpdateGrammar(population, f.Stress, s.rng)
	}
	if s.tick > 0 && s.tick%language.DriftInterval == 0 {
		f.Comm.Drift(s.tick, s.rng)
	}

	// Tech progression: a window with enough distinct recipes exercised
	// nudges the tech level upward.
	if s.cfg.TechWindow > 0 && s.tick > 0 && s.tick%s.cfg.TechWindow == 0 {
		if s.crafting.DistinctRecipesUsed(f.ID) >= 3 && f.TechLevel < 12 {
			f.TechLevel += 0.5
			if f.TechLevel > 12 {
				f.TechLevel = 12
			}
			s.addTimeline("technology", f.ID, fmt.Sprintf("craft knowledge deepens (tech %.1f)", f.TechLevel))
		}
		s.crafting.ResetTechWindow(f.ID)
	}

	if s.tick > 0 && s.tick%s.cfg.GroundItemSpawnInterval == 0 {
		s.spawnGroundItems(f)
	}
	if s.tick > 0 && s.tick%s.cfg.GroundItemDecayInterval == 0 {
		s.decayGroundItems()
	}
}

// spawnGroundItems scatters naturally spawning items around a faction's
// surroundings. The 1 + 0.5 per faction budget rounds down.
func (s *System) spawnGroundItems(f *Faction) {
	count := 1 + int(0.5*float64(len(s.factions)))
	for i := 0; i < count; i++ {
		x := f.HomeX + s.rng.RangeInt(-8, 8)
		y := f.HomeY + s.rng.RangeInt(-8, 8)
		if !s.grid.IsHabitable(x, y) {
			continue
		}
		candidates := s.itemCatalog.NaturalSpawnItems(s.grid.BiomeAt(x, y))
		if len(candidates) == 0 {
			continue
		}
		item := candidates[s.rng.NextInt(len(candidates))]
		s.dropItem(item.ID, 1+s.rng.NextInt(3), x, y, true)
	}
}

// groundKey builds the uniqueness key for a stack.
func groundKey(itemID string, x, y int, natural bool) string {
	n := 0
	if natural {
		n = 1
	}
	return fmt.Sprintf("%s|%d|%d|%d", itemID, x, y, n)
}

// dropItem merges quantity into the unique stack for (item, x, y, natural).
func (s *System) dropItem(itemID string, qty, x, y int, natural bool) {
	if qty <= 0 {
		return
	}
	key := groundKey(itemID, x, y, natural)
	if stack, ok := s.groundIndex[key]; ok {
		stack.Quantity += qty
		return
	}
	stack := &GroundItemStack{
		ID:            fmt.Sprintf("ground-%d", s.nextGroundID),
		ItemID:        itemID,
		Quantity:      qty,
		X:             x,
		Y:             y,
		SpawnedAtTick: s.tick,
		NaturalSpawn:  natural,
	}
	s.nextGroundID++
	s.groundItems = append(s.groundItems, stack)
	s.groundIndex[key] = stack
	if len(s.groundItems) > groundItemCap {
		s.removeGroundStack(s.groundItems[0])
	}
}

// takeGround removes up to qty units from a stack, deleting it at zero.
func (s *System) takeGround(stack *GroundItemStack, qty int) int {
	if qty > stack.Quantity {
		qty = stack.Quantity
	}
	stack.Quantity -= qty
	if stack.Quantity <= 0 {
		s.removeGroundStack(stack)
	}
	return qty
}

func (s *System) removeGroundStack(stack *GroundItemStack) {
	delete(s.groundIndex, groundKey(stack.ItemID, stack.X, stack.Y, stack.NaturalSpawn))
	for i, g := range s.groundItems {
		if g == stack {
			s.groundItems = append(s.groundItems[:i], s.groundItems[i+1:]...)
			return
		}
	}
}

// decayGroundItems removes stacks past the decay age.
func (s *System) decayGroundItems() {
	var stale []*GroundItemStack
	for _, g := range s.groundItems {
		if s.tick-g.SpawnedAtTick > s.cfg.GroundItemDecayAge {
			stale = append(stale, g)
		}
	}
	for _, g := range stale {
		s.removeGroundStack(g)
	}
}

// groundStackNear returns the first stack within one tile of (x,y).
func (s *System) groundStackNear(x, y int) *GroundItemStack {
	for _, g := range s.groundItems {
		if abs(g.X-x) <= 1 && abs(g.Y-y) <= 1 {
			return g
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
