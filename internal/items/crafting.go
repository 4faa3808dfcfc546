package items

import (
	"sort"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

// Craft failure reasons.
const (
	ReasonNoRecipe          = "no_recipe"
	ReasonInsufficientItems = "insufficient_items"
)

// CraftResult reports the outcome of a craft attempt.
type CraftResult struct {
	OK       bool   `json:"ok"`
	Reason   string `json:"reason,omitempty"`
	RecipeID string `json:"recipe_id,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
	Amount   int    `json:"amount,omitempty"`
}

// factionCraftState tracks what one faction has discovered.
type factionCraftState struct {
	seenItems     map[string]bool
	recipesUsed   map[string]bool // Distinct recipes exercised in the current tech window
	recipesEver   map[string]bool
	lastCraftTick uint64
}

// CraftingEvolution maintains per-faction recipe unlock state. A recipe is
// unlocked once the faction's tech level reaches the requirement and every
// required item has been seen at least once.
type CraftingEvolution struct {
	catalog *Catalog
	byFac   map[string]*factionCraftState
}

// NewCraftingEvolution creates the crafting progression over a catalog.
func NewCraftingEvolution(catalog *Catalog) *CraftingEvolution {
	return &CraftingEvolution{
		catalog: catalog,
		byFac:   make(map[string]*factionCraftState),
	}
}

func (ce *CraftingEvolution) state(factionID string) *factionCraftState {
	st, ok := ce.byFac[factionID]
	if !ok {
		st = &factionCraftState{
			seenItems:   make(map[string]bool),
			recipesUsed: make(map[string]bool),
			recipesEver: make(map[string]bool),
		}
		ce.byFac[factionID] = st
	}
	return st
}

// Observe records that the faction has handled the item.
func (ce *CraftingEvolution) Observe(factionID, itemID string) {
	ce.state(factionID).seenItems[itemID] = true
}

// Unlocked reports whether the recipe is unlocked for the faction at the
// given tech level.
func (ce *CraftingEvolution) Unlocked(factionID string, techLevel float64, r Recipe) bool {
	if techLevel < r.RequiredTechLevel {
		return false
	}
	st := ce.state(factionID)
	for _, req := range r.RequiredItems {
		if !st.seenItems[req.ItemID] {
			return false
		}
	}
	return true
}

// UnlockedRecipes returns the recipes currently unlocked for the faction.
func (ce *CraftingEvolution) UnlockedRecipes(factionID string, techLevel float64) []Recipe {
	var out []Recipe
	for _, r := range ce.catalog.Recipes() {
		if ce.Unlocked(factionID, techLevel, r) {
			out = append(out, r)
		}
	}
	return out
}

// AttemptCraft picks an unlocked recipe whose inputs the inventory satisfies,
// consumes them, and yields the produced amount. The efficiency modifier
// perturbs the yield by one unit with matching probability.
func (ce *CraftingEvolution) AttemptCraft(factionID string, techLevel float64, inv *Inventory, r *rng.Rng, tick uint64) CraftResult {
	unlocked := ce.UnlockedRecipes(factionID, techLevel)
	if len(unlocked) == 0 {
		return CraftResult{OK: false, Reason: ReasonNoRecipe}
	}

	var satisfiable []Recipe
	for _, rec := range unlocked {
		ok := true
		for _, req := range rec.RequiredItems {
			if !inv.Has(req.ItemID, req.Quantity) {
				ok = false
				break
			}
		}
		if ok {
			satisfiable = append(satisfiable, rec)
		}
	}
	if len(satisfiable) == 0 {
		return CraftResult{OK: false, Reason: ReasonInsufficientItems}
	}

	rec := satisfiable[r.NextInt(len(satisfiable))]
	for _, req := range rec.RequiredItems {
		inv.Remove(req.ItemID, req.Quantity)
	}

	amount := rec.ProducedAmount
	if rec.EfficiencyModifier > 0 && r.Chance(rec.EfficiencyModifier) {
		if r.Chance(0.5) {
			amount++
		} else if amount > 1 {
			amount--
		}
	}
	inv.Add(rec.ResultItemID, amount)

	st := ce.state(factionID)
	st.seenItems[rec.ResultItemID] = true
	st.recipesUsed[rec.ID] = true
	st.recipesEver[rec.ID] = true
	st.lastCraftTick = tick

	return CraftResult{OK: true, RecipeID: rec.ID, ItemID: rec.ResultItemID, Amount: amount}
}

// DistinctRecipesUsed returns how many distinct recipes the faction has
// exercised in the current tech window.
func (ce *CraftingEvolution) DistinctRecipesUsed(factionID string) int {
	return len(ce.state(factionID).recipesUsed)
}

// ResetTechWindow clears the per-window recipe usage counter. Called by the
// orchestrator after each tech progression check.
func (ce *CraftingEvolution) ResetTechWindow(factionID string) {
	ce.state(factionID).recipesUsed = make(map[string]bool)
}

// CraftState is the plain-data export of one faction's crafting progress.
type CraftState struct {
	FactionID     string   `json:"faction_id"`
	SeenItems     []string `json:"seen_items"`
	RecipesUsed   []string `json:"recipes_used"`
	RecipesEver   []string `json:"recipes_ever"`
	LastCraftTick uint64   `json:"last_craft_tick"`
}

// ExportState returns per-faction crafting progress, sorted by faction id.
func (ce *CraftingEvolution) ExportState() []CraftState {
	ids := make([]string, 0, len(ce.byFac))
	for id := range ce.byFac {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]CraftState, 0, len(ids))
	for _, id := range ids {
		st := ce.byFac[id]
		out = append(out, CraftState{
			FactionID:     id,
			SeenItems:     sortedKeys(st.seenItems),
			RecipesUsed:   sortedKeys(st.recipesUsed),
			RecipesEver:   sortedKeys(st.recipesEver),
			LastCraftTick: st.lastCraftTick,
		})
	}
	return out
}

// HydrateState restores per-faction crafting progress.
func (ce *CraftingEvolution) HydrateState(states []CraftState) {
	ce.byFac = make(map[string]*factionCraftState, len(states))
	for _, st := range states {
		fs := ce.state(st.FactionID)
		for _, id := range st.SeenItems {
			fs.seenItems[id] = true
		}
		for _, id := range st.RecipesUsed {
			fs.recipesUsed[id] = true
		}
		for _, id := range st.RecipesEver {
			fs.recipesEver[id] = true
		}
		fs.lastCraftTick = st.LastCraftTick
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
