package items

import (
	"github.com/HiddenPCOfficial/biotica/internal/materials"
	"github.com/HiddenPCOfficial/biotica/internal/rng"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// GenerateCatalog builds the item catalog deterministically from the seed and
// the material catalog. Resource items cover the base materials (wood, stone,
// clay, charcoal) plus plant fiber; sand and obsidian get no item. Tools,
// weapons, foods, components and structure parts are derived, with iron-tier
// entries present only when the material catalog carries iron.
func GenerateCatalog(seed uint32, mats *materials.Catalog) (*Catalog, error) {
	r := rng.New(seed ^ 0x6974656d) // "item"
	jitter := func(base float64) float64 {
		return base * (0.92 + r.NextFloat()*0.16)
	}

	forestBiomes := []world.Biome{world.BiomeForest, world.BiomeJungle, world.BiomeTaiga, world.BiomeGrassland, world.BiomeSavanna}

	itemList := []Item{
		// Raw resources: the base materials plus plant fiber.
		{ID: "wood", Name: "Wood", Category: CategoryResource, Base: Properties{Weight: jitter(1.2), BuildValue: 1}, NaturalSpawn: true, AllowedBiomes: forestBiomes},
		{ID: "stone", Name: "Stone", Category: CategoryResource, Base: Properties{Weight: jitter(2.4), BuildValue: 1.4}, NaturalSpawn: true, AllowedBiomes: []world.Biome{world.BiomeHills, world.BiomeMountain, world.BiomeRock, world.BiomeGrassland}},
		{ID: "clay", Name: "Clay", Category: CategoryResource, Base: Properties{Weight: jitter(1.6)}, NaturalSpawn: true, AllowedBiomes: []world.Biome{world.BiomeSwamp, world.BiomeBeach}},
		{ID: "charcoal", Name: "Charcoal", Category: CategoryResource, Base: Properties{Weight: jitter(0.6)}},
		{ID: "fiber", Name: "Plant Fiber", Category: CategoryResource, Base: Properties{Weight: jitter(0.3)}, NaturalSpawn: true, AllowedBiomes: forestBiomes},

		// Foods.
		{ID: "berries", Name: "Berries", Category: CategoryFood, Base: Properties{Nutrition: jitter(6), Weight: 0.4}, NaturalSpawn: true, AllowedBiomes: forestBiomes},
		{ID: "roots", Name: "Edible Roots", Category: CategoryFood, Base: Properties{Nutrition: jitter(8), Weight: 0.6}, NaturalSpawn: true, AllowedBiomes: []world.Biome{world.BiomeGrassland, world.BiomeSavanna, world.BiomeSwamp}},
		{ID: "dried_meat", Name: "Dried Meat", Category: CategoryFood, Base: Properties{Nutrition: jitter(14), Weight: 0.5}},

		// Tools.
		{ID: "stone_axe", Name: "Stone Axe", Category: CategoryTool, Base: Properties{Durability: jitter(40), Damage: 3, Weight: 2.0}, ToolTags: []string{"axe"}},
		{ID: "stone_pick", Name: "Stone Pick", Category: CategoryTool, Base: Properties{Durability: jitter(40), Damage: 2, Weight: 2.2}, ToolTags: []string{"pick"}},
		{ID: "digging_stick", Name: "Digging Stick", Category: CategoryTool, Base: Properties{Durability: jitter(25), Weight: 1.0}, ToolTags: []string{"shovel"}},

		// Weapons.
		{ID: "wooden_spear", Name: "Wooden Spear", Category: CategoryWeapon, Base: Properties{Durability: jitter(30), Damage: jitter(5), Weight: 1.4}},
		{ID: "stone_club", Name: "Stone Club", Category: CategoryWeapon, Base: Properties{Durability: jitter(45), Damage: jitter(6), Weight: 2.6}},

		// Components and structure parts.
		{ID: "cordage", Name: "Cordage", Category: CategoryComponent, Base: Properties{Weight: 0.2}},
		{ID: "plank", Name: "Plank", Category: CategoryComponent, Base: Properties{Weight: 0.9, BuildValue: 1.6}},
		{ID: "brick", Name: "Fired Brick", Category: CategoryStructurePart, Base: Properties{Weight: 1.8, BuildValue: 2.2}},
		{ID: "timber_frame", Name: "Timber Frame", Category: CategoryStructurePart, Base: Properties{Weight: 3.5, BuildValue: 3.4}},

		// Artifacts.
		{ID: "clay_tablet", Name: "Clay Tablet", Category: CategoryArtifact, Base: Properties{Weight: 0.8}},
		{ID: "carved_totem", Name: "Carved Totem", Category: CategoryArtifact, Base: Properties{Weight: 1.5}},
	}

	recipeList := []Recipe{
		{ID: "craft_cordage", ResultItemID: "cordage", RequiredItems: []Requirement{{ItemID: "fiber", Quantity: 2}}, RequiredTechLevel: 1, EfficiencyModifier: 0.1, ProducedAmount: 2},
		{ID: "craft_stone_axe", ResultItemID: "stone_axe", RequiredItems: []Requirement{{ItemID: "wood", Quantity: 1}, {ItemID: "stone", Quantity: 2}, {ItemID: "cordage", Quantity: 1}}, RequiredTechLevel: 1, EfficiencyModifier: 0.05, ProducedAmount: 1},
		{ID: "craft_stone_pick", ResultItemID: "stone_pick", RequiredItems: []Requirement{{ItemID: "wood", Quantity: 1}, {ItemID: "stone", Quantity: 3}, {ItemID: "cordage", Quantity: 1}}, RequiredTechLevel: 1.5, EfficiencyModifier: 0.05, ProducedAmount: 1},
		{ID: "craft_digging_stick", ResultItemID: "digging_stick", RequiredItems: []Requirement{{ItemID: "wood", Quantity: 1}}, RequiredTechLevel: 1, EfficiencyModifier: 0.2, ProducedAmount: 1},
		{ID: "craft_wooden_spear", ResultItemID: "wooden_spear", RequiredItems: []Requirement{{ItemID: "wood", Quantity: 2}, {ItemID: "cordage", Quantity: 1}}, RequiredTechLevel: 1, EfficiencyModifier: 0.1, ProducedAmount: 1},
		{ID: "craft_stone_club", ResultItemID: "stone_club", RequiredItems: []Requirement{{ItemID: "wood", Quantity: 1}, {ItemID: "stone", Quantity: 2}}, RequiredTechLevel: 1, EfficiencyModifier: 0.1, ProducedAmount: 1},
		{ID: "craft_plank", ResultItemID: "plank", RequiredItems: []Requirement{{ItemID: "wood", Quantity: 2}}, RequiredTechLevel: 2, EfficiencyModifier: 0.15, ProducedAmount: 2},
		{ID: "craft_charcoal", ResultItemID: "charcoal", RequiredItems: []Requirement{{ItemID: "wood", Quantity: 3}}, RequiredTechLevel: 2, EfficiencyModifier: 0.2, ProducedAmount: 2},
		{ID: "craft_timber_frame", ResultItemID: "timber_frame", RequiredItems: []Requirement{{ItemID: "plank", Quantity: 3}, {ItemID: "cordage", Quantity: 2}}, RequiredTechLevel: 3, EfficiencyModifier: 0.1, ProducedAmount: 1},
		{ID: "craft_brick", ResultItemID: "brick", RequiredItems: []Requirement{{ItemID: "clay", Quantity: 2}, {ItemID: "charcoal", Quantity: 1}}, RequiredTechLevel: 3, EfficiencyModifier: 0.1, ProducedAmount: 3},
		{ID: "dry_meat", ResultItemID: "dried_meat", RequiredItems: []Requirement{{ItemID: "berries", Quantity: 1}, {ItemID: "roots", Quantity: 2}}, RequiredTechLevel: 2, EfficiencyModifier: 0.15, ProducedAmount: 1},
		{ID: "craft_clay_tablet", ResultItemID: "clay_tablet", RequiredItems: []Requirement{{ItemID: "clay", Quantity: 1}}, RequiredTechLevel: 4, EfficiencyModifier: 0.05, ProducedAmount: 1},
		{ID: "craft_carved_totem", ResultItemID: "carved_totem", RequiredItems: []Requirement{{ItemID: "wood", Quantity: 2}, {ItemID: "stone", Quantity: 1}}, RequiredTechLevel: 4, EfficiencyModifier: 0.05, ProducedAmount: 1},
	}

	if mats.Has("iron_ore") {
		itemList = append(itemList,
			Item{ID: "iron_ore", Name: "Iron Ore", Category: CategoryResource, Base: Properties{Weight: jitter(3.0)}, AllowedBiomes: []world.Biome{world.BiomeHills, world.BiomeMountain, world.BiomeRock}},
			Item{ID: "iron_ingot", Name: "Iron Ingot", Category: CategoryComponent, Base: Properties{Weight: jitter(2.5)}},
			Item{ID: "iron_axe", Name: "Iron Axe", Category: CategoryTool, Base: Properties{Durability: jitter(120), Damage: 6, Weight: 2.4}, ToolTags: []string{"axe"}},
			Item{ID: "iron_pick", Name: "Iron Pick", Category: CategoryTool, Base: Properties{Durability: jitter(120), Damage: 5, Weight: 2.6}, ToolTags: []string{"pick"}},
			Item{ID: "iron_blade", Name: "Iron Blade", Category: CategoryWeapon, Base: Properties{Durability: jitter(100), Damage: jitter(11), Weight: 1.9}},
		)
		recipeList = append(recipeList,
			Recipe{ID: "smelt_iron", ResultItemID: "iron_ingot", RequiredItems: []Requirement{{ItemID: "iron_ore", Quantity: 2}, {ItemID: "charcoal", Quantity: 1}}, RequiredTechLevel: 4, EfficiencyModifier: 0.1, ProducedAmount: 1},
			Recipe{ID: "forge_iron_axe", ResultItemID: "iron_axe", RequiredItems: []Requirement{{ItemID: "iron_ingot", Quantity: 1}, {ItemID: "wood", Quantity: 1}}, RequiredTechLevel: 5, EfficiencyModifier: 0.05, ProducedAmount: 1},
			Recipe{ID: "forge_iron_pick", ResultItemID: "iron_pick", RequiredItems: []Requirement{{ItemID: "iron_ingot", Quantity: 1}, {ItemID: "wood", Quantity: 1}}, RequiredTechLevel: 5, EfficiencyModifier: 0.05, ProducedAmount: 1},
			Recipe{ID: "forge_iron_blade", ResultItemID: "iron_blade", RequiredItems: []Requirement{{ItemID: "iron_ingot", Quantity: 2}, {ItemID: "cordage", Quantity: 1}}, RequiredTechLevel: 6, EfficiencyModifier: 0.05, ProducedAmount: 1},
		)
	}

	return NewCatalog(itemList, recipeList)
}
