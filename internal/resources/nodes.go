// Package resources provides tool-gated harvestable nodes placed on land
// tiles and their regeneration.
package resources

import (
	"fmt"
	"math"
	"sort"

	"github.com/HiddenPCOfficial/biotica/internal/materials"
	"github.com/HiddenPCOfficial/biotica/internal/rng"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// NodeType enumerates harvestable node kinds.
type NodeType string

const (
	NodeTree      NodeType = "tree"
	NodeStoneVein NodeType = "stone_vein"
	NodeIronVein  NodeType = "iron_vein"
	NodeClayPatch NodeType = "clay_patch"
)

// Node is one harvestable deposit on a tile.
type Node struct {
	ID              string   `json:"id"`
	Type            NodeType `json:"type"`
	X               int      `json:"x"`
	Y               int      `json:"y"`
	Amount          int      `json:"amount"`
	MaxAmount       int      `json:"max_amount"`
	RegenRate       float64  `json:"regen_rate"` // Whole units accumulate into Amount
	RequiredToolTag string   `json:"required_tool_tag,omitempty"`
	YieldsMaterial  string   `json:"yields_material_id"`

	regenAccum float64
}

// Harvest failure reasons, checked in this order.
const (
	ReasonNoNode       = "no_node"
	ReasonDepleted     = "depleted"
	ReasonToolRequired = "tool_required"
)

// HarvestResult reports the outcome of a harvest attempt.
type HarvestResult struct {
	OK              bool   `json:"ok"`
	Reason          string `json:"reason,omitempty"`
	HarvestedAmount int    `json:"harvested_amount"`
	MaterialID      string `json:"material_id,omitempty"`
}

// placementSalt mixes the world seed for node rolls ("sour").
const placementSalt = 0x736f7572

// hazardCeiling is the normalized hazard above which no node is placed.
const hazardCeiling = 0.7

// System owns all resource nodes and their regeneration cursor.
type System struct {
	nodes   []*Node
	byTile  map[int]*Node // Grid index → node; at most one node per tile
	width   int
	cursor  int
	treeMul float64
}

// Config tunes node placement.
type Config struct {
	TreeDensityMultiplier float64 // Clamped into [0.6, 2.1]
}

// NewSystem places nodes deterministically from the grid seed. Iron veins
// appear only when the material catalog carries iron ore.
func NewSystem(g *world.Grid, mats *materials.Catalog, cfg Config) *System {
	mul := cfg.TreeDensityMultiplier
	if mul < 0.6 {
		mul = 0.6
	}
	if mul > 2.1 {
		mul = 2.1
	}

	s := &System{
		byTile:  make(map[int]*Node),
		width:   g.Width,
		treeMul: mul,
	}

	hasIron := mats.Has("iron_ore")
	seed := g.Seed ^ placementSalt

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			b := g.BiomeAt(x, y)
			if !b.IsLand() {
				continue
			}
			if g.HazardAt(x, y) > hazardCeiling {
				continue
			}

			roll := rng.Hash(seed, x, y)
			var node *Node

			switch {
			case b.IsForestLike() || b == world.BiomeGrassland:
				threshold := 0.10
				switch b {
				case world.BiomeForest, world.BiomeJungle:
					threshold = 0.23
				case world.BiomeGrassland:
					threshold = 0.13
				}
				if roll < threshold*mul {
					node = newNode(NodeTree, x, y, seed, "wood", "axe", 0.004)
				}
			}

			if node == nil && b.IsRocky() {
				if roll < 0.085 {
					node = newNode(NodeStoneVein, x, y, seed, "stone", "pick", 0)
				} else if hasIron && roll < 0.085+0.024 {
					node = newNode(NodeIronVein, x, y, seed, "iron_ore", "pick", 0)
				}
			}

			if node == nil && b.IsClayLike() && roll < 0.045 {
				node = newNode(NodeClayPatch, x, y, seed, "clay", "", 0.002)
			}

			if node != nil {
				s.nodes = append(s.nodes, node)
				s.byTile[y*g.Width+x] = node
			}
		}
	}

	return s
}

// newNode samples amount bounds from a second, separately salted hash of the
// tile position that placed it.
func newNode(t NodeType, x, y int, seed uint32, material, toolTag string, regen float64) *Node {
	sizeRoll := rng.Hash(seed^0x6e6f6465, x, y)
	maxAmount := 6 + int(sizeRoll*18)
	return &Node{
		ID:              fmt.Sprintf("node-%s-%d-%d", t, x, y),
		Type:            t,
		X:               x,
		Y:               y,
		Amount:          maxAmount,
		MaxAmount:       maxAmount,
		RegenRate:       regen,
		RequiredToolTag: toolTag,
		YieldsMaterial:  material,
	}
}

// NodeAt returns the node on the tile, if any.
func (s *System) NodeAt(x, y int) *Node {
	return s.byTile[y*s.width+x]
}

// Nodes returns all nodes in placement order.
func (s *System) Nodes() []*Node { return s.nodes }

// baseYield per node type, multiplied by clamped power and floored.
var baseYield = map[NodeType]float64{
	NodeTree:      2.4,
	NodeClayPatch: 1.6,
	NodeStoneVein: 1.8,
	NodeIronVein:  1.4,
}

// HarvestAt attempts to harvest the node at (x,y). Preconditions are checked
// in order: missing node, depletion, tool gate.
func (s *System) HarvestAt(x, y int, toolTags []string, power float64) HarvestResult {
	node := s.NodeAt(x, y)
	if node == nil {
		return HarvestResult{OK: false, Reason: ReasonNoNode}
	}
	if node.Amount <= 0 {
		return HarvestResult{OK: false, Reason: ReasonDepleted}
	}
	if node.RequiredToolTag != "" && !hasTag(toolTags, node.RequiredToolTag) {
		return HarvestResult{OK: false, Reason: ReasonToolRequired}
	}

	if power < 0.1 {
		power = 0.1
	}
	if power > 5 {
		power = 5
	}
	yield := int(math.Floor(baseYield[node.Type] * power))
	if yield < 1 {
		yield = 1
	}
	if yield > node.Amount {
		yield = node.Amount
	}
	node.Amount -= yield

	return HarvestResult{OK: true, HarvestedAmount: yield, MaterialID: node.YieldsMaterial}
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

// Regenerate advances the round-robin cursor by budget entries, accumulating
// regen on each visited node. Whole accumulated units convert into amount up
// to the node maximum. Veins with zero regen never recover.
func (s *System) Regenerate(budget int) {
	if len(s.nodes) == 0 || budget <= 0 {
		return
	}
	for i := 0; i < budget; i++ {
		node := s.nodes[s.cursor]
		s.cursor = (s.cursor + 1) % len(s.nodes)
		if node.RegenRate <= 0 || node.Amount >= node.MaxAmount {
			continue
		}
		node.regenAccum += node.RegenRate
		for node.regenAccum >= 1 && node.Amount < node.MaxAmount {
			node.regenAccum--
			node.Amount++
		}
	}
}

// NodeState is the plain-data export of one node.
type NodeState struct {
	ID              string   `json:"id"`
	Type            NodeType `json:"type"`
	X               int      `json:"x"`
	Y               int      `json:"y"`
	Amount          int      `json:"amount"`
	MaxAmount       int      `json:"max_amount"`
	RegenRate       float64  `json:"regen_rate"`
	RegenAccum      float64  `json:"regen_accum"`
	RequiredToolTag string   `json:"required_tool_tag,omitempty"`
	YieldsMaterial  string   `json:"yields_material_id"`
}

// State is the plain-data export of the system.
type State struct {
	Nodes  []NodeState `json:"nodes"`
	Cursor int         `json:"cursor"`
	Width  int         `json:"width"`
}

// ExportState returns a deep copy of node state.
func (s *System) ExportState() State {
	st := State{Cursor: s.cursor, Width: s.width, Nodes: make([]NodeState, 0, len(s.nodes))}
	for _, n := range s.nodes {
		st.Nodes = append(st.Nodes, NodeState{
			ID: n.ID, Type: n.Type, X: n.X, Y: n.Y,
			Amount: n.Amount, MaxAmount: n.MaxAmount,
			RegenRate: n.RegenRate, RegenAccum: n.regenAccum,
			RequiredToolTag: n.RequiredToolTag, YieldsMaterial: n.YieldsMaterial,
		})
	}
	return st
}

// HydrateState replaces the system contents from exported state.
func (s *System) HydrateState(st State) error {
	if st.Width <= 0 {
		return fmt.Errorf("resource state has invalid width %d", st.Width)
	}
	s.width = st.Width
	s.cursor = st.Cursor
	s.nodes = s.nodes[:0]
	s.byTile = make(map[int]*Node, len(st.Nodes))
	for _, ns := range st.Nodes {
		n := &Node{
			ID: ns.ID, Type: ns.Type, X: ns.X, Y: ns.Y,
			Amount: ns.Amount, MaxAmount: ns.MaxAmount,
			RegenRate: ns.RegenRate, regenAccum: ns.RegenAccum,
			RequiredToolTag: ns.RequiredToolTag, YieldsMaterial: ns.YieldsMaterial,
		}
		s.nodes = append(s.nodes, n)
		s.byTile[n.Y*s.width+n.X] = n
	}
	if s.cursor >= len(s.nodes) {
		s.cursor = 0
	}
	sort.SliceStable(s.nodes, func(i, j int) bool {
		if s.nodes[i].Y != s.nodes[j].Y {
			return s.nodes[i].Y < s.nodes[j].Y
		}
		return s.nodes[i].X < s.nodes[j].X
	})
	return nil
}
