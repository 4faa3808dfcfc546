// Package structures provides placement validation, build cost deduction,
// and progressive construction of faction structures.
package structures

import (
	"fmt"

	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// Type enumerates concrete structure kinds.
type Type string

const (
	TypeHouse      Type = "house"
	TypeStorage    Type = "storage"
	TypeWall       Type = "wall"
	TypeTemple     Type = "temple"
	TypeFarmPlot   Type = "farm_plot"
	TypeWatchTower Type = "watch_tower"
	TypeCamp       Type = "camp"
	TypeRoad       Type = "road"
)

// Blueprint is the logical structure request agents make; the structure
// system maps it onto a concrete type.
type Blueprint string

const (
	BlueprintHut        Blueprint = "hut"
	BlueprintStorage    Blueprint = "storage"
	BlueprintPalisade   Blueprint = "palisade"
	BlueprintShrine     Blueprint = "shrine"
	BlueprintFarmPlot   Blueprint = "farm_plot"
	BlueprintWatchTower Blueprint = "watch_tower"
)

// blueprintTypes maps logical blueprints to concrete structure types.
var blueprintTypes = map[Blueprint]Type{
	BlueprintHut:        TypeHouse,
	BlueprintStorage:    TypeStorage,
	BlueprintPalisade:   TypeWall,
	BlueprintShrine:     TypeTemple,
	BlueprintFarmPlot:   TypeFarmPlot,
	BlueprintWatchTower: TypeWatchTower,
}

// ResolveBlueprint maps a blueprint to its concrete structure type.
func ResolveBlueprint(b Blueprint) (Type, bool) {
	t, ok := blueprintTypes[b]
	return t, ok
}

// Structure is one placed (possibly unfinished) building.
type Structure struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Blueprint   Blueprint `json:"blueprint,omitempty"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	FactionID   string    `json:"faction_id"`
	HP          float64   `json:"hp"`
	Storage     float64   `json:"storage"`
	BuiltAtTick uint64    `json:"built_at_tick"`
	Completed   bool      `json:"completed"`
	Progress    float64   `json:"progress"` // 0..1
}

// BuildTask tracks construction work remaining for one structure.
type BuildTask struct {
	ID          string `json:"id"`
	StructureID string `json:"structure_id"`
	Progress    int    `json:"progress"` // Work units done
	Required    int    `json:"required"` // Work units needed
}

// Placement rejection reasons.
const (
	ReasonUnknownStructure      = "unknown_structure"
	ReasonInvalidTile           = "invalid_tile"
	ReasonInsufficientMaterials = "insufficient_materials"
)

// BuildResult reports the outcome of a build request.
type BuildResult struct {
	OK          bool   `json:"ok"`
	Reason      string `json:"reason,omitempty"`
	StructureID string `json:"structure_id,omitempty"`
}

// MaterialStore is the faction-side stockpile the build cost is deducted
// from. Consume must be all-or-nothing per call.
type MaterialStore interface {
	CountMaterial(id string) int
	ConsumeMaterial(id string, qty int) bool
}

// blueprintSpec holds per-blueprint cost and construction work.
type blueprintSpec struct {
	cost     map[string]int
	work     int
	hp       float64
	storage  float64
}

var blueprintSpecs = map[Blueprint]blueprintSpec{
	BlueprintHut:        {cost: map[string]int{"wood": 6}, work: 24, hp: 60},
	BlueprintStorage:    {cost: map[string]int{"wood": 8, "stone": 2}, work: 32, hp: 80, storage: 120},
	BlueprintPalisade:   {cost: map[string]int{"wood": 10}, work: 28, hp: 100},
	BlueprintShrine:     {cost: map[string]int{"stone": 8, "wood": 2}, work: 44, hp: 90},
	BlueprintFarmPlot:   {cost: map[string]int{"wood": 3}, work: 16, hp: 30},
	BlueprintWatchTower: {cost: map[string]int{"wood": 6, "stone": 6}, work: 40, hp: 110},
}

// hazardBuildCeiling is the raw hazard byte above which nothing is built.
const hazardBuildCeiling = 120

// System owns structures and build tasks.
type System struct {
	structures []*Structure
	tasks      []*BuildTask
	byTile     map[int]*Structure
	byID       map[string]*Structure
	width      int
	nextID     uint64
}

// NewSystem creates an empty structure system over a grid of the given width.
func NewSystem(width int) *System {
	return &System{
		byTile: make(map[int]*Structure),
		byID:   make(map[string]*Structure),
		width:  width,
		nextID: 1,
	}
}

// Structures returns all structures in placement order.
func (s *System) Structures() []*Structure { return s.structures }

// StructureAt returns the structure on the tile, if any.
func (s *System) StructureAt(x, y int) *Structure { return s.byTile[y*s.width+x] }

// Get returns the structure with the given id.
func (s *System) Get(id string) (*Structure, bool) {
	st, ok := s.byID[id]
	return st, ok
}

// Tasks returns the open build tasks.
func (s *System) Tasks() []*BuildTask { return s.tasks }

// validTile checks the shared and per-blueprint tile rules.
func (s *System) validTile(g *world.Grid, b Blueprint, x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	if s.StructureAt(x, y) != nil {
		return false
	}
	biome := g.BiomeAt(x, y)
	if biome.IsWater() || biome == world.BiomeLava {
		return false
	}
	i := g.Index(x, y)
	if g.Hazard[i] > hazardBuildCeiling {
		return false
	}
	switch b {
	case BlueprintFarmPlot:
		if g.Fertility[i] < 120 || biome == world.BiomeRock {
			return false
		}
	case BlueprintShrine:
		if g.Hazard[i] > 70 {
			return false
		}
	case BlueprintWatchTower:
		if !biome.IsElevated() {
			return false
		}
	}
	return true
}

// RequestBuild validates placement, deducts materials, and opens a build
// task. Rejection reasons are checked in order: unknown structure, invalid
// tile, insufficient materials.
func (s *System) RequestBuild(g *world.Grid, factionID string, b Blueprint, x, y int, store MaterialStore, tick uint64) BuildResult {
	spec, known := blueprintSpecs[b]
	structType, mapped := ResolveBlueprint(b)
	if !known || !mapped {
		return BuildResult{OK: false, Reason: ReasonUnknownStructure}
	}
	if !s.validTile(g, b, x, y) {
		return BuildResult{OK: false, Reason: ReasonInvalidTile}
	}
	for mat, qty := range spec.cost {
		if store.CountMaterial(mat) < qty {
			return BuildResult{OK: false, Reason: ReasonInsufficientMaterials}
		}
	}
	for mat, qty := range spec.cost {
		store.ConsumeMaterial(mat, qty)
	}

	id := fmt.Sprintf("structure-%d", s.nextID)
	s.nextID++
	st := &Structure{
		ID:          id,
		Type:        structType,
		Blueprint:   b,
		X:           x,
		Y:           y,
		FactionID:   factionID,
		HP:          spec.hp,
		Storage:     spec.storage,
		BuiltAtTick: tick,
	}
	s.structures = append(s.structures, st)
	s.byTile[y*s.width+x] = st
	s.byID[id] = st
	s.tasks = append(s.tasks, &BuildTask{
		ID:          fmt.Sprintf("task-%s", id),
		StructureID: id,
		Required:    spec.work,
	})
	return BuildResult{OK: true, StructureID: id}
}

// perTaskCap limits work units a single task can absorb per tick.
const perTaskCap = 3

// Step consumes up to budget work units across open tasks in order. Every
// open task receives at least one unit per tick while budget remains; no
// task absorbs more than three per tick. Completed tasks are closed and
// their structures marked complete.
func (s *System) Step(tick uint64, budget int) []string {
	if budget < len(s.tasks) {
		// At least one unit per task per tick.
		budget = len(s.tasks)
	}
	var completed []string
	remaining := s.tasks[:0]
	for _, task := range s.tasks {
		work := perTaskCap
		if work > budget {
			work = budget
		}
		if work < 1 {
			work = 1
		}
		task.Progress += work
		budget -= work

		st := s.byID[task.StructureID]
		req := task.Required
		if req < 1 {
			req = 1
		}
		if st != nil {
			st.Progress = float64(task.Progress) / float64(req)
			if st.Progress > 1 {
				st.Progress = 1
			}
		}
		if task.Progress >= task.Required {
			if st != nil {
				st.Completed = true
				st.Progress = 1
				st.BuiltAtTick = tick
				completed = append(completed, st.ID)
			}
			continue
		}
		remaining = append(remaining, task)
	}
	s.tasks = remaining
	return completed
}

// State is the plain-data export of the system.
type State struct {
	Structures []Structure `json:"structures"`
	Tasks      []BuildTask `json:"tasks"`
	Width      int         `json:"width"`
	NextID     uint64      `json:"next_id"`
}

// ExportState returns a deep copy of all structures and tasks.
func (s *System) ExportState() State {
	st := State{Width: s.width, NextID: s.nextID}
	for _, sc := range s.structures {
		st.Structures = append(st.Structures, *sc)
	}
	for _, t := range s.tasks {
		st.Tasks = append(st.Tasks, *t)
	}
	return st
}

// HydrateState replaces the system contents from exported state.
func (s *System) HydrateState(st State) error {
	if st.Width <= 0 {
		return fmt.Errorf("structure state has invalid width %d", st.Width)
	}
	s.width = st.Width
	s.nextID = st.NextID
	if s.nextID == 0 {
		s.nextID = 1
	}
	s.structures = nil
	s.tasks = nil
	s.byTile = make(map[int]*Structure, len(st.Structures))
	s.byID = make(map[string]*Structure, len(st.Structures))
	for i := range st.Structures {
		sc := st.Structures[i]
		cp := sc
		s.structures = append(s.structures, &cp)
		s.byTile[cp.Y*s.width+cp.X] = &cp
		s.byID[cp.ID] = &cp
	}
	for i := range st.Tasks {
		t := st.Tasks[i]
		cp := t
		s.tasks = append(s.tasks, &cp)
	}
	return nil
}
