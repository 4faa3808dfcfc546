package knowledge

import (
	"sort"
	"strings"
	"sync"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
)

// Result is the structured outcome of one tool call.
type Result struct {
	OK    bool   `json:"ok"`
	Tool  string `json:"tool"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// ToolRouter answers read-only queries over a Pack. All outputs are
// deterministic projections; a failed call never mutates anything. The pack
// pointer is guarded so the simulation thread can swap in a fresh projection
// while collaborator goroutines are reading.
type ToolRouter struct {
	mu   sync.RWMutex
	pack *Pack
}

// NewToolRouter wraps a pack.
func NewToolRouter(pack *Pack) *ToolRouter {
	return &ToolRouter{pack: pack}
}

// SetPack swaps in a newer projection.
func (t *ToolRouter) SetPack(pack *Pack) {
	t.mu.Lock()
	t.pack = pack
	t.mu.Unlock()
}

// ToolNames lists the supported tools.
var ToolNames = []string{
	"getWorldSummary", "getTopSpecies", "getSpecies", "getSpeciesLineage",
	"getCreature", "searchCreatures", "getCiv", "listCivs", "getTerritory",
	"listActiveEvents", "getEvent", "listEras", "getEra", "queryRegion",
	"getRecentLogs",
}

// CallTool dispatches one tool by name.
func (t *ToolRouter) CallTool(name string, input map[string]any) Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.pack == nil {
		return Result{OK: false, Tool: name, Error: "no projection available"}
	}
	switch name {
	case "getWorldSummary":
		return Result{OK: true, Tool: name, Data: t.pack.World}
	case "getTopSpecies":
		return t.getTopSpecies(name, input)
	case "getSpecies":
		return t.getSpecies(name, input)
	case "getSpeciesLineage":
		return t.getSpeciesLineage(name, input)
	case "getCreature":
		return t.getCreature(name, input)
	case "searchCreatures":
		return t.searchCreatures(name, input)
	case "getCiv":
		return t.getCiv(name, input)
	case "listCivs":
		return Result{OK: true, Tool: name, Data: t.pack.Factions}
	case "getTerritory":
		return Result{OK: true, Tool: name, Data: t.pack.Territory}
	case "listActiveEvents":
		return Result{OK: true, Tool: name, Data: t.pack.Events}
	case "getEvent":
		return t.getEvent(name, input)
	case "listEras":
		return Result{OK: true, Tool: name, Data: t.pack.Eras}
	case "getEra":
		return t.getEra(name, input)
	case "queryRegion":
		return t.queryRegion(name, input)
	case "getRecentLogs":
		return t.getRecentLogs(name, input)
	default:
		return Result{OK: false, Tool: name, Error: "unknown tool"}
	}
}

func stringArg(input map[string]any, key string) string {
	v, _ := input[key].(string)
	return v
}

func intArg(input map[string]any, key string, def int) int {
	switch v := input[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func (t *ToolRouter) getTopSpecies(name string, input map[string]any) Result {
	limit := intArg(input, "limit", 5)
	var species []any
	list := t.pack.Species
	idx := make([]int, len(list))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return list[idx[a]].Population > list[idx[b]].Population
	})
	for _, i := range idx {
		if len(species) >= limit {
			break
		}
		species = append(species, list[i])
	}
	return Result{OK: true, Tool: name, Data: species}
}

func (t *ToolRouter) getSpecies(name string, input map[string]any) Result {
	id := stringArg(input, "speciesId")
	for _, sp := range t.pack.Species {
		if sp.SpeciesID == id {
			return Result{OK: true, Tool: name, Data: sp}
		}
	}
	return Result{OK: false, Tool: name, Error: "species not found"}
}

func (t *ToolRouter) getSpeciesLineage(name string, input map[string]any) Result {
	id := stringArg(input, "speciesId")
	// Lineage across agent generations of the species.
	type generationCount struct {
		Generation int `json:"generation"`
		Count      int `json:"count"`
	}
	counts := make(map[int]int)
	for _, a := range t.pack.Agents {
		if a.SpeciesID == id {
			counts[a.Generation]++
		}
	}
	if len(counts) == 0 {
		return Result{OK: false, Tool: name, Error: "species not found"}
	}
	gens := make([]int, 0, len(counts))
	for g := range counts {
		gens = append(gens, g)
	}
	sort.Ints(gens)
	out := make([]generationCount, 0, len(gens))
	for _, g := range gens {
		out = append(out, generationCount{Generation: g, Count: counts[g]})
	}
	return Result{OK: true, Tool: name, Data: out}
}

func (t *ToolRouter) getCreature(name string, input map[string]any) Result {
	id := stringArg(input, "creatureId")
	for _, a := range t.pack.Agents {
		if a.ID == id {
			return Result{OK: true, Tool: name, Data: a}
		}
	}
	return Result{OK: false, Tool: name, Error: "creature not found"}
}

func (t *ToolRouter) searchCreatures(name string, input map[string]any) Result {
	query := strings.ToLower(stringArg(input, "query"))
	limit := intArg(input, "limit", 20)
	var out []any
	for _, a := range t.pack.Agents {
		if len(out) >= limit {
			break
		}
		if query == "" ||
			strings.Contains(strings.ToLower(a.ID), query) ||
			strings.Contains(strings.ToLower(a.SpeciesID), query) ||
			strings.Contains(strings.ToLower(a.Role), query) {
			out = append(out, a)
		}
	}
	return Result{OK: true, Tool: name, Data: out}
}

func (t *ToolRouter) getCiv(name string, input map[string]any) Result {
	id := stringArg(input, "civId")
	for _, f := range t.pack.Factions {
		if f.ID == id {
			data := map[string]any{
				"faction": f,
				"members": t.pack.Members[f.ID],
			}
			return Result{OK: true, Tool: name, Data: data}
		}
	}
	return Result{OK: false, Tool: name, Error: "civ not found"}
}

func (t *ToolRouter) getEvent(name string, input map[string]any) Result {
	id := stringArg(input, "eventId")
	for _, e := range t.pack.Events {
		if e.ID == id {
			return Result{OK: true, Tool: name, Data: e}
		}
	}
	for _, e := range t.pack.Timeline {
		if e.ID == id {
			return Result{OK: true, Tool: name, Data: e}
		}
	}
	return Result{OK: false, Tool: name, Error: "event not found"}
}

func (t *ToolRouter) getEra(name string, input map[string]any) Result {
	id := stringArg(input, "eraId")
	for _, e := range t.pack.Eras {
		if e.ID == id {
			return Result{OK: true, Tool: name, Data: e}
		}
	}
	return Result{OK: false, Tool: name, Error: "era not found"}
}

func (t *ToolRouter) queryRegion(name string, input map[string]any) Result {
	x := intArg(input, "x", 0)
	y := intArg(input, "y", 0)
	radius := intArg(input, "radius", 4)

	type regionView struct {
		Territory []any `json:"territory"`
		Agents    []any `json:"agents"`
		Ground    []any `json:"ground_items"`
	}
	var view regionView
	inRange := func(px, py int) bool {
		dx, dy := px-x, py-y
		return dx*dx+dy*dy <= radius*radius
	}
	for _, c := range t.pack.Territory {
		if inRange(c.X, c.Y) {
			view.Territory = append(view.Territory, c)
		}
	}
	for _, a := range t.pack.Agents {
		if inRange(a.X, a.Y) {
			view.Agents = append(view.Agents, a)
		}
	}
	for _, g := range t.pack.Ground {
		if inRange(g.X, g.Y) {
			view.Ground = append(view.Ground, g)
		}
	}
	return Result{OK: true, Tool: name, Data: view}
}

func (t *ToolRouter) getRecentLogs(name string, input map[string]any) Result {
	limit := intArg(input, "limit", 20)
	factionID := stringArg(input, "factionId")
	timeline := t.pack.Timeline
	if factionID != "" {
		filtered := make([]civ.TimelineEntry, 0, len(timeline))
		for _, e := range timeline {
			if e.FactionID == factionID {
				filtered = append(filtered, e)
			}
		}
		timeline = filtered
	}
	if len(timeline) > limit {
		timeline = timeline[len(timeline)-limit:]
	}
	return Result{OK: true, Tool: name, Data: timeline}
}
