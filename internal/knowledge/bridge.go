package knowledge

import (
	"fmt"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
	"github.com/HiddenPCOfficial/biotica/internal/narrative"
)

// Bridge feeds the narrative surface from the knowledge projection. It keeps
// the router's pack current and completes outbound request payloads through
// router tools, so the projection is the single read surface collaborators
// see. Refresh must run on the simulation thread between ticks; FillPayload
// only reads the immutable pack and is safe from the worker goroutine.
type Bridge struct {
	sys    *civ.System
	router *ToolRouter
}

// NewBridge wires a bridge over the orchestrator. The router starts without
// a projection; call Refresh before the first collaborator batch.
func NewBridge(sys *civ.System) *Bridge {
	return &Bridge{sys: sys, router: NewToolRouter(nil)}
}

// Refresh rebuilds the projection from current core state.
func (b *Bridge) Refresh() {
	b.router.SetPack(BuildPack(b.sys))
}

// Router exposes the bridge's tool router for external Q&A callers.
func (b *Bridge) Router() *ToolRouter { return b.router }

// FillPayload completes a narrative request from the projection. Payload
// fields the core already set are left untouched.
func (b *Bridge) FillPayload(req *narrative.Request) {
	if req.Payload == nil {
		req.Payload = make(map[string]any)
	}
	switch req.Kind {
	case narrative.KindFactionIdentity:
		if _, ok := req.Payload["worldSummary"]; !ok {
			req.Payload["worldSummary"] = b.worldSummary(req.FactionID)
		}
	case narrative.KindChronicle:
		if _, ok := req.Payload["recentLogs"]; !ok {
			req.Payload["recentLogs"] = b.recentLogs(req.FactionID)
		}
	}
}

// recentLogs projects a faction's recent timeline descriptions.
func (b *Bridge) recentLogs(factionID string) []string {
	res := b.router.CallTool("getRecentLogs", map[string]any{"limit": 12, "factionId": factionID})
	if !res.OK {
		return nil
	}
	entries, ok := res.Data.([]civ.TimelineEntry)
	if !ok {
		return nil
	}
	logs := make([]string, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, e.Description)
	}
	return logs
}

// worldSummary composes the identity-request context line from the world and
// faction projections.
func (b *Bridge) worldSummary(factionID string) string {
	line := ""
	if res := b.router.CallTool("getWorldSummary", nil); res.OK {
		if w, ok := res.Data.(civ.WorldSummary); ok {
			line = fmt.Sprintf("tick %d: population %d across %d factions, %d species",
				w.Tick, w.Population, w.FactionCount, w.Biodiversity)
		}
	}
	if res := b.router.CallTool("getCiv", map[string]any{"civId": factionID}); res.OK {
		if data, ok := res.Data.(map[string]any); ok {
			if f, ok := data["faction"].(civ.FactionSummary); ok {
				line += fmt.Sprintf("; %d members of %s at (%d,%d), strategy %s, literacy %d, territory %d tiles, symbol %q",
					f.Members, f.SpeciesID, f.HomeX, f.HomeY, f.Strategy, f.Literacy, f.TerritoryTiles, f.IdentitySymbol)
			}
		}
	}
	return line
}
