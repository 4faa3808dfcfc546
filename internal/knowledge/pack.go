// Package knowledge is the read-only collaborator surface: an immutable
// per-tick projection of core state, a tool router over it, and the cache
// and rate limiter that shield the core from external query load.
package knowledge

import (
	"sort"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
	"github.com/HiddenPCOfficial/biotica/internal/territory"
)

// Era is a span of history derived from the timeline.
type Era struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FromTick  uint64 `json:"from_tick"`
	ToTick    uint64 `json:"to_tick"`
	KeyEvents int    `json:"key_events"`
}

// ActiveEvent is one recent high-salience happening.
type ActiveEvent struct {
	ID        string  `json:"id"`
	Tick      uint64  `json:"tick"`
	Category  string  `json:"category"`
	FactionID string  `json:"faction_id,omitempty"`
	Intensity float64 `json:"intensity"`
	Summary   string  `json:"summary"`
}

// Pack is the immutable projection of one tick. All slices are copies.
type Pack struct {
	Tick      uint64                          `json:"tick"`
	World     civ.WorldSummary                `json:"world"`
	Species   []civ.SpeciesStat               `json:"species"`
	Factions  []civ.FactionSummary            `json:"factions"`
	Members   map[string][]civ.MemberSummary  `json:"members"`
	Agents    []civ.Agent                     `json:"agents"`
	Timeline  []civ.TimelineEntry             `json:"timeline"`
	Dialogues []civ.Dialogue                  `json:"dialogues"`
	Notes     []civ.Note                      `json:"notes"`
	Ground    []civ.GroundItemStack           `json:"ground_items"`
	Territory []territory.OverlayCell         `json:"territory"`
	Metrics   []civ.MetricPoint               `json:"metrics"`
	Events    []ActiveEvent                   `json:"events"`
	Eras      []Era                           `json:"eras"`
}

// activeEventCap limits the exposed active-event list.
const activeEventCap = 12

// eraSpan is the tick width of one derived era.
const eraSpan = 5000

// BuildPack assembles the projection from the orchestrator. The result holds
// no references into core state.
func BuildPack(s *civ.System) *Pack {
	p := &Pack{
		Tick:      s.Tick(),
		World:     s.BuildWorldSummary(),
		Species:   s.SpeciesStats(),
		Factions:  s.FactionSummaries(),
		Members:   make(map[string][]civ.MemberSummary),
		Agents:    s.Agents(),
		Timeline:  s.Timeline(),
		Dialogues: s.Dialogues(),
		Notes:     s.Notes(),
		Ground:    s.GroundItems(),
		Territory: s.TerritoryOverlay(4, 512),
		Metrics:   s.Metrics(),
	}
	for _, f := range p.Factions {
		p.Members[f.ID] = s.MemberSummaries(f.ID)
	}
	p.Events = deriveEvents(p.Timeline)
	p.Eras = deriveEras(p.Timeline)
	return p
}

// categoryIntensity ranks timeline categories for the active-event view.
var categoryIntensity = map[string]float64{
	"war":        1.0,
	"foundation": 0.9,
	"religion":   0.8,
	"migration":  0.7,
	"identity":   0.65,
	"technology": 0.6,
	"literacy":   0.55,
	"building":   0.4,
	"law":        0.5,
	"birth":      0.2,
	"death":      0.3,
}

// deriveEvents ranks recent timeline entries by intensity, keeping the top
// slice.
func deriveEvents(timeline []civ.TimelineEntry) []ActiveEvent {
	events := make([]ActiveEvent, 0, len(timeline))
	for _, e := range timeline {
		intensity := categoryIntensity[e.Category]
		if intensity == 0 {
			intensity = 0.25
		}
		events = append(events, ActiveEvent{
			ID:        e.ID,
			Tick:      e.Tick,
			Category:  e.Category,
			FactionID: e.FactionID,
			Intensity: intensity,
			Summary:   e.Description,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Intensity != events[j].Intensity {
			return events[i].Intensity > events[j].Intensity
		}
		return events[i].Tick > events[j].Tick
	})
	if len(events) > activeEventCap {
		events = events[:activeEventCap]
	}
	return events
}

var eraNames = []string{
	"Age of Settling", "Age of Hearths", "Age of Borders",
	"Age of Signs", "Age of Accord", "Age of Iron",
}

// deriveEras slices history into fixed spans named in sequence.
func deriveEras(timeline []civ.TimelineEntry) []Era {
	if len(timeline) == 0 {
		return nil
	}
	last := timeline[len(timeline)-1].Tick
	var eras []Era
	for from := uint64(0); from <= last; from += eraSpan {
		to := from + eraSpan - 1
		count := 0
		for _, e := range timeline {
			if e.Tick >= from && e.Tick <= to {
				count++
			}
		}
		name := eraNames[len(eras)%len(eraNames)]
		eras = append(eras, Era{
			ID:        name,
			Name:      name,
			FromTick:  from,
			ToTick:    to,
			KeyEvents: count,
		})
	}
	return eras
}
