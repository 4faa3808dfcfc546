package civ

// Record caps, matching the exposed snapshot bounds.
const (
	timelineCap   = 800
	dialogueCap   = 200
	metricsCap    = 1200
	groundItemCap = 320
	notesCap      = 620
	relSeriesCap  = 240
)

// TimelineEntry is one notable event in civilization history.
type TimelineEntry struct {
	ID          string `json:"id"`
	Tick        uint64 `json:"tick"`
	Category    string `json:"category"` // "foundation", "war", "law", "identity", "building", "death", ...
	FactionID   string `json:"faction_id,omitempty"`
	Description string `json:"description"`
}

// Dialogue is one recorded exchange between two agents.
type Dialogue struct {
	ID          string `json:"id"`
	Tick        uint64 `json:"tick"`
	FactionID   string `json:"faction_id"`
	SpeakerAID  string `json:"speaker_a_id"`
	SpeakerBID  string `json:"speaker_b_id"`
	Tokens      string `json:"tokens"`
	Gloss       string `json:"gloss,omitempty"`
	Tone        string `json:"tone,omitempty"`
	ActionContext string `json:"action_context,omitempty"`
}

// MetricPoint is one sampled measurement series point.
type MetricPoint struct {
	Tick        uint64  `json:"tick"`
	Population  int     `json:"population"`
	Factions    int     `json:"factions"`
	TotalFood   float64 `json:"total_food"`
	AvgStress   float64 `json:"avg_stress"`
	Territory   int     `json:"territory_tiles"`
	Notes       int     `json:"notes"`
	GroundItems int     `json:"ground_items"`
}

// GroundItemStack is a pile of items lying on a tile. Stacks are unique per
// (item, x, y, naturalSpawn).
type GroundItemStack struct {
	ID            string `json:"id"`
	ItemID        string `json:"item_id"`
	Quantity      int    `json:"quantity"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	SpawnedAtTick uint64 `json:"spawned_at_tick"`
	NaturalSpawn  bool   `json:"natural_spawn"`
}

// Note is one written record produced by a literate agent.
type Note struct {
	ID                string `json:"id"`
	AuthorID          string `json:"author_id"`
	FactionID         string `json:"faction_id"`
	CreatedAtTick     uint64 `json:"created_at_tick"`
	TokenContent      string `json:"token_content"`
	TranslatedContent string `json:"translated_content,omitempty"`
	X                 int    `json:"x"`
	Y                 int    `json:"y"`
}

// RelationPoint is one sampled relation state for a faction pair.
type RelationPoint struct {
	Tick    uint64  `json:"tick"`
	Status  string  `json:"status"`
	Trust   float64 `json:"trust"`
	Tension float64 `json:"tension"`
}

// MentalLog is one recorded plan refresh for an agent.
type MentalLog struct {
	Tick        uint64   `json:"tick"`
	AgentID     string   `json:"agent_id"`
	Intent      string   `json:"intent"`
	ReasonCodes []string `json:"reason_codes"`
	Tone        string   `json:"tone"`
}

// appendBounded appends to a ring-buffer-like slice, trimming the front when
// the bound is exceeded.
func appendBounded[T any](list []T, item T, bound int) []T {
	list = append(list, item)
	if len(list) > bound {
		list = list[len(list)-bound:]
	}
	return list
}
