// Package territory maintains per-faction influence fields over the grid and
// derives ownership, control and borders from them.
package territory

import (
	"fmt"
	"math"

	"github.com/HiddenPCOfficial/biotica/internal/structures"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// AgentStamp is the per-agent input to the influence pass.
type AgentStamp struct {
	X, Y   int
	Role   string // "Leader" and "Guard" carry extra weight
	Energy float64
}

// FactionInput is one faction's contribution for a territory step.
type FactionInput struct {
	ID         string
	HomeX      int
	HomeY      int
	Structures []*structures.Structure
	Agents     []AgentStamp
}

// factionField holds one faction's scalar fields.
type factionField struct {
	influence []float32
	control   []float32
	claimed   []byte
}

// System owns the territory state for the whole world.
type System struct {
	width, height int

	order  []string // Faction registration order; marker = index+1
	fields map[string]*factionField

	ownerMap   []uint16 // 0 = unclaimed, else 1-based faction marker
	controlMap []byte
	borderMap  []byte
	version    uint64
}

// ownershipFloor is the minimum influence required to own a cell.
const ownershipFloor = 0.035

// NewSystem creates an empty territory system for a grid.
func NewSystem(width, height int) *System {
	n := width * height
	return &System{
		width:      width,
		height:     height,
		fields:     make(map[string]*factionField),
		ownerMap:   make([]uint16, n),
		controlMap: make([]byte, n),
		borderMap:  make([]byte, n),
	}
}

// Version returns the monotonically increasing step counter.
func (s *System) Version() uint64 { return s.version }

// OwnerMap returns the current owner markers (live slice, read-only use).
func (s *System) OwnerMap() []uint16 { return s.ownerMap }

// ControlMap returns the 0..255 control field.
func (s *System) ControlMap() []byte { return s.controlMap }

// BorderMap returns the border flags.
func (s *System) BorderMap() []byte { return s.borderMap }

// Marker returns the 1-based owner marker of a faction, 0 if unknown.
func (s *System) Marker(factionID string) uint16 {
	for i, id := range s.order {
		if id == factionID {
			return uint16(i + 1)
		}
	}
	return 0
}

// FactionByMarker returns the faction id for a 1-based marker.
func (s *System) FactionByMarker(marker uint16) (string, bool) {
	i := int(marker) - 1
	if i < 0 || i >= len(s.order) {
		return "", false
	}
	return s.order[i], true
}

// ensureField registers the faction on first sight, preserving order.
func (s *System) ensureField(id string) *factionField {
	f, ok := s.fields[id]
	if !ok {
		n := s.width * s.height
		f = &factionField{
			influence: make([]float32, n),
			control:   make([]float32, n),
			claimed:   make([]byte, n),
		}
		s.fields[id] = f
		s.order = append(s.order, id)
	}
	return f
}

// ClaimedCount returns the number of tiles the faction currently claims.
func (s *System) ClaimedCount(factionID string) int {
	f, ok := s.fields[factionID]
	if !ok {
		return 0
	}
	count := 0
	for _, c := range f.claimed {
		if c == 1 {
			count++
		}
	}
	return count
}

// ClaimedTiles returns the per-tile claim flags for a faction, or nil.
func (s *System) ClaimedTiles(factionID string) []byte {
	f, ok := s.fields[factionID]
	if !ok {
		return nil
	}
	return f.claimed
}

// Influence returns the faction's influence field, or nil.
func (s *System) Influence(factionID string) []float32 {
	f, ok := s.fields[factionID]
	if !ok {
		return nil
	}
	return f.influence
}

// structure stamp table: radius and peak strength by type.
var structureStamps = map[structures.Type]struct {
	radius   int
	strength float64
}{
	structures.TypeTemple:     {5, 1.18},
	structures.TypeWatchTower: {5, 1.15},
	structures.TypeStorage:    {4, 1.25},
	structures.TypeHouse:      {4, 1.1},
	structures.TypeCamp:       {5, 0.95},
	structures.TypeFarmPlot:   {3, 0.85},
	structures.TypeWall:       {3, 0.58},
	structures.TypeRoad:       {2, 0.42},
}

// Step runs one territory update: decay, home/structure/agent stamps, then
// ownership resolution. Faction ordering is the registration order, so the
// result is independent of map iteration. Every registered faction decays,
// including ones absent from this step's inputs.
func (s *System) Step(g *world.Grid, inputs []FactionInput) {
	for _, in := range inputs {
		s.ensureField(in.ID)
	}
	for i, id := range s.order {
		s.decay(g, s.fields[id], uint16(i+1))
	}

	for _, in := range inputs {
		f := s.fields[in.ID]
		s.stamp(f.influence, in.HomeX, in.HomeY, 6, 1.45)
		for _, st := range in.Structures {
			spec, ok := structureStamps[st.Type]
			if !ok {
				continue
			}
			strength := spec.strength
			if !st.Completed {
				strength *= st.Progress
			}
			s.stamp(f.influence, st.X, st.Y, spec.radius, strength)
		}
		for _, a := range in.Agents {
			active := 1.0
			if a.Energy <= 30 {
				active = 0.6
			}
			role := 1.0
			switch a.Role {
			case "Leader":
				role = 1.25
			case "Guard":
				role = 1.15
			}
			s.stamp(f.influence, a.X, a.Y, 2, 0.42*active*role)
		}
	}

	s.resolveOwnership()
	s.version++
}

// decay applies the per-step influence falloff plus hazard and foreign-owner
// pressure.
func (s *System) decay(g *world.Grid, f *factionField, marker uint16) {
	for i := range f.influence {
		v := float64(f.influence[i]) * 0.958
		v -= 0.03 * float64(g.Hazard[i]) / 255
		if s.ownerMap[i] != 0 && s.ownerMap[i] != marker {
			v -= 0.025
		}
		if v < 0 {
			v = 0
		}
		f.influence[i] = float32(v)
	}
}

// stamp adds a radial blob with linear falloff 0.45 + 0.55*(1-d/r).
func (s *System) stamp(field []float32, cx, cy, radius int, peak float64) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || y < 0 || x >= s.width || y >= s.height {
				continue
			}
			d := math.Sqrt(float64(dx*dx + dy*dy))
			r := float64(radius)
			if d > r {
				continue
			}
			falloff := 0.45 + 0.55*(1-d/r)
			field[y*s.width+x] += float32(peak * falloff)
		}
	}
}

// resolveOwnership recomputes owner, control, claims and borders.
func (s *System) resolveOwnership() {
	n := s.width * s.height
	for i := 0; i < n; i++ {
		var top, second float64
		var topMarker uint16
		for fi, id := range s.order {
			v := float64(s.fields[id].influence[i])
			if v > top {
				second = top
				top = v
				topMarker = uint16(fi + 1)
			} else if v > second {
				second = v
			}
		}

		if top > ownershipFloor {
			s.ownerMap[i] = topMarker
			control := (top - second) / (top + second)
			s.controlMap[i] = byte(clamp01(control) * 255)
			for fi, id := range s.order {
				f := s.fields[id]
				if uint16(fi+1) == topMarker {
					f.control[i] = float32(control)
					if control >= 0.5 {
						f.claimed[i] = 1
					} else {
						f.claimed[i] = 0
					}
				} else {
					f.control[i] = 0
					f.claimed[i] = 0
				}
			}
		} else {
			s.ownerMap[i] = 0
			s.controlMap[i] = 0
			for _, id := range s.order {
				s.fields[id].control[i] = 0
				s.fields[id].claimed[i] = 0
			}
		}
	}

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			i := y*s.width + x
			s.borderMap[i] = 0
			owner := s.ownerMap[i]
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= s.width || ny >= s.height {
					continue
				}
				if s.ownerMap[ny*s.width+nx] != owner {
					s.borderMap[i] = 1
					break
				}
			}
		}
	}
}

// OverlayCell is one sampled cell of the territory summary.
type OverlayCell struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Owner   uint16 `json:"owner"`
	Control byte   `json:"control"`
	Border  bool   `json:"border"`
}

// BuildSummary samples owned cells with the given stride, up to maxCells.
func (s *System) BuildSummary(stride, maxCells int) []OverlayCell {
	if stride < 1 {
		stride = 1
	}
	var out []OverlayCell
	for y := 0; y < s.height; y += stride {
		for x := 0; x < s.width; x += stride {
			if maxCells > 0 && len(out) >= maxCells {
				return out
			}
			i := y*s.width + x
			if s.ownerMap[i] == 0 {
				continue
			}
			out = append(out, OverlayCell{
				X: x, Y: y,
				Owner:   s.ownerMap[i],
				Control: s.controlMap[i],
				Border:  s.borderMap[i] == 1,
			})
		}
	}
	return out
}

// FactionFieldState is the plain-data export of one faction's fields.
type FactionFieldState struct {
	FactionID string    `json:"faction_id"`
	Influence []float32 `json:"influence"`
	Control   []float32 `json:"control"`
	Claimed   []int     `json:"claimed"`
}

// State is the plain-data export of the territory system.
type State struct {
	Width    int                 `json:"width"`
	Height   int                 `json:"height"`
	Order    []string            `json:"order"`
	Fields   []FactionFieldState `json:"fields"`
	OwnerMap []uint16            `json:"owner_map"`
	Control  []int               `json:"control_map"`
	Border   []int               `json:"border_map"`
	Version  uint64              `json:"version"`
}

// ExportState returns a deep copy of the full territory state.
func (s *System) ExportState() State {
	st := State{
		Width:   s.width,
		Height:  s.height,
		Order:   append([]string(nil), s.order...),
		Version: s.version,
	}
	st.OwnerMap = append([]uint16(nil), s.ownerMap...)
	st.Control = bytesToInts(s.controlMap)
	st.Border = bytesToInts(s.borderMap)
	for _, id := range s.order {
		f := s.fields[id]
		st.Fields = append(st.Fields, FactionFieldState{
			FactionID: id,
			Influence: append([]float32(nil), f.influence...),
			Control:   append([]float32(nil), f.control...),
			Claimed:   bytesToInts(f.claimed),
		})
	}
	return st
}

// HydrateState replaces the territory state. Field lengths must match the
// declared dimensions.
func (s *System) HydrateState(st State) error {
	n := st.Width * st.Height
	if st.Width <= 0 || st.Height <= 0 {
		return fmt.Errorf("territory state has invalid dimensions %dx%d", st.Width, st.Height)
	}
	if len(st.OwnerMap) != n || len(st.Control) != n || len(st.Border) != n {
		return fmt.Errorf("territory state field lengths do not match %dx%d", st.Width, st.Height)
	}
	s.width = st.Width
	s.height = st.Height
	s.version = st.Version
	s.order = append([]string(nil), st.Order...)
	s.ownerMap = append([]uint16(nil), st.OwnerMap...)
	s.controlMap = make([]byte, n)
	intsToBytes(st.Control, s.controlMap)
	s.borderMap = make([]byte, n)
	intsToBytes(st.Border, s.borderMap)
	s.fields = make(map[string]*factionField, len(st.Fields))
	for _, fs := range st.Fields {
		if len(fs.Influence) != n || len(fs.Control) != n || len(fs.Claimed) != n {
			return fmt.Errorf("territory faction %s field lengths do not match", fs.FactionID)
		}
		f := &factionField{
			influence: append([]float32(nil), fs.Influence...),
			control:   append([]float32(nil), fs.Control...),
			claimed:   make([]byte, n),
		}
		intsToBytes(fs.Claimed, f.claimed)
		s.fields[fs.FactionID] = f
	}
	for _, id := range s.order {
		if _, ok := s.fields[id]; !ok {
			return fmt.Errorf("territory order references unknown faction %s", id)
		}
	}
	return nil
}

func bytesToInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func intsToBytes(src []int, dst []byte) {
	for i, v := range src {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		dst[i] = byte(v)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
