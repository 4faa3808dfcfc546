package cognition

import (
	"math"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
	"github.com/HiddenPCOfficial/biotica/internal/structures"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

// Step action types. Movement steps complete on arrival; the rest complete
// by elapsed ticks plus success. Any step, movement included, is forced
// complete after a two-tick stall allowance.
const (
	ActionMove      = "move"
	ActionGather    = "gather"
	ActionConstruct = "construct"
	ActionFortify   = "fortify_border"
	ActionFarm      = "farm"
	ActionTrade     = "trade"
	ActionDefend    = "defend"
	ActionCraft     = "craft"
	ActionWrite     = "write"
	ActionTalk      = "talk"
	ActionTame      = "tame"
	ActionHunt      = "hunt"
)

// stallGrace is how many ticks past RequiredTicks a step may run before it is
// forcibly completed.
const stallGrace = 2

// PlanStep is one executable unit of a plan.
type PlanStep struct {
	ActionType string               `json:"action_type"`
	Goal       Goal                 `json:"goal"`
	Required   int                  `json:"required_ticks"`
	TargetX    int                  `json:"target_x"`
	TargetY    int                  `json:"target_y"`
	Blueprint  structures.Blueprint `json:"structure_blueprint,omitempty"`
}

// Plan is an ordered sequence of 1–4 steps implementing an intent.
type Plan struct {
	Intent        Intent     `json:"intent"`
	Steps         []PlanStep `json:"steps"`
	CurrentStep   int        `json:"current_step"`
	StepElapsed   int        `json:"step_elapsed"`
	CreatedAtTick uint64     `json:"created_at_tick"`
}

// Active reports whether the plan still has steps to run.
func (p *Plan) Active() bool {
	return p != nil && p.CurrentStep < len(p.Steps)
}

// Step returns the current step, or nil when the plan is done.
func (p *Plan) Step() *PlanStep {
	if !p.Active() {
		return nil
	}
	return &p.Steps[p.CurrentStep]
}

// Advance moves to the next step.
func (p *Plan) Advance() {
	p.CurrentStep++
	p.StepElapsed = 0
}

// TickStep applies the step completion rules after one tick of work.
// Movement completes on arrival; other steps complete once elapsed reaches
// the requirement with success. Every step, movement included, completes
// forcibly after the stall grace.
func (p *Plan) TickStep(agentX, agentY int, success bool) {
	step := p.Step()
	if step == nil {
		return
	}
	p.StepElapsed++
	if step.ActionType == ActionMove {
		if agentX == step.TargetX && agentY == step.TargetY {
			p.Advance()
		} else if p.StepElapsed >= step.Required+stallGrace {
			p.Advance()
		}
		return
	}
	if p.StepElapsed >= step.Required && success {
		p.Advance()
		return
	}
	if p.StepElapsed >= step.Required+stallGrace {
		p.Advance()
	}
}

// PlanSystem turns intents into plans with scored targets.
type PlanSystem struct{}

// NewPlanSystem creates the plan builder.
func NewPlanSystem() *PlanSystem { return &PlanSystem{} }

// BuildContext is the spatial input to plan construction.
type BuildContext struct {
	X, Y         int // Agent position
	HomeX, HomeY int
	HasTradeHub  bool
}

// BuildPlan maps an intent to its step template with concrete targets.
func (ps *PlanSystem) BuildPlan(intent Intent, g *world.Grid, ctx BuildContext, tick uint64, r *rng.Rng) *Plan {
	plan := &Plan{Intent: intent, CreatedAtTick: tick}

	switch intent {
	case IntentExplore:
		tx, ty := ps.frontierTarget(g, ctx, r)
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalExplore, Required: 14, TargetX: tx, TargetY: ty},
			{ActionType: ActionGather, Goal: GoalExplore, Required: 3, TargetX: tx, TargetY: ty},
		}
	case IntentGather, IntentHunt:
		tx, ty := ps.gatherTarget(g, ctx, 6, r)
		goal := GoalGather
		action := ActionGather
		if intent == IntentHunt {
			action = ActionHunt
		}
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: goal, Required: 10, TargetX: tx, TargetY: ty},
			{ActionType: action, Goal: goal, Required: 4, TargetX: tx, TargetY: ty},
		}
	case IntentFarm:
		tx, ty := ps.gatherTarget(g, ctx, 4, r)
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalFarm, Required: 8, TargetX: tx, TargetY: ty},
			{ActionType: ActionFarm, Goal: GoalFarm, Required: 6, TargetX: tx, TargetY: ty},
		}
	case IntentBuild:
		gx, gy := ps.gatherTarget(g, ctx, 5, r)
		bx, by := ps.buildTarget(g, ctx, r)
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalGather, Required: 8, TargetX: gx, TargetY: gy},
			{ActionType: ActionGather, Goal: GoalGather, Required: 4, TargetX: gx, TargetY: gy},
			{ActionType: ActionMove, Goal: GoalBuild, Required: 8, TargetX: bx, TargetY: by},
			{ActionType: ActionConstruct, Goal: GoalBuild, Required: 6, TargetX: bx, TargetY: by, Blueprint: pickBlueprint(r)},
		}
	case IntentFortify:
		tx, ty := ps.frontierTarget(g, ctx, r)
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalDefend, Required: 10, TargetX: tx, TargetY: ty},
			{ActionType: ActionFortify, Goal: GoalBuild, Required: 8, TargetX: tx, TargetY: ty, Blueprint: structures.BlueprintPalisade},
		}
	case IntentMigrate:
		tx, ty := ps.migrationTarget(g, ctx, r)
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalExplore, Required: 24, TargetX: tx, TargetY: ty},
		}
	case IntentTrade, IntentNegotiate:
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalTrade, Required: 10, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
			{ActionType: ActionTrade, Goal: GoalTrade, Required: 5, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
		}
	case IntentDefend:
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalDefend, Required: 8, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
			{ActionType: ActionDefend, Goal: GoalDefend, Required: 6, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
		}
	case IntentInvent:
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalCraftItem, Required: 6, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
			{ActionType: ActionCraft, Goal: GoalCraftItem, Required: 8, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
		}
	case IntentWrite:
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalWrite, Required: 6, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
			{ActionType: ActionWrite, Goal: GoalWrite, Required: 10, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
		}
	case IntentExpandTerritory:
		tx, ty := ps.frontierTarget(g, ctx, r)
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalExplore, Required: 16, TargetX: tx, TargetY: ty},
			{ActionType: ActionDefend, Goal: GoalDefend, Required: 8, TargetX: tx, TargetY: ty},
		}
	case IntentDomesticate:
		tx, ty := ps.gatherTarget(g, ctx, 7, r)
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalExplore, Required: 12, TargetX: tx, TargetY: ty},
			{ActionType: ActionTame, Goal: GoalGather, Required: 10, TargetX: tx, TargetY: ty},
		}
	default:
		plan.Steps = []PlanStep{
			{ActionType: ActionMove, Goal: GoalExplore, Required: 10, TargetX: ctx.HomeX, TargetY: ctx.HomeY},
		}
	}

	return plan
}

func pickBlueprint(r *rng.Rng) structures.Blueprint {
	options := []structures.Blueprint{
		structures.BlueprintHut, structures.BlueprintStorage,
		structures.BlueprintFarmPlot, structures.BlueprintShrine,
		structures.BlueprintWatchTower,
	}
	return options[r.NextInt(len(options))]
}

// gatherTarget scans tiles in a radius maximizing fertility against hazard
// and distance.
func (ps *PlanSystem) gatherTarget(g *world.Grid, ctx BuildContext, radius int, r *rng.Rng) (int, int) {
	bestX, bestY := ctx.X, ctx.Y
	bestScore := -1e9
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := ctx.X+dx, ctx.Y+dy
			if !g.IsHabitable(x, y) {
				continue
			}
			dist := math.Sqrt(float64(dx*dx + dy*dy))
			score := g.FertilityAt(x, y)*1.2 - g.HazardAt(x, y)*1.1 - dist*0.03 + r.RangeFloat(0, 0.05)
			if score > bestScore {
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}
	return bestX, bestY
}

// buildTarget scores tiles around home for construction.
func (ps *PlanSystem) buildTarget(g *world.Grid, ctx BuildContext, r *rng.Rng) (int, int) {
	bestX, bestY := ctx.HomeX, ctx.HomeY
	bestScore := -1e9
	radius := 5
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := ctx.HomeX+dx, ctx.HomeY+dy
			if !g.IsHabitable(x, y) {
				continue
			}
			dist := math.Sqrt(float64(dx*dx + dy*dy))
			score := (1-g.HazardAt(x, y))*0.8 + g.FertilityAt(x, y)*0.22 -
				math.Abs(float64(dx+dy))*0.02 - dist*0.01 + r.RangeFloat(0, 0.02)
			if score > bestScore {
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}
	return bestX, bestY
}

// frontierTarget scans 36 polar angles in the ring [4,11] around home,
// preferring distant low-hazard fertile ground.
func (ps *PlanSystem) frontierTarget(g *world.Grid, ctx BuildContext, r *rng.Rng) (int, int) {
	bestX, bestY := ctx.X, ctx.Y
	bestScore := -1e9
	for i := 0; i < 36; i++ {
		angle := float64(i) * (2 * math.Pi / 36)
		dist := 4 + r.NextFloat()*7
		x := ctx.HomeX + int(math.Round(math.Cos(angle)*dist))
		y := ctx.HomeY + int(math.Round(math.Sin(angle)*dist))
		if !g.IsHabitable(x, y) {
			continue
		}
		homeDist := math.Sqrt(float64((x-ctx.HomeX)*(x-ctx.HomeX) + (y-ctx.HomeY)*(y-ctx.HomeY)))
		score := homeDist*0.03 + (1-g.HazardAt(x, y))*0.7 + g.FertilityAt(x, y)*0.15
		if score > bestScore {
			bestScore = score
			bestX, bestY = x, y
		}
	}
	return bestX, bestY
}

// migrationTarget samples 60 uniform tiles, weighing fertility, humidity and
// safety against travel distance.
func (ps *PlanSystem) migrationTarget(g *world.Grid, ctx BuildContext, r *rng.Rng) (int, int) {
	bestX, bestY := ctx.X, ctx.Y
	bestScore := -1e9
	for i := 0; i < 60; i++ {
		x := r.NextInt(g.Width)
		y := r.NextInt(g.Height)
		if !g.IsHabitable(x, y) {
			continue
		}
		dist := math.Sqrt(float64((x-ctx.X)*(x-ctx.X) + (y-ctx.Y)*(y-ctx.Y)))
		score := g.FertilityAt(x, y)*0.45 + g.HumidityAt(x, y)*0.4 + (1-g.HazardAt(x, y))*0.9 - dist*0.003
		if score > bestScore {
			bestScore = score
			bestX, bestY = x, y
		}
	}
	return bestX, bestY
}
