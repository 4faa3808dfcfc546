package cognition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

func flatGrid(t *testing.T) *world.Grid {
	t.Helper()
	g, err := world.NewGrid(32, 32, 1)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = byte(world.BiomeGrassland)
		g.Fertility[i] = 150
		g.Humidity[i] = 140
	}
	return g
}

func TestCooldownPenaltySchedule(t *testing.T) {
	m := NewCooldownManager()
	m.MarkUsed("a1", IntentBuild, 0, 1.0)

	assert.Equal(t, 0.5, m.GetPenalty("a1", IntentBuild, 24), "(48-24)/48")
	assert.Equal(t, 0.0, m.GetPenalty("a1", IntentBuild, 48))
	assert.Equal(t, 0.0, m.GetPenalty("a1", IntentBuild, 100))
	assert.Equal(t, 0.0, m.GetPenalty("a1", IntentGather, 10), "unused intent carries no penalty")
}

func TestCooldownIntensityClamps(t *testing.T) {
	m := NewCooldownManager()
	// Intensity clamps at 0.35: 14*0.35 = 4.9 ticks.
	m.MarkUsed("a1", IntentGather, 0, 0.01)
	assert.Greater(t, m.GetPenalty("a1", IntentGather, 3), 0.0)
	assert.Equal(t, 0.0, m.GetPenalty("a1", IntentGather, 5))

	// Intensity clamps at 2.5 and never drops under 3 ticks.
	m.MarkUsed("a1", IntentMigrate, 0, 99)
	assert.Greater(t, m.GetPenalty("a1", IntentMigrate, 299), 0.0)
	assert.Equal(t, 0.0, m.GetPenalty("a1", IntentMigrate, 300))
}

func TestCooldownStateRoundTrip(t *testing.T) {
	m := NewCooldownManager()
	m.MarkUsed("a1", IntentBuild, 10, 1)
	m.MarkUsed("a2", IntentWrite, 20, 1)

	restored := NewCooldownManager()
	restored.HydrateState(m.ExportState())
	assert.Equal(t, m.ExportState(), restored.ExportState())
}

func TestHungerDrivesFoodIntents(t *testing.T) {
	s := NewIntentionSystem()
	cd := NewCooldownManager()
	p := Perception{Hunger: 0.95, Fertility: 0.6, NearResourceNode: true, Humidity: 0.5}

	counts := make(map[Intent]int)
	r := rng.New(3)
	for i := 0; i < 50; i++ {
		choice := s.SelectIntent("a1", "Farmer", p, CultureView{}, cd, uint64(i*200), r)
		counts[choice.Intent]++
	}
	food := counts[IntentGather] + counts[IntentFarm] + counts[IntentHunt]
	assert.Greater(t, food, 25, "a starving farmer mostly seeks food, got %v", counts)
}

func TestWritePenalizedWithoutLiteracy(t *testing.T) {
	s := NewIntentionSystem()
	cd := NewCooldownManager()
	r := rng.New(5)

	p := Perception{Literacy: 0}
	for i := 0; i < 30; i++ {
		choice := s.SelectIntent("a1", "Scribe", p, CultureView{}, cd, uint64(i*300), r)
		assert.NotEqual(t, IntentWrite, choice.Intent, "illiterate scribes cannot write")
	}
}

func TestRewardShiftsSelection(t *testing.T) {
	s := NewIntentionSystem()
	for i := 0; i < 100; i++ {
		s.ApplyReward("a1", IntentTrade, 1)
	}
	cd := NewCooldownManager()
	choice := s.SelectIntent("a1", "Scout", Perception{HasTradePartner: true}, CultureView{}, cd, 0, rng.New(8))
	assert.Equal(t, IntentTrade, choice.Intent, "saturated reward dominates")
}

func TestRewardClamped(t *testing.T) {
	s := NewIntentionSystem()
	for i := 0; i < 1000; i++ {
		s.ApplyReward("a1", IntentGather, 10)
	}
	assert.LessOrEqual(t, s.table("a1")[IntentGather], 1.4)
	for i := 0; i < 1000; i++ {
		s.ApplyReward("a1", IntentGather, -10)
	}
	assert.GreaterOrEqual(t, s.table("a1")[IntentGather], -1.4)
}

func TestReasonCodes(t *testing.T) {
	codes := NeedReasonCodes(Perception{Hunger: 0.6, WaterNeed: 0.6, Hazard: 0.5})
	assert.Equal(t, []string{"SEEK_FOOD", "SEEK_WATER", "AVOID_HAZARD"}, codes)
	assert.Empty(t, NeedReasonCodes(Perception{Hunger: 0.5, WaterNeed: 0.5, Hazard: 0.4}))
}

func TestToneDerivation(t *testing.T) {
	assert.Equal(t, ToneAlarmed, DeriveTone(Perception{Hazard: 0.64}))
	assert.Equal(t, ToneUrgent, DeriveTone(Perception{Hunger: 0.7}))
	assert.Equal(t, ToneUrgent, DeriveTone(Perception{WaterNeed: 0.72}))
	assert.Equal(t, ToneFocused, DeriveTone(Perception{Fertility: 0.4, InventoryRichness: 0.4}))
	assert.Equal(t, ToneCalm, DeriveTone(Perception{}))
}

func TestPlanTemplates(t *testing.T) {
	ps := NewPlanSystem()
	g := flatGrid(t)
	ctx := BuildContext{X: 16, Y: 16, HomeX: 16, HomeY: 16}

	for _, intent := range Intents {
		plan := ps.BuildPlan(intent, g, ctx, 0, rng.New(2))
		require.NotNil(t, plan, "intent %s", intent)
		assert.GreaterOrEqual(t, len(plan.Steps), 1, "intent %s", intent)
		assert.LessOrEqual(t, len(plan.Steps), 4, "intent %s", intent)
		for _, step := range plan.Steps {
			assert.True(t, g.InBounds(step.TargetX, step.TargetY), "intent %s targets out of bounds", intent)
		}
	}
}

func TestMovementStepCompletesOnArrival(t *testing.T) {
	plan := &Plan{Steps: []PlanStep{
		{ActionType: ActionMove, Goal: GoalExplore, Required: 10, TargetX: 5, TargetY: 5},
		{ActionType: ActionGather, Goal: GoalGather, Required: 2, TargetX: 5, TargetY: 5},
	}}

	plan.TickStep(4, 5, false)
	assert.Equal(t, 0, plan.CurrentStep, "not yet arrived")
	plan.TickStep(5, 5, false)
	assert.Equal(t, 1, plan.CurrentStep, "arrival advances the step")
}

func TestWorkStepNeedsElapsedAndSuccess(t *testing.T) {
	plan := &Plan{Steps: []PlanStep{
		{ActionType: ActionGather, Goal: GoalGather, Required: 2, TargetX: 0, TargetY: 0},
	}}

	plan.TickStep(0, 0, true)
	assert.True(t, plan.Active(), "one of two required ticks")
	plan.TickStep(0, 0, true)
	assert.False(t, plan.Active(), "elapsed plus success completes")
}

func TestStalledStepForceCompletes(t *testing.T) {
	plan := &Plan{Steps: []PlanStep{
		{ActionType: ActionGather, Goal: GoalGather, Required: 2, TargetX: 0, TargetY: 0},
	}}
	for i := 0; i < 3; i++ {
		plan.TickStep(0, 0, false)
		assert.True(t, plan.Active())
	}
	plan.TickStep(0, 0, false)
	assert.False(t, plan.Active(), "required+2 force-completes")
}

func TestDecisionRefreshInterval(t *testing.T) {
	d := NewDecisionSystem()
	g := flatGrid(t)
	r := rng.New(6)
	p := Perception{Hunger: 0.9}
	v := Viability{}

	first := d.SelectGoal("a1", "Farmer", p, v, g, 5, 5, 100, r)
	second := d.SelectGoal("a1", "Farmer", Perception{}, v, g, 5, 5, 101, r)
	assert.Equal(t, first, second, "choices inside the interval are stable")

	d.SelectGoal("a1", "Farmer", Perception{}, v, g, 5, 5, 103, r)
}

func TestNonViableGoalsSuppressed(t *testing.T) {
	d := NewDecisionSystem()
	g := flatGrid(t)
	r := rng.New(7)

	// A scribe with no viable talk/write keeps to viable goals.
	for i := 0; i < 20; i++ {
		choice := d.SelectGoal("a1", "Scribe", Perception{Literacy: 5}, Viability{}, g, 5, 5, uint64(i*10), r)
		assert.NotEqual(t, GoalWrite, choice.Goal)
		assert.NotEqual(t, GoalTalk, choice.Goal)
	}
}

func TestPickTargetStaysInBounds(t *testing.T) {
	d := NewDecisionSystem()
	g := flatGrid(t)
	r := rng.New(8)
	choice := d.SelectGoal("a1", "Scout", Perception{}, Viability{}, g, 0, 0, 5, r)
	assert.True(t, g.InBounds(choice.TargetX, choice.TargetY))
}

func TestConceptsForCoversAllIntents(t *testing.T) {
	for _, intent := range Intents {
		assert.NotEmpty(t, ConceptsFor(intent), "intent %s has no dialogue concepts", intent)
	}
	assert.NotEmpty(t, ConceptsFor(Intent("unknown")), "unknown intents fall back")
}

func TestDialogueBinding(t *testing.T) {
	comm := newTestComm(t)
	line := BindDialogue(IntentGather, comm, "grassland", rng.New(3))
	assert.NotEmpty(t, line.Tokens)
	assert.Contains(t, line.FallbackGloss, "grassland")

	again := BindDialogue(IntentGather, comm, "grassland", rng.New(3))
	assert.Equal(t, line, again, "same rng state binds the same line")
}
