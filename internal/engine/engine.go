// Package engine provides the paced simulation loop. Pacing is wall-clock;
// outcomes are not: every tick is a pure call into the civilization step.
package engine

import (
	"log/slog"
	"time"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
)

// StatsProvider supplies the per-tick species snapshots.
type StatsProvider func(tick uint64) []civ.SpeciesStat

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval
	Running  bool

	System *civ.System
	Stats  StatsProvider

	// Optional per-tick observer, called after the step.
	OnTick func(tick uint64)
}

// New creates an engine over a civilization system.
func New(system *civ.System, stats StatsProvider) *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 100 * time.Millisecond,
		System:   system,
		Stats:    stats,
	}
}

// Step advances exactly one tick. Safe to call without Run for headless and
// test use.
func (e *Engine) Step() {
	e.Tick++
	var stats []civ.SpeciesStat
	if e.Stats != nil {
		stats = e.Stats(e.Tick)
	}
	e.System.Step(e.Tick, stats)
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}
}

// RunTicks advances n ticks back to back.
func (e *Engine) RunTicks(n int) {
	for i := 0; i < n; i++ {
		e.Step()
	}
}

// Run starts the paced loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.Running = false
}
