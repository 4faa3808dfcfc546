// Command biotica runs the deterministic ecosystem and proto-civilization
// simulation.
package main

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
	"github.com/HiddenPCOfficial/biotica/internal/config"
	"github.com/HiddenPCOfficial/biotica/internal/engine"
	"github.com/HiddenPCOfficial/biotica/internal/genesis"
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/knowledge"
	"github.com/HiddenPCOfficial/biotica/internal/materials"
	"github.com/HiddenPCOfficial/biotica/internal/narrative"
	"github.com/HiddenPCOfficial/biotica/internal/persistence"
	"github.com/HiddenPCOfficial/biotica/internal/resources"
	"github.com/HiddenPCOfficial/biotica/internal/rng"
	"github.com/HiddenPCOfficial/biotica/internal/structures"
	"github.com/HiddenPCOfficial/biotica/internal/territory"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

var (
	flagConfig string
	flagSeed   uint32
	flagTicks  int
	flagDB     string
	flagDebug  bool
)

func main() {
	root := &cobra.Command{
		Use:   "biotica",
		Short: "Deterministic ecosystem and proto-civilization simulation",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flagDebug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "world-start parameter file (YAML)")
	root.PersistentFlags().Uint32Var(&flagSeed, "seed", 0, "world seed (0 = random)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation loop",
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&flagTicks, "ticks", 0, "stop after this many ticks (0 = run until interrupted)")
	runCmd.Flags().StringVar(&flagDB, "db", "", "sqlite snapshot path (enables save/restore)")

	genesisCmd := &cobra.Command{
		Use:   "genesis",
		Short: "Run the evolutionary world tuner and print the chosen genome",
		RunE:  runGenesis,
	}

	root.AddCommand(runCmd, genesisCmd)
	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// resolveSeed draws a launch seed from crypto/rand when none is configured.
// This is the only nondeterministic input; the chosen seed is logged so the
// run can be reproduced.
func resolveSeed(cfg config.Config) uint32 {
	if flagSeed != 0 {
		return flagSeed
	}
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	var buf [4]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 1
	}
	seed := binary.LittleEndian.Uint32(buf[:])
	if seed == 0 {
		seed = 1
	}
	slog.Info("no seed configured, drew one", "seed", seed)
	return seed
}

func runGenesis(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	seed := resolveSeed(cfg)
	cfg.Tuner.Enabled = true

	params, err := genesis.NewWorldGenesis(cfg.Tuner).Run(seed)
	if err != nil {
		return err
	}
	for i := 0; i < genesis.NumGenes; i++ {
		fmt.Printf("%-24s %.4f\n", genesis.GeneName(i), params.Genome[i])
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	seed := resolveSeed(cfg)

	var db *persistence.DB
	if flagDB != "" {
		db, err = persistence.Open(flagDB)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", flagDB)
	}

	var grid *world.Grid
	var restored *persistence.Snapshot
	if db != nil && db.HasSnapshot() {
		snap, err := db.LoadSnapshot()
		if err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		grid, err = world.HydrateState(snap.Grid)
		if err != nil {
			return fmt.Errorf("restore grid: %w", err)
		}
		restored = &snap
		slog.Info("world state restored", "tick", snap.Civ.Tick)
	} else {
		genCfg := world.DefaultGenConfig()
		genCfg.Width = cfg.Width
		genCfg.Height = cfg.Height
		genCfg.Seed = seed
		grid = world.Generate(genCfg)
	}

	params, err := genesis.NewWorldGenesis(cfg.Tuner).Run(seed)
	if err != nil {
		return err
	}
	if restored == nil {
		params.Apply(grid)
	}

	for biome, count := range grid.BiomeCounts() {
		slog.Debug("terrain", "biome", biome.Name(), "count", count)
	}

	mats, err := materials.GenerateCatalog(grid)
	if err != nil {
		return err
	}
	catalog, err := items.GenerateCatalog(seed, mats)
	if err != nil {
		return err
	}

	queue := narrative.NewQueue(256)
	sys, err := civ.NewSystem(civ.Deps{
		Grid:      grid,
		Materials: mats,
		Items:     catalog,
		Resources: resources.NewSystem(grid, mats, resources.Config{TreeDensityMultiplier: params.TreeDensityMultiplier}),
		Structures: structures.NewSystem(grid.Width),
		Territory: territory.NewSystem(grid.Width, grid.Height),
		Queue:     queue,
	}, cfg.Civ)
	if err != nil {
		return err
	}
	if restored != nil {
		if err := sys.Resources().HydrateState(restored.Resources); err != nil {
			return err
		}
		if err := sys.Structures().HydrateState(restored.Structures); err != nil {
			return err
		}
		if err := sys.Territory().HydrateState(restored.Territory); err != nil {
			return err
		}
		if err := sys.HydrateState(restored.Civ); err != nil {
			return err
		}
	}

	// Narrative worker in the background; the core never blocks on it. The
	// knowledge bridge fills request payloads from its projection, and the
	// rate limiter and cache shield the collaborator API.
	client := narrative.NewClient(cfg.NarrativeAPIKey, time.Duration(cfg.NarrativeTimeoutMs)*time.Millisecond)
	bridge := knowledge.NewBridge(sys)
	bridge.Refresh()
	worker := narrative.NewWorker(queue, client)
	worker.Filler = bridge
	worker.Limiter = knowledge.NewAiRateLimiter(1500 * time.Millisecond)
	worker.Cache = knowledge.NewAiCache(128, 10*time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx, 2*time.Second, 4)

	stats := makeStatsProvider(seed, cfg.CreatureCount)
	eng := engine.New(sys, stats)
	eng.Tick = sys.Tick()
	eng.Interval = 50 * time.Millisecond

	eng.OnTick = func(tick uint64) {
		// Refresh the collaborator projection between ticks, on the
		// simulation thread, whenever requests are waiting on it.
		if tick%100 == 0 || queue.PendingCount() > 0 {
			bridge.Refresh()
		}
		if tick%500 == 0 {
			summary := sys.BuildWorldSummary()
			slog.Info("progress",
				"tick", humanize.Comma(int64(tick)),
				"population", summary.Population,
				"factions", summary.FactionCount,
				"biomass", fmt.Sprintf("%.1f", summary.BiomassTotal),
			)
		}
		if db != nil && tick%2000 == 0 {
			saveSnapshot(db, grid, sys)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown requested")
		eng.Stop()
	}()

	if flagTicks > 0 {
		eng.RunTicks(flagTicks)
	} else {
		eng.Run()
	}

	if db != nil {
		saveSnapshot(db, grid, sys)
	}
	slog.Info("simulation finished", "tick", humanize.Comma(int64(eng.Tick)))
	return nil
}

func saveSnapshot(db *persistence.DB, grid *world.Grid, sys *civ.System) {
	snap := persistence.Snapshot{
		Grid:       grid.ExportState(),
		Civ:        sys.ExportState(),
		Resources:  sys.Resources().ExportState(),
		Structures: sys.Structures().ExportState(),
		Territory:  sys.Territory().ExportState(),
	}
	if err := db.SaveSnapshot(snap); err != nil {
		slog.Error("snapshot save failed", "error", err)
	}
}

// makeStatsProvider synthesizes stable species snapshots from the configured
// creature count. The ecology layer is an input to the engine; this stand-in
// keeps standalone runs deterministic.
func makeStatsProvider(seed uint32, creatureCount int) engine.StatsProvider {
	if creatureCount <= 0 {
		return func(uint64) []civ.SpeciesStat { return nil }
	}
	r := rng.New(seed ^ 0x73706563)
	speciesCount := 1 + creatureCount/60
	if speciesCount > 6 {
		speciesCount = 6
	}
	base := make([]civ.SpeciesStat, speciesCount)
	for i := range base {
		base[i] = civ.SpeciesStat{
			SpeciesID:        fmt.Sprintf("sp-%c", 'a'+i),
			Population:       creatureCount / speciesCount,
			Intelligence:     r.RangeFloat(0.3, 0.8),
			Vitality:         r.RangeFloat(0.4, 0.9),
			EventPressure:    r.RangeFloat(0, 0.3),
			IsIntelligent:    i == 0,
			LanguageLevel:    r.RangeFloat(0, 0.5),
			SocialComplexity: r.RangeFloat(0, 0.5),
			Stability:        r.RangeFloat(0.5, 0.9),
		}
	}
	return func(tick uint64) []civ.SpeciesStat {
		out := make([]civ.SpeciesStat, len(base))
		copy(out, base)
		return out
	}
}
