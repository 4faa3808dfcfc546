package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
	"github.com/HiddenPCOfficial/biotica/internal/items"
	"github.com/HiddenPCOfficial/biotica/internal/materials"
	"github.com/HiddenPCOfficial/biotica/internal/world"
)

func buildWorld(t *testing.T) (*world.Grid, *civ.System) {
	t.Helper()
	g, err := world.NewGrid(8, 8, 42)
	require.NoError(t, err)
	for i := range g.Tiles {
		g.Tiles[i] = byte(world.BiomeGrassland)
		g.Fertility[i] = 160
		g.Humidity[i] = 160
		g.Temperature[i] = 140
	}
	mats, err := materials.GenerateCatalog(g)
	require.NoError(t, err)
	catalog, err := items.GenerateCatalog(42, mats)
	require.NoError(t, err)
	sys, err := civ.NewSystem(civ.Deps{Grid: g, Materials: mats, Items: catalog}, civ.DefaultConfig())
	require.NoError(t, err)

	stats := []civ.SpeciesStat{{
		SpeciesID: "sp-a", Population: 30, Intelligence: 0.5,
		Vitality: 0.7, IsIntelligent: true, Stability: 0.7,
	}}
	for tick := uint64(0); tick < 40; tick++ {
		sys.Step(tick, stats)
	}
	return g, sys
}

func snapshotOf(g *world.Grid, sys *civ.System) Snapshot {
	return Snapshot{
		Grid:       g.ExportState(),
		Civ:        sys.ExportState(),
		Resources:  sys.Resources().ExportState(),
		Structures: sys.Structures().ExportState(),
		Territory:  sys.Territory().ExportState(),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g, sys := buildWorld(t)
	path := filepath.Join(t.TempDir(), "biotica.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	assert.False(t, db.HasSnapshot())
	require.NoError(t, db.SaveSnapshot(snapshotOf(g, sys)))
	assert.True(t, db.HasSnapshot())

	loaded, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, sys.ExportState().Tick, loaded.Civ.Tick)
	assert.Equal(t, g.ExportState(), loaded.Grid)
	assert.Equal(t, sys.Territory().ExportState().Version, loaded.Territory.Version)

	tick, err := db.GetMeta("last_tick")
	require.NoError(t, err)
	assert.Equal(t, "39", tick)
}

func TestSaveIsFullReplace(t *testing.T) {
	g, sys := buildWorld(t)
	path := filepath.Join(t.TempDir(), "biotica.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveSnapshot(snapshotOf(g, sys)))

	sys.Step(40, nil)
	require.NoError(t, db.SaveSnapshot(snapshotOf(g, sys)))

	loaded, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(40), loaded.Civ.Tick)
}

func TestMetaRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SetMeta("season", "2"))
	v, err := db.GetMeta("season")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	require.NoError(t, db.SetMeta("season", "3"))
	v, _ = db.GetMeta("season")
	assert.Equal(t, "3", v)
}

func TestLoadWithoutSnapshotFails(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.LoadSnapshot()
	assert.Error(t, err, "partial or missing snapshots are refused")
}
