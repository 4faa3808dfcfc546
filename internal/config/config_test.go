package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	content := `
seed: 42
width: 48
height: 32
creatureCount: 60
tuner:
  enabled: true
  populationSize: 16
  generations: 4
  simTicks: 600
  validationSeeds: 2
  mutationRate: 0.25
  crossoverRate: 0.7
civ:
  factionCap: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), cfg.Seed)
	assert.Equal(t, 48, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
	assert.Equal(t, 16, cfg.Tuner.PopulationSize)
	assert.Equal(t, 4, cfg.Civ.FactionCap)
	// Untouched knobs keep their defaults.
	assert.Equal(t, uint64(24), cfg.Civ.GroundItemSpawnInterval)
}

func TestLoadRejectsBadRanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: -5\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("tuner:\n  enabled: true\n  populationSize: 100\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: [unclosed\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
