package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alpgo/grb/core"
)

// TestDefaultConfig_Valid ensures platform-derived defaults validate.
func TestDefaultConfig_Valid(t *testing.T) {
	cfg := core.DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Positive(t, cfg.Workers)
	require.Positive(t, cfg.Blocksize)
}

// TestLoadConfig_Overlay checks that present keys override and absent keys
// keep their defaults.
func TestLoadConfig_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nmax_pipelines: 8\n"), 0o600))

	cfg, err := core.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, 8, cfg.MaxPipelines)
	require.Equal(t, core.DefaultMaxTiles, cfg.MaxTiles)
}

// TestLoadConfig_Errors covers unreadable files and invalid records.
func TestLoadConfig_Errors(t *testing.T) {
	_, err := core.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, core.ErrConfig)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -2\n"), 0o600))
	_, err = core.LoadConfig(path)
	require.ErrorIs(t, err, core.ErrConfig)
}

// TestConfig_Validate rejects each nonsensical field.
func TestConfig_Validate(t *testing.T) {
	base := core.DefaultConfig()
	mutations := []func(*core.Config){
		func(c *core.Config) { c.Workers = 0 },
		func(c *core.Config) { c.CacheLineBytes = -1 },
		func(c *core.Config) { c.Blocksize = 0 },
		func(c *core.Config) { c.MaxPipelines = 0 },
		func(c *core.Config) { c.MaxDepth = 0 },
		func(c *core.Config) { c.MaxTiles = 0 },
		func(c *core.Config) { c.TileFactor = 0 },
		func(c *core.Config) { c.TilesPerWorker = 0 },
	}
	for i, mutate := range mutations {
		cfg := base
		mutate(&cfg)
		require.ErrorIs(t, cfg.Validate(), core.ErrConfig, "mutation %d", i)
	}
}
