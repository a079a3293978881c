package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/loadreg/sim"
)

// TestExampleConfigs_LoadAndValidate verifies every shipped example parses
// strictly, validates and runs.
func TestExampleConfigs_LoadAndValidate(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "examples", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no example configs found")

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			// GIVEN the example layered over the defaults
			cfg, err := loadConfigFile(path, sim.DefaultConfig())
			require.NoError(t, err)

			// THEN validation passes in strict mode
			strict := cfg.Clone()
			strict.Strict = true
			require.NoError(t, strict.Normalize().Validate())

			// AND a shortened run conserves requests
			cfg.SimTime = 10
			res, err := sim.Run(cfg)
			require.NoError(t, err)
			assert.Equal(t, res.TotalArrivals, res.Processed+res.Dropped+res.InFlight)
		})
	}
}

func TestExampleConfigs_Burst(t *testing.T) {
	cfg, err := loadConfigFile(filepath.Join("..", "examples", "burst.yaml"), sim.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, sim.ArrivalBurst, cfg.ArrivalDist)
	assert.Equal(t, 30, cfg.BurstSize)
	assert.Nil(t, cfg.QueueSize)
}
