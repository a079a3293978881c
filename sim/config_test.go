package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestDefaultConfig_ReturnsIndependentValues(t *testing.T) {
	// GIVEN two default configs
	a := DefaultConfig()
	b := DefaultConfig()

	// WHEN one queue size is mutated
	*a.QueueSize = 7

	// THEN the other is unaffected
	require.NotNil(t, b.QueueSize)
	assert.Equal(t, 50, *b.QueueSize)
}

func TestConfig_Clone_DeepCopiesQueueSize(t *testing.T) {
	a := DefaultConfig()
	b := a.Clone()
	*b.QueueSize = 3
	assert.Equal(t, 50, *a.QueueSize)
}

func TestConfig_Normalize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueSize = IntPtr(-1)
	cfg.ArrivalDist = ArrivalPoissonBurst

	eff := cfg.Normalize()

	assert.Nil(t, eff.QueueSize, "negative queue size means unbounded")
	assert.Equal(t, ArrivalBurst, eff.ArrivalDist)
	assert.Equal(t, ArrivalPoissonBurst, cfg.ArrivalDist, "Normalize must not mutate the receiver")
}

func TestConfig_Validate_FailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative horizon", func(c *Config) { c.SimTime = -1 }, "sim_time"},
		{"NaN horizon", func(c *Config) { c.SimTime = math.NaN() }, "sim_time"},
		{"zero servers", func(c *Config) { c.NumServers = 0 }, "num_servers"},
		{"negative servers", func(c *Config) { c.NumServers = -3 }, "num_servers"},
		{"zero monitor interval", func(c *Config) { c.MonitorInterval = 0 }, "monitor_interval"},
		{"unknown strategy", func(c *Config) { c.Strategy = "shed" }, "strategy"},
		{"infinite rate", func(c *Config) { c.ArrivalRate = math.Inf(1) }, "arrival_rate"},
		{"deterministic zero interval", func(c *Config) {
			c.ArrivalDist = ArrivalDeterministic
			c.ArrivalInterval = 0
		}, "arrival_interval"},
		{"uniform non-positive high", func(c *Config) {
			c.ArrivalDist = ArrivalUniform
			c.ArrivalHigh = 0
		}, "arrival_high"},
		{"burst size zero", func(c *Config) {
			c.ArrivalDist = ArrivalBurst
			c.BurstSize = 0
		}, "burst_size"},
		{"burst zero interval", func(c *Config) {
			c.ArrivalDist = ArrivalBurst
			c.InterburstInterval = 0
		}, "interburst_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfig_Validate_DegenerateRatesAreNotErrors(t *testing.T) {
	// Rates and means are clamped by the samplers, not rejected.
	cfg := DefaultConfig()
	cfg.ArrivalRate = -5
	cfg.ServiceMean = 0
	cfg.RateLimitRPS = -1
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_UnknownKinds_PermissiveByDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArrivalDist = "pareto"
	cfg.ServiceDist = "lognormal"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_UnknownKinds_RejectedInStrictMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strict = true
	cfg.ArrivalDist = "pareto"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.ArrivalDist = ArrivalExponential
	cfg.ServiceDist = "lognormal"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
