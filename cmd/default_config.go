package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/loadreg/sim"
)

// loadConfigFile decodes the YAML file at path on top of base.
// Unknown keys are errors so typos cannot silently fall back to defaults.
// An empty file leaves base unchanged.
func loadConfigFile(path string, base sim.Config) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config file: %w", err)
	}
	cfg := base.Clone()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// flagOverrides maps each simulation flag to the field it sets.
var flagOverrides = map[string]func(dst *sim.Config){
	"sim-time":            func(c *sim.Config) { c.SimTime = flagCfg.SimTime },
	"arrival-dist":        func(c *sim.Config) { c.ArrivalDist = flagCfg.ArrivalDist },
	"arrival-rate":        func(c *sim.Config) { c.ArrivalRate = flagCfg.ArrivalRate },
	"arrival-interval":    func(c *sim.Config) { c.ArrivalInterval = flagCfg.ArrivalInterval },
	"arrival-low":         func(c *sim.Config) { c.ArrivalLow = flagCfg.ArrivalLow },
	"arrival-high":        func(c *sim.Config) { c.ArrivalHigh = flagCfg.ArrivalHigh },
	"burst-size":          func(c *sim.Config) { c.BurstSize = flagCfg.BurstSize },
	"interburst-interval": func(c *sim.Config) { c.InterburstInterval = flagCfg.InterburstInterval },
	"service-dist":        func(c *sim.Config) { c.ServiceDist = flagCfg.ServiceDist },
	"service-mean":        func(c *sim.Config) { c.ServiceMean = flagCfg.ServiceMean },
	"service-std":         func(c *sim.Config) { c.ServiceStd = flagCfg.ServiceStd },
	"num-servers":         func(c *sim.Config) { c.NumServers = flagCfg.NumServers },
	"strategy":            func(c *sim.Config) { c.Strategy = flagCfg.Strategy },
	"queue-size":          func(c *sim.Config) { c.QueueSize = sim.IntPtr(flagQueueSize) },
	"rate-limit-rps":      func(c *sim.Config) { c.RateLimitRPS = flagCfg.RateLimitRPS },
	"monitor-interval":    func(c *sim.Config) { c.MonitorInterval = flagCfg.MonitorInterval },
	"seed":                func(c *sim.Config) { c.Seed = flagCfg.Seed },
	"strict":              func(c *sim.Config) { c.Strict = flagCfg.Strict },
}

// applyFlagOverrides copies only flags the user explicitly set, so flag
// defaults never clobber values from the config file.
func applyFlagOverrides(cmd *cobra.Command, cfg sim.Config) sim.Config {
	out := cfg.Clone()
	for name, apply := range flagOverrides {
		if cmd.Flags().Changed(name) {
			apply(&out)
		}
	}
	return out
}

// resolveConfig layers defaults, the optional --config file and set flags.
func resolveConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = loadConfigFile(configPath, cfg); err != nil {
			return cfg, err
		}
		logrus.Infof("Loaded configuration from %s", configPath)
	}
	return applyFlagOverrides(cmd, cfg), nil
}
