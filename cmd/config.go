package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/loadreg/sim"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: "Resolve defaults, the optional --config file and any set flags, then print the result. " +
		"The output can be saved and passed back with --config.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		writeConfigToStdout(cfg.Normalize())
	},
}

// writeConfigToStdout marshals a Config to YAML and writes to stdout.
func writeConfigToStdout(cfg sim.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		logrus.Fatalf("YAML marshal failed: %v", err)
	}
	fmt.Print(string(data))
}

func init() {
	rootCmd.AddCommand(configCmd)
}
