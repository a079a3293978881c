package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/loadreg/sim"
	"github.com/inference-sim/loadreg/sim/recording"
)

var (
	logLevel    string // Log verbosity level
	configPath  string // Optional YAML file layered over the defaults
	resultsPath string // File to save the full result record as JSON
	recordDB    string // SQLite database to append the run to

	// flagCfg holds the values bound to the simulation flags; only flags the
	// user actually set are applied (see applyFlagOverrides).
	flagCfg       = sim.DefaultConfig()
	flagQueueSize = *sim.DefaultConfig().QueueSize
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "loadreg",
	Short: "Discrete-event simulator for load-regulation strategies",
	Long: "Simulates a pool of servers behind a queue, reject or rate_limit admission policy " +
		"in virtual time and reports throughput, drops, response times and utilization.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd executes one simulation using defaults, the optional config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		res, err := sim.Run(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		res.Print(os.Stdout)

		if resultsPath != "" {
			if err := saveResults(res, resultsPath); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
			logrus.Infof("Results written to %s", resultsPath)
		}
		if recordDB != "" {
			runID, err := recordRun(res, recordDB)
			if err != nil {
				logrus.Fatalf("Failed to record run: %v", err)
			}
			fmt.Printf("Recorded run %s in %s\n", runID, recordDB)
		}
		logrus.Info("Simulation complete.")
	},
}

// saveResults writes the full result record as indented JSON.
func saveResults(res *sim.Result, path string) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// recordRun appends res to the SQLite database at path and returns its run ID.
func recordRun(res *sim.Result, path string) (string, error) {
	rec, err := recording.Open(path)
	if err != nil {
		return "", err
	}
	defer rec.Close()
	return rec.Record(res)
}

// Execute runs the CLI root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	pf.StringVar(&configPath, "config", "", "YAML file with configuration overrides (unknown keys are rejected)")

	// Simulation configuration, shared by every subcommand
	pf.Float64Var(&flagCfg.SimTime, "sim-time", flagCfg.SimTime, "Simulation horizon (virtual seconds)")
	pf.StringVar((*string)(&flagCfg.ArrivalDist), "arrival-dist", string(flagCfg.ArrivalDist), "Arrival process (exponential, deterministic, uniform, burst)")
	pf.Float64Var(&flagCfg.ArrivalRate, "arrival-rate", flagCfg.ArrivalRate, "Exponential arrival rate (requests/s)")
	pf.Float64Var(&flagCfg.ArrivalInterval, "arrival-interval", flagCfg.ArrivalInterval, "Deterministic inter-arrival gap (s)")
	pf.Float64Var(&flagCfg.ArrivalLow, "arrival-low", flagCfg.ArrivalLow, "Uniform inter-arrival lower bound (s)")
	pf.Float64Var(&flagCfg.ArrivalHigh, "arrival-high", flagCfg.ArrivalHigh, "Uniform inter-arrival upper bound (s)")
	pf.IntVar(&flagCfg.BurstSize, "burst-size", flagCfg.BurstSize, "Requests per burst")
	pf.Float64Var(&flagCfg.InterburstInterval, "interburst-interval", flagCfg.InterburstInterval, "Gap between bursts (s)")
	pf.StringVar((*string)(&flagCfg.ServiceDist), "service-dist", string(flagCfg.ServiceDist), "Service-time distribution (exponential, deterministic, uniform, normal)")
	pf.Float64Var(&flagCfg.ServiceMean, "service-mean", flagCfg.ServiceMean, "Mean service time (s)")
	pf.Float64Var(&flagCfg.ServiceStd, "service-std", flagCfg.ServiceStd, "Service-time standard deviation (s), normal only")
	pf.IntVar(&flagCfg.NumServers, "num-servers", flagCfg.NumServers, "Number of servers in the pool")
	pf.StringVar((*string)(&flagCfg.Strategy), "strategy", string(flagCfg.Strategy), "Admission strategy (queue, reject, rate_limit)")
	pf.IntVar(&flagQueueSize, "queue-size", flagQueueSize, "Wait-list capacity for the queue strategy; negative means unbounded")
	pf.Float64Var(&flagCfg.RateLimitRPS, "rate-limit-rps", flagCfg.RateLimitRPS, "Token refill rate for the rate_limit strategy")
	pf.Float64Var(&flagCfg.MonitorInterval, "monitor-interval", flagCfg.MonitorInterval, "Sampling period of the monitor (s)")
	pf.Int64Var(&flagCfg.Seed, "seed", flagCfg.Seed, "Seed for all random streams")
	pf.BoolVar(&flagCfg.Strict, "strict", false, "Reject unknown distribution kinds instead of falling back to exponential")

	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "File to save the full result record (JSON)")
	runCmd.Flags().StringVar(&recordDB, "record-db", "", "SQLite database to append the run to")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
