package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/loadreg/sim"
	"github.com/inference-sim/loadreg/sim/experiment"
	"github.com/inference-sim/loadreg/sim/recording"
)

func shortResult(t *testing.T) *sim.Result {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.SimTime = 5
	res, err := sim.Run(cfg)
	require.NoError(t, err)
	return res
}

func TestSaveResults_WritesJSONRecord(t *testing.T) {
	// GIVEN a completed run
	res := shortResult(t)
	path := filepath.Join(t.TempDir(), "results.json")

	// WHEN it is saved
	require.NoError(t, saveResults(res, path))

	// THEN the file carries the canonical field names
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, jsoniter.Unmarshal(data, &out))
	for _, key := range []string{"total_arrivals", "processed", "dropped", "avg_response_time",
		"utilization", "events", "queue_time_series", "server_busy_time_series", "config"} {
		assert.Contains(t, out, key)
	}
	assert.EqualValues(t, res.TotalArrivals, out["total_arrivals"])
}

func TestRecordRun_AppendsToDatabase(t *testing.T) {
	res := shortResult(t)
	path := filepath.Join(t.TempDir(), "runs.sqlite3")

	first, err := recordRun(res, path)
	require.NoError(t, err)
	second, err := recordRun(res, path)
	require.NoError(t, err)

	rec, err := recording.Open(path)
	require.NoError(t, err)
	defer rec.Close()
	ids, err := rec.Runs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func TestPrintReport(t *testing.T) {
	report := &experiment.Report{
		Parameter: experiment.ParamNumServers,
		Replicas:  3,
		Seed0:     1,
		Points: []experiment.Point{
			{Value: 1, DropRate: experiment.Estimate{Mean: 0.5, CI95: 0.1}},
			{Value: 2, DropRate: experiment.Estimate{Mean: 0.1, CI95: 0.05}},
		},
		ANOVA: []experiment.ANOVA{
			{Metric: experiment.MetricDropRate, F: 40, PValue: 0.001, DFBetween: 1, DFWithin: 4},
		},
	}
	var buf bytes.Buffer

	printReport(&buf, report, 0.05)

	out := buf.String()
	assert.Contains(t, out, "=== Sweep: num_servers (3 replicas, seed0=1) ===")
	assert.Contains(t, out, "0.5000 ± 0.1000")
	assert.Contains(t, out, "drop_rate          F(1,4)=40.000 p=0.001 significant")
}

func TestPrintReport_NoANOVA(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &experiment.Report{Parameter: experiment.ParamQueueSize}, 0.05)
	assert.Contains(t, buf.String(), "ANOVA: not enough replicas or points")
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "sweep", "config"})
}
