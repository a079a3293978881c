package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inference-sim/loadreg/sim/trace"
)

func TestNewDistribution_Empty(t *testing.T) {
	assert.Equal(t, Distribution{}, NewDistribution(nil))
}

func TestNewDistribution_Percentiles(t *testing.T) {
	// GIVEN values 1..101 in shuffled order
	vals := make([]float64, 0, 101)
	for i := 101; i >= 1; i-- {
		vals = append(vals, float64(i))
	}

	d := NewDistribution(vals)

	assert.Equal(t, 51.0, d.Mean)
	assert.Equal(t, 51.0, d.P50)
	assert.Equal(t, 96.0, d.P95)
	assert.Equal(t, 100.0, d.P99)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 101.0, d.Max)
	assert.Equal(t, 101, d.Count)
	assert.Equal(t, 101.0, vals[0], "input must not be reordered")
}

func TestPercentile_Interpolates(t *testing.T) {
	assert.Equal(t, 1.5, Percentile([]float64{1, 2}, 50))
	assert.Equal(t, 3.0, Percentile([]float64{3}, 99))
	assert.Equal(t, 0.0, Percentile(nil, 50))
}

func TestMetrics_RecordLifecycle(t *testing.T) {
	m := NewMetrics()
	req := NewRequest(1, 0)
	m.RecordArrival(0, req)
	m.RecordAdmitted(req)
	req.MarkServiceStart(0.5)
	m.RecordServiceStart(0.5, req)
	req.MarkServiceEnd(1.25)
	m.RecordServiceEnd(1.25, req)

	dropped := NewRequest(2, 1.3)
	m.RecordArrival(1.3, dropped)
	m.RecordDrop(1.3, dropped, trace.KindDroppedRate)

	assert.Equal(t, 2, m.TotalArrivals)
	assert.Equal(t, 1, m.Processed)
	assert.Equal(t, 1, m.Dropped)
	assert.Equal(t, 0, m.InFlight)
	assert.Equal(t, 0.75, m.BusyTime)
	assert.Equal(t, []float64{1.25}, m.ResponseTimes)
	assert.Equal(t, 5, m.Events.Len())
}

func TestMetrics_RecordDrop_RejectsNonDropKind(t *testing.T) {
	m := NewMetrics()
	assert.Panics(t, func() { m.RecordDrop(0, NewRequest(1, 0), trace.KindArrival) })
}

func TestNewResult_DerivedAggregates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimTime = 10
	cfg.NumServers = 2
	m := NewMetrics()
	m.TotalArrivals = 4
	m.Processed = 2
	m.Dropped = 1
	m.InFlight = 1
	m.BusyTime = 5
	m.ResponseTimes = []float64{1, 3}

	res := newResult(cfg, m)

	assert.Equal(t, 2.0, res.AvgResponseTime)
	assert.Equal(t, 0.25, res.Utilization)
	assert.Equal(t, 0.2, res.Throughput)
	assert.Equal(t, 0.25, res.DropRate)
	assert.Equal(t, cfg, res.Config)
}

func TestNewResult_ZeroHorizon_NoDivisionByZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimTime = 0
	res := newResult(cfg, NewMetrics())
	assert.Equal(t, 0.0, res.Utilization)
	assert.Equal(t, 0.0, res.AvgResponseTime)
	assert.Equal(t, 0.0, res.DropRate)
}

func TestResult_Print(t *testing.T) {
	res := mustRun(t, deterministicConfig(1, 0.25, 4, 1))
	var buf bytes.Buffer

	res.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Simulation Metrics ===")
	assert.Contains(t, out, "Total Arrivals       : 4")
	assert.Contains(t, out, "Avg Response Time    : 0.2500 s")
	assert.NotContains(t, out, "DROPPED", "no drop breakdown without drops")
}
