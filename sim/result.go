package sim

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/inference-sim/loadreg/sim/trace"
)

// Distribution captures statistical summary of a metric.
type Distribution struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return Distribution{
		Mean:  sum / float64(len(sorted)),
		P50:   Percentile(sorted, 50),
		P95:   Percentile(sorted, 95),
		P99:   Percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// Percentile computes the p-th percentile using linear interpolation.
// Input must be sorted.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Result is the read-only record of one run, the sole contract consumed by
// presentation and analysis layers. Events are ordered by non-decreasing time
// and, within equal times, by scheduling order; nothing stronger is promised.
type Result struct {
	TotalArrivals   int     `json:"total_arrivals"`
	Processed       int     `json:"processed"`
	Dropped         int     `json:"dropped"`
	InFlight        int     `json:"in_flight"`
	AvgResponseTime float64 `json:"avg_response_time"`
	Utilization     float64 `json:"utilization"`
	Throughput      float64 `json:"throughput"` // processed per virtual second
	DropRate        float64 `json:"drop_rate"`  // dropped / arrivals

	DropsByKind  map[trace.Kind]int `json:"drops_by_kind"`
	ResponseTime Distribution       `json:"response_time"`

	Events          []trace.Record `json:"events"`
	QueueTimeSeries []Sample       `json:"queue_time_series"`
	BusyTimeSeries  []Sample       `json:"server_busy_time_series"`
	ResponseTimes   []float64      `json:"response_times"`

	Config Config `json:"config"`
}

// newResult snapshots metrics into a Result. The caller's metrics are not retained.
func newResult(cfg Config, m *Metrics) *Result {
	events := m.Events.Records()
	summary := trace.Summarize(events)

	res := &Result{
		TotalArrivals:   m.TotalArrivals,
		Processed:       m.Processed,
		Dropped:         m.Dropped,
		InFlight:        m.InFlight,
		DropsByKind:     summary.DropsByKind,
		ResponseTime:    NewDistribution(m.ResponseTimes),
		Events:          events,
		QueueTimeSeries: append([]Sample(nil), m.QueueSamples...),
		BusyTimeSeries:  append([]Sample(nil), m.BusySamples...),
		ResponseTimes:   append([]float64(nil), m.ResponseTimes...),
		Config:          cfg.Clone(),
	}
	res.AvgResponseTime = res.ResponseTime.Mean
	if cfg.SimTime > 0 {
		res.Utilization = m.BusyTime / (cfg.SimTime * float64(max(1, cfg.NumServers)))
		res.Throughput = float64(m.Processed) / cfg.SimTime
	}
	if m.TotalArrivals > 0 {
		res.DropRate = float64(m.Dropped) / float64(m.TotalArrivals)
	}
	return res
}

// Print writes a human-readable summary of the run.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Total Arrivals       : %d\n", r.TotalArrivals)
	fmt.Fprintf(w, "Processed            : %d\n", r.Processed)
	fmt.Fprintf(w, "Dropped              : %d\n", r.Dropped)
	for _, kind := range []trace.Kind{trace.KindDroppedQueueFull, trace.KindDroppedReject, trace.KindDroppedRate} {
		if n := r.DropsByKind[kind]; n > 0 {
			fmt.Fprintf(w, "  %-18s : %d\n", kind, n)
		}
	}
	fmt.Fprintf(w, "In Flight            : %d\n", r.InFlight)
	fmt.Fprintf(w, "Drop Rate            : %.2f%%\n", 100*r.DropRate)
	fmt.Fprintf(w, "Utilization          : %.2f%%\n", 100*r.Utilization)
	fmt.Fprintf(w, "Throughput           : %.3f req/s\n", r.Throughput)
	if r.Processed > 0 {
		fmt.Fprintf(w, "Avg Response Time    : %.4f s\n", r.AvgResponseTime)
		fmt.Fprintf(w, "P50 / P95 / P99      : %.4f / %.4f / %.4f s\n",
			r.ResponseTime.P50, r.ResponseTime.P95, r.ResponseTime.P99)
	}
}
