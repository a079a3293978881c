package experiment

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/loadreg/sim"
)

// z95 is the two-sided 95% normal quantile used for confidence half-widths.
const z95 = 1.96

// Metric names a per-replica observable.
type Metric string

const (
	MetricAvgResponseTime Metric = "avg_response_time"
	MetricDropRate        Metric = "drop_rate"
	MetricUtilization     Metric = "utilization"
)

// Metrics lists every metric in report order.
var Metrics = []Metric{MetricAvgResponseTime, MetricDropRate, MetricUtilization}

// Replica is the outcome of one seeded run.
type Replica struct {
	Seed            int64   `json:"seed"`
	AvgResponseTime float64 `json:"avg_response_time"`
	DropRate        float64 `json:"drop_rate"`
	Utilization     float64 `json:"utilization"`
	TotalArrivals   int     `json:"total_arrivals"`
}

func newReplica(seed int64, res *sim.Result) Replica {
	return Replica{
		Seed:            seed,
		AvgResponseTime: res.AvgResponseTime,
		DropRate:        float64(res.Dropped) / float64(max(1, res.TotalArrivals)),
		Utilization:     res.Utilization,
		TotalArrivals:   res.TotalArrivals,
	}
}

func (r Replica) value(m Metric) float64 {
	switch m {
	case MetricAvgResponseTime:
		return r.AvgResponseTime
	case MetricDropRate:
		return r.DropRate
	case MetricUtilization:
		return r.Utilization
	}
	panic("unknown metric " + string(m))
}

// Estimate summarizes replicas of one metric at one point.
type Estimate struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`  // sample standard deviation
	SE   float64 `json:"se"`   // standard error of the mean
	CI95 float64 `json:"ci95"` // half-width
	N    int     `json:"n"`
}

// NewEstimate computes an Estimate. With fewer than two values the spread is zero.
func NewEstimate(values []float64) Estimate {
	n := len(values)
	if n == 0 {
		return Estimate{}
	}
	if n == 1 {
		return Estimate{Mean: values[0], N: 1}
	}
	mean, std := stat.MeanStdDev(values, nil)
	se := stat.StdErr(std, float64(n))
	return Estimate{Mean: mean, Std: std, SE: se, CI95: z95 * se, N: n}
}

// Low and High bound the confidence interval.
func (e Estimate) Low() float64 { return e.Mean - e.CI95 }
func (e Estimate) High() float64 { return e.Mean + e.CI95 }

// Point is one swept value with its replicas and per-metric estimates.
type Point struct {
	Value           float64   `json:"value"`
	Replicas        []Replica `json:"replicas"`
	AvgResponseTime Estimate  `json:"avg_response_time"`
	DropRate        Estimate  `json:"drop_rate"`
	Utilization     Estimate  `json:"utilization"`
}

func newPoint(value float64, replicas []Replica) Point {
	p := Point{Value: value, Replicas: replicas}
	p.AvgResponseTime = NewEstimate(p.samples(MetricAvgResponseTime))
	p.DropRate = NewEstimate(p.samples(MetricDropRate))
	p.Utilization = NewEstimate(p.samples(MetricUtilization))
	return p
}

func (p Point) samples(m Metric) []float64 {
	out := make([]float64, len(p.Replicas))
	for i, r := range p.Replicas {
		out[i] = r.value(m)
	}
	return out
}

// Estimate returns the point's estimate for m.
func (p Point) Estimate(m Metric) Estimate {
	switch m {
	case MetricAvgResponseTime:
		return p.AvgResponseTime
	case MetricDropRate:
		return p.DropRate
	default:
		return p.Utilization
	}
}

// ANOVA is a one-way analysis of variance of one metric across sweep points.
type ANOVA struct {
	Metric    Metric  `json:"metric"`
	F         float64 `json:"f"`
	PValue    float64 `json:"p_value"`
	DFBetween int     `json:"df_between"`
	DFWithin  int     `json:"df_within"`
}

// Significant reports whether the swept parameter affects the metric at level alpha.
func (a ANOVA) Significant(alpha float64) bool {
	return a.PValue < alpha
}

// Report is the aggregated outcome of a sweep.
type Report struct {
	Parameter Parameter `json:"parameter"`
	Replicas  int       `json:"replicas"`
	Seed0     int64     `json:"seed0"`
	Points    []Point   `json:"points"`
	// ANOVA is empty when there are fewer than two points or no within-group
	// degrees of freedom.
	ANOVA []ANOVA `json:"anova"`
}

// Significant returns the metrics whose ANOVA is significant at level alpha.
func (r *Report) Significant(alpha float64) []Metric {
	var out []Metric
	for _, a := range r.ANOVA {
		if a.Significant(alpha) {
			out = append(out, a.Metric)
		}
	}
	return out
}

func analyze(points []Point) []ANOVA {
	if len(points) < 2 {
		return nil
	}
	out := make([]ANOVA, 0, len(Metrics))
	for _, m := range Metrics {
		groups := make([][]float64, len(points))
		for i, p := range points {
			groups[i] = p.samples(m)
		}
		a, ok := OneWayANOVA(groups)
		if !ok {
			return nil
		}
		a.Metric = m
		out = append(out, a)
	}
	return out
}

// OneWayANOVA tests whether the group means differ. ok is false when the
// test is undefined (fewer than two groups or no within-group freedom).
// Zero within-group variance yields F=math.MaxFloat64, p=0 if the means
// differ and F=0, p=1 if they do not; F stays finite so reports encode as JSON.
func OneWayANOVA(groups [][]float64) (a ANOVA, ok bool) {
	k := len(groups)
	n := 0
	grand := 0.0
	for _, g := range groups {
		n += len(g)
		for _, v := range g {
			grand += v
		}
	}
	if k < 2 || n-k < 1 {
		return ANOVA{}, false
	}
	grand /= float64(n)

	var ssb, ssw float64
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		mean := stat.Mean(g, nil)
		ssb += float64(len(g)) * (mean - grand) * (mean - grand)
		for _, v := range g {
			ssw += (v - mean) * (v - mean)
		}
	}
	a = ANOVA{DFBetween: k - 1, DFWithin: n - k}
	msb := ssb / float64(a.DFBetween)
	msw := ssw / float64(a.DFWithin)

	// means that differ only by rounding count as equal
	tol := 1e-12 * math.Max(1, grand*grand)
	switch {
	case msw <= tol && msb <= tol:
		a.F, a.PValue = 0, 1
	case msw <= tol:
		a.F, a.PValue = math.MaxFloat64, 0
	default:
		a.F = msb / msw
		a.PValue = distuv.F{D1: float64(a.DFBetween), D2: float64(a.DFWithin)}.Survival(a.F)
	}
	return a, true
}
