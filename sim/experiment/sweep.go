package experiment

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/loadreg/sim"
)

// Parameter names the configuration axis a sweep varies.
type Parameter string

const (
	ParamQueueSize    Parameter = "queue_size"
	ParamRateLimitRPS Parameter = "rate_limit_rps"
	ParamNumServers   Parameter = "num_servers"
)

var validParameters = map[Parameter]bool{
	ParamQueueSize:    true,
	ParamRateLimitRPS: true,
	ParamNumServers:   true,
}

// ValidParameterNames returns sorted parameter names for CLI help text.
func ValidParameterNames() []string {
	names := make([]string, 0, len(validParameters))
	for p := range validParameters {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

// seedStride scales a point's value into its seed offset.
const seedStride = 1000

// Strategy returns the admission strategy that reads p, or "" when p applies
// under any strategy.
func (p Parameter) Strategy() sim.Strategy {
	switch p {
	case ParamQueueSize:
		return sim.StrategyQueue
	case ParamRateLimitRPS:
		return sim.StrategyRateLimit
	default:
		return ""
	}
}

// Apply returns a copy of cfg with the parameter set to v. A parameter owned
// by one admission strategy also switches cfg to that strategy.
// Integer parameters require an integral v; a negative queue size means unbounded.
func (p Parameter) Apply(cfg sim.Config, v float64) (sim.Config, error) {
	out := cfg.Clone()
	switch p {
	case ParamQueueSize:
		if v != math.Trunc(v) {
			return out, fmt.Errorf("queue_size must be integral, got %g", v)
		}
		out.QueueSize = sim.IntPtr(int(v))
	case ParamNumServers:
		if v != math.Trunc(v) {
			return out, fmt.Errorf("num_servers must be integral, got %g", v)
		}
		out.NumServers = int(v)
	case ParamRateLimitRPS:
		out.RateLimitRPS = v
	default:
		return out, fmt.Errorf("unknown sweep parameter %q; valid: %v", p, ValidParameterNames())
	}
	if st := p.Strategy(); st != "" && out.Strategy != st {
		logrus.Debugf("sweep over %s: strategy %s -> %s", p, out.Strategy, st)
		out.Strategy = st
	}
	return out, nil
}

// Sweep describes a one-dimensional experiment.
type Sweep struct {
	Base        sim.Config
	Parameter   Parameter
	Values      []float64
	Replicas    int
	Seed0       int64
	Parallelism int // concurrent replicas; <= 0 means runtime.NumCPU()
}

// Seed returns the seed of replica r at the point whose value is v:
// Seed0 + r + trunc(v*1000).
func (s *Sweep) Seed(v float64, r int) int64 {
	return s.Seed0 + int64(r) + int64(v*seedStride)
}

// configs resolves and validates every point's configuration up front so an
// invalid sweep fails before any replica runs.
func (s *Sweep) configs() ([]sim.Config, error) {
	if !validParameters[s.Parameter] {
		return nil, fmt.Errorf("unknown sweep parameter %q; valid: %v", s.Parameter, ValidParameterNames())
	}
	if len(s.Values) == 0 {
		return nil, fmt.Errorf("sweep over %s has no values", s.Parameter)
	}
	if s.Replicas < 1 {
		return nil, fmt.Errorf("replicas must be at least 1, got %d", s.Replicas)
	}
	out := make([]sim.Config, len(s.Values))
	for i, v := range s.Values {
		cfg, err := s.Parameter.Apply(s.Base, v)
		if err != nil {
			return nil, err
		}
		if err := cfg.Normalize().Validate(); err != nil {
			return nil, fmt.Errorf("sweep point %s=%g: %w", s.Parameter, v, err)
		}
		out[i] = cfg
	}
	return out, nil
}

// Run executes every replica of every point and aggregates the results.
// Cancelling ctx stops scheduling new replicas and returns ctx's error.
func (s *Sweep) Run(ctx context.Context) (*Report, error) {
	configs, err := s.configs()
	if err != nil {
		return nil, err
	}
	parallelism := s.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	logrus.Infof("Sweep %s over %v: %d replicas per point, parallelism %d",
		s.Parameter, s.Values, s.Replicas, parallelism)

	replicas := make([][]Replica, len(configs))
	for i := range replicas {
		replicas[i] = make([]Replica, s.Replicas)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, base := range configs {
		for r := 0; r < s.Replicas; r++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				cfg := base.Clone()
				cfg.Seed = s.Seed(s.Values[i], r)
				res, err := sim.Run(cfg)
				if err != nil {
					return fmt.Errorf("point %d replica %d: %w", i, r, err)
				}
				replicas[i][r] = newReplica(cfg.Seed, res)
				logrus.Debugf("sweep %s=%g replica %d (seed %d): avg_rt=%.4f drop_rate=%.4f",
					s.Parameter, s.Values[i], r, cfg.Seed, res.AvgResponseTime, replicas[i][r].DropRate)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Parameter: s.Parameter,
		Replicas:  s.Replicas,
		Seed0:     s.Seed0,
		Points:    make([]Point, len(configs)),
	}
	for i := range configs {
		report.Points[i] = newPoint(s.Values[i], replicas[i])
	}
	report.ANOVA = analyze(report.Points)
	return report, nil
}
