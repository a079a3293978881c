package sim

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ArrivalSampler generates inter-arrival gaps in virtual seconds.
type ArrivalSampler interface {
	// NextGap returns the next gap (>= 0). ok is false when the process
	// has no per-request gap (burst mode), which the generator handles structurally.
	NextGap(rng *rand.Rand) (gap float64, ok bool)
}

// ServiceSampler generates service durations in virtual seconds.
type ServiceSampler interface {
	// Sample returns a non-negative service duration.
	Sample(rng *rand.Rand) float64
}

// ExponentialArrivals produces Poisson-process gaps.
type ExponentialArrivals struct {
	rate float64 // requests per second
}

func (s *ExponentialArrivals) NextGap(rng *rand.Rand) (float64, bool) {
	return rng.ExpFloat64() / s.rate, true
}

// DeterministicArrivals produces a fixed gap.
type DeterministicArrivals struct {
	interval float64
}

func (s *DeterministicArrivals) NextGap(_ *rand.Rand) (float64, bool) {
	return s.interval, true
}

// UniformArrivals draws gaps uniformly from [low, high].
type UniformArrivals struct {
	low, high float64
}

func (s *UniformArrivals) NextGap(rng *rand.Rand) (float64, bool) {
	return math.Max(0, uniform(rng, s.low, s.high)), true
}

// BurstArrivals has no per-request gap.
type BurstArrivals struct{}

func (s *BurstArrivals) NextGap(_ *rand.Rand) (float64, bool) {
	return 0, false
}

// ExponentialService draws exponentially distributed durations.
type ExponentialService struct {
	mean float64
}

func (s *ExponentialService) Sample(rng *rand.Rand) float64 {
	return math.Max(0, rng.ExpFloat64()*s.mean)
}

// DeterministicService always returns the configured mean, floored at Epsilon.
type DeterministicService struct {
	mean float64
}

func (s *DeterministicService) Sample(_ *rand.Rand) float64 {
	return s.mean
}

// NormalService draws from N(mean, std) clamped at zero.
type NormalService struct {
	mean, std float64
}

func (s *NormalService) Sample(rng *rand.Rand) float64 {
	return math.Max(0, rng.NormFloat64()*s.std+s.mean)
}

// UniformService draws from [max(0, mean-std), mean+std].
type UniformService struct {
	low, high float64
}

func (s *UniformService) Sample(rng *rand.Rand) float64 {
	return math.Max(0, uniform(rng, s.low, s.high))
}

// uniform returns a + (b-a)*U. Works for a > b as well.
func uniform(rng *rand.Rand, a, b float64) float64 {
	return a + (b-a)*rng.Float64()
}

// floorEpsilon clamps degenerate rates and means, warning once per sampler construction.
func floorEpsilon(name string, v float64) float64 {
	if v < Epsilon {
		logrus.Warnf("%s=%g is degenerate; clamping to %g", name, v, Epsilon)
		return Epsilon
	}
	return v
}

// NewArrivalSampler creates an ArrivalSampler for the configured kind.
// Unrecognized kinds fall back to exponential with the configured rate.
func NewArrivalSampler(cfg Config) ArrivalSampler {
	switch {
	case cfg.ArrivalDist == ArrivalExponential:
		return &ExponentialArrivals{rate: floorEpsilon("arrival_rate", cfg.ArrivalRate)}
	case cfg.ArrivalDist == ArrivalDeterministic:
		return &DeterministicArrivals{interval: math.Max(0, cfg.ArrivalInterval)}
	case cfg.ArrivalDist == ArrivalUniform:
		return &UniformArrivals{low: cfg.ArrivalLow, high: cfg.ArrivalHigh}
	case cfg.ArrivalDist.IsBurst():
		return &BurstArrivals{}
	default:
		logrus.Warnf("unknown arrival_dist %q; falling back to exponential", cfg.ArrivalDist)
		return &ExponentialArrivals{rate: floorEpsilon("arrival_rate", cfg.ArrivalRate)}
	}
}

// NewServiceSampler creates a ServiceSampler for the configured kind.
// Unrecognized kinds fall back to exponential with the configured mean.
func NewServiceSampler(cfg Config) ServiceSampler {
	switch cfg.ServiceDist {
	case ServiceExponential:
		return &ExponentialService{mean: floorEpsilon("service_mean", cfg.ServiceMean)}
	case ServiceDeterministic:
		return &DeterministicService{mean: floorEpsilon("service_mean", cfg.ServiceMean)}
	case ServiceNormal:
		return &NormalService{mean: cfg.ServiceMean, std: cfg.ServiceStd}
	case ServiceUniform:
		return &UniformService{
			low:  math.Max(0, cfg.ServiceMean-cfg.ServiceStd),
			high: cfg.ServiceMean + cfg.ServiceStd,
		}
	default:
		logrus.Warnf("unknown service_dist %q; falling back to exponential", cfg.ServiceDist)
		return &ExponentialService{mean: floorEpsilon("service_mean", cfg.ServiceMean)}
	}
}
