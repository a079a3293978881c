package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Epsilon is the floor applied to degenerate rates and means.
const Epsilon = 1e-9

// ArrivalKind selects the inter-arrival process.
type ArrivalKind string

const (
	ArrivalExponential   ArrivalKind = "exponential"
	ArrivalDeterministic ArrivalKind = "deterministic"
	ArrivalUniform       ArrivalKind = "uniform"
	ArrivalBurst         ArrivalKind = "burst"
	// ArrivalPoissonBurst is accepted as an alias of ArrivalBurst.
	ArrivalPoissonBurst ArrivalKind = "poisson_burst"
)

// ServiceKind selects the service-time distribution.
type ServiceKind string

const (
	ServiceExponential   ServiceKind = "exponential"
	ServiceDeterministic ServiceKind = "deterministic"
	ServiceUniform       ServiceKind = "uniform"
	ServiceNormal        ServiceKind = "normal"
)

// Strategy selects the admission-control policy.
type Strategy string

const (
	StrategyQueue     Strategy = "queue"
	StrategyReject    Strategy = "reject"
	StrategyRateLimit Strategy = "rate_limit"
)

// Valid value registries.
var (
	validArrivalKinds = map[ArrivalKind]bool{
		ArrivalExponential: true, ArrivalDeterministic: true, ArrivalUniform: true,
		ArrivalBurst: true, ArrivalPoissonBurst: true,
	}
	validServiceKinds = map[ServiceKind]bool{
		ServiceExponential: true, ServiceDeterministic: true, ServiceUniform: true, ServiceNormal: true,
	}
	validStrategies = map[Strategy]bool{
		StrategyQueue: true, StrategyReject: true, StrategyRateLimit: true,
	}
)

// IsBurst reports whether the arrival kind is handled structurally as bursts.
func (k ArrivalKind) IsBurst() bool {
	return k == ArrivalBurst || k == ArrivalPoissonBurst
}

// Config is the full set of options for one simulation run.
// Tags use the canonical option names so YAML files and JSON results share one vocabulary.
type Config struct {
	SimTime float64 `yaml:"sim_time" json:"sim_time"` // horizon in virtual seconds

	ArrivalDist        ArrivalKind `yaml:"arrival_dist" json:"arrival_dist"`
	ArrivalRate        float64     `yaml:"arrival_rate" json:"arrival_rate"`               // exponential: requests/sec
	ArrivalInterval    float64     `yaml:"arrival_interval" json:"arrival_interval"`       // deterministic: seconds
	ArrivalLow         float64     `yaml:"arrival_low" json:"arrival_low"`                 // uniform: seconds
	ArrivalHigh        float64     `yaml:"arrival_high" json:"arrival_high"`               // uniform: seconds
	BurstSize          int         `yaml:"burst_size" json:"burst_size"`                   // burst: requests per burst
	InterburstInterval float64     `yaml:"interburst_interval" json:"interburst_interval"` // burst: seconds

	ServiceDist ServiceKind `yaml:"service_dist" json:"service_dist"`
	ServiceMean float64     `yaml:"service_mean" json:"service_mean"`
	ServiceStd  float64     `yaml:"service_std" json:"service_std"`

	NumServers   int      `yaml:"num_servers" json:"num_servers"`
	Strategy     Strategy `yaml:"strategy" json:"strategy"`
	QueueSize    *int     `yaml:"queue_size" json:"queue_size"` // nil = unbounded
	RateLimitRPS float64  `yaml:"rate_limit_rps" json:"rate_limit_rps"`

	MonitorInterval float64 `yaml:"monitor_interval" json:"monitor_interval"`
	Seed            int64   `yaml:"seed" json:"seed"`

	// Strict rejects unknown distribution kinds instead of falling back to exponential.
	Strict bool `yaml:"strict,omitempty" json:"strict,omitempty"`
}

// DefaultConfig returns the baseline configuration. Each call returns a fresh value,
// so callers may override fields without affecting other runs.
func DefaultConfig() Config {
	return Config{
		SimTime:            60.0,
		ArrivalDist:        ArrivalExponential,
		ArrivalRate:        10.0,
		ArrivalInterval:    0.1,
		ArrivalLow:         0.05,
		ArrivalHigh:        0.2,
		BurstSize:          20,
		InterburstInterval: 5.0,
		ServiceDist:        ServiceExponential,
		ServiceMean:        0.08,
		ServiceStd:         0.02,
		NumServers:         2,
		Strategy:           StrategyQueue,
		QueueSize:          IntPtr(50),
		RateLimitRPS:       20.0,
		MonitorInterval:    0.5,
		Seed:               1234,
	}
}

// IntPtr returns a pointer to v. Handy for QueueSize literals.
func IntPtr(v int) *int {
	return &v
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	if c.QueueSize != nil {
		out.QueueSize = IntPtr(*c.QueueSize)
	}
	return out
}

// ErrInvalidConfig is matched by every *ConfigError via errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a configuration that would make the simulation meaningless.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfig) true for any *ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Normalize returns the effective configuration: a negative queue size becomes
// unbounded and the burst alias is canonicalized. It never rejects anything.
func (c Config) Normalize() Config {
	out := c.Clone()
	if out.QueueSize != nil && *out.QueueSize < 0 {
		out.QueueSize = nil
	}
	if out.ArrivalDist == ArrivalPoissonBurst {
		out.ArrivalDist = ArrivalBurst
	}
	return out
}

// Validate fails fast on configurations the scheduler cannot run meaningfully.
// Degenerate rates and means are not errors; the samplers clamp them.
func (c Config) Validate() error {
	finite := map[string]float64{
		"sim_time":            c.SimTime,
		"arrival_rate":        c.ArrivalRate,
		"arrival_interval":    c.ArrivalInterval,
		"arrival_low":         c.ArrivalLow,
		"arrival_high":        c.ArrivalHigh,
		"interburst_interval": c.InterburstInterval,
		"service_mean":        c.ServiceMean,
		"service_std":         c.ServiceStd,
		"rate_limit_rps":      c.RateLimitRPS,
		"monitor_interval":    c.MonitorInterval,
	}
	for _, name := range sortedKeys(finite) {
		if v := finite[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return configErrorf(name, "must be a finite number, got %f", v)
		}
	}
	if c.SimTime < 0 {
		return configErrorf("sim_time", "must be non-negative, got %f", c.SimTime)
	}
	if c.NumServers < 1 {
		return configErrorf("num_servers", "must be at least 1, got %d", c.NumServers)
	}
	if c.MonitorInterval <= 0 {
		return configErrorf("monitor_interval", "must be positive, got %f", c.MonitorInterval)
	}
	if !validStrategies[c.Strategy] {
		return configErrorf("strategy", "unknown value %q; valid: queue, reject, rate_limit", c.Strategy)
	}
	if c.Strict {
		if !validArrivalKinds[c.ArrivalDist] {
			return configErrorf("arrival_dist", "unknown value %q; valid: exponential, deterministic, uniform, burst", c.ArrivalDist)
		}
		if !validServiceKinds[c.ServiceDist] {
			return configErrorf("service_dist", "unknown value %q; valid: exponential, deterministic, uniform, normal", c.ServiceDist)
		}
	}
	switch {
	case c.ArrivalDist == ArrivalDeterministic:
		if c.ArrivalInterval <= 0 {
			return configErrorf("arrival_interval", "must be positive for deterministic arrivals, got %f", c.ArrivalInterval)
		}
	case c.ArrivalDist == ArrivalUniform:
		if c.ArrivalHigh <= 0 {
			return configErrorf("arrival_high", "must be positive for uniform arrivals, got %f", c.ArrivalHigh)
		}
	case c.ArrivalDist.IsBurst():
		if c.BurstSize < 1 {
			return configErrorf("burst_size", "must be at least 1, got %d", c.BurstSize)
		}
		if c.InterburstInterval <= 0 {
			return configErrorf("interburst_interval", "must be positive, got %f", c.InterburstInterval)
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
