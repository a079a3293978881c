package sim

import (
	"fmt"

	"github.com/inference-sim/loadreg/sim/trace"
)

// PoolState is the read-only view of the server pool an admission decision sees.
type PoolState interface {
	Capacity() int
	Busy() int
	Waiting() int
}

// AdmissionPolicy decides whether an arriving request may contend for the pool.
// Called exactly once per arrival, before pool acquisition.
// On denial, drop names the record kind to log.
type AdmissionPolicy interface {
	Admit(now float64, pool PoolState) (admitted bool, drop trace.Kind)
	Strategy() Strategy
}

// QueueAdmission admits while waiting+busy stays below capacity+servers.
// A nil Capacity is unbounded and always admits.
type QueueAdmission struct {
	Capacity *int
}

func (q *QueueAdmission) Admit(_ float64, pool PoolState) (bool, trace.Kind) {
	if q.Capacity == nil {
		return true, ""
	}
	if pool.Waiting()+pool.Busy() >= *q.Capacity+pool.Capacity() {
		return false, trace.KindDroppedQueueFull
	}
	return true, ""
}

func (q *QueueAdmission) Strategy() Strategy { return StrategyQueue }

// RejectAdmission denies whenever every server is busy.
// Only occupancy is compared; the wait list is ignored, and under this
// policy nothing ever waits.
type RejectAdmission struct{}

func (r *RejectAdmission) Admit(_ float64, pool PoolState) (bool, trace.Kind) {
	if pool.Busy() >= pool.Capacity() {
		return false, trace.KindDroppedReject
	}
	return true, ""
}

func (r *RejectAdmission) Strategy() Strategy { return StrategyReject }

// RateLimitAdmission delegates to a token bucket.
type RateLimitAdmission struct {
	Bucket *TokenBucket
}

func (rl *RateLimitAdmission) Admit(now float64, _ PoolState) (bool, trace.Kind) {
	if rl.Bucket.TryConsume(now) {
		return true, ""
	}
	return false, trace.KindDroppedRate
}

func (rl *RateLimitAdmission) Strategy() Strategy { return StrategyRateLimit }

// NewAdmissionPolicy resolves the configured strategy once, at run start.
// cfg must already have passed Validate.
func NewAdmissionPolicy(cfg Config) (AdmissionPolicy, error) {
	switch cfg.Strategy {
	case StrategyQueue:
		var capacity *int
		if cfg.QueueSize != nil && *cfg.QueueSize >= 0 {
			capacity = IntPtr(*cfg.QueueSize)
		}
		return &QueueAdmission{Capacity: capacity}, nil
	case StrategyReject:
		return &RejectAdmission{}, nil
	case StrategyRateLimit:
		return &RateLimitAdmission{Bucket: NewTokenBucket(cfg.RateLimitRPS)}, nil
	default:
		return nil, configErrorf("strategy", "unknown value %q", cfg.Strategy)
	}
}

// describePolicy renders a policy for log lines.
func describePolicy(p AdmissionPolicy) string {
	switch v := p.(type) {
	case *QueueAdmission:
		if v.Capacity == nil {
			return "queue(unbounded)"
		}
		return fmt.Sprintf("queue(capacity=%d)", *v.Capacity)
	case *RateLimitAdmission:
		return fmt.Sprintf("rate_limit(rps=%g)", v.Bucket.rate)
	default:
		return string(p.Strategy())
	}
}
