package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/loadreg/sim/trace"
)

type fakePool struct {
	capacity, busy, waiting int
}

func (f fakePool) Capacity() int { return f.capacity }
func (f fakePool) Busy() int { return f.busy }
func (f fakePool) Waiting() int { return f.waiting }

func TestRejectAdmission(t *testing.T) {
	tests := []struct {
		name     string
		pool     fakePool
		admitted bool
	}{
		{"idle", fakePool{capacity: 2}, true},
		{"one free", fakePool{capacity: 2, busy: 1}, true},
		{"all busy", fakePool{capacity: 2, busy: 2}, false},
		// only occupancy counts; the wait list is ignored
		{"free slot with waiters", fakePool{capacity: 2, busy: 1, waiting: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, kind := (&RejectAdmission{}).Admit(0, tt.pool)
			assert.Equal(t, tt.admitted, ok)
			if !ok {
				assert.Equal(t, trace.KindDroppedReject, kind)
			}
		})
	}
}

func TestQueueAdmission_Bounded(t *testing.T) {
	q := &QueueAdmission{Capacity: IntPtr(3)}
	tests := []struct {
		name     string
		pool     fakePool
		admitted bool
	}{
		{"empty", fakePool{capacity: 2}, true},
		{"servers full, queue has room", fakePool{capacity: 2, busy: 2, waiting: 2}, true},
		{"at limit", fakePool{capacity: 2, busy: 2, waiting: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, kind := q.Admit(0, tt.pool)
			assert.Equal(t, tt.admitted, ok)
			if !ok {
				assert.Equal(t, trace.KindDroppedQueueFull, kind)
			}
		})
	}
}

func TestQueueAdmission_ZeroCapacity_BehavesLikeReject(t *testing.T) {
	q := &QueueAdmission{Capacity: IntPtr(0)}
	ok, _ := q.Admit(0, fakePool{capacity: 1})
	assert.True(t, ok)
	ok, kind := q.Admit(0, fakePool{capacity: 1, busy: 1})
	assert.False(t, ok)
	assert.Equal(t, trace.KindDroppedQueueFull, kind)
}

func TestQueueAdmission_Unbounded_AlwaysAdmits(t *testing.T) {
	q := &QueueAdmission{}
	ok, _ := q.Admit(0, fakePool{capacity: 1, busy: 1, waiting: 1_000_000})
	assert.True(t, ok)
}

func TestRateLimitAdmission_DelegatesToBucket(t *testing.T) {
	rl := &RateLimitAdmission{Bucket: NewTokenBucket(1)}
	ok, _ := rl.Admit(0, fakePool{capacity: 1})
	assert.True(t, ok)
	ok, kind := rl.Admit(0, fakePool{capacity: 1})
	assert.False(t, ok)
	assert.Equal(t, trace.KindDroppedRate, kind)
	ok, _ = rl.Admit(1, fakePool{capacity: 1})
	assert.True(t, ok, "a second of refill restores one token")
}

func TestNewAdmissionPolicy_ResolvesStrategy(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     any
	}{
		{StrategyQueue, &QueueAdmission{}},
		{StrategyReject, &RejectAdmission{}},
		{StrategyRateLimit, &RateLimitAdmission{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strategy = tt.strategy
			p, err := NewAdmissionPolicy(cfg)
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
			assert.Equal(t, tt.strategy, p.Strategy())
		})
	}
}

func TestNewAdmissionPolicy_NilQueueSizeIsUnbounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueSize = nil
	p, err := NewAdmissionPolicy(cfg)
	require.NoError(t, err)
	assert.Nil(t, p.(*QueueAdmission).Capacity)
	assert.Equal(t, "queue(unbounded)", describePolicy(p))
}

func TestNewAdmissionPolicy_UnknownStrategy_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = "drop_tail"
	_, err := NewAdmissionPolicy(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
