package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScheduler_TimeOrdering tests that wake-ups resume in time order
func TestScheduler_TimeOrdering(t *testing.T) {
	s := NewScheduler(100)
	var got []float64
	record := func() { got = append(got, s.Now()) }

	// Schedule in non-monotone order
	s.After(5, record)
	s.After(1, record)
	s.After(3, record)
	s.Run()

	assert.Equal(t, []float64{1, 3, 5}, got)
}

// TestScheduler_TiesResolveFIFO tests same-time wake-ups use insertion order
func TestScheduler_TiesResolveFIFO(t *testing.T) {
	s := NewScheduler(10)
	var order []string
	s.After(2, func() { order = append(order, "a") })
	s.After(2, func() { order = append(order, "b") })
	s.After(1, func() {
		// scheduled later, lands at the same instant as a and b
		s.After(1, func() { order = append(order, "c") })
	})
	s.After(2, func() { order = append(order, "d") })
	s.Run()

	assert.Equal(t, []string{"a", "b", "d", "c"}, order)
}

func TestScheduler_Spawn_RunsAfterCurrentInstantTasks(t *testing.T) {
	s := NewScheduler(10)
	var order []string
	s.Spawn(func() {
		order = append(order, "parent")
		s.Spawn(func() { order = append(order, "child") })
	})
	s.Spawn(func() { order = append(order, "sibling") })
	s.Run()

	assert.Equal(t, []string{"parent", "sibling", "child"}, order)
}

func TestScheduler_HorizonAbandonsLateWakeups(t *testing.T) {
	// GIVEN wake-ups before, exactly at and after the horizon
	s := NewScheduler(5)
	var ran []float64
	for _, at := range []float64{4.9, 5, 7} {
		s.After(at, func() { ran = append(ran, s.Now()) })
	}

	// WHEN the scheduler runs
	s.Run()

	// THEN only the wake-up strictly before the horizon resumes
	assert.Equal(t, []float64{4.9}, ran)
	assert.Equal(t, 2, s.Pending(), "late wake-ups stay pending, never resumed")
	assert.Equal(t, 5.0, s.Now(), "clock finishes at the horizon")
	assert.Equal(t, 5.0, s.Horizon())
	assert.Equal(t, 1, s.Resumed())
	assert.False(t, s.BeforeHorizon())
}

func TestScheduler_ClockIsMonotone(t *testing.T) {
	s := NewScheduler(1000)
	last := -1.0
	var tick func()
	n := 0
	tick = func() {
		require.GreaterOrEqual(t, s.Now(), last)
		last = s.Now()
		n++
		if n < 100 {
			s.After(float64(n%3)*0.5, tick)
		}
	}
	s.Spawn(tick)
	s.Run()
	assert.Equal(t, 100, s.Resumed())
}

func TestScheduler_NegativeDelayClampedToNow(t *testing.T) {
	s := NewScheduler(10)
	var at float64 = -1
	s.After(2, func() {
		s.After(-3, func() { at = s.Now() })
	})
	s.Run()
	assert.Equal(t, 2.0, at)
}

func TestScheduler_InvalidInputsPanic(t *testing.T) {
	assert.Panics(t, func() { NewScheduler(-1) })
	s := NewScheduler(1)
	assert.Panics(t, func() { s.After(1, nil) })
}

func TestScheduler_ZeroHorizon_RunsNothing(t *testing.T) {
	s := NewScheduler(0)
	ran := false
	s.Spawn(func() { ran = true })
	s.Run()
	assert.False(t, ran)
}
