package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Task is a suspended continuation. Resuming a task runs it to its next
// suspension point, where it re-enqueues itself (or another task) via After.
type Task func()

// wakeup is one pending resumption.
type wakeup struct {
	at   float64 // virtual time
	seq  uint64  // insertion order, breaks ties FIFO
	task Task
}

// wakeupHeap implements a priority queue with deterministic ordering
// Ordering: wake time → insertion sequence
type wakeupHeap []wakeup

// Len implements heap.Interface
func (h wakeupHeap) Len() int { return len(h) }

// Less implements heap.Interface with deterministic ordering
func (h wakeupHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

// Swap implements heap.Interface
func (h wakeupHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push implements heap.Interface
func (h *wakeupHeap) Push(x any) {
	*h = append(*h, x.(wakeup))
}

// Pop implements heap.Interface
func (h *wakeupHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = wakeup{} // release the closure
	*h = old[0 : n-1]
	return item
}

// Scheduler is a cooperative, single-threaded virtual-time event loop.
// Exactly one task runs at any instant; tasks never run concurrently,
// so state touched only from tasks needs no locking.
type Scheduler struct {
	clock   float64
	horizon float64
	queue   wakeupHeap
	nextSeq uint64
	resumed int
	running bool
}

// NewScheduler creates a scheduler that stops at horizon (virtual seconds).
func NewScheduler(horizon float64) *Scheduler {
	if math.IsNaN(horizon) || horizon < 0 {
		panic(fmt.Sprintf("NewScheduler: invalid horizon %v", horizon))
	}
	s := &Scheduler{horizon: horizon, queue: make(wakeupHeap, 0)}
	heap.Init(&s.queue)
	return s
}

// Now returns the current virtual time.
func (s *Scheduler) Now() float64 {
	return s.clock
}

// Horizon returns the configured end of the run.
func (s *Scheduler) Horizon() float64 {
	return s.horizon
}

// BeforeHorizon reports whether now < horizon. Generator loops check it
// before scheduling further work.
func (s *Scheduler) BeforeHorizon() bool {
	return s.clock < s.horizon
}

// Pending returns the number of wake-ups not yet processed.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Resumed returns how many tasks have been resumed so far.
func (s *Scheduler) Resumed() int {
	return s.resumed
}

// After suspends the caller's continuation for delay virtual seconds.
// Negative delays are clamped to zero; wake-ups at equal times resume in the
// order they were scheduled.
func (s *Scheduler) After(delay float64, task Task) {
	if math.IsNaN(delay) {
		panic("Scheduler.After: NaN delay")
	}
	if task == nil {
		panic("Scheduler.After: nil task")
	}
	if delay < 0 {
		delay = 0
	}
	heap.Push(&s.queue, wakeup{at: s.clock + delay, seq: s.nextSeq, task: task})
	s.nextSeq++
}

// Spawn starts a new task at the current instant, after every task already
// scheduled for this instant.
func (s *Scheduler) Spawn(task Task) {
	s.After(0, task)
}

// Run resumes tasks in (time, insertion) order until no wake-up remains
// strictly before the horizon. Wake-ups at or past the horizon are abandoned.
// The clock finishes at the horizon.
func (s *Scheduler) Run() {
	if s.running {
		panic("Scheduler.Run: already running")
	}
	s.running = true
	defer func() { s.running = false }()

	for s.queue.Len() > 0 {
		if s.queue[0].at >= s.horizon {
			break
		}
		w := heap.Pop(&s.queue).(wakeup)
		s.clock = w.at
		s.resumed++
		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			logrus.Tracef("[t=%.6f] resuming task #%d", s.clock, w.seq)
		}
		w.task()
	}
	s.clock = s.horizon
}
