package sim

import "fmt"

// ServerPool is a capacity-N mutual-exclusion resource.
// Slots are granted strictly first-come-first-served: a request that finds
// every server busy joins the wait list and is granted a slot exactly once,
// when it reaches the head of the list and a slot frees.
type ServerPool struct {
	sched    *Scheduler
	capacity int
	busy     int
	waiting  WaitQueue
}

// NewServerPool creates a pool of capacity servers driven by sched.
func NewServerPool(sched *Scheduler, capacity int) *ServerPool {
	if capacity < 1 {
		panic(fmt.Sprintf("NewServerPool: capacity must be >= 1, got %d", capacity))
	}
	return &ServerPool{sched: sched, capacity: capacity}
}

// Capacity returns the number of servers.
func (p *ServerPool) Capacity() int {
	return p.capacity
}

// Busy returns the number of occupied servers (0..Capacity).
func (p *ServerPool) Busy() int {
	return p.busy
}

// Waiting returns the length of the wait list.
func (p *ServerPool) Waiting() int {
	return p.waiting.Len()
}

// Acquire suspends the caller until a slot is held, then resumes granted
// through the scheduler. When a slot is free it is taken immediately, so the
// occupancy seen by later tasks at the same instant already includes it.
func (p *ServerPool) Acquire(granted Task) {
	if granted == nil {
		panic("ServerPool.Acquire: nil continuation")
	}
	if p.busy < p.capacity {
		p.busy++
		p.sched.Spawn(granted)
		return
	}
	p.waiting.Enqueue(granted)
}

// Release frees the caller's slot. If anyone is waiting, the slot passes to
// the head of the wait list at the same virtual instant.
func (p *ServerPool) Release() {
	if p.busy == 0 {
		panic("ServerPool.Release: no slot held")
	}
	if next := p.waiting.DequeueFront(); next != nil {
		// slot transfers directly; busy is unchanged
		p.sched.Spawn(next)
		return
	}
	p.busy--
}
