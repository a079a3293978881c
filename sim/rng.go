package sim

import (
	"hash/fnv"
	"math/rand"
)

// Stream names one independent source of randomness within a run.
type Stream string

const (
	// StreamArrival drives inter-arrival gaps.
	StreamArrival Stream = "arrival"
	// StreamService drives service durations.
	StreamService Stream = "service"
)

// Streams hands out one *rand.Rand per Stream, all derived from the run seed.
// Draws on one stream never shift another, so changing the service
// distribution leaves the arrival sequence untouched.
//
// The arrival stream is seeded with the run seed itself; any other stream
// with seed XOR fnv1a64(name).
//
// Not safe for concurrent use. A run draws only from its scheduler loop.
type Streams struct {
	seed  int64
	cache map[Stream]*rand.Rand
}

// NewStreams creates the stream set for one run.
func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed, cache: make(map[Stream]*rand.Rand, 2)}
}

// Get returns the generator for name, creating it on first use.
// Repeated calls return the same instance.
func (s *Streams) Get(name Stream) *rand.Rand {
	r, ok := s.cache[name]
	if !ok {
		r = rand.New(rand.NewSource(streamSeed(s.seed, name)))
		s.cache[name] = r
	}
	return r
}

func streamSeed(seed int64, name Stream) int64 {
	if name == StreamArrival {
		return seed
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return seed ^ int64(h.Sum64())
}
