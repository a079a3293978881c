// Defines the Request struct that models an individual request in the simulation.
// Tracks arrival time and the two service timestamps.

package sim

import (
	"fmt"
)

// RequestState represents the lifecycle state of a request.
type RequestState string

const (
	StateArrived   RequestState = "arrived"
	StateWaiting   RequestState = "waiting"
	StateInService RequestState = "in_service"
	StateCompleted RequestState = "completed"
	StateDropped   RequestState = "dropped"
)

// Request models a single request's lifecycle in the simulation.
// Immutable after creation except for ServiceStart and ServiceEnd, each
// written exactly once by the lifecycle process.
type Request struct {
	ID          int          // Sequential identifier, starting at 1
	ArrivalTime float64      // Virtual seconds
	State       RequestState // arrived, waiting, in_service, completed, dropped

	ServiceStart float64
	ServiceEnd   float64
	startSet     bool
	endSet       bool
}

// NewRequest creates a request arriving at the given virtual time.
func NewRequest(id int, arrival float64) *Request {
	return &Request{ID: id, ArrivalTime: arrival, State: StateArrived}
}

// MarkServiceStart records the start of service. Panics if called twice.
func (r *Request) MarkServiceStart(t float64) {
	if r.startSet {
		panic(fmt.Sprintf("request %d: service start written twice", r.ID))
	}
	r.ServiceStart = t
	r.startSet = true
	r.State = StateInService
}

// MarkServiceEnd records the end of service. Panics if called twice or before start.
func (r *Request) MarkServiceEnd(t float64) {
	if !r.startSet {
		panic(fmt.Sprintf("request %d: service end written before start", r.ID))
	}
	if r.endSet {
		panic(fmt.Sprintf("request %d: service end written twice", r.ID))
	}
	r.ServiceEnd = t
	r.endSet = true
	r.State = StateCompleted
}

// ResponseTime returns end-of-service minus arrival.
func (r *Request) ResponseTime() float64 {
	return r.ServiceEnd - r.ArrivalTime
}

// This method returns a human-readable string representation of a Request.
func (r Request) String() string {
	return fmt.Sprintf("Request: (ID: %d, State: %s, ArrivalTime: %.6f)", r.ID, r.State, r.ArrivalTime)
}
