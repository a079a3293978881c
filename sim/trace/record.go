// Package trace provides the event-log record types produced by a simulation run.
// This package has no dependencies on sim/; it stores pure data types so that
// presentation and analysis layers can consume a log without importing the engine.
package trace

import "fmt"

// Kind tags a single lifecycle event of a request.
type Kind string

const (
	KindArrival          Kind = "ARRIVAL"
	KindServiceStart     Kind = "SERVICE_START"
	KindServiceEnd       Kind = "SERVICE_END"
	KindDroppedQueueFull Kind = "DROPPED_QUEUE_FULL"
	KindDroppedRate      Kind = "DROPPED_RATE"
	KindDroppedReject    Kind = "DROPPED_REJECT"
)

// IsDrop reports whether k is one of the terminal drop kinds.
func (k Kind) IsDrop() bool {
	switch k {
	case KindDroppedQueueFull, KindDroppedRate, KindDroppedReject:
		return true
	default:
		return false
	}
}

// Record captures one timestamped event of one request.
type Record struct {
	Time      float64 `json:"time" yaml:"time"` // virtual seconds
	Kind      Kind    `json:"event" yaml:"event"`
	RequestID int     `json:"id" yaml:"id"`
}

func (r Record) String() string {
	return fmt.Sprintf("(%.6f, %s, %d)", r.Time, r.Kind, r.RequestID)
}
