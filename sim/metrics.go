// Tracks simulation-wide counters, the event log, response times and the
// monitor's periodic samples.

package sim

import (
	"github.com/inference-sim/loadreg/sim/trace"
)

// Sample is one (time, value) point of a monitor time series.
type Sample struct {
	Time  float64 `json:"time" yaml:"time"`
	Value int     `json:"value" yaml:"value"`
}

// Metrics accumulates statistics for a single run. It is owned by the
// simulator and mutated only from scheduled tasks.
type Metrics struct {
	TotalArrivals int
	Processed     int
	Dropped       int
	InFlight      int // admitted, not yet completed

	BusyTime float64 // sum of completed service durations (server-seconds)

	Events        *trace.Log
	ResponseTimes []float64 // in completion order
	QueueSamples  []Sample  // wait-list length
	BusySamples   []Sample  // occupied servers
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Events:        trace.NewLog(0),
		ResponseTimes: make([]float64, 0),
		QueueSamples:  make([]Sample, 0),
		BusySamples:   make([]Sample, 0),
	}
}

// RecordArrival counts a new arrival and logs it.
func (m *Metrics) RecordArrival(now float64, req *Request) {
	m.TotalArrivals++
	m.Events.Append(trace.Record{Time: now, Kind: trace.KindArrival, RequestID: req.ID})
}

// RecordAdmitted marks a request as in flight.
func (m *Metrics) RecordAdmitted(_ *Request) {
	m.InFlight++
}

// RecordDrop counts a terminal denial with its reason.
func (m *Metrics) RecordDrop(now float64, req *Request, kind trace.Kind) {
	if !kind.IsDrop() {
		panic("RecordDrop: " + string(kind) + " is not a drop kind")
	}
	m.Dropped++
	m.Events.Append(trace.Record{Time: now, Kind: kind, RequestID: req.ID})
}

// RecordServiceStart logs the start of service.
func (m *Metrics) RecordServiceStart(now float64, req *Request) {
	m.Events.Append(trace.Record{Time: now, Kind: trace.KindServiceStart, RequestID: req.ID})
}

// RecordServiceEnd logs completion and accumulates busy time and response time.
func (m *Metrics) RecordServiceEnd(now float64, req *Request) {
	m.InFlight--
	m.Processed++
	m.BusyTime += req.ServiceEnd - req.ServiceStart
	m.ResponseTimes = append(m.ResponseTimes, req.ResponseTime())
	m.Events.Append(trace.Record{Time: now, Kind: trace.KindServiceEnd, RequestID: req.ID})
}

// RecordSample appends one monitor observation to both time series.
func (m *Metrics) RecordSample(now float64, waiting, busy int) {
	m.QueueSamples = append(m.QueueSamples, Sample{Time: now, Value: waiting})
	m.BusySamples = append(m.BusySamples, Sample{Time: now, Value: busy})
}
