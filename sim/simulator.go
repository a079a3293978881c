// sim/simulator.go
package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Simulator wires the scheduler, server pool, admission policy, samplers and
// metrics for one run. Build it with NewSimulator, call Run once.
type Simulator struct {
	Config    Config
	Scheduler *Scheduler
	Pool      *ServerPool
	Admission AdmissionPolicy
	Metrics   *Metrics

	arrivals   ArrivalSampler
	service    ServiceSampler
	arrivalRNG *rand.Rand
	serviceRNG *rand.Rand
	nextReqID  int
	hasRun     bool
}

// NewSimulator validates cfg, resolves the effective configuration and builds
// every component. Configuration errors are returned before anything is scheduled.
func NewSimulator(cfg Config) (*Simulator, error) {
	eff := cfg.Normalize()
	if err := eff.Validate(); err != nil {
		return nil, err
	}
	admission, err := NewAdmissionPolicy(eff)
	if err != nil {
		return nil, err
	}

	streams := NewStreams(eff.Seed)
	sched := NewScheduler(eff.SimTime)
	s := &Simulator{
		Config:     eff,
		Scheduler:  sched,
		Pool:       NewServerPool(sched, eff.NumServers),
		Admission:  admission,
		Metrics:    NewMetrics(),
		arrivals:   NewArrivalSampler(eff),
		service:    NewServiceSampler(eff),
		arrivalRNG: streams.Get(StreamArrival),
		serviceRNG: streams.Get(StreamService),
	}
	return s, nil
}

// Run executes the simulation to the horizon and returns its result record.
// Panics if called twice.
func (s *Simulator) Run() *Result {
	if s.hasRun {
		panic("Simulator.Run: a simulator runs exactly once")
	}
	s.hasRun = true

	logrus.Infof("Starting simulation: horizon=%gs servers=%d admission=%s arrivals=%s service=%s seed=%d",
		s.Config.SimTime, s.Config.NumServers, describePolicy(s.Admission),
		s.Config.ArrivalDist, s.Config.ServiceDist, s.Config.Seed)

	s.Scheduler.Spawn(s.generateArrivals)
	s.Scheduler.Spawn(s.monitor)
	s.Scheduler.Run()
	logrus.Debugf("[t=%.6f] scheduler stopped at horizon %g: %d tasks resumed, %d abandoned",
		s.Scheduler.Now(), s.Scheduler.Horizon(), s.Scheduler.Resumed(), s.Scheduler.Pending())

	res := newResult(s.Config, s.Metrics)
	logrus.Infof("Simulation ended: arrivals=%d processed=%d dropped=%d in_flight=%d utilization=%.4f",
		res.TotalArrivals, res.Processed, res.Dropped, res.InFlight, res.Utilization)
	return res
}

// Run is the engine as a pure function: (configuration, seed) → result.
func Run(cfg Config) (*Result, error) {
	s, err := NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(), nil
}

// generateArrivals is the arrival generator task. Each resumption is one
// loop iteration: spawn request(s), then suspend for the next gap.
func (s *Simulator) generateArrivals() {
	if !s.Scheduler.BeforeHorizon() {
		return
	}
	if s.Config.ArrivalDist.IsBurst() {
		s.Scheduler.After(s.Config.InterburstInterval, func() {
			for i := 0; i < s.Config.BurstSize; i++ {
				s.spawnRequest()
			}
			s.generateArrivals()
		})
		return
	}

	s.spawnRequest()
	gap, ok := s.arrivals.NextGap(s.arrivalRNG)
	if !ok {
		gap = 0
	}
	s.Scheduler.After(gap, s.generateArrivals)
}

// spawnRequest starts one request lifecycle task at the current instant.
func (s *Simulator) spawnRequest() {
	s.nextReqID++
	id := s.nextReqID
	s.Scheduler.Spawn(func() {
		s.handleRequest(NewRequest(id, s.Scheduler.Now()))
	})
}

// handleRequest is the request lifecycle: admission, pool acquisition,
// service wait, release.
func (s *Simulator) handleRequest(req *Request) {
	now := s.Scheduler.Now()
	s.Metrics.RecordArrival(now, req)

	admitted, drop := s.Admission.Admit(now, s.Pool)
	if !admitted {
		req.State = StateDropped
		s.Metrics.RecordDrop(now, req, drop)
		logrus.Debugf("[t=%.6f] request %d dropped: %s", now, req.ID, drop)
		return
	}
	s.Metrics.RecordAdmitted(req)

	req.State = StateWaiting
	s.Pool.Acquire(func() {
		start := s.Scheduler.Now()
		req.MarkServiceStart(start)
		s.Metrics.RecordServiceStart(start, req)

		serviceTime := s.service.Sample(s.serviceRNG)
		s.Scheduler.After(serviceTime, func() {
			end := s.Scheduler.Now()
			s.Pool.Release()
			req.MarkServiceEnd(end)
			s.Metrics.RecordServiceEnd(end, req)
		})
	})
}

// monitor samples wait-list length and occupancy every monitor interval.
func (s *Simulator) monitor() {
	if !s.Scheduler.BeforeHorizon() {
		return
	}
	s.Metrics.RecordSample(s.Scheduler.Now(), s.Pool.Waiting(), s.Pool.Busy())
	s.Scheduler.After(s.Config.MonitorInterval, s.monitor)
}
