// Package sim provides the core discrete-event simulation engine for loadreg.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - scheduler.go: the virtual-time event loop (wake-ups ordered by time, then insertion)
//   - pool.go: the capacity-bounded server pool with its FIFO wait list
//   - simulator.go: the arrival generator, request lifecycle and monitor tasks
//
// # Architecture
//
// Every logical process is a chain of continuations (Task) re-enqueued on the
// scheduler with a wake time. Suspension points are exactly: inter-arrival
// wait, service wait, pool acquisition wait, monitor interval wait. Only one
// task runs at a time, so the pool, token bucket and metrics need no locks.
//
// Sub-packages:
//   - sim/trace/: event-log record types, free of engine dependencies
//   - sim/experiment/: parameter sweeps with replicas, confidence intervals and ANOVA
//   - sim/recording/: SQLite persistence of result records
//
// # Key Interfaces
//
//   - ArrivalSampler / ServiceSampler: inter-arrival gaps and service durations
//   - AdmissionPolicy: queue, reject or rate_limit, resolved once per run
//   - PoolState: the read-only pool view an admission decision sees
//
// # Determinism
//
// A run is a pure function of its Config. Same config, same seed: byte-identical
// event log and identical aggregates.
package sim
