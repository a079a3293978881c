// Package experiment runs parameter sweeps over the simulator: one
// configuration axis, several values, independent seeded replicas per value.
// It reports per-point means with 95% confidence intervals and a one-way
// ANOVA telling whether the swept parameter matters at all.
//
// Replicas execute concurrently, but every replica is a pure function of its
// configuration and results are placed by index, so a Report is
// deterministic for a given Sweep.
package experiment
