// Package gauge implements a deterministically time-varying scalar.
//
// What is gauge?
//
//	A gauge is a value that moves on its own between queries, driven by
//	time-bounded linear momenta and clamped inside a range. The range
//	bounds may be plain numbers or other gauges, which turns a single
//	gauge into a node of a DAG of "hyper-gauges" whose clamp curve is
//	itself piecewise-linear rather than constant.
//
//	Instead of polling a goroutine or ticker, gauge precomputes a
//	"determination" — a short list of (time, value) break-points — on
//	first query after any mutation, and answers Get/Velocity/When/Goal
//	by interpolating that list. No background computation ever runs.
//
// Why choose gauge?
//
//   - Deterministic    — the same base, momenta, and limits always
//     produce the same trajectory; the clock is the only external input.
//   - Lazy & cached     — the trajectory is built once per mutation, on
//     the first query that needs it.
//   - Pure Go           — no cgo; the only non-test dependency is a
//     pluggable clock.
//
// Under the hood the package is organized as:
//
//	clock.go      — injectable time source
//	momentum.go   — Momentum: a constant velocity over a time interval
//	line.go       — Horizon / Ray / Segment value-vs-time primitives
//	boundary.go   — lazy monotone iterator over a limit's line sequence
//	determine.go  — the sweep algorithm and the resulting Determination
//	gauge.go      — Gauge: base, momenta, limits, cache, mutators, queries
//	options.go    — functional options for New
//	snapshot.go   — structural (de)serialization
//
//	go get github.com/what-studio/gauge
package gauge
