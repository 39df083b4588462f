package gauge

import "math"

// Limit is a gauge's max or min bound: either a constant number or a
// reference to another Gauge (a "limit gauge"), which turns the gauge
// into a node of a hyper-gauge DAG. Const and GaugeLimit below build the
// only two implementations; the unexported marker method closes the sum type
// the way the reference implementation's duck-typed "number or gauge"
// union would be expressed in Go.
type Limit interface {
	isLimit()
}

// constLimit is a Limit holding a plain number. +Inf / -Inf are valid.
type constLimit float64

func (constLimit) isLimit() {}

// Const returns a Limit holding a fixed number, valid as either a max or
// a min. Use math.Inf(1) / math.Inf(-1) for an unbounded side.
func Const(value float64) Limit {
	return constLimit(value)
}

// gaugeLimit is a Limit that defers to another gauge's own trajectory.
type gaugeLimit struct {
	gauge *Gauge
}

func (*gaugeLimit) isLimit() {}

// GaugeLimit returns a Limit that tracks g's own value over time,
// turning the owning gauge into a hyper-gauge dependent on g.
func GaugeLimit(g *Gauge) Limit {
	return &gaugeLimit{gauge: g}
}

// limitGauge returns the *Gauge behind a Limit, or nil for a constLimit.
func limitGauge(l Limit) *Gauge {
	if gl, ok := l.(*gaugeLimit); ok {
		return gl.gauge
	}

	return nil
}

// PositiveInfinity and NegativeInfinity are convenience Limit values for
// an unbounded ceiling or floor.
var (
	PositiveInfinity = Const(math.Inf(1))
	NegativeInfinity = Const(math.Inf(-1))
)
