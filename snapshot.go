package gauge

// MomentumSnapshot is the plain-tuple serialization of a Momentum.
type MomentumSnapshot struct {
	Velocity float64
	Since    float64
	Until    float64
}

// LimitSnapshot is the serialized form of a Limit: either a constant
// number, or a reference to another gauge's own snapshot. IsGauge
// distinguishes the two since the zero value of GaugeSnapshot is not
// itself a meaningful "absent" marker.
type LimitSnapshot struct {
	IsGauge bool
	Const   float64
	Gauge   *GaugeSnapshot
}

// GaugeSnapshot is the structural snapshot of a Gauge's durable state:
// its base, its momenta as plain tuples, and its max/min as either a
// number or a nested gauge snapshot. It carries no clock and no cached
// determination; Restore rebuilds both from scratch, so serializing and
// immediately restoring a gauge reproduces its determination exactly
// given the same clock.
type GaugeSnapshot struct {
	BaseTime  float64
	BaseValue float64
	Momenta   []MomentumSnapshot
	Max       LimitSnapshot
	Min       LimitSnapshot
}

// Snapshot captures g's current durable state: its base point, its live
// momenta, and its max/min, recursing into any limit gauge's own
// snapshot. It never touches the clock or the cached determination.
func (g *Gauge) Snapshot() GaugeSnapshot {
	s := GaugeSnapshot{
		BaseTime:  g.baseTime,
		BaseValue: g.baseValue,
		Max:       snapshotLimit(g.maxLimit),
		Min:       snapshotLimit(g.minLimit),
	}
	if len(g.momenta) > 0 {
		s.Momenta = make([]MomentumSnapshot, len(g.momenta))
		for i, m := range g.momenta {
			s.Momenta[i] = MomentumSnapshot{Velocity: m.Velocity, Since: m.Since, Until: m.Until}
		}
	}

	return s
}

func snapshotLimit(l Limit) LimitSnapshot {
	if lg := limitGauge(l); lg != nil {
		gs := lg.Snapshot()

		return LimitSnapshot{IsGauge: true, Gauge: &gs}
	}

	return LimitSnapshot{Const: float64(l.(constLimit))}
}

// Restore reconstructs a Gauge from a snapshot taken by Snapshot,
// re-establishing any limit gauge's back-reference. opts apply to every
// gauge the restore creates, including nested limit gauges, so a clock
// passed via WithClock is shared across the whole restored hyper-gauge
// DAG. The gauge restores without playing momenta forward: its base
// time and value are taken from the snapshot verbatim.
func Restore(s GaugeSnapshot, opts ...GaugeOption) *Gauge {
	max := restoreLimit(s.Max, opts...)
	min := restoreLimit(s.Min, opts...)

	baseOpts := append(append([]GaugeOption{}, opts...), WithBaseTime(s.BaseTime))
	g := New(s.BaseValue, max, min, baseOpts...)
	for _, ms := range s.Momenta {
		g.momenta = append(g.momenta, Momentum{Velocity: ms.Velocity, Since: ms.Since, Until: ms.Until})
	}

	return g
}

func restoreLimit(s LimitSnapshot, opts ...GaugeOption) Limit {
	if s.IsGauge {
		return GaugeLimit(Restore(*s.Gauge, opts...))
	}

	return Const(s.Const)
}
