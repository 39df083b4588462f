package gauge

import "math"

// Momentum is an immutable constant velocity active on the closed
// interval [Since, Until]. Since == -Inf or Until == +Inf mean the
// momentum has no lower or upper bound respectively. Equality is
// structural: two Momentum values with identical fields are equal.
type Momentum struct {
	Velocity float64
	Since    float64
	Until    float64
}

// MomentumFactory builds a Momentum from its three defining fields. A
// Gauge's factory defaults to newMomentum but may be overridden via
// WithMomentumFactory, the extensibility hook of the determination core's
// public contract: an override can still validate or adjust the interval
// before returning it, without the core needing to know.
type MomentumFactory func(velocity, since, until float64) (Momentum, error)

// newMomentum is the default MomentumFactory. It validates the interval
// and returns a plain Momentum.
func newMomentum(velocity, since, until float64) (Momentum, error) {
	if since != math.Inf(-1) && until != math.Inf(1) && since >= until {
		return Momentum{}, ErrBadMomentum
	}

	return Momentum{Velocity: velocity, Since: since, Until: until}, nil
}

// active reports whether the momentum contributes velocity at time t.
func (m Momentum) active(t float64) bool {
	return m.Since <= t && t <= m.Until
}
