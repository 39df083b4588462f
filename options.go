package gauge

// GaugeOption configures a Gauge at construction time via New. Options
// are applied left to right, so a later option overrides an earlier one.
type GaugeOption func(g *Gauge)

// WithClock injects the time source a Gauge reads "now" through. Without
// this option, a Gauge shares the package-level real-time default clock.
func WithClock(c *Clock) GaugeOption {
	return func(g *Gauge) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithMomentumFactory overrides how a Gauge builds Momentum values,
// letting an embedding type attach auxiliary fields to every momentum it
// creates (the extensibility hook of the public contract).
func WithMomentumFactory(factory MomentumFactory) GaugeOption {
	return func(g *Gauge) {
		if factory != nil {
			g.momentumFactory = factory
		}
	}
}

// WithBaseTime sets the gauge's initial base time. Without this option,
// New uses the gauge's clock at construction time.
func WithBaseTime(at float64) GaugeOption {
	return func(g *Gauge) {
		g.baseTime = at
		g.baseTimeSet = true
	}
}
