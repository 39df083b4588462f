package gauge

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is the injectable time source every Gauge reads "now" through.
// The unit is seconds as a float64, consistent with every Since/Until/At
// parameter in this package. A Gauge never reads the wall clock directly;
// it always goes through its Clock, so time in a Gauge's past is exactly
// as reproducible as the Clock backing it.
type Clock struct {
	inner clock.Clock
	epoch time.Time
}

// NewClock returns a Clock backed by real wall-clock time. Now() reports
// seconds elapsed since the Clock was constructed, not since the Unix
// epoch, so successive gauges built at different times don't need to
// carry enormous base timestamps.
func NewClock() *Clock {
	return &Clock{inner: clock.New(), epoch: time.Now()}
}

// NewMockClock wraps a *clock.Mock (github.com/benbjohnson/clock) so that
// tests can advance time deterministically with mock.Add/mock.Set instead
// of sleeping. The epoch is the mock's time at wrap time.
func NewMockClock(mock *clock.Mock) *Clock {
	return &Clock{inner: mock, epoch: mock.Now()}
}

// Now returns the current time in seconds relative to the Clock's epoch.
func (c *Clock) Now() float64 {
	return c.inner.Now().Sub(c.epoch).Seconds()
}

// defaultClock is shared by gauges constructed without WithClock.
var defaultClock = NewClock()
