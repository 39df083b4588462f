package gauge

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// event is a small literal helper for building a determine() events slice
// without going through a Gauge.
func event(time float64, kind eventKind, velocity, since, until float64) momentumEvent {
	return momentumEvent{time: time, kind: kind, momentum: Momentum{Velocity: velocity, Since: since, Until: until}}
}

// requirePoints diffs a Determination's points against the scenario
// table's literal values, tolerant of the sweep's floating-point drift.
func requirePoints(t *testing.T, want [][2]float64, got []Point) {
	t.Helper()
	wantPoints := make([]Point, len(want))
	for i, w := range want {
		wantPoints[i] = Point{Time: w[0], Value: w[1]}
	}
	if diff := cmp.Diff(wantPoints, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}
}

// TestDetermine_Scenario1 locks in the reference scenario: a value inside
// an unbounded-below, 100-ceilinged range, crossed by two overlapping
// momenta that never reach the ceiling.
func TestDetermine_Scenario1(t *testing.T) {
	t.Parallel()

	events := []momentumEvent{
		event(1, eventAdd, 1, 1, 6),
		event(6, eventRemove, 1, 1, 6),
		event(3, eventAdd, -1, 3, 8),
		event(8, eventRemove, -1, 3, 8),
	}
	det, err := determine(0, 12, events, Const(100), Const(math.Inf(-1)))
	require.NoError(t, err)
	requirePoints(t, [][2]float64{{0, 12}, {1, 12}, {3, 14}, {6, 14}, {8, 12}}, det.Points)
}

// TestDetermine_Scenario2 locks in a rise clamped flat against a ceiling.
func TestDetermine_Scenario2(t *testing.T) {
	t.Parallel()

	events := []momentumEvent{
		event(0, eventAdd, 1, 0, 4),
		event(4, eventRemove, 1, 0, 4),
	}
	det, err := determine(0, 8, events, Const(10), Const(math.Inf(-1)))
	require.NoError(t, err)
	requirePoints(t, [][2]float64{{0, 8}, {2, 10}, {4, 10}}, det.Points)
}

// TestDetermine_Scenario3 locks in a value that starts above its own
// ceiling, descends into range, and keeps descending onto the (default)
// floor at zero.
func TestDetermine_Scenario3(t *testing.T) {
	t.Parallel()

	events := []momentumEvent{
		event(0, eventAdd, -1, 0, math.Inf(1)),
		event(math.Inf(1), eventRemove, -1, 0, math.Inf(1)),
	}
	det, err := determine(0, 12, events, Const(10), Const(0))
	require.NoError(t, err)
	requirePoints(t, [][2]float64{{0, 12}, {2, 10}, {12, 0}}, det.Points)
	require.NotNil(t, det.InRangeSince)
	require.InDelta(t, 2, *det.InRangeSince, 1e-9)
}

// TestDetermine_Scenario4 locks in an unbounded rise composed with two
// bounded momenta, re-entering and leaving the ceiling along the way.
func TestDetermine_Scenario4(t *testing.T) {
	t.Parallel()

	events := []momentumEvent{
		event(0, eventAdd, 1, 0, math.Inf(1)),
		event(math.Inf(1), eventRemove, 1, 0, math.Inf(1)),
		event(1, eventAdd, -2, 1, 3),
		event(3, eventRemove, -2, 1, 3),
		event(5, eventAdd, 1, 5, 7),
		event(7, eventRemove, 1, 5, 7),
	}
	det, err := determine(0, 0, events, Const(5), Const(0))
	require.NoError(t, err)
	requirePoints(t, [][2]float64{
		{0, 0}, {1, 1}, {2, 0}, {3, 0}, {5, 2}, {6.5, 5}, {7, 5},
	}, det.Points)
}

// TestDetermine_Scenario6 locks in a multi-crossing When sweep:
// a series of When queries against the same value are re-run as momenta
// accumulate, the way the reference implementation's own When test walks
// through the same setup one momentum at a time.
func TestDetermine_Scenario6(t *testing.T) {
	t.Parallel()

	g, _ := newTestGauge(t, 0, Const(10), Const(0))

	at, err := g.When(0, 0)
	require.NoError(t, err)
	require.InDelta(t, 0, at, 1e-9)

	_, err = g.When(10, 0)
	require.ErrorIs(t, err, ErrUnreachable)

	_, err = g.AddMomentum(1, 0, math.Inf(1))
	require.NoError(t, err)
	at, err = g.When(10, 0)
	require.NoError(t, err)
	require.InDelta(t, 10, at, 1e-9)

	_, err = g.AddMomentum(1, 3, 5)
	require.NoError(t, err)
	at, err = g.When(10, 0)
	require.NoError(t, err)
	require.InDelta(t, 8, at, 1e-9)

	_, err = g.AddMomentum(-2, 4, 8)
	require.NoError(t, err)

	want := map[float64]float64{
		0: 0, 1: 1, 2: 2, 3: 3, 4: 3.5, 5: 4, 6: 12, 7: 13, 8: 14, 9: 15, 10: 16,
	}
	for value, wantAt := range want {
		at, err := g.When(value, 0)
		require.NoError(t, err)
		require.InDeltaf(t, wantAt, at, 1e-9, "when(%v)", value)
	}

	_, err = g.When(11, 0)
	require.ErrorIs(t, err, ErrUnreachable)
}

// TestDetermine_Scenario5 locks in a hyper-gauge: the ceiling is itself a
// gauge descending under its own momentum.
func TestDetermine_Scenario5(t *testing.T) {
	t.Parallel()

	maxGauge := New(15, Const(15), Const(math.Inf(-1)), WithBaseTime(0))
	_, err := maxGauge.AddMomentum(-1, math.Inf(-1), 5)
	require.NoError(t, err)

	events := []momentumEvent{
		event(1, eventAdd, 1, 1, 6),
		event(6, eventRemove, 1, 1, 6),
		event(3, eventAdd, -1, 3, 8),
		event(8, eventRemove, -1, 3, 8),
	}
	det, err := determine(0, 12, events, GaugeLimit(maxGauge), Const(math.Inf(-1)))
	require.NoError(t, err)
	requirePoints(t, [][2]float64{
		{0, 12}, {1, 12}, {2, 13}, {3, 12}, {5, 10}, {6, 10}, {8, 8},
	}, det.Points)
}

func TestDetermination_AtAndVelocityAt(t *testing.T) {
	t.Parallel()

	det := &Determination{Points: []Point{{Time: 0, Value: 0}, {Time: 10, Value: 20}}}

	v, ok := det.At(5)
	require.True(t, ok)
	require.InDelta(t, 10, v, 1e-9)

	_, ok = det.At(-1)
	require.False(t, ok)

	v, ok = det.At(20)
	require.True(t, ok)
	require.Equal(t, 20.0, v)

	require.InDelta(t, 2, det.VelocityAt(5), 1e-9)
	require.Equal(t, 0.0, det.VelocityAt(20))
}

func TestDetermination_Goal(t *testing.T) {
	t.Parallel()

	det := &Determination{Points: []Point{{Time: 0, Value: 1}, {Time: 5, Value: 9}}}
	require.Equal(t, 9.0, det.Goal())
}

func TestDetermination_When(t *testing.T) {
	t.Parallel()

	det := &Determination{Points: []Point{
		{Time: 0, Value: 0},
		{Time: 4, Value: 8},
		{Time: 8, Value: 0},
	}}

	tm, err := det.When(4, 0)
	require.NoError(t, err)
	require.InDelta(t, 2, tm, 1e-9)

	tm, err = det.When(4, 1)
	require.NoError(t, err)
	require.InDelta(t, 6, tm, 1e-9)

	_, err = det.When(100, 0)
	require.ErrorIs(t, err, ErrUnreachable)

	// a break-point shared by two segments counts once, not twice.
	tm, err = det.When(8, 0)
	require.NoError(t, err)
	require.InDelta(t, 4, tm, 1e-9)
	_, err = det.When(8, 1)
	require.ErrorIs(t, err, ErrUnreachable)
}
