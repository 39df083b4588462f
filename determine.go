package gauge

import (
	"math"
	"sort"
)

// Point is a single (time, value) break-point of a Determination.
type Point struct {
	Time  float64
	Value float64
}

// Determination is the cached, piecewise-linear trajectory of a Gauge:
// a non-empty, strictly-increasing-in-time list of break-points plus the
// earliest time from which the gauge has been continuously in range.
type Determination struct {
	Points []Point

	// InRangeSince is the earliest time from which the gauge's value has
	// stayed inside both boundaries without interruption, or nil if it
	// never has been.
	InRangeSince *float64
}

// eventKind tags a momentum event in the sweep's timeline.
type eventKind int

const (
	eventNone eventKind = iota
	eventAdd
	eventRemove
)

// EventKind tags a Gauge's public momentum timeline event, as returned
// by MomentumEvents: a synthetic boundary marker, or a momentum's Since
// (EventAdd) or Until (EventRemove) edge.
type EventKind int

const (
	EventNone EventKind = iota
	EventAdd
	EventRemove
)

// Event is one entry of a gauge's momentum timeline.
type Event struct {
	Time     float64
	Kind     EventKind
	Momentum Momentum
}

// momentumEvent is one entry of the sweep's driving timeline.
type momentumEvent struct {
	time     float64
	kind     eventKind
	momentum Momentum
}

// limitLines builds the lineIterator for one side (ceiling or floor) of a
// gauge's range, given the gauge's base time and either a constant value
// or a limit gauge to pull a nested determination from.
func limitLines(baseTime float64, limit Limit) (lineIterator, error) {
	if c, ok := limit.(constLimit); ok {
		return newConstLineIterator(baseTime, float64(c)), nil
	}

	g := limit.(*gaugeLimit).gauge
	det, err := g.determination()
	if err != nil {
		return nil, err
	}

	return newGaugeLineIterator(baseTime, det.Points), nil
}

// determine runs the sweep of spec §4.3 from (baseTime, baseValue) driven
// by events, clamped between the ceil and floor boundaries, and returns
// the resulting Determination.
//
// This is a direct port of the reference implementation's
// Determination.__init__: the same two-boundary walk, the same
// again/walked-boundaries inner loop, and the same floating-point guards
// (skip an intersection exactly at since; force onto the boundary when an
// intersection is missed by drift).
func determine(baseTime, baseValue float64, events []momentumEvent, ceilLimit, floorLimit Limit) (*Determination, error) {
	ceilLines, err := limitLines(baseTime, ceilLimit)
	if err != nil {
		return nil, err
	}
	floorLines, err := limitLines(baseTime, floorLimit)
	if err != nil {
		return nil, err
	}

	ceilB, err := newBoundary(ceilLines, ceiling)
	if err != nil {
		return nil, err
	}
	floorB, err := newBoundary(floorLines, floor)
	if err != nil {
		return nil, err
	}
	boundaries := [2]*Boundary{ceilB, floorB}

	d := &Determination{}
	since, value := baseTime, baseValue
	velocities := make([]float64, 0, 4)
	var velocity float64
	var bound *Boundary
	overlapped := false

	emit := func(t, v float64, inRange bool) {
		if len(d.Points) > 0 && d.Points[len(d.Points)-1].Time == t {
			return
		}
		if inRange && d.InRangeSince == nil {
			since := t
			d.InRangeSince = &since
		}
		d.Points = append(d.Points, Point{Time: t, Value: v})
	}

	// advance each boundary past the base time.
	for _, b := range boundaries {
		for b.line.Until() <= since {
			if err := b.walk(); err != nil {
				return nil, err
			}
		}
	}
	// check initial overflow: the gauge may already be pressed against a
	// boundary at its base time.
	for _, b := range boundaries {
		if bound != nil {
			break
		}
		guess := b.line.Guess(since)
		if b.cmp(guess, value) {
			bound, overlapped = b, false
		}
	}
	emit(since, value, bound == nil)

	// the sweep walks events in time order; sort a copy so the caller's
	// slice is left untouched and events may be passed in any order.
	sorted := make([]momentumEvent, len(events), len(events)+1)
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].time < sorted[j].time })
	events = append(sorted, momentumEvent{time: math.Inf(1), kind: eventNone})

	for _, ev := range events {
		until := math.Max(ev.time, baseTime)
		again := true
		var walked []*Boundary

		for since < until {
			if again {
				again = false
				walked = boundaries[:]
			} else {
				allCaughtUp := true
				for _, b := range boundaries {
					if b.line.Until() < until {
						allCaughtUp = false
					}
				}
				if allCaughtUp {
					break
				}
				next := boundaries[0]
				if boundaries[1].line.Until() < next.line.Until() {
					next = boundaries[1]
				}
				if err := next.walk(); err != nil {
					return nil, err
				}
				walked = []*Boundary{next}
			}

			switch {
			case bound == nil:
				velocity = sum(velocities)
			case overlapped:
				velocity = bound.best(sum(velocities), bound.line.Velocity())
			default:
				velocity = sumWhere(velocities, func(v float64) bool { return bound.cmp(v, 0) })
			}

			if overlapped && bound.cmp(velocity, bound.line.Velocity()) {
				bound, overlapped = nil, false
				again = true
				continue
			}

			line := NewRay(since, until, value, velocity)

			if overlapped {
				boundUntil := math.Min(bound.line.Until(), until)
				if boundUntil == math.Inf(1) {
					break
				}
				since, value = boundUntil, bound.line.Guess(boundUntil)
				emit(since, value, true)
				continue
			}

			found := false
			for _, b := range walked {
				t, v, ok := Intersect(line, b.line)
				if !ok || t == since {
					continue
				}
				again = true
				bound, overlapped = b, true
				since, value = t, v
				value = b.best(value, b.line.Guess(since))
				emit(since, value, true)
				found = true
				break
			}
			if found {
				continue
			}

			for _, b := range walked {
				boundUntil := math.Min(b.line.Until(), until)
				if boundUntil == math.Inf(1) || boundUntil < since {
					continue
				}
				boundaryValue, err := b.line.Get(boundUntil)
				if err != nil {
					continue
				}
				if b.cmpEq(line.Guess(boundUntil), boundaryValue) {
					continue
				}
				bound, overlapped = b, true
				since, value = boundUntil, boundaryValue
				emit(since, value, true)
				found = true
				break
			}
			if found {
				continue
			}
		}

		if ev.time == math.Inf(1) {
			break
		}

		value += velocity * (until - since)
		emit(until, value, bound == nil || overlapped)

		switch ev.kind {
		case eventAdd:
			velocities = append(velocities, ev.momentum.Velocity)
		case eventRemove:
			velocities = removeFirst(velocities, ev.momentum.Velocity)
		}
		since = until
	}

	if len(d.Points) == 0 {
		d.Points = append(d.Points, Point{Time: baseTime, Value: baseValue})
	}

	return d, nil
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}

	return s
}

func sumWhere(xs []float64, pred func(float64) bool) float64 {
	var s float64
	for _, x := range xs {
		if pred(x) {
			s += x
		}
	}

	return s
}

// removeFirst removes the first occurrence of v from xs and returns the
// resulting slice, leaving xs untouched if v is absent (it may have been
// filtered out already, e.g. by forget-past).
func removeFirst(xs []float64, v float64) []float64 {
	for i, x := range xs {
		if x == v {
			return append(xs[:i:i], xs[i+1:]...)
		}
	}

	return xs
}

// At returns the value at t by locating the enclosing segment of the
// determination and interpolating linearly. ok is false if t precedes the
// determination's first point.
func (d *Determination) At(t float64) (value float64, ok bool) {
	points := d.Points
	if t < points[0].Time {
		return 0, false
	}
	if t >= points[len(points)-1].Time {
		return points[len(points)-1].Value, true
	}

	i := d.segmentIndex(t)
	p1, p2 := points[i], points[i+1]
	if p1.Time == p2.Time {
		return p2.Value, true
	}
	rate := (t - p1.Time) / (p2.Time - p1.Time)

	return p1.Value + rate*(p2.Value-p1.Value), true
}

// VelocityAt returns the slope of the segment containing t, or 0 if t is
// at or beyond the last determined point.
func (d *Determination) VelocityAt(t float64) float64 {
	points := d.Points
	if t < points[0].Time || t >= points[len(points)-1].Time {
		return 0
	}

	i := d.segmentIndex(t)
	p1, p2 := points[i], points[i+1]
	if p1.Time == p2.Time {
		return 0
	}

	return (p2.Value - p1.Value) / (p2.Time - p1.Time)
}

// segmentIndex returns i such that Points[i].Time <= t < Points[i+1].Time,
// via binary search over the strictly increasing times.
func (d *Determination) segmentIndex(t float64) int {
	points := d.Points
	lo, hi := 0, len(points)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if points[mid].Time <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return lo
}

// Goal is the value of the last determined point: where the trajectory
// settles if nothing further changes.
func (d *Determination) Goal() float64 {
	return d.Points[len(d.Points)-1].Value
}

// When returns the (after+1)-th time (0-indexed) at which the
// determination crosses value, interpolating linearly within each
// segment. Both segment endpoints count, but a crossing exactly on a
// shared break-point is only counted once (the left segment's "later"
// side is excluded to avoid double-counting). A single-point determination
// reaches value only at that point, and only if its value equals value.
func (d *Determination) When(value float64, after int) (float64, error) {
	points := d.Points
	if len(points) == 1 {
		if points[0].Value == value && after == 0 {
			return points[0].Time, nil
		}

		return 0, ErrUnreachable
	}
	count := 0
	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		includeRight := i == len(points)-2
		t, ok := crossing(p1, p2, value, includeRight)
		if !ok {
			continue
		}
		if count == after {
			return t, nil
		}
		count++
	}

	return 0, ErrUnreachable
}

// crossing returns the time within [p1.Time, p2.Time) (or [p1.Time,
// p2.Time] when includeRight is set, for the final segment) at which the
// segment from p1 to p2 equals value. The right endpoint is excluded for
// every interior segment since it is covered as the next segment's left
// endpoint; excluding it everywhere but the last segment is what keeps a
// crossing exactly on a shared break-point from being counted twice.
func crossing(p1, p2 Point, value float64, includeRight bool) (float64, bool) {
	lo, hi := math.Min(p1.Value, p2.Value), math.Max(p1.Value, p2.Value)
	if value < lo || value > hi {
		return 0, false
	}
	if p1.Value == p2.Value {
		if p1.Value == value {
			return p1.Time, true
		}

		return 0, false
	}
	rate := (value - p1.Value) / (p2.Value - p1.Value)
	t := p1.Time + rate*(p2.Time-p1.Time)
	if t == p2.Time && !includeRight {
		return 0, false
	}

	return t, true
}
