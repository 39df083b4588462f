package gauge

import (
	"fmt"
	"math"
	"sort"
	"weak"
)

// Outbound selects how a mutator behaves when the value it would produce
// falls outside the gauge's current range.
type Outbound int

const (
	// ERROR fails the mutator with ErrOutOfRange.
	ERROR Outbound = iota
	// OK allows any resulting value, in or out of range.
	OK
	// ONCE behaves like OK if the gauge is currently in range, and like
	// ERROR if it is currently out of range.
	ONCE
	// CLAMP clamps the resulting value to the violated bound, but never
	// moves the value further toward that bound if it was already past
	// it in the same direction.
	CLAMP
)

// Gauge is a scalar that evolves deterministically between queries,
// driven by time-bounded linear momenta and clamped inside [min, max].
// min and max may be constants or other gauges, forming a DAG of
// hyper-gauges. Gauge is not safe for concurrent use by multiple
// goroutines.
type Gauge struct {
	clock           *Clock
	momentumFactory MomentumFactory

	baseTime    float64
	baseTimeSet bool
	baseValue   float64

	// momenta is kept sorted by Until ascending, so the momenta ForgetPast
	// drops (those ending before its cutoff) always form a prefix.
	momenta []Momentum

	maxLimit, minLimit Limit

	// limitedGauges holds a weak back-reference to every gauge that uses
	// this one as a limit, keyed by identity. A weak reference lets a
	// dependent gauge be collected even though its limit still exists;
	// the limit relation owns no dependent.
	limitedGauges map[weak.Pointer[Gauge]]struct{}

	det *Determination
}

// New constructs a Gauge starting at value, bounded by max and min, with
// its base time taken from the clock (or WithBaseTime) at construction.
// A nil max defaults to +Inf; a nil min defaults to 0.
func New(value float64, max, min Limit, opts ...GaugeOption) *Gauge {
	if max == nil {
		max = Const(math.Inf(1))
	}
	if min == nil {
		min = Const(0)
	}

	g := &Gauge{
		clock:           defaultClock,
		momentumFactory: newMomentum,
		baseValue:       value,
		maxLimit:        Const(math.Inf(1)),
		minLimit:        Const(0),
		limitedGauges:   make(map[weak.Pointer[Gauge]]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if !g.baseTimeSet {
		g.baseTime = g.clock.Now()
	}
	g.setLimit(&g.maxLimit, max)
	g.setLimit(&g.minLimit, min)

	return g
}

func (g *Gauge) now() float64 {
	return g.clock.Now()
}

// resolveAt returns the effective "at" for a variadic ...float64
// parameter: the caller's value if given, otherwise the gauge's clock.
func (g *Gauge) resolveAt(at []float64) float64 {
	if len(at) > 0 {
		return at[0]
	}

	return g.now()
}

// --- limit wiring -----------------------------------------------------

func (g *Gauge) setLimit(slot *Limit, l Limit) {
	if l == nil {
		l = *slot
	}
	*slot = l
	if lg := limitGauge(l); lg != nil {
		lg.limitedGauges[weak.Make(g)] = struct{}{}
	}
}

func (g *Gauge) unlinkLimit(l Limit) {
	if lg := limitGauge(l); lg != nil {
		delete(lg.limitedGauges, weak.Make(g))
	}
}

// liveDependents returns the currently-alive gauges registered in
// limitedGauges, pruning any weak reference whose dependent has been
// collected.
func (g *Gauge) liveDependents() []*Gauge {
	var live []*Gauge
	for wp := range g.limitedGauges {
		if dep := wp.Value(); dep != nil {
			live = append(live, dep)
		} else {
			delete(g.limitedGauges, wp)
		}
	}

	return live
}

// --- invalidation -------------------------------------------------------

// invalidate discards the cached determination and recursively
// invalidates every gauge that uses g as a limit. It does not touch base
// state; use rebase for mutations that also move the anchor point.
func (g *Gauge) invalidate() {
	g.det = nil
	for _, dep := range g.liveDependents() {
		dep.invalidate()
	}
}

// rebase anchors the gauge at (at, value), drops momenta that ended
// before at, invalidates the cache, and propagates the dedicated
// limit-rebase callback to direct dependents.
func (g *Gauge) rebase(at, value float64) {
	g.baseTime = at
	g.baseValue = value
	g.dropMomentaBefore(at)
	g.det = nil
	for _, dep := range g.liveDependents() {
		dep.onLimitRebased(g)
	}
}

// onLimitRebased preserves the range invariant across a link when the
// limit gauge limit has just moved its own base point: g forgets its own
// past at max(now, g.baseTime), rebasing to a value clamped against
// limit's fresh value so limit's history cannot retroactively pull g out
// of its own already-settled range.
func (g *Gauge) onLimitRebased(limit *Gauge) {
	at := math.Max(g.now(), g.baseTime)
	value, ok := g.valueAt(at)
	if !ok {
		value = g.baseValue
	}
	value = g.clampAgainstLimits(at, value)
	_ = g.forgetPast(&value, at)
}

func (g *Gauge) dropMomentaBefore(at float64) {
	kept := g.momenta[:0]
	for _, m := range g.momenta {
		if m.Until < at {
			continue
		}
		kept = append(kept, m)
	}
	g.momenta = kept
}

// --- determination lifecycle --------------------------------------------

// determination lazily (re)builds and caches the gauge's trajectory.
func (g *Gauge) determination() (*Determination, error) {
	if g.det != nil {
		return g.det, nil
	}

	events := g.buildEvents()
	det, err := determine(g.baseTime, g.baseValue, events, g.maxLimit, g.minLimit)
	if err != nil {
		return nil, err
	}
	g.det = det

	return det, nil
}

// buildEvents derives the sorted ADD/REMOVE momentum event stream the
// sweep consumes, per spec: one ADD at Since and one REMOVE at Until for
// every live momentum, ordered by time.
func (g *Gauge) buildEvents() []momentumEvent {
	events := make([]momentumEvent, 0, len(g.momenta)*2)
	for _, m := range g.momenta {
		events = append(events, momentumEvent{time: m.Since, kind: eventAdd, momentum: m})
		events = append(events, momentumEvent{time: m.Until, kind: eventRemove, momentum: m})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].time < events[j].time })

	return events
}

// MomentumEvents returns the gauge's timeline of momentum edges: a
// synthetic start marker at the base time, each live momentum's ADD (at
// Since) and REMOVE (at Until) edge in sorted order, then a synthetic end
// marker at +Inf.
func (g *Gauge) MomentumEvents() []Event {
	built := g.buildEvents()
	events := make([]Event, 0, len(built)+2)
	events = append(events, Event{Time: g.baseTime, Kind: EventNone})
	for _, ev := range built {
		events = append(events, Event{Time: ev.time, Kind: EventKind(ev.kind), Momentum: ev.momentum})
	}
	events = append(events, Event{Time: math.Inf(1), Kind: EventNone})

	return events
}

// --- queries -------------------------------------------------------------

// Get returns the gauge's value at the given time (or now).
func (g *Gauge) Get(at ...float64) (float64, error) {
	t := g.resolveAt(at)
	det, err := g.determination()
	if err != nil {
		return 0, err
	}
	value, _ := det.At(t)

	if g.isInRangeAt(det, t) {
		value = g.clampAgainstLimits(t, value)
	}

	return value, nil
}

// Velocity returns the slope of the gauge's trajectory at the given time
// (or now).
func (g *Gauge) Velocity(at ...float64) (float64, error) {
	t := g.resolveAt(at)
	det, err := g.determination()
	if err != nil {
		return 0, err
	}

	return det.VelocityAt(t), nil
}

// Goal returns the value of the gauge's last determined point: where the
// trajectory settles if nothing further changes it.
func (g *Gauge) Goal() (float64, error) {
	det, err := g.determination()
	if err != nil {
		return 0, err
	}

	return det.Goal(), nil
}

// InRange reports whether the gauge has been continuously inside its
// range since some point at or before at (or now).
func (g *Gauge) InRange(at ...float64) (bool, error) {
	t := g.resolveAt(at)
	det, err := g.determination()
	if err != nil {
		return false, err
	}

	return g.isInRangeAt(det, t), nil
}

func (g *Gauge) isInRangeAt(det *Determination, t float64) bool {
	return det.InRangeSince != nil && *det.InRangeSince <= t
}

// valueAt is Get without the final clamp, used internally where the
// pre-clamp value is wanted (e.g. before clampAgainstLimits itself runs).
func (g *Gauge) valueAt(t float64) (float64, bool) {
	det, err := g.determination()
	if err != nil {
		return 0, false
	}

	return det.At(t)
}

// When returns the (after+1)-th time the gauge's value equals value.
func (g *Gauge) When(value float64, after ...int) (float64, error) {
	k := 0
	if len(after) > 0 {
		k = after[0]
	}
	det, err := g.determination()
	if err != nil {
		return 0, err
	}

	return det.When(value, k)
}

// Whenever returns every time at or after the gauge's base that it
// crosses value, in order.
func (g *Gauge) Whenever(value float64) ([]float64, error) {
	det, err := g.determination()
	if err != nil {
		return nil, err
	}
	var times []float64
	for i := 0; ; i++ {
		t, err := det.When(value, i)
		if err != nil {
			break
		}
		times = append(times, t)
	}

	return times, nil
}

// --- range evaluation ------------------------------------------------

// maxAt / minAt evaluate a Limit at time t: either the constant, or the
// limit gauge's own (clamped) value at t.
func (g *Gauge) maxAt(t float64) (float64, error) {
	return evalLimit(g.maxLimit, t)
}

func (g *Gauge) minAt(t float64) (float64, error) {
	return evalLimit(g.minLimit, t)
}

func evalLimit(l Limit, t float64) (float64, error) {
	if c, ok := l.(constLimit); ok {
		return float64(c), nil
	}
	lg := l.(*gaugeLimit).gauge

	return lg.Get(t)
}

// clampAgainstLimits clamps value into [minAt(t), maxAt(t)], the final
// defense against floating-point drift described in the design notes.
func (g *Gauge) clampAgainstLimits(t, value float64) float64 {
	if max, err := g.maxAt(t); err == nil {
		value = math.Min(value, max)
	}
	if min, err := g.minAt(t); err == nil {
		value = math.Max(value, min)
	}

	return value
}

// --- mutators ----------------------------------------------------------

// Set sets the gauge's value at the given time (or now).
func (g *Gauge) Set(value float64, outbound Outbound, at ...float64) (float64, error) {
	t := g.resolveAt(at)
	current, err := g.Get(t)
	if err != nil {
		return 0, err
	}

	return g.incr(value-current, outbound, t)
}

// Incr increases the gauge's value by delta at the given time (or now).
func (g *Gauge) Incr(delta float64, outbound Outbound, at ...float64) (float64, error) {
	return g.incr(delta, outbound, g.resolveAt(at))
}

// Decr decreases the gauge's value by delta at the given time (or now).
func (g *Gauge) Decr(delta float64, outbound Outbound, at ...float64) (float64, error) {
	return g.incr(-delta, outbound, g.resolveAt(at))
}

func (g *Gauge) incr(delta float64, outbound Outbound, at float64) (float64, error) {
	current, err := g.Get(at)
	if err != nil {
		return 0, err
	}
	next := current + delta

	max, _ := g.maxAt(at)
	min, _ := g.minAt(at)
	inRange, err := g.InRange(at)
	if err != nil {
		return 0, err
	}
	outOfRange := next > max || next < min

	switch outbound {
	case ERROR:
		if outOfRange {
			return 0, wrapf("Incr", ErrOutOfRange)
		}
	case ONCE:
		if outOfRange && !inRange {
			return 0, wrapf("Incr", ErrOutOfRange)
		}
	case CLAMP:
		next = clampOutbound(current, next, max, min)
	case OK:
		// no adjustment.
	}

	if err := g.forgetPast(&next, at); err != nil {
		return 0, err
	}

	return next, nil
}

// clampOutbound implements CLAMP semantics: clamp next into [min, max],
// but never move it further toward a bound it has already overshot in
// the same direction.
func clampOutbound(current, next, max, min float64) float64 {
	if next > max {
		if current > max {
			return current
		}

		return max
	}
	if next < min {
		if current < min {
			return current
		}

		return min
	}

	return next
}

// Clamp forces the gauge's current value into its current range (as if
// mutated with Outbound OK, landing exactly on the nearer violated
// bound when out of range).
func (g *Gauge) Clamp(at ...float64) (float64, error) {
	t := g.resolveAt(at)
	current, err := g.Get(t)
	if err != nil {
		return 0, err
	}
	max, _ := g.maxAt(t)
	min, _ := g.minAt(t)
	clamped := math.Min(math.Max(current, min), max)

	return g.incr(clamped-current, OK, t)
}

// AddMomentum constructs a Momentum via the gauge's factory and adds it.
func (g *Gauge) AddMomentum(velocity, since, until float64) (Momentum, error) {
	m, err := g.momentumFactory(velocity, since, until)
	if err != nil {
		return Momentum{}, wrapf("AddMomentum", err)
	}

	return m, g.AddMomentumValue(m)
}

// AddMomentumValue adds a pre-built Momentum value (e.g. one carrying
// auxiliary fields from a custom MomentumFactory).
func (g *Gauge) AddMomentumValue(m Momentum) error {
	g.momenta = insertSorted(g.momenta, m)
	g.invalidate()

	return nil
}

// RemoveMomentum removes a momentum previously returned by AddMomentum.
// It fails with ErrMomentumNotPresent if m is not a live member of the
// gauge's momenta set.
func (g *Gauge) RemoveMomentum(m Momentum) error {
	for i, x := range g.momenta {
		if x == m {
			g.momenta = append(g.momenta[:i:i], g.momenta[i+1:]...)
			g.invalidate()

			return nil
		}
	}

	return wrapf("RemoveMomentum", ErrMomentumNotPresent)
}

func insertSorted(momenta []Momentum, m Momentum) []Momentum {
	i := sort.Search(len(momenta), func(i int) bool { return momenta[i].Until >= m.Until })
	momenta = append(momenta, Momentum{})
	copy(momenta[i+1:], momenta[i:])
	momenta[i] = m

	return momenta
}

// SetMax swaps the gauge's ceiling. The new limit's own history cannot
// retroactively change this gauge's past: ForgetPast is applied at
// min(at, newLimit.BaseTime()) when the new limit is itself a gauge.
func (g *Gauge) SetMax(max Limit, at ...float64) error {
	return g.setRangeSide(&g.maxLimit, max, g.resolveAt(at))
}

// SetMin swaps the gauge's floor, with the same retroactivity guard as
// SetMax.
func (g *Gauge) SetMin(min Limit, at ...float64) error {
	return g.setRangeSide(&g.minLimit, min, g.resolveAt(at))
}

// SetRange swaps both bounds atomically with respect to the forget-past
// cutoff (a single ForgetPast call covers both swaps).
func (g *Gauge) SetRange(max, min Limit, at ...float64) error {
	t := g.resolveAt(at)
	cutoff := t
	g.unlinkLimit(g.maxLimit)
	g.maxLimit = max
	if lg := limitGauge(max); lg != nil {
		lg.limitedGauges[weak.Make(g)] = struct{}{}
		cutoff = math.Min(cutoff, lg.baseTime)
	}
	g.unlinkLimit(g.minLimit)
	g.minLimit = min
	if lg := limitGauge(min); lg != nil {
		lg.limitedGauges[weak.Make(g)] = struct{}{}
		cutoff = math.Min(cutoff, lg.baseTime)
	}

	// the swapped limits must stop shadowing the old cached determination
	// before forgetPast resolves its rebase value off of a Get.
	g.invalidate()

	return g.forgetPast(nil, cutoff)
}

func (g *Gauge) setRangeSide(slot *Limit, l Limit, at float64) error {
	cutoff := at
	g.unlinkLimit(*slot)
	*slot = l
	if lg := limitGauge(l); lg != nil {
		lg.limitedGauges[weak.Make(g)] = struct{}{}
		cutoff = math.Min(cutoff, lg.baseTime)
	}

	// same reasoning as SetRange: invalidate before forgetPast reads through
	// g.Get, or a warm cache built under the old limit leaks into the rebase.
	g.invalidate()

	return g.forgetPast(nil, cutoff)
}

// ClearMomenta drops every momentum and rebases at (at, value), where a
// nil value means "the gauge's current value at at".
func (g *Gauge) ClearMomenta(value *float64, at ...float64) error {
	t := g.resolveAt(at)
	v, err := g.resolveRebaseValue(value, t)
	if err != nil {
		return err
	}
	g.momenta = nil
	g.rebase(t, v)

	return nil
}

// ForgetPast drops momenta that ended before at and rebases there, where
// a nil value means "the gauge's current value at at". It fails with
// ErrPastRebase if at precedes the gauge's own base time.
func (g *Gauge) ForgetPast(value *float64, at ...float64) error {
	return g.forgetPast(value, g.resolveAt(at))
}

func (g *Gauge) forgetPast(value *float64, at float64) error {
	if at < g.baseTime {
		return wrapf("ForgetPast", ErrPastRebase)
	}
	v, err := g.resolveRebaseValue(value, at)
	if err != nil {
		return err
	}
	g.rebase(at, v)

	return nil
}

func (g *Gauge) resolveRebaseValue(value *float64, at float64) (float64, error) {
	if value != nil {
		return *value, nil
	}

	return g.Get(at)
}

// BaseTime returns the gauge's current anchor time.
func (g *Gauge) BaseTime() float64 { return g.baseTime }

// BaseValue returns the gauge's current anchor value.
func (g *Gauge) BaseValue() float64 { return g.baseValue }

// Momenta returns a copy of the gauge's currently live momenta, sorted
// by Until.
func (g *Gauge) Momenta() []Momentum {
	out := make([]Momentum, len(g.momenta))
	copy(out, g.momenta)

	return out
}

// String implements fmt.Stringer, reporting the gauge's value at now
// against its current maximum, in the spirit of the reference
// implementation's __repr__.
func (g *Gauge) String() string {
	t := g.now()
	value, err := g.Get(t)
	if err != nil {
		return "<Gauge ?>"
	}
	max, err := g.maxAt(t)
	if err != nil {
		return "<Gauge ?>"
	}

	return formatGauge(value, max)
}

// formatGauge renders a gauge's value against its ceiling, omitting the
// ceiling when it is unbounded.
func formatGauge(value, max float64) string {
	if math.IsInf(max, 1) {
		return fmt.Sprintf("<Gauge %g>", value)
	}

	return fmt.Sprintf("<Gauge %g/%g>", value, max)
}
