package gauge

import "math"

// boundaryKind selects which side of the range a Boundary enforces, and
// therefore which comparator and "best" selector it uses: a ceiling
// compares with strict "less than" and its best-of-two is the minimum; a
// floor compares with strict "greater than" and its best-of-two is the
// maximum.
type boundaryKind int

const (
	ceiling boundaryKind = iota
	floor
)

// cmp mirrors the reference implementation's operator.lt (ceiling) and
// operator.gt (floor) boundary comparators.
func (k boundaryKind) cmp(a, b float64) bool {
	if k == ceiling {
		return a < b
	}

	return a > b
}

// cmpInv is strict on the safe side: the opposite of cmp, excluding ties.
func (k boundaryKind) cmpInv(a, b float64) bool {
	return a != b && !k.cmp(a, b)
}

// cmpEq allows equality in addition to the safe side.
func (k boundaryKind) cmpEq(a, b float64) bool {
	return a == b || k.cmp(a, b)
}

// best returns the safer of two values: min for a ceiling, max for a floor.
func (k boundaryKind) best(a, b float64) float64 {
	if k == ceiling {
		return math.Min(a, b)
	}

	return math.Max(a, b)
}

// lineIterator yields the successive lines describing a boundary. It is
// the tagged-variant boundary source of the design notes: either a single
// infinite Horizon (a constant limit) or a pre-horizon, then a nested
// gauge's determination segments, then a post-horizon (a gauge limit).
type lineIterator interface {
	// next returns the next line, or ok=false once exhausted. A
	// well-formed iterator never exhausts in practice because its last
	// line always extends to +Inf; exhaustion signals a construction bug.
	next() (Line, bool)
}

// constLineIterator yields a single Horizon spanning the whole timeline.
type constLineIterator struct {
	done  bool
	value float64
	since float64
}

func newConstLineIterator(since, value float64) *constLineIterator {
	return &constLineIterator{since: since, value: value}
}

func (it *constLineIterator) next() (Line, bool) {
	if it.done {
		return nil, false
	}
	it.done = true

	return NewHorizon(it.since, math.Inf(1), it.value), true
}

// gaugeLineIterator yields a pre-horizon at the limit gauge's first
// determined value (only when since precedes the first determined point),
// then one Segment per pair of consecutive determined points, then a
// post-horizon at the limit gauge's last determined value.
type gaugeLineIterator struct {
	points []Point
	since  float64
	stage  int // 0: pre-horizon pending, 1: segments then post-horizon, 2: exhausted
	index  int
}

func newGaugeLineIterator(since float64, points []Point) *gaugeLineIterator {
	return &gaugeLineIterator{points: points, since: since}
}

func (it *gaugeLineIterator) next() (Line, bool) {
	first := it.points[0]
	last := it.points[len(it.points)-1]

	switch {
	case it.stage == 0:
		it.stage = 1
		if it.since < first.Time {
			return NewHorizon(it.since, first.Time, first.Value), true
		}

		return it.next()
	case it.index < len(it.points)-1:
		p1, p2 := it.points[it.index], it.points[it.index+1]
		it.index++

		return NewSegment(p1.Time, p2.Time, p1.Value, p2.Value), true
	case it.stage == 1:
		it.stage = 2

		return NewHorizon(last.Time, math.Inf(1), last.Value), true
	default:
		return nil, false
	}
}

// Boundary wraps a lineIterator with the comparator direction that makes
// it a ceiling or a floor, and keeps a cursor on the current line. walk
// advances the cursor to the next line.
type Boundary struct {
	it   lineIterator
	dir  boundaryKind
	line Line
}

func newBoundary(it lineIterator, dir boundaryKind) (*Boundary, error) {
	b := &Boundary{it: it, dir: dir}
	if err := b.walk(); err != nil {
		return nil, err
	}

	return b, nil
}

// walk advances the boundary to its next line.
func (b *Boundary) walk() error {
	line, ok := b.it.next()
	if !ok {
		return errBoundaryExhausted
	}
	b.line = line

	return nil
}

func (b *Boundary) cmp(a, v float64) bool    { return b.dir.cmp(a, v) }
func (b *Boundary) cmpInv(a, v float64) bool { return b.dir.cmpInv(a, v) }
func (b *Boundary) cmpEq(a, v float64) bool  { return b.dir.cmpEq(a, v) }
func (b *Boundary) best(a, v float64) float64 {
	return b.dir.best(a, v)
}
