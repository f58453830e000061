// Package history keeps a short in-memory trend per series for the live
// display. Nothing is persisted; the oldest points fall off the window.
package history

import (
	"time"

	"github.com/gammazero/deque"

	"github.com/luki/irtemp/internal/sensor"
)

// Series names a trended value.
type Series string

const (
	Corrected Series = "corrected"
	Object    Series = "object"
	Ambient   Series = "ambient"
	Dust      Series = "dust"
)

// Point is a single data point in a trend.
type Point struct {
	Value float64
	Time  time.Time
}

type extreme struct {
	seq uint64
	v   float64
}

// Trend is a sliding window over the most recent points of one series.
// Avg, Min and Max describe the points still held and cost O(1).
type Trend struct {
	capacity int
	points   deque.Deque[Point]
	next     uint64 // sequence number of the next push
	sum      float64

	// Monotonic candidates: lows increasing, highs decreasing from the front.
	lows  deque.Deque[extreme]
	highs deque.Deque[extreme]
}

// NewTrend returns a trend holding at most capacity points.
func NewTrend(capacity int) *Trend {
	if capacity < 1 {
		capacity = 1
	}
	return &Trend{capacity: capacity}
}

// Push appends v, evicting the oldest point when the window is full.
func (t *Trend) Push(v float64, at time.Time) {
	if t.points.Len() == t.capacity {
		old := t.points.PopFront()
		t.sum -= old.Value
		gone := t.next - uint64(t.capacity)
		if t.lows.Len() > 0 && t.lows.Front().seq == gone {
			t.lows.PopFront()
		}
		if t.highs.Len() > 0 && t.highs.Front().seq == gone {
			t.highs.PopFront()
		}
	}

	t.points.PushBack(Point{Value: v, Time: at})
	t.sum += v

	for t.lows.Len() > 0 && t.lows.Back().v >= v {
		t.lows.PopBack()
	}
	t.lows.PushBack(extreme{seq: t.next, v: v})
	for t.highs.Len() > 0 && t.highs.Back().v <= v {
		t.highs.PopBack()
	}
	t.highs.PushBack(extreme{seq: t.next, v: v})

	t.next++
}

func (t *Trend) Len() int { return t.points.Len() }
func (t *Trend) Cap() int { return t.capacity }

// Last returns the most recent value, or 0 if empty.
func (t *Trend) Last() float64 {
	if t.points.Len() == 0 {
		return 0
	}
	return t.points.Back().Value
}

// Avg returns the mean of the held points.
func (t *Trend) Avg() float64 {
	if t.points.Len() == 0 {
		return 0
	}
	return t.sum / float64(t.points.Len())
}

func (t *Trend) Min() float64 {
	if t.lows.Len() == 0 {
		return 0
	}
	return t.lows.Front().v
}

func (t *Trend) Max() float64 {
	if t.highs.Len() == 0 {
		return 0
	}
	return t.highs.Front().v
}

// LastN returns a copy of the last n points, oldest first.
func (t *Trend) LastN(n int) []Point {
	if n <= 0 || t.points.Len() == 0 {
		return nil
	}
	if n > t.points.Len() {
		n = t.points.Len()
	}
	start := t.points.Len() - n
	out := make([]Point, n)
	for i := range out {
		out[i] = t.points.At(start + i)
	}
	return out
}

// Store holds one Trend per series.
type Store struct {
	trends   map[Series]*Trend
	capacity int
}

// NewStore creates a store with the given per-series capacity.
func NewStore(capacity int) *Store {
	return &Store{
		trends:   make(map[Series]*Trend),
		capacity: capacity,
	}
}

// Record adds a point to a series.
func (s *Store) Record(series Series, v float64, at time.Time) {
	tr, ok := s.trends[series]
	if !ok {
		tr = NewTrend(s.capacity)
		s.trends[series] = tr
	}
	tr.Push(v, at)
}

// RecordReading trends every value in rd. Dust is only recorded when the
// reading carries a particulate sample, so the series stays absent on
// devices without the sensor.
func (s *Store) RecordReading(rd sensor.Reading) {
	s.Record(Corrected, rd.CorrectedC, rd.Time)
	s.Record(Object, rd.ObjectC, rd.Time)
	s.Record(Ambient, rd.AmbientC, rd.Time)
	if rd.HasDust {
		s.Record(Dust, rd.DustDensity, rd.Time)
	}
}

// Get returns the trend for a series, or nil.
func (s *Store) Get(series Series) *Trend {
	return s.trends[series]
}
