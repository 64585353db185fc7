package barindex

import (
	"math"

	"SessionScreener/internal/model"
)

// RangeHigh returns the max High over the inclusive hour range on d.
// Absent hours are skipped; ok is false when no hour matched.
func (x *Index) RangeHigh(d model.Date, from, to int) (high float64, ok bool) {
	high = math.Inf(-1)
	for h := from; h <= to; h++ {
		b, found := x.BarAt(d, h)
		if !found {
			continue
		}
		ok = true
		if b.High > high {
			high = b.High
		}
	}
	if !ok {
		return 0, false
	}
	return high, true
}

// RangeLow returns the min Low over the inclusive hour range on d.
func (x *Index) RangeLow(d model.Date, from, to int) (low float64, ok bool) {
	low = math.Inf(1)
	for h := from; h <= to; h++ {
		b, found := x.BarAt(d, h)
		if !found {
			continue
		}
		ok = true
		if b.Low < low {
			low = b.Low
		}
	}
	if !ok {
		return 0, false
	}
	return low, true
}

// Span is an hour range on one day, used to aggregate across sessions.
type Span struct {
	Day      model.Date
	From, To int
}

// SpanHigh returns the max High across several day spans.
func (x *Index) SpanHigh(spans ...Span) (float64, bool) {
	var (
		high  = math.Inf(-1)
		found bool
	)
	for _, s := range spans {
		if h, ok := x.RangeHigh(s.Day, s.From, s.To); ok {
			found = true
			high = math.Max(high, h)
		}
	}
	if !found {
		return 0, false
	}
	return high, true
}

// SpanLow returns the min Low across several day spans.
func (x *Index) SpanLow(spans ...Span) (float64, bool) {
	var (
		low   = math.Inf(1)
		found bool
	)
	for _, s := range spans {
		if l, ok := x.RangeLow(s.Day, s.From, s.To); ok {
			found = true
			low = math.Min(low, l)
		}
	}
	if !found {
		return 0, false
	}
	return low, true
}
