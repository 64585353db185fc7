package strategy

import (
	"SessionScreener/internal/barindex"
	"SessionScreener/internal/model"
)

// Session hours scanned for the screening day.
const (
	sessionOpen  = 4
	sessionClose = 19
)

// value resolves one side of a comparison. ok is false when data is absent.
type value func(in Input) (float64, bool)

// operands resolves both sides of a condition's comparison.
type operands func(in Input) (a, b float64, ok bool)

type field func(model.Bar) float64

func open(b model.Bar) float64    { return b.Open }
func high(b model.Bar) float64    { return b.High }
func low(b model.Bar) float64     { return b.Low }
func closeOf(b model.Bar) float64 { return b.Close }

func pair(a, b value) operands {
	return func(in Input) (float64, float64, bool) {
		x, ok := a(in)
		if !ok {
			return 0, 0, false
		}
		y, ok := b(in)
		if !ok {
			return 0, 0, false
		}
		return x, y, true
	}
}

// sameBar compares two fields of one bar resolved once.
func sameBar(bar func(in Input) (model.Bar, bool), a, b field) operands {
	return func(in Input) (float64, float64, bool) {
		x, ok := bar(in)
		if !ok {
			return 0, 0, false
		}
		return a(x), b(x), true
	}
}

func todayBar(hour int) func(Input) (model.Bar, bool) {
	return func(in Input) (model.Bar, bool) {
		return in.Index.BarAt(in.Day, hour)
	}
}

func priorBar(hour int) func(Input) (model.Bar, bool) {
	return func(in Input) (model.Bar, bool) {
		if !in.HasPrior {
			return model.Bar{}, false
		}
		return in.Index.BarAt(in.Prior, hour)
	}
}

func of(bar func(Input) (model.Bar, bool), f field) value {
	return func(in Input) (float64, bool) {
		b, ok := bar(in)
		if !ok {
			return 0, false
		}
		return f(b), true
	}
}

func today(hour int, f field) value { return of(todayBar(hour), f) }
func prior(hour int, f field) value { return of(priorBar(hour), f) }

func rangeHigh(from, to int) value {
	return func(in Input) (float64, bool) {
		return in.Index.RangeHigh(in.Day, from, to)
	}
}

func rangeLow(from, to int) value {
	return func(in Input) (float64, bool) {
		return in.Index.RangeLow(in.Day, from, to)
	}
}

// crossSpans covers 16h..19h of the prior session through the screening session.
func crossSpans(in Input) []barindex.Span {
	return []barindex.Span{
		{Day: in.Prior, From: 16, To: sessionClose},
		{Day: in.Day, From: sessionOpen, To: sessionClose},
	}
}

func crossHigh(in Input) (float64, bool) {
	if !in.HasPrior {
		return 0, false
	}
	return in.Index.SpanHigh(crossSpans(in)...)
}

func crossLow(in Input) (float64, bool) {
	if !in.HasPrior {
		return 0, false
	}
	return in.Index.SpanLow(crossSpans(in)...)
}

func firstHour(in Input) (float64, bool) {
	h, ok := in.Index.FirstHour(in.Day, sessionOpen, sessionClose)
	return float64(h), ok
}

func constant(k float64) value {
	return func(Input) (float64, bool) { return k, true }
}

func anchorTimes(k float64) value {
	return func(in Input) (float64, bool) {
		if !in.HasAnchor {
			return 0, false
		}
		return k * in.Anchor, true
	}
}

func times(k float64, v value) value {
	return func(in Input) (float64, bool) {
		x, ok := v(in)
		return k * x, ok
	}
}
