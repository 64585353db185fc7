// Package barindex organizes a raw hourly bar series into day and hour buckets.
package barindex

import (
	"sort"
	"time"

	"SessionScreener/internal/model"
)

// day holds the bars of one local calendar date.
type day struct {
	bars  []model.Bar       // chronological
	hours map[int]model.Bar // latest bar per hour bucket
}

// Index is an immutable day->hour lookup over one ticker's bars.
type Index struct {
	loc  *time.Location
	days map[model.Date]*day
	n    int
}

// New builds an Index. Timestamps are converted to loc before bucketing;
// bars with a zero timestamp are dropped.
func New(bars []model.Bar, loc *time.Location) *Index {
	if loc == nil {
		loc = time.UTC
	}
	normalized := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Time.IsZero() {
			continue
		}
		b.Time = b.Time.In(loc)
		normalized = append(normalized, b)
	}
	// Stable keeps input order for equal timestamps so the later duplicate wins.
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Time.Before(normalized[j].Time)
	})

	idx := &Index{loc: loc, days: make(map[model.Date]*day), n: len(normalized)}
	for _, b := range normalized {
		key := model.DateOf(b.Time, loc)
		d, ok := idx.days[key]
		if !ok {
			d = &day{hours: make(map[int]model.Bar)}
			idx.days[key] = d
		}
		d.bars = append(d.bars, b)
		d.hours[b.Time.Hour()] = b
	}
	return idx
}

// Location returns the market zone the index was built in.
func (x *Index) Location() *time.Location { return x.loc }

// Len returns the number of indexed bars.
func (x *Index) Len() int { return x.n }

// Days returns all trading days present, ascending.
func (x *Index) Days() []model.Date {
	out := make([]model.Date, 0, len(x.days))
	for d := range x.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// BarsOnDay returns the bars dated d in chronological order.
func (x *Index) BarsOnDay(d model.Date) []model.Bar {
	dd, ok := x.days[d]
	if !ok {
		return nil
	}
	out := make([]model.Bar, len(dd.bars))
	copy(out, dd.bars)
	return out
}

// HasDay reports whether any bar falls on d.
func (x *Index) HasDay(d model.Date) bool {
	_, ok := x.days[d]
	return ok
}

// BarAt returns the latest bar within [hour:00, hour:59] on d.
func (x *Index) BarAt(d model.Date, hour int) (model.Bar, bool) {
	dd, ok := x.days[d]
	if !ok {
		return model.Bar{}, false
	}
	b, ok := dd.hours[hour]
	return b, ok
}

// FirstHour returns the earliest hour bucket in [from, to] holding a bar on d.
func (x *Index) FirstHour(d model.Date, from, to int) (int, bool) {
	for h := from; h <= to; h++ {
		if _, ok := x.BarAt(d, h); ok {
			return h, true
		}
	}
	return 0, false
}
