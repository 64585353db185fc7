// Package anchor locates cross-session reference values by scanning backward
// over calendar days that may be weekends or holidays.
package anchor

import (
	"github.com/rs/zerolog/log"

	"SessionScreener/internal/barindex"
	"SessionScreener/internal/model"
)

const (
	// LookbackDays bounds every backward day scan.
	LookbackDays = 7
	// AnchorHour is the hour bucket whose Open is the anchor.
	AnchorHour = 16
)

// Anchor is the resolved reference value and the day it came from.
type Anchor struct {
	Value float64
	Day   model.Date
	Bar   model.Bar
}

// Resolve returns the Open of the 16h bar on the most recent day before
// screeningDate that has one. The first hit scanning backward wins.
func Resolve(idx *barindex.Index, screeningDate model.Date) (Anchor, bool) {
	cursor := screeningDate.AddDays(-1)
	for i := 0; i < LookbackDays; i++ {
		if idx.HasDay(cursor) {
			if b, ok := idx.BarAt(cursor, AnchorHour); ok {
				log.Debug().
					Str("day", cursor.String()).
					Str("bar", b.Time.Format("15:04")).
					Float64("open", b.Open).
					Msg("anchor bar found")
				return Anchor{Value: b.Open, Day: cursor, Bar: b}, true
			}
		}
		cursor = cursor.AddDays(-1)
	}
	log.Debug().
		Str("date", screeningDate.String()).
		Int("lookback_days", LookbackDays).
		Msg("no 16h bar in lookback window")
	return Anchor{}, false
}

// PriorSession returns the most recent day before screeningDate that has any
// bars, scanning at most LookbackDays back.
func PriorSession(idx *barindex.Index, screeningDate model.Date) (model.Date, bool) {
	cursor := screeningDate.AddDays(-1)
	for i := 0; i < LookbackDays; i++ {
		if idx.HasDay(cursor) {
			return cursor, true
		}
		cursor = cursor.AddDays(-1)
	}
	return model.Date{}, false
}
