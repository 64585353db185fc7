package screener

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"SessionScreener/internal/model"
)

// MaxTickers caps an uploaded ticker list.
const MaxTickers = 50

// ErrInvalidRequest marks input-format errors. The run does not start.
var ErrInvalidRequest = errors.New("invalid screening request")

// Request describes one screening run.
type Request struct {
	Date model.Date
	// Tickers is the uploaded list; positions in it become Result.TickerIndex.
	Tickers []string
	// Selected is the subset to screen, in order. Empty means all of Tickers.
	Selected []string
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Targets returns the normalized tickers to screen after validation.
// Duplicates are screened once, in first-seen order.
func (r Request) Targets() ([]string, error) {
	if r.Date.IsZero() {
		return nil, invalid("screening date is required")
	}
	raw := r.Selected
	if len(raw) == 0 {
		raw = r.Tickers
	}
	if len(raw) == 0 {
		return nil, invalid("no tickers selected")
	}
	seen := make(map[string]bool, len(raw))
	targets := make([]string, 0, len(raw))
	for _, t := range raw {
		sym := normalizeSymbol(t)
		if sym == "" {
			return nil, invalid("empty ticker symbol")
		}
		if seen[sym] {
			continue
		}
		seen[sym] = true
		targets = append(targets, sym)
	}
	if len(targets) > MaxTickers {
		return nil, invalid("maximum %d tickers allowed, got %d", MaxTickers, len(targets))
	}
	return targets, nil
}

// position returns the 1-based index of ticker in the uploaded list, 0 if absent.
func (r Request) position(ticker string) int {
	for i, t := range r.Tickers {
		if normalizeSymbol(t) == ticker {
			return i + 1
		}
	}
	return 0
}

// normalizeSymbol drops an exchange prefix such as "NASDAQ:" and upper-cases.
func normalizeSymbol(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseTickerList parses an uploaded list. Entries are separated by commas or
// whitespace; exchange prefixes such as "NASDAQ:" are dropped, symbols are
// upper-cased and de-duplicated keeping the first occurrence.
func ParseTickerList(text string) ([]string, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		f = normalizeSymbol(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, invalid("ticker list is empty")
	}
	if len(out) > MaxTickers {
		return nil, invalid("maximum %d tickers allowed, got %d", MaxTickers, len(out))
	}
	return out, nil
}

// ParseDate parses a YYYY-MM-DD screening date as an input-format error.
func ParseDate(s string) (model.Date, error) {
	d, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return d, nil
}

// closeHour is when the extended session ends; later defaults roll forward.
const closeHour = 20

// DefaultScreeningDate is today in loc, or the next business day once the
// extended session has closed.
func DefaultScreeningDate(now time.Time, loc *time.Location) model.Date {
	local := now.In(loc)
	d := model.DateOf(local, loc)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), closeHour, 0, 0, 0, loc)
	if !local.After(cutoff) {
		return d
	}
	return NextBusinessDay(d)
}

// NextBusinessDay skips weekends. Exchange holidays are not modelled.
func NextBusinessDay(d model.Date) model.Date {
	next := d.AddDays(1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDays(1)
	}
	return next
}
