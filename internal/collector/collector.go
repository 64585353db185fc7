package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"SessionScreener/internal/anchor"
	"SessionScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	mu     sync.Mutex
	Bars   map[string][]model.Bar
	Errors map[string]error
	calls  map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHourlyBars(_ context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++

	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	src := m.Bars[symbol]
	bars := clip(append([]model.Bar(nil), src...), from, to)
	if len(bars) == 0 {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
	}
	return bars, nil
}

// Calls returns how many times symbol was fetched.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// Collector fetches the lookback window of hourly bars for a screening date.
type Collector struct {
	Fetcher  Fetcher
	Location *time.Location
}

// NewCollector creates a new Collector. A nil loc means UTC.
func NewCollector(fetcher Fetcher, loc *time.Location) *Collector {
	if loc == nil {
		loc = time.UTC
	}
	return &Collector{Fetcher: fetcher, Location: loc}
}

// Window returns the local range [D-7 00:00, end of D] that covers the
// anchor lookback and the screening session.
func (c *Collector) Window(date model.Date) (from, to time.Time) {
	return date.AddDays(-anchor.LookbackDays).Start(c.Location), date.End(c.Location)
}

// Collect fetches the window's bars for symbol.
func (c *Collector) Collect(ctx context.Context, symbol string, date model.Date) ([]model.Bar, error) {
	from, to := c.Window(date)
	bars, err := c.Fetcher.FetchHourlyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch %s via %s: %w", symbol, c.Fetcher.Name(), err)
	}
	log.Debug().
		Str("ticker", symbol).
		Str("provider", c.Fetcher.Name()).
		Int("bars", len(bars)).
		Time("from", from).
		Time("to", to).
		Msg("bars fetched")
	return bars, nil
}
