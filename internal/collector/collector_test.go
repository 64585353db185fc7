package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SessionScreener/internal/metrics"
	"SessionScreener/internal/model"
)

func hourly(start time.Time, n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = model.Bar{Time: start.Add(time.Duration(i) * time.Hour), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1000}
	}
	return bars
}

func TestYahooFetcher_ParsesChart(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BRK-B", r.URL.Path)
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1741640400,1741636800,1741644000],
			"indicators":{"quote":[{"open":[11,10,null],"high":[12,11,null],"low":[10,9,null],"close":[11.5,10.5,null],"volume":[5,4,null]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	from := time.Unix(1741600000, 0)
	to := time.Unix(1741700000, 0)

	bars, err := f.FetchHourlyBars(context.Background(), "BRK.B", from, to)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 10.0, bars[0].Open)
	assert.Equal(t, 11.5, bars[1].Close)
	assert.Contains(t, gotQuery, "interval=1h")
	assert.Contains(t, gotQuery, "includePrePost=true")
	assert.Contains(t, gotQuery, "period1=1741600000")
}

func TestYahooFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/EMPTY":
			fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
		case "/v8/finance/chart/BAD":
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		default:
			http.Error(w, "down", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	ctx := context.Background()

	_, err := f.FetchHourlyBars(ctx, "EMPTY", time.Now(), time.Now())
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = f.FetchHourlyBars(ctx, "BAD", time.Now(), time.Now())
	assert.ErrorContains(t, err, "No data found")

	_, err = f.FetchHourlyBars(ctx, "DOWN", time.Now(), time.Now())
	assert.ErrorContains(t, err, "status 502")
}

func TestRESTFetcher_SendsAuthAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bars/hourly", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "AAA", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, `[{"timestamp":1741640400,"open":2,"high":3,"low":1,"close":2},{"timestamp":1741636800,"open":1,"high":2,"low":0.5,"close":1}]`)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "k", "")
	bars, err := f.FetchHourlyBars(context.Background(), "AAA", time.Unix(0, 0), time.Now())
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.0, bars[0].Open)
	assert.Equal(t, time.UTC, bars[0].Time.Location())
}

func TestCollector_WindowCoversLookback(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	c := NewCollector(&MockFetcher{}, loc)
	from, to := c.Window(model.NewDate(2025, 3, 10))
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, loc), from)
	assert.Equal(t, 2025, to.Year())
	assert.Equal(t, 10, to.Day())
	assert.Equal(t, 23, to.Hour())
}

func TestCollector_CollectClipsAndWraps(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock := &MockFetcher{
		Bars:   map[string][]model.Bar{"AAA": hourly(start, 24*14)},
		Errors: map[string]error{"BAD": errors.New("boom")},
	}
	c := NewCollector(mock, time.UTC)

	bars, err := c.Collect(context.Background(), "AAA", model.NewDate(2025, 3, 10))
	require.NoError(t, err)
	assert.Len(t, bars, 24*8)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), bars[0].Time)

	_, err = c.Collect(context.Background(), "BAD", model.NewDate(2025, 3, 10))
	assert.ErrorContains(t, err, "via mock")

	_, err = c.Collect(context.Background(), "NONE", model.NewDate(2025, 3, 10))
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestGuard_BreakerOpensOnFailures(t *testing.T) {
	mock := &MockFetcher{Errors: map[string]error{"AAA": errors.New("timeout")}}
	g := NewGuard(mock, GuardConfig{RatePerSec: 1000, Burst: 10, MaxFailures: 2}, metrics.New())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.FetchHourlyBars(ctx, "AAA", time.Time{}, time.Now())
		assert.ErrorContains(t, err, "timeout")
	}
	_, err := g.FetchHourlyBars(ctx, "AAA", time.Time{}, time.Now())
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 2, mock.Calls("AAA"))
}

func TestGuard_NoDataDoesNotTrip(t *testing.T) {
	mock := &MockFetcher{}
	g := NewGuard(mock, GuardConfig{RatePerSec: 1000, Burst: 10, MaxFailures: 1}, nil)

	for i := 0; i < 3; i++ {
		_, err := g.FetchHourlyBars(context.Background(), "GONE", time.Time{}, time.Now())
		assert.True(t, errors.Is(err, ErrNoData))
	}
	assert.Equal(t, 3, mock.Calls("GONE"))
}

func TestGuard_HonoursContext(t *testing.T) {
	g := NewGuard(&MockFetcher{}, GuardConfig{RatePerSec: 0.001, Burst: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.FetchHourlyBars(ctx, "AAA", time.Time{}, time.Now())
	assert.Error(t, err)
}

func TestCachedFetcher_ServesRepeatRequests(t *testing.T) {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	mock := &MockFetcher{Bars: map[string][]model.Bar{"AAA": hourly(start, 3)}}
	f := NewCachedFetcher(mock, NewMemoryCache(), time.Minute, nil)
	from, to := start, start.Add(24*time.Hour)

	first, err := f.FetchHourlyBars(context.Background(), "AAA", from, to)
	require.NoError(t, err)
	second, err := f.FetchHourlyBars(context.Background(), "AAA", from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, mock.Calls("AAA"))
	require.Len(t, second, len(first))
	assert.True(t, first[2].Time.Equal(second[2].Time))
	assert.Equal(t, first[2].Close, second[2].Close)
}

func TestMemoryCache_Expires(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	c := &memoryCache{m: make(map[string]entry), now: func() time.Time { return now }}
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(v))

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNewCache_SelectsBackend(t *testing.T) {
	assert.Equal(t, "memory", NewCache("").Backend())
	assert.Equal(t, "redis", NewCache("127.0.0.1:6390").Backend())
}

func TestPolygonFetcher_AggToBar(t *testing.T) {
	ts := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	bar := aggToBar(models.Agg{
		Timestamp: models.Millis(ts),
		Open:      10,
		High:      12,
		Low:       9,
		Close:     11,
		Volume:    500,
	})
	assert.Equal(t, model.Bar{Time: ts, Open: 10, High: 12, Low: 9, Close: 11, Volume: 500}, bar)

	assert.Equal(t, "polygon", NewPolygonFetcher("key", "").Name())
	assert.Equal(t, "polygon", NewPolygonFetcher("key", "http://127.0.0.1:3128").Name())
}
