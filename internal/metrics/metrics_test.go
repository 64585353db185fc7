package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SessionScreener/internal/model"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRegistry_ObserveRun(t *testing.T) {
	r := New()
	start := time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)
	r.ObserveRun(&model.Run{
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Active:     4,
		Outcomes: []model.TickerOutcome{
			{Ticker: "AAA", Status: model.OutcomeMatched},
			{Ticker: "BBB", Status: model.OutcomeSkipped},
			{Ticker: "CCC", Status: model.OutcomeSkipped},
		},
	})

	out := scrape(t, r)
	assert.Contains(t, out, "screener_runs_total 1")
	assert.Contains(t, out, "screener_active_conditions 4")
	assert.Contains(t, out, `screener_ticker_outcomes_total{status="SKIPPED"} 2`)
	assert.Contains(t, out, `screener_ticker_outcomes_total{status="MATCHED"} 1`)
	assert.Contains(t, out, "screener_run_duration_seconds_sum 3")
}

func TestRegistry_Counters(t *testing.T) {
	r := New()
	r.CacheHit("memory")
	r.CacheHit("memory")
	r.CacheMiss("redis")
	r.ObserveFetch("yahoo", errors.New("boom"), time.Second)

	out := scrape(t, r)
	assert.Contains(t, out, `screener_cache_hits_total{backend="memory"} 2`)
	assert.Contains(t, out, `screener_cache_misses_total{backend="redis"} 1`)
	assert.Contains(t, out, `screener_fetch_duration_seconds_count{provider="yahoo",result="error"} 1`)
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.CacheHit("memory")
		r.CacheMiss("memory")
		r.ObserveFetch("mock", nil, time.Millisecond)
		r.ObserveRun(&model.Run{})
	})
}
