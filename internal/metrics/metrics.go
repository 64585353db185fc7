// Package metrics exposes Prometheus instrumentation for fetches, caching and runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SessionScreener/internal/model"
)

// Registry holds all screener metrics. A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	FetchDuration *prometheus.HistogramVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec

	RunsTotal        prometheus.Counter
	RunDuration      prometheus.Histogram
	TickerOutcomes   *prometheus.CounterVec
	ActiveConditions prometheus.Gauge
}

// New creates a Registry backed by its own prometheus.Registry.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_fetch_duration_seconds",
				Help:    "Duration of hourly bar fetches in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"provider", "result"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_cache_hits_total",
				Help: "Total number of bar cache hits by backend",
			},
			[]string{"backend"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_cache_misses_total",
				Help: "Total number of bar cache misses by backend",
			},
			[]string{"backend"},
		),
		RunsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "screener_runs_total",
				Help: "Total number of completed screening runs",
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "screener_run_duration_seconds",
				Help:    "Wall time of a screening run in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		TickerOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_ticker_outcomes_total",
				Help: "Tickers processed by outcome status",
			},
			[]string{"status"},
		),
		ActiveConditions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "screener_active_conditions",
				Help: "Number of conditions active in the last run",
			},
		),
	}

	r.reg.MustRegister(
		r.FetchDuration,
		r.CacheHits,
		r.CacheMisses,
		r.RunsTotal,
		r.RunDuration,
		r.TickerOutcomes,
		r.ActiveConditions,
	)
	return r
}

// ObserveFetch records one fetch attempt.
func (r *Registry) ObserveFetch(provider string, err error, d time.Duration) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.FetchDuration.WithLabelValues(provider, result).Observe(d.Seconds())
}

func (r *Registry) CacheHit(backend string) {
	if r == nil {
		return
	}
	r.CacheHits.WithLabelValues(backend).Inc()
}

func (r *Registry) CacheMiss(backend string) {
	if r == nil {
		return
	}
	r.CacheMisses.WithLabelValues(backend).Inc()
}

// ObserveRun records a finished screening run.
func (r *Registry) ObserveRun(run *model.Run) {
	if r == nil || run == nil {
		return
	}
	r.RunsTotal.Inc()
	r.RunDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	r.ActiveConditions.Set(float64(run.Active))
	for _, o := range run.Outcomes {
		r.TickerOutcomes.WithLabelValues(string(o.Status)).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
