package collector

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"SessionScreener/internal/metrics"
	"SessionScreener/internal/model"
)

// GuardConfig tunes the limiter and breaker around a provider.
type GuardConfig struct {
	RatePerSec float64
	Burst      int
	// consecutive failures that open the breaker
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Guard wraps a Fetcher with a token bucket and a circuit breaker.
// An open breaker fails fast with gobreaker.ErrOpenState.
type Guard struct {
	next    Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Registry
}

// NewGuard creates a Guard. Zero config values fall back to defaults.
func NewGuard(next Fetcher, cfg GuardConfig, m *metrics.Registry) *Guard {
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}

	st := gobreaker.Settings{Name: next.Name()}
	st.Interval = 60 * time.Second
	st.Timeout = cfg.OpenTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= cfg.MaxFailures
	}
	// empty series are a per-symbol condition, not provider health
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker state changed")
	}

	return &Guard{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(st),
		metrics: m,
	}
}

func (g *Guard) Name() string { return g.next.Name() }

func (g *Guard) FetchHourlyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.FetchHourlyBars(ctx, symbol, from, to)
	})
	g.metrics.ObserveFetch(g.next.Name(), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return out.([]model.Bar), nil
}
