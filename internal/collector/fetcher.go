package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"SessionScreener/internal/model"
)

// ErrNoData is returned when a provider answers with an empty series.
var ErrNoData = errors.New("no bars returned")

// Fetcher defines the interface for fetching hourly bars, extended hours included.
type Fetcher interface {
	FetchHourlyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// clip keeps bars inside [from, to].
func clip(bars []model.Bar, from, to time.Time) []model.Bar {
	out := bars[:0]
	for _, b := range bars {
		if b.Time.Before(from) || b.Time.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
