package collector

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/iter"
	"github.com/polygon-io/client-go/rest/models"

	"SessionScreener/internal/model"
)

// aggLister is the slice of the Polygon REST client used here.
type aggLister interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) *iter.Iter[models.Agg]
}

// PolygonFetcher implements Fetcher with Polygon.io hourly aggregates.
type PolygonFetcher struct {
	client aggLister
}

// NewPolygonFetcher creates a fetcher authenticated with apiKey.
func NewPolygonFetcher(apiKey, proxyURL string) *PolygonFetcher {
	var c *polygon.Client
	if proxyURL != "" {
		c = polygon.NewWithClient(apiKey, newHTTPClient(proxyURL))
	} else {
		c = polygon.New(apiKey)
	}
	return &PolygonFetcher{client: c}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

func (f *PolygonFetcher) FetchHourlyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Hour,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.
		WithAdjusted(true).
		WithOrder(models.Asc).
		WithLimit(50000)

	it := f.client.ListAggs(ctx, params)
	var bars []model.Bar
	for it.Next() {
		bars = append(bars, aggToBar(it.Item()))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggs %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("polygon %s: %w", symbol, ErrNoData)
	}
	return bars, nil
}

func aggToBar(agg models.Agg) model.Bar {
	return model.Bar{
		Time:   time.Time(agg.Timestamp).UTC(),
		Open:   agg.Open,
		High:   agg.High,
		Low:    agg.Low,
		Close:  agg.Close,
		Volume: agg.Volume,
	}
}
