package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/catalog"
	"SessionScreener/internal/collector"
	"SessionScreener/internal/config"
	"SessionScreener/internal/metrics"
	"SessionScreener/internal/recorder"
	"SessionScreener/internal/screener"
	"SessionScreener/internal/strategy"
)

// app is the wired screener shared by every subcommand.
type app struct {
	cfg        *config.Config
	loc        *time.Location
	catalog    *catalog.Catalog
	activation *activation.Manager
	metrics    *metrics.Registry
	recorder   recorder.Recorder
	pipeline   *screener.Pipeline
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	ds := cfg.DataSource
	switch ds.Provider {
	case "polygon":
		return collector.NewPolygonFetcher(ds.APIKey, ds.Proxy)
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, ds.Proxy)
	case "mock":
		return &collector.MockFetcher{}
	default:
		return collector.NewYahooFetcher(ds.Proxy)
	}
}

func newActivation(cfg *config.Config, cat *catalog.Catalog) (*activation.Manager, error) {
	act, err := activation.NewManager(cat, cfg.Screening.StateFile)
	if err != nil {
		return nil, err
	}
	if len(cfg.Screening.Normal) > 0 || len(cfg.Screening.Inverted) > 0 {
		if err := act.Apply(cfg.Screening.Normal, cfg.Screening.Inverted); err != nil {
			return nil, fmt.Errorf("screening conditions: %w", err)
		}
	}
	return act, nil
}

func newRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newApp(cfg *config.Config) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	cat := catalog.Default()
	act, err := newActivation(cfg, cat)
	if err != nil {
		return nil, err
	}
	reg := metrics.New()

	ds := cfg.DataSource
	fetcher := collector.NewCachedFetcher(
		collector.NewGuard(newFetcher(cfg), collector.GuardConfig{
			RatePerSec:  ds.RatePerSec,
			Burst:       ds.Burst,
			MaxFailures: ds.MaxFailures,
		}, reg),
		collector.NewCache(ds.RedisAddr), ds.CacheTTL, reg)
	log.Info().Str("provider", fetcher.Name()).Msg("data source ready")

	sc := screener.New(collector.NewCollector(fetcher, loc), act, strategy.NewEngine(cat), loc)
	sc.Metrics = reg
	if cfg.Screening.RawDump {
		sc.Sink = &recorder.RawDumper{Dir: cfg.Screening.OutputDir}
	}

	rec := newRecorder(cfg.Database.SQLitePath)
	return &app{
		cfg:        cfg,
		loc:        loc,
		catalog:    cat,
		activation: act,
		metrics:    reg,
		recorder:   rec,
		pipeline:   &screener.Pipeline{Screener: sc, Recorder: rec, OutputDir: cfg.Screening.OutputDir},
	}, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Warn().Err(err).Msg("close recorder")
	}
}

// loadUniverse returns the configured ticker list: the tickers file followed
// by inline tickers, parsed like an upload.
func loadUniverse(file string, inline []string) ([]string, error) {
	var parts []string
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read tickers file: %w", err)
		}
		parts = append(parts, string(data))
	}
	parts = append(parts, inline...)
	return screener.ParseTickerList(strings.Join(parts, ","))
}
