// Package screener drives the condition engine across a ticker list.
package screener

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/anchor"
	"SessionScreener/internal/barindex"
	"SessionScreener/internal/metrics"
	"SessionScreener/internal/model"
	"SessionScreener/internal/strategy"
)

// State is the orchestrator's position within one ticker or run.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateResolving  State = "resolving"
	StateEvaluating State = "evaluating"
	StateCollecting State = "collecting"
	StateDone       State = "done"
)

// BarSource supplies the lookback window of bars for a ticker.
type BarSource interface {
	Collect(ctx context.Context, symbol string, date model.Date) ([]model.Bar, error)
}

// ActivationSource provides the activation snapshot a run evaluates against.
type ActivationSource interface {
	Snapshot() activation.Set
}

// BarSink receives every fetched series, e.g. to dump raw data.
type BarSink interface {
	DumpBars(ticker string, bars []model.Bar) error
}

// Screener runs screenings. Tickers are processed sequentially.
type Screener struct {
	source     BarSource
	activation ActivationSource
	engine     *strategy.Engine
	loc        *time.Location

	Sink    BarSink
	Metrics *metrics.Registry
	now     func() time.Time
}

// New creates a Screener evaluating in loc.
func New(source BarSource, act ActivationSource, engine *strategy.Engine, loc *time.Location) *Screener {
	if loc == nil {
		loc = time.UTC
	}
	return &Screener{
		source:     source,
		activation: act,
		engine:     engine,
		loc:        loc,
		now:        time.Now,
	}
}

// Run screens every target ticker and returns the run record. Input errors
// wrap ErrInvalidRequest and nothing is fetched. A cancelled ctx stops the
// loop between tickers; the partial run is returned with ctx.Err().
func (s *Screener) Run(ctx context.Context, req Request) (*model.Run, error) {
	targets, err := req.Targets()
	if err != nil {
		return nil, err
	}

	active := s.activation.Snapshot()
	run := &model.Run{
		ID:            uuid.NewString(),
		ScreeningDate: req.Date,
		StartedAt:     s.now(),
		Selected:      targets,
		Active:        active.Len(),
		Results:       []model.Result{},
	}
	logger := log.With().Str("run", run.ID).Str("date", req.Date.String()).Logger()
	logger.Info().
		Int("tickers", len(targets)).
		Ints("active", active.IDs()).
		Str("state", string(StateIdle)).
		Msg("screening started")

	for _, ticker := range targets {
		if err := ctx.Err(); err != nil {
			s.finish(run, logger)
			return run, err
		}
		outcome, anchorValue := s.screenTicker(ctx, logger, req.Date, ticker, active)
		if outcome.Status == model.OutcomeMatched {
			logger.Debug().Str("ticker", ticker).Str("state", string(StateCollecting)).Msg("collecting result")
			run.Results = append(run.Results, model.Result{
				Serial:      len(run.Results) + 1,
				TickerIndex: req.position(ticker),
				Ticker:      ticker,
				Anchor:      anchorValue,
			})
		}
		run.Outcomes = append(run.Outcomes, outcome)
	}

	s.finish(run, logger)
	return run, nil
}

func (s *Screener) finish(run *model.Run, logger zerolog.Logger) {
	run.FinishedAt = s.now()
	s.Metrics.ObserveRun(run)
	logger.Info().
		Str("state", string(StateDone)).
		Int("matched", len(run.Results)).
		Int("skipped", run.Count(model.OutcomeSkipped)).
		Int("rejected", run.Count(model.OutcomeRejected)).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("screening finished")
}

// screenTicker never fails the run: fetch errors, missing data and panics
// all become a skipped outcome.
func (s *Screener) screenTicker(ctx context.Context, parent zerolog.Logger, date model.Date, ticker string, active activation.Set) (outcome model.TickerOutcome, anchorValue float64) {
	logger := parent.With().Str("ticker", ticker).Logger()
	outcome = model.TickerOutcome{Ticker: ticker}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("ticker evaluation panicked, skipping")
			outcome = skipped(ticker, fmt.Sprintf("internal error: %v", r), outcome.Bars)
			anchorValue = 0
		}
	}()

	logger.Debug().Str("state", string(StateFetching)).Msg("fetching bars")
	bars, err := s.source.Collect(ctx, ticker, date)
	if err != nil {
		logger.Warn().Err(err).Msg("fetch failed, skipping")
		return skipped(ticker, "fetch failed: "+err.Error(), 0), 0
	}
	outcome.Bars = len(bars)
	if len(bars) == 0 {
		logger.Info().Msg("no bars, skipping")
		return skipped(ticker, "no data", 0), 0
	}
	if s.Sink != nil {
		if err := s.Sink.DumpBars(ticker, bars); err != nil {
			logger.Warn().Err(err).Msg("raw bar dump failed")
		}
	}

	logger.Debug().Str("state", string(StateResolving)).Msg("resolving anchor")
	idx := barindex.New(bars, s.loc)
	if idx.Len() == 0 {
		return skipped(ticker, "no timestamped bars", len(bars)), 0
	}
	a, ok := anchor.Resolve(idx, date)
	if !ok {
		logger.Info().Msg("no 16h bar within lookback, skipping")
		return skipped(ticker, "no anchor", len(bars)), 0
	}
	if !idx.HasDay(date) {
		logger.Info().Msg("no bars on screening date, skipping")
		return skipped(ticker, "no bars on screening date", len(bars)), 0
	}
	outcome.Anchor = a.Value
	logger.Debug().Float64("anchor", a.Value).Str("anchor_day", a.Day.String()).Msg("anchor resolved")

	logger.Debug().Str("state", string(StateEvaluating)).Msg("evaluating conditions")
	prior, hasPrior := anchor.PriorSession(idx, date)
	verdict := s.engine.Evaluate(strategy.Input{
		Index:     idx,
		Day:       date,
		Prior:     prior,
		HasPrior:  hasPrior,
		Anchor:    a.Value,
		HasAnchor: true,
	}, active)

	if !verdict.Pass {
		outcome.Status = model.OutcomeRejected
		outcome.Reason = fmt.Sprintf("failed conditions %v", verdict.Failed())
		logger.Info().Ints("failed", verdict.Failed()).Msg("rejected")
		return outcome, 0
	}
	outcome.Status = model.OutcomeMatched
	logger.Info().Float64("anchor", a.Value).Msg("matched")
	return outcome, a.Value
}

func skipped(ticker, reason string, bars int) model.TickerOutcome {
	return model.TickerOutcome{Ticker: ticker, Status: model.OutcomeSkipped, Reason: reason, Bars: bars}
}
