package screener

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"SessionScreener/internal/model"
	"SessionScreener/internal/recorder"
)

// Pipeline runs a screening and persists its outputs. Runs are serialized so
// a scheduled run and an on-demand one never interleave their output files.
type Pipeline struct {
	Screener  *Screener
	Recorder  recorder.Recorder
	OutputDir string // results file is skipped when empty

	mu sync.Mutex
}

// Execute runs req, writes the results file and records the run. Persistence
// failures are logged; the run is still returned.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*model.Run, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	run, err := p.Screener.Run(ctx, req)
	if run == nil {
		return nil, err
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return run, err
	}

	if p.OutputDir != "" {
		if _, werr := recorder.WriteResults(p.OutputDir, run.Results); werr != nil {
			log.Error().Err(werr).Str("run", run.ID).Msg("write results file")
		}
	}
	if p.Recorder != nil {
		if rerr := p.Recorder.RecordRun(run); rerr != nil {
			log.Error().Err(rerr).Str("run", run.ID).Msg("record run")
		}
	}
	return run, err
}

// Latest returns the most recent recorded run.
func (p *Pipeline) Latest() (*model.Run, error) {
	if p.Recorder == nil {
		return nil, recorder.ErrNoRuns
	}
	return p.Recorder.LatestRun()
}
