package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/catalog"
	"SessionScreener/internal/model"
	"SessionScreener/internal/notifier"
	"SessionScreener/internal/recorder"
	"SessionScreener/internal/screener"
)

// Sender delivers chat messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Universe is the configured ticker list and selection.
type Universe struct {
	Tickers  []string
	Selected []string
}

// Scheduler manages the screening cron job and chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Pipeline   *screener.Pipeline
	Activation *activation.Manager
	Catalog    *catalog.Catalog
	Notifier   Sender // nil disables notifications
	Universe   Universe
	Location   *time.Location
	Ctx        context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler whose cron specs are evaluated in loc.
func NewScheduler(ctx context.Context, p *screener.Pipeline, act *activation.Manager, cat *catalog.Catalog, n Sender, u Universe, loc *time.Location) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Pipeline:   p,
		Activation: act,
		Catalog:    cat,
		Notifier:   n,
		Universe:   u,
		Location:   loc,
		Ctx:        ctx,
		now:        time.Now,
	}
}

// Register adds the daily screening job.
func (s *Scheduler) Register(screeningCron string) error {
	if _, err := s.Cron.AddFunc(screeningCron, s.screeningTask); err != nil {
		return fmt.Errorf("register screening task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// screeningTask screens the session that just closed.
func (s *Scheduler) screeningTask() {
	date := model.DateOf(s.now(), s.Location)
	log.Info().Str("date", date.String()).Msg("running scheduled screening")
	s.RunFor(date)
}

// RunFor executes a screening for date and reports it. The message sent is returned.
func (s *Scheduler) RunFor(date model.Date) string {
	run, err := s.Pipeline.Execute(s.Ctx, screener.Request{
		Date:     date,
		Tickers:  s.Universe.Tickers,
		Selected: s.Universe.Selected,
	})
	if err != nil && run == nil {
		log.Error().Err(err).Str("date", date.String()).Msg("screening failed")
		msg := notifier.FormatError("Screening", err)
		s.trySend(msg)
		return msg
	}
	if err != nil {
		log.Warn().Err(err).Str("run", run.ID).Msg("screening interrupted")
	}
	msg := notifier.FormatRun(run)
	s.trySend(msg)
	return msg
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/run":
		date := screener.DefaultScreeningDate(s.now(), s.Location)
		if len(fields) > 1 {
			d, err := screener.ParseDate(fields[1])
			if err != nil {
				return notifier.FormatError("Screening", err)
			}
			date = d
		}
		s.RunFor(date)
		return ""
	case "/conditions":
		return notifier.FormatConditions(s.Catalog, s.Activation.Snapshot())
	case "/last":
		run, err := s.Pipeline.Latest()
		if errors.Is(err, recorder.ErrNoRuns) {
			return "No screening has been recorded yet."
		}
		if err != nil {
			return notifier.FormatError("Loading last run", err)
		}
		return notifier.FormatRun(run)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /run [YYYY-MM-DD]\n• /conditions\n• /last"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
