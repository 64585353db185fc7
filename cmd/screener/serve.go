package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"SessionScreener/internal/api"
	"SessionScreener/internal/notifier"
	"SessionScreener/internal/scheduler"
	"SessionScreener/internal/screener"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the daily cron job and Telegram polling",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := root.cfg
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			universe, err := loadUniverse(cfg.Screening.TickersFile, cfg.Screening.Tickers)
			if err != nil {
				return err
			}

			var tn *notifier.TelegramNotifier
			var sender scheduler.Sender
			if cfg.TelegramEnabled() {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy)
				sender = tn
			}

			sched := scheduler.NewScheduler(ctx, a.pipeline, a.activation, a.catalog, sender,
				scheduler.Universe{Tickers: universe, Selected: cfg.Screening.Selected}, a.loc)
			if err := sched.Register(cfg.Schedule.ScreeningCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}
			if runOnStart {
				go sched.RunFor(screener.DefaultScreeningDate(time.Now(), a.loc))
			}

			srv := api.NewServer(cfg.HTTP.Listen, api.Deps{
				Pipeline:   a.pipeline,
				Activation: a.activation,
				Catalog:    a.catalog,
				Metrics:    a.metrics,
				Universe:   api.Universe{Tickers: universe, Selected: cfg.Screening.Selected},
				Location:   a.loc,
			})
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			log.Info().Int("tickers", len(universe)).Str("cron", cfg.Schedule.ScreeningCron).Msg("screener is running")
			select {
			case <-ctx.Done():
				log.Info().Msg("shutdown signal received, stopping")
			case err = <-errCh:
				if err != nil {
					log.Error().Err(err).Msg("http server failed")
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				log.Warn().Err(serr).Msg("http shutdown")
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "screen once immediately after startup")
	return cmd
}
