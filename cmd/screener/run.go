package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"SessionScreener/internal/model"
	"SessionScreener/internal/screener"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		date        string
		tickers     string
		tickersFile string
		selected    []string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Screen the ticker list once and print the matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			req, err := buildRunRequest(cfg.Screening.TickersFile, cfg.Screening.Tickers, cfg.Screening.Selected,
				tickersFile, tickers, selected, date, time.Now(), a.loc)
			if err != nil {
				return err
			}

			run, err := a.pipeline.Execute(cmd.Context(), req)
			if run == nil {
				return err
			}
			printRun(cmd, run)
			return err
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "screening date YYYY-MM-DD (default: next session)")
	cmd.Flags().StringVar(&tickers, "tickers", "", "comma separated ticker list, overrides the config")
	cmd.Flags().StringVar(&tickersFile, "tickers-file", "", "ticker list file, overrides the config")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "subset of the list to screen")
	return cmd
}

// buildRunRequest resolves flag overrides against the configured universe.
func buildRunRequest(cfgFile string, cfgTickers, cfgSelected []string, flagFile, flagTickers string, flagSelected []string, date string, now time.Time, loc *time.Location) (screener.Request, error) {
	var req screener.Request

	file, inline, sel := cfgFile, cfgTickers, cfgSelected
	if flagFile != "" || flagTickers != "" {
		file, inline, sel = flagFile, nil, nil
		if flagTickers != "" {
			inline = []string{flagTickers}
		}
	}
	universe, err := loadUniverse(file, inline)
	if err != nil {
		return req, err
	}
	req.Tickers = universe
	req.Selected = sel
	if len(flagSelected) > 0 {
		req.Selected = flagSelected
	}

	req.Date = screener.DefaultScreeningDate(now, loc)
	if date != "" {
		d, err := screener.ParseDate(date)
		if err != nil {
			return req, err
		}
		req.Date = d
	}
	return req, nil
}

func printRun(cmd *cobra.Command, run *model.Run) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Screening %s: %d matched, %d rejected, %d skipped\n",
		run.ScreeningDate, len(run.Results), run.Count(model.OutcomeRejected), run.Count(model.OutcomeSkipped))
	for _, r := range run.Results {
		fmt.Fprintln(out, r.String())
	}
}
