package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"SessionScreener/internal/config"
	"SessionScreener/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "screener",
		Short:         "Hourly-bar equity screener",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Format)
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg
			log.Debug().Str("config", opts.configPath).Str("provider", cfg.DataSource.Provider).Msg("config loaded")
			return nil
		},
	}

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultPath, "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newConditionsCmd(opts))
	root.AddCommand(newServeCmd(opts))
	return root
}
