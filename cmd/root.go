package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/grass-estimator/internal/config"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var cfg *config.Config

// Global overrides. Each applies only when set on the command line, so the
// config file and GRASS_* variables stay authoritative otherwise.
var (
	flagLogLevel  string
	flagLogFormat string
	flagStore     string
	flagStoreURL  string
)

var rootCmd = &cobra.Command{
	Use:     "grass-estimator",
	Short:   "Estimate lawn area and mowing price from property photos",
	Long:    "Uploads property photos to an analysis backend, parses the area, grass length and condition it reports, prices the job and optionally emails the customer a confirmation.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyOverrides(cmd.Flags(), c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		zap.L().Debug("config loaded",
			zap.String("command", cmd.CommandPath()),
			zap.String("store", cfg.Store.Driver),
			zap.String("estimator", cfg.Estimator.Backend),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// applyOverrides copies explicitly set global flags onto c.
func applyOverrides(flags *pflag.FlagSet, c *config.Config) {
	if flags.Changed("log-level") {
		c.Log.Level = flagLogLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = flagLogFormat
	}
	if flags.Changed("store") {
		c.Store.Driver = flagStore
	}
	if flags.Changed("store-url") {
		c.Store.DatabaseURL = flagStoreURL
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "json", "log encoding (json or console)")
	pf.StringVar(&flagStore, "store", "sqlite", "session store driver (sqlite, postgres, memory)")
	pf.StringVar(&flagStoreURL, "store-url", "", "session store DSN or file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
