package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/celestialorigin/celestial-legacy/internal/config"
	"github.com/celestialorigin/celestial-legacy/internal/logging"
	"github.com/celestialorigin/celestial-legacy/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "celestial",
	Short: "Feed ingest for the celestial archive",
	Long: `celestial polls the configured YouTube and RSS sources, drops items it has
already recorded, and merges the rest into the site's JSON stores.

Writing is off unless ENABLE_SYNC is set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level (debug, info, warn, error)")

	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(noiseCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(openCmd)
}

var flagVersionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "celestial %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagVersionCheck {
			return nil
		}
		res, err := update.NewChecker(nil).Check(cmd.Context(), version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintln(out, "Up to date.")
			return nil
		}
		fmt.Fprintf(out, "Update available: %s\n", res.LatestVersion)
		return nil
	},
}

// loadConfig loads the config and builds the logger every command shares.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return cfg, logging.New(level, cmd.ErrOrStderr()), nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logging.New(flagLogLevel, os.Stderr).Error("command failed", "err", err)
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
