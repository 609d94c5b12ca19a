package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestialorigin/celestial-legacy/internal/ledger"
)

var (
	flagNoiseSource string
	flagNoiseSince  string
	flagNoiseLimit  int
)

var noiseCmd = &cobra.Command{
	Use:   "noise",
	Short: "Show recent source fetch failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		opts := ledger.QueryOpts{Source: flagNoiseSource, Limit: flagNoiseLimit}
		if flagNoiseSince != "" {
			d, err := parseSince(flagNoiseSince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = time.Now().Add(-d)
		}

		dbPath := cfg.LedgerFile()
		if _, err := os.Stat(dbPath); err != nil {
			fmt.Fprintln(out, "No noise recorded.")
			return nil
		}
		l, err := ledger.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}
		defer l.Close()

		entries, err := l.Noise(opts)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No noise recorded.")
			return nil
		}
		rows := make([][]string, 0, len(entries))
		for _, n := range entries {
			rows = append(rows, []string{n.ObservedAt.Local().Format("2006-01-02 15:04"), n.Source, truncate(n.Reason, 72)})
		}
		fmt.Fprintln(out, renderTable(out, []string{"Observed", "Source", "Reason"}, rows, nil))
		return nil
	},
}

func init() {
	noiseCmd.Flags().StringVar(&flagNoiseSource, "source", "", "only show failures for the named source")
	noiseCmd.Flags().StringVar(&flagNoiseSince, "since", "", "only show failures from the last duration (e.g., 7d)")
	noiseCmd.Flags().IntVar(&flagNoiseLimit, "limit", 20, "show at most n failures")
}
