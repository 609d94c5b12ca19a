package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/celestialorigin/celestial-legacy/internal/announce"
	"github.com/celestialorigin/celestial-legacy/internal/feed"
	"github.com/celestialorigin/celestial-legacy/internal/ingest"
	"github.com/celestialorigin/celestial-legacy/internal/ledger"
)

var flagSyncStore string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch every source and merge new records into the stores",
	Long: `Fetch every enabled source once, drop items whose URL is already stored,
and write each store that gained records.

Does nothing unless ENABLE_SYNC is true. With ENABLE_X_POST set, each new
record is announced (log only).`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&flagSyncStore, "store", "", "only sync the named store")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	opts := []ingest.Option{
		ingest.WithAnnouncer(announce.NewLog(logger, out)),
	}
	// The ledger is only touched when a sync will actually run.
	if cfg.EnableSync {
		l, err := ledger.Open(cfg.LedgerFile())
		if err != nil {
			logger.Warn("ledger unavailable, continuing without it", "path", cfg.LedgerFile(), "err", err)
		} else {
			defer l.Close()
			opts = append(opts, ingest.WithRecorder(l))
		}
	}

	fetcher := feed.NewFetcher(nil, cfg.FetchTimeoutDuration())
	pipeline := ingest.NewPipeline(fetcher, logger, opts...)

	report, err := pipeline.Sync(cmd.Context(), cfg, flagSyncStore)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if !report.Enabled {
		fmt.Fprintln(out, "Sync disabled. Set ENABLE_SYNC=true to fetch and write.")
		return nil
	}

	rows := make([][]string, 0, len(report.Stores))
	for _, s := range report.Stores {
		written := "no"
		if s.Written {
			written = "yes"
		}
		rows = append(rows, []string{s.Store, strconv.Itoa(s.Fetched), strconv.Itoa(s.Added), strconv.Itoa(s.Total), written})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Store", "Fetched", "Added", "Total", "Written"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	for _, s := range report.Skipped {
		fmt.Fprintln(out, style(out, dimStyle, fmt.Sprintf("  [skip] %s: set %s", s.Source, s.Missing)))
	}
	for _, e := range report.Errors {
		fmt.Fprintln(out, style(out, warnStyle, fmt.Sprintf("  [noise] %s: %s", e.Source, e.Reason)))
	}
	return nil
}
