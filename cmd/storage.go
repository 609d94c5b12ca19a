package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/celestialorigin/celestial-legacy/internal/ingest"
	"github.com/celestialorigin/celestial-legacy/internal/ledger"
	"github.com/celestialorigin/celestial-legacy/internal/store"
)

var (
	flagPruneStore     string
	flagPruneKeep      int
	flagPruneOlderThan string
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Re-apply the retention cap to the stores",
	Long: `Sort each store newest first and drop records beyond its retention cap.

Uses the store's retain value (or the format default) unless --keep is given.
With --noise-older-than, old ledger rows are deleted too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if flagPruneKeep < 0 {
			return fmt.Errorf("invalid --keep value %d", flagPruneKeep)
		}
		stores, err := pickStores(cfg, flagPruneStore)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, st := range stores {
			path := cfg.StorePath(st)
			records, err := store.Load(path)
			if errors.Is(err, store.ErrNotExist) {
				continue
			}
			if err != nil {
				return fmt.Errorf("loading store %s: %w", st.Name, err)
			}

			keep := cfg.Retention(st)
			if flagPruneKeep > 0 {
				keep = flagPruneKeep
			}
			ingest.SortByDate(records)
			kept := ingest.Truncate(records, keep)
			dropped := len(records) - len(kept)
			if dropped == 0 {
				fmt.Fprintf(out, "%s: nothing to prune.\n", st.Name)
				continue
			}
			if err := store.Save(path, kept); err != nil {
				return fmt.Errorf("writing store %s: %w", st.Name, err)
			}
			logger.Info("store pruned", "store", st.Name, "dropped", dropped, "kept", len(kept))
			fmt.Fprintf(out, "%s: pruned %d record(s), %d kept.\n", st.Name, dropped, len(kept))
		}

		if flagPruneOlderThan == "" {
			return nil
		}
		d, err := parseSince(flagPruneOlderThan)
		if err != nil {
			return fmt.Errorf("invalid --noise-older-than value: %w", err)
		}
		l, err := ledger.Open(cfg.LedgerFile())
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}
		defer l.Close()

		deleted, err := l.Prune(d)
		if err != nil {
			return fmt.Errorf("pruning ledger: %w", err)
		}
		fmt.Fprintf(out, "ledger: pruned %d row(s) older than %s.\n", deleted, formatDuration(d))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store and ledger statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		rows := make([][]string, 0, len(cfg.Stores))
		for _, st := range cfg.Stores {
			path := cfg.StorePath(st)
			count, size, err := store.Stat(path)
			status := strconv.Itoa(count)
			if err != nil {
				status = "unreadable"
			}
			rows = append(rows, []string{
				st.Name, string(st.Format), status,
				strconv.Itoa(cfg.Retention(st)), formatBytes(size), path,
			})
		}
		fmt.Fprintln(out, renderTable(out,
			[]string{"Store", "Format", "Records", "Cap", "Size", "Path"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
		))

		dbPath := cfg.LedgerFile()
		printField(out, "Ledger", dbPath)
		if _, err := os.Stat(dbPath); err != nil {
			printField(out, "Status", style(out, dimStyle, "no ledger yet"))
			return nil
		}
		l, err := ledger.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}
		defer l.Close()

		s, err := l.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		printField(out, "Runs", strconv.Itoa(s.Runs))
		printField(out, "Noise", strconv.Itoa(s.Noise))
		printField(out, "Size", formatBytes(s.Size))
		last := "never"
		if s.Synced {
			last = s.LastSync.Local().Format("2006-01-02 15:04")
		}
		printField(out, "Last sync", last)
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneStore, "store", "", "only prune the named store")
	pruneCmd.Flags().IntVar(&flagPruneKeep, "keep", 0, "override the retention cap")
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "noise-older-than", "", "also delete ledger rows older than this (e.g., 30d, 720h)")
}

func formatDuration(d interface{ Hours() float64 }) string {
	h := d.Hours()
	days := int(h / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(h))
}
