package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestialorigin/celestial-legacy/internal/config"
	"github.com/celestialorigin/celestial-legacy/internal/record"
	"github.com/celestialorigin/celestial-legacy/internal/store"
)

var (
	flagListStore string
	flagListSince string
	flagListLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show stored records, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var since time.Time
		if flagListSince != "" {
			d, err := parseSince(flagListSince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			since = time.Now().Add(-d)
		}

		stores, err := pickStores(cfg, flagListStore)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, st := range stores {
			path := cfg.StorePath(st)
			records, err := store.Load(path)
			if err != nil {
				logger.Info("store not readable", "store", st.Name, "path", path, "err", err)
			}
			records = filterRecords(records, since, flagListLimit)

			fmt.Fprintln(out, style(out, sectionStyle, fmt.Sprintf("%s (%s)", st.Name, path)))
			if len(records) == 0 {
				fmt.Fprintln(out, style(out, dimStyle, "  no records"))
				continue
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				kind := string(r.Kind)
				if kind == "" {
					kind = r.Category
				}
				rows = append(rows, []string{r.ID, r.Date, string(r.Source), kind, truncate(r.Title, 48)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"ID", "Date", "Source", "Kind", "Title"}, rows, nil))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&flagListStore, "store", "", "only list the named store")
	listCmd.Flags().StringVar(&flagListSince, "since", "", "only show records from the last duration (e.g., 7d, 24h)")
	listCmd.Flags().IntVar(&flagListLimit, "limit", 0, "show at most n records per store")
}

// pickStores returns the named store, or every store when name is empty.
func pickStores(cfg *config.Config, name string) ([]config.Store, error) {
	if name == "" {
		return cfg.Stores, nil
	}
	st, ok := cfg.StoreByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown store %q", name)
	}
	return []config.Store{st}, nil
}

// filterRecords keeps records dated at or after since (all when zero), up
// to limit (all when <= 0). Undated records are dropped by a since filter.
func filterRecords(records []record.Record, since time.Time, limit int) []record.Record {
	var out []record.Record
	for _, r := range records {
		if !since.IsZero() {
			t, ok := r.Time()
			if !ok || t.Before(since) {
				continue
			}
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
